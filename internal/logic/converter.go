package logic

// MaxOutput is the largest MIDI controller value.
const MaxOutput = 127

// Converter scales raw pedal readings into the MIDI range 0-127 and reports
// when the scaled value changes.
//
// The calibrated maximum is the reading taken at construction, so the pedal
// must be at full travel when the unit powers up. There is no recalibration.
type Converter struct {
	max      int
	reading  int
	output   uint8
	reported uint8
	changed  bool
}

// NewConverter creates a converter calibrated to the given full-travel reading.
func NewConverter(calibration int) *Converter {
	return &Converter{max: calibration}
}

// Sample converts one raw reading. Returns true if the scaled value differs
// from the last reported value; that value then becomes the reported one.
func (c *Converter) Sample(reading int) bool {
	c.reading = reading
	c.output = scale(reading, c.max)
	c.changed = c.output != c.reported
	if c.changed {
		c.reported = c.output
	}
	return c.changed
}

// scale computes round(127*reading/max) clamped to [0, 127] without
// overflowing for readings far above max.
func scale(reading, max int) uint8 {
	if reading <= 0 {
		return 0
	}
	if max <= 0 || reading >= max {
		return MaxOutput
	}
	return uint8((MaxOutput*int64(reading) + int64(max)/2) / int64(max))
}

// Value returns the most recently computed output.
func (c *Converter) Value() uint8 {
	return c.output
}

// HasNewValue reports whether the last Sample produced a new value.
func (c *Converter) HasNewValue() bool {
	return c.changed
}

// CalibratedMax returns the full-travel reading captured at startup.
func (c *Converter) CalibratedMax() int {
	return c.max
}

// LastReading returns the raw reading passed to the last Sample.
func (c *Converter) LastReading() int {
	return c.reading
}
