package logic

// DefaultThreshold is the number of consecutive agreeing samples needed
// before the footswitch changes state.
const DefaultThreshold = 10

// Debouncer turns raw footswitch samples into a stable ON/OFF state.
//
// A change is only accepted after threshold consecutive samples disagree with
// the stable state. A single sample that agrees with the stable state aborts
// the pending change.
//
// The debouncer also carries a one-shot consumed flag so that an ON state held
// across many ticks is acted upon once. TakePress is the preferred way to
// use it.
type Debouncer struct {
	threshold int
	state     State
	count     int
	consumed  bool
}

// NewDebouncer creates a debouncer in the OFF state. Thresholds below 1 are
// treated as 1.
func NewDebouncer(threshold int) *Debouncer {
	if threshold < 1 {
		threshold = 1
	}
	return &Debouncer{
		threshold: threshold,
		state:     StateOff,
	}
}

// Sample feeds one logical reading (true = pressed) into the state machine.
// Returns true if the stable state flipped on this sample.
func (d *Debouncer) Sample(pressed bool) bool {
	pending := (d.state == StateOff && pressed) || (d.state == StateOn && !pressed)
	if !pending {
		d.count = 0
		return false
	}

	d.count++
	if d.count < d.threshold {
		return false
	}

	if d.state == StateOff {
		d.state = StateOn
	} else {
		d.state = StateOff
	}
	d.count = 0
	d.consumed = false
	return true
}

// IsOn reports whether the stable state is ON.
func (d *Debouncer) IsOn() bool {
	return d.state == StateOn
}

// State returns the stable state.
func (d *Debouncer) State() State {
	return d.state
}

// Consumed reports whether the current state has already been used.
func (d *Debouncer) Consumed() bool {
	return d.consumed
}

// MarkConsumed records that the current state has been used.
// The flag is cleared again by the next state flip.
func (d *Debouncer) MarkConsumed() {
	d.consumed = true
}

// TakePress returns true exactly once per OFF->ON transition.
func (d *Debouncer) TakePress() bool {
	if d.state != StateOn || d.consumed {
		return false
	}
	d.consumed = true
	return true
}

// Count returns the number of consecutive samples seen for a pending change.
func (d *Debouncer) Count() int {
	return d.count
}

// Threshold returns the configured sample count.
func (d *Debouncer) Threshold() int {
	return d.threshold
}
