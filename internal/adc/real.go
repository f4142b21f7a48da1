package adc

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

var channels = []ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// RealReader samples one single-ended channel of an ADS1115.
type RealReader struct {
	bus i2c.BusCloser
	pin ads1x15.PinADC
}

// NewRealReader opens the I²C bus ("" picks the first one) and binds the
// given ADS1115 channel (0-3). The potentiometer is expected to be wired
// between ground and the 3.3V rail.
func NewRealReader(busName string, address uint16, channel int) (*RealReader, error) {
	if channel < 0 || channel >= len(channels) {
		return nil, fmt.Errorf("adc channel %d out of range 0-%d", channel, len(channels)-1)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}

	dev, err := ads1x15.NewADS1115(bus, &ads1x15.Opts{I2cAddress: address})
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("open ads1115 at 0x%02x: %w", address, err)
	}

	pin, err := dev.PinForChannel(channels[channel], 3300*physic.MilliVolt, 128*physic.Hertz, ads1x15.BestQuality)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("bind adc channel %d: %w", channel, err)
	}

	return &RealReader{bus: bus, pin: pin}, nil
}

// Read performs a one-shot conversion.
func (r *RealReader) Read() (int, error) {
	s, err := r.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("read adc: %w", err)
	}
	return int(s.Raw), nil
}

// Close halts the channel and releases the bus.
func (r *RealReader) Close() error {
	var errs []error

	if r.pin != nil {
		if err := r.pin.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt adc pin: %w", err))
		}
	}
	if r.bus != nil {
		if err := r.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
