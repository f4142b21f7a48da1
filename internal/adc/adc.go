// Package adc provides expression-pedal reading with hardware abstraction.
// The real implementation talks to an ADS1115 over I²C through periph.io.
// The fake implementation allows testing without hardware.
package adc

// Reader reads the pedal potentiometer.
type Reader interface {
	// Read returns the raw ADC count. Larger means more pedal travel.
	Read() (int, error)

	// Close releases ADC resources.
	Close() error
}

// Defaults for an ADS1115 breakout on the Pi's primary I²C bus.
const (
	DefaultBus     = ""
	DefaultAddress = 0x48
	DefaultChannel = 0
)
