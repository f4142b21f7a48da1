// Package midi sends the pedal's Control Change messages, either to a MIDI
// port of the host (USB interface, virtual port) or straight out of a UART
// wired as a 5-pin DIN MIDI output.
package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// DINBaudRate is the MIDI 1.0 serial rate.
const DINBaudRate = 31250

// Sender transmits Control Change messages.
type Sender interface {
	// SendControlChange sends one CC message. channel is 0-15, controller
	// and value are 0-127.
	SendControlChange(channel, controller, value uint8) error

	// Close releases the output.
	Close() error
}

// ControlChange builds the 3-byte wire message, rejecting out of range fields.
func ControlChange(channel, controller, value uint8) (gomidi.Message, error) {
	if channel > 15 {
		return nil, fmt.Errorf("midi channel %d out of range 0-15", channel)
	}
	if controller > 127 {
		return nil, fmt.Errorf("controller %d out of range 0-127", controller)
	}
	if value > 127 {
		return nil, fmt.Errorf("controller value %d out of range 0-127", value)
	}
	return gomidi.ControlChange(channel, controller, value), nil
}
