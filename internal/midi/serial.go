package midi

import (
	"fmt"

	"go.bug.st/serial"
)

// SerialSender writes raw MIDI bytes to a UART at DINBaudRate.
type SerialSender struct {
	port serial.Port
	name string
}

// NewSerialSender opens the named serial device for DIN MIDI output.
func NewSerialSender(device string) (*SerialSender, error) {
	mode := &serial.Mode{
		BaudRate: DINBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return &SerialSender{port: p, name: device}, nil
}

// SendControlChange writes one CC message.
func (s *SerialSender) SendControlChange(channel, controller, value uint8) error {
	msg, err := ControlChange(channel, controller, value)
	if err != nil {
		return err
	}
	return writeAll(s.port, msg.Bytes())
}

// Name returns the serial device path.
func (s *SerialSender) Name() string {
	return s.name
}

// Close closes the serial port.
func (s *SerialSender) Close() error {
	return s.port.Close()
}

type writer interface {
	Write(p []byte) (int, error)
}

// writeAll writes data, retrying short writes.
func writeAll(w writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return fmt.Errorf("serial write: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("serial write: wrote 0 of %d bytes", len(data))
		}
		data = data[n:]
	}
	return nil
}
