package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// PortSender sends to a MIDI output port through the rtmidi driver.
type PortSender struct {
	out  drivers.Out
	send func(msg gomidi.Message) error
}

// NewPortSender opens the first output port whose name contains portName.
func NewPortSender(portName string) (*PortSender, error) {
	out, err := gomidi.FindOutPort(portName)
	if err != nil {
		return nil, fmt.Errorf("can't find output %q: %w", portName, err)
	}

	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", out.String(), err)
	}

	return &PortSender{out: out, send: send}, nil
}

// SendControlChange sends one CC message.
func (p *PortSender) SendControlChange(channel, controller, value uint8) error {
	msg, err := ControlChange(channel, controller, value)
	if err != nil {
		return err
	}
	if err := p.send(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg, err)
	}
	return nil
}

// Name returns the name of the opened port.
func (p *PortSender) Name() string {
	return p.out.String()
}

// Close closes the port and the driver.
func (p *PortSender) Close() error {
	err := p.out.Close()
	gomidi.CloseDriver()
	if err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

// OutPorts lists the names of the available output ports.
func OutPorts() []string {
	var names []string
	for _, out := range gomidi.GetOutPorts() {
		names = append(names, out.String())
	}
	return names
}
