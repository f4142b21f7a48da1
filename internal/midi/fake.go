package midi

// SentCC is a Control Change recorded by FakeSender.
type SentCC struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

// FakeSender records Control Change messages for test assertions.
type FakeSender struct {
	// Sent contains every message that was accepted.
	Sent []SentCC

	// Raw contains the wire bytes of each accepted message.
	Raw [][]byte

	// SendError, if set, will be returned by SendControlChange.
	SendError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSender creates a FakeSender for testing.
func NewFakeSender() *FakeSender {
	return &FakeSender{}
}

// SendControlChange validates and records the message.
func (f *FakeSender) SendControlChange(channel, controller, value uint8) error {
	if f.SendError != nil {
		return f.SendError
	}
	msg, err := ControlChange(channel, controller, value)
	if err != nil {
		return err
	}
	f.Sent = append(f.Sent, SentCC{Channel: channel, Controller: controller, Value: value})
	f.Raw = append(f.Raw, msg.Bytes())
	return nil
}

// Close marks the sender as closed.
func (f *FakeSender) Close() error {
	f.Closed = true
	return nil
}
