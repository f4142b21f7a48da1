package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/midi-pedal/internal/logic"
)

// fakeToken is an already-completed paho.Token.
type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient records publishes and reports a scripted connection state.
type fakeClient struct {
	open       bool
	publishErr error
	sent       []published
	disconnect bool
}

func (c *fakeClient) IsConnectionOpen() bool { return c.open }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.sent = append(c.sent, published{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return &fakeToken{err: c.publishErr}
}

func (c *fakeClient) Disconnect(uint) { c.disconnect = true }

func newTestPublisher(c *fakeClient, size int) *RealPublisher {
	return &RealPublisher{
		client: c,
		buffer: newRingBuffer(size),
		now:    func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func TestRealPublisherPublishConnected(t *testing.T) {
	c := &fakeClient{open: true}
	p := newTestPublisher(c, 4)

	if err := p.Publish(sampleEvent(logic.EventValue)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(c.sent) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(c.sent))
	}
	if c.sent[0].topic != Topic || c.sent[0].qos != 0 || c.sent[0].retained {
		t.Errorf("unexpected event publish: %+v", c.sent[0])
	}
	if c.sent[1].topic != TopicSystem || c.sent[1].qos != 1 || !c.sent[1].retained {
		t.Errorf("unexpected system publish: %+v", c.sent[1])
	}
}

func TestRealPublisherPublishError(t *testing.T) {
	c := &fakeClient{open: true, publishErr: errors.New("not authorised")}
	p := newTestPublisher(c, 4)

	err := p.Publish(sampleEvent(logic.EventPress))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, c.publishErr) {
		t.Errorf("expected wrapped token error, got %v", err)
	}
}

func TestRealPublisherBuffersWhileDisconnected(t *testing.T) {
	c := &fakeClient{open: false}
	p := newTestPublisher(c, 4)

	p.Publish(sampleEvent(logic.EventPress))
	p.Publish(sampleEvent(logic.EventSelect))
	if len(c.sent) != 0 {
		t.Fatalf("nothing should be sent while disconnected, got %d", len(c.sent))
	}
	if p.Buffered() != 2 {
		t.Fatalf("expected 2 buffered, got %d", p.Buffered())
	}

	// First connection: replay without RECONNECTED
	c.open = true
	p.onConnect(c)
	if len(c.sent) != 2 {
		t.Fatalf("expected 2 replayed, got %d", len(c.sent))
	}
	var first Payload
	json.Unmarshal(c.sent[0].payload, &first)
	if first.Pedal.Event != "PRESS" {
		t.Errorf("expected oldest first, got %s", first.Pedal.Event)
	}
	if p.Buffered() != 0 {
		t.Errorf("buffer should be empty after replay, got %d", p.Buffered())
	}
}

func TestRealPublisherReconnectAnnounces(t *testing.T) {
	c := &fakeClient{open: true}
	p := newTestPublisher(c, 4)
	p.onConnect(c) // initial connect

	c.open = false
	p.Publish(sampleEvent(logic.EventValue))

	c.open = true
	p.onConnect(c)

	if len(c.sent) != 2 {
		t.Fatalf("expected RECONNECTED and 1 replay, got %d", len(c.sent))
	}
	var sys SystemPayload
	if err := json.Unmarshal(c.sent[0].payload, &sys); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if sys.System.Event != "RECONNECTED" {
		t.Errorf("expected RECONNECTED first, got %s", sys.System.Event)
	}
	if sys.System.Timestamp != "2026-03-01T09:00:00Z" {
		t.Errorf("unexpected timestamp: %s", sys.System.Timestamp)
	}
	if c.sent[1].topic != Topic {
		t.Errorf("expected replayed event on %s, got %s", Topic, c.sent[1].topic)
	}
}

func TestRealPublisherIsConnectedAndClose(t *testing.T) {
	c := &fakeClient{open: true}
	p := newTestPublisher(c, 1)
	if !p.IsConnected() {
		t.Error("expected connected")
	}
	if err := p.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !c.disconnect {
		t.Error("Close should disconnect the client")
	}
	var _ Publisher = p
	var _ ConnectionStatus = p
}
