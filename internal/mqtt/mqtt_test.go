package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/midi-pedal/internal/logic"
)

func sampleEvent(t logic.EventType) logic.Event {
	return logic.Event{
		Timestamp:  time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:       t,
		Button:     logic.StateOn,
		Controller: logic.Controller{Name: "General Cntrl", Code: 17},
		Value:      64,
	}
}

func TestFormatPayload(t *testing.T) {
	payload, err := FormatPayload(sampleEvent(logic.EventSelect))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Pedal.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Pedal.Timestamp)
	}
	if parsed.Pedal.Event != "SELECT" {
		t.Errorf("unexpected event: %s", parsed.Pedal.Event)
	}
	if parsed.Pedal.Button != "ON" {
		t.Errorf("unexpected button: %s", parsed.Pedal.Button)
	}
	if parsed.Pedal.Controller.Code != 17 {
		t.Errorf("unexpected code: %d", parsed.Pedal.Controller.Code)
	}
	if parsed.Pedal.Controller.Label != "17 General Cntrl" {
		t.Errorf("unexpected label: %q", parsed.Pedal.Controller.Label)
	}
	if parsed.Pedal.Value != 64 {
		t.Errorf("unexpected value: %d", parsed.Pedal.Value)
	}
}

func TestFormatPayloadExactJSON(t *testing.T) {
	payload, err := FormatPayload(sampleEvent(logic.EventValue))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := `{"pedal":{"timestamp":"2026-02-02T22:18:12Z","event":"VALUE","button":"ON","controller":{"code":17,"name":"General Cntrl","label":"17 General Cntrl"},"value":64}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	e := sampleEvent(logic.EventPress)
	e.Timestamp = time.Date(2026, 2, 2, 23, 0, 0, 0, loc)

	payload, _ := FormatPayload(e)
	var parsed Payload
	json.Unmarshal(payload, &parsed)
	if parsed.Pedal.Timestamp != "2026-02-02T22:00:00Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Pedal.Timestamp)
	}
}

func TestTopics(t *testing.T) {
	if Topic != "music/pedal/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
	if TopicSystem != "music/pedal/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		Event:     "RECONNECTED",
	})

	var parsed map[string]interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	system := parsed["system"].(map[string]interface{})
	if _, exists := system["reason"]; exists {
		t.Error("RECONNECTED should not have reason field")
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	for _, et := range []logic.EventType{logic.EventPress, logic.EventSelect, logic.EventValue} {
		if err := f.Publish(sampleEvent(et)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(f.Events) != 3 || len(f.Payloads) != 3 {
		t.Fatalf("expected 3 events and payloads, got %d/%d", len(f.Events), len(f.Payloads))
	}
	if f.Events[1].Type != logic.EventSelect {
		t.Errorf("order not preserved: %s", f.Events[1].Type)
	}
	if got := f.EventsOfType(logic.EventValue); len(got) != 1 {
		t.Errorf("expected 1 VALUE event, got %d", len(got))
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")

	if err := f.Publish(sampleEvent(logic.EventPress)); err == nil {
		t.Error("expected error")
	}
	if len(f.Events) != 0 {
		t.Error("failed publish should not be recorded")
	}

	f.PublishSystemError = errors.New("broker down")
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err == nil {
		t.Error("expected system error")
	}
}

func TestFakePublisherRecordsRetainedFlag(t *testing.T) {
	f := NewFakePublisher()

	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true})
	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "HEARTBEAT"})

	if len(f.SystemEvents) != 2 {
		t.Fatalf("expected 2 system events, got %d", len(f.SystemEvents))
	}
	if !f.SystemEvents[0].Retained {
		t.Error("first event should have Retained=true")
	}
	if f.SystemEvents[1].Retained {
		t.Error("second event should have Retained=false")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(sampleEvent(logic.EventPress))
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()
	f.Connected = true

	f.Reset()

	if len(f.Events) != 0 || len(f.Payloads) != 0 || len(f.SystemEvents) != 0 || len(f.SystemPayloads) != 0 {
		t.Error("Reset should clear recorded events")
	}
	if f.Closed || f.Connected {
		t.Error("Reset should clear Closed and Connected")
	}
}
