// Package logic contains the pure input-processing core of the pedal:
// switch debouncing, the persisted controller selection and the analog to
// MIDI range conversion.
// This package has NO external dependencies (no GPIO, ADC, MIDI, MQTT or
// time.Sleep). Readings and time are always passed in by the caller.
package logic

import "time"

// State represents the debounced state of the footswitch.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// EventType identifies something the pedal reports to its consumers.
type EventType string

const (
	EventPress   EventType = "PRESS"
	EventRelease EventType = "RELEASE"
	EventSelect  EventType = "SELECT"
	EventValue   EventType = "VALUE"
)

// Event is produced by Pedal.Process and consumed by the MIDI and MQTT
// outputs.
type Event struct {
	Timestamp  time.Time
	Type       EventType
	Button     State
	Controller Controller
	Value      uint8
}

// Input represents a single poll of both sensors.
type Input struct {
	Pressed bool // logical footswitch state (already inverted from the pull-up line)
	Reading int  // raw ADC count
	Time    time.Time
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Presses  int
	Releases int
	Selects  int
	Values   int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
