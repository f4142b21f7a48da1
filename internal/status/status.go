// Package status provides a thread-safe status tracker for the midi-pedal daemon.
// It is read by the HTTP handlers and used to build MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/midi-pedal/internal/logic"
)

// NetworkInfo contains network state as written by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs          int64
	DebounceSamples int
	HeartbeatMs     int64
	Broker          string
	HTTPPort        string
	MIDIOutput      string // port name or serial device
	MIDIChannel     int    // 1-16 as shown to players
	EEPROM          string
	WSBroker        string // websocket broker URL for live browser updates (empty = disabled)
}

// PedalState is the part of the snapshot refreshed on every tick.
type PedalState struct {
	Button     logic.State
	Controller logic.Controller
	Index      int
	Value      uint8
	Reading    int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	PedalState
	Ready         bool
	CalibratedMax int
	Controllers   []logic.Controller
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetCalibration records the startup calibration and the controller list,
// and marks the tracker ready.
func (t *Tracker) SetCalibration(max int, controllers []logic.Controller) {
	t.mu.Lock()
	t.snap.CalibratedMax = max
	t.snap.Controllers = append([]logic.Controller(nil), controllers...)
	t.snap.Ready = true
	t.mu.Unlock()
}

// Update sets the pedal state and event counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(st PedalState, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.PedalState = st
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Controllers = append([]logic.Controller(nil), t.snap.Controllers...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
