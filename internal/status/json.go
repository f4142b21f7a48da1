package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string           `json:"event,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Button        string           `json:"button"`
	Controller    ControllerJSON   `json:"controller"`
	Value         uint8            `json:"value"`
	Reading       int              `json:"reading"`
	CalibratedMax int              `json:"calibrated_max"`
	Ready         bool             `json:"ready"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     string           `json:"start_time"`
	Timestamp     string           `json:"timestamp"`
	MQTT          MQTTStatus       `json:"mqtt"`
	Counts        CountsJSON       `json:"event_counts"`
	Controllers   []ControllerJSON `json:"controllers,omitempty"`
	Network       *NetworkJSON     `json:"network,omitempty"`
	Config        ConfigJSON       `json:"config"`
}

// ControllerJSON is the JSON representation of a selectable controller.
type ControllerJSON struct {
	Index int    `json:"index"`
	Code  uint8  `json:"code"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Presses  int `json:"presses"`
	Releases int `json:"releases"`
	Selects  int `json:"selects"`
	Values   int `json:"values"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs          int64  `json:"poll_ms"`
	DebounceSamples int    `json:"debounce_samples"`
	HeartbeatMs     int64  `json:"heartbeat_ms"`
	Broker          string `json:"broker"`
	HTTPPort        string `json:"http_port"`
	MIDIOutput      string `json:"midi_output"`
	MIDIChannel     int    `json:"midi_channel"`
	EEPROM          string `json:"eeprom"`
	WSBroker        string `json:"ws_broker,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	button := string(snap.Button)
	if button == "" {
		button = "UNKNOWN"
	}

	inner := StatusInner{
		Button: button,
		Controller: ControllerJSON{
			Index: snap.Index,
			Code:  snap.Controller.Code,
			Name:  snap.Controller.Name,
			Label: snap.Controller.Label(),
		},
		Value:         snap.Value,
		Reading:       snap.Reading,
		CalibratedMax: snap.CalibratedMax,
		Ready:         snap.Ready,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Presses:  snap.Counts.Presses,
			Releases: snap.Counts.Releases,
			Selects:  snap.Counts.Selects,
			Values:   snap.Counts.Values,
		},
		Config: ConfigJSON{
			PollMs:          snap.Config.PollMs,
			DebounceSamples: snap.Config.DebounceSamples,
			HeartbeatMs:     snap.Config.HeartbeatMs,
			Broker:          snap.Config.Broker,
			HTTPPort:        snap.Config.HTTPPort,
			MIDIOutput:      snap.Config.MIDIOutput,
			MIDIChannel:     snap.Config.MIDIChannel,
			EEPROM:          snap.Config.EEPROM,
			WSBroker:        snap.Config.WSBroker,
		},
	}

	for i, c := range snap.Controllers {
		inner.Controllers = append(inner.Controllers, ControllerJSON{
			Index: i,
			Code:  c.Code,
			Name:  c.Name,
			Label: c.Label(),
		})
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
