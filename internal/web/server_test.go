package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/midi-pedal/internal/logic"
	"github.com/sweeney/midi-pedal/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:          5,
		DebounceSamples: 10,
		HeartbeatMs:     900000,
		Broker:          "tcp://192.168.1.200:1883",
		HTTPPort:        ":80",
		MIDIOutput:      "/dev/ttyAMA0",
		MIDIChannel:     1,
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetCalibration(1023, logic.DefaultControllers)
	tr.Update(status.PedalState{
		Button:     logic.StateOn,
		Controller: logic.DefaultControllers[2],
		Index:      2,
		Value:      64,
		Reading:    515,
	}, logic.EventCounts{Presses: 5, Releases: 4, Selects: 5})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Button != "ON" {
		t.Errorf("Button: got %q, want ON", sj.Status.Button)
	}
	if sj.Status.Controller.Code != 18 || sj.Status.Controller.Index != 2 {
		t.Errorf("Controller: got %+v", sj.Status.Controller)
	}
	if sj.Status.Value != 64 {
		t.Errorf("Value: got %d, want 64", sj.Status.Value)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.Presses != 5 || sj.Status.Counts.Selects != 5 {
		t.Errorf("Counts: got %+v", sj.Status.Counts)
	}
	if len(sj.Status.Controllers) != len(logic.DefaultControllers) {
		t.Errorf("Controllers: got %d entries", len(sj.Status.Controllers))
	}
	if sj.Status.Config.MIDIOutput != "/dev/ttyAMA0" {
		t.Errorf("Config.MIDIOutput: got %q", sj.Status.Config.MIDIOutput)
	}
}

func TestJSONUnknownStateBeforeFirstTick(t *testing.T) {
	ts, _ := newTestServer(t)

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Button != "UNKNOWN" {
		t.Errorf("Button before first tick: got %q, want UNKNOWN", sj.Status.Button)
	}
	if sj.Status.Ready {
		t.Error("expected Ready=false before calibration")
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetCalibration(1023, logic.DefaultControllers)
	tr.Update(status.PedalState{
		Button:     logic.StateOff,
		Controller: logic.DefaultControllers[1],
		Index:      1,
		Value:      127,
	}, logic.EventCounts{})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	if !strings.Contains(page, "17 General Cntrl") {
		t.Error("page should show the selected controller label")
	}
	if !strings.Contains(page, `class="selected"`) {
		t.Error("page should highlight the selected controller")
	}
	if !strings.Contains(page, "width: 100%") {
		t.Error("value bar should be full at 127")
	}
	if strings.Contains(page, "mqtt.min.js") {
		t.Error("live script should be omitted without a websocket broker")
	}
}

func TestHTMLLiveUpdatesWithWSBroker(t *testing.T) {
	tr := status.NewTracker(time.Now(), status.Config{WSBroker: "ws://pi.local:9001"})
	ts := httptest.NewServer(New(":0", tr).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "music/pedal/events") {
		t.Error("live script should subscribe to the pedal events topic")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	sj1 := getJSON(t, ts.URL+"/index.json")
	if sj1.Status.Value != 0 {
		t.Errorf("Value: got %d, want 0 initially", sj1.Status.Value)
	}

	tr.Update(status.PedalState{
		Button:     logic.StateOn,
		Controller: logic.DefaultControllers[3],
		Index:      3,
		Value:      10,
	}, logic.EventCounts{Presses: 1, Selects: 1})
	tr.SetMQTTConnected(true)

	sj2 := getJSON(t, ts.URL+"/index.json")
	if sj2.Status.Button != "ON" {
		t.Errorf("Button: got %q, want ON", sj2.Status.Button)
	}
	if sj2.Status.Controller.Label != "19 General Cntrl" {
		t.Errorf("Controller.Label: got %q", sj2.Status.Controller.Label)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
