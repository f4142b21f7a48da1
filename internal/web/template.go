package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/midi-pedal/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	// percent renders a 0-127 controller value as a bar width.
	"percent": func(v uint8) int {
		return int(v) * 100 / 127
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>MIDI Pedal</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.selected { font-weight: bold; background: #eef; }
.connected { color: green; }
.disconnected { color: red; }
.bar { background: #ddd; height: 10px; width: 100%; }
.bar div { background: #36c; height: 10px; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>MIDI Pedal{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>Pedal</h2>
<table>
<tr><th>Footswitch</th><td id="button-state" class="{{if eq (stateOrUnknown (printf "%s" .Button)) "ON"}}on{{else if eq (stateOrUnknown (printf "%s" .Button)) "OFF"}}off{{else}}unknown{{end}}">{{stateOrUnknown (printf "%s" .Button)}}</td></tr>
<tr><th>Controller</th><td id="controller">{{.Controller.Label}}</td></tr>
<tr><th>Value</th><td><span id="value">{{.Value}}</span><div class="bar"><div id="value-bar" style="width: {{percent .Value}}%"></div></div></td></tr>
<tr><th>Reading</th><td>{{.Reading}} / {{.CalibratedMax}}</td></tr>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
</table>

{{if .Controllers}}<h2>Controllers</h2>
<table>
{{range $i, $c := .Controllers}}<tr{{if eq $i $.Index}} class="selected"{{end}}><th>{{$i}}</th><td>{{$c.Label}}</td></tr>
{{end}}</table>
{{end}}
<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>MIDI out</th><td>{{.Config.MIDIOutput}} (channel {{.Config.MIDIChannel}})</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Presses</th><td>{{.Counts.Presses}}</td></tr>
<tr><th>Releases</th><td>{{.Counts.Releases}}</td></tr>
<tr><th>Selects</th><td>{{.Counts.Selects}}</td></tr>
<tr><th>Values</th><td>{{.Counts.Values}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceSamples}} samples</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>EEPROM</th><td>{{.Config.EEPROM}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .Config.WSBroker}}
<script src="https://unpkg.com/mqtt@5/dist/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "music/pedal/events";
  var dot = document.getElementById("live-dot");
  var buttonEl = document.getElementById("button-state");
  var ctrlEl = document.getElementById("controller");
  var valueEl = document.getElementById("value");
  var barEl = document.getElementById("value-bar");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });
  client.on("reconnect", function() { setDot("pending", "reconnecting"); });
  client.on("offline", function() { setDot("err", "offline"); });
  client.on("error", function() { setDot("err", "error"); });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (!msg.pedal) return;
      buttonEl.textContent = msg.pedal.button;
      buttonEl.className = msg.pedal.button === "ON" ? "on" : "off";
      ctrlEl.textContent = msg.pedal.controller.label;
      valueEl.textContent = msg.pedal.value;
      barEl.style.width = Math.floor(msg.pedal.value * 100 / 127) + "%";
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
