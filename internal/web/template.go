package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/motor-sensor/internal/logic"
	"github.com/sweeney/motor-sensor/internal/status"
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
	"stateClass": func(s logic.MotorState) string {
		switch s {
		case logic.StateMoving:
			return "moving"
		case logic.StateStopped:
			return "stopped"
		case logic.StateIdle:
			return "idle"
		default:
			return "off"
		}
	},
	"seconds": func(d time.Duration) string {
		return fmt.Sprintf("%.1fs", d.Seconds())
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Motor Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.moving { color: green; font-weight: bold; }
.stopped { color: #b8860b; font-weight: bold; }
.idle { color: red; font-weight: bold; }
.off { color: #888; }
.warning { color: white; background: red; padding: 0.5em; font-weight: bold; text-align: center; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Motor Sensor<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<div id="warning" class="warning"{{if ne .Motor.State "IDLE"}} hidden{{end}}>SWITCH OFF</div>

<h2>Motor</h2>
<table>
<tr><th>State</th><td id="state" class="{{stateClass .Motor.State}}">{{.Motor.State}}</td></tr>
<tr><th>Movement</th><td id="movement">{{seconds .Motor.Movement}}</td></tr>
<tr><th>Idle</th><td id="idle">{{seconds .Motor.Idle}}</td></tr>
<tr><th>Consumption</th><td id="consumption">{{printf "%.1f" .Consumption}} L</td></tr>
<tr><th>Trips</th><td id="trips">{{.Motor.Trips}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .MQTTBuffered}}<tr><th>Buffered</th><td>{{.MQTTBuffered}} ({{.MQTTDropped}} dropped)</td></tr>{{end}}
{{if .Config.WSBroker}}<tr><th>Browser broker</th><td>{{.Config.WSBroker}}</td></tr>{{end}}
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Idle timeout</th><td>{{.Config.IdleTimeoutMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Tone</th><td>{{.Config.Tone}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  var stateEl = document.getElementById("state");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function text(id, value) {
    document.getElementById(id).textContent = value;
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");

    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      try {
        var s = JSON.parse(ev.data).status;
        stateEl.textContent = s.state;
        stateEl.className = s.state.toLowerCase();
        text("movement", (s.movement_ms / 1000).toFixed(1) + "s");
        text("idle", (s.idle_ms / 1000).toFixed(1) + "s");
        text("consumption", s.consumption_l.toFixed(1) + " L");
        text("trips", s.trips);
        document.getElementById("warning").hidden = !s.idle;
      } catch (e) {}
    };
  }

  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() and Consumption() methods but the template
	// reads plain fields.
	data := struct {
		status.Snapshot
		Uptime      time.Duration
		Consumption float64
	}{
		Snapshot:    snap,
		Uptime:      snap.Uptime(),
		Consumption: snap.Consumption(),
	}
	return indexTmpl.Execute(w, data)
}
