package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sweeney/stick-mouse/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime":    formatUptime,
	"orUnknown": orUnknown,
	"ms":        formatMs,
}).Parse(indexHTML))

// formatUptime renders d in whole seconds, dropping leading zero units.
func formatUptime(d time.Duration) string {
	secs := int64(d / time.Second)
	units := []struct {
		n    int64
		unit string
	}{
		{secs / 86400, "d"},
		{secs / 3600 % 24, "h"},
		{secs / 60 % 60, "m"},
	}
	var b strings.Builder
	for _, u := range units {
		if u.n > 0 || b.Len() > 0 {
			fmt.Fprintf(&b, "%d%s ", u.n, u.unit)
		}
	}
	fmt.Fprintf(&b, "%ds", secs%60)
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// formatMs renders a millisecond setting, with zero meaning disabled.
func formatMs(ms int64) string {
	if ms == 0 {
		return "disabled"
	}
	return (time.Duration(ms) * time.Millisecond).String()
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Stick Mouse</title>
<style>
body { font: 14px/1.4 ui-monospace, monospace; max-width: 40em; margin: 1.5em auto; padding: 0 1em; color: #222; }
h1 { font-size: 1.3em; margin-bottom: 0.2em; }
h2 { font-size: 1em; text-transform: uppercase; color: #555; margin-top: 1.5em; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 3px 6px; border-bottom: 1px solid #e4e4e4; }
th { font-weight: normal; width: 45%; color: #555; }
.on, .connected { color: #1a7f37; font-weight: bold; }
.off { color: #888; }
.disconnected { color: #c62828; }
</style>
</head>
<body>
<h1>Stick Mouse</h1>

<h2>Input</h2>
<table>
<tr><th>Sensitivity</th><td id="level" class="on">{{.Level}}</td></tr>
<tr><th>Joystick</th><td class="{{if .Blocking}}off{{else}}on{{end}}">{{if .Blocking}}blocked by command{{else}}live{{end}}</td></tr>
<tr><th>USB</th><td class="{{if .SinkReady}}connected{{else}}disconnected{{end}}">{{orUnknown .USBState}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
<tr><th>Command TTY</th><td>{{if .Config.TTY}}{{.Config.TTY}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} / {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Reports</h2>
<table>
<tr><th>Commands</th><td>{{.Counts.Commands}}</td></tr>
<tr><th>Motion</th><td>{{.Counts.Motion}}</td></tr>
<tr><th>Clicks</th><td>{{.Counts.Clicks}}</td></tr>
<tr><th>Blocked ticks</th><td>{{.Counts.Blocked}}</td></tr>
<tr><th>Dropped</th><td>{{.Counts.Dropped}}</td></tr>
<tr><th>Level changes</th><td>{{.Counts.LevelChanges}}</td></tr>
<tr><th>Read errors</th><td>{{.Counts.ReadErrors}}</td></tr>
</table>

<h2>Command Channel</h2>
<table>
<tr><th>Accepted</th><td>{{.Commands.Accepted}}</td></tr>
<tr><th>Format errors</th><td>{{.Commands.FormatErrors}}</td></tr>
<tr><th>Protocol errors</th><td>{{.Commands.ProtocolErrors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{ms .Config.TickMs}}</td></tr>
<tr><th>Block window</th><td>{{ms .Config.BlockMs}}</td></tr>
<tr><th>Hold</th><td>{{ms .Config.HoldMs}}</td></tr>
<tr><th>Jitter</th><td>{{.Config.Jitter}}</td></tr>
<tr><th>Sink</th><td>{{.Config.Sink}}</td></tr>
<tr><th>Heartbeat</th><td>{{ms .Config.HeartbeatMs}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/descriptor.bin">HID descriptor</a></p>
</body>
</html>
`

type page struct {
	status.Snapshot
	Uptime time.Duration
}

func renderHTML(w io.Writer, snap status.Snapshot) error {
	return indexTmpl.Execute(w, page{Snapshot: snap, Uptime: snap.Uptime()})
}
