package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ybtop/internal/analysis"
	"ybtop/internal/sampler"
)

// ExportSnapshot writes the given snapshot to dir as a standalone HTML page
// and returns the file name. Only what is passed in is written; nothing is
// kept between calls.
func ExportSnapshot(snap *sampler.Snapshot, alerts []analysis.Alert, dir string) (string, error) {
	if snap == nil {
		return "", fmt.Errorf("no snapshot taken yet")
	}

	timestamp := snap.Taken.Format("20060102_150405")
	filename := filepath.Join(dir, fmt.Sprintf("ybtop_%s.html", timestamp))

	summary := analysis.Summarize(snap)

	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>ybtop snapshot - %s</title>
    <style>
        body { font-family: sans-serif; margin: 20px; color: #333; }
        h1, h2 { color: #2c3e50; }
        table { width: 100%%; border-collapse: collapse; margin-bottom: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        td.num { text-align: right; font-family: monospace; }
        .summary { background: #eef; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
        .alert { color: #d9534f; font-weight: bold; }
    </style>
</head>
<body>
    <h1>ybtop snapshot</h1>
    <div class="summary">
        <p><strong>Taken:</strong> %s (sweep took %s)</p>
        <p><strong>Endpoints:</strong> %d answered, %d unreachable, %d failed</p>
        <p><strong>Running:</strong> %d</p>
    </div>

    <h2>Activity</h2>
    <table>
        <thead>
            <tr><th>API</th><th>server</th><th>client</th><th>key/db</th><th>status</th><th>time_s</th><th>query</th></tr>
        </thead>
        <tbody>
`, timestamp, snap.Taken.Format("2006-01-02 15:04:05 MST"), snap.Duration.Round(time.Millisecond),
		summary.Reachable, summary.Unreachable, summary.Failed, summary.Total)

	if len(snap.Activity) == 0 {
		b.WriteString("            <tr><td colspan=\"7\">Nothing running.</td></tr>\n")
	}
	for _, a := range snap.Activity {
		fmt.Fprintf(&b, "            <tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td class=\"num\">%.3f</td><td>%s</td></tr>\n",
			esc(a.API), esc(a.Server), esc(a.Client), esc(a.KeyspaceDB), esc(a.Status), a.ElapsedSeconds(), esc(a.Query))
	}

	b.WriteString(`        </tbody>
    </table>

    <h2>Alerts</h2>
    <table>
        <thead>
            <tr><th>Type</th><th>Source</th><th>Message</th></tr>
        </thead>
        <tbody>
`)

	if len(alerts) == 0 {
		b.WriteString("            <tr><td colspan=\"3\">No alerts.</td></tr>\n")
	}
	for _, alert := range alerts {
		fmt.Fprintf(&b, "            <tr><td class=\"alert\">%s</td><td>%s</td><td>%s</td></tr>\n",
			esc(string(alert.Type)), esc(alert.Source), esc(alert.Message))
	}

	b.WriteString(`        </tbody>
    </table>
</body>
</html>
`)

	if err := os.WriteFile(filename, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("could not write snapshot: %w", err)
	}
	return filename, nil
}

func esc(s string) string {
	return html.EscapeString(s)
}
