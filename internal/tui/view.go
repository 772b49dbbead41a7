package tui

import (
	"fmt"
	"strings"

	"ybtop/internal/analysis"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// maxAlertLines keeps the alerts panel from pushing the table off screen.
const maxAlertLines = 4

func (m ActivityModel) View() string {
	headerText := fmt.Sprintf("ybtop - %d endpoints every %s", len(m.sweeper.Targets()), m.opts.Interval)
	if m.opts.ShowIdle {
		headerText += " [showing idle]"
	}
	title := titleStyle.Render(headerText)

	if m.snap == nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, infoStyle.Render("Waiting for the first sweep..."), m.footer())
	}

	// Summary panel
	summary := fmt.Sprintf("Running: %d (%s)\nEndpoints: %d up, %d down, %d failed\nLongest: %s",
		m.summary.Total, formatAPIs(m.summary.APIs),
		m.summary.Reachable, m.summary.Unreachable, m.summary.Failed,
		formatLongest(m.summary))
	summaryBox := infoStyle.Render(summary)

	// Busiest nodes
	var serverStrs []string
	for _, s := range m.summary.TopServers(3) {
		serverStrs = append(serverStrs, fmt.Sprintf("%s: %d", s.Server, s.Count))
	}
	if len(serverStrs) == 0 {
		serverStrs = append(serverStrs, "Nothing running")
	}
	serverBox := infoStyle.Render("Busiest nodes:\n" + strings.Join(serverStrs, "\n"))

	row1 := lipgloss.JoinHorizontal(lipgloss.Top, summaryBox, serverBox)
	if len(m.alerts) > 0 {
		row1 = lipgloss.JoinHorizontal(lipgloss.Top, row1, infoStyle.Render(formatAlerts(m.alerts)))
	}

	tableBox := infoStyle.Render(m.table.View())
	body := lipgloss.JoinVertical(lipgloss.Left, title, row1, tableBox)

	return body + "\n" + m.footer()
}

func (m ActivityModel) footer() string {
	help := helpStyle.Render("q quit  i toggle idle SQL sessions  e export snapshot")
	if m.status != "" {
		help += "  " + m.status
	}
	return help
}

func formatAPIs(apis []analysis.APIStat) string {
	parts := make([]string, len(apis))
	for i, a := range apis {
		parts[i] = fmt.Sprintf("%s %d", a.API, a.Count)
	}
	return strings.Join(parts, ", ")
}

func formatLongest(s analysis.Summary) string {
	if s.Longest == nil {
		return "-"
	}
	return fmt.Sprintf("%.3fs on %s", s.Longest.ElapsedSeconds(), s.Longest.Server)
}

func formatAlerts(alerts []analysis.Alert) string {
	lines := make([]string, 0, maxAlertLines+1)
	for i, a := range alerts {
		if i == maxAlertLines {
			lines = append(lines, fmt.Sprintf("... %d more", len(alerts)-maxAlertLines))
			break
		}
		lines = append(lines, alertStyle.Render(string(a.Type))+" "+a.Message)
	}
	return "Alerts:\n" + strings.Join(lines, "\n")
}
