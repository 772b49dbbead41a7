package tui

import (
	"context"
	"errors"
	"fmt"

	"ybtop/internal/analysis"
	"ybtop/internal/models"
	"ybtop/internal/reporting"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// fixedWidth is the width taken by every column but the query, including
// cell padding.
const fixedWidth = 4 + 20 + 20 + 10 + 10 + 8 + 7*2

func (m ActivityModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "i":
			m.opts.ShowIdle = !m.opts.ShowIdle
			m.status = fmt.Sprintf("idle SQL sessions %s from next refresh", onOff(m.opts.ShowIdle))
			return m, nil
		case "e":
			return m, m.exportCmd()
		}

	case tea.WindowSizeMsg:
		cols := make([]table.Column, len(columns))
		copy(cols, columns)
		if w := msg.Width - fixedWidth - 4; w > 20 {
			cols[len(cols)-1].Width = w
		}
		m.table.SetColumns(cols)
		// Title, summary panels, footer and borders.
		if h := msg.Height - 14; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case TickMsg:
		return m, m.sweepCmd()

	case SweepMsg:
		m.snap = msg.Snapshot
		m.summary = analysis.Summarize(m.snap)
		m.alerts = analysis.Detect(m.snap, m.opts.Alerts)
		m.table.SetRows(rows(m.snap.Activity))
		return m, tickCmd(m.opts.Interval)

	case ErrMsg:
		if !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
		return m, tea.Quit

	case exportMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("export failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("snapshot written to %s", msg.filename)
		}
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ActivityModel) exportCmd() tea.Cmd {
	snap, alerts, dir := m.snap, m.alerts, m.opts.ExportDir
	return func() tea.Msg {
		filename, err := reporting.ExportSnapshot(snap, alerts, dir)
		return exportMsg{filename: filename, err: err}
	}
}

func rows(activity []models.Activity) []table.Row {
	out := make([]table.Row, len(activity))
	for i, a := range activity {
		out[i] = table.Row{
			a.API,
			a.Server,
			a.Client,
			a.KeyspaceDB,
			a.Status,
			fmt.Sprintf("%8.3f", a.ElapsedSeconds()),
			a.Query,
		}
	}
	return out
}

func onOff(b bool) string {
	if b {
		return "shown"
	}
	return "hidden"
}
