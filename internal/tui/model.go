package tui

import (
	"context"
	"time"

	"ybtop/internal/analysis"
	"ybtop/internal/rpcz"
	"ybtop/internal/sampler"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Sweeper runs one sweep over the cluster.
type Sweeper interface {
	Sweep(ctx context.Context, opts rpcz.Options) (*sampler.Snapshot, error)
	Targets() []sampler.Target
}

// Options configures the live view.
type Options struct {
	Interval  time.Duration
	ShowIdle  bool
	Alerts    analysis.Config
	ExportDir string
}

type ActivityModel struct {
	ctx     context.Context
	sweeper Sweeper
	opts    Options
	table   table.Model

	snap    *sampler.Snapshot
	summary analysis.Summary
	alerts  []analysis.Alert

	status string // last user facing notice (export result, idle toggle)
	err    error
}

// TickMsg asks for the next sweep.
type TickMsg time.Time

// SweepMsg carries the result of a finished sweep.
type SweepMsg struct {
	Snapshot *sampler.Snapshot
}

// ErrMsg ends the program with a fatal sweep error.
type ErrMsg struct {
	Err error
}

type exportMsg struct {
	filename string
	err      error
}

var columns = []table.Column{
	{Title: "API", Width: 4},
	{Title: "server", Width: 20},
	{Title: "client", Width: 20},
	{Title: "key/db", Width: 10},
	{Title: "status", Width: 10},
	{Title: "time_s", Width: 8},
	{Title: "query", Width: 60},
}

func NewActivityModel(ctx context.Context, sweeper Sweeper, opts Options) ActivityModel {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ActivityModel{
		ctx:     ctx,
		sweeper: sweeper,
		opts:    opts,
		table:   t,
	}
}

// Err returns the error that stopped the program, if any.
func (m ActivityModel) Err() error {
	return m.err
}

// Snapshot returns the last completed sweep.
func (m ActivityModel) Snapshot() *sampler.Snapshot {
	return m.snap
}

func (m ActivityModel) Init() tea.Cmd {
	return m.sweepCmd()
}

func (m ActivityModel) sweepCmd() tea.Cmd {
	ctx, sweeper, opts := m.ctx, m.sweeper, rpcz.Options{ShowIdle: m.opts.ShowIdle}
	return func() tea.Msg {
		snap, err := sweeper.Sweep(ctx, opts)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return SweepMsg{Snapshot: snap}
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
