package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ybtop/internal/analysis"
	"ybtop/internal/models"
	"ybtop/internal/rpcz"
	"ybtop/internal/sampler"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	snap *sampler.Snapshot
	err  error
	opts []rpcz.Options
}

func (f *fakeSweeper) Sweep(_ context.Context, opts rpcz.Options) (*sampler.Snapshot, error) {
	f.opts = append(f.opts, opts)
	return f.snap, f.err
}

func (f *fakeSweeper) Targets() []sampler.Target {
	return []sampler.Target{{Host: "n1", Port: "13000"}, {Host: "n1", Port: "12000"}}
}

func newTestModel(sw *fakeSweeper) ActivityModel {
	return NewActivityModel(context.Background(), sw, Options{
		Interval:  3 * time.Second,
		Alerts:    analysis.DefaultConfig(),
		ExportDir: "",
	})
}

func update(t *testing.T, m ActivityModel, msg tea.Msg) (ActivityModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(ActivityModel)
	require.True(t, ok)
	return am, cmd
}

func TestSweepFillsTable(t *testing.T) {
	sw := &fakeSweeper{snap: &sampler.Snapshot{
		Probes: []sampler.ProbeStatus{{Target: sampler.Target{Host: "n1", Port: "13000"}, Status: sampler.StatusOK}},
		Activity: []models.Activity{
			{API: "SQL", Server: "n1", Client: "127.0.0.1:50736", KeyspaceDB: "yugabyte", Status: "active", ElapsedMs: 7466, Query: "select pg_sleep(120);"},
		},
	}}
	m := newTestModel(sw)

	msg := m.Init()()
	require.IsType(t, SweepMsg{}, msg)

	m, cmd := update(t, m, msg)
	assert.NotNil(t, cmd, "a tick is scheduled after each sweep")
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "   7.466", m.table.Rows()[0][5])
	assert.Equal(t, 1, m.summary.Total)

	view := m.View()
	assert.Contains(t, view, "select pg_sleep(120);")
	assert.Contains(t, view, "2 endpoints")
}

func TestToggleIdleAppliesToNextSweep(t *testing.T) {
	sw := &fakeSweeper{snap: &sampler.Snapshot{}}
	m := newTestModel(sw)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("i")})
	assert.True(t, m.opts.ShowIdle)

	_, cmd := update(t, m, TickMsg(time.Now()))
	require.NotNil(t, cmd)
	cmd()
	require.Len(t, sw.opts, 1)
	assert.True(t, sw.opts[0].ShowIdle)
}

func TestSweepErrorQuits(t *testing.T) {
	sw := &fakeSweeper{err: rpcz.ErrMalformedPayload}
	m := newTestModel(sw)

	msg := m.Init()()
	m, cmd := update(t, m, msg)
	require.NotNil(t, cmd)
	assert.ErrorIs(t, m.Err(), rpcz.ErrMalformedPayload)

	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}

func TestCanceledSweepIsNotAnError(t *testing.T) {
	m := newTestModel(&fakeSweeper{})

	m, _ = update(t, m, ErrMsg{Err: fmt.Errorf("sweep: %w", context.Canceled)})
	assert.NoError(t, m.Err())
}

func TestExportKey(t *testing.T) {
	sw := &fakeSweeper{snap: &sampler.Snapshot{Taken: time.Now()}}
	m := newTestModel(sw)
	m.opts.ExportDir = t.TempDir()
	m, _ = update(t, m, m.Init()())

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	require.NotNil(t, cmd)
	msg := cmd()
	m, _ = update(t, m, msg)
	assert.Contains(t, m.status, "snapshot written to")
}

func TestWaitingView(t *testing.T) {
	m := newTestModel(&fakeSweeper{})
	assert.Contains(t, m.View(), "Waiting for the first sweep")
}
