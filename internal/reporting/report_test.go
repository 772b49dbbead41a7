package reporting

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ybtop/internal/analysis"
	"ybtop/internal/models"
	"ybtop/internal/sampler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportSnapshot(t *testing.T) {
	dir := t.TempDir()
	snap := &sampler.Snapshot{
		Taken:    time.Date(2022, 3, 28, 13, 11, 38, 0, time.UTC),
		Duration: 120 * time.Millisecond,
		Probes: []sampler.ProbeStatus{
			{Target: sampler.Target{Host: "192.168.66.80", Port: "13000"}, Status: sampler.StatusOK},
		},
		Activity: []models.Activity{
			{API: "SQL", Server: "192.168.66.80", Client: "127.0.0.1:50736", KeyspaceDB: "yugabyte", Status: "active", ElapsedMs: 7466, Query: "select * from t where a < 3;"},
		},
	}
	alerts := []analysis.Alert{{Type: analysis.AnomalySlowQuery, Source: "192.168.66.80", Message: "slow"}}

	filename, err := ExportSnapshot(snap, alerts, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ybtop_20220328_131138.html"), filename)

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	page := string(content)

	assert.Contains(t, page, "ybtop snapshot")
	assert.Contains(t, page, "127.0.0.1:50736")
	assert.Contains(t, page, "7.466")
	assert.Contains(t, page, "select * from t where a &lt; 3;")
	assert.NotContains(t, page, "a < 3")
	assert.Contains(t, page, "SLOW_QUERY")
	assert.Contains(t, page, "1 answered, 0 unreachable, 0 failed")
}

func TestExportEmptySnapshot(t *testing.T) {
	filename, err := ExportSnapshot(&sampler.Snapshot{Taken: time.Now()}, nil, t.TempDir())
	require.NoError(t, err)

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), "Nothing running."))
	assert.True(t, strings.Contains(string(content), "No alerts."))
}

func TestExportWithoutSnapshot(t *testing.T) {
	_, err := ExportSnapshot(nil, nil, t.TempDir())
	assert.Error(t, err)
}
