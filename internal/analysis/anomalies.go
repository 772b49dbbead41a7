package analysis

import (
	"fmt"
	"time"

	"ybtop/internal/models"
	"ybtop/internal/sampler"
)

// AnomalyType represents the type of anomaly detected.
type AnomalyType string

const (
	AnomalySlowQuery   AnomalyType = "SLOW_QUERY"
	AnomalyUnreachable AnomalyType = "NODE_UNREACHABLE"
	AnomalyFailed      AnomalyType = "NODE_FAILED"
)

// Config holds configuration for the anomaly detector.
type Config struct {
	SlowQuery time.Duration // Elapsed time after which a query is reported
	MaxAlerts int           // Alerts kept per snapshot
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		SlowQuery: 10 * time.Second,
		MaxAlerts: 20,
	}
}

// Alert represents something in the current snapshot worth a look.
type Alert struct {
	Type    AnomalyType
	Source  string // Node or client the alert is about
	Message string // Human-readable description
}

// Detect returns the alerts of one snapshot. Nothing is remembered between
// snapshots.
func Detect(snap *sampler.Snapshot, cfg Config) []Alert {
	if snap == nil {
		return nil
	}
	alerts := make([]Alert, 0)

	// Activity is sorted longest first, so we can stop at the first fast one.
	for _, a := range snap.Activity {
		if time.Duration(a.ElapsedMs)*time.Millisecond < cfg.SlowQuery {
			break
		}
		alerts = append(alerts, slowQueryAlert(a))
	}

	for _, p := range snap.Probes {
		switch p.Status {
		case sampler.StatusUnreachable:
			alerts = append(alerts, Alert{
				Type:    AnomalyUnreachable,
				Source:  p.Target.String(),
				Message: fmt.Sprintf("%s (%s) is not accepting connections", p.Target, ServiceName(p.Target.Port)),
			})
		case sampler.StatusFailed:
			alerts = append(alerts, Alert{
				Type:    AnomalyFailed,
				Source:  p.Target.String(),
				Message: fmt.Sprintf("%s (%s) accepted the connection but did not answer", p.Target, ServiceName(p.Target.Port)),
			})
		}
	}

	if cfg.MaxAlerts > 0 && len(alerts) > cfg.MaxAlerts {
		alerts = alerts[:cfg.MaxAlerts]
	}
	return alerts
}

func slowQueryAlert(a models.Activity) Alert {
	return Alert{
		Type:    AnomalySlowQuery,
		Source:  a.Server,
		Message: fmt.Sprintf("%s %s from %s running for %.3fs", a.API, a.Status, a.Client, a.ElapsedSeconds()),
	}
}
