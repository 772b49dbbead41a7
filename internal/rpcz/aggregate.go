package rpcz

import (
	"sort"

	"ybtop/internal/models"
)

// Options controls which records the extractors keep.
type Options struct {
	// ShowIdle keeps idle and non-client SQL backends. It has no effect on
	// CQL connections, which only ever show in-flight calls.
	ShowIdle bool
}

// Aggregate folds the classified payloads of one sweep into a single list,
// longest running first. results must be in probe order (hosts, then ports
// per host); records with equal elapsed time keep that order.
func Aggregate(results []HostResult, opts Options) []models.Activity {
	activity := make([]models.Activity, 0)
	for _, r := range results {
		switch r.Payload.Kind {
		case KindBackendConnections:
			activity = append(activity, ExtractBackends(r.Host, r.Payload.Backends, opts.ShowIdle)...)
		case KindInboundConnections:
			activity = append(activity, ExtractInbound(r.Host, r.Payload.Inbound)...)
		}
	}

	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].ElapsedMs > activity[j].ElapsedMs
	})
	return activity
}
