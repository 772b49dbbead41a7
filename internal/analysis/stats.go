package analysis

import (
	"sort"

	"ybtop/internal/models"
	"ybtop/internal/sampler"
)

// ServerStat holds the number of active records reported by one node.
type ServerStat struct {
	Server string
	Count  int
}

// APIStat holds the number of active records per API.
type APIStat struct {
	API   string
	Count int
}

// Summary describes one snapshot at a glance.
type Summary struct {
	Total       int
	APIs        []APIStat
	Servers     []ServerStat
	Reachable   int
	Unreachable int
	Failed      int
	// Longest is the longest running record, nil when nothing is running.
	Longest *models.Activity
}

// Summarize counts the records and probe outcomes of a snapshot.
func Summarize(snap *sampler.Snapshot) Summary {
	var s Summary
	if snap == nil {
		return s
	}

	for _, p := range snap.Probes {
		switch p.Status {
		case sampler.StatusOK:
			s.Reachable++
		case sampler.StatusFailed:
			s.Failed++
		default:
			s.Unreachable++
		}
	}

	s.Total = len(snap.Activity)
	apiCounts := map[string]int{models.APISQL: 0, models.APICQL: 0}
	serverCounts := make(map[string]int)
	for i, a := range snap.Activity {
		apiCounts[a.API]++
		serverCounts[a.Server]++
		if s.Longest == nil || a.ElapsedMs > s.Longest.ElapsedMs {
			s.Longest = &snap.Activity[i]
		}
	}

	s.APIs = make([]APIStat, 0, len(apiCounts))
	for api, count := range apiCounts {
		s.APIs = append(s.APIs, APIStat{API: api, Count: count})
	}
	sort.Slice(s.APIs, func(i, j int) bool {
		return s.APIs[i].API > s.APIs[j].API
	})

	s.Servers = make([]ServerStat, 0, len(serverCounts))
	for server, count := range serverCounts {
		s.Servers = append(s.Servers, ServerStat{Server: server, Count: count})
	}
	// Sort descending by count, then by name for a stable display
	sort.Slice(s.Servers, func(i, j int) bool {
		if s.Servers[i].Count != s.Servers[j].Count {
			return s.Servers[i].Count > s.Servers[j].Count
		}
		return s.Servers[i].Server < s.Servers[j].Server
	})

	return s
}

// TopServers returns the busiest limit nodes.
func (s Summary) TopServers(limit int) []ServerStat {
	if len(s.Servers) > limit {
		return s.Servers[:limit]
	}
	return s.Servers
}
