package rpcz

import (
	"fmt"

	"ybtop/internal/models"
)

const statusIdle = "idle"

// ExtractBackends maps SQL backend processes reported by server to activity
// records. Backends with an empty status (not a client session) or an idle
// status are skipped unless showIdle is set.
func ExtractBackends(server string, conns []Connection, showIdle bool) []models.Activity {
	var out []models.Activity
	for _, c := range conns {
		if !showIdle && (c.BackendStatus == "" || c.BackendStatus == statusIdle) {
			continue
		}
		out = append(out, models.Activity{
			API:        models.APISQL,
			Server:     server,
			Client:     valueOr(c.Host) + ":" + valueOr(c.Port),
			KeyspaceDB: valueOr(c.DBName),
			Status:     c.BackendStatus,
			ElapsedMs:  valueOr(c.QueryRunningForMs),
			Query:      valueOr(c.Query),
		})
	}
	return out
}

// ExtractInbound maps the in-flight calls of CQL inbound connections reported
// by server to activity records, one per call. Connections with nothing in
// flight produce no records.
func ExtractInbound(server string, conns []InboundConnection) []models.Activity {
	var out []models.Activity
	for _, c := range conns {
		if len(c.CallsInFlight) == 0 {
			continue
		}
		keyspace := ""
		if c.ConnectionDetails != nil {
			keyspace = c.ConnectionDetails.CQLConnectionDetails.Keyspace
		}
		for _, call := range c.CallsInFlight {
			out = append(out, models.Activity{
				API:        models.APICQL,
				Server:     server,
				Client:     c.RemoteIP,
				KeyspaceDB: keyspace,
				Status:     call.CQLDetails.Type,
				ElapsedMs:  call.ElapsedMillis,
				Query:      statementText(call.CQLDetails.CallDetails),
			})
		}
	}
	return out
}

// statementText shows a single statement as is and summarizes batches.
func statementText(details []CallDetail) string {
	if len(details) == 1 {
		return details[0].SQLString
	}
	return fmt.Sprintf("Number of statements: %d", len(details))
}
