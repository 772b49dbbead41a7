package rpcz

import (
	"fmt"
	"strings"
	"testing"

	"ybtop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classify(t *testing.T, doc string) Payload {
	t.Helper()
	p, err := Classify([]byte(doc))
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T {
	return &v
}

func TestAggregateCheckpointerIsHidden(t *testing.T) {
	results := []HostResult{{Host: "node1", Port: "13000", Payload: classify(t, checkpointerPayload)}}

	assert.Empty(t, Aggregate(results, Options{}))
}

func TestAggregateActiveBackend(t *testing.T) {
	results := []HostResult{{Host: "node1", Port: "13000", Payload: classify(t, activeBackendPayload)}}

	got := Aggregate(results, Options{})
	require.Len(t, got, 1)
	assert.Equal(t, models.Activity{
		API:        "SQL",
		Server:     "node1",
		Client:     "127.0.0.1:50736",
		KeyspaceDB: "yugabyte",
		Status:     "active",
		ElapsedMs:  7466,
		Query:      "select pg_sleep(120);",
	}, got[0])
}

func TestAggregateCQLQuery(t *testing.T) {
	results := []HostResult{{Host: "node2", Port: "12000", Payload: classify(t, cqlQueryPayload)}}

	got := Aggregate(results, Options{})
	require.Len(t, got, 1)
	assert.Equal(t, models.Activity{
		API:        "CQL",
		Server:     "node2",
		Client:     "127.0.0.1:35518",
		KeyspaceDB: "cr",
		Status:     "QUERY",
		ElapsedMs:  252,
		Query:      "select 1",
	}, got[0])
}

func TestAggregateBatchIsSummarized(t *testing.T) {
	details := make([]string, 20)
	for i := range details {
		details[i] = fmt.Sprintf(`{"sql_id": "%d", "sql_string": "insert into t values (%d)", "params": "(%d)"}`, i, i, i)
	}
	doc := fmt.Sprintf(`{"inbound_connections": [{
		"remote_ip": "127.0.0.1:35518",
		"state": "OPEN",
		"processed_call_count": 20,
		"calls_in_flight": [{"elapsed_millis": 40, "cql_details": {"type": "BATCH", "call_details": [%s]}}]
	}]}`, strings.Join(details, ","))

	got := Aggregate([]HostResult{{Host: "node2", Payload: classify(t, doc)}}, Options{})
	require.Len(t, got, 1)
	assert.Equal(t, "Number of statements: 20", got[0].Query)
	assert.Equal(t, "BATCH", got[0].Status)
}

func TestExtractBackendsIdleFilter(t *testing.T) {
	conns := []Connection{
		{BackendType: "checkpointer", BackendStatus: ""},
		{BackendType: "client backend", BackendStatus: "idle", Host: ptr("10.0.0.1"), Port: ptr("5433")},
		{BackendType: "client backend", BackendStatus: "idle in transaction"},
	}

	hidden := ExtractBackends("node1", conns, false)
	require.Len(t, hidden, 1)
	assert.Equal(t, "idle in transaction", hidden[0].Status)

	shown := ExtractBackends("node1", conns, true)
	require.Len(t, shown, 3)
	assert.Equal(t, ":", shown[0].Client)
	assert.Equal(t, "10.0.0.1:5433", shown[1].Client)
	assert.Zero(t, shown[0].ElapsedMs)
	assert.Empty(t, shown[0].KeyspaceDB)
	assert.Empty(t, shown[0].Query)
}

func TestExtractInboundWithoutCallsIsHidden(t *testing.T) {
	p := classify(t, idleInboundPayload)

	assert.Empty(t, ExtractInbound("node1", p.Inbound))
	// Showing idle sessions only applies to the SQL side.
	assert.Empty(t, Aggregate([]HostResult{{Host: "node1", Payload: p}}, Options{ShowIdle: true}))
}

func TestExtractInboundOneRecordPerCall(t *testing.T) {
	conns := []InboundConnection{{
		RemoteIP: "10.0.0.9:4000",
		State:    "OPEN",
		CallsInFlight: []CallInFlight{
			{ElapsedMillis: 10, CQLDetails: CQLDetails{Type: "QUERY", CallDetails: []CallDetail{{SQLString: "a"}}}},
			{ElapsedMillis: 20, CQLDetails: CQLDetails{Type: "QUERY", CallDetails: []CallDetail{{SQLString: "b"}}}},
			{ElapsedMillis: 30, CQLDetails: CQLDetails{Type: "BATCH", CallDetails: []CallDetail{{SQLString: "c"}, {SQLString: "d"}}}},
		},
	}}

	got := ExtractInbound("node3", conns)
	require.Len(t, got, 3)
	for _, a := range got {
		assert.Equal(t, "10.0.0.9:4000", a.Client)
		assert.Empty(t, a.KeyspaceDB)
		assert.Equal(t, "node3", a.Server)
	}
	assert.Equal(t, "Number of statements: 2", got[2].Query)
}

func TestAggregateOrdering(t *testing.T) {
	sql := Payload{Kind: KindBackendConnections, Backends: []Connection{
		{BackendStatus: "active", Query: ptr("q1"), QueryRunningForMs: ptr(int64(100))},
		{BackendStatus: "active", Query: ptr("q2"), QueryRunningForMs: ptr(int64(500))},
		{BackendStatus: "active", Query: ptr("q3"), QueryRunningForMs: ptr(int64(100))},
	}}
	cql := Payload{Kind: KindInboundConnections, Inbound: []InboundConnection{{
		RemoteIP: "c",
		CallsInFlight: []CallInFlight{
			{ElapsedMillis: 100, CQLDetails: CQLDetails{Type: "QUERY", CallDetails: []CallDetail{{SQLString: "q4"}}}},
			{ElapsedMillis: 900, CQLDetails: CQLDetails{Type: "QUERY", CallDetails: []CallDetail{{SQLString: "q5"}}}},
		},
	}}}
	results := []HostResult{
		{Host: "a", Port: "13000", Payload: sql},
		{Host: "a", Port: "12000", Payload: cql},
		{Host: "b", Port: "13000", Payload: Empty()},
	}

	got := Aggregate(results, Options{})
	queries := make([]string, len(got))
	for i, a := range got {
		queries[i] = a.Query
	}
	assert.Equal(t, []string{"q5", "q2", "q1", "q3", "q4"}, queries)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].ElapsedMs, got[i].ElapsedMs)
	}
}

func TestAggregateNothing(t *testing.T) {
	got := Aggregate(nil, Options{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
