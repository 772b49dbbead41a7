package models

// API labels identifying which endpoint schema produced an Activity.
const (
	APISQL = "SQL"
	APICQL = "CQL"
)

// Activity is one in-flight query or session on a cluster node, in the same
// shape regardless of whether it came from the SQL or the CQL endpoint.
type Activity struct {
	API        string // APISQL or APICQL
	Server     string // Node that reported the activity
	Client     string // host:port of the client
	KeyspaceDB string // Keyspace (CQL) or database name (SQL)
	Status     string // Backend status (SQL) or call type (CQL)
	ElapsedMs  int64
	Query      string
}

// ElapsedSeconds returns the elapsed time in seconds.
func (a Activity) ElapsedSeconds() float64 {
	return float64(a.ElapsedMs) / 1000
}
