package rpcz

// Kind identifies which of the known /rpcz payload shapes a document has.
type Kind int

const (
	// KindEmpty covers an idle node as well as any document that matches
	// neither known shape.
	KindEmpty Kind = iota
	// KindBackendConnections is the YSQL webserver shape ("connections").
	KindBackendConnections
	// KindInboundConnections is the tserver/YCQL shape ("inbound_connections").
	KindInboundConnections
)

func (k Kind) String() string {
	switch k {
	case KindBackendConnections:
		return "backend_connections"
	case KindInboundConnections:
		return "inbound_connections"
	default:
		return "empty"
	}
}

// Payload is a classified /rpcz document. Only the slice matching Kind is set.
type Payload struct {
	Kind     Kind
	Backends []Connection
	Inbound  []InboundConnection
}

// Empty returns the payload used for unreachable or idle nodes.
func Empty() Payload {
	return Payload{Kind: KindEmpty}
}

// Connection is one backend process reported by the SQL endpoint.
// Pointer fields are only present while a query or transaction is running;
// a nil pointer reads as the zero value of its type.
type Connection struct {
	ProcessStartTime string `json:"process_start_time"`
	ApplicationName  string `json:"application_name"`
	BackendType      string `json:"backend_type"`
	BackendStatus    string `json:"backend_status"`

	DBOid                   *uint32 `json:"db_oid,omitempty"`
	DBName                  *string `json:"db_name,omitempty"`
	Host                    *string `json:"host,omitempty"`
	Port                    *string `json:"port,omitempty"`
	Query                   *string `json:"query,omitempty"`
	QueryStartTime          *string `json:"query_start_time,omitempty"`
	TransactionStartTime    *string `json:"transaction_start_time,omitempty"`
	ProcessRunningForMs     *int64  `json:"process_running_for_ms,omitempty"`
	TransactionRunningForMs *int64  `json:"transaction_running_for_ms,omitempty"`
	QueryRunningForMs       *int64  `json:"query_running_for_ms,omitempty"`
}

// InboundConnection is one client socket reported by the CQL endpoint.
type InboundConnection struct {
	RemoteIP           string             `json:"remote_ip"`
	State              string             `json:"state"`
	ProcessedCallCount int64              `json:"processed_call_count"`
	ConnectionDetails  *ConnectionDetails `json:"connection_details,omitempty"`
	CallsInFlight      []CallInFlight     `json:"calls_in_flight,omitempty"`
}

type ConnectionDetails struct {
	CQLConnectionDetails CQLConnectionDetails `json:"cql_connection_details"`
}

type CQLConnectionDetails struct {
	Keyspace string `json:"keyspace"`
}

// CallInFlight is a query or batch currently executing on an inbound connection.
type CallInFlight struct {
	ElapsedMillis int64      `json:"elapsed_millis"`
	CQLDetails    CQLDetails `json:"cql_details"`
}

type CQLDetails struct {
	Type        string       `json:"type"`
	CallDetails []CallDetail `json:"call_details"`
}

// CallDetail is a single statement of a call. Batches carry several.
type CallDetail struct {
	SQLID     *string `json:"sql_id,omitempty"`
	SQLString string  `json:"sql_string"`
	Params    *string `json:"params,omitempty"`
}

// HostResult is the classified payload of one host/port probe.
type HostResult struct {
	Host    string
	Port    string
	Payload Payload
}

// valueOr is the single default-on-absence policy for optional fields:
// a missing value reads as the zero value of its type.
func valueOr[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
