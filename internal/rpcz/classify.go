package rpcz

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/op/go-logging"
	"github.com/tidwall/gjson"
)

var log = logging.MustGetLogger("ybtop")

// ErrMalformedPayload is returned when a response body is not valid JSON.
var ErrMalformedPayload = errors.New("malformed rpcz payload")

// field is a JSON member that must be present with the given type.
type field struct {
	path string
	typ  gjson.Type
}

var (
	backendRequired = []field{
		{"process_start_time", gjson.String},
		{"application_name", gjson.String},
		{"backend_type", gjson.String},
		{"backend_status", gjson.String},
	}
	backendOptional = []field{
		{"db_oid", gjson.Number},
		{"db_name", gjson.String},
		{"host", gjson.String},
		{"port", gjson.String},
		{"query", gjson.String},
		{"query_start_time", gjson.String},
		{"transaction_start_time", gjson.String},
		{"process_running_for_ms", gjson.Number},
		{"transaction_running_for_ms", gjson.Number},
		{"query_running_for_ms", gjson.Number},
	}
	inboundRequired = []field{
		{"remote_ip", gjson.String},
		{"state", gjson.String},
		{"processed_call_count", gjson.Number},
	}
	callRequired = []field{
		{"elapsed_millis", gjson.Number},
		{"cql_details.type", gjson.String},
	}
	callDetailRequired = []field{
		{"sql_string", gjson.String},
	}
	callDetailOptional = []field{
		{"sql_id", gjson.String},
		{"params", gjson.String},
	}
)

// Classify decides which shape an /rpcz document has and decodes it.
// The backend shape is tried first, then the inbound shape; anything else
// that is valid JSON is KindEmpty. Only a document that is not valid JSON
// produces an error.
func Classify(doc []byte) (Payload, error) {
	if !gjson.ValidBytes(doc) {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, syntaxError(doc))
	}

	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		log.Debugf("rpcz document is not an object (%s), treating as empty", root.Type)
		return Empty(), nil
	}

	if conns := root.Get("connections"); isSequenceOf(conns, isBackend) {
		var out struct {
			Connections []Connection `json:"connections"`
		}
		err := json.Unmarshal(doc, &out)
		if err == nil {
			return Payload{Kind: KindBackendConnections, Backends: out.Connections}, nil
		}
		log.Debugf("connections matched structurally but did not decode: %v", err)
	}

	if conns := root.Get("inbound_connections"); isSequenceOf(conns, isInbound) {
		var out struct {
			InboundConnections []InboundConnection `json:"inbound_connections"`
		}
		err := json.Unmarshal(doc, &out)
		if err == nil {
			return Payload{Kind: KindInboundConnections, Inbound: out.InboundConnections}, nil
		}
		log.Debugf("inbound_connections matched structurally but did not decode: %v", err)
	}

	return Empty(), nil
}

// syntaxError reports where the document stops being JSON.
func syntaxError(doc []byte) error {
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return err
	}
	return errors.New("invalid json")
}

func isSequenceOf(seq gjson.Result, match func(gjson.Result) bool) bool {
	if !seq.IsArray() {
		return false
	}
	ok := true
	seq.ForEach(func(_, item gjson.Result) bool {
		ok = match(item)
		return ok
	})
	return ok
}

func isBackend(obj gjson.Result) bool {
	return obj.IsObject() && hasRequired(obj, backendRequired) && hasOptional(obj, backendOptional)
}

func isInbound(obj gjson.Result) bool {
	if !obj.IsObject() || !hasRequired(obj, inboundRequired) {
		return false
	}
	if details := obj.Get("connection_details"); present(details) {
		if !details.IsObject() || !hasRequired(details, []field{{"cql_connection_details.keyspace", gjson.String}}) {
			return false
		}
	}
	if calls := obj.Get("calls_in_flight"); present(calls) {
		return isSequenceOf(calls, isCall)
	}
	return true
}

func isCall(obj gjson.Result) bool {
	if !obj.IsObject() || !hasRequired(obj, callRequired) {
		return false
	}
	return isSequenceOf(obj.Get("cql_details.call_details"), func(d gjson.Result) bool {
		return d.IsObject() && hasRequired(d, callDetailRequired) && hasOptional(d, callDetailOptional)
	})
}

func hasRequired(obj gjson.Result, fields []field) bool {
	for _, f := range fields {
		if v := obj.Get(f.path); !v.Exists() || v.Type != f.typ {
			return false
		}
	}
	return true
}

// hasOptional accepts a missing or null member, otherwise the type must match.
func hasOptional(obj gjson.Result, fields []field) bool {
	for _, f := range fields {
		if v := obj.Get(f.path); present(v) && v.Type != f.typ {
			return false
		}
	}
	return true
}

func present(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}
