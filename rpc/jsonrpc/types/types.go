package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Version is the JSON-RPC protocol version stamped on every request.
const Version = "2.0"

// EventIDSuffix is appended by the node to the id of a subscribe request to
// mark the frames that carry events for that subscription.
const EventIDSuffix = "#event"

// ErrMalformedEnvelope is returned (wrapped) by ParseResponse when a payload is
// not a JSON-RPC response.
var ErrMalformedEnvelope = errors.New("malformed json-rpc envelope")

// a wrapper to emulate a sum type: jsonrpcid = string | int
// TODO: refactor when Go 2.0 arrives https://github.com/golang/go/issues/19412
type jsonrpcid interface {
	isJSONRPCID()
	String() string
}

// JSONRPCStringID a wrapper for JSON-RPC string IDs
type JSONRPCStringID string

func (JSONRPCStringID) isJSONRPCID()      {}
func (id JSONRPCStringID) String() string { return string(id) }

// JSONRPCIntID a wrapper for JSON-RPC integer IDs
type JSONRPCIntID int

func (JSONRPCIntID) isJSONRPCID()      {}
func (id JSONRPCIntID) String() string { return fmt.Sprintf("%d", id) }

// EventID returns the id carried by event frames of the subscription opened
// with id.
func EventID(id jsonrpcid) JSONRPCStringID {
	return JSONRPCStringID(id.String() + EventIDSuffix)
}

// SplitEventID reports whether id marks an event frame, and if so returns the
// id of the subscribe request it belongs to.
func SplitEventID(id jsonrpcid) (JSONRPCStringID, bool) {
	sid, ok := id.(JSONRPCStringID)
	if !ok || !strings.HasSuffix(string(sid), EventIDSuffix) {
		return "", false
	}
	return JSONRPCStringID(strings.TrimSuffix(string(sid), EventIDSuffix)), true
}

func idFromInterface(idInterface interface{}) (jsonrpcid, error) {
	switch id := idInterface.(type) {
	case string:
		return JSONRPCStringID(id), nil
	case float64:
		// json.Unmarshal uses float64 for all numbers
		// (https://golang.org/pkg/encoding/json/#Unmarshal),
		// but the JSONRPC2.0 spec says the id SHOULD NOT contain
		// decimals - so we truncate the decimals here.
		return JSONRPCIntID(int(id)), nil
	default:
		typ := reflect.TypeOf(id)
		return nil, fmt.Errorf("json-rpc ID (%v) is of unknown type (%v)", id, typ)
	}
}

//----------------------------------------
// REQUEST

type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      jsonrpcid       `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"` // must be map[string]interface{} or []interface{}
}

// UnmarshalJSON custom JSON unmarshaling due to jsonrpcid being string or int
func (req *RPCRequest) UnmarshalJSON(data []byte) error {
	unsafeReq := struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      interface{}     `json:"id,omitempty"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params"` // must be map[string]interface{} or []interface{}
	}{}

	err := json.Unmarshal(data, &unsafeReq)
	if err != nil {
		return err
	}

	req.JSONRPC = unsafeReq.JSONRPC
	req.Method = unsafeReq.Method
	req.Params = unsafeReq.Params
	if unsafeReq.ID == nil { // notification
		return nil
	}
	id, err := idFromInterface(unsafeReq.ID)
	if err != nil {
		return err
	}
	req.ID = id

	return nil
}

// NewRPCRequest stamps the protocol version on a request. Empty params are
// sent as an empty object, which every node version accepts.
func NewRPCRequest(id jsonrpcid, method string, params json.RawMessage) RPCRequest {
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}
	return RPCRequest{
		JSONRPC: Version,
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

func (req RPCRequest) String() string {
	return fmt.Sprintf("RPCRequest{%s %s/%s}", req.ID, req.Method, req.Params)
}

// HasParams reports whether params carries at least one parameter. Absent,
// null, {} and [] are all considered empty.
func HasParams(params json.RawMessage) bool {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		return len(obj) > 0
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(trimmed, &arr); err == nil {
		return len(arr) > 0
	}
	return true
}

//----------------------------------------
// RESPONSE

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (err RPCError) Error() string {
	const baseFormat = "RPC error %v - %s"
	if err.Data != "" {
		return fmt.Sprintf(baseFormat+": %s", err.Code, err.Message, err.Data)
	}
	return fmt.Sprintf(baseFormat, err.Code, err.Message)
}

type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      jsonrpcid       `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// UnmarshalJSON custom JSON unmarshaling due to jsonrpcid being string or int
func (resp *RPCResponse) UnmarshalJSON(data []byte) error {
	unsafeResp := &struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      interface{}     `json:"id,omitempty"`
		Result  json.RawMessage `json:"result,omitempty"`
		Error   *RPCError       `json:"error,omitempty"`
	}{}
	err := json.Unmarshal(data, &unsafeResp)
	if err != nil {
		return err
	}

	resp.JSONRPC = unsafeResp.JSONRPC
	resp.Error = unsafeResp.Error
	resp.Result = unsafeResp.Result
	if unsafeResp.ID == nil {
		return nil
	}
	id, err := idFromInterface(unsafeResp.ID)
	if err != nil {
		return err
	}
	resp.ID = id
	return nil
}

// ParseResponse decodes a single response envelope. The payload must be a
// JSON object with an id and exactly one of result or error. A null id is
// only accepted on error responses, where the JSON-RPC spec mandates it for
// requests the server could not parse.
func ParseResponse(data []byte) (RPCResponse, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return RPCResponse{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	rawID, hasID := fields["id"]
	if !hasID {
		return RPCResponse{}, fmt.Errorf("%w: missing id", ErrMalformedEnvelope)
	}
	hasResult := isPresent(fields["result"])
	hasError := isPresent(fields["error"])
	_, resultKey := fields["result"]
	switch {
	case hasResult && hasError:
		return RPCResponse{}, fmt.Errorf("%w: both result and error set", ErrMalformedEnvelope)
	case !hasError && !resultKey:
		return RPCResponse{}, fmt.Errorf("%w: neither result nor error set", ErrMalformedEnvelope)
	case !hasError && isNull(rawID):
		return RPCResponse{}, fmt.Errorf("%w: null id on a success response", ErrMalformedEnvelope)
	}

	var resp RPCResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return RPCResponse{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if !hasError && len(resp.Result) == 0 {
		// keep an explicit null result distinguishable from an absent one
		resp.Result = json.RawMessage("null")
	}
	return resp, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && !isNull(raw)
}

// Unwrap returns the result payload of a success response, or the structured
// *RPCError of an error response.
func Unwrap(resp RPCResponse) (json.RawMessage, error) {
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

func NewRPCSuccessResponse(id jsonrpcid, res interface{}) RPCResponse {
	result, err := json.Marshal(res)
	if err != nil {
		return RPCInternalError(id, fmt.Errorf("error marshaling response: %w", err))
	}
	return RPCResponse{JSONRPC: Version, ID: id, Result: result}
}

func NewRPCErrorResponse(id jsonrpcid, code int, msg string, data string) RPCResponse {
	return RPCResponse{
		JSONRPC: Version,
		ID:      id,
		Error:   &RPCError{Code: code, Message: msg, Data: data},
	}
}

func (resp RPCResponse) String() string {
	if resp.Error == nil {
		return fmt.Sprintf("RPCResponse{%s %X}", resp.ID, []byte(resp.Result))
	}
	return fmt.Sprintf("RPCResponse{%s %v}", resp.ID, resp.Error)
}

// From the JSON-RPC 2.0 spec:
//	If there was an error in detecting the id in the Request object (e.g. Parse
// 	error/Invalid Request), it MUST be Null.
func RPCMethodNotFoundError(id jsonrpcid) RPCResponse {
	return NewRPCErrorResponse(id, -32601, "Method not found", "")
}

func RPCInternalError(id jsonrpcid, err error) RPCResponse {
	return NewRPCErrorResponse(id, -32603, "Internal error", err.Error())
}
