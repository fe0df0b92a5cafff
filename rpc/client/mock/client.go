/*
package mock provides transports and clients that answer from canned
responses instead of a node.

This is useful in tests, when you don't need a real server but want a high
level of control over the responses (eg. error handling), or if you just want
to record the calls to verify in your tests.

For real transports, see the rpc/jsonrpc/client package.
*/
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"

	rpcclient "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/client"
	rpctypes "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/types"
)

// Call is used by recorders to save a call and response.
// It can also be used to configure mock responses.
type Call struct {
	Name     string
	Args     interface{}
	Response interface{}
	Error    error
}

// GetResponse will generate the apporiate response for us, when
// using the Call struct to configure a Mock handler.
//
// When configuring a response, if only one of Response or Error is
// set then that will always be returned. If both are set, then
// we return Response if the Args match the set args, Error otherwise.
func (c Call) GetResponse(args interface{}) (interface{}, error) {
	// handle the case with no response
	if c.Response == nil {
		if c.Error == nil {
			panic("Misconfigured call, you must set either Response or Error")
		}
		return nil, c.Error
	}
	// response without error
	if c.Error == nil {
		return c.Response, nil
	}
	// have both, we must check args....
	if reflect.DeepEqual(args, c.Args) {
		return c.Response, nil
	}
	return nil, c.Error
}

// Args are the decoded params of a call.
type Args map[string]interface{}

// Handler answers one method. A *rpctypes.RPCError is sent back as an error
// response; any other error is returned as a transport error.
type Handler func(args Args) (interface{}, error)

// Respond answers every call with call.GetResponse.
func Respond(call Call) Handler {
	return func(args Args) (interface{}, error) {
		return call.GetResponse(args)
	}
}

// Caller is a transport answering from Handlers and recording every call.
// Methods without a handler get a method-not-found error response.
type Caller struct {
	Handlers map[string]Handler

	mtx   sync.Mutex
	calls []Call
}

var _ rpcclient.Caller = (*Caller)(nil)

// Execute implements rpcclient.Caller.
func (c *Caller) Execute(ctx context.Context, method string, params json.RawMessage) (
	rpctypes.RPCResponse, error) {
	if err := ctx.Err(); err != nil {
		return rpctypes.RPCResponse{}, err
	}
	id := rpctypes.JSONRPCStringID("mock")

	var args Args
	if len(params) > 0 {
		if err := json.Unmarshal(params, &args); err != nil {
			return rpctypes.RPCResponse{}, err
		}
	}

	handler, ok := c.Handlers[method]
	if !ok {
		c.record(Call{Name: method, Args: args})
		return rpctypes.RPCMethodNotFoundError(id), nil
	}
	res, err := handler(args)
	c.record(Call{Name: method, Args: args, Response: res, Error: err})

	var rpcErr *rpctypes.RPCError
	switch {
	case errors.As(err, &rpcErr):
		return rpctypes.NewRPCErrorResponse(id, rpcErr.Code, rpcErr.Message, rpcErr.Data), nil
	case err != nil:
		return rpctypes.RPCResponse{}, err
	}
	return rpctypes.NewRPCSuccessResponse(id, res), nil
}

func (c *Caller) record(call Call) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.calls = append(c.calls, call)
}

// Calls returns the recorded calls, oldest first.
func (c *Caller) Calls() []Call {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]Call(nil), c.calls...)
}

// CallsTo returns the recorded calls of method, oldest first.
func (c *Caller) CallsTo(method string) []Call {
	var calls []Call
	for _, call := range c.Calls() {
		if call.Name == method {
			calls = append(calls, call)
		}
	}
	return calls
}
