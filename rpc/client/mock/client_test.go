package mock_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/tendermint-rpc/rpc/client/mock"
	rpctypes "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/types"
)

func TestCallGetResponse(t *testing.T) {
	errNotFound := errors.New("not found")
	call := mock.Call{
		Args:     mock.Args{"height": "5"},
		Response: "block",
		Error:    errNotFound,
	}

	res, err := call.GetResponse(mock.Args{"height": "5"})
	require.NoError(t, err)
	assert.Equal(t, "block", res)

	_, err = call.GetResponse(mock.Args{"height": "6"})
	assert.Equal(t, errNotFound, err)

	assert.Panics(t, func() { _, _ = mock.Call{}.GetResponse(nil) })
}

func TestCallerRecordsCalls(t *testing.T) {
	ctx := context.Background()
	transportErr := errors.New("connection refused")
	c := &mock.Caller{Handlers: map[string]mock.Handler{
		"health": mock.Respond(mock.Call{Response: json.RawMessage(`{}`)}),
		"status": mock.Respond(mock.Call{Error: &rpctypes.RPCError{Code: -32603, Message: "Internal error"}}),
		"block":  mock.Respond(mock.Call{Error: transportErr}),
	}}

	resp, err := c.Execute(ctx, "health", json.RawMessage(`{}`))
	require.NoError(t, err)
	result, err := rpctypes.Unwrap(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(result))

	resp, err = c.Execute(ctx, "status", nil)
	require.NoError(t, err)
	_, err = rpctypes.Unwrap(resp)
	var rpcErr *rpctypes.RPCError
	require.True(t, errors.As(err, &rpcErr), err)
	assert.Equal(t, -32603, rpcErr.Code)

	_, err = c.Execute(ctx, "block", json.RawMessage(`{"height":"5"}`))
	assert.Equal(t, transportErr, err)

	resp, err = c.Execute(ctx, "genesis", nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32601, resp.Error.Code)

	calls := c.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, []string{"health", "status", "block", "genesis"},
		[]string{calls[0].Name, calls[1].Name, calls[2].Name, calls[3].Name})
	blocks := c.CallsTo("block")
	require.Len(t, blocks, 1)
	assert.Equal(t, mock.Args{"height": "5"}, blocks[0].Args)
}
