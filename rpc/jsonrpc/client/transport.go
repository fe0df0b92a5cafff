package client

import (
	"context"
	"encoding/json"

	rpctypes "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/types"
)

// Caller is the unary capability shared by every transport: one request, one
// response. Each call allocates a fresh correlation id.
type Caller interface {
	Execute(ctx context.Context, method string, params json.RawMessage) (rpctypes.RPCResponse, error)
}

// Streamer is the unary-plus-streaming capability of a persistent
// connection. Only the websocket transport implements it.
type Streamer interface {
	Caller

	// Listen sends a subscribe request and returns a listener receiving its
	// acknowledgement and every event frame.
	Listen(ctx context.Context, method string, params json.RawMessage) (*Listener, error)

	// Notify sends req without waiting for, or routing, any response.
	Notify(ctx context.Context, req rpctypes.RPCRequest) error

	// OnReconnect registers fn to be called each time the connection is
	// re-established after a loss. The returned func removes the hook.
	OnReconnect(fn func()) (remove func())
}

var (
	_ Caller   = (*Client)(nil)
	_ Caller   = (*URIClient)(nil)
	_ Streamer = (*WSClient)(nil)
)
