package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	rpctypes "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/types"
)

const transportURI = "uri"

const (
	// URIClientRequestID in a request ID used by URIClient
	URIClientRequestID = rpctypes.JSONRPCIntID(-1)
)

// URIClient is a JSON-RPC client, which sends GET requests to
// {address}/{method}. It cannot carry parameters: any call with non-empty
// params fails with a *ProtocolUsageError before touching the network.
//
// The node stamps URI responses with id -1 (older nodes use the empty
// string), so the HTTP exchange itself is what correlates request and
// response.
//
// URIClient is safe for concurrent use by multiple goroutines.
type URIClient struct {
	*httpTransport
}

// NewURI returns a new client.
// An error is returned on invalid remote.
func NewURI(remote string, opts ...HTTPOption) (*URIClient, error) {
	t, err := newHTTPTransport(remote, opts)
	if err != nil {
		return nil, err
	}
	return &URIClient{httpTransport: t}, nil
}

// Execute issues a GET HTTP request.
func (c *URIClient) Execute(ctx context.Context, method string, params json.RawMessage) (
	resp rpctypes.RPCResponse, err error) {
	if rpctypes.HasParams(params) {
		return rpctypes.RPCResponse{}, &ProtocolUsageError{
			Reason: fmt.Sprintf("uri transport cannot send params for %s", method),
		}
	}

	start := time.Now()
	defer func() { c.observe(method, transportURI, start, err) }()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.address+"/"+method, nil)
	if err != nil {
		return rpctypes.RPCResponse{}, fmt.Errorf("request failed: %w", err)
	}

	body, status, err := c.do(httpReq)
	if err != nil {
		return rpctypes.RPCResponse{}, err
	}
	resp, err = parseHTTPResponse(body, status)
	if err != nil {
		return rpctypes.RPCResponse{}, err
	}

	switch id := resp.ID.(type) {
	case nil:
		if resp.Error == nil {
			return rpctypes.RPCResponse{}, fmt.Errorf("%w: missing id", rpctypes.ErrMalformedEnvelope)
		}
	case rpctypes.JSONRPCIntID:
		if id != URIClientRequestID {
			return rpctypes.RPCResponse{}, fmt.Errorf("%w: unexpected uri response id %v",
				rpctypes.ErrMalformedEnvelope, id)
		}
	case rpctypes.JSONRPCStringID:
		if id != "" {
			return rpctypes.RPCResponse{}, fmt.Errorf("%w: unexpected uri response id %q",
				rpctypes.ErrMalformedEnvelope, string(id))
		}
	}
	return resp, nil
}
