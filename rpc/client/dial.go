package client

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	rpcclient "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/client"
)

// DialOption configures the transport Dial builds.
type DialOption func(*dialConfig)

type dialConfig struct {
	endpoint string
	http     []rpcclient.HTTPOption
	ws       []func(*rpcclient.WSClient)
	client   []Option
}

// WithWSEndpoint sets the websocket path, /websocket by default.
func WithWSEndpoint(endpoint string) DialOption {
	return func(cfg *dialConfig) { cfg.endpoint = endpoint }
}

// WithHTTPOptions passes options to the HTTP transport.
func WithHTTPOptions(opts ...rpcclient.HTTPOption) DialOption {
	return func(cfg *dialConfig) { cfg.http = append(cfg.http, opts...) }
}

// WithWSOptions passes options to the websocket transport.
func WithWSOptions(opts ...func(*rpcclient.WSClient)) DialOption {
	return func(cfg *dialConfig) { cfg.ws = append(cfg.ws, opts...) }
}

// WithClientOptions passes options to the client.
func WithClientOptions(opts ...Option) DialOption {
	return func(cfg *dialConfig) { cfg.client = append(cfg.client, opts...) }
}

// Dial connects to remote and detects the node's version. ws:// and wss://
// remotes get a started websocket transport, which lives until ctx is done
// or the client is stopped, and can watch events. Other remotes (http://,
// https://, tcp://, unix://) get the JSON-over-HTTP transport.
func Dial(ctx context.Context, remote string, opts ...DialOption) (*Client, error) {
	cfg := dialConfig{endpoint: rpcclient.DefaultWSEndpoint}
	for _, opt := range opts {
		opt(&cfg)
	}

	u, err := url.Parse(remote)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid remote %s", remote)
	}

	switch u.Scheme {
	case "ws", "wss":
		ws, err := rpcclient.NewWS(remote, cfg.endpoint, cfg.ws...)
		if err != nil {
			return nil, errors.Wrap(err, "Dial")
		}
		if err := ws.Start(ctx); err != nil {
			return nil, errors.Wrap(err, "Dial")
		}
		c, err := New(ctx, ws, cfg.client...)
		if err != nil {
			_ = ws.Stop()
			return nil, err
		}
		c.closer = ws.Stop
		return c, nil

	default:
		hc, err := rpcclient.New(remote, cfg.http...)
		if err != nil {
			return nil, errors.Wrap(err, "Dial")
		}
		return New(ctx, hc, cfg.client...)
	}
}
