package client

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/tendermint/tendermint-rpc/libs/pubsub/query"
	"github.com/tendermint/tendermint-rpc/rpc/client/eventstream"
	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
	rpcclient "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/client"
)

// Subscribe attaches a consumer to the events matching q. Queries are
// normalized first, so equal queries written differently share one
// subscription on the node. The transport must be a websocket.
func (c *Client) Subscribe(ctx context.Context, q string) (*eventstream.Subscription, error) {
	if c.streamer == nil {
		return nil, pkgerrors.Wrap(&rpcclient.ProtocolUsageError{
			Reason: "subscriptions need a streaming transport",
		}, "Subscribe")
	}
	normalized, err := query.Normalize(q)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "Subscribe")
	}

	for {
		s, err := c.stream(normalized)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "Subscribe")
		}
		sub, err := s.Subscribe(ctx)
		if errors.Is(err, eventstream.ErrStreamStopped) {
			// lost the race with the last consumer leaving
			c.removeStream(normalized, s)
			continue
		}
		if err != nil {
			return nil, pkgerrors.Wrap(err, "Subscribe")
		}
		return sub, nil
	}
}

// SubscribeNewBlock watches committed blocks.
func (c *Client) SubscribeNewBlock(ctx context.Context) (*eventstream.Subscription, error) {
	return c.Subscribe(ctx, query.New().EventType(coretypes.EventNewBlock).String())
}

// SubscribeNewBlockHeader watches committed block headers.
func (c *Client) SubscribeNewBlockHeader(ctx context.Context) (*eventstream.Subscription, error) {
	return c.Subscribe(ctx, query.New().EventType(coretypes.EventNewBlockHeader).String())
}

// SubscribeTx watches executed transactions. A non-empty filter narrows the
// transactions with more conditions, e.g. "transfer.recipient='abc'".
func (c *Client) SubscribeTx(ctx context.Context, filter string) (*eventstream.Subscription, error) {
	q := query.New().EventType(coretypes.EventTx).String()
	if filter != "" {
		q += " AND " + filter
	}
	return c.Subscribe(ctx, q)
}

// stream returns the stream of a normalized query, creating it if needed.
func (c *Client) stream(normalized string) (*eventstream.Stream, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if s, ok := c.streams[normalized]; ok {
		return s, nil
	}

	var s *eventstream.Stream
	s, err := eventstream.New(c.streamer, c.adaptor, normalized,
		eventstream.WithLogger(c.logger),
		eventstream.WithMetrics(c.eventMetrics),
		eventstream.WithBufferSize(c.bufferSize),
		eventstream.OnStop(func() { c.removeStream(normalized, s) }),
	)
	if err != nil {
		return nil, err
	}
	c.streams[normalized] = s
	return s, nil
}

func (c *Client) removeStream(normalized string, s *eventstream.Stream) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.streams[normalized] == s {
		delete(c.streams, normalized)
	}
}

// Streams returns the number of live event streams.
func (c *Client) Streams() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return len(c.streams)
}
