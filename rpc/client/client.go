package client

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/tendermint/tendermint-rpc/libs/log"
	"github.com/tendermint/tendermint-rpc/rpc/adaptor"
	"github.com/tendermint/tendermint-rpc/rpc/client/eventstream"
	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
	rpcclient "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/client"
	rpctypes "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/types"
)

// Client talks to a node of any supported release over any transport.
// Requests are encoded and results decoded by the adaptor of the node's
// release family. Watch methods need a streaming transport.
//
// Client is safe for concurrent use.
type Client struct {
	caller   rpcclient.Caller
	streamer rpcclient.Streamer // nil unless the transport streams
	adaptor  adaptor.Adaptor

	logger          log.Logger
	eventMetrics    *eventstream.Metrics
	bufferSize      int
	txSearchPerPage int

	// closer releases a transport built by Dial.
	closer func() error

	mtx     sync.Mutex
	streams map[string]*eventstream.Stream // by normalized query
}

var _ Interface = (*Client)(nil)

// Option sets an optional parameter of a Client.
type Option func(*Client)

// WithLogger sets the logger of the client and its event streams.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithEventMetrics sets the metrics of the client's event streams.
func WithEventMetrics(m *eventstream.Metrics) Option {
	return func(c *Client) { c.eventMetrics = m }
}

// WithSubscriptionBuffer sets the number of events buffered per consumer.
func WithSubscriptionBuffer(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.bufferSize = n
		}
	}
}

// MaxTxSearchPageSize is the largest per_page nodes accept.
const MaxTxSearchPageSize = 100

// WithTxSearchPageSize sets the per_page TxSearchAll requests. Sizes above
// MaxTxSearchPageSize are clamped.
func WithTxSearchPageSize(n int) Option {
	return func(c *Client) {
		switch {
		case n > MaxTxSearchPageSize:
			c.txSearchPerPage = MaxTxSearchPageSize
		case n > 0:
			c.txSearchPerPage = n
		}
	}
}

// New asks the node behind caller for its version and returns a client using
// the matching adaptor.
func New(ctx context.Context, caller rpcclient.Caller, opts ...Option) (*Client, error) {
	a, err := adaptor.Detect(ctx, caller)
	if err != nil {
		return nil, errors.Wrap(err, "detect node version")
	}
	return NewWithAdaptor(caller, a, opts...), nil
}

// NewWithAdaptor returns a client using a, without asking the node. Whether
// the client can watch events is decided here, by the transport's type.
func NewWithAdaptor(caller rpcclient.Caller, a adaptor.Adaptor, opts ...Option) *Client {
	c := &Client{
		caller:          caller,
		adaptor:         a,
		logger:          log.NewNopLogger(),
		eventMetrics:    eventstream.NopMetrics(),
		bufferSize:      eventstream.DefaultBufferSize,
		txSearchPerPage: DefaultTxSearchPageSize,
		streams:         make(map[string]*eventstream.Stream),
	}
	if s, ok := caller.(rpcclient.Streamer); ok {
		c.streamer = s
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("module", "rpc-client", "version", a.Version())
	return c
}

// Adaptor returns the adaptor the client uses.
func (c *Client) Adaptor() adaptor.Adaptor { return c.adaptor }

// CanStream reports whether the transport supports event subscriptions.
func (c *Client) CanStream() bool { return c.streamer != nil }

// Stop ends every event stream of the client and, for clients built by Dial,
// closes the transport.
func (c *Client) Stop() error {
	c.mtx.Lock()
	streams := make([]*eventstream.Stream, 0, len(c.streams))
	for _, s := range c.streams {
		streams = append(streams, s)
	}
	c.mtx.Unlock()

	for _, s := range streams {
		s.Stop()
	}
	if c.closer != nil {
		return c.closer()
	}
	return nil
}

// call encodes a request, executes it and returns the result payload.
func (c *Client) call(ctx context.Context, encode func() (adaptor.Call, error)) (json.RawMessage, error) {
	call, err := encode()
	if err != nil {
		return nil, err
	}
	resp, err := c.caller.Execute(ctx, call.Method, call.Params)
	if err != nil {
		return nil, err
	}
	return rpctypes.Unwrap(resp)
}

//-----------------------------------------------------------------------------
// ABCIClient

func (c *Client) ABCIInfo(ctx context.Context) (*coretypes.ResultABCIInfo, error) {
	result, err := c.call(ctx, c.adaptor.EncodeABCIInfo)
	if err != nil {
		return nil, errors.Wrap(err, "ABCIInfo")
	}
	res, err := c.adaptor.DecodeABCIInfo(result)
	if err != nil {
		return nil, errors.Wrap(err, "ABCIInfo")
	}
	return res, nil
}

func (c *Client) ABCIQuery(ctx context.Context, path string, data []byte) (*coretypes.ResultABCIQuery, error) {
	return c.ABCIQueryWithOptions(ctx, path, data, DefaultABCIQueryOptions)
}

func (c *Client) ABCIQueryWithOptions(ctx context.Context, path string, data []byte,
	opts ABCIQueryOptions) (*coretypes.ResultABCIQuery, error) {
	result, err := c.call(ctx, func() (adaptor.Call, error) {
		return c.adaptor.EncodeABCIQuery(coretypes.RequestABCIQuery{
			Path:   path,
			Data:   data,
			Height: opts.Height,
			Prove:  opts.Prove,
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "ABCIQuery")
	}
	res, err := c.adaptor.DecodeABCIQuery(result)
	if err != nil {
		return nil, errors.Wrap(err, "ABCIQuery")
	}
	return res, nil
}

func (c *Client) BroadcastTxCommit(ctx context.Context, tx coretypes.Tx) (*coretypes.ResultBroadcastTxCommit, error) {
	result, err := c.call(ctx, c.encodeBroadcast(adaptor.MethodBroadcastTxCommit, tx))
	if err != nil {
		return nil, errors.Wrap(err, "BroadcastTxCommit")
	}
	res, err := c.adaptor.DecodeBroadcastTxCommit(result)
	if err != nil {
		return nil, errors.Wrap(err, "BroadcastTxCommit")
	}
	if err := adaptor.VerifyTxHash(c.adaptor, tx, res.Hash); err != nil {
		return nil, errors.Wrap(err, "BroadcastTxCommit")
	}
	return res, nil
}

func (c *Client) BroadcastTxAsync(ctx context.Context, tx coretypes.Tx) (*coretypes.ResultBroadcastTx, error) {
	return c.broadcastTX(ctx, adaptor.MethodBroadcastTxAsync, "BroadcastTxAsync", tx)
}

func (c *Client) BroadcastTxSync(ctx context.Context, tx coretypes.Tx) (*coretypes.ResultBroadcastTx, error) {
	return c.broadcastTX(ctx, adaptor.MethodBroadcastTxSync, "BroadcastTxSync", tx)
}

func (c *Client) broadcastTX(ctx context.Context, route, name string, tx coretypes.Tx) (*coretypes.ResultBroadcastTx, error) {
	result, err := c.call(ctx, c.encodeBroadcast(route, tx))
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	res, err := c.adaptor.DecodeBroadcastTx(result)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	if err := adaptor.VerifyTxHash(c.adaptor, tx, res.Hash); err != nil {
		return nil, errors.Wrap(err, name)
	}
	return res, nil
}

func (c *Client) encodeBroadcast(route string, tx coretypes.Tx) func() (adaptor.Call, error) {
	return func() (adaptor.Call, error) {
		return c.adaptor.EncodeBroadcastTx(route, coretypes.RequestBroadcastTx{Tx: tx})
	}
}

//-----------------------------------------------------------------------------
// StatusClient

func (c *Client) Status(ctx context.Context) (*coretypes.ResultStatus, error) {
	result, err := c.call(ctx, c.adaptor.EncodeStatus)
	if err != nil {
		return nil, errors.Wrap(err, "Status")
	}
	res, err := c.adaptor.DecodeStatus(result)
	if err != nil {
		return nil, errors.Wrap(err, "Status")
	}
	return res, nil
}

func (c *Client) Health(ctx context.Context) (*coretypes.ResultHealth, error) {
	result, err := c.call(ctx, c.adaptor.EncodeHealth)
	if err != nil {
		return nil, errors.Wrap(err, "Health")
	}
	res, err := c.adaptor.DecodeHealth(result)
	if err != nil {
		return nil, errors.Wrap(err, "Health")
	}
	return res, nil
}

//-----------------------------------------------------------------------------
// SignClient

func (c *Client) Block(ctx context.Context, height *int64) (*coretypes.ResultBlock, error) {
	result, err := c.call(ctx, func() (adaptor.Call, error) {
		return c.adaptor.EncodeBlock(coretypes.RequestBlock{Height: height})
	})
	if err != nil {
		return nil, errors.Wrap(err, "Block")
	}
	res, err := c.adaptor.DecodeBlock(result)
	if err != nil {
		return nil, errors.Wrap(err, "Block")
	}
	return res, nil
}

func (c *Client) BlockResults(ctx context.Context, height *int64) (*coretypes.ResultBlockResults, error) {
	result, err := c.call(ctx, func() (adaptor.Call, error) {
		return c.adaptor.EncodeBlockResults(coretypes.RequestBlockResults{Height: height})
	})
	if err != nil {
		return nil, errors.Wrap(err, "BlockResults")
	}
	res, err := c.adaptor.DecodeBlockResults(result)
	if err != nil {
		return nil, errors.Wrap(err, "BlockResults")
	}
	return res, nil
}

func (c *Client) BlockchainInfo(ctx context.Context, minHeight, maxHeight int64) (*coretypes.ResultBlockchainInfo, error) {
	result, err := c.call(ctx, func() (adaptor.Call, error) {
		return c.adaptor.EncodeBlockchainInfo(coretypes.RequestBlockchainInfo{
			MinHeight: minHeight,
			MaxHeight: maxHeight,
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "BlockchainInfo")
	}
	res, err := c.adaptor.DecodeBlockchainInfo(result)
	if err != nil {
		return nil, errors.Wrap(err, "BlockchainInfo")
	}
	return res, nil
}

func (c *Client) Commit(ctx context.Context, height *int64) (*coretypes.ResultCommit, error) {
	result, err := c.call(ctx, func() (adaptor.Call, error) {
		return c.adaptor.EncodeCommit(coretypes.RequestCommit{Height: height})
	})
	if err != nil {
		return nil, errors.Wrap(err, "Commit")
	}
	res, err := c.adaptor.DecodeCommit(result)
	if err != nil {
		return nil, errors.Wrap(err, "Commit")
	}
	return res, nil
}

func (c *Client) Genesis(ctx context.Context) (*coretypes.ResultGenesis, error) {
	result, err := c.call(ctx, c.adaptor.EncodeGenesis)
	if err != nil {
		return nil, errors.Wrap(err, "Genesis")
	}
	res, err := c.adaptor.DecodeGenesis(result)
	if err != nil {
		return nil, errors.Wrap(err, "Genesis")
	}
	return res, nil
}

func (c *Client) Validators(ctx context.Context, height *int64, page, perPage *int) (*coretypes.ResultValidators, error) {
	result, err := c.call(ctx, func() (adaptor.Call, error) {
		return c.adaptor.EncodeValidators(coretypes.RequestValidators{
			Height:  height,
			Page:    intOrZero(page),
			PerPage: intOrZero(perPage),
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "Validators")
	}
	res, err := c.adaptor.DecodeValidators(result)
	if err != nil {
		return nil, errors.Wrap(err, "Validators")
	}
	return res, nil
}

func (c *Client) Tx(ctx context.Context, hash []byte, prove bool) (*coretypes.ResultTx, error) {
	result, err := c.call(ctx, func() (adaptor.Call, error) {
		return c.adaptor.EncodeTx(coretypes.RequestTx{Hash: hash, Prove: prove})
	})
	if err != nil {
		return nil, errors.Wrap(err, "Tx")
	}
	res, err := c.adaptor.DecodeTx(result)
	if err != nil {
		return nil, errors.Wrap(err, "Tx")
	}
	return res, nil
}

func (c *Client) TxSearch(ctx context.Context, query string, prove bool, page, perPage *int,
	orderBy string) (*coretypes.ResultTxSearch, error) {
	result, err := c.call(ctx, func() (adaptor.Call, error) {
		return c.adaptor.EncodeTxSearch(coretypes.RequestTxSearch{
			Query:   query,
			Prove:   prove,
			Page:    intOrZero(page),
			PerPage: intOrZero(perPage),
			OrderBy: orderBy,
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "TxSearch")
	}
	res, err := c.adaptor.DecodeTxSearch(result)
	if err != nil {
		return nil, errors.Wrap(err, "TxSearch")
	}
	return res, nil
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
