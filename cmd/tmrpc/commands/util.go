package commands

import (
	"context"
	"encoding/json"
	"io"

	"github.com/tendermint/tendermint-rpc/config"
	"github.com/tendermint/tendermint-rpc/libs/log"
	"github.com/tendermint/tendermint-rpc/rpc/client"
	"github.com/tendermint/tendermint-rpc/rpc/client/eventstream"
	rpcclient "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/client"
)

func newLogger(conf *config.ClientConfig) (log.Logger, error) {
	return log.NewDefaultLogger(conf.LogFormat, conf.LogLevel)
}

type dialMetrics struct {
	transport *rpcclient.Metrics
	events    *eventstream.Metrics
}

// dial connects to conf.Remote. A websocket client stays connected until
// ctx is done or the client is stopped.
func dial(ctx context.Context, conf *config.ClientConfig, logger log.Logger, m *dialMetrics) (*client.Client, error) {
	if m == nil {
		m = &dialMetrics{transport: rpcclient.NopMetrics(), events: eventstream.NopMetrics()}
	}
	return client.Dial(ctx, conf.Remote,
		client.WithWSEndpoint(conf.WSEndpoint),
		client.WithHTTPOptions(
			rpcclient.WithHTTPLogger(logger),
			rpcclient.WithHTTPMetrics(m.transport),
		),
		client.WithWSOptions(
			rpcclient.WSLogger(logger),
			rpcclient.WSMetrics(m.transport),
			rpcclient.MaxReconnectAttempts(conf.MaxReconnectAttempts),
			rpcclient.PingPeriod(conf.PingPeriod),
			rpcclient.ReadWait(conf.ReadWait),
			rpcclient.WriteWait(conf.WriteWait),
		),
		client.WithClientOptions(
			client.WithLogger(logger),
			client.WithEventMetrics(m.events),
			client.WithSubscriptionBuffer(conf.SubscriptionBufferSize),
			client.WithTxSearchPageSize(conf.TxSearchPageSize),
		),
	)
}

// requestContext bounds a single request by the configured timeout.
func requestContext(ctx context.Context, conf *config.ClientConfig) (context.Context, context.CancelFunc) {
	if conf.Timeout == 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, conf.Timeout)
}

// run dials, calls fn with a request context and prints its result.
func run(ctx context.Context, conf *config.ClientConfig, w io.Writer,
	fn func(ctx context.Context, c *client.Client) (interface{}, error)) error {
	logger, err := newLogger(conf)
	if err != nil {
		return err
	}

	reqCtx, cancel := requestContext(ctx, conf)
	defer cancel()

	c, err := dial(reqCtx, conf, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Stop(); err != nil {
			logger.Error("failed to stop client", "err", err)
		}
	}()

	res, err := fn(reqCtx, c)
	if err != nil {
		return err
	}
	return printJSON(w, res)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
