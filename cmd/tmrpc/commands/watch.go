package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tendermint/tendermint-rpc/config"
	"github.com/tendermint/tendermint-rpc/libs/log"
	tmos "github.com/tendermint/tendermint-rpc/libs/os"
	"github.com/tendermint/tendermint-rpc/rpc/client/eventstream"
	rpcclient "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/client"
)

const metricsNamespace = "tmrpc"

var errNotStreaming = errors.New("watch needs a ws:// or wss:// remote")

// MakeWatchCommand returns the command printing events as they arrive.
func MakeWatchCommand(conf *config.ClientConfig) *cobra.Command {
	var (
		filter      string
		count       int
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:       "watch blocks|headers|txs",
		Short:     "Print committed blocks, headers or transactions as they arrive",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"blocks", "headers", "txs"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if filter != "" && args[0] != "txs" {
				return fmt.Errorf("--filter only applies to txs")
			}
			logger, err := newLogger(conf)
			if err != nil {
				return err
			}
			ctx, cancel := tmos.SignalContext(cmd.Context(), logger)
			defer cancel()

			var m *dialMetrics
			if metricsAddr != "" {
				m = &dialMetrics{
					transport: rpcclient.PrometheusMetrics(metricsNamespace),
					events:    eventstream.PrometheusMetrics(metricsNamespace),
				}
				if err := startMetricsServer(ctx, metricsAddr, logger); err != nil {
					return err
				}
			}

			c, err := dial(ctx, conf, logger, m)
			if err != nil {
				return err
			}
			defer func() {
				if err := c.Stop(); err != nil {
					logger.Error("failed to stop client", "err", err)
				}
			}()
			if !c.CanStream() {
				return errNotStreaming
			}

			var sub *eventstream.Subscription
			switch args[0] {
			case "blocks":
				sub, err = c.SubscribeNewBlock(ctx)
			case "headers":
				sub, err = c.SubscribeNewBlockHeader(ctx)
			case "txs":
				sub, err = c.SubscribeTx(ctx, filter)
			}
			if err != nil {
				return err
			}
			defer sub.Stop()
			logger.Info("watching", "query", sub.Query(), "version", c.Adaptor().Version())

			return watch(ctx, sub, count, cmd)
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "extra conditions for txs, e.g. \"transfer.recipient='abc'\"")
	cmd.Flags().IntVar(&count, "count", 0, "exit after this many events, 0 to run until interrupted")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func watch(ctx context.Context, sub *eventstream.Subscription, count int, cmd *cobra.Command) error {
	for seen := 0; count == 0 || seen < count; seen++ {
		select {
		case ev := <-sub.Out():
			if err := printJSON(cmd.OutOrStdout(), ev); err != nil {
				return err
			}
		case <-sub.Canceled():
			return sub.Err()
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

func startMetricsServer(ctx context.Context, addr string, logger log.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen for metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logger.Info("serving metrics", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return nil
}
