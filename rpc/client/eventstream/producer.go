package eventstream

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/tendermint/tendermint-rpc/libs/log"
	"github.com/tendermint/tendermint-rpc/libs/service"
	"github.com/tendermint/tendermint-rpc/rpc/adaptor"
	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
	rpcclient "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/client"
	rpctypes "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/types"
)

// producer turns one subscribe request into decoded events. A producer is
// used for a single attempt; after a reconnect the stream builds a new one
// with a fresh request id.
type producer struct {
	service.BaseService

	streamer      rpcclient.Streamer
	codec         Codec
	subscribeCall adaptor.Call
	unsubCall     adaptor.Call
	logger        log.Logger
	metrics       *Metrics

	// callbacks into the owning stream
	onAck   func(p *producer, err error)
	onEvent func(p *producer, ev coretypes.ResultEvent)
	onClose func(p *producer, err error)

	listener *rpcclient.Listener

	// cleared when the node already forgot the subscription
	unsubscribe int32
}

func newProducer(s *Stream) *producer {
	p := &producer{
		streamer:      s.streamer,
		codec:         s.codec,
		subscribeCall: s.subscribe,
		unsubCall:     s.unsubscribe,
		logger:        s.logger,
		metrics:       s.metrics,
		onAck:         s.handleAck,
		onEvent:       s.broadcast,
		onClose:       s.handleClose,
		unsubscribe:   1,
	}
	p.BaseService = *service.NewBaseService(s.logger, "EventProducer", p)
	return p
}

// Start sends the subscribe request. Starting a producer twice is a usage
// error.
func (p *producer) Start(ctx context.Context) error {
	err := p.BaseService.Start(ctx)
	if err == service.ErrAlreadyStarted {
		return &rpcclient.ProtocolUsageError{Reason: "event producer started twice", Err: err}
	}
	return err
}

func (p *producer) OnStart(ctx context.Context) error {
	l, err := p.streamer.Listen(ctx, p.subscribeCall.Method, p.subscribeCall.Params)
	if err != nil {
		return err
	}
	p.listener = l
	go p.run(l)
	return nil
}

// OnStop sends a best-effort unsubscribe reusing the subscribe id and
// detaches the listener. The unsubscribe response is not awaited.
func (p *producer) OnStop() {
	if atomic.LoadInt32(&p.unsubscribe) == 1 {
		req := rpctypes.NewRPCRequest(p.listener.ID(), p.unsubCall.Method, p.unsubCall.Params)
		if err := p.streamer.Notify(context.Background(), req); err != nil {
			p.logger.Debug("failed to unsubscribe", "id", p.listener.ID(), "err", err)
		}
	}
	p.listener.Close()
}

// stop stops the producer; stopping twice is a no-op.
func (p *producer) stop(unsubscribe bool) {
	if !unsubscribe {
		atomic.StoreInt32(&p.unsubscribe, 0)
	}
	if err := p.BaseService.Stop(); err != nil && err != service.ErrAlreadyStopped {
		p.logger.Debug("stop producer", "err", err)
	}
}

func (p *producer) run(l *rpcclient.Listener) {
	acked := false
	for {
		select {
		case <-p.Quit():
			return

		case <-l.Done():
			if err := l.Err(); err != nil {
				p.onClose(p, err)
			}
			return

		case frame := <-l.Frames():
			if _, isEvent := rpctypes.SplitEventID(frame.ID); !isEvent {
				if acked {
					p.logger.Debug("ignoring repeated acknowledgement", "id", frame.ID)
					continue
				}
				acked = true
				if _, err := rpctypes.Unwrap(frame); err != nil {
					p.onAck(p, fmt.Errorf("subscribe refused: %w", err))
					return
				}
				p.onAck(p, nil)
				continue
			}
			p.handleEvent(frame)
		}
	}
}

func (p *producer) handleEvent(frame rpctypes.RPCResponse) {
	result, err := rpctypes.Unwrap(frame)
	if err != nil {
		p.metrics.EventsDropped.Add(1)
		p.logger.Error("node sent an error on the event stream", "id", frame.ID, "err", err)
		return
	}
	ev, err := p.codec.DecodeEvent(result)
	if err != nil {
		p.metrics.EventsDropped.Add(1)
		p.logger.Error("dropping undecodable event", "id", frame.ID, "err", err)
		return
	}
	p.onEvent(p, ev)
}
