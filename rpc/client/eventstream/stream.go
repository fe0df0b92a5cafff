// Package eventstream keeps live subscriptions to a node's events across
// websocket reconnects.
//
// A Stream owns one subscribe request for a query and fans its events out to
// any number of consumers. The stream subscribes when the first consumer
// attaches and unsubscribes when the last one leaves. When the transport
// reconnects, the node has forgotten the subscription: the stream drops its
// producer without unsubscribing and subscribes again under a fresh request
// id. Events emitted while the connection was down are not recovered.
package eventstream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tendermint/tendermint-rpc/libs/log"
	"github.com/tendermint/tendermint-rpc/rpc/adaptor"
	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
	rpcclient "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/client"
)

// DefaultBufferSize is the number of events buffered per consumer.
const DefaultBufferSize = 100

// Codec encodes the subscribe and unsubscribe requests of a stream and
// decodes the results of its event frames. Adaptors implement it.
type Codec interface {
	EncodeSubscribe(req coretypes.RequestSubscribe) (adaptor.Call, error)
	EncodeUnsubscribe(req coretypes.RequestUnsubscribe) (adaptor.Call, error)
	DecodeEvent(result json.RawMessage) (coretypes.ResultEvent, error)
}

// State is the lifecycle state of a stream.
type State int

const (
	StateIdle State = iota
	StateSubscribing
	StateStreaming
	StateReconnecting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubscribing:
		return "subscribing"
	case StateStreaming:
		return "streaming"
	case StateReconnecting:
		return "reconnecting"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option sets an optional parameter of a Stream.
type Option func(*Stream)

// WithLogger sets the logger of the stream and its producers.
func WithLogger(logger log.Logger) Option {
	return func(s *Stream) { s.logger = logger }
}

// WithMetrics sets the metrics of the stream.
func WithMetrics(m *Metrics) Option {
	return func(s *Stream) { s.metrics = m }
}

// WithBufferSize sets the number of events buffered per consumer.
func WithBufferSize(n int) Option {
	return func(s *Stream) {
		if n > 0 {
			s.bufferSize = n
		}
	}
}

// OnStop registers fn to be called once the stream has stopped, after its
// locks are released.
func OnStop(fn func()) Option {
	return func(s *Stream) { s.onStop = fn }
}

// Stream is a reconnect-tolerant subscription to one query. It is safe for
// concurrent use.
type Stream struct {
	streamer    rpcclient.Streamer
	codec       Codec
	query       string
	subscribe   adaptor.Call
	unsubscribe adaptor.Call
	logger      log.Logger
	metrics     *Metrics
	bufferSize  int
	onStop      func()

	ctx    context.Context
	cancel context.CancelFunc

	// mtx guards the lifecycle. It is held across transport calls, which
	// never call back into the stream synchronously.
	mtx        sync.Mutex
	state      State
	producer   *producer
	removeHook func()
	err        error
	done       chan struct{}

	// consumersMtx guards consumers only, so that delivery never waits on
	// the lifecycle.
	consumersMtx sync.RWMutex
	consumers    map[string]*Subscription
}

// New returns an idle stream for query. The subscribe and unsubscribe
// requests are encoded once by codec and sent as encoded. The query is sent
// verbatim; pass a normalized one to share streams between equal queries.
func New(streamer rpcclient.Streamer, codec Codec, query string, opts ...Option) (*Stream, error) {
	subscribe, err := codec.EncodeSubscribe(coretypes.RequestSubscribe{Query: query})
	if err != nil {
		return nil, err
	}
	unsubscribe, err := codec.EncodeUnsubscribe(coretypes.RequestUnsubscribe{Query: query})
	if err != nil {
		return nil, err
	}
	s := &Stream{
		streamer:    streamer,
		codec:       codec,
		query:       query,
		subscribe:   subscribe,
		unsubscribe: unsubscribe,
		logger:      log.NewNopLogger(),
		metrics:     NopMetrics(),
		bufferSize:  DefaultBufferSize,
		done:        make(chan struct{}),
		consumers:   make(map[string]*Subscription),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("query", query)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}

// Query returns the query of the stream.
func (s *Stream) Query() string { return s.query }

// State returns the current lifecycle state.
func (s *Stream) State() State {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.state
}

// Done is closed once the stream stopped.
func (s *Stream) Done() <-chan struct{} { return s.done }

// Err returns the error that stopped the stream, or nil if it is running or
// stopped because its last consumer left.
func (s *Stream) Err() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.err
}

// Subscribe attaches a new consumer. The first consumer makes the stream
// subscribe; Subscribe then returns once the request has been handed to the
// transport, without waiting for the acknowledgement.
func (s *Stream) Subscribe(ctx context.Context) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mtx.Lock()
	if s.state == StateStopped {
		s.mtx.Unlock()
		return nil, ErrStreamStopped
	}

	sub := newSubscription(s, s.bufferSize)
	s.consumersMtx.Lock()
	s.consumers[sub.id] = sub
	s.consumersMtx.Unlock()

	if s.state != StateIdle {
		s.mtx.Unlock()
		return sub, nil
	}

	s.state = StateSubscribing
	s.removeHook = s.streamer.OnReconnect(s.handleReconnect)
	if err := s.startProducerLocked(); err != nil {
		s.stopLocked(err)
		s.mtx.Unlock()
		s.stopped()
		return nil, err
	}
	s.metrics.Streams.Add(1)
	s.mtx.Unlock()
	return sub, nil
}

// Stop cancels every consumer and unsubscribes. Stop is idempotent.
func (s *Stream) Stop() {
	s.mtx.Lock()
	if s.state == StateStopped {
		s.mtx.Unlock()
		return
	}
	s.stopLocked(nil)
	s.mtx.Unlock()
	s.stopped()
}

// Consumers returns the number of attached consumers.
func (s *Stream) Consumers() int {
	s.consumersMtx.RLock()
	defer s.consumersMtx.RUnlock()
	return len(s.consumers)
}

func (s *Stream) startProducerLocked() error {
	p := newProducer(s)
	if err := p.Start(s.ctx); err != nil {
		return err
	}
	s.producer = p
	s.logger.Debug("subscribed", "id", p.listener.ID())
	return nil
}

// stopLocked moves the stream to Stopped. s.mtx must be held; call stopped
// once it is released.
func (s *Stream) stopLocked(err error) {
	wasIdle := s.state == StateIdle
	s.state = StateStopped
	s.err = err
	if s.removeHook != nil {
		s.removeHook()
		s.removeHook = nil
	}
	if s.producer != nil {
		s.producer.stop(true)
		s.producer = nil
	}
	s.cancel()

	s.consumersMtx.Lock()
	consumers := s.consumers
	s.consumers = make(map[string]*Subscription)
	s.consumersMtx.Unlock()
	for _, sub := range consumers {
		if err != nil {
			sub.cancel(err)
		} else {
			sub.cancel(ErrUnsubscribed)
		}
	}

	if !wasIdle && err == nil {
		s.metrics.Streams.Add(-1)
	}
	close(s.done)
	if err != nil {
		s.logger.Error("event stream stopped", "err", err)
	} else {
		s.logger.Debug("event stream stopped")
	}
}

func (s *Stream) stopped() {
	if s.onStop != nil {
		s.onStop()
	}
}

// detach removes a consumer and stops the stream with the last one.
func (s *Stream) detach(sub *Subscription) {
	s.mtx.Lock()
	s.consumersMtx.Lock()
	delete(s.consumers, sub.id)
	left := len(s.consumers)
	s.consumersMtx.Unlock()

	if left > 0 || s.state == StateStopped {
		s.mtx.Unlock()
		return
	}
	s.stopLocked(nil)
	s.mtx.Unlock()
	s.stopped()
}

// fail stops the stream with err if p is still its producer.
func (s *Stream) fail(p *producer, err error) {
	s.mtx.Lock()
	if s.producer != p || s.state == StateStopped {
		s.mtx.Unlock()
		return
	}
	if s.state != StateIdle {
		s.metrics.Streams.Add(-1)
	}
	s.stopLocked(err)
	s.mtx.Unlock()
	s.stopped()
}

// handleReconnect runs on the transport's reconnect path, before queued
// requests are written. The old subscription died with the connection, so
// the producer is dropped without unsubscribing.
func (s *Stream) handleReconnect() {
	s.mtx.Lock()
	if s.state == StateStopped || s.state == StateIdle {
		s.mtx.Unlock()
		return
	}

	if s.producer != nil {
		s.producer.stop(false)
		s.producer = nil
	}
	s.state = StateReconnecting
	s.metrics.Restarts.Add(1)
	s.logger.Info("renewing subscription after reconnect")

	if err := s.startProducerLocked(); err != nil {
		s.metrics.Streams.Add(-1)
		s.stopLocked(fmt.Errorf("resubscribe: %w", err))
		s.mtx.Unlock()
		s.stopped()
		return
	}
	s.mtx.Unlock()
}

func (s *Stream) handleAck(p *producer, err error) {
	if err != nil {
		s.fail(p, err)
		return
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.producer == p && (s.state == StateSubscribing || s.state == StateReconnecting) {
		s.state = StateStreaming
	}
}

func (s *Stream) handleClose(p *producer, err error) {
	s.fail(p, err)
}

// broadcast hands ev to every consumer. Consumers whose buffer is full are
// cancelled with ErrOutOfCapacity.
func (s *Stream) broadcast(p *producer, ev coretypes.ResultEvent) {
	if !p.IsRunning() {
		return
	}
	var slow []*Subscription

	s.consumersMtx.RLock()
	for _, sub := range s.consumers {
		if !sub.publish(ev) {
			slow = append(slow, sub)
		}
	}
	n := len(s.consumers)
	s.consumersMtx.RUnlock()

	s.metrics.EventsDelivered.Add(float64(n - len(slow)))
	for _, sub := range slow {
		if sub.cancel(ErrOutOfCapacity) {
			s.metrics.ConsumersCanceled.Add(1)
			s.logger.Error("consumer is not pulling events fast enough", "consumer", sub.id)
			s.detach(sub)
		}
	}
}
