package eventstream

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
)

var (
	// ErrUnsubscribed is returned by Err when the consumer stopped its
	// subscription.
	ErrUnsubscribed = errors.New("client unsubscribed")

	// ErrOutOfCapacity is returned by Err when the consumer did not drain
	// its buffer fast enough.
	ErrOutOfCapacity = errors.New("client is not pulling messages fast enough")

	// ErrStreamStopped is returned when attaching a consumer to a stream
	// that already stopped.
	ErrStreamStopped = errors.New("event stream stopped")
)

// Subscription is a consumer handle of a stream. Events are delivered on Out
// in the order the node emitted them, starting from the point the consumer
// attached. Canceled is closed when the subscription ends; Err then tells
// why.
type Subscription struct {
	id     string
	query  string
	stream *Stream

	out      chan coretypes.ResultEvent
	canceled chan struct{}
	once     sync.Once

	mtx sync.RWMutex
	err error
}

func newSubscription(s *Stream, capacity int) *Subscription {
	return &Subscription{
		id:       uuid.NewString(),
		query:    s.query,
		stream:   s,
		out:      make(chan coretypes.ResultEvent, capacity),
		canceled: make(chan struct{}),
	}
}

// ID returns the unique id of the consumer.
func (s *Subscription) ID() string { return s.id }

// Query returns the normalized query of the stream.
func (s *Subscription) Query() string { return s.query }

// Out returns a channel onto which events are published. It is never
// closed; select on Canceled as well.
func (s *Subscription) Out() <-chan coretypes.ResultEvent { return s.out }

// Canceled returns a channel that's closed when the subscription is
// terminated and supposed to be used in a select statement.
func (s *Subscription) Canceled() <-chan struct{} { return s.canceled }

// Err returns nil if the channel returned by Canceled is not yet closed.
//
// If the channel is closed, Err returns a non-nil error explaining why:
//   - ErrUnsubscribed if the consumer called Stop
//   - ErrOutOfCapacity if the consumer was not pulling events fast enough
//   - the transport or subscribe error that ended the stream otherwise
func (s *Subscription) Err() error {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.err
}

// Stop detaches the consumer. Stopping the last consumer stops the stream.
// Stop is idempotent.
func (s *Subscription) Stop() {
	if s.cancel(ErrUnsubscribed) {
		s.stream.detach(s)
	}
}

// cancel ends the subscription with err and reports whether it was still
// active.
func (s *Subscription) cancel(err error) bool {
	canceled := false
	s.once.Do(func() {
		s.mtx.Lock()
		s.err = err
		s.mtx.Unlock()
		close(s.canceled)
		canceled = true
	})
	return canceled
}

// publish hands ev to the consumer without blocking.
func (s *Subscription) publish(ev coretypes.ResultEvent) bool {
	select {
	case <-s.canceled:
		return true
	default:
	}
	select {
	case s.out <- ev:
		return true
	default:
		return false
	}
}
