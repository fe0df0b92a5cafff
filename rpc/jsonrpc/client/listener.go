package client

import (
	"sync"

	rpctypes "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/types"
)

// listenerBuffer is the number of frames queued for a listener before the
// dispatch routine waits on it.
const listenerBuffer = 16

// Listener receives the frames of one subscribe request: first the
// acknowledgement carrying the request id, then event frames carrying
// <id>#event. It is registered on the websocket until Close is called or the
// client stops. Connection losses do not end it.
type Listener struct {
	id     rpctypes.JSONRPCStringID
	client *WSClient
	reg    *registration

	frames chan rpctypes.RPCResponse
	done   chan struct{}
	once   sync.Once

	mtx sync.Mutex
	err error
}

func newListener(c *WSClient, id rpctypes.JSONRPCStringID) *Listener {
	return &Listener{
		id:     id,
		client: c,
		frames: make(chan rpctypes.RPCResponse, listenerBuffer),
		done:   make(chan struct{}),
	}
}

// ID returns the id of the subscribe request.
func (l *Listener) ID() rpctypes.JSONRPCStringID { return l.id }

// Frames returns the channel of frames routed to the listener. It is never
// closed; select on Done as well.
func (l *Listener) Frames() <-chan rpctypes.RPCResponse { return l.frames }

// Done is closed once the listener is closed or the client stops.
func (l *Listener) Done() <-chan struct{} { return l.done }

// Err returns ErrClientNotOpen if the client stopped under the listener, nil
// otherwise.
func (l *Listener) Err() error {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.err
}

// Close detaches the listener from the connection. A subscribe request still
// queued for a connection that is not open is discarded. Close does not
// unsubscribe; send that separately with Notify.
func (l *Listener) Close() {
	if l.finish(nil) {
		l.client.detach(l)
	}
}

// finish closes done exactly once and reports whether this call did it.
func (l *Listener) finish(err error) bool {
	closed := false
	l.once.Do(func() {
		l.mtx.Lock()
		l.err = err
		l.mtx.Unlock()
		close(l.done)
		l.client.metrics.StreamListeners.Add(-1)
		closed = true
	})
	return closed
}

// deliver is called by the dispatch routine only.
func (l *Listener) deliver(resp rpctypes.RPCResponse, quit <-chan struct{}) {
	select {
	case l.frames <- resp:
	case <-l.done:
	case <-quit:
	}
}
