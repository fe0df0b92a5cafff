package client

import (
	"errors"
	"fmt"
)

var (
	// ErrClientNotOpen is returned for requests issued on a websocket client
	// that is not started, has been stopped, or gave up reconnecting.
	ErrClientNotOpen = errors.New("websocket client is not open")

	// ErrConnectionLost is returned to calls that were awaiting a response on
	// a connection that dropped. The call is not retried.
	ErrConnectionLost = errors.New("websocket connection lost")

	// ErrDuplicateID is returned when a request id already has a live
	// registration on the connection.
	ErrDuplicateID = errors.New("request id already has a listener")
)

// ProtocolUsageError reports a call the component cannot serve in its current
// shape or state. It is returned before any network I/O happens.
type ProtocolUsageError struct {
	Reason string
	Err    error
}

func (e *ProtocolUsageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol usage error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol usage error: %s", e.Reason)
}

func (e *ProtocolUsageError) Unwrap() error { return e.Err }
