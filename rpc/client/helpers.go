package client

import (
	"context"
	"fmt"
	"time"

	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
)

// Waiter is informed of current height, decided whether to quit early
type Waiter func(delta int64) (abort error)

// DefaultWaitStrategy is the standard backoff algorithm,
// but you can plug in another one
func DefaultWaitStrategy(delta int64) (abort error) {
	if delta > 10 {
		return fmt.Errorf("waiting for %d blocks... aborting", delta)
	} else if delta > 0 {
		// estimate of wait time....
		// wait half a second for the next block (in progress)
		// plus one second for every full block
		delay := time.Duration(delta-1)*time.Second + 500*time.Millisecond
		time.Sleep(delay)
	}
	return nil
}

// Wait for height will poll status at reasonable intervals until
// the block at the given height is available.
//
// If waiter is nil, we use DefaultWaitStrategy, but you can also
// provide your own implementation
func WaitForHeight(ctx context.Context, c StatusClient, h int64, waiter Waiter) error {
	if waiter == nil {
		waiter = DefaultWaitStrategy
	}
	delta := int64(1)
	for delta > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := c.Status(ctx)
		if err != nil {
			return err
		}
		delta = h - s.SyncInfo.LatestBlockHeight
		// wait for the time, or abort early
		if err := waiter(delta); err != nil {
			return err
		}
	}

	return nil
}

// WaitForOneEvent subscribes to query and returns the first event, or an error
// if ctx ends or the subscription is cancelled first. The subscription is
// stopped before returning.
func WaitForOneEvent(ctx context.Context, c EventsClient, query string) (coretypes.EventData, error) {
	sub, err := c.Subscribe(ctx, query)
	if err != nil {
		return nil, err
	}
	defer sub.Stop()

	select {
	case ev := <-sub.Out():
		return ev.Data, nil
	case <-sub.Canceled():
		return nil, sub.Err()
	case <-ctx.Done():
		return nil, fmt.Errorf("timed out waiting for event %s: %w", query, ctx.Err())
	}
}
