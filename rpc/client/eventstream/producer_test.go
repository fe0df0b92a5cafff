package eventstream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/tendermint-rpc/libs/service"
	rpcclient "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/client"
)

func TestProducerStartTwice(t *testing.T) {
	t.Cleanup(leaktest.CheckTimeout(t, 4*time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	node, c := setup(ctx, t)
	s := newStream(t, c, txQuery)

	p := newProducer(s)
	require.NoError(t, p.Start(ctx))
	sub := node.nextRequest(t)
	assert.Equal(t, "subscribe", sub.Method)

	err := p.Start(ctx)
	require.Error(t, err)
	var usageErr *rpcclient.ProtocolUsageError
	require.True(t, errors.As(err, &usageErr), "unexpected error %v", err)
	assert.ErrorIs(t, err, service.ErrAlreadyStarted)
	// the second start sends nothing
	node.noRequest(t)

	p.stop(true)
	unsub := node.nextRequest(t)
	assert.Equal(t, "unsubscribe", unsub.Method)
	assert.Equal(t, sub.ID, unsub.ID)
	assert.False(t, p.IsRunning())
}
