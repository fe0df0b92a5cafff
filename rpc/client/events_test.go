package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/tendermint-rpc/libs/log"
	"github.com/tendermint/tendermint-rpc/rpc/adaptor"
	"github.com/tendermint/tendermint-rpc/rpc/client"
	"github.com/tendermint/tendermint-rpc/rpc/client/eventstream"
	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
	rpcclient "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/client"
	rpctypes "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/types"
)

const (
	waitTimeout = 5 * time.Second
	txFrame     = `{"query":"tm.event='Tx' AND tx.height>5","data":{"type":"tendermint/event/Tx",` +
		`"value":{"TxResult":{"height":"6","index":0,"tx":"dHgx","result":{"code":0,"events":[]}}}},` +
		`"events":{"tm.event":["Tx"],"tx.height":["6"]}}`
)

var upgrader = websocket.Upgrader{}

// wsNode acknowledges every request of the last connection and records them.
type wsNode struct {
	mtx      sync.Mutex
	conn     *websocket.Conn
	requests chan rpctypes.RPCRequest
}

func (n *wsNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	n.mtx.Lock()
	n.conn = conn
	n.mtx.Unlock()

	for {
		var req rpctypes.RPCRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		select {
		case n.requests <- req:
		default:
		}
		if err := n.send(rpctypes.NewRPCSuccessResponse(req.ID, struct{}{})); err != nil {
			return
		}
	}
}

func (n *wsNode) send(resp rpctypes.RPCResponse) error {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return n.conn.WriteJSON(resp)
}

func (n *wsNode) nextRequest(t *testing.T) rpctypes.RPCRequest {
	t.Helper()
	select {
	case req := <-n.requests:
		return req
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a request")
	}
	return rpctypes.RPCRequest{}
}

func (n *wsNode) noRequest(t *testing.T) {
	t.Helper()
	select {
	case req := <-n.requests:
		t.Fatalf("unexpected request %v", req)
	case <-time.After(100 * time.Millisecond):
	}
}

func (n *wsNode) emit(t *testing.T, sub rpctypes.RPCRequest, payload string) {
	t.Helper()
	id, ok := sub.ID.(rpctypes.JSONRPCStringID)
	require.True(t, ok)
	require.NoError(t, n.send(rpctypes.NewRPCSuccessResponse(rpctypes.EventID(id), json.RawMessage(payload))))
}

func newWSClient(ctx context.Context, t *testing.T) (*wsNode, *client.Client) {
	t.Helper()
	node := &wsNode{requests: make(chan rpctypes.RPCRequest, 100)}
	s := httptest.NewServer(node)
	t.Cleanup(s.Close)

	ws, err := rpcclient.NewWS(s.URL, rpcclient.DefaultWSEndpoint,
		rpcclient.WSLogger(log.TestingLogger()))
	require.NoError(t, err)
	require.NoError(t, ws.Start(ctx))
	t.Cleanup(func() { _ = ws.Stop() })

	a, err := adaptor.ForVersion("0.33.0")
	require.NoError(t, err)
	c := client.NewWithAdaptor(ws, a, client.WithLogger(log.TestingLogger()))
	t.Cleanup(func() { _ = c.Stop() })
	return node, c
}

func receiveTx(t *testing.T, sub *eventstream.Subscription) coretypes.EventDataTx {
	t.Helper()
	select {
	case ev := <-sub.Out():
		data, ok := ev.Data.(coretypes.EventDataTx)
		require.True(t, ok, "unexpected event data %T", ev.Data)
		return data
	case <-sub.Canceled():
		t.Fatalf("subscription canceled: %v", sub.Err())
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for an event")
	}
	return coretypes.EventDataTx{}
}

func TestSubscribeSharesEqualQueries(t *testing.T) {
	t.Cleanup(leaktest.CheckTimeout(t, 4*time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	node, c := newWSClient(ctx, t)
	assert.True(t, c.CanStream())

	first, err := c.SubscribeTx(ctx, "tx.height>5")
	require.NoError(t, err)
	second, err := c.Subscribe(ctx, "tx.height > 5 AND tm.event='Tx'")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Streams())

	req := node.nextRequest(t)
	assert.Equal(t, adaptor.MethodSubscribe, req.Method)
	assert.JSONEq(t, `{"query":"tm.event='Tx' AND tx.height>5"}`, string(req.Params))
	node.noRequest(t)

	node.emit(t, req, txFrame)
	for _, sub := range []*eventstream.Subscription{first, second} {
		tx := receiveTx(t, sub)
		assert.EqualValues(t, 6, tx.Height)
		assert.Equal(t, coretypes.Tx("tx1"), tx.Tx)
	}

	first.Stop()
	node.noRequest(t)
	assert.Equal(t, 1, c.Streams())

	second.Stop()
	unsub := node.nextRequest(t)
	assert.Equal(t, "unsubscribe", unsub.Method)
	assert.Equal(t, req.ID, unsub.ID)
	assert.Equal(t, 0, c.Streams())

	// a new consumer opens a fresh subscription
	third, err := c.SubscribeTx(ctx, "tx.height>5")
	require.NoError(t, err)
	again := node.nextRequest(t)
	assert.Equal(t, adaptor.MethodSubscribe, again.Method)
	assert.NotEqual(t, req.ID, again.ID)
	third.Stop()
}

func TestSubscribeRejectsBadQuery(t *testing.T) {
	t.Cleanup(leaktest.CheckTimeout(t, 4*time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	node, c := newWSClient(ctx, t)
	_, err := c.Subscribe(ctx, "tm.event=")
	require.Error(t, err)
	assert.Equal(t, 0, c.Streams())
	node.noRequest(t)
}

func TestStopCancelsSubscriptions(t *testing.T) {
	t.Cleanup(leaktest.CheckTimeout(t, 4*time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	node, c := newWSClient(ctx, t)
	blocks, err := c.SubscribeNewBlock(ctx)
	require.NoError(t, err)
	headers, err := c.SubscribeNewBlockHeader(ctx)
	require.NoError(t, err)
	node.nextRequest(t)
	node.nextRequest(t)
	assert.Equal(t, 2, c.Streams())

	require.NoError(t, c.Stop())
	for _, sub := range []*eventstream.Subscription{blocks, headers} {
		select {
		case <-sub.Canceled():
			assert.Equal(t, eventstream.ErrUnsubscribed, sub.Err())
		case <-time.After(waitTimeout):
			t.Fatal("subscription was not canceled")
		}
	}
	assert.Equal(t, 0, c.Streams())
}

func TestWaitForOneEvent(t *testing.T) {
	t.Cleanup(leaktest.CheckTimeout(t, 4*time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	node, c := newWSClient(ctx, t)

	type result struct {
		data coretypes.EventData
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := client.WaitForOneEvent(ctx, c, "tm.event='Tx' AND tx.height>5")
		done <- result{data, err}
	}()

	req := node.nextRequest(t)
	node.emit(t, req, txFrame)

	select {
	case res := <-done:
		require.NoError(t, res.err)
		tx, ok := res.data.(coretypes.EventDataTx)
		require.True(t, ok, "unexpected event data %T", res.data)
		assert.EqualValues(t, 6, tx.Height)
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for the event")
	}

	// the subscription is released before returning
	unsub := node.nextRequest(t)
	assert.Equal(t, "unsubscribe", unsub.Method)
	assert.Equal(t, 0, c.Streams())
}

func TestWaitForOneEventTimesOut(t *testing.T) {
	t.Cleanup(leaktest.CheckTimeout(t, 4*time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, c := newWSClient(ctx, t)
	waitCtx, waitCancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer waitCancel()

	_, err := client.WaitForOneEvent(waitCtx, c, "tm.event='NewBlock'")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
