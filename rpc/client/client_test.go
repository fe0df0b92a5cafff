package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/tendermint-rpc/rpc/adaptor"
	"github.com/tendermint/tendermint-rpc/rpc/client"
	"github.com/tendermint/tendermint-rpc/rpc/client/mock"
	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
	rpcclient "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/client"
	rpctypes "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/types"
)

const testPubKey = "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="

// statusJSON is the status result of a v0.33 node reporting version.
func statusJSON(version string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"node_info":{"protocol_version":{"p2p":"7","block":"10","app":"1"},"id":"abcd",
			"listen_addr":"tcp://0.0.0.0:26656","network":"test-chain","version":%q,
			"channels":"4020","moniker":"node0","other":{"tx_index":"on","rpc_address":"tcp://0.0.0.0:26657"}},
		"sync_info":{"latest_block_hash":"AABB","latest_app_hash":"05","latest_block_height":"1234",
			"latest_block_time":"2020-03-01T10:00:00Z","catching_up":false},
		"validator_info":{"address":"0A0B","pub_key":{"type":"tendermint/PubKeyEd25519","value":%q},
			"voting_power":"10"}}`, version, testPubKey))
}

func txJSON(height int) string {
	return fmt.Sprintf(`{"hash":"%X","height":"%d","index":0,"tx_result":{"code":0,"events":[]},"tx":"dHgx"}`,
		[]byte{byte(height)}, height)
}

func newMockClient(t *testing.T, handlers map[string]mock.Handler, opts ...client.Option) (*client.Client, *mock.Caller) {
	t.Helper()
	if _, ok := handlers[adaptor.MethodStatus]; !ok {
		handlers[adaptor.MethodStatus] = mock.Respond(mock.Call{Response: statusJSON("0.33.9")})
	}
	caller := &mock.Caller{Handlers: handlers}
	c, err := client.New(context.Background(), caller, opts...)
	require.NoError(t, err)
	return c, caller
}

func TestNewDetectsVersion(t *testing.T) {
	c, _ := newMockClient(t, map[string]mock.Handler{})
	assert.Equal(t, "v0.33", c.Adaptor().Version())
	assert.False(t, c.CanStream())

	caller := &mock.Caller{Handlers: map[string]mock.Handler{
		adaptor.MethodStatus: mock.Respond(mock.Call{Response: statusJSON("0.99.0")}),
	}}
	_, err := client.New(context.Background(), caller)
	var unsupported *adaptor.UnsupportedVersionError
	require.True(t, errors.As(err, &unsupported), err)
	assert.Equal(t, "0.99.0", unsupported.Version)
}

func TestStatus(t *testing.T) {
	c, caller := newMockClient(t, map[string]mock.Handler{})

	status, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1234, status.SyncInfo.LatestBlockHeight)
	assert.Equal(t, "node0", status.NodeInfo.Moniker)
	assert.True(t, status.TxIndexEnabled())

	// one call for detection, one for Status
	assert.Len(t, caller.CallsTo(adaptor.MethodStatus), 2)
}

func TestErrorsKeepTheirType(t *testing.T) {
	c, _ := newMockClient(t, map[string]mock.Handler{
		adaptor.MethodHealth: mock.Respond(mock.Call{
			Error: &rpctypes.RPCError{Code: -32603, Message: "Internal error", Data: "boom"},
		}),
		adaptor.MethodGenesis: mock.Respond(mock.Call{Response: json.RawMessage(`[]`)}),
	})
	ctx := context.Background()

	_, err := c.Health(ctx)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Health: "), err.Error())
	var rpcErr *rpctypes.RPCError
	require.True(t, errors.As(err, &rpcErr), err)
	assert.Equal(t, "boom", rpcErr.Data)

	_, err = c.Genesis(ctx)
	require.Error(t, err)
	var decodeErr *adaptor.DecodeError
	require.True(t, errors.As(err, &decodeErr), err)
	assert.Equal(t, "result", decodeErr.Field)
}

func TestTxSearchAll(t *testing.T) {
	const total = 65
	c, caller := newMockClient(t, map[string]mock.Handler{
		adaptor.MethodTxSearch: func(args mock.Args) (interface{}, error) {
			page, err := strconv.Atoi(args["page"].(string))
			if err != nil {
				return nil, err
			}
			perPage, err := strconv.Atoi(args["per_page"].(string))
			if err != nil {
				return nil, err
			}
			var txs []string
			for i := (page - 1) * perPage; i < page*perPage && i < total; i++ {
				txs = append(txs, txJSON(i+1))
			}
			return json.RawMessage(fmt.Sprintf(`{"txs":[%s],"total_count":"%d"}`,
				strings.Join(txs, ","), total)), nil
		},
	})

	res, err := c.TxSearchAll(context.Background(), "tx.height>0", false, "asc")
	require.NoError(t, err)
	assert.Equal(t, total, res.TotalCount)
	require.Len(t, res.Txs, total)
	for i, tx := range res.Txs {
		assert.EqualValues(t, i+1, tx.Height)
	}

	calls := caller.CallsTo(adaptor.MethodTxSearch)
	require.Len(t, calls, 3)
	for i, call := range calls {
		args := call.Args.(mock.Args)
		assert.Equal(t, strconv.Itoa(i+1), args["page"])
		assert.Equal(t, "30", args["per_page"])
		assert.Equal(t, "tx.height>0", args["query"])
		assert.Equal(t, "asc", args["order_by"])
	}
}

func TestTxSearchAllStopsOnEmptyPage(t *testing.T) {
	c, caller := newMockClient(t, map[string]mock.Handler{
		adaptor.MethodTxSearch: func(args mock.Args) (interface{}, error) {
			if args["page"] == "1" {
				return json.RawMessage(fmt.Sprintf(`{"txs":[%s,%s],"total_count":"9"}`,
					txJSON(1), txJSON(2))), nil
			}
			return json.RawMessage(`{"txs":[],"total_count":"9"}`), nil
		},
	}, client.WithTxSearchPageSize(2))

	res, err := c.TxSearchAll(context.Background(), "tx.height>0", false, "")
	require.NoError(t, err)
	assert.Len(t, res.Txs, 2)
	assert.Equal(t, 9, res.TotalCount)
	assert.Len(t, caller.CallsTo(adaptor.MethodTxSearch), 2)
}

func TestTxSearchAllFollowsNodePageCap(t *testing.T) {
	const (
		total   = 250
		nodeCap = 40
	)
	c, caller := newMockClient(t, map[string]mock.Handler{
		adaptor.MethodTxSearch: func(args mock.Args) (interface{}, error) {
			page, err := strconv.Atoi(args["page"].(string))
			if err != nil {
				return nil, err
			}
			perPage, err := strconv.Atoi(args["per_page"].(string))
			if err != nil {
				return nil, err
			}
			if perPage > nodeCap {
				perPage = nodeCap
			}
			var txs []string
			for i := (page - 1) * perPage; i < page*perPage && i < total; i++ {
				txs = append(txs, txJSON(i+1))
			}
			return json.RawMessage(fmt.Sprintf(`{"txs":[%s],"total_count":"%d"}`,
				strings.Join(txs, ","), total)), nil
		},
	}, client.WithTxSearchPageSize(200))

	res, err := c.TxSearchAll(context.Background(), "tx.height>0", false, "")
	require.NoError(t, err)
	require.Len(t, res.Txs, total)
	for i, tx := range res.Txs {
		assert.EqualValues(t, i+1, tx.Height)
	}

	calls := caller.CallsTo(adaptor.MethodTxSearch)
	require.Len(t, calls, 7)
	for i, call := range calls {
		args := call.Args.(mock.Args)
		assert.Equal(t, strconv.Itoa(i+1), args["page"])
		assert.Equal(t, strconv.Itoa(client.MaxTxSearchPageSize), args["per_page"])
	}
}

func TestTxSearchAllNoResults(t *testing.T) {
	c, caller := newMockClient(t, map[string]mock.Handler{
		adaptor.MethodTxSearch: mock.Respond(mock.Call{Response: json.RawMessage(`{"txs":[],"total_count":"0"}`)}),
	})

	res, err := c.TxSearchAll(context.Background(), "tx.height>0", false, "")
	require.NoError(t, err)
	assert.Empty(t, res.Txs)
	assert.Len(t, caller.CallsTo(adaptor.MethodTxSearch), 1)
}

func TestBroadcastTxChecksHash(t *testing.T) {
	tx := coretypes.Tx("name=satoshi")
	a, err := adaptor.ForVersion("0.33.9")
	require.NoError(t, err)
	hash := fmt.Sprintf("%X", a.HashTx(tx))

	c, caller := newMockClient(t, map[string]mock.Handler{
		adaptor.MethodBroadcastTxSync: mock.Respond(mock.Call{
			Response: json.RawMessage(`{"code":0,"data":"","log":"","hash":"` + hash + `"}`),
		}),
		adaptor.MethodBroadcastTxAsync: mock.Respond(mock.Call{
			Response: json.RawMessage(`{"code":0,"data":"","log":"","hash":"AABB"}`),
		}),
	})
	ctx := context.Background()

	res, err := c.BroadcastTxSync(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, hash, res.Hash.String())
	calls := caller.CallsTo(adaptor.MethodBroadcastTxSync)
	require.Len(t, calls, 1)
	assert.Equal(t, "bmFtZT1zYXRvc2hp", calls[0].Args.(mock.Args)["tx"])

	_, err = c.BroadcastTxAsync(ctx, tx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, adaptor.ErrHashMismatch), err)
}

func TestBroadcastTxCommit(t *testing.T) {
	tx := coretypes.Tx("name=satoshi")
	a, err := adaptor.ForVersion("0.33.9")
	require.NoError(t, err)
	hash := fmt.Sprintf("%X", a.HashTx(tx))

	testCases := []struct {
		checkCode, deliverCode uint32
		ok                     bool
	}{
		{0, 0, true},
		{1, 0, false},
		{0, 5, false},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("%d/%d", tc.checkCode, tc.deliverCode), func(t *testing.T) {
			c, _ := newMockClient(t, map[string]mock.Handler{
				adaptor.MethodBroadcastTxCommit: mock.Respond(mock.Call{
					Response: json.RawMessage(fmt.Sprintf(
						`{"check_tx":{"code":%d},"deliver_tx":{"code":%d},"hash":%q,"height":"12"}`,
						tc.checkCode, tc.deliverCode, hash)),
				}),
			})
			res, err := c.BroadcastTxCommit(context.Background(), tx)
			require.NoError(t, err)
			assert.EqualValues(t, 12, res.Height)
			assert.Equal(t, tc.ok, res.IsOK())
		})
	}
}

func TestSubscribeNeedsStreamingTransport(t *testing.T) {
	c, caller := newMockClient(t, map[string]mock.Handler{})
	before := len(caller.Calls())

	_, err := c.SubscribeNewBlock(context.Background())
	var usageErr *rpcclient.ProtocolUsageError
	require.True(t, errors.As(err, &usageErr), err)
	assert.Len(t, caller.Calls(), before)
}
