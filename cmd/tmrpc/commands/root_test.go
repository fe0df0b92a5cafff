package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/tendermint-rpc/config"
	"github.com/tendermint/tendermint-rpc/libs/cli"
	tmos "github.com/tendermint/tendermint-rpc/libs/os"
	rpctypes "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/types"
)

const statusResult = `{
	"node_info":{"protocol_version":{"p2p":"7","block":"10","app":"1"},"id":"abcd",
		"listen_addr":"tcp://0.0.0.0:26656","network":"test-chain","version":"0.33.9",
		"channels":"4020","moniker":"node0","other":{"tx_index":"on","rpc_address":"tcp://0.0.0.0:26657"}},
	"sync_info":{"latest_block_hash":"AABB","latest_app_hash":"05","latest_block_height":"1234",
		"latest_block_time":"2020-03-01T10:00:00Z","catching_up":false},
	"validator_info":{"address":"0A0B","pub_key":{"type":"tendermint/PubKeyEd25519",
		"value":"AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="},"voting_power":"10"}}`

const txEvent = `{"query":"tm.event='Tx'","data":{"type":"tendermint/event/Tx",` +
	`"value":{"TxResult":{"height":"%d","index":0,"tx":"dHgx","result":{"code":0,"events":[]}}}},` +
	`"events":{"tm.event":["Tx"],"tx.height":["%d"]}}`

var upgrader = websocket.Upgrader{}

// fakeNode is a v0.33 node answering status and tx_search over HTTP and
// websocket. Every subscription gets two Tx events.
type fakeNode struct {
	mtx      sync.Mutex
	requests []rpctypes.RPCRequest
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/websocket" {
		n.serveWS(w, r)
		return
	}
	var req rpctypes.RPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(n.respond(req))
}

func (n *fakeNode) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		var req rpctypes.RPCRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if err := conn.WriteJSON(n.respond(req)); err != nil {
			return
		}
		if req.Method != "subscribe" {
			continue
		}
		id := req.ID.(rpctypes.JSONRPCStringID)
		for h := 6; h <= 7; h++ {
			ev := json.RawMessage(fmt.Sprintf(txEvent, h, h))
			if err := conn.WriteJSON(rpctypes.NewRPCSuccessResponse(rpctypes.EventID(id), ev)); err != nil {
				return
			}
		}
	}
}

func (n *fakeNode) respond(req rpctypes.RPCRequest) rpctypes.RPCResponse {
	n.mtx.Lock()
	n.requests = append(n.requests, req)
	n.mtx.Unlock()

	switch req.Method {
	case "status":
		return rpctypes.NewRPCSuccessResponse(req.ID, json.RawMessage(statusResult))
	case "tx_search":
		var params struct {
			Page string `json:"page"`
		}
		_ = json.Unmarshal(req.Params, &params)
		page, _ := strconv.Atoi(params.Page)
		tx := fmt.Sprintf(`{"hash":"%02X","height":"%d","index":0,"tx_result":{"code":0,"events":[]},"tx":"dHgx"}`,
			page, page)
		return rpctypes.NewRPCSuccessResponse(req.ID,
			json.RawMessage(fmt.Sprintf(`{"txs":[%s],"total_count":"3"}`, tx)))
	case "subscribe", "unsubscribe":
		return rpctypes.NewRPCSuccessResponse(req.ID, struct{}{})
	}
	return rpctypes.RPCMethodNotFoundError(req.ID)
}

func (n *fakeNode) calls(method string) []rpctypes.RPCRequest {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	var out []rpctypes.RPCRequest
	for _, req := range n.requests {
		if req.Method == method {
			out = append(out, req)
		}
	}
	return out
}

// clearConfig clears env vars, the given root dir, and resets viper.
func clearConfig(t *testing.T, dir string) *config.ClientConfig {
	t.Helper()
	require.NoError(t, os.Unsetenv("TMRPCREMOTE"))
	require.NoError(t, os.Unsetenv("TMRPC_REMOTE"))

	viper.Reset()
	conf := config.DefaultClientConfig()
	conf.SetRoot(dir)
	return conf
}

// testRootCmd prepares a root command with every subcommand.
func testRootCmd(conf *config.ClientConfig) *cobra.Command {
	cmd := RootCommand(conf)
	cmd.AddCommand(
		MakeInitCommand(conf),
		MakeStatusCommand(conf),
		MakeBlockCommand(conf),
		MakeTxSearchCommand(conf),
		MakeWatchCommand(conf),
		VersionCmd,
	)
	return cli.PrepareBaseCmd(cmd, "TMRPC", conf.RootDir)
}

// runWithArgs executes the command with args and env set and returns
// what it printed.
func runWithArgs(ctx context.Context, t *testing.T, conf *config.ClientConfig, args []string,
	env map[string]string) (string, error) {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}

	cmd := testRootCmd(conf)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestRootFlagsEnv(t *testing.T) {
	defaults := config.DefaultClientConfig()

	cases := []struct {
		args   []string
		env    map[string]string
		remote string
	}{
		{nil, nil, defaults.Remote},
		{[]string{"--remote", "tcp://1.2.3.4:26657"}, nil, "tcp://1.2.3.4:26657"},
		{nil, map[string]string{"TMRPC_REMOTE": "tcp://5.6.7.8:26657"}, "tcp://5.6.7.8:26657"},
		{nil, map[string]string{"TMRPCREMOTE": "tcp://5.6.7.9:26657"}, "tcp://5.6.7.9:26657"},
		// flags override env
		{[]string{"--remote", "tcp://1.2.3.4:26657"},
			map[string]string{"TMRPC_REMOTE": "tcp://5.6.7.8:26657"}, "tcp://1.2.3.4:26657"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i, tc := range cases {
		tc := tc
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			conf := clearConfig(t, t.TempDir())
			_, err := runWithArgs(ctx, t, conf, append([]string{"init"}, tc.args...), tc.env)
			require.NoError(t, err)
			assert.Equal(t, tc.remote, conf.Remote)
		})
	}
}

func TestRootConfig(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cases := []struct {
		args     []string
		logLevel string
	}{
		{nil, "debug"},                           // should load config
		{[]string{"--log-level=error"}, "error"}, // flag over rides
	}

	for i, tc := range cases {
		tc := tc
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			root := t.TempDir()
			conf := clearConfig(t, root)

			configDir := filepath.Join(root, "config")
			require.NoError(t, tmos.EnsureDir(configDir, 0700))
			require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"),
				[]byte("log-level = \"debug\"\ntx-search-page-size = 7\n"), 0600))

			_, err := runWithArgs(ctx, t, conf, append([]string{"init", "--home", root}, tc.args...), nil)
			require.NoError(t, err)
			assert.Equal(t, tc.logLevel, conf.LogLevel)
			assert.Equal(t, 7, conf.TxSearchPageSize)
		})
	}
}

func TestInvalidConfig(t *testing.T) {
	conf := clearConfig(t, t.TempDir())
	_, err := runWithArgs(context.Background(), t, conf, []string{"init", "--log-format", "xml"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log-format")
}

func TestInitWritesConfig(t *testing.T) {
	root := t.TempDir()
	conf := clearConfig(t, root)

	out, err := runWithArgs(context.Background(), t, conf, []string{"init", "--home", root}, nil)
	require.NoError(t, err)
	path := filepath.Join(root, "config", "config.toml")
	assert.Equal(t, path, strings.TrimSpace(out))
	assert.True(t, tmos.FileExists(path))
}

func TestVersion(t *testing.T) {
	conf := clearConfig(t, t.TempDir())
	out, err := runWithArgs(context.Background(), t, conf, []string{"version", "--verbose"}, nil)
	require.NoError(t, err)

	var info struct {
		Version  string   `json:"version"`
		Dialects []string `json:"dialects"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.Version)
	assert.Contains(t, info.Dialects, "v0.33")
	verbose = false
}

func TestStatus(t *testing.T) {
	node := &fakeNode{}
	srv := httptest.NewServer(node)
	defer srv.Close()

	conf := clearConfig(t, t.TempDir())
	out, err := runWithArgs(context.Background(), t, conf, []string{"status", "--remote", srv.URL}, nil)
	require.NoError(t, err)

	var status struct {
		NodeInfo struct {
			Moniker string `json:"moniker"`
		} `json:"node_info"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, "node0", status.NodeInfo.Moniker)
	// one call detects the version
	assert.Len(t, node.calls("status"), 2)
}

func TestBlockRejectsBadHeight(t *testing.T) {
	conf := clearConfig(t, t.TempDir())
	_, err := runWithArgs(context.Background(), t, conf, []string{"block", "tall"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid height")
}

func TestTxSearchAll(t *testing.T) {
	node := &fakeNode{}
	srv := httptest.NewServer(node)
	defer srv.Close()

	root := t.TempDir()
	conf := clearConfig(t, root)
	require.NoError(t, tmos.EnsureDir(filepath.Join(root, "config"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "config.toml"),
		[]byte("tx-search-page-size = 1\n"), 0600))

	out, err := runWithArgs(context.Background(), t, conf,
		[]string{"tx-search", "tx.height>0", "--all", "--remote", srv.URL, "--home", root}, nil)
	require.NoError(t, err)

	var res struct {
		Txs []struct {
			Height int64 `json:"height"`
		} `json:"txs"`
		TotalCount int `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3, res.TotalCount)
	require.Len(t, res.Txs, 3)
	for i, tx := range res.Txs {
		assert.EqualValues(t, i+1, tx.Height)
	}
	assert.Len(t, node.calls("tx_search"), 3)
}

func TestWatchNeedsWebsocket(t *testing.T) {
	node := &fakeNode{}
	srv := httptest.NewServer(node)
	defer srv.Close()

	conf := clearConfig(t, t.TempDir())
	_, err := runWithArgs(context.Background(), t, conf,
		[]string{"watch", "txs", "--count", "1", "--remote", srv.URL}, nil)
	assert.ErrorIs(t, err, errNotStreaming)
}

func TestWatchTxs(t *testing.T) {
	node := &fakeNode{}
	srv := httptest.NewServer(node)
	defer srv.Close()

	remote := "ws" + strings.TrimPrefix(srv.URL, "http")
	conf := clearConfig(t, t.TempDir())
	out, err := runWithArgs(context.Background(), t, conf,
		[]string{"watch", "txs", "--filter", "tx.height>5", "--count", "2", "--remote", remote}, nil)
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	for h := 6; h <= 7; h++ {
		var ev struct {
			Data struct {
				Height int64 `json:"height"`
			} `json:"data"`
		}
		require.NoError(t, dec.Decode(&ev))
		assert.EqualValues(t, h, ev.Data.Height)
	}

	subs := node.calls("subscribe")
	require.Len(t, subs, 1)
	assert.JSONEq(t, `{"query":"tm.event='Tx' AND tx.height>5"}`, string(subs[0].Params))
}
