package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultClientConfig()
	assert.NoError(cfg.ValidateBasic())
	assert.Equal("/websocket", cfg.WSEndpoint)
	assert.Equal(30, cfg.TxSearchPageSize)
	assert.Equal(100, cfg.SubscriptionBufferSize)

	cfg.SetRoot("/foo")
	assert.Equal("/foo/config/config.toml", cfg.ConfigFile())

	assert.NoError(TestClientConfig().ValidateBasic())
}

func TestConfigValidateBasic(t *testing.T) {
	testCases := []struct {
		name    string
		modify  func(*ClientConfig)
		wantErr bool
	}{
		{"default", func(*ClientConfig) {}, false},
		{"empty remote", func(c *ClientConfig) { c.Remote = "" }, true},
		{"relative endpoint", func(c *ClientConfig) { c.WSEndpoint = "websocket" }, true},
		{"unknown level", func(c *ClientConfig) { c.LogLevel = "trace" }, true},
		{"json format", func(c *ClientConfig) { c.LogFormat = LogFormatJSON }, false},
		{"unknown format", func(c *ClientConfig) { c.LogFormat = "xml" }, true},
		{"negative attempts", func(c *ClientConfig) { c.MaxReconnectAttempts = -1 }, true},
		{"negative ping", func(c *ClientConfig) { c.PingPeriod = -time.Second }, true},
		{"ping slower than read", func(c *ClientConfig) {
			c.PingPeriod = 2 * time.Second
			c.ReadWait = time.Second
		}, true},
		{"ping without read wait", func(c *ClientConfig) { c.PingPeriod = 2 * time.Second }, false},
		{"zero buffer", func(c *ClientConfig) { c.SubscriptionBufferSize = 0 }, true},
		{"zero page size", func(c *ClientConfig) { c.TxSearchPageSize = 0 }, true},
		{"max page size", func(c *ClientConfig) { c.TxSearchPageSize = MaxTxSearchPageSize }, false},
		{"page size above node cap", func(c *ClientConfig) { c.TxSearchPageSize = 200 }, true},
		{"negative timeout", func(c *ClientConfig) { c.Timeout = -1 }, true},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultClientConfig()
			tc.modify(cfg)
			if tc.wantErr {
				assert.Error(t, cfg.ValidateBasic())
			} else {
				assert.NoError(t, cfg.ValidateBasic())
			}
		})
	}
}

func TestEnsureRoot(t *testing.T) {
	require := require.New(t)
	tmpDir := t.TempDir()

	require.NoError(EnsureRoot(tmpDir))

	data, err := os.ReadFile(filepath.Join(tmpDir, defaultConfigFilePath))
	require.NoError(err)
	assert.Contains(t, string(data), `remote = "tcp://127.0.0.1:26657"`)
	assert.Contains(t, string(data), `timeout = "10s"`)
	assert.Contains(t, string(data), `tx-search-page-size = 30`)

	// an existing file is left alone
	require.NoError(os.WriteFile(filepath.Join(tmpDir, defaultConfigFilePath), []byte("remote = \"x\"\n"), 0644))
	require.NoError(EnsureRoot(tmpDir))
	data, err = os.ReadFile(filepath.Join(tmpDir, defaultConfigFilePath))
	require.NoError(err)
	assert.Equal(t, "remote = \"x\"\n", string(data))
}
