package config

import (
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

const (
	// LogFormatPlain is a format for colored text
	LogFormatPlain = "plain"
	// LogFormatJSON is a format for json output
	LogFormatJSON = "json"
)

// NOTE: the default configuration options were used to manually
// generate the config.toml. Please reflect any changes made here in the
// defaultConfigTemplate constant in config/toml.go
// NOTE: libs/cli must know to look in the config dir!
var (
	DefaultHomeDir   = ".tmrpc"
	defaultConfigDir = "config"

	defaultConfigFileName = "config.toml"
	defaultConfigFilePath = filepath.Join(defaultConfigDir, defaultConfigFileName)
)

// ClientConfig defines the configuration of an RPC client.
type ClientConfig struct {
	// The root directory for the config file
	RootDir string `mapstructure:"home"`

	// Address of the node: http://, https://, tcp:// or unix:// for request
	// / response calls, ws:// or wss:// to also watch events
	Remote string `mapstructure:"remote"`

	// Path of the node's websocket handler
	WSEndpoint string `mapstructure:"ws-endpoint"`

	// Output level for logging
	LogLevel string `mapstructure:"log-level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `mapstructure:"log-format"`

	// Maximum number of websocket reconnect attempts before giving up
	MaxReconnectAttempts int `mapstructure:"max-reconnect-attempts"`

	// Period of websocket pings; 0 disables pings. Must be less than ReadWait
	// when both are set.
	PingPeriod time.Duration `mapstructure:"ping-period"`

	// Time allowed to read the next websocket message; 0 means no deadline
	ReadWait time.Duration `mapstructure:"read-wait"`

	// Time allowed to write a websocket message; 0 means no deadline
	WriteWait time.Duration `mapstructure:"write-wait"`

	// Number of events buffered for each subscriber before it is cancelled
	SubscriptionBufferSize int `mapstructure:"subscription-buffer-size"`

	// Page size used when reading every page of a tx search
	TxSearchPageSize int `mapstructure:"tx-search-page-size"`

	// Timeout of a single request; 0 means no timeout
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultClientConfig returns a default configuration for an RPC client
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Remote:                 "tcp://127.0.0.1:26657",
		WSEndpoint:             "/websocket",
		LogLevel:               DefaultLogLevel,
		LogFormat:              LogFormatPlain,
		MaxReconnectAttempts:   25,
		PingPeriod:             0,
		ReadWait:               0,
		WriteWait:              0,
		SubscriptionBufferSize: 100,
		TxSearchPageSize:       30,
		Timeout:                10 * time.Second,
	}
}

// TestClientConfig returns a configuration that can be used for testing
func TestClientConfig() *ClientConfig {
	cfg := DefaultClientConfig()
	cfg.Remote = "tcp://127.0.0.1:36657"
	cfg.MaxReconnectAttempts = 3
	cfg.PingPeriod = 100 * time.Millisecond
	cfg.ReadWait = time.Second
	cfg.WriteWait = time.Second
	cfg.SubscriptionBufferSize = 10
	cfg.Timeout = time.Second
	return cfg
}

// DefaultLogLevel is the log level of a default configuration.
const DefaultLogLevel = "info"

// MaxTxSearchPageSize is the largest per_page nodes accept.
const MaxTxSearchPageSize = 100

// SetRoot sets the RootDir.
func (cfg *ClientConfig) SetRoot(root string) *ClientConfig {
	cfg.RootDir = root
	return cfg
}

// ConfigFile returns the full path to the config.toml file
func (cfg ClientConfig) ConfigFile() string {
	return rootify(defaultConfigFilePath, cfg.RootDir)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *ClientConfig) ValidateBasic() error {
	if cfg.Remote == "" {
		return errors.New("remote can't be empty")
	}
	if cfg.WSEndpoint == "" || cfg.WSEndpoint[0] != '/' {
		return errors.New("ws-endpoint must begin with /")
	}
	switch cfg.LogLevel {
	case "debug", "info", "error":
	default:
		return errors.Errorf("unknown log-level %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return errors.Errorf("unknown log-format %q", cfg.LogFormat)
	}
	if cfg.MaxReconnectAttempts < 0 {
		return errors.New("max-reconnect-attempts can't be negative")
	}
	if cfg.PingPeriod < 0 {
		return errors.New("ping-period can't be negative")
	}
	if cfg.ReadWait < 0 {
		return errors.New("read-wait can't be negative")
	}
	if cfg.WriteWait < 0 {
		return errors.New("write-wait can't be negative")
	}
	if cfg.PingPeriod > 0 && cfg.ReadWait > 0 && cfg.PingPeriod >= cfg.ReadWait {
		return errors.New("ping-period must be less than read-wait")
	}
	if cfg.SubscriptionBufferSize <= 0 {
		return errors.New("subscription-buffer-size must be positive")
	}
	if cfg.TxSearchPageSize <= 0 {
		return errors.New("tx-search-page-size must be positive")
	}
	if cfg.TxSearchPageSize > MaxTxSearchPageSize {
		return errors.Errorf("tx-search-page-size can't be greater than %d", MaxTxSearchPageSize)
	}
	if cfg.Timeout < 0 {
		return errors.New("timeout can't be negative")
	}
	return nil
}

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
