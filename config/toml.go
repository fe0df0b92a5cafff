package config

import (
	"bytes"
	"path/filepath"
	"text/template"

	tmos "github.com/tendermint/tendermint-rpc/libs/os"
)

// defaultDirPerm is the default permissions used when creating directories.
const defaultDirPerm = 0700

var configTemplate *template.Template

func init() {
	var err error
	if configTemplate, err = template.New("configFileTemplate").Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

// EnsureRoot creates the root and config directories if they don't exist,
// and writes a default config file if there is none.
func EnsureRoot(rootDir string) error {
	if err := tmos.EnsureDir(rootDir, defaultDirPerm); err != nil {
		return err
	}
	if err := tmos.EnsureDir(filepath.Join(rootDir, defaultConfigDir), defaultDirPerm); err != nil {
		return err
	}
	configFilePath := filepath.Join(rootDir, defaultConfigFilePath)
	if !tmos.FileExists(configFilePath) {
		return DefaultClientConfig().WriteToTemplate(configFilePath)
	}
	return nil
}

// WriteToTemplate writes the config to the exact file specified by
// the path, in the default toml template and does not mangle the path
// or filename at all.
func (cfg *ClientConfig) WriteToTemplate(path string) error {
	var buffer bytes.Buffer

	if err := configTemplate.Execute(&buffer, cfg); err != nil {
		return err
	}

	return tmos.WriteFile(path, buffer.Bytes(), 0644)
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

# Every option can be overridden with a TMRPC_ prefixed environment
# variable (e.g. TMRPC_REMOTE) or a command line flag.

# Address of the node: http://, https://, tcp:// or unix:// for request
# / response calls, ws:// or wss:// to also watch events
remote = "{{ .Remote }}"

# Path of the node's websocket handler
ws-endpoint = "{{ .WSEndpoint }}"

# Output level for logging: debug | info | error
log-level = "{{ .LogLevel }}"

# Output format: 'plain' (colored text) or 'json'
log-format = "{{ .LogFormat }}"

# Timeout of a single request; 0 means no timeout
timeout = "{{ .Timeout }}"

#######################################################
###          Websocket Configuration Options        ###
#######################################################

# Maximum number of reconnect attempts before giving up
max-reconnect-attempts = {{ .MaxReconnectAttempts }}

# Period of pings; 0 disables pings. Must be less than read-wait when both
# are set.
ping-period = "{{ .PingPeriod }}"

# Time allowed to read the next message; 0 means no deadline
read-wait = "{{ .ReadWait }}"

# Time allowed to write a message; 0 means no deadline
write-wait = "{{ .WriteWait }}"

# Number of events buffered for each subscriber. A subscriber that falls
# further behind is cancelled.
subscription-buffer-size = {{ .SubscriptionBufferSize }}

#######################################################
###          Tx Search Configuration Options        ###
#######################################################

# Page size used when reading every page of a search; at most 100
tx-search-page-size = {{ .TxSearchPageSize }}
`
