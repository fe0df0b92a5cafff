package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tendermint/tendermint-rpc/config"
)

// ParseConfig fills conf from viper (flags, TMRPC_ variables and the config
// file) and validates it.
func ParseConfig(conf *config.ClientConfig) (*config.ClientConfig, error) {
	if err := viper.Unmarshal(conf); err != nil {
		return nil, err
	}

	conf.SetRoot(conf.RootDir)

	if err := conf.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %w", err)
	}
	return conf, nil
}

// RootCommand constructs the root command-line entry point. Subcommands read
// conf once it is parsed.
func RootCommand(conf *config.ClientConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tmrpc",
		Short: "Query and watch Tendermint nodes of any supported version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == VersionCmd.Name() {
				return nil
			}

			pconf, err := ParseConfig(conf)
			if err != nil {
				return err
			}
			*conf = *pconf
			return nil
		},
	}
	cmd.PersistentFlags().String("remote", conf.Remote,
		"node address; use ws:// or wss:// to watch events")
	cmd.PersistentFlags().String("ws-endpoint", conf.WSEndpoint, "path of the node's websocket handler")
	cmd.PersistentFlags().String("log-level", conf.LogLevel, "log level: debug | info | error")
	cmd.PersistentFlags().String("log-format", conf.LogFormat, "log format: plain | json")
	cmd.PersistentFlags().Duration("timeout", conf.Timeout, "timeout of a single request, 0 for none")
	return cmd
}
