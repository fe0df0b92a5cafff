package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/tendermint-rpc/config"
)

// MakeInitCommand returns the command writing a default config file to the
// home directory.
func MakeInitCommand(conf *config.ClientConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file if there is none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.EnsureRoot(conf.RootDir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), conf.ConfigFile())
			return nil
		},
	}
}
