package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/tendermint-rpc/rpc/adaptor"
	"github.com/tendermint/tendermint-rpc/version"
)

var verbose bool

// VersionCmd ...
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
			return nil
		}
		var dialects []string
		for _, a := range adaptor.All() {
			dialects = append(dialects, a.Version())
		}
		return printJSON(cmd.OutOrStdout(), version.NewInfo(dialects))
	},
}

func init() {
	VersionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show the supported node versions")
}
