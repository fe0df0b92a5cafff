package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/tendermint/tendermint-rpc/cmd/tmrpc/commands"
	"github.com/tendermint/tendermint-rpc/config"
	"github.com/tendermint/tendermint-rpc/libs/cli"
)

func main() {
	ctx := context.Background()
	conf := config.DefaultClientConfig()

	rootCmd := commands.RootCommand(conf)
	rootCmd.AddCommand(
		commands.MakeInitCommand(conf),
		commands.MakeStatusCommand(conf),
		commands.MakeBlockCommand(conf),
		commands.MakeTxSearchCommand(conf),
		commands.MakeWatchCommand(conf),
		commands.VersionCmd,
	)

	cmd := cli.PrepareBaseCmd(rootCmd, "TMRPC", os.ExpandEnv(filepath.Join("$HOME", config.DefaultHomeDir)))
	if err := cli.RunWithTrace(ctx, cmd); err != nil {
		os.Exit(1)
	}
}
