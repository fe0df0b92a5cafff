package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tendermint/tendermint-rpc/config"
	"github.com/tendermint/tendermint-rpc/rpc/client"
)

// MakeStatusCommand returns the command printing the node's status.
func MakeStatusCommand(conf *config.ClientConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the node's status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), conf, cmd.OutOrStdout(),
				func(ctx context.Context, c *client.Client) (interface{}, error) {
					return c.Status(ctx)
				})
		},
	}
}

// MakeBlockCommand returns the command printing a block, the latest one
// when no height is given.
func MakeBlockCommand(conf *config.ClientConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "block [height]",
		Short: "Print the block at height, or the latest block",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var height *int64
			if len(args) == 1 {
				h, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil || h <= 0 {
					return fmt.Errorf("invalid height %q", args[0])
				}
				height = &h
			}
			return run(cmd.Context(), conf, cmd.OutOrStdout(),
				func(ctx context.Context, c *client.Client) (interface{}, error) {
					return c.Block(ctx, height)
				})
		},
	}
}

// MakeTxSearchCommand returns the command searching indexed transactions.
func MakeTxSearchCommand(conf *config.ClientConfig) *cobra.Command {
	var (
		prove   bool
		all     bool
		page    int
		perPage int
		orderBy string
	)
	cmd := &cobra.Command{
		Use:   "tx-search <query>",
		Short: "Search transactions, e.g. tx-search \"tx.height>5\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			return run(cmd.Context(), conf, cmd.OutOrStdout(),
				func(ctx context.Context, c *client.Client) (interface{}, error) {
					if all {
						return c.TxSearchAll(ctx, query, prove, orderBy)
					}
					var pagePtr, perPagePtr *int
					if page > 0 {
						pagePtr = &page
					}
					if perPage > 0 {
						perPagePtr = &perPage
					}
					return c.TxSearch(ctx, query, prove, pagePtr, perPagePtr, orderBy)
				})
		},
	}
	cmd.Flags().BoolVar(&prove, "prove", false, "include proofs of the transactions")
	cmd.Flags().BoolVar(&all, "all", false, "read every page of results")
	cmd.Flags().IntVar(&page, "page", 0, "page number, starting from 1")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "number of results per page")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "asc or desc by height")
	return cmd
}
