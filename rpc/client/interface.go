package client

/*
The client package provides a general purpose interface (Client) for
connecting to a Tendermint node, whatever release it runs, as well as
higher-level functionality.

The main implementation is the Client struct returned by New, NewWithAdaptor
and Dial. It talks to the node through any transport of the
rpc/jsonrpc/client package and maps requests and results through the adaptor
of the node's release family.

For higher-level functionality built on top of the interfaces, see
WaitForHeight and WaitForOneEvent in helpers.go.
*/

import (
	"context"

	"github.com/tendermint/tendermint-rpc/rpc/client/eventstream"
	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
)

// Interface groups all the methods of a node client.
type Interface interface {
	ABCIClient
	SignClient
	StatusClient
	EventsClient
}

// ABCIClient groups together the functionality that principally affects the
// ABCI app.
type ABCIClient interface {
	// Reading from abci app
	ABCIInfo(context.Context) (*coretypes.ResultABCIInfo, error)
	ABCIQuery(ctx context.Context, path string, data []byte) (*coretypes.ResultABCIQuery, error)
	ABCIQueryWithOptions(ctx context.Context, path string, data []byte,
		opts ABCIQueryOptions) (*coretypes.ResultABCIQuery, error)

	// Writing to abci app
	BroadcastTxCommit(context.Context, coretypes.Tx) (*coretypes.ResultBroadcastTxCommit, error)
	BroadcastTxAsync(context.Context, coretypes.Tx) (*coretypes.ResultBroadcastTx, error)
	BroadcastTxSync(context.Context, coretypes.Tx) (*coretypes.ResultBroadcastTx, error)
}

// SignClient groups together the functionality needed to get valid
// signatures and prove anything about the chain.
type SignClient interface {
	Block(ctx context.Context, height *int64) (*coretypes.ResultBlock, error)
	BlockResults(ctx context.Context, height *int64) (*coretypes.ResultBlockResults, error)
	BlockchainInfo(ctx context.Context, minHeight, maxHeight int64) (*coretypes.ResultBlockchainInfo, error)
	Commit(ctx context.Context, height *int64) (*coretypes.ResultCommit, error)
	Genesis(context.Context) (*coretypes.ResultGenesis, error)
	Validators(ctx context.Context, height *int64, page, perPage *int) (*coretypes.ResultValidators, error)
	Tx(ctx context.Context, hash []byte, prove bool) (*coretypes.ResultTx, error)

	// TxSearch defines a method to search for a paginated set of transactions
	// by transaction event search criteria.
	TxSearch(ctx context.Context, query string, prove bool, page, perPage *int,
		orderBy string) (*coretypes.ResultTxSearch, error)

	// TxSearchAll fetches every page of a transaction search.
	TxSearchAll(ctx context.Context, query string, prove bool, orderBy string) (*coretypes.ResultTxSearch, error)
}

// StatusClient provides access to general chain info.
type StatusClient interface {
	Status(context.Context) (*coretypes.ResultStatus, error)
	Health(context.Context) (*coretypes.ResultHealth, error)
}

// EventsClient is reactive, you can subscribe to any message, given the
// proper string. See the libs/pubsub/query package for the query syntax.
type EventsClient interface {
	// Subscribe attaches a consumer to the live stream of events matching
	// query. Subscriptions to equal queries share one stream.
	Subscribe(ctx context.Context, query string) (*eventstream.Subscription, error)
	SubscribeNewBlock(context.Context) (*eventstream.Subscription, error)
	SubscribeNewBlockHeader(context.Context) (*eventstream.Subscription, error)
	SubscribeTx(ctx context.Context, filter string) (*eventstream.Subscription, error)
}
