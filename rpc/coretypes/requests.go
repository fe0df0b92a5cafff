package coretypes

import (
	"github.com/tendermint/tendermint-rpc/libs/bytes"
)

// Requests carry the arguments of the node's RPC methods. A nil height asks
// for the latest one.

type RequestABCIQuery struct {
	Path   string
	Data   bytes.HexBytes
	Height int64
	Prove  bool
}

type RequestBlock struct {
	Height *int64
}

type RequestBlockResults struct {
	Height *int64
}

type RequestBlockchainInfo struct {
	MinHeight int64
	MaxHeight int64
}

type RequestBroadcastTx struct {
	Tx Tx
}

type RequestCommit struct {
	Height *int64
}

type RequestSubscribe struct {
	Query string
}

type RequestUnsubscribe struct {
	Query string
}

type RequestTx struct {
	Hash  []byte
	Prove bool
}

type RequestTxSearch struct {
	Query   string
	Prove   bool
	Page    int
	PerPage int
	// OrderBy is "asc" or "desc". Only sent to nodes that support ordering.
	OrderBy string
}

type RequestValidators struct {
	Height *int64
	// Page and PerPage are only sent to nodes that paginate validators.
	Page    int
	PerPage int
}
