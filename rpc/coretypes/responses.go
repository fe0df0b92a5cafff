package coretypes

import (
	"github.com/tendermint/tendermint-rpc/libs/bytes"
)

// Info abci msg
type ResultABCIInfo struct {
	Response ResponseInfo `json:"response"`
}

// Query abci msg
type ResultABCIQuery struct {
	Response ResponseQuery `json:"response"`
}

// Single block (with meta)
type ResultBlock struct {
	BlockID BlockID `json:"block_id"`
	Block   *Block  `json:"block"`
}

// ABCI results from a block. Whether the node nests its results per ABCI
// call or reports them flat, they are decoded into this shape. Nodes that
// predate begin block results leave BeginBlock empty.
type ResultBlockResults struct {
	Height     int64               `json:"height"`
	TxsResults []ResponseDeliverTx `json:"txs_results"`
	BeginBlock ResponseBeginBlock  `json:"begin_block"`
	EndBlock   ResponseEndBlock    `json:"end_block"`
}

// List of blocks
type ResultBlockchainInfo struct {
	LastHeight int64       `json:"last_height"`
	BlockMetas []BlockMeta `json:"block_metas"`
}

// CheckTx and DeliverTx results
type ResultBroadcastTxCommit struct {
	CheckTx   ResponseCheckTx   `json:"check_tx"`
	DeliverTx ResponseDeliverTx `json:"deliver_tx"`
	Hash      bytes.HexBytes    `json:"hash"`
	Height    int64             `json:"height"`
}

// IsOK reports whether the transaction passed CheckTx and was executed
// successfully in a block.
func (r *ResultBroadcastTxCommit) IsOK() bool {
	return r.CheckTx.Code == CodeTypeOK && r.DeliverTx.Code == CodeTypeOK
}

// Commit and Header
type ResultCommit struct {
	SignedHeader    `json:"signed_header"`
	CanonicalCommit bool `json:"canonical"`
}

// Genesis file
type ResultGenesis struct {
	Genesis *GenesisDoc `json:"genesis"`
}

// Node Status
type ResultStatus struct {
	NodeInfo      NodeInfo      `json:"node_info"`
	SyncInfo      SyncInfo      `json:"sync_info"`
	ValidatorInfo ValidatorInfo `json:"validator_info"`
}

// Is TxIndexing enabled
func (s *ResultStatus) TxIndexEnabled() bool {
	if s == nil {
		return false
	}
	return s.NodeInfo.Other.TxIndex == "on"
}

// Result of querying for a tx
type ResultTx struct {
	Hash     bytes.HexBytes    `json:"hash"`
	Height   int64             `json:"height"`
	Index    uint32            `json:"index"`
	TxResult ResponseDeliverTx `json:"tx_result"`
	Tx       Tx                `json:"tx"`
	Proof    *TxProof          `json:"proof,omitempty"`
}

// Result of searching for txs
type ResultTxSearch struct {
	Txs        []*ResultTx `json:"txs"`
	TotalCount int         `json:"total_count"`
}

// Validators for a height.
type ResultValidators struct {
	BlockHeight int64       `json:"block_height"`
	Validators  []Validator `json:"validators"`
	// Count of actual validators in this result
	Count int `json:"count"`
	// Total number of validators
	Total int `json:"total"`
}

// empty results
type (
	ResultHealth      struct{}
	ResultUnsubscribe struct{}
)
