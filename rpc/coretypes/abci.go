package coretypes

import "github.com/tendermint/tendermint-rpc/libs/bytes"

// CodeTypeOK is the code of a successful ABCI response.
const CodeTypeOK uint32 = 0

// ResponseInfo is the application's answer to abci_info.
type ResponseInfo struct {
	Data             string `json:"data"`
	Version          string `json:"version"`
	AppVersion       uint64 `json:"app_version"`
	LastBlockHeight  int64  `json:"last_block_height"`
	LastBlockAppHash []byte `json:"last_block_app_hash"`
}

// ResponseQuery is the application's answer to abci_query.
type ResponseQuery struct {
	Code      uint32 `json:"code"`
	Log       string `json:"log"`
	Info      string `json:"info"`
	Index     int64  `json:"index"`
	Key       []byte `json:"key"`
	Value     []byte `json:"value"`
	Proof     []byte `json:"proof"`
	Height    int64  `json:"height"`
	Codespace string `json:"codespace"`
}

// IsOK returns true if Code is OK.
func (r ResponseQuery) IsOK() bool { return r.Code == CodeTypeOK }

// TxResponse holds the fields shared by the check and deliver results of a
// transaction. Nodes that annotate results with tags fill Tags; newer ones
// fill Events.
type TxResponse struct {
	Code      uint32           `json:"code"`
	Data      []byte           `json:"data"`
	Log       string           `json:"log"`
	Info      string           `json:"info"`
	GasWanted int64            `json:"gas_wanted"`
	GasUsed   int64            `json:"gas_used"`
	Tags      []EventAttribute `json:"tags,omitempty"`
	Events    []Event          `json:"events,omitempty"`
	Codespace string           `json:"codespace"`
}

// IsOK returns true if Code is OK.
func (r TxResponse) IsOK() bool { return r.Code == CodeTypeOK }

// IsErr returns true if Code is something other than OK.
func (r TxResponse) IsErr() bool { return r.Code != CodeTypeOK }

// ResponseCheckTx is the result of running a transaction against the mempool.
type ResponseCheckTx struct {
	TxResponse
}

// ResponseDeliverTx is the result of executing a transaction in a block.
type ResponseDeliverTx struct {
	TxResponse
}

// ResponseBeginBlock carries the annotations emitted when a block starts.
type ResponseBeginBlock struct {
	Tags   []EventAttribute `json:"tags,omitempty"`
	Events []Event          `json:"events,omitempty"`
}

// ResponseEndBlock carries validator and parameter changes and the
// annotations emitted when a block ends.
type ResponseEndBlock struct {
	ValidatorUpdates      []ValidatorUpdate `json:"validator_updates"`
	ConsensusParamUpdates *ConsensusParams  `json:"consensus_param_updates"`
	Tags                  []EventAttribute  `json:"tags,omitempty"`
	Events                []Event           `json:"events,omitempty"`
}

// ResultBroadcastTx is the CheckTx outcome returned by the async and sync
// broadcast methods. The async flavour returns before CheckTx ran and so
// always reports code 0.
type ResultBroadcastTx struct {
	Code      uint32         `json:"code"`
	Data      bytes.HexBytes `json:"data"`
	Log       string         `json:"log"`
	Codespace string         `json:"codespace"`

	Hash bytes.HexBytes `json:"hash"`
}
