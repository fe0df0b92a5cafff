// Package adaptor maps typed requests and results onto the wire formats of
// the Tendermint releases the client can talk to. Each release family is a
// dialect: a table of field names and optional features read by one shared
// codec, so all adaptors decode with the same strictness.
package adaptor

import (
	"encoding/json"

	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
)

// RPC method names.
const (
	MethodABCIInfo          = "abci_info"
	MethodABCIQuery         = "abci_query"
	MethodBlock             = "block"
	MethodBlockResults      = "block_results"
	MethodBlockchain        = "blockchain"
	MethodBroadcastTxAsync  = "broadcast_tx_async"
	MethodBroadcastTxSync   = "broadcast_tx_sync"
	MethodBroadcastTxCommit = "broadcast_tx_commit"
	MethodCommit            = "commit"
	MethodGenesis           = "genesis"
	MethodHealth            = "health"
	MethodStatus            = "status"
	MethodSubscribe         = "subscribe"
	MethodUnsubscribe       = "unsubscribe"
	MethodTx                = "tx"
	MethodTxSearch          = "tx_search"
	MethodValidators        = "validators"
)

// Call is an encoded request: a method and its params object.
type Call struct {
	Method string
	Params json.RawMessage
}

// Encoder turns typed requests into calls.
type Encoder interface {
	EncodeABCIInfo() (Call, error)
	EncodeABCIQuery(req coretypes.RequestABCIQuery) (Call, error)
	EncodeBlock(req coretypes.RequestBlock) (Call, error)
	EncodeBlockResults(req coretypes.RequestBlockResults) (Call, error)
	EncodeBlockchainInfo(req coretypes.RequestBlockchainInfo) (Call, error)
	EncodeBroadcastTx(method string, req coretypes.RequestBroadcastTx) (Call, error)
	EncodeCommit(req coretypes.RequestCommit) (Call, error)
	EncodeGenesis() (Call, error)
	EncodeHealth() (Call, error)
	EncodeStatus() (Call, error)
	EncodeSubscribe(req coretypes.RequestSubscribe) (Call, error)
	EncodeUnsubscribe(req coretypes.RequestUnsubscribe) (Call, error)
	EncodeTx(req coretypes.RequestTx) (Call, error)
	EncodeTxSearch(req coretypes.RequestTxSearch) (Call, error)
	EncodeValidators(req coretypes.RequestValidators) (Call, error)
}

// Decoder turns result payloads into typed results. Payloads are the result
// member of a success response; error responses never reach a decoder.
type Decoder interface {
	DecodeABCIInfo(result json.RawMessage) (*coretypes.ResultABCIInfo, error)
	DecodeABCIQuery(result json.RawMessage) (*coretypes.ResultABCIQuery, error)
	DecodeBlock(result json.RawMessage) (*coretypes.ResultBlock, error)
	DecodeBlockResults(result json.RawMessage) (*coretypes.ResultBlockResults, error)
	DecodeBlockchainInfo(result json.RawMessage) (*coretypes.ResultBlockchainInfo, error)
	DecodeBroadcastTx(result json.RawMessage) (*coretypes.ResultBroadcastTx, error)
	DecodeBroadcastTxCommit(result json.RawMessage) (*coretypes.ResultBroadcastTxCommit, error)
	DecodeCommit(result json.RawMessage) (*coretypes.ResultCommit, error)
	DecodeGenesis(result json.RawMessage) (*coretypes.ResultGenesis, error)
	DecodeHealth(result json.RawMessage) (*coretypes.ResultHealth, error)
	DecodeStatus(result json.RawMessage) (*coretypes.ResultStatus, error)
	DecodeTx(result json.RawMessage) (*coretypes.ResultTx, error)
	DecodeTxSearch(result json.RawMessage) (*coretypes.ResultTxSearch, error)
	DecodeValidators(result json.RawMessage) (*coretypes.ResultValidators, error)

	// DecodeEvent decodes the result of an event frame.
	DecodeEvent(result json.RawMessage) (coretypes.ResultEvent, error)
}

// Adaptor is the complete mapping for one dialect. Adaptors are immutable and
// safe for concurrent use.
type Adaptor interface {
	// Version is the dialect name, e.g. "v0.27".
	Version() string

	Encoder
	Decoder

	// HashTx returns the hash the node uses to identify tx.
	HashTx(tx []byte) []byte
}

// codec implements Adaptor for one dialect.
type codec struct {
	d *dialect
}

var _ Adaptor = codec{}

func (c codec) Version() string { return c.d.name }

func (c codec) HashTx(tx []byte) []byte { return c.d.hashTx(tx) }

func (c codec) String() string { return "adaptor " + c.d.name }
