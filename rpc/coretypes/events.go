package coretypes

// Reserved event types (alphabetically sorted).
const (
	EventNewBlock       = "NewBlock"
	EventNewBlockHeader = "NewBlockHeader"
	EventTx             = "Tx"
)

// EventData is implemented by the payloads delivered to subscriptions.
type EventData interface {
	// TypeTag is the event type the payload belongs to.
	TypeTag() string
}

// EventDataNewBlock is delivered for every committed block.
type EventDataNewBlock struct {
	Block *Block `json:"block"`

	ResultBeginBlock ResponseBeginBlock `json:"result_begin_block"`
	ResultEndBlock   ResponseEndBlock   `json:"result_end_block"`
}

// TypeTag implements EventData.
func (EventDataNewBlock) TypeTag() string { return EventNewBlock }

// EventDataNewBlockHeader is delivered for every committed block header.
type EventDataNewBlockHeader struct {
	Header Header `json:"header"`

	NumTxs           int64              `json:"num_txs"`
	ResultBeginBlock ResponseBeginBlock `json:"result_begin_block"`
	ResultEndBlock   ResponseEndBlock   `json:"result_end_block"`
}

// TypeTag implements EventData.
func (EventDataNewBlockHeader) TypeTag() string { return EventNewBlockHeader }

// TxResult contains results of executing the transaction.
type TxResult struct {
	Height int64             `json:"height"`
	Index  uint32            `json:"index"`
	Tx     Tx                `json:"tx"`
	Result ResponseDeliverTx `json:"result"`
}

// EventDataTx is delivered for every executed transaction. Hash is computed
// with the transaction hash of the node's protocol version.
type EventDataTx struct {
	TxResult

	Hash []byte `json:"hash"`
}

// TypeTag implements EventData.
func (EventDataTx) TypeTag() string { return EventTx }

// Event data from a subscription
type ResultEvent struct {
	Query  string              `json:"query"`
	Data   EventData           `json:"data"`
	Events map[string][]string `json:"events,omitempty"`
}
