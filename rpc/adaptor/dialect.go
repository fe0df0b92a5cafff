package adaptor

// Layouts of the block_results payload.
const (
	// results.DeliverTx and results.EndBlock
	resultsNestedPascal = iota
	// results.deliver_tx, results.begin_block and results.end_block
	resultsNestedSnake
	// txs_results, begin_block_events, end_block_events, validator_updates
	// and consensus_param_updates at the top level
	resultsFlat
)

// dialect describes the wire format of a family of node releases.
type dialect struct {
	name     string
	prefixes []string
	hashTx   func(tx []byte) []byte

	// status
	catchingUpOptional bool // sync_info.catching_up may be absent
	protocolVersion    bool // node_info.protocol_version is required
	nodeInfoOtherList  bool // node_info.other is a list of "key=value" strings

	// headers and blocks
	headerVersion    bool // header.version is required
	headerProposer   bool // next_validators_hash and proposer_address are required
	headerTxCounts   bool // num_txs and total_txs are required
	blockMeta        bool // block results are wrapped as block_meta + block
	commitSignatures bool // commits carry height, round and signatures instead of precommits
	taggedSignatures bool // vote signatures are {type, value} objects

	// validators
	priorityKey         string // accumulated proposer priority of a validator
	abciUpdateKeys      bool   // validator updates use {type: "ed25519", data}
	paginatedValidators bool   // validators accept page/per_page and report count/total

	// results
	resultsLayout int
	events        bool // results are annotated with typed events instead of tags

	// consensus params
	blockParamsKey      string
	evidenceParamsKey   string
	blockTimeIota       bool // block params carry time_iota_ms
	evidenceAgeDuration bool // evidence params carry max_age_num_blocks and max_age_duration

	// requests
	trustedQuery  bool // abci_query takes trusted (= !prove) instead of prove
	txSearchOrder bool // tx_search accepts order_by
}
