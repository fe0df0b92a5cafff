package coretypes

import (
	"time"

	"github.com/tendermint/tendermint-rpc/crypto"
	"github.com/tendermint/tendermint-rpc/libs/bytes"
)

// Tx is an arbitrary byte array.
type Tx []byte

// PartSetHeader identifies the parts a block was gossiped in.
type PartSetHeader struct {
	Total int64          `json:"total"`
	Hash  bytes.HexBytes `json:"hash"`
}

// BlockID identifies a block by its hash and part set header.
type BlockID struct {
	Hash          bytes.HexBytes `json:"hash"`
	PartSetHeader PartSetHeader  `json:"parts"`
}

// IsZero returns true if the BlockID refers to no block.
func (b BlockID) IsZero() bool {
	return len(b.Hash) == 0 && b.PartSetHeader.Total == 0 && len(b.PartSetHeader.Hash) == 0
}

// Equals returns true if both ids refer to the same block.
func (b BlockID) Equals(other BlockID) bool {
	return b.Hash.Equal(other.Hash) &&
		b.PartSetHeader.Total == other.PartSetHeader.Total &&
		b.PartSetHeader.Hash.Equal(other.PartSetHeader.Hash)
}

// Consensus captures the consensus rules for processing a block. Nodes that
// predate header versioning report zero for both.
type Consensus struct {
	Block uint64 `json:"block"`
	App   uint64 `json:"app"`
}

// Header defines the structure of a block header.
type Header struct {
	Version Consensus `json:"version"`
	ChainID string    `json:"chain_id"`
	Height  int64     `json:"height"`
	Time    time.Time `json:"time"`

	// Only reported by nodes before the header counters were dropped.
	NumTxs   int64 `json:"num_txs"`
	TotalTxs int64 `json:"total_txs"`

	LastBlockID BlockID `json:"last_block_id"`

	LastCommitHash     bytes.HexBytes `json:"last_commit_hash"`
	DataHash           bytes.HexBytes `json:"data_hash"`
	ValidatorsHash     bytes.HexBytes `json:"validators_hash"`
	NextValidatorsHash bytes.HexBytes `json:"next_validators_hash"`
	ConsensusHash      bytes.HexBytes `json:"consensus_hash"`
	AppHash            bytes.HexBytes `json:"app_hash"`
	LastResultsHash    bytes.HexBytes `json:"last_results_hash"`
	EvidenceHash       bytes.HexBytes `json:"evidence_hash"`
	ProposerAddress    crypto.Address `json:"proposer_address"`
}

// Data contains the set of transactions included in the block.
type Data struct {
	Txs []Tx `json:"txs"`
}

// BlockIDFlag indicates which BlockID the signature is for.
type BlockIDFlag byte

const (
	// BlockIDFlagAbsent - no vote was received from a validator.
	BlockIDFlagAbsent BlockIDFlag = iota + 1
	// BlockIDFlagCommit - voted for the Commit.BlockID.
	BlockIDFlagCommit
	// BlockIDFlagNil - voted for nil.
	BlockIDFlagNil
)

// CommitSig is a part of the Vote included in a Commit. Nodes that still
// reported precommits have their votes converted: a missing vote becomes an
// absent signature.
type CommitSig struct {
	BlockIDFlag      BlockIDFlag    `json:"block_id_flag"`
	ValidatorAddress crypto.Address `json:"validator_address"`
	Timestamp        time.Time      `json:"timestamp"`
	Signature        []byte         `json:"signature"`
}

// Absent returns true if CommitSig is absent.
func (cs CommitSig) Absent() bool {
	return cs.BlockIDFlag == BlockIDFlagAbsent
}

// Commit contains the evidence that a block was committed by a set of
// validators.
type Commit struct {
	Height     int64       `json:"height"`
	Round      int32       `json:"round"`
	BlockID    BlockID     `json:"block_id"`
	Signatures []CommitSig `json:"signatures"`
}

// EvidenceData holds the evidence of a block. Evidence is kept in its wire
// form; its shape differs between node versions and nothing in the client
// interprets it.
type EvidenceData struct {
	Evidence [][]byte `json:"evidence"`
}

// Block defines the atomic unit of a Tendermint blockchain.
type Block struct {
	Header     `json:"header"`
	Data       `json:"data"`
	Evidence   EvidenceData `json:"evidence"`
	LastCommit *Commit      `json:"last_commit"`
}

// BlockMeta contains meta information about a block.
type BlockMeta struct {
	BlockID   BlockID `json:"block_id"`
	BlockSize int64   `json:"block_size"`
	Header    Header  `json:"header"`
	NumTxs    int64   `json:"num_txs"`
}

// SignedHeader is a header along with the commits that prove it.
type SignedHeader struct {
	*Header `json:"header"`

	Commit *Commit `json:"commit"`
}

// Validator is a member of the validator set at some height.
type Validator struct {
	Address          crypto.Address `json:"address"`
	PubKey           crypto.PubKey  `json:"pub_key"`
	VotingPower      int64          `json:"voting_power"`
	ProposerPriority int64          `json:"proposer_priority"`
}

// ValidatorUpdate is a change of the validator set returned by the
// application. A power of zero removes the validator.
type ValidatorUpdate struct {
	PubKey crypto.PubKey `json:"pub_key"`
	Power  int64         `json:"power"`
}

// BlockParams define limits on the block size and gas.
type BlockParams struct {
	MaxBytes int64 `json:"max_bytes"`
	MaxGas   int64 `json:"max_gas"`
	// Only reported by nodes that have a minimum block time increment.
	TimeIotaMs int64 `json:"time_iota_ms"`
}

// EvidenceParams determine how we handle evidence of malfeasance.
type EvidenceParams struct {
	MaxAgeNumBlocks int64         `json:"max_age_num_blocks"`
	MaxAgeDuration  time.Duration `json:"max_age_duration"`
}

// ValidatorParams restrict the public key types validators can use.
type ValidatorParams struct {
	PubKeyTypes []string `json:"pub_key_types"`
}

// ConsensusParams contains consensus critical parameters that determine the
// validity of blocks. In updates, a nil member means unchanged.
type ConsensusParams struct {
	Block     *BlockParams     `json:"block"`
	Evidence  *EvidenceParams  `json:"evidence"`
	Validator *ValidatorParams `json:"validator"`
}

// EventAttribute is a single key-value pair of an event or tag list.
type EventAttribute struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

// Event is a typed list of attributes emitted by the application.
type Event struct {
	Type       string           `json:"type"`
	Attributes []EventAttribute `json:"attributes"`
}

// ProtocolVersion contains the protocol versions for the software.
type ProtocolVersion struct {
	P2P   uint64 `json:"p2p"`
	Block uint64 `json:"block"`
	App   uint64 `json:"app"`
}

// NodeInfoOther is the misc. application specific data.
type NodeInfoOther struct {
	TxIndex    string `json:"tx_index"`
	RPCAddress string `json:"rpc_address"`
}

// NodeInfo is the basic node information exchanged between two peers.
type NodeInfo struct {
	ProtocolVersion ProtocolVersion `json:"protocol_version"`
	ID              string          `json:"id"`
	ListenAddr      string          `json:"listen_addr"`
	Network         string          `json:"network"`
	Version         string          `json:"version"`
	Channels        bytes.HexBytes  `json:"channels"`
	Moniker         string          `json:"moniker"`
	Other           NodeInfoOther   `json:"other"`
}

// Info about the node's syncing state
type SyncInfo struct {
	LatestBlockHash   bytes.HexBytes `json:"latest_block_hash"`
	LatestAppHash     bytes.HexBytes `json:"latest_app_hash"`
	LatestBlockHeight int64          `json:"latest_block_height"`
	LatestBlockTime   time.Time      `json:"latest_block_time"`

	CatchingUp bool `json:"catching_up"`
}

// Info about the node's validator
type ValidatorInfo struct {
	Address     crypto.Address `json:"address"`
	PubKey      crypto.PubKey  `json:"pub_key"`
	VotingPower int64          `json:"voting_power"`
}

// GenesisValidator is an initial validator.
type GenesisValidator struct {
	Address crypto.Address `json:"address"`
	PubKey  crypto.PubKey  `json:"pub_key"`
	Power   int64          `json:"power"`
	Name    string         `json:"name"`
}

// GenesisDoc defines the initial conditions for a blockchain.
type GenesisDoc struct {
	GenesisTime     time.Time          `json:"genesis_time"`
	ChainID         string             `json:"chain_id"`
	ConsensusParams *ConsensusParams   `json:"consensus_params"`
	Validators      []GenesisValidator `json:"validators"`
	AppHash         bytes.HexBytes     `json:"app_hash"`
	AppState        []byte             `json:"app_state"`
}

// Proof is a Merkle proof of a leaf in a tree of Total leaves.
type Proof struct {
	Total    int64    `json:"total"`
	Index    int64    `json:"index"`
	LeafHash []byte   `json:"leaf_hash"`
	Aunts    [][]byte `json:"aunts"`
}

// TxProof represents a Merkle proof of the presence of a transaction in a
// block.
type TxProof struct {
	RootHash bytes.HexBytes `json:"root_hash"`
	Data     Tx             `json:"data"`
	Proof    Proof          `json:"proof"`
}
