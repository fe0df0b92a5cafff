package adaptor

import "github.com/tendermint/tendermint-rpc/crypto"

var v031 = &dialect{
	name:     "v0.31",
	prefixes: []string{"0.31."},
	hashTx:   crypto.Sha256,

	protocolVersion: true,

	headerVersion:  true,
	headerProposer: true,
	headerTxCounts: true,
	blockMeta:      true,

	priorityKey:    "proposer_priority",
	abciUpdateKeys: true,

	resultsLayout: resultsNestedSnake,

	blockParamsKey:    "block_size",
	evidenceParamsKey: "evidence",
}
