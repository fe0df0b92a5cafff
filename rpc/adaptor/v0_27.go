package adaptor

import "github.com/tendermint/tendermint-rpc/crypto"

var v027 = &dialect{
	name:     "v0.27",
	prefixes: []string{"0.27.", "0.28.", "0.29."},
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
