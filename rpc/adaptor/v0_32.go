package adaptor

import "github.com/tendermint/tendermint-rpc/crypto"

var v032 = &dialect{
	name:     "v0.32",
	prefixes: []string{"0.32."},
	hashTx:   crypto.Sha256,

	protocolVersion: true,

	headerVersion:  true,
	headerProposer: true,
	headerTxCounts: true,
	blockMeta:      true,

	priorityKey:    "proposer_priority",
	abciUpdateKeys: true,

	resultsLayout: resultsNestedSnake,
	events:        true,

	blockParamsKey:    "block",
	evidenceParamsKey: "evidence",
	blockTimeIota:     true,
}
