package adaptor

import "github.com/tendermint/tendermint-rpc/crypto"

var v025 = &dialect{
	name:     "v0.25",
	prefixes: []string{"0.25."},
	hashTx:   crypto.SumTruncated,

	nodeInfoOtherList: true,

	headerProposer: true,
	headerTxCounts: true,
	blockMeta:      true,

	priorityKey: "proposer_priority",

	resultsLayout: resultsNestedPascal,

	blockParamsKey:    "block_size",
	evidenceParamsKey: "evidence_params",
}
