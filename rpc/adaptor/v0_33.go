package adaptor

import "github.com/tendermint/tendermint-rpc/crypto"

var v033 = &dialect{
	name:     "v0.33",
	prefixes: []string{"0.33."},
	hashTx:   crypto.Sha256,

	protocolVersion: true,

	headerVersion:    true,
	headerProposer:   true,
	commitSignatures: true,

	priorityKey:         "proposer_priority",
	abciUpdateKeys:      true,
	paginatedValidators: true,

	resultsLayout: resultsFlat,
	events:        true,

	blockParamsKey:      "block",
	evidenceParamsKey:   "evidence",
	blockTimeIota:       true,
	evidenceAgeDuration: true,

	txSearchOrder: true,
}
