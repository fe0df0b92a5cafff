package adaptor

import "github.com/tendermint/tendermint-rpc/crypto"

var v020 = &dialect{
	name:     "v0.20",
	prefixes: []string{"0.20.", "0.21.", "0.22."},
	hashTx:   crypto.Ripemd160LengthPrefixed,

	catchingUpOptional: true,
	nodeInfoOtherList:  true,

	headerTxCounts:   true,
	blockMeta:        true,
	taggedSignatures: true,

	priorityKey: "accum",

	resultsLayout: resultsNestedPascal,

	blockParamsKey:    "block_size_params",
	evidenceParamsKey: "evidence_params",

	trustedQuery: true,
}
