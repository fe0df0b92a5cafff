package adaptor

import (
	"time"

	"github.com/tendermint/tendermint-rpc/crypto"
	"github.com/tendermint/tendermint-rpc/crypto/ed25519"
	tmmath "github.com/tendermint/tendermint-rpc/libs/math"
	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
)

// rootPath prefixes the field path of every DecodeError.
const rootPath = "result"

func (c codec) blockID(o object) (coretypes.BlockID, error) {
	hash, err := o.hex("hash")
	if err != nil {
		return coretypes.BlockID{}, err
	}
	parts, err := o.object("parts")
	if err != nil {
		return coretypes.BlockID{}, err
	}
	total, err := parts.integer("total")
	if err != nil {
		return coretypes.BlockID{}, err
	}
	partsHash, err := parts.hex("hash")
	if err != nil {
		return coretypes.BlockID{}, err
	}
	return coretypes.BlockID{
		Hash:          hash,
		PartSetHeader: coretypes.PartSetHeader{Total: total, Hash: partsHash},
	}, nil
}

func (c codec) header(o object) (coretypes.Header, error) {
	var (
		h   coretypes.Header
		err error
	)

	version, ok, err := o.optObject("version")
	if err != nil {
		return h, err
	}
	if !ok && c.d.headerVersion {
		return h, missing(o.field("version"))
	}
	if ok {
		if h.Version.Block, err = version.uint64("block"); err != nil {
			return h, err
		}
		if h.Version.App, err = version.optUint64("app"); err != nil {
			return h, err
		}
	}

	if h.ChainID, err = o.str("chain_id"); err != nil {
		return h, err
	}
	if h.Height, err = o.int64("height"); err != nil {
		return h, err
	}
	if h.Time, err = o.time("time"); err != nil {
		return h, err
	}

	if c.d.headerTxCounts {
		if h.NumTxs, err = o.int64("num_txs"); err != nil {
			return h, err
		}
		if h.TotalTxs, err = o.int64("total_txs"); err != nil {
			return h, err
		}
	} else {
		if h.NumTxs, err = o.optInt64("num_txs"); err != nil {
			return h, err
		}
		if h.TotalTxs, err = o.optInt64("total_txs"); err != nil {
			return h, err
		}
	}

	lastBlockID, err := o.object("last_block_id")
	if err != nil {
		return h, err
	}
	if h.LastBlockID, err = c.blockID(lastBlockID); err != nil {
		return h, err
	}

	hashes := []struct {
		key string
		dst *[]byte
	}{
		{"last_commit_hash", (*[]byte)(&h.LastCommitHash)},
		{"data_hash", (*[]byte)(&h.DataHash)},
		{"validators_hash", (*[]byte)(&h.ValidatorsHash)},
		{"consensus_hash", (*[]byte)(&h.ConsensusHash)},
		{"app_hash", (*[]byte)(&h.AppHash)},
		{"last_results_hash", (*[]byte)(&h.LastResultsHash)},
		{"evidence_hash", (*[]byte)(&h.EvidenceHash)},
	}
	for _, hash := range hashes {
		bz, err := o.hex(hash.key)
		if err != nil {
			return h, err
		}
		*hash.dst = bz
	}

	if c.d.headerProposer {
		if h.NextValidatorsHash, err = o.hex("next_validators_hash"); err != nil {
			return h, err
		}
		if h.ProposerAddress, err = o.hex("proposer_address"); err != nil {
			return h, err
		}
	} else {
		if h.NextValidatorsHash, err = o.optHex("next_validators_hash"); err != nil {
			return h, err
		}
		if h.ProposerAddress, err = o.optHex("proposer_address"); err != nil {
			return h, err
		}
	}

	return h, nil
}

func (c codec) commit(o object) (*coretypes.Commit, error) {
	blockIDObj, err := o.object("block_id")
	if err != nil {
		return nil, err
	}
	blockID, err := c.blockID(blockIDObj)
	if err != nil {
		return nil, err
	}
	commit := &coretypes.Commit{BlockID: blockID}

	if c.d.commitSignatures {
		if commit.Height, err = o.int64("height"); err != nil {
			return nil, err
		}
		if commit.Round, err = c.round(o, "round"); err != nil {
			return nil, err
		}
		sigs, err := o.optList("signatures")
		if err != nil {
			return nil, err
		}
		for i, raw := range sigs {
			sigObj, err := decodeObject(index(o.field("signatures"), i), raw)
			if err != nil {
				return nil, err
			}
			sig, err := c.commitSig(sigObj)
			if err != nil {
				return nil, err
			}
			commit.Signatures = append(commit.Signatures, sig)
		}
		return commit, nil
	}

	precommits, err := o.optList("precommits")
	if err != nil {
		return nil, err
	}
	first := true
	for i, raw := range precommits {
		if isNull(raw) {
			commit.Signatures = append(commit.Signatures, coretypes.CommitSig{BlockIDFlag: coretypes.BlockIDFlagAbsent})
			continue
		}
		vote, err := decodeObject(index(o.field("precommits"), i), raw)
		if err != nil {
			return nil, err
		}
		sig, height, round, err := c.precommit(vote, blockID)
		if err != nil {
			return nil, err
		}
		if first {
			commit.Height, commit.Round = height, round
			first = false
		}
		commit.Signatures = append(commit.Signatures, sig)
	}
	return commit, nil
}

func (c codec) commitSig(o object) (coretypes.CommitSig, error) {
	var (
		sig coretypes.CommitSig
		err error
	)
	flag, err := o.uint32("block_id_flag")
	if err != nil {
		return sig, err
	}
	sig.BlockIDFlag = coretypes.BlockIDFlag(flag)
	if sig.ValidatorAddress, err = o.hex("validator_address"); err != nil {
		return sig, err
	}
	if sig.Timestamp, err = o.time("timestamp"); err != nil {
		return sig, err
	}
	if sig.Signature, err = o.optBase64("signature"); err != nil {
		return sig, err
	}
	return sig, nil
}

// precommit converts a vote of an older commit into a commit signature.
func (c codec) precommit(vote object, commitID coretypes.BlockID) (coretypes.CommitSig, int64, int32, error) {
	var sig coretypes.CommitSig

	height, err := vote.int64("height")
	if err != nil {
		return sig, 0, 0, err
	}
	round, err := c.round(vote, "round")
	if err != nil {
		return sig, 0, 0, err
	}
	if _, err := vote.uint32("type"); err != nil {
		return sig, 0, 0, err
	}
	if _, err := vote.integer("validator_index"); err != nil {
		return sig, 0, 0, err
	}
	blockIDObj, err := vote.object("block_id")
	if err != nil {
		return sig, 0, 0, err
	}
	blockID, err := c.blockID(blockIDObj)
	if err != nil {
		return sig, 0, 0, err
	}
	if sig.ValidatorAddress, err = vote.hex("validator_address"); err != nil {
		return sig, 0, 0, err
	}
	if sig.Timestamp, err = vote.time("timestamp"); err != nil {
		return sig, 0, 0, err
	}
	if sig.Signature, err = c.signature(vote, "signature"); err != nil {
		return sig, 0, 0, err
	}

	switch {
	case blockID.IsZero():
		sig.BlockIDFlag = coretypes.BlockIDFlagNil
	case blockID.Equals(commitID):
		sig.BlockIDFlag = coretypes.BlockIDFlagCommit
	default:
		sig.BlockIDFlag = coretypes.BlockIDFlagNil
	}
	return sig, height, round, nil
}

func (c codec) round(o object, key string) (int32, error) {
	n, err := o.integer(key)
	if err != nil {
		return 0, err
	}
	r, err := tmmath.SafeConvertInt32(n)
	if err != nil {
		return 0, decodeErr(o.field(key), err)
	}
	return r, nil
}

// signature reads a vote signature: a tagged object on nodes that encode
// signatures like keys, plain base64 otherwise.
func (c codec) signature(o object, key string) ([]byte, error) {
	if !c.d.taggedSignatures {
		return o.base64(key)
	}
	tagged, err := o.object(key)
	if err != nil {
		return nil, err
	}
	tag, err := tagged.str("type")
	if err != nil {
		return nil, err
	}
	if tag != ed25519.SignatureName {
		return nil, decodeErr(tagged.field("type"), &UnknownKeyTypeError{Tag: tag})
	}
	return tagged.base64("value")
}

// pubKey reads an amino encoded key: {"type": "tendermint/PubKeyEd25519",
// "value": <base64>}.
func (c codec) pubKey(o object, key string) (crypto.PubKey, error) {
	return readKey(o, key, ed25519.PubKeyName, "value")
}

// updateKey reads the key of a validator update, which newer nodes encode
// the ABCI way: {"type": "ed25519", "data": <base64>}.
func (c codec) updateKey(o object, key string) (crypto.PubKey, error) {
	if c.d.abciUpdateKeys {
		return readKey(o, key, ed25519.KeyType, "data")
	}
	return readKey(o, key, ed25519.PubKeyName, "value")
}

func readKey(o object, key, wantTag, valueKey string) (crypto.PubKey, error) {
	keyObj, err := o.object(key)
	if err != nil {
		return nil, err
	}
	tag, err := keyObj.str("type")
	if err != nil {
		return nil, err
	}
	if tag != wantTag {
		return nil, decodeErr(keyObj.field("type"), &UnknownKeyTypeError{Tag: tag})
	}
	bz, err := keyObj.base64(valueKey)
	if err != nil {
		return nil, err
	}
	pk, err := ed25519.NewPubKey(bz)
	if err != nil {
		return nil, decodeErr(keyObj.field(valueKey), err)
	}
	return pk, nil
}

func (c codec) block(o object) (*coretypes.Block, error) {
	headerObj, err := o.object("header")
	if err != nil {
		return nil, err
	}
	header, err := c.header(headerObj)
	if err != nil {
		return nil, err
	}
	block := &coretypes.Block{Header: header}

	data, err := o.object("data")
	if err != nil {
		return nil, err
	}
	txs, err := data.optList("txs")
	if err != nil {
		return nil, err
	}
	for i, raw := range txs {
		tx, err := decodeBase64(index(data.field("txs"), i), raw)
		if err != nil {
			return nil, err
		}
		block.Data.Txs = append(block.Data.Txs, tx)
	}

	evidence, ok, err := o.optObject("evidence")
	if err != nil {
		return nil, err
	}
	if ok {
		items, err := evidence.optList("evidence")
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			block.Evidence.Evidence = append(block.Evidence.Evidence, []byte(item))
		}
	}

	lastCommit, err := o.object("last_commit")
	if err != nil {
		return nil, err
	}
	if block.LastCommit, err = c.commit(lastCommit); err != nil {
		return nil, err
	}
	return block, nil
}

func (c codec) attributes(o object, key string) ([]coretypes.EventAttribute, error) {
	items, err := o.optList(key)
	if err != nil {
		return nil, err
	}
	var attrs []coretypes.EventAttribute
	for i, raw := range items {
		kv, err := decodeObject(index(o.field(key), i), raw)
		if err != nil {
			return nil, err
		}
		k, err := kv.base64("key")
		if err != nil {
			return nil, err
		}
		v, err := kv.optBase64("value")
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, coretypes.EventAttribute{Key: k, Value: v})
	}
	return attrs, nil
}

func (c codec) eventList(o object, key string) ([]coretypes.Event, error) {
	items, err := o.optList(key)
	if err != nil {
		return nil, err
	}
	var events []coretypes.Event
	for i, raw := range items {
		ev, err := decodeObject(index(o.field(key), i), raw)
		if err != nil {
			return nil, err
		}
		typ, err := ev.str("type")
		if err != nil {
			return nil, err
		}
		attrs, err := c.attributes(ev, "attributes")
		if err != nil {
			return nil, err
		}
		events = append(events, coretypes.Event{Type: typ, Attributes: attrs})
	}
	return events, nil
}

// annotations reads the tags or the events of a result, whichever the
// dialect uses.
func (c codec) annotations(o object) ([]coretypes.EventAttribute, []coretypes.Event, error) {
	if c.d.events {
		events, err := c.eventList(o, "events")
		return nil, events, err
	}
	tags, err := c.attributes(o, "tags")
	return tags, nil, err
}

func (c codec) txResponse(o object) (coretypes.TxResponse, error) {
	var (
		r   coretypes.TxResponse
		err error
	)
	if r.Code, err = o.optUint32("code"); err != nil {
		return r, err
	}
	if r.Data, err = o.optBase64("data"); err != nil {
		return r, err
	}
	if r.Log, err = o.optStr("log"); err != nil {
		return r, err
	}
	if r.Info, err = o.optStr("info"); err != nil {
		return r, err
	}
	if r.GasWanted, err = optGas(o, "gas_wanted", "gasWanted"); err != nil {
		return r, err
	}
	if r.GasUsed, err = optGas(o, "gas_used", "gasUsed"); err != nil {
		return r, err
	}
	if r.Codespace, err = o.optStr("codespace"); err != nil {
		return r, err
	}
	if r.Tags, r.Events, err = c.annotations(o); err != nil {
		return r, err
	}
	return r, nil
}

// optGas reads a gas amount under its snake or camel case name.
func optGas(o object, keys ...string) (int64, error) {
	for _, key := range keys {
		if o.has(key) {
			return o.int64(key)
		}
	}
	return 0, nil
}

func (c codec) deliverTxList(o object, key string) ([]coretypes.ResponseDeliverTx, error) {
	items, err := o.optList(key)
	if err != nil {
		return nil, err
	}
	var results []coretypes.ResponseDeliverTx
	for i, raw := range items {
		txObj, err := decodeObject(index(o.field(key), i), raw)
		if err != nil {
			return nil, err
		}
		r, err := c.txResponse(txObj)
		if err != nil {
			return nil, err
		}
		results = append(results, coretypes.ResponseDeliverTx{TxResponse: r})
	}
	return results, nil
}

func (c codec) beginBlock(o object) (coretypes.ResponseBeginBlock, error) {
	tags, events, err := c.annotations(o)
	return coretypes.ResponseBeginBlock{Tags: tags, Events: events}, err
}

func (c codec) endBlock(o object) (coretypes.ResponseEndBlock, error) {
	var (
		r   coretypes.ResponseEndBlock
		err error
	)
	if r.ValidatorUpdates, err = c.validatorUpdates(o, "validator_updates"); err != nil {
		return r, err
	}
	if r.ConsensusParamUpdates, err = c.optParamUpdates(o, "consensus_param_updates"); err != nil {
		return r, err
	}
	if r.Tags, r.Events, err = c.annotations(o); err != nil {
		return r, err
	}
	return r, nil
}

func (c codec) validator(o object) (coretypes.Validator, error) {
	var (
		v   coretypes.Validator
		err error
	)
	if v.Address, err = o.hex("address"); err != nil {
		return v, err
	}
	if v.PubKey, err = c.pubKey(o, "pub_key"); err != nil {
		return v, err
	}
	if v.VotingPower, err = o.int64("voting_power"); err != nil {
		return v, err
	}
	if v.ProposerPriority, err = o.int64(c.d.priorityKey); err != nil {
		return v, err
	}
	return v, nil
}

func (c codec) validatorUpdates(o object, key string) ([]coretypes.ValidatorUpdate, error) {
	items, err := o.optList(key)
	if err != nil {
		return nil, err
	}
	var updates []coretypes.ValidatorUpdate
	for i, raw := range items {
		u, err := decodeObject(index(o.field(key), i), raw)
		if err != nil {
			return nil, err
		}
		pk, err := c.updateKey(u, "pub_key")
		if err != nil {
			return nil, err
		}
		// a removal is sent without power
		power, err := u.optInt64("power")
		if err != nil {
			return nil, err
		}
		updates = append(updates, coretypes.ValidatorUpdate{PubKey: pk, Power: power})
	}
	return updates, nil
}

// consensusParams reads a full parameter set, as found in the genesis.
func (c codec) consensusParams(o object) (*coretypes.ConsensusParams, error) {
	return c.readParams(o, false)
}

// optParamUpdates reads parameter changes, in which every member is
// optional.
func (c codec) optParamUpdates(o object, key string) (*coretypes.ConsensusParams, error) {
	updates, ok, err := o.optObject(key)
	if err != nil || !ok {
		return nil, err
	}
	return c.readParams(updates, true)
}

func (c codec) readParams(o object, update bool) (*coretypes.ConsensusParams, error) {
	readInt := func(obj object, key string) (int64, error) {
		if update {
			return obj.optInt64(key)
		}
		return obj.int64(key)
	}
	section := func(key string) (object, bool, error) {
		if update {
			return o.optObject(key)
		}
		obj, err := o.object(key)
		return obj, err == nil, err
	}

	params := &coretypes.ConsensusParams{}

	block, ok, err := section(c.d.blockParamsKey)
	if err != nil {
		return nil, err
	}
	if ok {
		params.Block = &coretypes.BlockParams{}
		if params.Block.MaxBytes, err = readInt(block, "max_bytes"); err != nil {
			return nil, err
		}
		if params.Block.MaxGas, err = readInt(block, "max_gas"); err != nil {
			return nil, err
		}
		if c.d.blockTimeIota {
			if params.Block.TimeIotaMs, err = readInt(block, "time_iota_ms"); err != nil {
				return nil, err
			}
		}
	}

	evidence, ok, err := section(c.d.evidenceParamsKey)
	if err != nil {
		return nil, err
	}
	if ok {
		params.Evidence = &coretypes.EvidenceParams{}
		if c.d.evidenceAgeDuration {
			if params.Evidence.MaxAgeNumBlocks, err = readInt(evidence, "max_age_num_blocks"); err != nil {
				return nil, err
			}
			d, err := readInt(evidence, "max_age_duration")
			if err != nil {
				return nil, err
			}
			params.Evidence.MaxAgeDuration = time.Duration(d)
		} else if params.Evidence.MaxAgeNumBlocks, err = readInt(evidence, "max_age"); err != nil {
			return nil, err
		}
	}

	validator, ok, err := o.optObject("validator")
	if err != nil {
		return nil, err
	}
	if ok {
		types, err := validator.optStrList("pub_key_types")
		if err != nil {
			return nil, err
		}
		params.Validator = &coretypes.ValidatorParams{PubKeyTypes: types}
	}

	return params, nil
}
