package adaptor

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
)

func (c codec) DecodeABCIInfo(result json.RawMessage) (*coretypes.ResultABCIInfo, error) {
	root, err := decodeObject(rootPath, result)
	if err != nil {
		return nil, err
	}
	resp, err := root.object("response")
	if err != nil {
		return nil, err
	}

	// the application may leave out any of these
	var info coretypes.ResponseInfo
	if info.Data, err = resp.optStr("data"); err != nil {
		return nil, err
	}
	if info.Version, err = resp.optStr("version"); err != nil {
		return nil, err
	}
	if info.AppVersion, err = resp.optUint64("app_version"); err != nil {
		return nil, err
	}
	if info.LastBlockHeight, err = resp.optInt64("last_block_height"); err != nil {
		return nil, err
	}
	if info.LastBlockAppHash, err = resp.optBase64("last_block_app_hash"); err != nil {
		return nil, err
	}
	return &coretypes.ResultABCIInfo{Response: info}, nil
}

func (c codec) DecodeABCIQuery(result json.RawMessage) (*coretypes.ResultABCIQuery, error) {
	root, err := decodeObject(rootPath, result)
	if err != nil {
		return nil, err
	}
	resp, err := root.object("response")
	if err != nil {
		return nil, err
	}

	var q coretypes.ResponseQuery
	if q.Code, err = resp.optUint32("code"); err != nil {
		return nil, err
	}
	if q.Log, err = resp.optStr("log"); err != nil {
		return nil, err
	}
	if q.Info, err = resp.optStr("info"); err != nil {
		return nil, err
	}
	if q.Index, err = resp.optInt64("index"); err != nil {
		return nil, err
	}
	if q.Key, err = resp.optBase64("key"); err != nil {
		return nil, err
	}
	if q.Value, err = resp.optBase64("value"); err != nil {
		return nil, err
	}
	q.Proof = []byte(resp.raw("proof"))
	if q.Height, err = resp.optInt64("height"); err != nil {
		return nil, err
	}
	if q.Codespace, err = resp.optStr("codespace"); err != nil {
		return nil, err
	}
	return &coretypes.ResultABCIQuery{Response: q}, nil
}

func (c codec) DecodeBlock(result json.RawMessage) (*coretypes.ResultBlock, error) {
	root, err := decodeObject(rootPath, result)
	if err != nil {
		return nil, err
	}

	idHolder := root
	if c.d.blockMeta {
		if idHolder, err = root.object("block_meta"); err != nil {
			return nil, err
		}
	}
	idObj, err := idHolder.object("block_id")
	if err != nil {
		return nil, err
	}
	id, err := c.blockID(idObj)
	if err != nil {
		return nil, err
	}

	blockObj, err := root.object("block")
	if err != nil {
		return nil, err
	}
	block, err := c.block(blockObj)
	if err != nil {
		return nil, err
	}
	return &coretypes.ResultBlock{BlockID: id, Block: block}, nil
}

func (c codec) DecodeBlockResults(result json.RawMessage) (*coretypes.ResultBlockResults, error) {
	root, err := decodeObject(rootPath, result)
	if err != nil {
		return nil, err
	}
	res := &coretypes.ResultBlockResults{}
	if res.Height, err = root.int64("height"); err != nil {
		return nil, err
	}

	switch c.d.resultsLayout {
	case resultsNestedPascal:
		results, err := root.object("results")
		if err != nil {
			return nil, err
		}
		if res.TxsResults, err = c.deliverTxList(results, "DeliverTx"); err != nil {
			return nil, err
		}
		if endBlock, ok, err := results.optObject("EndBlock"); err != nil {
			return nil, err
		} else if ok {
			if res.EndBlock, err = c.endBlock(endBlock); err != nil {
				return nil, err
			}
		}

	case resultsNestedSnake:
		results, err := root.object("results")
		if err != nil {
			return nil, err
		}
		if res.TxsResults, err = c.deliverTxList(results, "deliver_tx"); err != nil {
			return nil, err
		}
		if beginBlock, ok, err := results.optObject("begin_block"); err != nil {
			return nil, err
		} else if ok {
			if res.BeginBlock, err = c.beginBlock(beginBlock); err != nil {
				return nil, err
			}
		}
		if endBlock, ok, err := results.optObject("end_block"); err != nil {
			return nil, err
		} else if ok {
			if res.EndBlock, err = c.endBlock(endBlock); err != nil {
				return nil, err
			}
		}

	case resultsFlat:
		if res.TxsResults, err = c.deliverTxList(root, "txs_results"); err != nil {
			return nil, err
		}
		if res.BeginBlock.Events, err = c.eventList(root, "begin_block_events"); err != nil {
			return nil, err
		}
		if res.EndBlock.Events, err = c.eventList(root, "end_block_events"); err != nil {
			return nil, err
		}
		if res.EndBlock.ValidatorUpdates, err = c.validatorUpdates(root, "validator_updates"); err != nil {
			return nil, err
		}
		if res.EndBlock.ConsensusParamUpdates, err = c.optParamUpdates(root, "consensus_param_updates"); err != nil {
			return nil, err
		}
	}

	return res, nil
}

func (c codec) DecodeBlockchainInfo(result json.RawMessage) (*coretypes.ResultBlockchainInfo, error) {
	root, err := decodeObject(rootPath, result)
	if err != nil {
		return nil, err
	}
	res := &coretypes.ResultBlockchainInfo{}
	if res.LastHeight, err = root.int64("last_height"); err != nil {
		return nil, err
	}
	metas, err := root.list("block_metas")
	if err != nil {
		return nil, err
	}
	for i, raw := range metas {
		metaObj, err := decodeObject(index(root.field("block_metas"), i), raw)
		if err != nil {
			return nil, err
		}
		meta, err := c.blockMeta(metaObj)
		if err != nil {
			return nil, err
		}
		res.BlockMetas = append(res.BlockMetas, meta)
	}
	return res, nil
}

func (c codec) blockMeta(o object) (coretypes.BlockMeta, error) {
	var meta coretypes.BlockMeta

	idObj, err := o.object("block_id")
	if err != nil {
		return meta, err
	}
	if meta.BlockID, err = c.blockID(idObj); err != nil {
		return meta, err
	}
	headerObj, err := o.object("header")
	if err != nil {
		return meta, err
	}
	if meta.Header, err = c.header(headerObj); err != nil {
		return meta, err
	}
	if meta.BlockSize, err = o.optInt64("block_size"); err != nil {
		return meta, err
	}
	if meta.NumTxs, err = o.optInt64("num_txs"); err != nil {
		return meta, err
	}
	if !o.has("num_txs") {
		meta.NumTxs = meta.Header.NumTxs
	}
	return meta, nil
}

func (c codec) DecodeBroadcastTx(result json.RawMessage) (*coretypes.ResultBroadcastTx, error) {
	root, err := decodeObject(rootPath, result)
	if err != nil {
		return nil, err
	}
	res := &coretypes.ResultBroadcastTx{}
	if res.Code, err = root.optUint32("code"); err != nil {
		return nil, err
	}
	if res.Data, err = root.optHex("data"); err != nil {
		return nil, err
	}
	if res.Log, err = root.optStr("log"); err != nil {
		return nil, err
	}
	if res.Codespace, err = root.optStr("codespace"); err != nil {
		return nil, err
	}
	if res.Hash, err = root.hex("hash"); err != nil {
		return nil, err
	}
	return res, nil
}

func (c codec) DecodeBroadcastTxCommit(result json.RawMessage) (*coretypes.ResultBroadcastTxCommit, error) {
	root, err := decodeObject(rootPath, result)
	if err != nil {
		return nil, err
	}
	res := &coretypes.ResultBroadcastTxCommit{}

	checkTx, err := root.object("check_tx")
	if err != nil {
		return nil, err
	}
	if res.CheckTx.TxResponse, err = c.txResponse(checkTx); err != nil {
		return nil, err
	}
	deliverTx, err := root.object("deliver_tx")
	if err != nil {
		return nil, err
	}
	if res.DeliverTx.TxResponse, err = c.txResponse(deliverTx); err != nil {
		return nil, err
	}
	if res.Hash, err = root.hex("hash"); err != nil {
		return nil, err
	}
	if res.Height, err = root.int64("height"); err != nil {
		return nil, err
	}
	return res, nil
}

// VerifyTxHash checks the hash a node reported for tx against the one
// computed with the dialect's hash function.
func VerifyTxHash(a Adaptor, tx, reported []byte) error {
	if !bytes.Equal(a.HashTx(tx), reported) {
		return &DecodeError{Field: join(rootPath, "hash"), Err: ErrHashMismatch}
	}
	return nil
}

func (c codec) DecodeCommit(result json.RawMessage) (*coretypes.ResultCommit, error) {
	root, err := decodeObject(rootPath, result)
	if err != nil {
		return nil, err
	}
	signed, err := root.object("signed_header")
	if err != nil {
		return nil, err
	}
	headerObj, err := signed.object("header")
	if err != nil {
		return nil, err
	}
	header, err := c.header(headerObj)
	if err != nil {
		return nil, err
	}
	commitObj, err := signed.object("commit")
	if err != nil {
		return nil, err
	}
	commit, err := c.commit(commitObj)
	if err != nil {
		return nil, err
	}
	canonical, err := root.bool("canonical")
	if err != nil {
		return nil, err
	}
	return &coretypes.ResultCommit{
		SignedHeader:    coretypes.SignedHeader{Header: &header, Commit: commit},
		CanonicalCommit: canonical,
	}, nil
}

func (c codec) DecodeGenesis(result json.RawMessage) (*coretypes.ResultGenesis, error) {
	root, err := decodeObject(rootPath, result)
	if err != nil {
		return nil, err
	}
	g, err := root.object("genesis")
	if err != nil {
		return nil, err
	}

	doc := &coretypes.GenesisDoc{}
	if doc.GenesisTime, err = g.time("genesis_time"); err != nil {
		return nil, err
	}
	if doc.ChainID, err = g.str("chain_id"); err != nil {
		return nil, err
	}
	if paramsObj, ok, err := g.optObject("consensus_params"); err != nil {
		return nil, err
	} else if ok {
		if doc.ConsensusParams, err = c.consensusParams(paramsObj); err != nil {
			return nil, err
		}
	}

	validators, err := g.optList("validators")
	if err != nil {
		return nil, err
	}
	for i, raw := range validators {
		v, err := decodeObject(index(g.field("validators"), i), raw)
		if err != nil {
			return nil, err
		}
		var gv coretypes.GenesisValidator
		if gv.Address, err = v.optHex("address"); err != nil {
			return nil, err
		}
		if gv.PubKey, err = c.pubKey(v, "pub_key"); err != nil {
			return nil, err
		}
		if gv.Power, err = v.int64("power"); err != nil {
			return nil, err
		}
		if gv.Name, err = v.optStr("name"); err != nil {
			return nil, err
		}
		if len(gv.Address) == 0 {
			gv.Address = gv.PubKey.Address()
		}
		doc.Validators = append(doc.Validators, gv)
	}

	if doc.AppHash, err = g.optHex("app_hash"); err != nil {
		return nil, err
	}
	doc.AppState = []byte(g.raw("app_state"))

	return &coretypes.ResultGenesis{Genesis: doc}, nil
}

func (c codec) DecodeHealth(result json.RawMessage) (*coretypes.ResultHealth, error) {
	if _, err := decodeObject(rootPath, result); err != nil {
		return nil, err
	}
	return &coretypes.ResultHealth{}, nil
}

func (c codec) DecodeStatus(result json.RawMessage) (*coretypes.ResultStatus, error) {
	root, err := decodeObject(rootPath, result)
	if err != nil {
		return nil, err
	}
	res := &coretypes.ResultStatus{}

	nodeInfo, err := root.object("node_info")
	if err != nil {
		return nil, err
	}
	if res.NodeInfo, err = c.nodeInfo(nodeInfo); err != nil {
		return nil, err
	}

	syncInfo, err := root.object("sync_info")
	if err != nil {
		return nil, err
	}
	if res.SyncInfo, err = c.syncInfo(syncInfo); err != nil {
		return nil, err
	}

	valInfo, err := root.object("validator_info")
	if err != nil {
		return nil, err
	}
	if res.ValidatorInfo.Address, err = valInfo.hex("address"); err != nil {
		return nil, err
	}
	if res.ValidatorInfo.PubKey, err = c.pubKey(valInfo, "pub_key"); err != nil {
		return nil, err
	}
	if res.ValidatorInfo.VotingPower, err = valInfo.int64("voting_power"); err != nil {
		return nil, err
	}
	return res, nil
}

func (c codec) nodeInfo(o object) (coretypes.NodeInfo, error) {
	var (
		ni  coretypes.NodeInfo
		err error
	)

	pv, ok, err := o.optObject("protocol_version")
	if err != nil {
		return ni, err
	}
	if !ok && c.d.protocolVersion {
		return ni, missing(o.field("protocol_version"))
	}
	if ok {
		if ni.ProtocolVersion.P2P, err = pv.uint64("p2p"); err != nil {
			return ni, err
		}
		if ni.ProtocolVersion.Block, err = pv.uint64("block"); err != nil {
			return ni, err
		}
		if ni.ProtocolVersion.App, err = pv.uint64("app"); err != nil {
			return ni, err
		}
	}

	if ni.ID, err = o.str("id"); err != nil {
		return ni, err
	}
	if ni.ListenAddr, err = o.str("listen_addr"); err != nil {
		return ni, err
	}
	if ni.Network, err = o.str("network"); err != nil {
		return ni, err
	}
	if ni.Version, err = o.str("version"); err != nil {
		return ni, err
	}
	if ni.Channels, err = o.hex("channels"); err != nil {
		return ni, err
	}
	if ni.Moniker, err = o.str("moniker"); err != nil {
		return ni, err
	}

	if c.d.nodeInfoOtherList {
		// a list of "key=value" strings
		pairs, err := o.optStrList("other")
		if err != nil {
			return ni, err
		}
		for _, pair := range pairs {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) != 2 {
				continue
			}
			switch kv[0] {
			case "tx_index":
				ni.Other.TxIndex = kv[1]
			case "rpc_addr", "rpc_address":
				ni.Other.RPCAddress = kv[1]
			}
		}
		return ni, nil
	}

	other, ok, err := o.optObject("other")
	if err != nil || !ok {
		return ni, err
	}
	if ni.Other.TxIndex, err = other.optStr("tx_index"); err != nil {
		return ni, err
	}
	if ni.Other.RPCAddress, err = other.optStr("rpc_address"); err != nil {
		return ni, err
	}
	return ni, nil
}

func (c codec) syncInfo(o object) (coretypes.SyncInfo, error) {
	var (
		si  coretypes.SyncInfo
		err error
	)
	if si.LatestBlockHash, err = o.hex("latest_block_hash"); err != nil {
		return si, err
	}
	if si.LatestAppHash, err = o.hex("latest_app_hash"); err != nil {
		return si, err
	}
	if si.LatestBlockHeight, err = o.int64("latest_block_height"); err != nil {
		return si, err
	}
	if si.LatestBlockTime, err = o.time("latest_block_time"); err != nil {
		return si, err
	}
	if c.d.catchingUpOptional {
		si.CatchingUp, err = o.optBool("catching_up")
	} else {
		si.CatchingUp, err = o.bool("catching_up")
	}
	if err != nil {
		return si, err
	}
	return si, nil
}

func (c codec) DecodeTx(result json.RawMessage) (*coretypes.ResultTx, error) {
	root, err := decodeObject(rootPath, result)
	if err != nil {
		return nil, err
	}
	return c.txResult(root)
}

func (c codec) txResult(o object) (*coretypes.ResultTx, error) {
	var (
		res = &coretypes.ResultTx{}
		err error
	)
	if res.Hash, err = o.hex("hash"); err != nil {
		return nil, err
	}
	if res.Height, err = o.int64("height"); err != nil {
		return nil, err
	}
	if res.Index, err = o.uint32("index"); err != nil {
		return nil, err
	}
	txResult, err := o.object("tx_result")
	if err != nil {
		return nil, err
	}
	if res.TxResult.TxResponse, err = c.txResponse(txResult); err != nil {
		return nil, err
	}
	if res.Tx, err = o.base64("tx"); err != nil {
		return nil, err
	}

	proof, ok, err := o.optObject("proof")
	if err != nil {
		return nil, err
	}
	if ok {
		if res.Proof, err = c.txProof(proof); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (c codec) txProof(o object) (*coretypes.TxProof, error) {
	var (
		p   = &coretypes.TxProof{}
		err error
	)
	if p.RootHash, err = o.hex("root_hash"); err != nil {
		return nil, err
	}
	if p.Data, err = o.base64("data"); err != nil {
		return nil, err
	}
	merkle, err := o.object("proof")
	if err != nil {
		return nil, err
	}
	if p.Proof.Total, err = merkle.integer("total"); err != nil {
		return nil, err
	}
	if p.Proof.Index, err = merkle.integer("index"); err != nil {
		return nil, err
	}
	if p.Proof.LeafHash, err = merkle.base64("leaf_hash"); err != nil {
		return nil, err
	}
	aunts, err := merkle.optList("aunts")
	if err != nil {
		return nil, err
	}
	for i, raw := range aunts {
		aunt, err := decodeBase64(index(merkle.field("aunts"), i), raw)
		if err != nil {
			return nil, err
		}
		p.Proof.Aunts = append(p.Proof.Aunts, aunt)
	}
	return p, nil
}

func (c codec) DecodeTxSearch(result json.RawMessage) (*coretypes.ResultTxSearch, error) {
	root, err := decodeObject(rootPath, result)
	if err != nil {
		return nil, err
	}
	res := &coretypes.ResultTxSearch{}

	txs, err := root.optList("txs")
	if err != nil {
		return nil, err
	}
	for i, raw := range txs {
		txObj, err := decodeObject(index(root.field("txs"), i), raw)
		if err != nil {
			return nil, err
		}
		tx, err := c.txResult(txObj)
		if err != nil {
			return nil, err
		}
		res.Txs = append(res.Txs, tx)
	}

	total, err := root.integer("total_count")
	if err != nil {
		return nil, err
	}
	res.TotalCount = int(total)
	return res, nil
}

func (c codec) DecodeValidators(result json.RawMessage) (*coretypes.ResultValidators, error) {
	root, err := decodeObject(rootPath, result)
	if err != nil {
		return nil, err
	}
	res := &coretypes.ResultValidators{}
	if res.BlockHeight, err = root.int64("block_height"); err != nil {
		return nil, err
	}

	validators, err := root.list("validators")
	if err != nil {
		return nil, err
	}
	for i, raw := range validators {
		v, err := decodeObject(index(root.field("validators"), i), raw)
		if err != nil {
			return nil, err
		}
		val, err := c.validator(v)
		if err != nil {
			return nil, err
		}
		res.Validators = append(res.Validators, val)
	}

	if !c.d.paginatedValidators {
		res.Count = len(res.Validators)
		res.Total = len(res.Validators)
		return res, nil
	}
	count, err := root.integer("count")
	if err != nil {
		return nil, err
	}
	total, err := root.integer("total")
	if err != nil {
		return nil, err
	}
	res.Count, res.Total = int(count), int(total)
	return res, nil
}
