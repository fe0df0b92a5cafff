package adaptor

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
)

// Type tags of event payloads on the wire.
const (
	eventTagNewBlock       = "tendermint/event/NewBlock"
	eventTagNewBlockHeader = "tendermint/event/NewBlockHeader"
	eventTagTx             = "tendermint/event/Tx"
)

func (c codec) DecodeEvent(result json.RawMessage) (coretypes.ResultEvent, error) {
	var ev coretypes.ResultEvent

	root, err := decodeObject(rootPath, result)
	if err != nil {
		return ev, err
	}
	if ev.Query, err = root.str("query"); err != nil {
		return ev, err
	}
	data, err := root.object("data")
	if err != nil {
		return ev, err
	}
	tag, err := data.str("type")
	if err != nil {
		return ev, err
	}
	value, err := data.object("value")
	if err != nil {
		return ev, err
	}

	switch tag {
	case eventTagNewBlock:
		ev.Data, err = c.newBlockEvent(value)
	case eventTagNewBlockHeader:
		ev.Data, err = c.newBlockHeaderEvent(value)
	case eventTagTx:
		ev.Data, err = c.txEvent(value)
	default:
		err = decodeErr(data.field("type"), fmt.Errorf("unsupported event type %q", tag))
	}
	if err != nil {
		return ev, err
	}

	if ev.Events, err = c.compositeKeys(root); err != nil {
		return ev, err
	}
	return ev, nil
}

func (c codec) newBlockEvent(o object) (coretypes.EventDataNewBlock, error) {
	var (
		ev  coretypes.EventDataNewBlock
		err error
	)
	blockObj, err := o.object("block")
	if err != nil {
		return ev, err
	}
	if ev.Block, err = c.block(blockObj); err != nil {
		return ev, err
	}
	ev.ResultBeginBlock, ev.ResultEndBlock, err = c.blockEventResults(o)
	return ev, err
}

func (c codec) newBlockHeaderEvent(o object) (coretypes.EventDataNewBlockHeader, error) {
	var (
		ev  coretypes.EventDataNewBlockHeader
		err error
	)
	headerObj, err := o.object("header")
	if err != nil {
		return ev, err
	}
	if ev.Header, err = c.header(headerObj); err != nil {
		return ev, err
	}
	if ev.NumTxs, err = o.optInt64("num_txs"); err != nil {
		return ev, err
	}
	if !o.has("num_txs") {
		ev.NumTxs = ev.Header.NumTxs
	}
	ev.ResultBeginBlock, ev.ResultEndBlock, err = c.blockEventResults(o)
	return ev, err
}

func (c codec) blockEventResults(o object) (coretypes.ResponseBeginBlock, coretypes.ResponseEndBlock, error) {
	var (
		begin coretypes.ResponseBeginBlock
		end   coretypes.ResponseEndBlock
	)
	if obj, ok, err := o.optObject("result_begin_block"); err != nil {
		return begin, end, err
	} else if ok {
		if begin, err = c.beginBlock(obj); err != nil {
			return begin, end, err
		}
	}
	if obj, ok, err := o.optObject("result_end_block"); err != nil {
		return begin, end, err
	} else if ok {
		if end, err = c.endBlock(obj); err != nil {
			return begin, end, err
		}
	}
	return begin, end, nil
}

// txEvent reads {"TxResult": {height, index, tx, result}}. The hash is not
// part of the payload and is computed locally.
func (c codec) txEvent(o object) (coretypes.EventDataTx, error) {
	var ev coretypes.EventDataTx

	txResult, err := o.object("TxResult")
	if err != nil {
		return ev, err
	}
	if ev.Height, err = txResult.int64("height"); err != nil {
		return ev, err
	}
	if ev.Index, err = txResult.optUint32("index"); err != nil {
		return ev, err
	}
	if ev.Tx, err = txResult.base64("tx"); err != nil {
		return ev, err
	}
	result, err := txResult.object("result")
	if err != nil {
		return ev, err
	}
	if ev.Result.TxResponse, err = c.txResponse(result); err != nil {
		return ev, err
	}
	ev.Hash = c.HashTx(ev.Tx)
	return ev, nil
}

// compositeKeys reads the optional "events" map of newer nodes, e.g.
// {"tm.event": ["Tx"], "transfer.sender": ["addr1"]}.
func (c codec) compositeKeys(root object) (map[string][]string, error) {
	events, ok, err := root.optObject("events")
	if err != nil || !ok {
		return nil, err
	}
	keys := make([]string, 0, len(events.fields))
	for key := range events.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[string][]string, len(keys))
	for _, key := range keys {
		values, err := events.optStrList(key)
		if err != nil {
			return nil, err
		}
		out[key] = values
	}
	return out, nil
}
