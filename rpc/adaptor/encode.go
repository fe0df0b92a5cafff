package adaptor

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
)

// params is the params object of a call. Integers are sent as decimal
// strings, which every dialect accepts.
type params map[string]interface{}

func (p params) setInt(key string, n int64) {
	p[key] = strconv.FormatInt(n, 10)
}

func (p params) setHeight(h *int64) {
	if h != nil {
		p.setInt("height", *h)
	}
}

func newCall(method string, p params) (Call, error) {
	if p == nil {
		p = params{}
	}
	bz, err := json.Marshal(p)
	if err != nil {
		return Call{}, fmt.Errorf("encode %s params: %w", method, err)
	}
	return Call{Method: method, Params: bz}, nil
}

func (c codec) EncodeABCIInfo() (Call, error) {
	return newCall(MethodABCIInfo, nil)
}

func (c codec) EncodeABCIQuery(req coretypes.RequestABCIQuery) (Call, error) {
	p := params{
		"path": req.Path,
		"data": req.Data.String(),
	}
	if req.Height > 0 {
		p.setInt("height", req.Height)
	}
	if c.d.trustedQuery {
		p["trusted"] = !req.Prove
	} else {
		p["prove"] = req.Prove
	}
	return newCall(MethodABCIQuery, p)
}

func (c codec) EncodeBlock(req coretypes.RequestBlock) (Call, error) {
	p := params{}
	p.setHeight(req.Height)
	return newCall(MethodBlock, p)
}

func (c codec) EncodeBlockResults(req coretypes.RequestBlockResults) (Call, error) {
	p := params{}
	p.setHeight(req.Height)
	return newCall(MethodBlockResults, p)
}

func (c codec) EncodeBlockchainInfo(req coretypes.RequestBlockchainInfo) (Call, error) {
	p := params{}
	if req.MinHeight > 0 {
		p.setInt("minHeight", req.MinHeight)
	}
	if req.MaxHeight > 0 {
		p.setInt("maxHeight", req.MaxHeight)
	}
	return newCall(MethodBlockchain, p)
}

func (c codec) EncodeBroadcastTx(method string, req coretypes.RequestBroadcastTx) (Call, error) {
	switch method {
	case MethodBroadcastTxAsync, MethodBroadcastTxSync, MethodBroadcastTxCommit:
	default:
		return Call{}, fmt.Errorf("%s is not a broadcast method", method)
	}
	return newCall(method, params{"tx": base64.StdEncoding.EncodeToString(req.Tx)})
}

func (c codec) EncodeCommit(req coretypes.RequestCommit) (Call, error) {
	p := params{}
	p.setHeight(req.Height)
	return newCall(MethodCommit, p)
}

func (c codec) EncodeGenesis() (Call, error) {
	return newCall(MethodGenesis, nil)
}

func (c codec) EncodeHealth() (Call, error) {
	return newCall(MethodHealth, nil)
}

func (c codec) EncodeStatus() (Call, error) {
	return newCall(MethodStatus, nil)
}

func (c codec) EncodeSubscribe(req coretypes.RequestSubscribe) (Call, error) {
	return newCall(MethodSubscribe, params{"query": req.Query})
}

func (c codec) EncodeUnsubscribe(req coretypes.RequestUnsubscribe) (Call, error) {
	return newCall(MethodUnsubscribe, params{"query": req.Query})
}

func (c codec) EncodeTx(req coretypes.RequestTx) (Call, error) {
	return newCall(MethodTx, params{
		"hash":  base64.StdEncoding.EncodeToString(req.Hash),
		"prove": req.Prove,
	})
}

func (c codec) EncodeTxSearch(req coretypes.RequestTxSearch) (Call, error) {
	p := params{
		"query": req.Query,
		"prove": req.Prove,
	}
	if req.Page > 0 {
		p.setInt("page", int64(req.Page))
	}
	if req.PerPage > 0 {
		p.setInt("per_page", int64(req.PerPage))
	}
	if c.d.txSearchOrder && req.OrderBy != "" {
		p["order_by"] = req.OrderBy
	}
	return newCall(MethodTxSearch, p)
}

func (c codec) EncodeValidators(req coretypes.RequestValidators) (Call, error) {
	p := params{}
	p.setHeight(req.Height)
	if c.d.paginatedValidators {
		if req.Page > 0 {
			p.setInt("page", int64(req.Page))
		}
		if req.PerPage > 0 {
			p.setInt("per_page", int64(req.PerPage))
		}
	}
	return newCall(MethodValidators, p)
}
