package client

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	rpctypes "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/types"
)

// idGenerator hands out correlation ids of the form <prefix>-<n>. The prefix
// is random per transport so that logs of several clients stay apart; the
// counter makes ids unique for the lifetime of the transport.
type idGenerator struct {
	prefix string
	n      uint64 // atomic
}

func newIDGenerator() *idGenerator {
	return &idGenerator{prefix: uuid.NewString()[:8]}
}

func (g *idGenerator) next() rpctypes.JSONRPCStringID {
	n := atomic.AddUint64(&g.n, 1)
	return rpctypes.JSONRPCStringID(fmt.Sprintf("%s-%d", g.prefix, n))
}
