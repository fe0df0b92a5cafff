package client

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tendermint/tendermint-rpc/rpc/coretypes"
)

// TxSearchAll walks the pages of a transaction search and returns every
// result in the order the node reported them. The number of pages is fixed
// by the first page: its total count over the page size the node actually
// used, which may be below the requested one when the node caps per_page.
// The walk ends early on an empty page or once total count results were
// collected. No page is requested twice.
func (c *Client) TxSearchAll(ctx context.Context, query string, prove bool,
	orderBy string) (*coretypes.ResultTxSearch, error) {
	perPage := c.txSearchPerPage
	all := &coretypes.ResultTxSearch{}

	pages := 1
	for page := 1; page <= pages; page++ {
		p := page
		res, err := c.TxSearch(ctx, query, prove, &p, &perPage, orderBy)
		if err != nil {
			return nil, errors.Wrapf(err, "TxSearchAll page %d", page)
		}
		if page == 1 {
			all.TotalCount = res.TotalCount
			pageSize := perPage
			if n := len(res.Txs); n > 0 && n < perPage && n < res.TotalCount {
				pageSize = n
			}
			pages = (res.TotalCount + pageSize - 1) / pageSize
		}
		if len(res.Txs) == 0 {
			break
		}
		all.Txs = append(all.Txs, res.Txs...)
		if len(all.Txs) >= all.TotalCount {
			break
		}
	}

	c.logger.Debug("searched transactions", "query", query, "found", len(all.Txs), "total", all.TotalCount)
	return all, nil
}
