package crm

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// PageQuery describes one paginated listing: a resource path, its fixed
// filter parameters, and the page size used to advance the offset.
type PageQuery struct {
	Path     string
	Params   url.Values
	PageSize int
}

// WalkResult accumulates every record and every request URL across a
// completed walk. URLs are kept for diagnostics even on success.
type WalkResult struct {
	Items []map[string]any
	URLs  []string
}

// WalkError reports an aborted walk: the failing page's result plus every
// URL attempted. Partial items are discarded on purpose, since statistics
// must be computed over a complete history or not at all.
type WalkError struct {
	URLs []string
	Last *FetchResult
}

func (e *WalkError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("crm: pagination aborted after %d requests", len(e.URLs))
	}
	return fmt.Sprintf("crm: pagination aborted after %d requests: status %d: %s", len(e.URLs), e.Last.Status, e.Last.Message)
}

// WalkPages drives Get across an offset/limit listing until a short page
// signals the end. Pages are requested strictly sequentially: the next
// offset depends on the prior page's size, and the CRM's total-count field
// is not trusted. Transport and configuration errors surface as Go errors;
// HTTP-level page failures surface as a *WalkError.
func (c *Client) WalkPages(ctx context.Context, q PageQuery) (*WalkResult, error) {
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	walk := &WalkResult{}
	for offset := 0; ; offset += pageSize {
		params := url.Values{}
		for k, vs := range q.Params {
			params[k] = vs
		}
		params.Set("skip", strconv.Itoa(offset))
		params.Set("take", strconv.Itoa(pageSize))

		res, err := c.Get(ctx, q.Path, params)
		if err != nil {
			return nil, err
		}
		walk.URLs = append(walk.URLs, res.URL)
		if !res.OK {
			return nil, &WalkError{URLs: walk.URLs, Last: res}
		}

		items, ok := ExtractItems(res.Data)
		if !ok {
			res.Message = "unrecognized envelope shape"
			return nil, &WalkError{URLs: walk.URLs, Last: res}
		}
		walk.Items = append(walk.Items, items...)

		if len(items) < pageSize {
			return walk, nil
		}
	}
}
