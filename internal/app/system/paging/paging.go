// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
)

// DefaultLimit is the page size used when the caller does not ask for one.
const DefaultLimit = 10

// MaxLimit caps the page size a caller can request.
const MaxLimit = 100

// Page holds the parsed page/limit query parameters for skip pagination.
type Page struct {
	Page  int
	Limit int
}

// Parse extracts the 1-based "page" and "limit" query parameters, falling
// back to sane defaults for missing or invalid values.
func Parse(r *http.Request) Page {
	p := Page{Page: 1, Limit: DefaultLimit}

	if s := r.URL.Query().Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			p.Page = n
		}
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			if n > MaxLimit {
				n = MaxLimit
			}
			p.Limit = n
		}
	}
	return p
}

// Skip returns the number of documents to skip for this page.
func (p Page) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// TotalPages returns the page count for the given total, never less than
// zero. The last partial page counts as a full page.
func (p Page) TotalPages(total int64) int64 {
	if total <= 0 {
		return 0
	}
	limit := int64(p.Limit)
	return (total + limit - 1) / limit
}
