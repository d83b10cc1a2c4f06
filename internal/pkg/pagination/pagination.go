// Package pagination holds the offset pagination used by every list endpoint.
package pagination

const (
	// DefaultLimit is used when a request does not specify a limit
	DefaultLimit = 50
	// MaxLimit caps the page size
	MaxLimit = 200
)

// Params contains pagination parameters
type Params struct {
	Limit  int
	Offset int
}

// New normalizes limit and offset: non-positive limits use DefaultLimit,
// larger ones are capped at MaxLimit, and negative offsets become zero.
func New(limit, offset int) Params {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Params{Limit: limit, Offset: offset}
}

// Page is one page of results with the total across all pages
type Page[T any] struct {
	Data       []T   `json:"data"`
	TotalCount int64 `json:"totalCount"`
	HasMore    bool  `json:"hasMore"`
}

// NewPage builds a page and computes HasMore from the total count
func NewPage[T any](items []T, total int64, p Params) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Data:       items,
		TotalCount: total,
		HasMore:    int64(p.Offset+len(items)) < total,
	}
}
