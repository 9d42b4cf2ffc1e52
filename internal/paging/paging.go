// Package paging implements keyset pagination over collections ordered by
// (sort key DESC, id DESC).
//
// A page is fetched by asking the backing store for limit+1 rows strictly
// after the cursor. The extra row only signals that another page exists; it
// is never returned. The next cursor is built from the last retained row.
package paging

import (
	"context"
	"errors"
	"time"
)

// Page size bounds accepted by Request.Validate.
const (
	MinLimit = 1
	MaxLimit = 100
)

var (
	// ErrInvalidLimit is returned when a limit falls outside [MinLimit, MaxLimit].
	ErrInvalidLimit = errors.New("limit must be between 1 and 100")

	// ErrInvalidCursor is returned for cursors that are malformed or were
	// issued for a different collection.
	ErrInvalidCursor = errors.New("invalid cursor")
)

// Cursor identifies the last row of a page. Rows are compared on SortKey
// first and ID second, both descending.
type Cursor struct {
	ID      string
	SortKey time.Time
}

// Before reports whether c sorts ahead of o in (SortKey DESC, ID DESC) order.
func (c Cursor) Before(o Cursor) bool {
	if !c.SortKey.Equal(o.SortKey) {
		return c.SortKey.After(o.SortKey)
	}
	return c.ID > o.ID
}

// Request is a page request. A nil Cursor asks for the first page.
type Request struct {
	Cursor *Cursor
	Limit  int
}

// Validate rejects requests before any query is issued.
func (r Request) Validate() error {
	if r.Limit < MinLimit || r.Limit > MaxLimit {
		return ErrInvalidLimit
	}
	if r.Cursor != nil && (r.Cursor.ID == "" || r.Cursor.SortKey.IsZero()) {
		return ErrInvalidCursor
	}
	return nil
}

// Page is one slice of a collection. NextCursor is nil on the last page.
type Page[T any] struct {
	Items      []T
	NextCursor *Cursor
}

// HasMore reports whether another page follows.
func (p *Page[T]) HasMore() bool {
	return p.NextCursor != nil
}

// Fetcher loads at most n rows that sort strictly after the given cursor
// (all rows when after is nil), in (sort key DESC, id DESC) order.
type Fetcher[T any] func(ctx context.Context, after *Cursor, n int) ([]T, error)

// Paginate validates req, fetches one row more than requested and trims the
// result to a page. keyOf must return the same (id, sort key) pair the
// fetcher orders by. Fetch errors are returned as is.
func Paginate[T any](ctx context.Context, req Request, keyOf func(T) Cursor, fetch Fetcher[T]) (*Page[T], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rows, err := fetch(ctx, req.Cursor, req.Limit+1)
	if err != nil {
		return nil, err
	}

	page := &Page[T]{Items: rows}
	if len(rows) > req.Limit {
		page.Items = rows[:req.Limit]
		next := keyOf(page.Items[req.Limit-1])
		page.NextCursor = &next
	}
	if page.Items == nil {
		page.Items = make([]T, 0)
	}
	return page, nil
}
