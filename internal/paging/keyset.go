package paging

import "fmt"

// Binder allocates a positional query parameter for v and returns its
// placeholder.
type Binder interface {
	Bind(v any) string
}

// Keyset names the columns a collection is ordered by. IDColumn is the
// tie-break for rows sharing a sort key.
type Keyset struct {
	SortColumn string
	IDColumn   string
}

// After renders the exclusive lower bound for rows following c. It returns
// an empty string when c is nil.
func (k Keyset) After(c *Cursor, b Binder) string {
	if c == nil {
		return ""
	}
	ts := b.Bind(c.SortKey)
	id := b.Bind(c.ID)
	return fmt.Sprintf("(%s < %s OR (%s = %s AND %s < %s))",
		k.SortColumn, ts, k.SortColumn, ts, k.IDColumn, id)
}

// OrderBy renders the ORDER BY clause body.
func (k Keyset) OrderBy() string {
	return k.SortColumn + " DESC, " + k.IDColumn + " DESC"
}
