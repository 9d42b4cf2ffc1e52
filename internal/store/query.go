package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/videotube-app/videotube/internal/paging"
)

// args collects positional parameters. It implements paging.Binder.
type args struct {
	vals []any
}

func (a *args) Bind(v any) string {
	a.vals = append(a.vals, v)
	return "$" + strconv.Itoa(len(a.vals))
}

func (a *args) clone() *args {
	return &args{vals: append([]any(nil), a.vals...)}
}

// aggregate is a correlated scalar subquery selected as one column. It never
// joins, so it cannot change the row count of the base query.
type aggregate struct {
	name string
	expr string
}

func countOf(name, from, where string) aggregate {
	return aggregate{name: name, expr: fmt.Sprintf("(SELECT count(*) FROM %s WHERE %s)", from, where)}
}

func existsOf(name, from, where string) aggregate {
	return aggregate{name: name, expr: fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE %s)", from, where)}
}

// listQuery is one keyset-paginated SELECT. The selected columns are, in
// order: columns, aggregates, then the sort key as sort_key.
type listQuery struct {
	with    string
	columns []string
	aggs    []aggregate
	from    string
	where   []string
	keyset  paging.Keyset
	args    *args
}

func newListQuery(from string, keyset paging.Keyset) *listQuery {
	return &listQuery{from: from, keyset: keyset, args: &args{}}
}

func (q *listQuery) bind(v any) string { return q.args.Bind(v) }

func (q *listQuery) filter(cond string) *listQuery {
	q.where = append(q.where, cond)
	return q
}

// build renders the statement for rows after the cursor, fetching n rows.
// It leaves q untouched so the same query can be rendered again.
func (q *listQuery) build(after *paging.Cursor, n int) (string, []any) {
	a := q.args.clone()

	cols := make([]string, 0, len(q.columns)+len(q.aggs)+1)
	cols = append(cols, q.columns...)
	for _, agg := range q.aggs {
		cols = append(cols, agg.expr+" AS "+agg.name)
	}
	cols = append(cols, q.keyset.SortColumn+" AS sort_key")

	where := append([]string(nil), q.where...)
	if cond := q.keyset.After(after, a); cond != "" {
		where = append(where, cond)
	}

	var b strings.Builder
	if q.with != "" {
		b.WriteString("WITH ")
		b.WriteString(q.with)
		b.WriteString("\n")
	}
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(cols, ",\n       "))
	b.WriteString("\nFROM ")
	b.WriteString(q.from)
	if len(where) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(joinWhere(where))
	}
	b.WriteString("\nORDER BY ")
	b.WriteString(q.keyset.OrderBy())
	b.WriteString("\nLIMIT ")
	b.WriteString(a.Bind(n))
	return b.String(), a.vals
}

func joinWhere(conds []string) string {
	return strings.Join(conds, "\n  AND ")
}

// likePattern escapes LIKE metacharacters and wraps s for substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// nullable maps an empty id to SQL NULL.
func nullable(id string) any {
	if id == "" {
		return nil
	}
	return id
}
