package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/packratdb/packrat/internal/query"
	"github.com/packratdb/packrat/internal/querymem"
	"github.com/packratdb/packrat/internal/querysql"
)

// searchTable is the table searches run against.
const searchTable = "items"

// SearchResult carries the rows a search matched plus the plan that
// produced them.
type SearchResult struct {
	Items []Item
	Query *query.Query
	Plan  *querysql.Conditional

	// Residual reports that filter chains could not be pushed into SQL
	// and were evaluated in memory instead.
	Residual bool
}

// Search parses raw and runs it. Filter chains are pushed into the SQL
// WHERE clause when every atom converts; otherwise the chains run in
// memory over the candidate rows and paging is applied afterwards, so
// both paths answer identically.
func (s *Store) Search(ctx context.Context, raw string) (*SearchResult, error) {
	q := query.Parse(raw)
	prof, _ := s.profiles.Lookup(searchTable)
	cond := s.compiler.Compile(ctx, q, searchTable, "", prof.PageSize)
	residual := len(cond.Residual) > 0

	sel, args := s.buildSearchSQL(q, cond, residual)
	rows, err := s.db.QueryContext(ctx, sel, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var rowMaps []map[string]any
	for rows.Next() {
		m, err := scanRowMap(rows)
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		rowMaps = append(rowMaps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search: iterate: %w", err)
	}

	if residual {
		slog.Debug("evaluating residual chains in memory",
			"chains", len(cond.Residual), "rows", len(rowMaps))
		rowMaps = s.filterResidual(ctx, rowMaps, cond)
	}

	items := make([]Item, 0, len(rowMaps))
	for _, m := range rowMaps {
		items = append(items, itemFromRow(m))
	}
	return &SearchResult{Items: items, Query: q, Plan: cond, Residual: residual}, nil
}

// GetItem retrieves a single item by full or short ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetItem(ctx context.Context, id string) (Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT items.* FROM items WHERE items.id = :id OR items.short_id = :id
	`, sql.Named("id", id))
	if err != nil {
		return Item{}, fmt.Errorf("get item: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Item{}, fmt.Errorf("get item: %w", err)
		}
		return Item{}, sql.ErrNoRows
	}
	m, err := scanRowMap(rows)
	if err != nil {
		return Item{}, fmt.Errorf("get item: %w", err)
	}
	return itemFromRow(m), nil
}

// derivedCols are the extra per-row columns the in-memory predicates
// read. They are only selected on the residual path.
const derivedCols = `,
	(SELECT COUNT(*) FROM placements pl WHERE pl.item_id = items.id OR pl.parent_id = items.id) AS placement_refs,
	(SELECT COUNT(*) FROM placements pl WHERE pl.parent_id = items.id) AS contained_count,
	(SELECT MIN(r.due_at) FROM reminders r WHERE r.item_id = items.id) AS next_due,
	(SELECT COUNT(*) FROM invoices iv WHERE iv.item_id = items.id) AS invoice_count,
	(SELECT COUNT(*) FROM images im WHERE im.item_id = items.id) AS image_count`

// buildSearchSQL assembles the SELECT for a search. Identifier and
// free-text constraints always apply in SQL; compiled chains, LIMIT and
// OFFSET apply only when nothing is residual. Every value travels as a
// named parameter.
func (s *Store) buildSearchSQL(q *query.Query, cond *querysql.Conditional, residual bool) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString("SELECT items.*")
	if residual {
		sb.WriteString(derivedCols)
	}
	sb.WriteString(" FROM items")

	// Identifiers and free text are both access paths to rows; either
	// one finding the row is enough. A pasted slug must locate its item
	// even when the fused slug words don't appear in the stored text.
	var access []string
	if len(q.Identifiers) > 0 {
		var uuids, shorts []string
		for i, id := range q.Identifiers {
			name := fmt.Sprintf("id%d", i)
			args = append(args, sql.Named(name, id))
			if len(id) == 36 {
				uuids = append(uuids, ":"+name)
			} else {
				shorts = append(shorts, ":"+name)
			}
		}
		var alts []string
		if len(uuids) > 0 {
			alts = append(alts, "items.id IN ("+strings.Join(uuids, ", ")+")")
		}
		if len(shorts) > 0 {
			alts = append(alts, "items.short_id IN ("+strings.Join(shorts, ", ")+")")
		}
		access = append(access, "("+strings.Join(alts, " OR ")+")")
	}
	if len(q.Terms) > 0 {
		var likes []string
		for i, term := range q.Terms {
			name := fmt.Sprintf("t%d", i)
			args = append(args, sql.Named(name, "%"+escapeLike(term)+"%"))
			ref := ":" + name
			likes = append(likes, "(items.name LIKE "+ref+" ESCAPE '\\'"+
				" OR items.description LIKE "+ref+" ESCAPE '\\'"+
				" OR items.notes LIKE "+ref+" ESCAPE '\\')")
		}
		access = append(access, "("+strings.Join(likes, " AND ")+")")
	}

	var where []string
	switch len(access) {
	case 1:
		where = append(where, access[0])
	case 2:
		where = append(where, "("+access[0]+" OR "+access[1]+")")
	}

	where = append(where, cond.Where...)
	for _, name := range cond.ParamNames() {
		args = append(args, sql.Named(name, query.Value(cond.Params[name])))
	}

	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	order := strings.Join(cond.OrderBy, ", ")
	if order == "" {
		prof, _ := s.profiles.Lookup(cond.Table)
		if prof.OrderColumn != "" {
			order = "items." + prof.OrderColumn + " ASC, items.id ASC"
		} else {
			order = "items.id ASC"
		}
	}
	sb.WriteString(" ORDER BY " + order)

	if !residual && cond.Limit > 0 {
		args = append(args, sql.Named("limit", cond.Limit))
		sb.WriteString(" LIMIT :limit")
		if cond.Offset > 0 {
			args = append(args, sql.Named("offset", cond.Offset))
			sb.WriteString(" OFFSET :offset")
		}
	}

	return sb.String(), args
}

// filterResidual runs the chains SQL could not take, then applies the
// paging SQL would have applied.
func (s *Store) filterResidual(ctx context.Context, rowMaps []map[string]any, cond *querysql.Conditional) []map[string]any {
	ev := querymem.NewEvaluator(s.resolver.Resolve(ctx, cond.Table))
	registerSynthetics(ev, s.now)

	var kept []map[string]any
	for _, m := range rowMaps {
		if ev.Match(m, cond.Residual) {
			kept = append(kept, m)
		}
	}

	if cond.Offset > 0 {
		if cond.Offset >= len(kept) {
			kept = nil
		} else {
			kept = kept[cond.Offset:]
		}
	}
	if cond.Limit > 0 && len(kept) > cond.Limit {
		kept = kept[:cond.Limit]
	}
	return kept
}

// flagsText folds the stored flags value into the text SQL would compare
// it as.
func flagsText(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case []byte:
		return string(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case int:
		return strconv.Itoa(n)
	}
	return ""
}

// registerSynthetics installs the in-memory twins of the SQL synthetic
// predicates, reading the derived columns buildSearchSQL selects on the
// residual path.
func registerSynthetics(ev *querymem.Evaluator, now func() time.Time) {
	counted := func(col string, wantZero bool) querymem.Predicate {
		return querymem.PredicateFunc(func(row map[string]any, f query.Filter) bool {
			if f.Op != query.OpPresence {
				return false
			}
			match := (rowInt(row[col]) == 0) == wantZero
			return match != f.Negated
		})
	}
	ev.Register("loose", counted("placement_refs", true))
	ev.Register("empty", counted("contained_count", true))
	ev.Register("invoiced", counted("invoice_count", false))
	ev.Register("pictured", counted("image_count", false))

	ev.Register("due", querymem.PredicateFunc(func(row map[string]any, f query.Filter) bool {
		if f.Op != query.OpPresence {
			return false
		}
		next := row["next_due"]
		due := next != nil && timeString(next) <= now().UTC().Format(timeLayout)
		return due != f.Negated
	}))

	ev.Register("lent", querymem.PredicateFunc(func(row map[string]any, f query.Filter) bool {
		if f.Op != query.OpPresence {
			return false
		}
		return (rowInt(row["flags"])&querysql.FlagLent != 0) != f.Negated
	}))

	ev.Register("state", querymem.PredicateFunc(func(row map[string]any, f query.Filter) bool {
		if f.Op != query.OpEquals || f.Value == nil {
			return false
		}
		if _, isNull := f.Value.(query.Null); isNull {
			return false
		}
		// Same raw comparison the SQL side compiles, quirk included:
		// a keyword only matches rows whose flags hold text.
		return (flagsText(row["flags"]) == query.Format(f.Value)) != f.Negated
	}))
}

// scanRowMap scans the current row into a column-keyed map. Byte slices
// collapse to strings so the evaluator sees one representation.
func scanRowMap(rows *sql.Rows) (map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	m := make(map[string]any, len(cols))
	for i, col := range cols {
		if b, ok := values[i].([]byte); ok {
			values[i] = string(b)
		}
		m[col] = values[i]
	}
	return m, nil
}

func itemFromRow(m map[string]any) Item {
	return Item{
		ID:          rowString(m["id"]),
		ShortID:     rowString(m["short_id"]),
		Name:        rowString(m["name"]),
		Description: rowString(m["description"]),
		Notes:       rowString(m["notes"]),
		Quantity:    rowInt(m["quantity"]),
		Price:       rowFloat(m["price"]),
		Favorite:    rowBool(m["is_favorite"]),
		Archived:    rowBool(m["is_archived"]),
		Deleted:     rowBool(m["is_deleted"]),
		Flags:       rowInt(m["flags"]),
		CreatedAt:   rowTime(m["created_at"]),
		UpdatedAt:   rowTime(m["updated_at"]),
	}
}

func rowString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return ""
}

func rowInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case bool:
		if n {
			return 1
		}
	}
	return 0
}

func rowFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func rowBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case int:
		return b != 0
	}
	return false
}

func rowTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// escapeLike escapes LIKE wildcards in a free-text term.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// timeString folds driver timestamp representations into the storage
// layout for lexicographic comparison.
func timeString(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(timeLayout)
	case string:
		return t
	case []byte:
		return string(t)
	}
	return ""
}
