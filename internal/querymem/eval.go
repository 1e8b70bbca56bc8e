// Package querymem evaluates filter chains against rows already fetched
// from the store. It is the fallback half of the query pipeline: chains
// the SQL compiler could not convert run here instead. Column semantics
// match the compiler where both sides can answer, and cover what SQL
// never takes: truthy presence on non-boolean columns, string-fallback
// ordering, and contains. Callers register computed predicates for keys
// that have no column at all.
package querymem

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/packratdb/packrat/internal/query"
	"github.com/packratdb/packrat/internal/schema"
)

// Predicate answers one filter atom against a fetched row.
type Predicate interface {
	Match(row map[string]any, f query.Filter) bool
}

// PredicateFunc adapts a plain function to Predicate.
type PredicateFunc func(row map[string]any, f query.Filter) bool

// Match implements Predicate.
func (fn PredicateFunc) Match(row map[string]any, f query.Filter) bool {
	return fn(row, f)
}

// Evaluator applies filter chains to rows in memory. Atoms the SQL
// compiler would also take follow its conversion rules, so such a chain
// answers the same way whichever side runs it.
type Evaluator struct {
	types map[string]schema.Type
	preds map[string]Predicate
}

// NewEvaluator creates an Evaluator over the table's resolved column
// types.
func NewEvaluator(types map[string]schema.Type) *Evaluator {
	return &Evaluator{types: types, preds: make(map[string]Predicate)}
}

// Register installs a computed predicate for a key. Registered keys are
// consulted before columns, so a host can override column semantics.
func (e *Evaluator) Register(key string, p Predicate) {
	e.preds[key] = p
}

// Match reports whether the row satisfies the chains. Chains combine
// with OR, filters within a chain with AND, and no chains at all
// accepts every row.
func (e *Evaluator) Match(row map[string]any, chains []query.Chain) bool {
	if len(chains) == 0 {
		return true
	}
	for _, chain := range chains {
		if e.matchChain(row, chain) {
			return true
		}
	}
	return false
}

func (e *Evaluator) matchChain(row map[string]any, chain query.Chain) bool {
	for _, f := range chain {
		if !e.matchFilter(row, f) {
			return false
		}
	}
	return true
}

// matchFilter resolves the key: registered predicates first, then the
// column paths the SQL compiler also takes (exact column, the is_<key>
// boolean convention, has_<column>).
func (e *Evaluator) matchFilter(row map[string]any, f query.Filter) bool {
	if p, ok := e.preds[f.Key]; ok {
		return p.Match(row, f)
	}

	if typ, ok := e.types[f.Key]; ok {
		return matchColumn(row[f.Key], typ, f)
	}

	if typ, ok := e.types["is_"+f.Key]; ok && typ == schema.TypeBoolean {
		return matchColumn(row["is_"+f.Key], typ, f)
	}

	if col, found := strings.CutPrefix(f.Key, "has_"); found && f.Op == query.OpPresence {
		if typ, ok := e.types[col]; ok {
			return presence(row[col], typ, f.Negated)
		}
	}

	slog.Debug("filter key resolves to nothing", "key", f.Key)
	return false
}

// matchColumn converts one atom against a column value. Equality follows
// the SQL compiler's per-type rules including three-valued logic: a
// missing value matches nothing, negated or not, unless the comparison
// is against the null literal itself. Presence and ordering go further
// than the compiler, which never pushes them down for these shapes:
// bare presence is a truthy test per column type, and ordering falls
// back to string comparison when numeric coercion fails.
func matchColumn(val any, typ schema.Type, f query.Filter) bool {
	if f.Op == query.OpEquals {
		if _, isNull := f.Value.(query.Null); isNull {
			return (val == nil) != f.Negated
		}
	}
	if val == nil {
		return false
	}

	switch f.Op {
	case query.OpPresence:
		return truthyValue(val, typ) != f.Negated

	case query.OpEquals:
		if typ == schema.TypeBoolean {
			bv, ok := query.CoerceBool(f.Value)
			if !ok {
				return false
			}
			return (truthy(val) == bool(bv.(query.Bool))) != f.Negated
		}
		value := f.Value
		if typ == schema.TypeTimestamp {
			value = query.NormalizeDate(value)
		}
		return equalValues(val, typ, value) != f.Negated

	case query.OpGreater, query.OpLess:
		value := f.Value
		if typ == schema.TypeTimestamp {
			value = query.NormalizeDate(value)
		}
		return compareValues(val, value, f.Op == query.OpLess) != f.Negated

	case query.OpContains:
		needle := strings.ToLower(query.Format(f.Value))
		return strings.Contains(strings.ToLower(asString(val)), needle) != f.Negated

	default:
		return false
	}
}

// presence answers the has_<column> test: non-blank for text columns,
// non-null for everything else. Unlike matchColumn, a missing value is
// a legitimate negative answer here.
func presence(val any, typ schema.Type, negated bool) bool {
	if typ == schema.TypeText {
		blank := val == nil || strings.TrimSpace(asString(val)) == ""
		if negated {
			return blank
		}
		return !blank
	}
	if negated {
		return val == nil
	}
	return val != nil
}

func equalValues(val any, typ schema.Type, l query.Literal) bool {
	switch typ {
	case schema.TypeInteger, schema.TypeNumeric:
		lf, ok := literalFloat(l)
		if !ok {
			return false
		}
		vf, ok := toFloat(val)
		if !ok {
			return false
		}
		return vf == lf
	}
	return asString(val) == query.Format(l)
}

// truthyValue answers a bare presence check per column type: booleans
// test truth, numbers test non-zero, text tests non-blank, everything
// else tests existence (nil was already rejected by the caller).
func truthyValue(val any, typ schema.Type) bool {
	switch typ {
	case schema.TypeBoolean:
		return truthy(val)
	case schema.TypeInteger, schema.TypeNumeric:
		n, ok := toFloat(val)
		return ok && n != 0
	case schema.TypeText:
		return strings.TrimSpace(asString(val)) != ""
	default:
		return true
	}
}

// compareValues orders a row value against a literal: numeric when both
// sides coerce, string comparison otherwise.
func compareValues(val any, l query.Literal, less bool) bool {
	if vf, ok := toFloat(val); ok {
		if lf, ok := literalFloat(l); ok {
			if less {
				return vf < lf
			}
			return vf > lf
		}
	}
	vs, ls := asString(val), query.Format(l)
	if less {
		return vs < ls
	}
	return vs > ls
}

// truthy folds driver-level boolean representations. SQLite hands back
// integers for boolean columns; Postgres hands back bools.
func truthy(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		b, ok := query.CoerceBool(query.String(v))
		return ok && bool(b.(query.Bool))
	case []byte:
		b, ok := query.CoerceBool(query.String(v))
		return ok && bool(b.(query.Bool))
	}
	return false
}

func asString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case time.Time:
		return v.UTC().Format("2006-01-02 15:04:05")
	case nil:
		return ""
	}
	return fmt.Sprint(val)
}

func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case []byte:
		return toFloat(string(v))
	}
	return 0, false
}

func literalFloat(l query.Literal) (float64, bool) {
	switch v := l.(type) {
	case query.Int:
		return float64(v), true
	case query.Float:
		return float64(v), true
	case query.Bool:
		if v {
			return 1, true
		}
		return 0, true
	case query.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
