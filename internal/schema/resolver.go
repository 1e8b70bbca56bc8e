// Package schema resolves table columns to coarse type categories.
//
// The search compiler does not care about exact database types, only about
// which comparison semantics a column supports. A Resolver introspects a
// table once, folds each native type string into a Type category, and
// caches the result for the life of the process (schemas are assumed stable
// at runtime).
package schema

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Type is the coarse category a column resolves to.
type Type string

const (
	TypeBoolean   Type = "boolean"
	TypeUUID      Type = "uuid"
	TypeTimestamp Type = "timestamp"
	TypeNumeric   Type = "numeric"
	TypeInteger   Type = "integer"
	TypeText      Type = "text"
	TypeTSVector  Type = "tsvector"
	TypeOther     Type = "other"
)

// Introspector is the one external capability the resolver consumes: given
// a table name, report its column names and native type strings.
type Introspector interface {
	Columns(ctx context.Context, table string) (map[string]string, error)
}

// Resolver caches resolved column maps per table. The cache is an owned
// field, not package state, so tests can build a fresh instance per case.
type Resolver struct {
	intro Introspector

	mu    sync.RWMutex
	cache map[string]map[string]Type
}

// NewResolver builds a Resolver over the given introspection capability.
func NewResolver(intro Introspector) *Resolver {
	return &Resolver{
		intro: intro,
		cache: make(map[string]map[string]Type),
	}
}

// Resolve returns the column-to-category map for a table. It never fails:
// introspection errors are logged and yield an empty map, which makes every
// filter key on that table unconvertible and forces the in-memory fallback.
// Failed lookups are not cached, so a recovered database is picked up on
// the next call.
func (r *Resolver) Resolve(ctx context.Context, table string) map[string]Type {
	r.mu.RLock()
	cached, ok := r.cache[table]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	native, err := r.intro.Columns(ctx, table)
	if err != nil {
		slog.Warn("schema introspection failed, filters will not push down",
			"table", table, "error", err)
		return map[string]Type{}
	}

	cols := make(map[string]Type, len(native))
	for name, nativeType := range native {
		cols[name] = Categorize(nativeType)
	}

	r.mu.Lock()
	r.cache[table] = cols
	r.mu.Unlock()
	return cols
}

// Categorize folds one native type string into a Type. Matching is by
// substring over the lowercased name, so dialect spellings like
// "timestamp with time zone", "character varying", or "bigserial" land in
// the right bucket without per-dialect tables.
func Categorize(native string) Type {
	t := strings.ToLower(strings.TrimSpace(native))
	switch {
	case strings.Contains(t, "bool"):
		return TypeBoolean
	case strings.Contains(t, "uuid"):
		return TypeUUID
	case strings.Contains(t, "tsvector"):
		return TypeTSVector
	case strings.Contains(t, "timestamp") || t == "date":
		return TypeTimestamp
	case strings.Contains(t, "int") || strings.Contains(t, "serial"):
		return TypeInteger
	case strings.Contains(t, "numeric"), strings.Contains(t, "decimal"),
		strings.Contains(t, "real"), strings.Contains(t, "double"),
		strings.Contains(t, "money"):
		return TypeNumeric
	case strings.Contains(t, "text"), strings.Contains(t, "char"),
		strings.Contains(t, "json"), strings.Contains(t, "enum"),
		strings.Contains(t, "bytea"):
		return TypeText
	default:
		return TypeOther
	}
}
