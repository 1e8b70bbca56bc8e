// Package querysql compiles parsed search queries into parameterized SQL
// conditionals.
//
// The compiler pushes filter chains down to SQL only when every chain
// converts; a single unconvertible chain anywhere makes the whole filter
// residual, because dropping one disjunct of an OR would silently change
// what the query means. Callers must check Residual and run the in-memory
// evaluator over fetched rows when it is non-empty.
//
// Values never appear in SQL text. Every literal is bound through a named
// parameter; only column and table names from the trusted schema map and
// profile are rendered raw.
package querysql

import (
	"sort"

	"github.com/packratdb/packrat/internal/query"
)

// Conditional is the compiled form of one parsed query against one table.
// Consumers join Where with AND, join OrderBy with commas, apply
// Limit/Offset when set, and bind every parameter in Params.
type Conditional struct {
	Table string
	Alias string

	// Where holds zero or one OR-of-chains fragment. A slice so callers
	// can append their own fragments before joining with AND.
	Where []string

	// OrderBy entries are ready-to-use expressions like "items.name DESC"
	// or "RANDOM()".
	OrderBy []string

	// Limit is the row cap; zero means unlimited. LimitExplicit reports
	// whether a \show directive set it (as opposed to the caller default).
	Limit         int
	LimitExplicit bool

	// Offset is the row skip; zero means none.
	Offset int

	// Params maps parameter name (without the ":" prefix) to its value.
	Params map[string]query.Literal

	// Touched is the set of column names referenced by Where.
	Touched map[string]struct{}

	// AppliedKeys lists the filter keys that were compiled into Where, in
	// encounter order. Empty whenever Residual is non-empty.
	AppliedKeys []string

	// Residual holds the chains the consumer must evaluate in memory.
	// Either empty (full push-down) or every chain of the query.
	Residual []query.Chain

	// Mode is the opaque \smart / \dumb flag, empty when unset. Not
	// interpreted here.
	Mode string
}

// Qualifier returns the prefix for column references: the alias when set,
// the table name otherwise.
func (c *Conditional) Qualifier() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Table
}

// ParamNames returns the bound parameter names in sorted order.
func (c *Conditional) ParamNames() []string {
	names := make([]string, 0, len(c.Params))
	for name := range c.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FullPushdown reports whether every chain compiled to SQL.
func (c *Conditional) FullPushdown() bool {
	return len(c.Residual) == 0
}
