package querysql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/packratdb/packrat/internal/profile"
	"github.com/packratdb/packrat/internal/query"
	"github.com/packratdb/packrat/internal/schema"
)

// Compiler compiles parsed queries against an introspected schema. One
// compiler serves every table; each Compile call is independent and safe
// for concurrent use.
type Compiler struct {
	resolver *schema.Resolver
	profiles profile.Set

	// Now supplies the reference time for time-dependent synthetic
	// predicates. Nil means time.Now.
	Now func() time.Time
}

// NewCompiler creates a Compiler over a schema resolver and table profiles.
func NewCompiler(resolver *schema.Resolver, profiles profile.Set) *Compiler {
	return &Compiler{resolver: resolver, profiles: profiles}
}

func (c *Compiler) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// binder allocates named parameters. The counter restarts at zero for
// every Compile call, so compiling the same query twice yields identical
// parameter names.
type binder struct {
	params map[string]query.Literal
	n      int
}

func newBinder() *binder {
	return &binder{params: make(map[string]query.Literal)}
}

// bind stores a literal and returns its placeholder: ":p0", ":p1", ...
func (b *binder) bind(l query.Literal) string {
	name := fmt.Sprintf("p%d", b.n)
	b.n++
	b.params[name] = l
	return ":" + name
}

// Compile produces a Conditional from a parsed query, a target table and
// alias, and the caller's default page size. It never fails: anything that
// cannot be pushed down lands in Residual instead.
func (c *Compiler) Compile(ctx context.Context, q *query.Query, table, alias string, defaultLimit int) *Conditional {
	cond := &Conditional{
		Table:   table,
		Alias:   alias,
		Params:  make(map[string]query.Literal),
		Touched: make(map[string]struct{}),
	}
	prof, _ := c.profiles.Lookup(table)

	c.applyDirectives(cond, q.Directives, prof, defaultLimit)

	if len(q.Chains) == 0 {
		return cond
	}

	cols := c.resolver.Resolve(ctx, table)
	b := newBinder()
	fragments := make([]string, 0, len(q.Chains))
	var applied []string
	touched := make(map[string]struct{})

	for _, chain := range q.Chains {
		frag, keys, ok := c.compileChain(b, cols, prof, cond.Qualifier(), touched, chain)
		if !ok {
			// One unconvertible chain poisons the whole filter: pushing
			// down only some disjuncts of an OR would silently drop
			// rows, so every chain goes residual and no SQL or
			// parameters survive.
			slog.Debug("filter chain not convertible, falling back to row evaluation",
				"table", table, "keys", chain.Keys())
			cond.Residual = q.Chains
			return cond
		}
		fragments = append(fragments, "("+frag+")")
		applied = append(applied, keys...)
	}

	cond.Where = []string{strings.Join(fragments, " OR ")}
	cond.Params = b.params
	cond.Touched = touched
	cond.AppliedKeys = applied
	return cond
}

// applyDirectives folds the directive sequence into paging, ordering, and
// mode state. Later directives of the same kind override earlier ones;
// unknown directives are ignored.
func (c *Compiler) applyDirectives(cond *Conditional, directives []query.Directive, prof profile.Table, defaultLimit int) {
	limit := defaultLimit
	explicit := false
	page := 0
	orderCol := ""
	random := false
	reverse := false

	for _, d := range directives {
		switch d.Key {
		case "showall":
			limit = 0
			explicit = false
		case "show":
			n, ok := directiveInt(d)
			if !ok || n <= 0 {
				slog.Debug("ignoring show directive without a positive count",
					"value", query.Format(d.Value))
				continue
			}
			limit = n
			explicit = true
		case "page":
			n, ok := directiveInt(d)
			if !ok || n < 1 {
				slog.Debug("ignoring page directive without a positive page",
					"value", query.Format(d.Value))
				continue
			}
			page = n
		case "bydate":
			if prof.DateColumn != "" {
				orderCol = prof.DateColumn
			}
		case "bydatem":
			if prof.ModifiedColumn != "" {
				orderCol = prof.ModifiedColumn
			}
		case "byrand":
			random = true
		case "orderrev":
			reverse = !reverse
		case "smart", "dumb":
			cond.Mode = d.Key
		default:
			slog.Debug("ignoring unknown directive", "key", d.Key)
		}
	}

	qual := cond.Qualifier()
	switch {
	case random:
		cond.OrderBy = []string{"RANDOM()"}
	case orderCol != "":
		// An explicit date ordering is always newest-first; orderrev
		// does not touch it.
		cond.OrderBy = []string{qual + "." + orderCol + " DESC"}
	case reverse && prof.OrderColumn != "":
		cond.OrderBy = []string{qual + "." + prof.OrderColumn + " DESC"}
	}

	cond.Limit = limit
	cond.LimitExplicit = explicit
	if page > 1 && limit > 0 {
		cond.Offset = (page - 1) * limit
	}
}

// directiveInt extracts an integer directive value.
func directiveInt(d query.Directive) (int, bool) {
	if !d.HasValue {
		return 0, false
	}
	n, ok := d.Value.(query.Int)
	if !ok {
		return 0, false
	}
	return int(n), true
}

// compileChain converts one chain into an AND expression. It fails as a
// whole if any atom fails.
func (c *Compiler) compileChain(b *binder, cols map[string]schema.Type, prof profile.Table, qual string, touched map[string]struct{}, chain query.Chain) (string, []string, bool) {
	parts := make([]string, 0, len(chain))
	keys := make([]string, 0, len(chain))
	for _, f := range chain {
		expr, ok := c.compileAtom(b, cols, prof, qual, touched, f)
		if !ok {
			return "", nil, false
		}
		parts = append(parts, expr)
		keys = append(keys, f.Key)
	}
	return strings.Join(parts, " AND "), keys, true
}

// compileAtom resolves one filter key and converts the atom. Resolution
// order: exact column, is_<key> boolean convention, table synthetic
// predicates, has_<column> convention.
func (c *Compiler) compileAtom(b *binder, cols map[string]schema.Type, prof profile.Table, qual string, touched map[string]struct{}, f query.Filter) (string, bool) {
	if typ, ok := cols[f.Key]; ok {
		return compileColumn(b, qual, f.Key, typ, touched, f)
	}

	if typ, ok := cols["is_"+f.Key]; ok && typ == schema.TypeBoolean {
		return compileColumn(b, qual, "is_"+f.Key, typ, touched, f)
	}

	if expr, ok := c.compileSynthetic(b, prof, qual, touched, f); ok {
		return expr, true
	}

	if col, found := strings.CutPrefix(f.Key, "has_"); found && f.Op == query.OpPresence {
		if typ, ok := cols[col]; ok {
			touched[col] = struct{}{}
			return presenceExpr(qual+"."+col, typ, f.Negated), true
		}
	}

	return "", false
}
