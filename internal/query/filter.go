package query

import (
	"log/slog"
	"strings"
)

// Op identifies the comparison a filter atom performs. The zero value is
// OpPresence: a bare "?key" with no operator character.
type Op int

const (
	OpPresence Op = iota
	OpEquals
	OpContains
	OpGreater
	OpLess
)

// String returns the operator name used in diagnostics and explain output.
func (op Op) String() string {
	switch op {
	case OpPresence:
		return "presence"
	case OpEquals:
		return "equals"
	case OpContains:
		return "contains"
	case OpGreater:
		return "greater"
	case OpLess:
		return "less"
	default:
		return "unknown"
	}
}

// Filter is one atom of a chain: an optionally negated comparison of a key
// against a typed value.
type Filter struct {
	Negated bool
	Key     string
	Op      Op
	Value   Literal // nil for presence checks
}

// Chain is an AND-combined sequence of filter atoms. The overall filter
// predicate of a query is an OR of its chains.
type Chain []Filter

// Keys returns the atom keys in order. Used for diagnostics.
func (c Chain) Keys() []string {
	keys := make([]string, len(c))
	for i, f := range c {
		keys[i] = f.Key
	}
	return keys
}

// parseFilter parses one "?"-prefixed token into a Filter. Tokens with an
// empty key are unparsable and dropped with a diagnostic.
func parseFilter(tok string) (Filter, bool) {
	body := tok[1:]
	f := Filter{}
	if strings.HasPrefix(body, "!") {
		f.Negated = true
		body = body[1:]
	}

	idx := strings.IndexAny(body, "=[<>")
	if idx < 0 {
		if body == "" {
			slog.Debug("dropping unparsable filter", "token", tok)
			return Filter{}, false
		}
		f.Key = body
		f.Op = OpPresence
		return f, true
	}
	if idx == 0 {
		slog.Debug("dropping filter with empty key", "token", tok)
		return Filter{}, false
	}

	f.Key = body[:idx]
	raw := body[idx+1:]
	switch body[idx] {
	case '=':
		f.Op = OpEquals
	case '[':
		f.Op = OpContains
		// A "[value]"-style suffix keeps only the value.
		raw = strings.TrimSuffix(raw, "]")
	case '<':
		f.Op = OpLess
	case '>':
		f.Op = OpGreater
	}
	f.Value = Coerce(raw)
	return f, true
}
