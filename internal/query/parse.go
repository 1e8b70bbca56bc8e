package query

import (
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Query is the parsed form of one search-box string. It is built once by
// Parse and never mutated afterward; compiled SQL and in-memory evaluation
// are both pure functions of a Query plus external schema state.
type Query struct {
	// Raw is the input string after Unicode NFC normalization.
	Raw string

	// Identifiers holds recognized UUIDs (canonical lowercase hyphenated
	// form) and short-ids (lowercase 8-hex), in encounter order.
	Identifiers []string

	// Terms holds the free-text words, in encounter order.
	Terms []string

	// Directives holds the parsed control tokens, in encounter order.
	Directives []Directive

	// Chains holds the OR-ed filter chains. Chains that parsed to zero
	// valid atoms are already dropped.
	Chains []Chain
}

// Parse builds a Query from a raw search-box string. It never fails: every
// token either lands in one of the Query fields or is dropped with a logged
// diagnostic.
func Parse(raw string) *Query {
	raw = norm.NFC.String(raw)
	q := &Query{Raw: raw}

	prefix, rest, hasFilters := strings.Cut(raw, "?")
	for _, tok := range strings.Fields(prefix) {
		if strings.HasPrefix(tok, `\`) && len(tok) > 1 {
			if d, ok := parseDirective(tok); ok {
				q.Directives = append(q.Directives, d)
			}
			continue
		}
		ids, words := classifyPrefixToken(tok)
		q.Identifiers = append(q.Identifiers, ids...)
		q.Terms = append(q.Terms, words...)
	}

	if hasFilters {
		q.Chains = parseChains("?" + rest)
	}
	return q
}

// parseChains splits the filter suffix (everything from the first "?"
// onward) on "|" into chains and parses each chain's tokens. Tokens not
// starting with "?" are stray text and ignored.
func parseChains(suffix string) []Chain {
	var chains []Chain
	for _, part := range strings.Split(suffix, "|") {
		var chain Chain
		for _, tok := range strings.Fields(part) {
			if !strings.HasPrefix(tok, "?") {
				slog.Debug("ignoring stray text in filter section", "token", tok)
				continue
			}
			if f, ok := parseFilter(tok); ok {
				chain = append(chain, f)
			}
		}
		if len(chain) > 0 {
			chains = append(chains, chain)
		}
	}
	return chains
}

// QueryText returns the space-joined free-text terms.
func (q *Query) QueryText() string {
	return strings.Join(q.Terms, " ")
}

// HasFilters reports whether any filter chain survived parsing.
func (q *Query) HasFilters() bool {
	return len(q.Chains) > 0
}
