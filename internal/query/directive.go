package query

import (
	"log/slog"
	"strings"
)

// Directive is a backslash-prefixed control token. It affects paging,
// ordering, or mode selection downstream; it never filters rows.
type Directive struct {
	Key      string // lowercased, never empty
	HasValue bool
	Value    Literal // set only when HasValue
}

// parseDirective parses a directive candidate (a token starting with "\"
// and longer than one character). Malformed candidates are dropped with a
// diagnostic; they never degrade to free text.
func parseDirective(tok string) (Directive, bool) {
	body := tok[1:]
	key, rawValue, hasValue := strings.Cut(body, "=")
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		slog.Debug("dropping malformed directive", "token", tok)
		return Directive{}, false
	}
	d := Directive{Key: key, HasValue: hasValue}
	if hasValue {
		d.Value = Coerce(rawValue)
	}
	return d, true
}
