package query

import (
	"strings"
	"time"
)

// CoerceBool folds boolean-ish literals into a Bool. Anything else is not
// comparable against a boolean column.
func CoerceBool(l Literal) (Literal, bool) {
	switch v := l.(type) {
	case Bool:
		return v, true
	case Int:
		switch v {
		case 0:
			return Bool(false), true
		case 1:
			return Bool(true), true
		}
	case String:
		switch strings.ToLower(string(v)) {
		case "true", "t", "yes", "y", "1":
			return Bool(true), true
		case "false", "f", "no", "n", "0":
			return Bool(false), true
		}
	}
	return nil, false
}

// dateLayouts are the accepted input forms for timestamp comparisons, in
// match order.
var dateLayouts = []string{
	"2006/01/02",
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
}

// NormalizeDate rewrites recognized date strings to the canonical
// YYYY-MM-DD form. Values in any other shape pass through untouched and
// compare however the backing store compares them.
func NormalizeDate(l Literal) Literal {
	s, ok := l.(String)
	if !ok {
		return l
	}
	raw := strings.TrimSpace(string(s))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return String(t.Format("2006-01-02"))
		}
	}
	return l
}
