package query

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Literal is a sealed interface over the typed values a query token can
// carry. Only Null, String, Int, Float, and Bool implement it. JSON arrays
// and objects collapse to String; the search language has no use for
// structured values.
type Literal interface {
	literal() // Sealed - only these types implement it
}

// Null represents an explicit "none"/"null" value.
// Using an explicit type keeps every Literal non-nil.
type Null struct{}

func (Null) literal() {}

// String is the terminal variant: every coercion ends here when nothing
// more specific matches.
type String string

func (String) literal() {}

// Int is always int64.
type Int int64

func (Int) literal() {}

// Float holds decimal values.
type Float float64

func (Float) literal() {}

// Bool holds true/false values.
type Bool bool

func (Bool) literal() {}

var (
	intPattern   = regexp.MustCompile(`^[+-]?[0-9]+$`)
	floatPattern = regexp.MustCompile(`^[+-]?([0-9]+\.[0-9]*|\.[0-9]+)$`)
)

// Coerce converts a raw token fragment into a Literal. Rules apply in
// order and every failure falls through to the next rule, so Coerce is
// total and never returns nil:
//
//  1. wrapped in matching single or double quotes: strip and return String
//  2. decodes as a single JSON value: the natural variant (arrays and
//     objects keep their raw text as String)
//  3. integer pattern: Int
//  4. decimal pattern: Float
//  5. case-insensitive true/false: Bool; none/null: Null
//  6. otherwise: the input unchanged as String
func Coerce(raw string) Literal {
	if len(raw) >= 2 {
		if (strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`)) ||
			(strings.HasPrefix(raw, `'`) && strings.HasSuffix(raw, `'`)) {
			return String(raw[1 : len(raw)-1])
		}
	}
	if lit, ok := decodeJSONLiteral(raw); ok {
		return lit
	}
	if intPattern.MatchString(raw) {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Int(n)
		}
	}
	if floatPattern.MatchString(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return Float(f)
		}
	}
	switch strings.ToLower(raw) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "none", "null":
		return Null{}
	}
	return String(raw)
}

// decodeJSONLiteral attempts to read raw as exactly one JSON value.
// Trailing content after the first value disqualifies the whole string.
func decodeJSONLiteral(raw string) (Literal, bool) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}

	switch val := v.(type) {
	case nil:
		return Null{}, true
	case bool:
		return Bool(val), true
	case string:
		return String(val), true
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return Int(n), true
		}
		if f, err := val.Float64(); err == nil {
			return Float(f), true
		}
		return nil, false
	case []any, map[string]any:
		// Structured values collapse to their raw text.
		return String(raw), true
	default:
		return nil, false
	}
}

// Value returns the native Go value of a Literal, suitable for binding as
// a SQL parameter or comparing against a scanned row value.
func Value(l Literal) any {
	switch v := l.(type) {
	case Null:
		return nil
	case String:
		return string(v)
	case Int:
		return int64(v)
	case Float:
		return float64(v)
	case Bool:
		return bool(v)
	default:
		return nil
	}
}

// Format renders a Literal for diagnostics and explain output.
func Format(l Literal) string {
	switch v := l.(type) {
	case nil:
		return ""
	case Null:
		return "none"
	case String:
		return string(v)
	case Int:
		return strconv.FormatInt(int64(v), 10)
	case Float:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(v))
	default:
		return ""
	}
}
