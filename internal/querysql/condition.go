package querysql

import (
	"github.com/packratdb/packrat/internal/query"
	"github.com/packratdb/packrat/internal/schema"
)

// compileColumn converts one atom against a real column. Returns false
// when the operator has no SQL meaning for the column's type category.
func compileColumn(b *binder, qual, col string, typ schema.Type, touched map[string]struct{}, f query.Filter) (string, bool) {
	ref := qual + "." + col

	switch f.Op {
	case query.OpPresence:
		if typ != schema.TypeBoolean {
			// Bare "?key" on a non-boolean column has no SQL meaning;
			// the has_<column> convention is resolved before this point.
			return "", false
		}
		touched[col] = struct{}{}
		// Polarity flips directly instead of wrapping in NOT.
		if f.Negated {
			return ref + " = FALSE", true
		}
		return ref + " = TRUE", true

	case query.OpEquals:
		touched[col] = struct{}{}
		if _, isNull := f.Value.(query.Null); isNull {
			if f.Negated {
				return ref + " IS NOT NULL", true
			}
			return ref + " IS NULL", true
		}
		value := f.Value
		switch typ {
		case schema.TypeBoolean:
			bv, ok := query.CoerceBool(value)
			if !ok {
				return "", false
			}
			value = bv
		case schema.TypeTimestamp:
			value = query.NormalizeDate(value)
		}
		if f.Negated {
			return ref + " <> " + b.bind(value), true
		}
		return ref + " = " + b.bind(value), true

	case query.OpGreater, query.OpLess:
		switch typ {
		case schema.TypeInteger, schema.TypeNumeric, schema.TypeTimestamp:
		default:
			return "", false
		}
		touched[col] = struct{}{}
		value := f.Value
		if typ == schema.TypeTimestamp {
			value = query.NormalizeDate(value)
		}
		op := " > "
		if f.Op == query.OpLess {
			op = " < "
		}
		expr := ref + op + b.bind(value)
		if f.Negated {
			return "NOT (" + expr + ")", true
		}
		return expr, true

	case query.OpContains:
		// Membership only means something against in-memory collections;
		// it is never pushed to SQL.
		return "", false

	default:
		return "", false
	}
}

// presenceExpr builds the has_<column> test: non-blank after trimming for
// text columns, non-null for everything else.
func presenceExpr(ref string, typ schema.Type, negated bool) string {
	if typ == schema.TypeText {
		if negated {
			return "TRIM(COALESCE(" + ref + ", '')) = ''"
		}
		return "TRIM(COALESCE(" + ref + ", '')) <> ''"
	}
	if negated {
		return ref + " IS NULL"
	}
	return ref + " IS NOT NULL"
}
