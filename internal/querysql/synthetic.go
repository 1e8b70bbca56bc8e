package querysql

import (
	"slices"

	"github.com/packratdb/packrat/internal/profile"
	"github.com/packratdb/packrat/internal/query"
)

// Item flag bits, mirrored by the store schema.
const (
	FlagFragile = 1 << iota
	FlagLent
	FlagBroken
	FlagRetired
)

// syntheticFn compiles one computed filter key that has no backing column.
type syntheticFn func(c *Compiler, b *binder, qual string, touched map[string]struct{}, f query.Filter) (string, bool)

// synthetics holds the computed predicates per table. A profile's
// Synthetics list gates which of these are active.
var synthetics = map[string]map[string]syntheticFn{
	"items": {
		"loose":    syntheticLoose,
		"empty":    syntheticEmpty,
		"due":      syntheticDue,
		"invoiced": syntheticInvoiced,
		"pictured": syntheticPictured,
		"lent":     syntheticLent,
		"state":    syntheticState,
	},
}

func (c *Compiler) compileSynthetic(b *binder, prof profile.Table, qual string, touched map[string]struct{}, f query.Filter) (string, bool) {
	if !slices.Contains(prof.Synthetics, f.Key) {
		return "", false
	}
	table, ok := synthetics[prof.Name]
	if !ok {
		return "", false
	}
	fn, ok := table[f.Key]
	if !ok {
		return "", false
	}
	return fn(c, b, qual, touched, f)
}

// syntheticLoose matches items with no containment row in either
// direction: not placed anywhere, nothing placed in them.
func syntheticLoose(_ *Compiler, _ *binder, qual string, _ map[string]struct{}, f query.Filter) (string, bool) {
	if f.Op != query.OpPresence {
		return "", false
	}
	sub := "SELECT 1 FROM placements pl WHERE pl.item_id = " + qual + ".id OR pl.parent_id = " + qual + ".id"
	if f.Negated {
		return "EXISTS (" + sub + ")", true
	}
	return "NOT EXISTS (" + sub + ")", true
}

// syntheticEmpty matches items with no containment row pointing at them.
func syntheticEmpty(_ *Compiler, _ *binder, qual string, _ map[string]struct{}, f query.Filter) (string, bool) {
	if f.Op != query.OpPresence {
		return "", false
	}
	sub := "SELECT 1 FROM placements pl WHERE pl.parent_id = " + qual + ".id"
	if f.Negated {
		return "EXISTS (" + sub + ")", true
	}
	return "NOT EXISTS (" + sub + ")", true
}

// syntheticDue matches items with a reminder at or before the compile
// time.
func syntheticDue(c *Compiler, b *binder, qual string, _ map[string]struct{}, f query.Filter) (string, bool) {
	if f.Op != query.OpPresence {
		return "", false
	}
	now := query.String(c.now().UTC().Format("2006-01-02 15:04:05"))
	sub := "SELECT 1 FROM reminders r WHERE r.item_id = " + qual + ".id AND r.due_at <= " + b.bind(now)
	if f.Negated {
		return "NOT EXISTS (" + sub + ")", true
	}
	return "EXISTS (" + sub + ")", true
}

// syntheticInvoiced matches items with at least one linked invoice.
func syntheticInvoiced(_ *Compiler, _ *binder, qual string, _ map[string]struct{}, f query.Filter) (string, bool) {
	if f.Op != query.OpPresence {
		return "", false
	}
	sub := "SELECT 1 FROM invoices iv WHERE iv.item_id = " + qual + ".id"
	if f.Negated {
		return "NOT EXISTS (" + sub + ")", true
	}
	return "EXISTS (" + sub + ")", true
}

// syntheticPictured matches items with at least one linked image.
func syntheticPictured(_ *Compiler, _ *binder, qual string, _ map[string]struct{}, f query.Filter) (string, bool) {
	if f.Op != query.OpPresence {
		return "", false
	}
	sub := "SELECT 1 FROM images im WHERE im.item_id = " + qual + ".id"
	if f.Negated {
		return "NOT EXISTS (" + sub + ")", true
	}
	return "EXISTS (" + sub + ")", true
}

// syntheticLent tests the lent flag bit.
func syntheticLent(_ *Compiler, b *binder, qual string, touched map[string]struct{}, f query.Filter) (string, bool) {
	if f.Op != query.OpPresence {
		return "", false
	}
	touched["flags"] = struct{}{}
	p := b.bind(query.Int(FlagLent))
	if f.Negated {
		return "(" + qual + ".flags & " + p + ") = 0", true
	}
	return "(" + qual + ".flags & " + p + ") <> 0", true
}

// syntheticState compares the flags column against the given keyword.
//
// TODO: decide whether ?state should test flag bits the way lent does;
// comparing the bitmask column against the raw keyword only matches rows
// the v1 importer stored with textual states.
func syntheticState(_ *Compiler, b *binder, qual string, touched map[string]struct{}, f query.Filter) (string, bool) {
	if f.Op != query.OpEquals || f.Value == nil {
		return "", false
	}
	if _, isNull := f.Value.(query.Null); isNull {
		return "", false
	}
	touched["flags"] = struct{}{}
	p := b.bind(f.Value)
	if f.Negated {
		return qual + ".flags <> " + p, true
	}
	return qual + ".flags = " + p, true
}
