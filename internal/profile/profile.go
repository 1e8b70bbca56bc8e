// Package profile describes how the search compiler treats each table:
// which columns back the date-ordering directives, the fallback ordering,
// the default page size, and which synthetic filter keys are enabled.
//
// Profiles ship with built-in defaults for the packrat schema and can be
// overridden or extended from CUE files.
package profile

import "sort"

// Table is the search profile for one table.
type Table struct {
	// Name is the table name as it appears in the database.
	Name string

	// Alias optionally prefixes column references in compiled SQL instead
	// of the table name.
	Alias string

	// DateColumn backs the \bydate directive.
	DateColumn string

	// ModifiedColumn backs the \bydatem directive.
	ModifiedColumn string

	// OrderColumn is the fallback ordering column, ascending unless
	// \orderrev flips it.
	OrderColumn string

	// PageSize is the default result limit when no \show directive is
	// given.
	PageSize int

	// Synthetics names the computed filter keys enabled for this table.
	// The compiler ignores names it has no implementation for.
	Synthetics []string
}

// Set holds the profiles keyed by table name.
type Set map[string]Table

// Lookup returns the profile for a table.
func (s Set) Lookup(name string) (Table, bool) {
	t, ok := s[name]
	return t, ok
}

// Names returns the profiled table names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults returns the built-in profiles for the packrat schema.
func Defaults() Set {
	return Set{
		"items": {
			Name:           "items",
			DateColumn:     "created_at",
			ModifiedColumn: "updated_at",
			OrderColumn:    "name",
			PageSize:       50,
			Synthetics: []string{
				"loose", "empty", "due", "invoiced", "pictured", "lent", "state",
			},
		},
		"boxes": {
			Name:           "boxes",
			DateColumn:     "created_at",
			ModifiedColumn: "updated_at",
			OrderColumn:    "label",
			PageSize:       50,
		},
	}
}
