// Package query parses the packrat search-box language into an immutable
// Query value.
//
// One input string carries four kinds of content:
//
//	query       := prefix ( "?" filters )?
//	prefix      := token*                    ; space-separated
//	token       := directive | plain-term
//	directive   := "\" key ( "=" value )?
//	filters     := chain ( "|" chain )*
//	chain       := filter-atom+              ; AND within a chain
//	filter-atom := "?" "!"? key ( op value )?
//	op          := "=" | "[" | "<" | ">"
//
// Plain terms are further classified by the identifier recognizer: canonical
// UUIDs, bare 8-hex short-ids, and slugs with a trailing short-id become
// identifiers; everything else is free text. Chains joined by "|" are OR-ed
// together by downstream consumers; atoms inside a chain are AND-ed.
//
// Parsing is forgiving by construction. Tokens that cannot be classified
// degrade to free text or are dropped with a logged diagnostic; no input
// string makes Parse fail.
package query
