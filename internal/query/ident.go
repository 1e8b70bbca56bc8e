package query

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// hyphenSentinel stands in for a literal "--" while a slug body is being
// split, so escaped hyphens survive the word split. U+0000 cannot appear in
// a whitespace-delimited token.
const hyphenSentinel = "\x00"

var (
	uuidHyphenated = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	uuidBare       = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)
	shortIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}$`)
	slugTail       = regexp.MustCompile(`^(.*)-([0-9a-fA-F]{8})$`)
)

// classifyPrefixToken sorts one plain prefix token into identifiers and
// free-text words. Priority order:
//
//  1. canonical UUID, hyphenated or bare 32-hex
//  2. slug with a trailing "-" + 8-hex short-id
//  3. bare 8-hex short-id
//  4. free text, kept verbatim
//
// UUIDs normalize to the lowercase hyphenated form, short-ids to lowercase.
func classifyPrefixToken(tok string) (ids, words []string) {
	if uuidHyphenated.MatchString(tok) || uuidBare.MatchString(tok) {
		if u, err := uuid.Parse(tok); err == nil {
			return []string{u.String()}, nil
		}
		// Shape matched but the parse failed; treat as free text.
		return nil, []string{tok}
	}
	if m := slugTail.FindStringSubmatch(tok); m != nil {
		return []string{strings.ToLower(m[2])}, splitSlugBody(m[1])
	}
	if shortIDPattern.MatchString(tok) {
		return []string{strings.ToLower(tok)}, nil
	}
	return nil, []string{tok}
}

// splitSlugBody decomposes the part of a slug before the short-id. A double
// hyphen is one literal hyphen inside a word; a single hyphen is a word
// boundary.
func splitSlugBody(body string) []string {
	s := strings.ReplaceAll(body, "--", hyphenSentinel)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, hyphenSentinel, "-")
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	return words
}
