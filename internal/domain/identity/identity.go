// Package identity canonicalizes team display names across feeds.
//
// Every join in the pipeline (standings, injuries, rosters, odds) keys off
// the canonical form produced here, never off raw display names. A name that
// fails to canonicalize the same way on two feeds silently misses its join
// and the affected features fall back to neutral defaults.
package identity

import (
	"regexp"
	"strings"
)

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9\s]`)
	multiSpace = regexp.MustCompile(`\s+`)
)

// aliases maps short-form names some feeds use to the full canonical form.
// Applied after lowercasing and punctuation stripping.
var aliases = map[string]string{
	"la clippers": "los angeles clippers",
	"la lakers":   "los angeles lakers",
	"ny knicks":   "new york knicks",
	"gs warriors": "golden state warriors",
}

// Key returns the canonical join key for a team display name: lowercase,
// punctuation stripped, whitespace collapsed, known aliases expanded.
func Key(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = nonAlnum.ReplaceAllString(n, "")
	n = multiSpace.ReplaceAllString(n, " ")
	n = strings.TrimSpace(n)
	for short, full := range aliases {
		if n == short {
			return full
		}
	}
	return n
}
