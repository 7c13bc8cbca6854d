// Package normalizer converts raw field content into the canonical token
// stream that grams are built from.
//
// The pipeline deliberately performs no transliteration of alphabetic
// scripts: original letters are preserved instead of guessing phonetic
// equivalents, trading recall for predictability.
package normalizer

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// tagRegex matches HTML/markup tags.
var tagRegex = regexp.MustCompile(`<[^>]*>`)

// separatorRegex matches maximal runs of Unicode punctuation, symbol, and
// separator characters.
var separatorRegex = regexp.MustCompile(`[\p{P}\p{S}\p{Z}]+`)

// strippedRegex matches Unicode control and mark (combining) characters,
// which are removed entirely rather than replaced with a space.
var strippedRegex = regexp.MustCompile(`[\p{C}\p{M}]`)

// Normalize strips markup and entities, case-folds, and collapses
// punctuation and whitespace into a canonical token stream.
//
// Steps, in order: strip tags, decode HTML entities, NFKC-normalize and
// lowercase, collapse every run of punctuation/symbols/separators into a
// single ASCII space, strip control and mark characters. Empty or
// whitespace-only input yields empty output.
func Normalize(raw string) string {
	value := tagRegex.ReplaceAllString(raw, "")
	value = html.UnescapeString(value)
	value = norm.NFKC.String(value)
	value = strings.ToLower(value)
	value = separatorRegex.ReplaceAllString(value, " ")
	value = strippedRegex.ReplaceAllString(value, "")
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return value
}
