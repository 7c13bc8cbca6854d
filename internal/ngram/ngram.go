// Package ngram slices normalized strings into the fixed-length grams used
// as the atomic indexing and search unit.
package ngram

// Size is the fixed gram width, in Unicode code points.
const Size = 3

// Pad wraps a raw value in single leading and trailing spaces so that, after
// normalization, values shorter than the gram width still contribute at
// least one gram.
func Pad(value string) string {
	return " " + value + " "
}

// Build produces the overlapping fixed-width grams of a normalized string
// by sliding a window one code point at a time, left to right. A string
// shorter than the gram width yields no grams.
func Build(normalized string) []string {
	runes := []rune(normalized)
	if len(runes) < Size {
		return nil
	}
	grams := make([]string, 0, len(runes)-Size+1)
	for i := 0; i+Size <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+Size]))
	}
	return grams
}
