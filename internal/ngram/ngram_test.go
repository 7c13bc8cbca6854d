package ngram

import (
	"reflect"
	"testing"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"one rune", "a", nil},
		{"two runes", "ab", nil},
		{"exactly gram width", "abc", []string{"abc"}},
		{"sliding window", "abcde", []string{"abc", "bcd", "cde"}},
		{"padded word", " fox ", []string{" fo", "fox", "ox "}},
		{"spaces inside", "a b", []string{"a b"}},
		{"multibyte runes", "héllo", []string{"hél", "éll", "llo"}},
		{"cyrillic", "мир", []string{"мир"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Build(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// A string of L runes yields L-2 grams.
func TestBuildCount(t *testing.T) {
	input := "abcdefghij"
	grams := Build(input)
	if len(grams) != len([]rune(input))-Size+1 {
		t.Errorf("Build(%q) produced %d grams, want %d", input, len(grams), len([]rune(input))-Size+1)
	}
}

func TestPad(t *testing.T) {
	if got := Pad("ab"); got != " ab " {
		t.Errorf("Pad(\"ab\") = %q, want %q", got, " ab ")
	}
	// Padding guarantees at least one gram for any non-empty value.
	if grams := Build(Pad("x")); len(grams) == 0 {
		t.Error("Build(Pad(\"x\")) produced no grams")
	}
}
