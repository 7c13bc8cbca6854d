package normalizer

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"whitespace only", "   \t\n  ", ""},
		{"punctuation only", "!!! ... ???", ""},
		{"plain lowercase", "hello world", "hello world"},
		{"uppercase folded", "Hello World", "hello world"},
		{"tags stripped", "Hello <b>World</b>", "hello world"},
		{"tag with attributes", `<a href="x.html">link</a> text`, "link text"},
		{"entity decoded then collapsed", "Tom &amp; Jerry", "tom jerry"},
		{"nbsp entity", "fish&nbsp;chips", "fish chips"},
		{"punctuation collapsed", "rock & roll, baby!", "rock roll baby "},
		{"consecutive separators", "a -- b , . c", "a b c"},
		{"tab is control not separator", "a b\t\tc", "a bc"},
		{"symbols collapsed", "1+1=2", "1 1 2"},
		{"accented letters preserved", "Café au Lait", "café au lait"},
		{"combining mark composed", "café", "café"},
		{"compatibility ligature", "ﬁsh", "fish"},
		{"control characters removed", "a\u0000b\u0007c", "abc"},
		{"cyrillic preserved", "Привет Мир", "привет мир"},
		{"internal padding kept", " fox ", " fox "},
		{"leading run collapsed", "  ...fox!  ", " fox "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Normalizing already-normalized output must not change it; the index and
// the query side both rely on the pipeline being stable under reapplication.
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Hello <b>World</b>",
		"Tom &amp; Jerry's “fancy” café!",
		" padded value ",
		"ﬁsh & chips",
		"Привет, Мир!",
	}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}
