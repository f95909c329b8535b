package language_test

import (
	"testing"

	"parley/internal/language"
)

func TestEncodeDecodeIDRoundTrip(t *testing.T) {
	cases := []struct {
		lang   language.ID
		gender language.Gender
		packed uint32
	}{
		{language.English, language.Masculine, 0},
		{language.English, language.Feminine, 1},
		{language.German, language.Masculine, 4},
		{language.German, language.Feminine, 5},
		{language.Japanese, language.Masculine, 262},
	}
	for _, tc := range cases {
		if got := language.EncodeID(tc.lang, tc.gender); got != tc.packed {
			t.Fatalf("EncodeID(%d, %d) = %d, want %d", tc.lang, tc.gender, got, tc.packed)
		}
		lang, gender := language.DecodeID(tc.packed)
		if lang != tc.lang || gender != tc.gender {
			t.Fatalf("DecodeID(%d) = (%d, %d), want (%d, %d)", tc.packed, lang, gender, tc.lang, tc.gender)
		}
	}
}

func TestParseAndDisplay(t *testing.T) {
	id, ok := language.Parse("de")
	if !ok || id != language.German {
		t.Fatalf("Parse(de) = %d, %v", id, ok)
	}
	if _, ok := language.Parse("tlh"); ok {
		t.Fatal("expected unknown code to fail")
	}
	if got := language.German.Display(); got != "German" {
		t.Fatalf("Display = %q", got)
	}
	if got := language.ID(42).Display(); got != "language 42" {
		t.Fatalf("fallback display = %q", got)
	}
	if got := language.DescribeID(5); got != "German (feminine)" {
		t.Fatalf("DescribeID(5) = %q", got)
	}
}
