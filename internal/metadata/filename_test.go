package metadata

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"forbidden characters deleted", `a/b\c*d?e:f"g<h>i|j`, "abcdefghij"},
		{"trimmed", "  name  ", "name"},
		{"empty", "", ""},
		{"only forbidden", `/\*?:"<>|`, ""},
		{"control characters deleted", "a\x00b\tc", "abc"},
		{"unicode kept", "Café – Déjà Vu", "Café – Déjà Vu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeNeverReturnsForbiddenOrLong(t *testing.T) {
	inputs := []string{
		strings.Repeat("a", 300),
		strings.Repeat("é", 200),
		strings.Repeat(`a/b\`, 100),
		"What? Why: \"Because\" <yes> | no *",
		strings.Repeat(" ", 400) + "x",
	}

	for _, in := range inputs {
		got := Sanitize(in)
		if strings.ContainsAny(got, forbiddenChars) {
			t.Errorf("Sanitize(%q) = %q contains a forbidden character", in, got)
		}
		if len(got) > MaxFilenameLength {
			t.Errorf("Sanitize(%q) has length %d, want <= %d", in, len(got), MaxFilenameLength)
		}
		if !utf8.ValidString(got) {
			t.Errorf("Sanitize(%q) split a rune: %q", in, got)
		}
	}
}

func TestSanitizeWithExt(t *testing.T) {
	got := SanitizeWithExt(strings.Repeat("a", 300), ".mp3")
	if len(got) != MaxFilenameLength {
		t.Errorf("length = %d, want %d", len(got), MaxFilenameLength)
	}
	if !strings.HasSuffix(got, ".mp3") {
		t.Errorf("extension lost: %q", got[len(got)-8:])
	}

	if got := SanitizeWithExt("Song: Part 1 ", ".mp3"); got != "Song Part 1.mp3" {
		t.Errorf("SanitizeWithExt = %q, want %q", got, "Song Part 1.mp3")
	}
}
