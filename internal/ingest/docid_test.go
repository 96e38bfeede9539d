package ingest

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDocIDFromPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "forward slashes",
			path: "notes/daily/2024-01-01.md",
			want: "notes_daily_2024-01-01.md",
		},
		{
			name: "backslashes",
			path: `notes\daily\log.md`,
			want: "notes_daily_log.md",
		},
		{
			name: "spaces",
			path: "meeting notes.md",
			want: "meeting_notes.md",
		},
		{
			name: "mixed separators",
			path: `projects/alpha beta\notes.md`,
			want: "projects_alpha_beta_notes.md",
		},
		{
			name: "no separators",
			path: "README.md",
			want: "README.md",
		},
		{
			name: "empty",
			path: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DocIDFromPath(tt.path)
			if got != tt.want {
				t.Errorf("DocIDFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestNormalizeID_ShortIDsUnchanged(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{name: "empty", id: ""},
		{name: "short ascii", id: "notes_daily.md"},
		{name: "exactly at limit", id: strings.Repeat("a", MaxIDBytes)},
		{name: "multibyte under limit", id: strings.Repeat("é", MaxIDBytes/2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeID(tt.id); got != tt.id {
				t.Errorf("NormalizeID(%q) = %q, want unchanged", tt.id, got)
			}
		})
	}
}

func TestNormalizeID_Truncation(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{name: "long ascii", id: strings.Repeat("a", 300)},
		{name: "just over limit", id: strings.Repeat("b", MaxIDBytes+1)},
		{name: "long multibyte", id: strings.Repeat("日本語テキスト", 40)},
		{name: "mixed ascii and multibyte", id: "prefix_" + strings.Repeat("ü", 200) + "_suffix.md"},
		{name: "four byte runes", id: strings.Repeat("𝕏", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeID(tt.id)

			if len(got) > MaxIDBytes {
				t.Errorf("NormalizeID(%q) = %d bytes, want <= %d", tt.id, len(got), MaxIDBytes)
			}
			if !utf8.ValidString(got) {
				t.Errorf("NormalizeID(%q) produced invalid UTF-8: %q", tt.id, got)
			}
			if !strings.Contains(got, "...") {
				t.Errorf("NormalizeID(%q) = %q, want ellipsis marker", tt.id, got)
			}

			// Both ends of the original id survive truncation.
			runes := []rune(tt.id)
			if !strings.HasPrefix(tt.id, strings.SplitN(got, "...", 2)[0]) {
				t.Errorf("NormalizeID(%q) = %q, prefix is not a prefix of the original", tt.id, got)
			}
			tail := got[strings.LastIndex(got, "...")+3:]
			if tail != "" && !strings.HasSuffix(string(runes), tail) {
				t.Errorf("NormalizeID(%q) = %q, suffix is not a suffix of the original", tt.id, got)
			}
		})
	}
}

func TestNormalizeID_Deterministic(t *testing.T) {
	id := strings.Repeat("vault/notes/", 30) + "file.md"
	first := NormalizeID(id)
	second := NormalizeID(id)
	if first != second {
		t.Errorf("NormalizeID is not deterministic: %q vs %q", first, second)
	}
}
