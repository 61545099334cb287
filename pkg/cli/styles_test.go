package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer caption", 8, "a longe…"},
		{"日本語のテキスト", 7, "日本語…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Truncate(tt.in, tt.width)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
			if lipgloss.Width(got) > tt.width {
				t.Errorf("width %d exceeds %d", lipgloss.Width(got), tt.width)
			}
		})
	}
}

func TestRule(t *testing.T) {
	s := NewStyles(DefaultTheme)
	r := s.Rule("Slide 1", 40)
	if !strings.Contains(r, "Slide 1") {
		t.Errorf("Rule missing label: %q", r)
	}
	if w := lipgloss.Width(r); w != 40 {
		t.Errorf("Rule width = %d, want 40", w)
	}
}
