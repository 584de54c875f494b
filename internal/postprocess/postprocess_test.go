package postprocess_test

import (
	"testing"

	"github.com/zaminworks/zamintran/internal/postprocess"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "The khasra number is 142.", "The khasra number is 142."},
		{"label echo stripped", "Translation: The owner is Malik.", "The owner is Malik."},
		{"label echo with article", "The translation: Plot 12.", "Plot 12."},
		{"continuation label stripped", "TRANSLATION (maintain consistency with previous): Next part.", "Next part."},
		{"quotes unwrapped", `"The record of rights."`, "The record of rights."},
		{"smart quotes unwrapped", "“The heir is named.”", "The heir is named."},
		{"label then quotes", `Translation: "Plot 12."`, "Plot 12."},
		{"unbalanced quote kept", `"Partial quote`, `"Partial quote`},
		{"whitespace trimmed", "  spaced out  ", "spaced out"},
		{"colon inside text kept", "Note: boundaries follow the map.", "Note: boundaries follow the map."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := postprocess.Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
