package prd

import "testing"

func TestContentAnalyzer_CountWords(t *testing.T) {
	analyzer := NewContentAnalyzer()

	tests := []struct {
		name     string
		markdown string
		want     int
	}{
		{"empty", "", 0},
		{"plain", "one two three", 3},
		{"heading", "# Checkout Revamp", 2},
		{"bullets", "- fast\n- cheap\n* good", 3},
		{"numbered", "1. first item\n2) second item", 4},
		{"emphasis", "**bold** and _italic_", 3},
		{"code fence", "before\n```\nfunc main() {}\n```\nafter", 2},
		{"link", "see [the docs](https://example.com) now", 4},
		{"table", "| Metric | Target |\n|---|---|\n| p95 | 200ms |", 4},
		{"tags stripped", "[PRD_SECTION:scope]in scope[/PRD_SECTION] Remaining words", 2},
		{"rule only", "---", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := analyzer.CountWords(tt.markdown); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.markdown, got, tt.want)
			}
		})
	}
}
