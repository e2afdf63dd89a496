package prd

import "testing"

func TestDocument_IsTitleOnly(t *testing.T) {
	tests := []struct {
		name     string
		sections *Sections
		want     bool
	}{
		{"nil sections", nil, false},
		{"empty", NewSections(), false},
		{"title only", SectionsFromPairs("title", "# T"), true},
		{"other only", SectionsFromPairs("overview", "O"), false},
		{"title and more", SectionsFromPairs("title", "# T", "overview", "O"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{Sections: tt.sections}
			if got := doc.IsTitleOnly(); got != tt.want {
				t.Errorf("IsTitleOnly() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDocument_DerivedTitle(t *testing.T) {
	tests := []struct {
		name   string
		body   *Sections
		maxLen int
		want   string
	}{
		{"no title section", SectionsFromPairs("overview", "O"), 255, ""},
		{"heading marker stripped", SectionsFromPairs("title", "# Rating System"), 255, "Rating System"},
		{"multiple markers", SectionsFromPairs("title", "### Deep"), 255, "Deep"},
		{"first line only", SectionsFromPairs("title", "\n# Line one\nLine two"), 255, "Line one"},
		{"capped", SectionsFromPairs("title", "# abcdefghij"), 4, "abcd"},
		{"no cap", SectionsFromPairs("title", "Plain"), 0, "Plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{Sections: tt.body}
			if got := doc.DerivedTitle(tt.maxLen); got != tt.want {
				t.Errorf("DerivedTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusInReview, StatusApproved} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("archived").Valid() {
		t.Error("archived should not be valid")
	}
}

func TestListFilter_ApplyDefaults(t *testing.T) {
	f := ListFilter{Limit: 0, Offset: -3}
	f.ApplyDefaults()
	if f.Limit != 50 || f.Offset != 0 {
		t.Errorf("unexpected defaults: %+v", f)
	}
}
