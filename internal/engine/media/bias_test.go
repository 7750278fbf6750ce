package media

import "testing"

func TestCredibleMBFC(t *testing.T) {
	tests := []struct {
		name  string
		entry MBFCEntry
		want  bool
	}{
		{"high credibility", MBFCEntry{Credibility: "high credibility"}, true},
		{"medium credibility", MBFCEntry{Credibility: "medium credibility"}, true},
		{"low credibility factual", MBFCEntry{Credibility: "low credibility", Factual: "factual"}, true},
		{"low credibility mostly", MBFCEntry{Credibility: "low credibility", Factual: "mostly"}, true},
		{"low credibility mixed", MBFCEntry{Credibility: "low credibility", Factual: "mixed"}, true},
		{"low credibility low factual", MBFCEntry{Credibility: "low credibility", Factual: "low"}, false},
		{"empty", MBFCEntry{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := credibleMBFC(tt.entry); got != tt.want {
				t.Errorf("credibleMBFC(%+v) = %v, want %v", tt.entry, got, tt.want)
			}
		})
	}
}

func TestSearchAllSides(t *testing.T) {
	setupCatalog(t)

	results, err := SearchAllSides("jazeera", 5, 0)
	if err != nil {
		t.Fatalf("SearchAllSides: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Al Jazeera" {
		t.Errorf("got %v, want Al Jazeera", results)
	}

	none, err := SearchAllSides("fox", 5, 0)
	if err != nil {
		t.Fatalf("SearchAllSides: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no results, got %v", none)
	}
}

func TestSearchMBFCFiltersLowCredibility(t *testing.T) {
	setupCatalog(t)

	// Daily Mail is in the fixture but fails the credibility filter.
	results, err := SearchMBFC("daily mail", 5, 0)
	if err != nil {
		t.Fatalf("SearchMBFC: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("low credibility entry leaked: %v", results)
	}

	results, err = SearchMBFC("democracy", 5, 0)
	if err != nil {
		t.Fatalf("SearchMBFC: %v", err)
	}
	if len(results) != 1 || results[0].Credibility != "high credibility" {
		t.Errorf("got %v, want Democracy Now!", results)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name          string
		limit, offset int
		want          []int
	}{
		{"first page", 2, 0, []int{1, 2}},
		{"second page", 2, 2, []int{3, 4}},
		{"partial tail", 3, 4, []int{5}},
		{"past the end", 2, 10, []int{}},
		{"no limit", 0, 1, []int{2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paginate(items, tt.limit, tt.offset)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
