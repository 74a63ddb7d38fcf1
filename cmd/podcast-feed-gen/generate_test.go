package main

import (
	"testing"

	"podcast-feed-gen/internal/models"
)

func TestParseShowIDs(t *testing.T) {
	ids, err := parseShowIDs([]string{"7", "42"})
	if err != nil {
		t.Fatalf("parseShowIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != 7 || ids[1] != 42 {
		t.Fatalf("unexpected ids %v", ids)
	}

	if _, err := parseShowIDs([]string{"seven"}); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
}

func TestSelectShows(t *testing.T) {
	shows := []models.Show{
		{ID: 1, Title: "One"},
		{ID: 2, Title: "Two"},
		{ID: 3, Title: "Three"},
	}

	all := selectShows(shows, nil, nil)
	if len(all) != 3 {
		t.Fatalf("expected all shows, got %d", len(all))
	}

	subset := selectShows(shows, []int{2}, nil)
	if len(subset) != 1 || subset[0].ID != 2 {
		t.Fatalf("unexpected subset %v", subset)
	}

	excluded := selectShows(shows, nil, []int{1, 3})
	if len(excluded) != 1 || excluded[0].ID != 2 {
		t.Fatalf("unexpected exclusion result %v", excluded)
	}

	// Exclusion wins when an ID is both requested and excluded.
	none := selectShows(shows, []int{1}, []int{1})
	if len(none) != 0 {
		t.Fatalf("expected empty selection, got %v", none)
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if out := renderTable(nil, nil, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
