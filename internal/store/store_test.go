package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSections() []Section {
	return []Section{
		{
			CourseCode: "MATH-UA 325",
			Key:        "crn:8807",
			Code:       "MATH-UA 325",
			Title:      "Analysis",
			CRN:        "8807",
			No:         "001",
			Schd:       "LEC",
			Meets:      "TR 12:30-1:45p",
			StartDate:  "2026-01-20",
			EndDate:    "2026-05-05",
		},
		{
			CourseCode: "BIOL-UA 123",
			Key:        "crn:8810",
			Code:       "BIOL-UA 123",
			Title:      "Genetics",
			CRN:        "8810",
			No:         "002",
			Schd:       "LAB",
			Meets:      "F 9:30-12:15p",
			StartDate:  "2026-01-20",
			EndDate:    "2026-05-05",
		},
	}
}

func TestSearchSectionsFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.ReplaceSections(ctx, "WSQ", "1264", sampleSections()); err != nil {
		t.Fatalf("ReplaceSections: %v", err)
	}

	tests := []struct {
		name   string
		filter SearchFilter
		want   int
	}{
		{"partial code", SearchFilter{Code: "MATH"}, 1},
		{"partial title", SearchFilter{Title: "gene"}, 1},
		{"exact crn", SearchFilter{CRN: "8807"}, 1},
		{"exact schd", SearchFilter{Schd: "LEC"}, 1},
		{"campus group", SearchFilter{CampusGroup: "WSQ"}, 2},
		{"no match", SearchFilter{CRN: "0000"}, 0},
		{"crn is exact not partial", SearchFilter{CRN: "880"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.SearchSections(ctx, tt.filter)
			if err != nil {
				t.Fatalf("SearchSections: %v", err)
			}
			if len(results) != tt.want {
				t.Errorf("got %d results, want %d", len(results), tt.want)
			}
		})
	}
}

func TestSearchJoinsCourseTitle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.ReplaceSections(ctx, "WSQ", "1264", sampleSections()); err != nil {
		t.Fatalf("ReplaceSections: %v", err)
	}

	results, err := s.SearchSections(ctx, SearchFilter{Code: "MATH"})
	if err != nil {
		t.Fatalf("SearchSections: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.CourseTitle != "Analysis" {
		t.Errorf("CourseTitle = %q, want Analysis", r.CourseTitle)
	}
	if r.Meets != "TR 12:30-1:45p" {
		t.Errorf("Meets = %q", r.Meets)
	}
	if r.SrcDB != "1264" || r.CampusGroup != "WSQ" {
		t.Errorf("srcdb/campus = %q/%q, want 1264/WSQ", r.SrcDB, r.CampusGroup)
	}
}

func TestReplaceSectionsClearsOldRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.ReplaceSections(ctx, "WSQ", "1264", sampleSections()); err != nil {
		t.Fatalf("first load: %v", err)
	}
	// Reload with a single section; the other WSQ rows must be gone.
	if err := s.ReplaceSections(ctx, "WSQ", "1264", sampleSections()[:1]); err != nil {
		t.Fatalf("second load: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalSections != 1 {
		t.Errorf("TotalSections = %d, want 1", stats.TotalSections)
	}
	if stats.CampusGroups["WSQ"] != 1 {
		t.Errorf("CampusGroups[WSQ] = %d, want 1", stats.CampusGroups["WSQ"])
	}
}

func TestReplaceSectionsLeavesOtherCampusesAlone(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.ReplaceSections(ctx, "WSQ", "1264", sampleSections()[:1]); err != nil {
		t.Fatalf("wsq load: %v", err)
	}
	if err := s.ReplaceSections(ctx, "BROOKLYN", "1264", sampleSections()[1:]); err != nil {
		t.Fatalf("brooklyn load: %v", err)
	}
	if err := s.ReplaceSections(ctx, "WSQ", "1264", nil); err != nil {
		t.Fatalf("wsq clear: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.CampusGroups["BROOKLYN"] != 1 {
		t.Errorf("CampusGroups[BROOKLYN] = %d, want 1", stats.CampusGroups["BROOKLYN"])
	}
	if stats.CampusGroups["WSQ"] != 0 {
		t.Errorf("CampusGroups[WSQ] = %d, want 0", stats.CampusGroups["WSQ"])
	}
}

func TestCourseDetailsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	missing, err := s.GetCourseDetails(ctx, "code:BIOL-UA 123", "crn:8807", "1264")
	if err != nil {
		t.Fatalf("GetCourseDetails: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for uncached details, got %+v", missing)
	}

	in := CourseDetails{
		GroupKey:      "code:BIOL-UA 123",
		CRNKey:        "crn:8807",
		SrcDB:         "1264",
		Description:   "Introductory genetics.",
		MeetingHTML:   `<div class="meet">TR 9:30am-10:45am<span class="meet-dates"> (1/20 to 5/5)</span></div>`,
		MeetPattern:   "TR 9:30am-10:45am",
		MeetStartDate: "1/20",
		MeetEndDate:   "5/5",
		AllSections:   `[{"crn":"8807"}]`,
		DetailsJSON:   `{"description":"Introductory genetics."}`,
	}
	if err := s.PutCourseDetails(ctx, in); err != nil {
		t.Fatalf("PutCourseDetails: %v", err)
	}

	out, err := s.GetCourseDetails(ctx, in.GroupKey, in.CRNKey, in.SrcDB)
	if err != nil {
		t.Fatalf("GetCourseDetails: %v", err)
	}
	if out == nil {
		t.Fatal("cached details not found")
	}
	if out.MeetPattern != in.MeetPattern || out.MeetStartDate != in.MeetStartDate {
		t.Errorf("got pattern %q dates %q-%q", out.MeetPattern, out.MeetStartDate, out.MeetEndDate)
	}
	if out.DetailsJSON != in.DetailsJSON {
		t.Errorf("DetailsJSON = %q", out.DetailsJSON)
	}

	// Replacing the same key must not error (INSERT OR REPLACE semantics).
	in.Description = "Updated."
	if err := s.PutCourseDetails(ctx, in); err != nil {
		t.Fatalf("replace: %v", err)
	}
	out, err = s.GetCourseDetails(ctx, in.GroupKey, in.CRNKey, in.SrcDB)
	if err != nil {
		t.Fatalf("GetCourseDetails: %v", err)
	}
	if out.Description != "Updated." {
		t.Errorf("Description = %q, want Updated.", out.Description)
	}
}

func TestLastUpdateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.LastUpdate(ctx)
	if err != nil {
		t.Fatalf("LastUpdate: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("fresh store LastUpdate = %v, want zero", got)
	}

	now := time.Now().Truncate(time.Second)
	if err := s.SetLastUpdate(ctx, now); err != nil {
		t.Fatalf("SetLastUpdate: %v", err)
	}
	got, err = s.LastUpdate(ctx)
	if err != nil {
		t.Fatalf("LastUpdate: %v", err)
	}
	if !got.Equal(now) {
		t.Errorf("LastUpdate = %v, want %v", got, now)
	}
}

func TestSplitCode(t *testing.T) {
	tests := []struct {
		in, subject, catalog string
	}{
		{"MATH-UA 325", "MATH-UA", "325"},
		{"ACA-UF 101", "ACA-UF", "101"},
		{"CSCI-SHU 11 A", "CSCI-SHU 11", "A"},
		{"NOSPACE", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		subject, catalog := splitCode(tt.in)
		if subject != tt.subject || catalog != tt.catalog {
			t.Errorf("splitCode(%q) = (%q, %q), want (%q, %q)",
				tt.in, subject, catalog, tt.subject, tt.catalog)
		}
	}
}
