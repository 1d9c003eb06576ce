package duplicate

import (
	"testing"

	"github.com/JustinTDCT/organizer/internal/models"
	"github.com/google/uuid"
)

func intPtr(n int) *int { return &n }
func strPtr(s string) *string { return &s }

func newItem(id uuid.UUID, name string) *models.MediaItem {
	return &models.MediaItem{ID: id, CleanedName: name, DetectedType: models.TypeMovie}
}

func TestFindPrimaryNoMatch(t *testing.T) {
	candidate := newItem(uuid.New(), "Completely Unrelated Title")
	existing := []*models.MediaItem{newItem(uuid.New(), "Inception")}
	if got := FindPrimary(candidate, existing); got != nil {
		t.Errorf("expected no match, got %v", *got)
	}
}

func TestFindPrimarySameCatalogIDAndSeasonEpisode(t *testing.T) {
	primaryID := uuid.New()
	primary := &models.MediaItem{
		ID: primaryID, DetectedType: models.TypeTVShow, CleanedName: "Fallout",
		TMDBID: strPtr("tmdb-1"), Season: intPtr(2), Episode: intPtr(1),
		FileSize: 1_000_000_000,
	}
	candidate := &models.MediaItem{
		DetectedType: models.TypeTVShow, CleanedName: "Fallout",
		TMDBID: strPtr("tmdb-1"), Season: intPtr(2), Episode: intPtr(1),
		FileSize: 1_010_000_000,
	}
	got := FindPrimary(candidate, []*models.MediaItem{primary})
	if got == nil || *got != primaryID {
		t.Fatalf("expected match on %v, got %v", primaryID, got)
	}
}

func TestDifferentDurationsBeyondToleranceNotDuplicate(t *testing.T) {
	// Identity matches (same year, names overlap enough for namesMatch),
	// but low name similarity plus a >2s duration gap must still block it.
	primary := &models.MediaItem{
		ID: uuid.New(), DetectedType: models.TypeMovie, CleanedName: "Inception",
		Year: intPtr(2010), DurationSeconds: intPtr(8880),
	}
	candidate := &models.MediaItem{
		DetectedType: models.TypeMovie, CleanedName: "Inception Extended Very Long Alternate Cut",
		Year: intPtr(2010), DurationSeconds: intPtr(100),
	}
	got := FindPrimary(candidate, []*models.MediaItem{primary})
	if got != nil {
		t.Errorf("expected no duplicate when durations differ by more than 2s and names diverge, got %v", *got)
	}
}

func TestSizeSimilarityOnlyConsultedWhenDurationMissing(t *testing.T) {
	primaryID := uuid.New()
	primary := &models.MediaItem{
		ID: primaryID, DetectedType: models.TypeMovie, CleanedName: "Inception",
		Year: intPtr(2010), FileSize: 2_000_000_000,
	}
	candidate := &models.MediaItem{
		DetectedType: models.TypeMovie, CleanedName: "Inception Extended Bootleg Cut Release",
		Year: intPtr(2010), FileSize: 2_020_000_000,
	}
	got := FindPrimary(candidate, []*models.MediaItem{primary})
	if got == nil || *got != primaryID {
		t.Fatalf("expected size-based match when durations are both missing, got %v", got)
	}
}

func TestNameSimilarityAboveThresholdIsDuplicateRegardlessOfSize(t *testing.T) {
	primaryID := uuid.New()
	primary := &models.MediaItem{
		ID: primaryID, DetectedType: models.TypeMovie, CleanedName: "Inception Director's Cut Edition",
		Year: intPtr(2010), FileSize: 1_000_000_000,
	}
	candidate := &models.MediaItem{
		DetectedType: models.TypeMovie, CleanedName: "Inception Directors Cut Edition",
		Year: intPtr(2010), FileSize: 9_000_000_000,
	}
	got := FindPrimary(candidate, []*models.MediaItem{primary})
	if got == nil || *got != primaryID {
		t.Fatalf("expected name-similarity match despite size mismatch, got %v", got)
	}
}

func TestAlreadyMarkedDuplicateIsNotAPrimaryCandidate(t *testing.T) {
	dupOf := uuid.New()
	primary := &models.MediaItem{
		ID: uuid.New(), DetectedType: models.TypeMovie, CleanedName: "Inception",
		Year: intPtr(2010), FileSize: 1_000_000_000, DuplicateOf: &dupOf,
	}
	candidate := &models.MediaItem{
		DetectedType: models.TypeMovie, CleanedName: "Inception",
		Year: intPtr(2010), FileSize: 1_000_000_000,
	}
	if got := FindPrimary(candidate, []*models.MediaItem{primary}); got != nil {
		t.Errorf("expected an already-duplicate item to be skipped as a primary candidate, got %v", *got)
	}
}

func TestEditDistanceRatioBounds(t *testing.T) {
	if r := editDistanceRatio("Inception", "Inception"); r != 1 {
		t.Errorf("identical strings ratio = %v, want 1", r)
	}
	if r := editDistanceRatio("abc", "xyz"); r != 0 {
		t.Errorf("fully distinct equal-length strings ratio = %v, want 0", r)
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"", "abc", 3},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
