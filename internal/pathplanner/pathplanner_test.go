package pathplanner

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/JustinTDCT/organizer/internal/models"
)

func intPtr(n int) *int { return &n }

func TestPlanMovieLayout(t *testing.T) {
	settings := &models.Settings{MoviesRoot: "/movies"}
	item := &models.MediaItem{
		DetectedType: models.TypeMovie,
		CleanedName:  "Inception",
		Year:         intPtr(2010),
		Extension:    "mkv",
	}
	got := Plan(item, settings)
	want := filepath.Join("/movies", "Inception (2010)", "Inception (2010).mkv")
	if got != want {
		t.Errorf("Plan = %q, want %q", got, want)
	}
}

func TestPlanMovieUnknownYear(t *testing.T) {
	settings := &models.Settings{MoviesRoot: "/movies"}
	item := &models.MediaItem{
		DetectedType: models.TypeMovie,
		CleanedName:  "Mystery Film",
		Extension:    "mp4",
	}
	got := Plan(item, settings)
	want := filepath.Join("/movies", "Mystery Film (Unknown)", "Mystery Film (Unknown).mp4")
	if got != want {
		t.Errorf("Plan = %q, want %q", got, want)
	}
}

func TestPlanTVShowLayout(t *testing.T) {
	settings := &models.Settings{TVRoot: "/tv"}
	item := &models.MediaItem{
		DetectedType: models.TypeTVShow,
		CleanedName:  "Fallout",
		Season:       intPtr(2),
		Episode:      intPtr(1),
		Extension:    "mkv",
	}
	got := Plan(item, settings)
	want := filepath.Join("/tv", "Fallout", "Season 02", "Fallout - S02E01.mkv")
	if got != want {
		t.Errorf("Plan = %q, want %q", got, want)
	}
}

func TestPlanTVShowMultiEpisode(t *testing.T) {
	settings := &models.Settings{TVRoot: "/tv"}
	item := &models.MediaItem{
		DetectedType: models.TypeTVShow,
		CleanedName:  "Friends",
		Season:       intPtr(1),
		Episode:      intPtr(1),
		EpisodeEnd:   intPtr(2),
		Extension:    "mkv",
	}
	got := Plan(item, settings)
	want := filepath.Join("/tv", "Friends", "Season 01", "Friends - S01E01-E02.mkv")
	if got != want {
		t.Errorf("Plan = %q, want %q", got, want)
	}
}

func TestPlanMissingRootReturnsEmpty(t *testing.T) {
	settings := &models.Settings{}
	movie := &models.MediaItem{DetectedType: models.TypeMovie, CleanedName: "X", Extension: "mkv"}
	if got := Plan(movie, settings); got != "" {
		t.Errorf("Plan with no movies root = %q, want empty", got)
	}
	show := &models.MediaItem{DetectedType: models.TypeTVShow, CleanedName: "X", Extension: "mkv"}
	if got := Plan(show, settings); got != "" {
		t.Errorf("Plan with no tv root = %q, want empty", got)
	}
}

func TestIsAlreadyOrganizedExactPath(t *testing.T) {
	settings := &models.Settings{MoviesRoot: "/movies"}
	item := &models.MediaItem{
		DetectedType:     models.TypeMovie,
		CleanedName:      "Inception",
		Year:             intPtr(2010),
		Extension:        "mkv",
		OriginalPath:     filepath.Join("/movies", "Inception (2010)"),
		OriginalFilename: "Inception (2010).mkv",
	}
	if !IsAlreadyOrganized(item, settings) {
		t.Error("expected item at its exact planned path to be already organized")
	}
}

func TestIsAlreadyOrganizedConservativePattern(t *testing.T) {
	// spec.md §9: a coincidental canonical-looking parent folder under the
	// destination root counts as organized even if the filename differs.
	settings := &models.Settings{TVRoot: "/tv"}
	item := &models.MediaItem{
		DetectedType:     models.TypeTVShow,
		CleanedName:      "Fallout",
		Season:           intPtr(2),
		Episode:          intPtr(1),
		Extension:        "mkv",
		OriginalPath:     filepath.Join("/tv", "Fallout", "Season 02"),
		OriginalFilename: "some-other-release-name.mkv",
	}
	if !IsAlreadyOrganized(item, settings) {
		t.Error("expected conservative canonical-parent match to count as organized")
	}
}

func TestIsAlreadyOrganizedFalseOutsideRoot(t *testing.T) {
	settings := &models.Settings{MoviesRoot: "/movies"}
	item := &models.MediaItem{
		DetectedType:     models.TypeMovie,
		CleanedName:      "Inception",
		Year:             intPtr(2010),
		Extension:        "mkv",
		OriginalPath:     "/downloads/Inception (2010)",
		OriginalFilename: "Inception (2010).mkv",
	}
	if IsAlreadyOrganized(item, settings) {
		t.Error("expected item outside destination root to not be organized")
	}
}

func TestPlanMovieFormInvariant(t *testing.T) {
	settings := &models.Settings{MoviesRoot: "/movies"}
	for _, year := range []*int{intPtr(1999), nil} {
		item := &models.MediaItem{DetectedType: models.TypeMovie, CleanedName: "Title", Year: year, Extension: "mkv"}
		got := Plan(item, settings)
		label := "Unknown"
		if year != nil {
			label = fmt.Sprintf("%d", *year)
		}
		want := filepath.Join("/movies", fmt.Sprintf("Title (%s)", label), fmt.Sprintf("Title (%s).mkv", label))
		if got != want {
			t.Errorf("Plan = %q, want %q", got, want)
		}
	}
}
