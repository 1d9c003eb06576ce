package scanner

import (
	"testing"

	"github.com/JustinTDCT/organizer/internal/models"
)

func TestApplyFolderTag(t *testing.T) {
	cases := []struct {
		tag    models.FolderType
		parsed models.DetectedType
		want   models.DetectedType
	}{
		{models.FolderMovies, models.TypeTVShow, models.TypeMovie},
		{models.FolderTV, models.TypeMovie, models.TypeTVShow},
		{models.FolderMixed, models.TypeTVShow, models.TypeTVShow},
		{"", models.TypeMovie, models.TypeMovie},
	}
	for _, c := range cases {
		if got := applyFolderTag(c.tag, c.parsed); got != c.want {
			t.Errorf("applyFolderTag(%v, %v) = %v, want %v", c.tag, c.parsed, got, c.want)
		}
	}
}

func TestCapConfidence(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{50, 50},
		{100, 100},
		{120, 100},
		{0, 0},
	}
	for _, c := range cases {
		if got := capConfidence(c.in); got != c.want {
			t.Errorf("capConfidence(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestWithinRoot(t *testing.T) {
	cases := []struct {
		root, path string
		want       bool
	}{
		{"/mnt/incoming", "/mnt/incoming/movie.mkv", true},
		{"/mnt/incoming", "/mnt/incoming/sub/movie.mkv", true},
		{"/mnt/incoming", "/mnt/other/movie.mkv", false},
		{"/mnt/incoming", "/mnt/incoming/../escape.mkv", false},
	}
	for _, c := range cases {
		if got := withinRoot(c.root, c.path); got != c.want {
			t.Errorf("withinRoot(%q, %q) = %v, want %v", c.root, c.path, got, c.want)
		}
	}
}
