// Package pathplanner maps a parsed, enriched MediaItem onto its canonical
// destination path. It is pure: no I/O, no state beyond the Settings passed
// in by the caller.
package pathplanner

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/JustinTDCT/organizer/internal/models"
)

var (
	seasonFolderPattern = regexp.MustCompile(`^Season \d{2}$`)
	movieFolderPattern  = regexp.MustCompile(`^.+ \((\d{4}|Unknown)\)$`)
)

// Plan computes the canonical destination path for item, or returns ""
// when the corresponding destination root is unset or detectedType is
// neither movie nor tv_show.
func Plan(item *models.MediaItem, settings *models.Settings) string {
	switch item.DetectedType {
	case models.TypeMovie:
		if settings.MoviesRoot == "" {
			return ""
		}
		name := displayName(item)
		year := yearLabel(item.Year)
		folder := fmt.Sprintf("%s (%s)", name, year)
		filename := fmt.Sprintf("%s (%s).%s", name, year, item.Extension)
		return filepath.Join(settings.MoviesRoot, folder, filename)

	case models.TypeTVShow:
		if settings.TVRoot == "" {
			return ""
		}
		name := displayName(item)
		season := 1
		if item.Season != nil {
			season = *item.Season
		}
		episode := 1
		if item.Episode != nil {
			episode = *item.Episode
		}
		seasonFolder := fmt.Sprintf("Season %02d", season)
		episodeToken := fmt.Sprintf("S%02dE%02d", season, episode)
		if item.EpisodeEnd != nil {
			episodeToken += fmt.Sprintf("-E%02d", *item.EpisodeEnd)
		}
		filename := fmt.Sprintf("%s - %s.%s", name, episodeToken, item.Extension)
		return filepath.Join(settings.TVRoot, name, seasonFolder, filename)

	default:
		return ""
	}
}

// IsAlreadyOrganized reports whether item already sits at its canonical
// location: either its current full path is exactly the planned path, or
// it lies beneath the relevant destination root under an immediate parent
// folder that matches the canonical "Season ##" or "{name} ({year})"
// pattern (spec.md §9 flags this as deliberately conservative: a
// coincidental match under a foreign tree also counts).
func IsAlreadyOrganized(item *models.MediaItem, settings *models.Settings) bool {
	currentPath := filepath.Join(item.OriginalPath, item.OriginalFilename)
	if plan := Plan(item, settings); plan != "" && plan == currentPath {
		return true
	}

	parent := filepath.Base(item.OriginalPath)

	switch item.DetectedType {
	case models.TypeMovie:
		if settings.MoviesRoot == "" || !underRoot(item.OriginalPath, settings.MoviesRoot) {
			return false
		}
		return movieFolderPattern.MatchString(parent)

	case models.TypeTVShow:
		if settings.TVRoot == "" || !underRoot(item.OriginalPath, settings.TVRoot) {
			return false
		}
		return seasonFolderPattern.MatchString(parent)

	default:
		return false
	}
}

func underRoot(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func displayName(item *models.MediaItem) string {
	if name := item.NameForMatching(); name != "" {
		return name
	}
	return "Unknown"
}

func yearLabel(year *int) string {
	if year == nil {
		return "Unknown"
	}
	return fmt.Sprintf("%d", *year)
}
