// Package duplicate implements the pairwise identity+similarity rule that
// assigns a candidate MediaItem to a previously-seen primary, or to none.
package duplicate

import (
	"math"
	"regexp"
	"strings"

	"github.com/JustinTDCT/organizer/internal/models"
	"github.com/google/uuid"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeName lowercases and strips non-alphanumeric characters.
func normalizeName(s string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "")
}

// namesMatch implements the identity name-equality rule: exact match after
// normalization, or one normalized form contains the other when both have
// length > 3.
func namesMatch(a, b string) bool {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if len(na) > 3 && len(nb) > 3 {
		return strings.Contains(na, nb) || strings.Contains(nb, na)
	}
	return false
}

// FindPrimary scans existing, in natural iteration order, and returns the id
// of the first item candidate matches under the pairwise rule (spec.md
// §4.4), or nil.
func FindPrimary(candidate *models.MediaItem, existing []*models.MediaItem) *uuid.UUID {
	for _, e := range existing {
		if matches(candidate, e) {
			id := e.ID
			return &id
		}
	}
	return nil
}

func matches(c, e *models.MediaItem) bool {
	if e.DetectedType != c.DetectedType {
		return false
	}
	if e.DuplicateOf != nil {
		return false
	}
	if !identity(c, e) {
		return false
	}
	return similarity(c, e)
}

func identity(c, e *models.MediaItem) bool {
	if sameCatalogID(c, e) {
		if c.DetectedType == models.TypeTVShow {
			if sameSeasonEpisode(c, e) {
				return true
			}
		} else {
			return true
		}
	}

	if !namesMatch(c.NameForMatching(), e.NameForMatching()) {
		return false
	}
	if c.DetectedType == models.TypeTVShow {
		return sameSeasonEpisode(c, e)
	}
	return sameYear(c, e)
}

func sameCatalogID(c, e *models.MediaItem) bool {
	return c.TMDBID != nil && e.TMDBID != nil && *c.TMDBID == *e.TMDBID
}

func sameSeasonEpisode(c, e *models.MediaItem) bool {
	return intEqual(c.Season, e.Season) && intEqual(c.Episode, e.Episode)
}

func sameYear(c, e *models.MediaItem) bool {
	return intEqual(c.Year, e.Year)
}

func intEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func similarity(c, e *models.MediaItem) bool {
	if editDistanceRatio(c.NameForMatching(), e.NameForMatching()) > 0.90 {
		return true
	}
	if c.DurationSeconds != nil && e.DurationSeconds != nil {
		diff := *c.DurationSeconds - *e.DurationSeconds
		if diff < 0 {
			diff = -diff
		}
		return diff <= 2
	}
	return sizeWithinFivePercent(c.FileSize, e.FileSize)
}

func sizeWithinFivePercent(a, b int64) bool {
	if a == 0 || b == 0 {
		return a == b
	}
	larger := math.Max(float64(a), float64(b))
	diff := math.Abs(float64(a) - float64(b))
	return diff/larger <= 0.05
}

// editDistanceRatio returns 1 - (levenshtein(a,b) / max(len(a),len(b))),
// case-insensitive, in [0,1].
func editDistanceRatio(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" && b == "" {
		return 1
	}
	dist := levenshtein(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(dist)/float64(maxLen)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
