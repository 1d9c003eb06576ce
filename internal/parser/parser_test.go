package parser

import (
	"testing"

	"github.com/JustinTDCT/organizer/internal/models"
)

func intPtr(n int) *int { return &n }

func TestParseScenarios(t *testing.T) {
	cases := []struct {
		filename     string
		detectedType models.DetectedType
		season       *int
		episode      *int
		episodeEnd   *int
		year         *int
		cleanedName  string
		seasonPack   bool
	}{
		{
			filename:     "Breaking.Bad.S01E01.720p.BluRay.x264-DEMAND.mkv",
			detectedType: models.TypeTVShow,
			season:       intPtr(1), episode: intPtr(1),
			cleanedName: "Breaking Bad",
		},
		{
			filename:     "Fallout.S02E01.1080p.WEB-DL.Hindi.5.1-English.5.1.ESub.x264-HDHub4u.Ms.mkv",
			detectedType: models.TypeTVShow,
			season:       intPtr(2), episode: intPtr(1),
			cleanedName: "Fallout",
		},
		{
			filename:     "Game of Thrones - 1x01 - Winter Is Coming.mp4",
			detectedType: models.TypeTVShow,
			season:       intPtr(1), episode: intPtr(1),
			cleanedName: "Game of Thrones",
		},
		{
			filename:     "Friends.S01E01E02.720p.mkv",
			detectedType: models.TypeTVShow,
			season:       intPtr(1), episode: intPtr(1), episodeEnd: intPtr(2),
			cleanedName: "Friends",
		},
		{
			filename:     "Stranger.Things.S04E01-03.2160p.mkv",
			detectedType: models.TypeTVShow,
			season:       intPtr(4), episode: intPtr(1), episodeEnd: intPtr(3),
			cleanedName: "Stranger Things",
		},
		{
			filename:     "The.Matrix.(1999).1080p.BluRay.mkv",
			detectedType: models.TypeMovie,
			year:         intPtr(1999),
			cleanedName:  "The Matrix",
		},
		{
			filename:     "Inception.2010.2160p.UHD.BluRay.mkv",
			detectedType: models.TypeMovie,
			year:         intPtr(2010),
			cleanedName:  "Inception",
		},
		{
			filename:     "Complete Season 01 - House MD.mkv",
			detectedType: models.TypeTVShow,
			season:       intPtr(1),
			cleanedName:  "House MD",
			seasonPack:   true,
		},
		{
			filename:     "Naruto - Special - OVA.mkv",
			detectedType: models.TypeTVShow,
			season:       intPtr(0),
			cleanedName:  "Naruto",
		},
		{
			filename:     "random_video_file.mkv",
			detectedType: models.TypeUnknown,
		},
	}

	for _, c := range cases {
		t.Run(c.filename, func(t *testing.T) {
			got := Parse(c.filename, "")

			if got.DetectedType != c.detectedType {
				t.Errorf("DetectedType = %v, want %v", got.DetectedType, c.detectedType)
			}
			if !intPtrEqual(got.Season, c.season) {
				t.Errorf("Season = %v, want %v", derefInt(got.Season), derefInt(c.season))
			}
			if !intPtrEqual(got.Episode, c.episode) {
				t.Errorf("Episode = %v, want %v", derefInt(got.Episode), derefInt(c.episode))
			}
			if !intPtrEqual(got.EpisodeEnd, c.episodeEnd) {
				t.Errorf("EpisodeEnd = %v, want %v", derefInt(got.EpisodeEnd), derefInt(c.episodeEnd))
			}
			if !intPtrEqual(got.Year, c.year) {
				t.Errorf("Year = %v, want %v", derefInt(got.Year), derefInt(c.year))
			}
			if c.cleanedName != "" && got.CleanedName != c.cleanedName {
				t.Errorf("CleanedName = %q, want %q", got.CleanedName, c.cleanedName)
			}
			if got.IsSeasonPack != c.seasonPack {
				t.Errorf("IsSeasonPack = %v, want %v", got.IsSeasonPack, c.seasonPack)
			}
			if got.Confidence < 0 || got.Confidence > 100 {
				t.Errorf("Confidence out of range: %d", got.Confidence)
			}
		})
	}
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"", ".", "....mkv", "S01E01", "1999", "[Group] Show - 01.mkv",
		"a.b.c.d.e.f.g.mkv", "S99E99S98E98.mkv", "資料.mkv",
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Parse(%q) panicked: %v", in, r)
				}
			}()
			got := Parse(in, "")
			if got.Confidence < 0 || got.Confidence > 100 {
				t.Errorf("Parse(%q) confidence out of range: %d", in, got.Confidence)
			}
		}()
	}
}

func TestParseEpisodePrecedenceOverYear(t *testing.T) {
	// A valid S##E## pattern must win even when a year also appears.
	got := Parse("Fallout.2024.S02E01.1080p.mkv", "")
	if got.DetectedType != models.TypeTVShow {
		t.Errorf("DetectedType = %v, want tv_show (episode pattern must take precedence over year)", got.DetectedType)
	}
	if derefInt(got.Season) != 2 || derefInt(got.Episode) != 1 {
		t.Errorf("Season/Episode = %v/%v, want 2/1", derefInt(got.Season), derefInt(got.Episode))
	}
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func derefInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
