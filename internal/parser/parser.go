// Package parser implements the filename classifier described in spec.md
// §4.1: a pure, stateless pipeline that turns a scene-release-style
// filename into structured media metadata. Every step is total — it never
// panics and always returns a well-formed ParsedMedia.
package parser

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/JustinTDCT/organizer/internal/models"
	"github.com/spf13/cast"
)

// ParsedMedia is the output of Parse: the parser's best structured rendering
// of a filename, per spec.md §4.1.
type ParsedMedia struct {
	DetectedType models.DetectedType
	DetectedName string
	CleanedName  string
	Year         *int
	Season       *int
	Episode      *int
	EpisodeEnd   *int
	IsSeasonPack bool
	Confidence   int
}

// genericFolderNames is the closed set of folder names that never qualify
// as a usable fallback title (spec.md §4.1 step 7).
var genericFolderNames = map[string]bool{
	"downloads": true, "download": true, "media": true, "movies": true,
	"tv": true, "tv shows": true, "shows": true, "video": true, "videos": true,
	"incoming": true, "complete": true, "torrents": true, "new": true,
	"unsorted": true, "temp": true, "tmp": true,
}

// ──────────────────── Episode / special / season-pack patterns ────────────────────

// specialPatterns classify specials/OVAs/episode-0 content (step 2). They
// must run before the general episode patterns since "OVA" and "Special"
// filenames otherwise fall through to being treated as an ordinary title.
var specialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bspecial\b.*?(\d{1,3})?`),
	regexp.MustCompile(`(?i)\bova\b.*?(\d{1,3})?`),
	regexp.MustCompile(`(?i)\bepisode\s*0+(\d{1,3})?\b`),
	regexp.MustCompile(`(?i)\bs0+0e(\d{1,3})\b`),
}

// episodePatterns classify ordinary TV episodes (step 3); order matters,
// first match wins. Each entry captures (title, season, episode[, episodeEnd]).
var (
	epSxxExxExx   = regexp.MustCompile(`(?i)^(.*?)\bs(\d{1,2})e(\d{1,3})e(\d{1,3})\b`)
	epSxxEpxx     = regexp.MustCompile(`(?i)^(.*?)\bs(\d{1,2})\s*ep\s*(\d{1,3})\b`)
	epSxxSpaceExx = regexp.MustCompile(`(?i)^(.*?)\bs(\d{1,2})\s+e(\d{1,3})\b`)
	epSxxExx      = regexp.MustCompile(`(?i)^(.*?)\bs(\d{1,2})e(\d{1,3})\b`)
	epNxN         = regexp.MustCompile(`(?i)^(.*?)\b(\d{1,2})x(\d{1,3})\b`)
	epSeasonWord  = regexp.MustCompile(`(?i)^(.*?)\bseason\s*(\d{1,2})\s*episode\s*(\d{1,3})\b`)
)

// epSxxExxRangeEnd and epNxNRangeEnd recover the trailing range end of an
// "S04E01-03" or "1x01-03" filename. normalize's separator rewrite turns
// every '-' into a space before the patterns above ever run, so a range's
// end digit can't be captured inline anymore; these run instead against a
// dash-preserving rendering of the same name (normalizePreservingDashes)
// and are only trusted when their season/episode agree with what the main
// pattern already matched.
var (
	epSxxExxRangeEnd = regexp.MustCompile(`(?i)\bs(\d{1,2})e(\d{1,3})\s*-\s*(?:e)?(\d{1,3})\b`)
	epNxNRangeEnd    = regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{1,3})\s*-\s*(\d{1,3})\b`)
)

// seasonPackPatterns classify season-pack releases (step 4): a season is
// named but no specific episode follows.
var (
	spSeasonNum      = regexp.MustCompile(`(?i)^(.*?)\bseason\s*(\d{1,2})\b`)
	spCompleteSeason = regexp.MustCompile(`(?i)^(.*?)\bcomplete\s*season\s*(\d{1,2})?\b`)
	spSeasonWordOnly = regexp.MustCompile(`(?i)^(.*?)\bseason\s+(one|two|three|four|five|six|seven|eight|nine|ten)\b`)
	spBareSxx        = regexp.MustCompile(`(?i)^(.*?)\bs(\d{1,2})\b`)
)

var seasonWordNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// yearPatterns classify movie releases by a 4-digit year (step 5), in
// parenthesized, bracketed, or bare form.
var (
	yearParen   = regexp.MustCompile(`^(.*?)\((\d{4})\)`)
	yearBracket = regexp.MustCompile(`^(.*?)\[(\d{4})\]`)
	yearBare    = regexp.MustCompile(`^(.*?)\b(\d{4})\b`)
)

// ──────────────────── Noise tokens (step 6) ────────────────────

// noiseTokenPattern matches the closed set of resolution/source/codec/audio/
// language/release-group tags removed during name cleanup. Matched case
// insensitively at word boundaries.
var noiseTokenPattern = regexp.MustCompile(`(?i)\b(` + strings.Join([]string{
	// resolution
	`720p`, `1080p`, `2160p`, `4k`, `uhd`,
	// source
	`web-?dl`, `webrip`, `bluray`, `blu-ray`, `bdrip`, `brrip`, `hdtv`, `dvdrip`, `hdrip`, `webcap`,
	// codec
	`x264`, `x265`, `h264`, `h\.264`, `h265`, `h\.265`, `hevc`, `xvid`, `divx`, `10bit`, `8bit`,
	// audio
	`aac`, `ac3`, `dts`, `dts-hd`, `atmos`, `truehd`, `5\.1`, `7\.1`, `2\.0`, `ddp5\.1`, `ddp`, `flac`, `mp3`,
	// language
	`english`, `hindi`, `spanish`, `french`, `german`, `italian`, `japanese`, `korean`,
	`russian`, `portuguese`, `chinese`, `arabic`, `dual audio`, `multi`, `esub`, `msub`,
	// release groups / distribution labels
	`yify`, `yts`, `rarbg`, `amzn`, `nf`, `hulu`, `dsnp`, `hmax`, `ms`, `hdhub4u`, `galaxytv`, `ethd`,
}, "|") + `)\b`)

// bracketGroupPattern strips any remaining bracketed or parenthesized group
// that is not a year (step 6g) — e.g. "[1337x]" or "{Extended}".
var bracketGroupPattern = regexp.MustCompile(`[\[\(\{][^\]\)\}]*[\]\)\}]`)

var whitespacePattern = regexp.MustCompile(`\s+`)

var lowercaseMinorWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "is": true,
	"vs": true,
}

// Parse turns a filename and its immediate parent folder name into a
// ParsedMedia record. It never returns an error: every filename in the
// accepted extension set yields a well-formed record (spec.md §8).
func Parse(filename, parentFolderName string) ParsedMedia {
	normalized := normalize(filename)
	rangeSource := normalizePreservingDashes(filename)

	p := ParsedMedia{DetectedType: models.TypeUnknown}

	if tryDetectSpecial(normalized, &p) {
		finish(normalized, parentFolderName, &p)
		return p
	}
	if tryDetectEpisode(normalized, rangeSource, &p) {
		finish(normalized, parentFolderName, &p)
		return p
	}
	if tryDetectSeasonPack(normalized, &p) {
		finish(normalized, parentFolderName, &p)
		return p
	}
	if tryDetectYear(normalized, &p) {
		finish(normalized, parentFolderName, &p)
		return p
	}

	finish(normalized, parentFolderName, &p)
	return p
}

// normalize implements step 1: strip extension, replace separators with
// spaces, NFKD-decompose, collapse whitespace, trim.
func normalize(filename string) string {
	name := filename
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	name = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(name)
	name = norm.NFKD.String(name)
	name = removeCombiningMarks(name)
	name = whitespacePattern.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// normalizePreservingDashes mirrors normalize but leaves '-' intact, so the
// range-end patterns have a literal separator to anchor on after normalize's
// own rewrite erases it.
func normalizePreservingDashes(filename string) string {
	name := filename
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	name = strings.NewReplacer(".", " ", "_", " ").Replace(name)
	name = norm.NFKD.String(name)
	name = removeCombiningMarks(name)
	name = whitespacePattern.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

func removeCombiningMarks(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// tryDetectSpecial implements step 2.
func tryDetectSpecial(name string, p *ParsedMedia) bool {
	for _, re := range specialPatterns {
		m := re.FindStringSubmatchIndex(name)
		if m == nil {
			continue
		}
		p.DetectedType = models.TypeTVShow
		zero := 0
		p.Season = &zero
		title := strings.TrimSpace(name[:m[0]])
		p.DetectedName = title
		if ep := trailingEpisodeNumber(re, name, m); ep != nil {
			p.Episode = ep
		}
		p.Confidence += 30
		return true
	}
	return false
}

func trailingEpisodeNumber(re *regexp.Regexp, name string, m []int) *int {
	groups := re.FindStringSubmatch(name)
	for i := len(groups) - 1; i >= 1; i-- {
		if groups[i] != "" {
			n := cast.ToInt(groups[i])
			return &n
		}
	}
	return nil
}

// episodeMatcher pairs a pattern with the semantics of its capture groups.
// rangeRe, when set, is tried against the dash-preserving source to recover
// an episode-range end the main pattern can no longer capture inline.
type episodeMatcher struct {
	re      *regexp.Regexp
	season  int
	ep      int
	epEnd   int // 0 if not present inline
	rangeRe *regexp.Regexp
}

// tryDetectEpisode implements step 3: first matching regex wins.
func tryDetectEpisode(name, rangeSource string, p *ParsedMedia) bool {
	matchers := []episodeMatcher{
		{epSxxExxExx, 2, 3, 4, nil},
		{epSxxEpxx, 2, 3, 0, nil},
		{epSxxSpaceExx, 2, 3, 0, nil},
		{epSxxExx, 2, 3, 0, epSxxExxRangeEnd},
		{epSeasonWord, 2, 3, 0, nil},
		{epNxN, 2, 3, 0, epNxNRangeEnd},
	}
	for _, mm := range matchers {
		g := mm.re.FindStringSubmatch(name)
		if g == nil {
			continue
		}
		p.DetectedType = models.TypeTVShow
		p.DetectedName = strings.TrimSpace(g[1])
		season := cast.ToInt(g[mm.season])
		ep := cast.ToInt(g[mm.ep])
		p.Season = &season
		p.Episode = &ep
		if mm.epEnd != 0 && len(g) > mm.epEnd && g[mm.epEnd] != "" {
			epEnd := cast.ToInt(g[mm.epEnd])
			p.EpisodeEnd = &epEnd
		} else if mm.rangeRe != nil {
			p.EpisodeEnd = recoverEpisodeRangeEnd(mm.rangeRe, rangeSource, season, ep)
		}
		p.Confidence += 45
		return true
	}
	return false
}

// recoverEpisodeRangeEnd looks up the trailing range-end digit in
// rangeSource, trusting the match only when its season/episode agree with
// what the caller already extracted from the separator-normalized name.
func recoverEpisodeRangeEnd(re *regexp.Regexp, rangeSource string, season, ep int) *int {
	g := re.FindStringSubmatch(rangeSource)
	if g == nil || cast.ToInt(g[1]) != season || cast.ToInt(g[2]) != ep {
		return nil
	}
	end := cast.ToInt(g[3])
	return &end
}

// tryDetectSeasonPack implements step 4.
func tryDetectSeasonPack(name string, p *ParsedMedia) bool {
	if g := spCompleteSeason.FindStringSubmatch(name); g != nil {
		p.DetectedType = models.TypeTVShow
		p.IsSeasonPack = true
		p.DetectedName = strings.TrimSpace(g[1])
		if p.DetectedName == "" {
			// "Complete Season 01 - House MD": the title follows the marker.
			p.DetectedName = strings.TrimSpace(name[len(g[0]):])
		}
		season := 1
		if g[2] != "" {
			season = cast.ToInt(g[2])
		}
		p.Season = &season
		p.Confidence += 20
		return true
	}
	if g := spSeasonNum.FindStringSubmatch(name); g != nil {
		p.DetectedType = models.TypeTVShow
		p.IsSeasonPack = true
		p.DetectedName = strings.TrimSpace(g[1])
		season := cast.ToInt(g[2])
		p.Season = &season
		p.Confidence += 20
		return true
	}
	if g := spSeasonWordOnly.FindStringSubmatch(name); g != nil {
		p.DetectedType = models.TypeTVShow
		p.IsSeasonPack = true
		p.DetectedName = strings.TrimSpace(g[1])
		season := seasonWordNumbers[strings.ToLower(g[2])]
		p.Season = &season
		p.Confidence += 20
		return true
	}
	if g := spBareSxx.FindStringSubmatch(name); g != nil {
		p.DetectedType = models.TypeTVShow
		p.IsSeasonPack = true
		p.DetectedName = strings.TrimSpace(g[1])
		season := cast.ToInt(g[2])
		p.Season = &season
		p.Confidence += 20
		return true
	}
	return false
}

// tryDetectYear implements step 5.
func tryDetectYear(name string, p *ParsedMedia) bool {
	currentYear := time.Now().Year()
	for _, re := range []*regexp.Regexp{yearParen, yearBracket, yearBare} {
		g := re.FindStringSubmatch(name)
		if g == nil {
			continue
		}
		year := cast.ToInt(g[2])
		if year < 1900 || year > currentYear+1 {
			continue
		}
		p.DetectedType = models.TypeMovie
		p.DetectedName = strings.TrimSpace(g[1])
		p.Year = &year
		p.Confidence += 40
		return true
	}
	return false
}

// finish implements steps 6–8: name cleanup, fallback, confidence clamp.
func finish(normalized, parentFolderName string, p *ParsedMedia) {
	candidate := p.DetectedName
	if candidate == "" {
		candidate = normalized
	}
	p.CleanedName = cleanupName(candidate)

	if p.CleanedName == "" {
		folder := strings.TrimSpace(parentFolderName)
		if folder != "" && !genericFolderNames[strings.ToLower(folder)] {
			p.CleanedName = cleanupName(folder)
		} else {
			p.CleanedName = cleanupName(normalized)
			p.Confidence -= 10
		}
	}

	if p.Confidence < 0 {
		p.Confidence = 0
	}
	if p.Confidence > 100 {
		p.Confidence = 100
	}
}

// cleanupName implements step 6: strip noise tokens and non-year bracket
// groups, collapse whitespace, and title-case the result.
func cleanupName(s string) string {
	s = bracketGroupPattern.ReplaceAllString(s, " ")
	s = noiseTokenPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return titleCase(s)
}

// titleCase title-cases the string, keeping minor English words lowercase
// unless they start the title (spec.md §4.1 step 6). Letters after a
// word's first keep their case, so acronyms such as "MD" survive.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		lower := strings.ToLower(w)
		if i > 0 && lowercaseMinorWords[lower] {
			words[i] = lower
			continue
		}
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
