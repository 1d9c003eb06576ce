// Package scanner implements the scan engine (spec.md §4.2): concurrent
// traversal of configured source trees, incremental reconciliation against
// the MediaItem store, and per-file progress reporting.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/JustinTDCT/organizer/internal/catalog"
	"github.com/JustinTDCT/organizer/internal/duplicate"
	"github.com/JustinTDCT/organizer/internal/models"
	"github.com/JustinTDCT/organizer/internal/parser"
	"github.com/JustinTDCT/organizer/internal/probe"
	"github.com/JustinTDCT/organizer/internal/repository"
)

// SupportedExtensions is the closed set of media extensions a scan
// considers (spec.md §6), lowercase without a leading dot.
var SupportedExtensions = map[string]bool{
	"mkv": true, "mp4": true, "avi": true, "mov": true, "wmv": true,
	"flv": true, "webm": true, "m4v": true, "ts": true, "m2ts": true,
}

const workerCount = 4

// ProgressFunc is invoked after each processed file with the running
// counters for the enclosing ScanJob.
type ProgressFunc func(processedFiles, totalFiles, newItems, errorsCount int, currentFolder string)

// Result summarizes a completed scan.
type Result struct {
	TotalFiles     int
	ProcessedFiles int
	NewItems       int
	ErrorsCount    int
}

// Scanner drives reconciliation of the configured source trees into the
// MediaItem table.
type Scanner struct {
	items       *repository.MediaItemRepository
	catalog     *catalog.Client
	ffprobePath string
}

func New(items *repository.MediaItemRepository, catalogClient *catalog.Client, ffprobePath string) *Scanner {
	return &Scanner{items: items, catalog: catalogClient, ffprobePath: ffprobePath}
}

// fileEntry is one eligible file discovered during traversal.
type fileEntry struct {
	seq          int
	root         models.SourceFolder
	fullPath     string
	parentFolder string
	filename     string
}

// Scan runs the two-pass algorithm described in spec.md §4.2 against
// settings.SourceFolders, invoking progressFn after every processed file.
func (s *Scanner) Scan(ctx context.Context, settings *models.Settings, progressFn ProgressFunc) (*Result, error) {
	if len(settings.SourceFolders) == 0 {
		return nil, fmt.Errorf("scanner: no source folders configured")
	}

	entries, countErrors := s.enumerate(settings.SourceFolders)
	result := &Result{TotalFiles: len(entries), ErrorsCount: countErrors}

	type outcome struct {
		entry     fileEntry
		added     bool
		failed    bool
		currentAt string
	}

	jobs := make(chan fileEntry)
	results := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				added, failed := s.processFile(entry, settings)
				results <- outcome{entry: entry, added: added, failed: failed, currentAt: entry.parentFolder}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for _, e := range entries {
			select {
			case jobs <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Reorder buffer: workers complete out of order, but spec.md §5
	// requires progress counters to advance in deterministic traversal
	// order, so we only commit a completion once every earlier sequence
	// number has already been committed.
	pending := make(map[int]outcome)
	nextSeq := 0
	for o := range results {
		pending[o.entry.seq] = o
		for {
			next, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++

			result.ProcessedFiles++
			if next.added {
				result.NewItems++
			}
			if next.failed {
				result.ErrorsCount++
			}
			if progressFn != nil {
				progressFn(result.ProcessedFiles, result.TotalFiles, result.NewItems, result.ErrorsCount, next.currentAt)
			}
		}
	}

	return result, nil
}

// enumerate performs the first pass (count) and returns the ordered file
// list consumed by the second pass, tagging each entry with its sequence
// number so progress counters are committed in traversal order despite
// concurrent processing. The store writes themselves happen inside the
// workers, in completion order, which is not deterministic.
func (s *Scanner) enumerate(roots []models.SourceFolder) ([]fileEntry, int) {
	var entries []fileEntry
	errCount := 0
	seq := 0

	for _, root := range roots {
		normalizedRoot, err := filepath.Abs(root.Path)
		if err != nil {
			errCount++
			continue
		}

		walkErr := filepath.WalkDir(normalizedRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				errCount++
				return nil
			}
			if path == normalizedRoot {
				return nil
			}

			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			if d.IsDir() {
				return nil
			}

			if !withinRoot(normalizedRoot, path) {
				errCount++
				return nil
			}

			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
			if !SupportedExtensions[ext] {
				return nil
			}

			entries = append(entries, fileEntry{
				seq:          seq,
				root:         root,
				fullPath:     path,
				parentFolder: filepath.Dir(path),
				filename:     base,
			})
			seq++
			return nil
		})
		if walkErr != nil {
			errCount++
		}
	}

	return entries, errCount
}

func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// processFile implements the second-pass per-file pipeline (spec.md §4.2
// step 2). It returns whether a new item was added and whether the file
// counted as an error.
func (s *Scanner) processFile(entry fileEntry, settings *models.Settings) (added bool, failed bool) {
	info, err := os.Stat(entry.fullPath)
	if err != nil {
		log.Printf("scanner: stat failed for %s: %v", entry.fullPath, err)
		return false, true
	}
	size := info.Size()

	existing, err := s.items.GetByPath(entry.parentFolder, entry.filename)
	if err != nil {
		log.Printf("scanner: lookup failed for %s: %v", entry.fullPath, err)
		return false, true
	}

	if existing != nil && existing.FileSize == size {
		return false, false
	}

	if existing != nil && existing.ManualOverride {
		if err := s.items.UpdateFileSizeOnly(existing.ID, size); err != nil {
			log.Printf("scanner: update file size failed for %s: %v", entry.fullPath, err)
			return false, true
		}
		return false, false
	}

	parsed := parser.Parse(entry.filename, filepath.Base(entry.parentFolder))
	detectedType := applyFolderTag(entry.root.Type, parsed.DetectedType)

	item := &models.MediaItem{
		OriginalFilename: entry.filename,
		OriginalPath:     entry.parentFolder,
		FileSize:         size,
		Extension:        strings.ToLower(strings.TrimPrefix(filepath.Ext(entry.filename), ".")),
		DetectedType:     detectedType,
		DetectedName:     parsed.DetectedName,
		CleanedName:      parsed.CleanedName,
		Year:             parsed.Year,
		Season:           parsed.Season,
		Episode:          parsed.Episode,
		EpisodeEnd:       parsed.EpisodeEnd,
		IsSeasonPack:     parsed.IsSeasonPack,
		Confidence:       parsed.Confidence,
		Status:           models.StatusPending,
	}

	s.enrich(item)
	item.DurationSeconds = probe.DurationSeconds(s.ffprobePath, entry.fullPath)

	if primaries, err := s.items.ListPrimariesByType(item.DetectedType); err == nil {
		item.DuplicateOf = duplicate.FindPrimary(item, primaries)
	}

	if existing == nil {
		if err := s.items.Insert(item); err != nil {
			log.Printf("scanner: insert failed for %s: %v", entry.fullPath, err)
			return false, true
		}
		return true, false
	}

	item.ID = existing.ID
	if err := s.items.UpdateParsed(item); err != nil {
		log.Printf("scanner: update failed for %s: %v", entry.fullPath, err)
		return false, true
	}
	return false, false
}

// applyFolderTag overrides the parser's classification when the containing
// source folder is tagged MOVIES or TV (spec.md §6).
func applyFolderTag(tag models.FolderType, parsed models.DetectedType) models.DetectedType {
	switch tag {
	case models.FolderMovies:
		return models.TypeMovie
	case models.FolderTV:
		return models.TypeTVShow
	default:
		return parsed
	}
}

// enrich calls the catalog client per spec.md §4.2 step d-e, mutating item
// in place with any match found.
func (s *Scanner) enrich(item *models.MediaItem) {
	if s.catalog == nil || item.NameForMatching() == "" {
		return
	}
	ctx := context.Background()

	switch item.DetectedType {
	case models.TypeMovie:
		movie, err := s.catalog.SearchMovie(ctx, item.NameForMatching(), item.Year)
		if err != nil || movie == nil {
			return
		}
		id := movie.ID
		item.TMDBID = &id
		name := movie.Title
		item.TMDBName = &name
		if movie.PosterPath != "" {
			poster := movie.PosterPath
			item.PosterPath = &poster
		}
		if movie.Year != 0 {
			year := movie.Year
			item.Year = &year
		}
		item.Confidence = capConfidence(item.Confidence + 20)

	case models.TypeTVShow:
		series, err := s.catalog.SearchTV(ctx, item.NameForMatching())
		if err != nil || series == nil {
			return
		}
		id := series.ID
		item.TMDBID = &id
		name := series.Name
		item.TMDBName = &name
		if series.PosterPath != "" {
			poster := series.PosterPath
			item.PosterPath = &poster
		}
		item.Confidence = capConfidence(item.Confidence + 20)

		if item.Season != nil && item.Episode != nil {
			title, err := s.catalog.GetEpisodeTitle(ctx, series.ID, *item.Season, *item.Episode)
			if err == nil && title != "" {
				item.EpisodeTitle = &title
			}
		}
	}
}

func capConfidence(c int) int {
	if c > 100 {
		return 100
	}
	return c
}
