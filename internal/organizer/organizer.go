// Package organizer implements the organization executor (spec.md §4.6):
// it moves pending MediaItems into their canonical destination paths with
// atomic, cross-filesystem-safe semantics, and supports undoing a move.
package organizer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/JustinTDCT/organizer/internal/fsops"
	"github.com/JustinTDCT/organizer/internal/models"
	"github.com/JustinTDCT/organizer/internal/pathplanner"
	"github.com/JustinTDCT/organizer/internal/repository"
)

var (
	ErrSourceIsDestination     = errors.New("organizer: source and destination are the same path")
	ErrDestinationInsideSource = errors.New("organizer: destination is inside the source directory")
	ErrUnknownType             = errors.New("organizer: item has no resolvable destination (detectedType unknown or destination root unset)")
	ErrItemNotFound            = errors.New("organizer: item not found")
)

// ProgressFunc is invoked after each processed item.
type ProgressFunc func(processedFiles, totalFiles, successCount, failedCount int, currentFile string)

// Result summarizes a completed organize batch.
type Result struct {
	TotalFiles     int
	ProcessedFiles int
	SuccessCount   int
	FailedCount    int
}

// Organizer executes startOrganize batches and undo requests.
type Organizer struct {
	items   *repository.MediaItemRepository
	logs    *repository.OrganizationLogRepository
	series  *repository.SeriesRepository
	movies  *repository.MovieRepository
}

func New(items *repository.MediaItemRepository, logs *repository.OrganizationLogRepository,
	series *repository.SeriesRepository, movies *repository.MovieRepository) *Organizer {
	return &Organizer{items: items, logs: logs, series: series, movies: movies}
}

// Organize processes ids in the exact order supplied (spec.md §5 ordering
// guarantee), invoking progressFn after each item.
func (o *Organizer) Organize(ids []uuid.UUID, settings *models.Settings, progressFn ProgressFunc) (*Result, error) {
	result := &Result{TotalFiles: len(ids)}

	for _, id := range ids {
		currentFile, err := o.organizeOne(id, settings)
		result.ProcessedFiles++
		if err != nil {
			result.FailedCount++
		} else {
			result.SuccessCount++
		}
		if progressFn != nil {
			progressFn(result.ProcessedFiles, result.TotalFiles, result.SuccessCount, result.FailedCount, currentFile)
		}
	}

	return result, nil
}

// organizeOne runs the per-item procedure of spec.md §4.6.
func (o *Organizer) organizeOne(id uuid.UUID, settings *models.Settings) (currentFile string, err error) {
	item, err := o.items.GetByID(id)
	if err != nil {
		return "", ErrItemNotFound
	}
	currentFile = item.OriginalFilename

	if item.Status != models.StatusPending || item.IsSeasonPack {
		return currentFile, nil
	}

	destinationPath := pathplanner.Plan(item, settings)
	if destinationPath == "" {
		o.recordError(item, ErrUnknownType)
		return currentFile, ErrUnknownType
	}

	sourcePath := filepath.Join(item.OriginalPath, item.OriginalFilename)

	if sourcePath == destinationPath {
		o.recordError(item, ErrSourceIsDestination)
		return currentFile, ErrSourceIsDestination
	}
	if underDir(destinationPath, item.OriginalPath) {
		o.recordError(item, ErrDestinationInsideSource)
		return currentFile, ErrDestinationInsideSource
	}

	if info, statErr := os.Stat(destinationPath); statErr == nil {
		if info.Size() == item.FileSize {
			if err := o.items.UpdateSkipped(item.ID); err != nil {
				o.recordError(item, err)
				return currentFile, err
			}
			o.logs.Append(&models.OrganizationLog{
				MediaItemID:     item.ID,
				Action:          models.LogActionSkip,
				SourcePath:      sourcePath,
				DestinationPath: &destinationPath,
			})
			return currentFile, nil
		}
		destinationPath = fsops.NextAvailablePath(destinationPath)
	}

	if err := fsops.Move(sourcePath, destinationPath); err != nil {
		o.recordError(item, err)
		return currentFile, err
	}

	if err := o.items.UpdateOrganized(item.ID, destinationPath); err != nil {
		o.recordError(item, err)
		return currentFile, err
	}
	o.logs.Append(&models.OrganizationLog{
		MediaItemID:     item.ID,
		Action:          models.LogActionMove,
		SourcePath:      sourcePath,
		DestinationPath: &destinationPath,
	})

	o.updateProjection(item)

	return currentFile, nil
}

func (o *Organizer) updateProjection(item *models.MediaItem) {
	if item.TMDBID == nil {
		return
	}
	name := item.NameForMatching()
	switch item.DetectedType {
	case models.TypeTVShow:
		if err := o.series.UpsertAndIncrement(*item.TMDBID, name); err != nil {
			fmt.Printf("organizer: series projection update failed for %s: %v\n", name, err)
		}
	case models.TypeMovie:
		if err := o.movies.Upsert(&models.MovieRecord{TMDBID: *item.TMDBID, Name: name, Year: item.Year}); err != nil {
			fmt.Printf("organizer: movie projection update failed for %s: %v\n", name, err)
		}
	}
}

func (o *Organizer) recordError(item *models.MediaItem, cause error) {
	if err := o.items.UpdateError(item.ID); err != nil {
		return
	}
	msg := cause.Error()
	sourcePath := filepath.Join(item.OriginalPath, item.OriginalFilename)
	o.logs.Append(&models.OrganizationLog{
		MediaItemID: item.ID,
		Action:      models.LogActionError,
		SourcePath:  sourcePath,
		Error:       &msg,
	})
}

// Undo reverses a successful organize for item id (spec.md §4.6 "Undo
// operation"): moves the file back to its original location and resets
// lifecycle state.
func (o *Organizer) Undo(id uuid.UUID) error {
	item, err := o.items.GetByID(id)
	if err != nil {
		return ErrItemNotFound
	}
	if item.Status != models.StatusOrganized || item.DestinationPath == nil {
		return fmt.Errorf("organizer: item %s is not organized", id)
	}

	destination := *item.DestinationPath
	if _, err := os.Stat(destination); err != nil {
		return fmt.Errorf("organizer: destination file missing: %w", err)
	}

	originalPath := filepath.Join(item.OriginalPath, item.OriginalFilename)
	if err := fsops.Move(destination, originalPath); err != nil {
		return fmt.Errorf("organizer: undo move failed: %w", err)
	}

	if err := o.items.Undo(item.ID); err != nil {
		return err
	}
	o.logs.Append(&models.OrganizationLog{
		MediaItemID:     item.ID,
		Action:          models.LogActionMove,
		SourcePath:      destination,
		DestinationPath: &originalPath,
	})
	return nil
}

// underDir reports whether path lies strictly inside dir.
func underDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
