// Package models holds the persistent entity types shared by the scan
// engine, organization executor, and the repository layer.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ──────────────────── Enums ────────────────────

type DetectedType string

const (
	TypeMovie   DetectedType = "movie"
	TypeTVShow  DetectedType = "tv_show"
	TypeUnknown DetectedType = "unknown"
)

type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusOrganized ItemStatus = "organized"
	StatusSkipped   ItemStatus = "skipped"
	StatusError     ItemStatus = "error"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

type LogAction string

const (
	LogActionMove  LogAction = "move"
	LogActionSkip  LogAction = "skip"
	LogActionError LogAction = "error"
)

// FolderType tags a configured source folder with the classification it
// should force during scan, overriding or deferring to the parser.
type FolderType string

const (
	FolderMovies FolderType = "MOVIES"
	FolderTV     FolderType = "TV"
	FolderMixed  FolderType = "MIXED"
)

// ──────────────────── MediaItem ────────────────────

// MediaItem is one row per observed file, tracked from first scan discovery
// through organization (or skip/error) and eventual undo/rescan.
type MediaItem struct {
	ID uuid.UUID `json:"id" db:"id"`

	// Source attributes
	OriginalFilename string `json:"original_filename" db:"original_filename"`
	OriginalPath     string `json:"original_path" db:"original_path"`
	FileSize         int64  `json:"file_size" db:"file_size"`
	Extension        string `json:"extension" db:"extension"`

	// Parsed attributes
	DetectedType DetectedType `json:"detected_type" db:"detected_type"`
	DetectedName string       `json:"detected_name" db:"detected_name"`
	CleanedName  string       `json:"cleaned_name" db:"cleaned_name"`
	Year         *int         `json:"year,omitempty" db:"year"`
	Season       *int         `json:"season,omitempty" db:"season"`
	Episode      *int         `json:"episode,omitempty" db:"episode"`
	EpisodeEnd   *int         `json:"episode_end,omitempty" db:"episode_end"`
	EpisodeTitle *string      `json:"episode_title,omitempty" db:"episode_title"`
	IsSeasonPack bool         `json:"is_season_pack" db:"is_season_pack"`
	Confidence   int          `json:"confidence" db:"confidence"`

	// Enriched attributes
	TMDBID     *string `json:"tmdb_id,omitempty" db:"tmdb_id"`
	TMDBName   *string `json:"tmdb_name,omitempty" db:"tmdb_name"`
	PosterPath *string `json:"poster_path,omitempty" db:"poster_path"`

	// Lifecycle attributes
	Status          ItemStatus `json:"status" db:"status"`
	DestinationPath *string    `json:"destination_path,omitempty" db:"destination_path"`
	DuplicateOf     *uuid.UUID `json:"duplicate_of,omitempty" db:"duplicate_of"`
	ManualOverride  bool       `json:"manual_override" db:"manual_override"`

	// Auxiliary
	DurationSeconds *int      `json:"duration_seconds,omitempty" db:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// NameForMatching returns the best available rendering of this item's title
// for similarity comparison, following cleanedName → detectedName → tmdbName
// (spec.md §9: the implementer-chosen consolidation of the fallback chain).
func (m *MediaItem) NameForMatching() string {
	if m.CleanedName != "" {
		return m.CleanedName
	}
	if m.DetectedName != "" {
		return m.DetectedName
	}
	if m.TMDBName != nil && *m.TMDBName != "" {
		return *m.TMDBName
	}
	return ""
}

// ──────────────────── Settings ────────────────────

// SourceFolder is the structured form of a tagged source-folder string
// ("MOVIES:/mnt/incoming", "TV:/mnt/shows", "/mnt/mixed" → MIXED).
type SourceFolder struct {
	Type FolderType
	Path string
}

// Settings is the singleton configuration record for the engine.
type Settings struct {
	CatalogAPIKeyHash string         `json:"-" db:"catalog_api_key_hash"`
	SourceFolders     []SourceFolder `json:"source_folders" db:"-"`
	MoviesRoot        string         `json:"movies_root" db:"movies_root"`
	TVRoot            string         `json:"tv_root" db:"tv_root"`
	AutoOrganize      bool           `json:"auto_organize" db:"auto_organize"`
}

// EncodeSourceFolders renders the structured folder list back to the flat
// "TYPE:path" string form used at the persistence boundary (spec.md §9).
func EncodeSourceFolders(folders []SourceFolder) []string {
	out := make([]string, 0, len(folders))
	for _, f := range folders {
		if f.Type == "" || f.Type == FolderMixed {
			out = append(out, f.Path)
			continue
		}
		out = append(out, string(f.Type)+":"+f.Path)
	}
	return out
}

// DecodeSourceFolders parses the flat "TYPE:path" string form into structured
// folders. An untagged string is treated as MIXED (spec.md §6).
func DecodeSourceFolders(raw []string) []SourceFolder {
	out := make([]SourceFolder, 0, len(raw))
	for _, s := range raw {
		typ := FolderMixed
		path := s
		for _, t := range []FolderType{FolderMovies, FolderTV, FolderMixed} {
			prefix := string(t) + ":"
			if len(s) > len(prefix) && s[:len(prefix)] == prefix {
				typ = t
				path = s[len(prefix):]
				break
			}
		}
		out = append(out, SourceFolder{Type: typ, Path: path})
	}
	return out
}

// ──────────────────── ScanJob / OrganizeJob ────────────────────

type ScanJob struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Status         JobStatus  `json:"status" db:"status"`
	TotalFiles     int        `json:"total_files" db:"total_files"`
	ProcessedFiles int        `json:"processed_files" db:"processed_files"`
	NewItems       int        `json:"new_items" db:"new_items"`
	ErrorsCount    int        `json:"errors_count" db:"errors_count"`
	CurrentFolder  string     `json:"current_folder" db:"current_folder"`
	Error          *string    `json:"error,omitempty" db:"error"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

type OrganizeJob struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Status         JobStatus  `json:"status" db:"status"`
	TotalFiles     int        `json:"total_files" db:"total_files"`
	ProcessedFiles int        `json:"processed_files" db:"processed_files"`
	SuccessCount   int        `json:"success_count" db:"success_count"`
	FailedCount    int        `json:"failed_count" db:"failed_count"`
	CurrentFile    string     `json:"current_file" db:"current_file"`
	Error          *string    `json:"error,omitempty" db:"error"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// ──────────────────── Catalog projections ────────────────────

type TVSeriesRecord struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TMDBID       string    `json:"tmdb_id" db:"tmdb_id"`
	Name         string    `json:"name" db:"name"`
	EpisodeCount int       `json:"episode_count" db:"episode_count"`
}

type MovieRecord struct {
	ID     uuid.UUID `json:"id" db:"id"`
	TMDBID string    `json:"tmdb_id" db:"tmdb_id"`
	Name   string    `json:"name" db:"name"`
	Year   *int      `json:"year,omitempty" db:"year"`
}

// ──────────────────── OrganizationLog ────────────────────

type OrganizationLog struct {
	ID              uuid.UUID `json:"id" db:"id"`
	MediaItemID     uuid.UUID `json:"media_item_id" db:"media_item_id"`
	Action          LogAction `json:"action" db:"action"`
	SourcePath      string    `json:"source_path" db:"source_path"`
	DestinationPath *string   `json:"destination_path,omitempty" db:"destination_path"`
	Error           *string   `json:"error,omitempty" db:"error"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ──────────────────── Stats ────────────────────

type Stats struct {
	Total      int `json:"total"`
	Organized  int `json:"organized"`
	Pending    int `json:"pending"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
	TVShows    int `json:"tv_shows"`
	Movies     int `json:"movies"`
}

// ListFilters narrows listMediaItems (spec.md §6).
type ListFilters struct {
	Type            *DetectedType
	Status          *ItemStatus
	Search          string
	ConfidenceBelow *int
	DuplicatesOnly  bool
}
