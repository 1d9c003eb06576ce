package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/JustinTDCT/organizer/internal/models"
)

// MediaItemRepository is the CRUD + query surface over the MediaItem table.
type MediaItemRepository struct {
	db *sql.DB
}

func NewMediaItemRepository(db *sql.DB) *MediaItemRepository {
	return &MediaItemRepository{db: db}
}

const mediaItemColumns = `id, original_filename, original_path, file_size, extension,
	detected_type, detected_name, cleaned_name, year, season, episode, episode_end,
	episode_title, is_season_pack, confidence, tmdb_id, tmdb_name, poster_path,
	status, destination_path, duplicate_of, manual_override, duration_seconds, created_at`

func scanMediaItem(row interface{ Scan(...interface{}) error }) (*models.MediaItem, error) {
	m := &models.MediaItem{}
	err := row.Scan(&m.ID, &m.OriginalFilename, &m.OriginalPath, &m.FileSize, &m.Extension,
		&m.DetectedType, &m.DetectedName, &m.CleanedName, &m.Year, &m.Season, &m.Episode, &m.EpisodeEnd,
		&m.EpisodeTitle, &m.IsSeasonPack, &m.Confidence, &m.TMDBID, &m.TMDBName, &m.PosterPath,
		&m.Status, &m.DestinationPath, &m.DuplicateOf, &m.ManualOverride, &m.DurationSeconds, &m.CreatedAt)
	return m, err
}

// GetByPath looks up an item by its (originalPath, originalFilename) key.
func (r *MediaItemRepository) GetByPath(path, filename string) (*models.MediaItem, error) {
	query := `SELECT ` + mediaItemColumns + ` FROM media_items WHERE original_path = $1 AND original_filename = $2`
	m, err := scanMediaItem(r.db.QueryRow(query, path, filename))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *MediaItemRepository) GetByID(id uuid.UUID) (*models.MediaItem, error) {
	query := `SELECT ` + mediaItemColumns + ` FROM media_items WHERE id = $1`
	m, err := scanMediaItem(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("media item not found")
	}
	return m, err
}

// Insert creates a new MediaItem row, assigning its id and createdAt.
func (r *MediaItemRepository) Insert(m *models.MediaItem) error {
	query := `INSERT INTO media_items (original_filename, original_path, file_size, extension,
		detected_type, detected_name, cleaned_name, year, season, episode, episode_end,
		episode_title, is_season_pack, confidence, tmdb_id, tmdb_name, poster_path,
		status, destination_path, duplicate_of, manual_override, duration_seconds)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
		RETURNING id, created_at`
	return r.db.QueryRow(query, m.OriginalFilename, m.OriginalPath, m.FileSize, m.Extension,
		m.DetectedType, m.DetectedName, m.CleanedName, m.Year, m.Season, m.Episode, m.EpisodeEnd,
		m.EpisodeTitle, m.IsSeasonPack, m.Confidence, m.TMDBID, m.TMDBName, m.PosterPath,
		m.Status, m.DestinationPath, m.DuplicateOf, m.ManualOverride, m.DurationSeconds).
		Scan(&m.ID, &m.CreatedAt)
}

// UpdateParsed refreshes every parsed/enriched/duplicate field (the
// manualOverride=false branch of spec.md §4.2 step h).
func (r *MediaItemRepository) UpdateParsed(m *models.MediaItem) error {
	query := `UPDATE media_items SET file_size = $1, detected_type = $2, detected_name = $3,
		cleaned_name = $4, year = $5, season = $6, episode = $7, episode_end = $8, episode_title = $9,
		is_season_pack = $10, confidence = $11, tmdb_id = $12, tmdb_name = $13, poster_path = $14,
		duplicate_of = $15, duration_seconds = $16 WHERE id = $17`
	_, err := r.db.Exec(query, m.FileSize, m.DetectedType, m.DetectedName, m.CleanedName, m.Year,
		m.Season, m.Episode, m.EpisodeEnd, m.EpisodeTitle, m.IsSeasonPack, m.Confidence,
		m.TMDBID, m.TMDBName, m.PosterPath, m.DuplicateOf, m.DurationSeconds, m.ID)
	return err
}

// UpdateFileSizeOnly refreshes only fileSize, for manualOverride=true items.
func (r *MediaItemRepository) UpdateFileSizeOnly(id uuid.UUID, size int64) error {
	_, err := r.db.Exec(`UPDATE media_items SET file_size = $1 WHERE id = $2`, size, id)
	return err
}

// UpdateOrganized records a successful move.
func (r *MediaItemRepository) UpdateOrganized(id uuid.UUID, destinationPath string) error {
	_, err := r.db.Exec(`UPDATE media_items SET status = $1, destination_path = $2 WHERE id = $3`,
		models.StatusOrganized, destinationPath, id)
	return err
}

// UpdateSkipped records a collision-skip; the destination path that already
// occupied the slot is recorded on the skip's OrganizationLog row, not here
// (spec.md §4.6 step 5 — duplicateOf is a row id, not a path).
func (r *MediaItemRepository) UpdateSkipped(id uuid.UUID) error {
	_, err := r.db.Exec(`UPDATE media_items SET status = $1 WHERE id = $2`, models.StatusSkipped, id)
	return err
}

// UpdateError records a failed organize attempt.
func (r *MediaItemRepository) UpdateError(id uuid.UUID) error {
	_, err := r.db.Exec(`UPDATE media_items SET status = $1 WHERE id = $2`, models.StatusError, id)
	return err
}

// Undo reverts an organized item back to pending with no destination.
func (r *MediaItemRepository) Undo(id uuid.UUID) error {
	_, err := r.db.Exec(`UPDATE media_items SET status = $1, destination_path = NULL WHERE id = $2`,
		models.StatusPending, id)
	return err
}

// ResetForRescan clears enrichment and duplicate state and resets status to
// pending (spec.md §3, rescan request transition).
func (r *MediaItemRepository) ResetForRescan(id uuid.UUID) error {
	_, err := r.db.Exec(`UPDATE media_items SET tmdb_id = NULL, tmdb_name = NULL, poster_path = NULL,
		duplicate_of = NULL, status = $1 WHERE id = $2`, models.StatusPending, id)
	return err
}

// SetManualOverride applies a manual edit: locks the fields against rescan
// overwrite and forces confidence to 100.
func (r *MediaItemRepository) SetManualOverride(m *models.MediaItem) error {
	query := `UPDATE media_items SET detected_type = $1, detected_name = $2, cleaned_name = $3,
		year = $4, season = $5, episode = $6, episode_end = $7, tmdb_id = $8, tmdb_name = $9,
		manual_override = true, confidence = 100 WHERE id = $10`
	_, err := r.db.Exec(query, m.DetectedType, m.DetectedName, m.CleanedName, m.Year,
		m.Season, m.Episode, m.EpisodeEnd, m.TMDBID, m.TMDBName, m.ID)
	return err
}

// ListPrimariesByType returns every non-duplicate item of the given type,
// in natural (id) iteration order, for the duplicate detector to scan.
func (r *MediaItemRepository) ListPrimariesByType(detectedType models.DetectedType) ([]*models.MediaItem, error) {
	query := `SELECT ` + mediaItemColumns + ` FROM media_items
		WHERE detected_type = $1 AND duplicate_of IS NULL ORDER BY id`
	rows, err := r.db.Query(query, detectedType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.MediaItem
	for rows.Next() {
		m, err := scanMediaItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// List applies spec.md §6 listMediaItems filters, ordered by createdAt desc.
func (r *MediaItemRepository) List(f models.ListFilters) ([]*models.MediaItem, error) {
	query := `SELECT ` + mediaItemColumns + ` FROM media_items WHERE 1=1`
	var args []interface{}
	n := 0

	arg := func(v interface{}) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}

	if f.Type != nil {
		query += " AND detected_type = " + arg(*f.Type)
	}
	if f.Status != nil {
		query += " AND status = " + arg(*f.Status)
	}
	if f.Search != "" {
		query += " AND (cleaned_name ILIKE " + arg("%"+f.Search+"%") + " OR original_filename ILIKE " + arg("%"+f.Search+"%") + ")"
	}
	if f.ConfidenceBelow != nil {
		query += " AND confidence < " + arg(*f.ConfidenceBelow)
	}
	if f.DuplicatesOnly {
		query += " AND duplicate_of IS NOT NULL"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.MediaItem
	for rows.Next() {
		m, err := scanMediaItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// Stats computes the aggregate counters for getStats.
func (r *MediaItemRepository) Stats() (*models.Stats, error) {
	s := &models.Stats{}
	query := `SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = $1),
		COUNT(*) FILTER (WHERE status = $2),
		COUNT(*) FILTER (WHERE duplicate_of IS NOT NULL),
		COUNT(*) FILTER (WHERE status = $3),
		COUNT(*) FILTER (WHERE detected_type = $4),
		COUNT(*) FILTER (WHERE detected_type = $5)
		FROM media_items`
	err := r.db.QueryRow(query, models.StatusOrganized, models.StatusPending, models.StatusError,
		models.TypeTVShow, models.TypeMovie).
		Scan(&s.Total, &s.Organized, &s.Pending, &s.Duplicates, &s.Errors, &s.TVShows, &s.Movies)
	return s, err
}
