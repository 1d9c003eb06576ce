package repository

import (
	"database/sql"

	"github.com/JustinTDCT/organizer/internal/models"
)

// SeriesRepository maintains the TvSeriesRecord projection created as a
// byproduct of organization (spec.md §4.6 step 7).
type SeriesRepository struct {
	db *sql.DB
}

func NewSeriesRepository(db *sql.DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

// UpsertAndIncrement creates the series row if absent, otherwise increments
// its episodeCount.
func (r *SeriesRepository) UpsertAndIncrement(tmdbID, name string) error {
	query := `INSERT INTO tv_series_records (tmdb_id, name, episode_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (tmdb_id) DO UPDATE SET episode_count = tv_series_records.episode_count + 1`
	_, err := r.db.Exec(query, tmdbID, name)
	return err
}

// MovieRepository maintains the MovieRecord projection.
type MovieRepository struct {
	db *sql.DB
}

func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

func (r *MovieRepository) Upsert(m *models.MovieRecord) error {
	query := `INSERT INTO movie_records (tmdb_id, name, year)
		VALUES ($1, $2, $3)
		ON CONFLICT (tmdb_id) DO UPDATE SET name = $2, year = $3`
	_, err := r.db.Exec(query, m.TMDBID, m.Name, m.Year)
	return err
}
