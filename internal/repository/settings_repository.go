package repository

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/JustinTDCT/organizer/internal/models"
)

// SettingsRepository persists the singleton Settings row.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get loads the singleton settings row, creating a default one if absent.
func (r *SettingsRepository) Get() (*models.Settings, error) {
	s := &models.Settings{}
	var folders pq.StringArray
	err := r.db.QueryRow(`SELECT catalog_api_key_hash, source_folders, movies_root, tv_root, auto_organize
		FROM settings WHERE id = 1`).
		Scan(&s.CatalogAPIKeyHash, &folders, &s.MoviesRoot, &s.TVRoot, &s.AutoOrganize)
	if err == sql.ErrNoRows {
		if _, insErr := r.db.Exec(`INSERT INTO settings (id) VALUES (1) ON CONFLICT DO NOTHING`); insErr != nil {
			return nil, insErr
		}
		return &models.Settings{}, nil
	}
	if err != nil {
		return nil, err
	}
	s.SourceFolders = models.DecodeSourceFolders([]string(folders))
	return s, nil
}

// Update upserts the singleton settings row.
func (r *SettingsRepository) Update(s *models.Settings) error {
	encoded := pq.StringArray(models.EncodeSourceFolders(s.SourceFolders))
	query := `INSERT INTO settings (id, catalog_api_key_hash, source_folders, movies_root, tv_root, auto_organize)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			catalog_api_key_hash = $1, source_folders = $2, movies_root = $3, tv_root = $4, auto_organize = $5`
	_, err := r.db.Exec(query, s.CatalogAPIKeyHash, encoded, s.MoviesRoot, s.TVRoot, s.AutoOrganize)
	return err
}
