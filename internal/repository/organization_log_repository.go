package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/JustinTDCT/organizer/internal/models"
)

// OrganizationLogRepository appends the audit trail for the organization
// executor (spec.md §3, §4.6, §7 — every move or skip leaves a row here,
// as does a per-item failure once the item has been loaded and marked as
// error; an id that cannot be loaded leaves no row).
type OrganizationLogRepository struct {
	db *sql.DB
}

func NewOrganizationLogRepository(db *sql.DB) *OrganizationLogRepository {
	return &OrganizationLogRepository{db: db}
}

func (r *OrganizationLogRepository) Append(log *models.OrganizationLog) error {
	query := `INSERT INTO organization_logs (media_item_id, action, source_path, destination_path, error)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	return r.db.QueryRow(query, log.MediaItemID, log.Action, log.SourcePath, log.DestinationPath, log.Error).
		Scan(&log.ID, &log.CreatedAt)
}

func (r *OrganizationLogRepository) ListByMediaItem(mediaItemID uuid.UUID) ([]*models.OrganizationLog, error) {
	query := `SELECT id, media_item_id, action, source_path, destination_path, error, created_at
		FROM organization_logs WHERE media_item_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(query, mediaItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.OrganizationLog
	for rows.Next() {
		l := &models.OrganizationLog{}
		if err := rows.Scan(&l.ID, &l.MediaItemID, &l.Action, &l.SourcePath, &l.DestinationPath, &l.Error, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
