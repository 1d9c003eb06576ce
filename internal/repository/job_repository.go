package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/JustinTDCT/organizer/internal/models"
)

// ScanJobRepository persists ScanJob rows.
type ScanJobRepository struct {
	db *sql.DB
}

func NewScanJobRepository(db *sql.DB) *ScanJobRepository {
	return &ScanJobRepository{db: db}
}

func (r *ScanJobRepository) Create(job *models.ScanJob) error {
	query := `INSERT INTO scan_jobs (id, status, total_files, processed_files, new_items, errors_count, current_folder)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING started_at`
	return r.db.QueryRow(query, job.ID, job.Status, job.TotalFiles, job.ProcessedFiles,
		job.NewItems, job.ErrorsCount, job.CurrentFolder).Scan(&job.StartedAt)
}

func (r *ScanJobRepository) UpdateProgress(job *models.ScanJob) error {
	query := `UPDATE scan_jobs SET total_files = $1, processed_files = $2, new_items = $3,
		errors_count = $4, current_folder = $5 WHERE id = $6`
	_, err := r.db.Exec(query, job.TotalFiles, job.ProcessedFiles, job.NewItems,
		job.ErrorsCount, job.CurrentFolder, job.ID)
	return err
}

func (r *ScanJobRepository) Complete(id uuid.UUID, status models.JobStatus, errMsg *string) error {
	_, err := r.db.Exec(`UPDATE scan_jobs SET status = $1, error = $2, completed_at = CURRENT_TIMESTAMP WHERE id = $3`,
		status, errMsg, id)
	return err
}

func (r *ScanJobRepository) GetByID(id uuid.UUID) (*models.ScanJob, error) {
	job := &models.ScanJob{}
	query := `SELECT id, status, total_files, processed_files, new_items, errors_count, current_folder, error, started_at, completed_at
		FROM scan_jobs WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&job.ID, &job.Status, &job.TotalFiles, &job.ProcessedFiles,
		&job.NewItems, &job.ErrorsCount, &job.CurrentFolder, &job.Error, &job.StartedAt, &job.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scan job not found")
	}
	return job, err
}

// ActiveExists reports whether a scan job is currently running.
func (r *ScanJobRepository) ActiveExists() (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM scan_jobs WHERE status = $1)`, models.JobRunning).Scan(&exists)
	return exists, err
}

// OrganizeJobRepository persists OrganizeJob rows.
type OrganizeJobRepository struct {
	db *sql.DB
}

func NewOrganizeJobRepository(db *sql.DB) *OrganizeJobRepository {
	return &OrganizeJobRepository{db: db}
}

func (r *OrganizeJobRepository) Create(job *models.OrganizeJob) error {
	query := `INSERT INTO organize_jobs (id, status, total_files, processed_files, success_count, failed_count, current_file)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING started_at`
	return r.db.QueryRow(query, job.ID, job.Status, job.TotalFiles, job.ProcessedFiles,
		job.SuccessCount, job.FailedCount, job.CurrentFile).Scan(&job.StartedAt)
}

func (r *OrganizeJobRepository) UpdateProgress(job *models.OrganizeJob) error {
	query := `UPDATE organize_jobs SET total_files = $1, processed_files = $2, success_count = $3,
		failed_count = $4, current_file = $5 WHERE id = $6`
	_, err := r.db.Exec(query, job.TotalFiles, job.ProcessedFiles, job.SuccessCount,
		job.FailedCount, job.CurrentFile, job.ID)
	return err
}

func (r *OrganizeJobRepository) Complete(id uuid.UUID, status models.JobStatus, errMsg *string) error {
	_, err := r.db.Exec(`UPDATE organize_jobs SET status = $1, error = $2, completed_at = CURRENT_TIMESTAMP WHERE id = $3`,
		status, errMsg, id)
	return err
}

func (r *OrganizeJobRepository) GetByID(id uuid.UUID) (*models.OrganizeJob, error) {
	job := &models.OrganizeJob{}
	query := `SELECT id, status, total_files, processed_files, success_count, failed_count, current_file, error, started_at, completed_at
		FROM organize_jobs WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&job.ID, &job.Status, &job.TotalFiles, &job.ProcessedFiles,
		&job.SuccessCount, &job.FailedCount, &job.CurrentFile, &job.Error, &job.StartedAt, &job.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("organize job not found")
	}
	return job, err
}

// ActiveExists reports whether an organize job is currently running.
func (r *OrganizeJobRepository) ActiveExists() (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM organize_jobs WHERE status = $1)`, models.JobRunning).Scan(&exists)
	return exists, err
}
