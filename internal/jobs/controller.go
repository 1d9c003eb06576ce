package jobs

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/JustinTDCT/organizer/internal/models"
	"github.com/JustinTDCT/organizer/internal/repository"
)

// EventNotifier is the progress broadcast boundary; implemented by the
// websocket hub (internal/api).
type EventNotifier interface {
	Broadcast(eventType string, data interface{})
}

// ScanPayload is the asynq task payload for a scan run.
type ScanPayload struct {
	JobID string `json:"job_id"`
}

// OrganizePayload is the asynq task payload for an organize run.
type OrganizePayload struct {
	JobID string   `json:"job_id"`
	IDs   []string `json:"ids"`
}

// Controller exposes the startScan/startOrganize command-surface operations
// (spec.md §6), enforcing the one-active-job-per-kind rule synchronously:
// asynq's own duplicate-task rejection only surfaces once the worker picks
// up the task, which is too late for startScan/startOrganize's synchronous
// fast-fail contract, so an in-process atomic flag is the authoritative
// gate and EnqueueUnique is a second line of defense against a crash
// leaving a stale flag set.
type Controller struct {
	queue        *Queue
	scanJobs     *repository.ScanJobRepository
	organizeJobs *repository.OrganizeJobRepository

	scanRunning     atomic.Bool
	organizeRunning atomic.Bool
}

func NewController(queue *Queue, scanJobs *repository.ScanJobRepository, organizeJobs *repository.OrganizeJobRepository) *Controller {
	return &Controller{queue: queue, scanJobs: scanJobs, organizeJobs: organizeJobs}
}

// StartScan implements spec.md §4.2's startScan operation.
func (c *Controller) StartScan(settings *models.Settings) (uuid.UUID, error) {
	if len(settings.SourceFolders) == 0 {
		return uuid.Nil, ErrNotConfigured
	}
	if !c.scanRunning.CompareAndSwap(false, true) {
		return uuid.Nil, ErrAlreadyRunning
	}

	job := &models.ScanJob{ID: uuid.New(), Status: models.JobRunning}
	if err := c.scanJobs.Create(job); err != nil {
		c.scanRunning.Store(false)
		return uuid.Nil, err
	}

	if _, err := c.queue.EnqueueUnique(TaskScan, ScanPayload{JobID: job.ID.String()}, ScanTaskID, asynq.Retention(1)); err != nil {
		c.scanRunning.Store(false)
		return uuid.Nil, err
	}
	return job.ID, nil
}

// releaseScan is called by ScanHandler once the job reaches a terminal
// state, freeing the gate for the next startScan call.
func (c *Controller) releaseScan() {
	c.scanRunning.Store(false)
}

// StartOrganize implements spec.md §4.6's startOrganize operation.
func (c *Controller) StartOrganize(ids []uuid.UUID, settings *models.Settings) (uuid.UUID, error) {
	if settings.MoviesRoot == "" && settings.TVRoot == "" {
		return uuid.Nil, ErrNotConfigured
	}
	if !c.organizeRunning.CompareAndSwap(false, true) {
		return uuid.Nil, ErrAlreadyRunning
	}

	job := &models.OrganizeJob{ID: uuid.New(), Status: models.JobRunning, TotalFiles: len(ids)}
	if err := c.organizeJobs.Create(job); err != nil {
		c.organizeRunning.Store(false)
		return uuid.Nil, err
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	payload := OrganizePayload{JobID: job.ID.String(), IDs: idStrings}
	if _, err := c.queue.EnqueueUnique(TaskOrganize, payload, OrganizeTaskID, asynq.Retention(1)); err != nil {
		c.organizeRunning.Store(false)
		return uuid.Nil, err
	}
	return job.ID, nil
}

func (c *Controller) releaseOrganize() {
	c.organizeRunning.Store(false)
}
