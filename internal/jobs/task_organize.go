package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/JustinTDCT/organizer/internal/models"
	"github.com/JustinTDCT/organizer/internal/organizer"
	"github.com/JustinTDCT/organizer/internal/repository"
)

// OrganizeHandler runs an organize job to completion (spec.md §4.6).
type OrganizeHandler struct {
	organizer    *organizer.Organizer
	organizeJobs *repository.OrganizeJobRepository
	settingsRepo *repository.SettingsRepository
	controller   *Controller
	notifier     EventNotifier
}

func NewOrganizeHandler(org *organizer.Organizer, organizeJobs *repository.OrganizeJobRepository, settingsRepo *repository.SettingsRepository, controller *Controller, notifier EventNotifier) *OrganizeHandler {
	return &OrganizeHandler{organizer: org, organizeJobs: organizeJobs, settingsRepo: settingsRepo, controller: controller, notifier: notifier}
}

func (h *OrganizeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	defer h.controller.releaseOrganize()

	var p OrganizePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	jobID, err := uuid.Parse(p.JobID)
	if err != nil {
		return fmt.Errorf("parse job id: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(p.IDs))
	for _, s := range p.IDs {
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	settings, err := h.settingsRepo.Get()
	if err != nil {
		h.fail(jobID, err)
		return fmt.Errorf("load settings: %w", err)
	}

	log.Printf("Organize: starting job %s (%d items)", jobID, len(ids))

	job := &models.OrganizeJob{ID: jobID}
	var lastBroadcast time.Time

	progressFn := func(processed, total, success, failed int, currentFile string) {
		job.ProcessedFiles = processed
		job.TotalFiles = total
		job.SuccessCount = success
		job.FailedCount = failed
		job.CurrentFile = currentFile
		_ = h.organizeJobs.UpdateProgress(job)

		now := time.Now()
		if h.notifier != nil && (now.Sub(lastBroadcast) >= 500*time.Millisecond || processed == total) {
			lastBroadcast = now
			h.notifier.Broadcast("organize:progress", map[string]interface{}{
				"jobId":          jobID,
				"totalFiles":     total,
				"processedFiles": processed,
				"currentFile":    currentFile,
				"successCount":   success,
				"failedCount":    failed,
			})
		}
	}

	result, err := h.organizer.Organize(ids, settings, progressFn)
	if err != nil {
		h.fail(jobID, err)
		return fmt.Errorf("organize: %w", err)
	}

	if err := h.organizeJobs.Complete(jobID, models.JobCompleted, nil); err != nil {
		log.Printf("Organize: failed to mark job %s complete: %v", jobID, err)
	}
	log.Printf("Organize: job %s complete — %d succeeded, %d failed", jobID, result.SuccessCount, result.FailedCount)

	if h.notifier != nil {
		h.notifier.Broadcast("organize:done", map[string]interface{}{"jobId": jobID, "status": models.JobCompleted})
	}
	return nil
}

func (h *OrganizeHandler) fail(jobID uuid.UUID, cause error) {
	msg := cause.Error()
	if err := h.organizeJobs.Complete(jobID, models.JobFailed, &msg); err != nil {
		log.Printf("Organize: failed to mark job %s failed: %v", jobID, err)
	}
	if h.notifier != nil {
		h.notifier.Broadcast("organize:done", map[string]interface{}{"jobId": jobID, "status": models.JobFailed})
	}
}
