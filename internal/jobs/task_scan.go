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
	"github.com/JustinTDCT/organizer/internal/repository"
	"github.com/JustinTDCT/organizer/internal/scanner"
)

// ScanHandler runs a scan job to completion (spec.md §4.2).
type ScanHandler struct {
	scanner      *scanner.Scanner
	scanJobs     *repository.ScanJobRepository
	settingsRepo *repository.SettingsRepository
	controller   *Controller
	notifier     EventNotifier
}

func NewScanHandler(sc *scanner.Scanner, scanJobs *repository.ScanJobRepository, settingsRepo *repository.SettingsRepository, controller *Controller, notifier EventNotifier) *ScanHandler {
	return &ScanHandler{scanner: sc, scanJobs: scanJobs, settingsRepo: settingsRepo, controller: controller, notifier: notifier}
}

func (h *ScanHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	defer h.controller.releaseScan()

	var p ScanPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	jobID, err := uuid.Parse(p.JobID)
	if err != nil {
		return fmt.Errorf("parse job id: %w", err)
	}

	settings, err := h.settingsRepo.Get()
	if err != nil {
		h.fail(jobID, err)
		return fmt.Errorf("load settings: %w", err)
	}

	log.Printf("Scan: starting job %s", jobID)

	job := &models.ScanJob{ID: jobID}
	var lastBroadcast time.Time

	progressFn := func(processed, total, newItems, errorsCount int, currentFolder string) {
		job.ProcessedFiles = processed
		job.TotalFiles = total
		job.NewItems = newItems
		job.ErrorsCount = errorsCount
		job.CurrentFolder = currentFolder
		_ = h.scanJobs.UpdateProgress(job)

		now := time.Now()
		if h.notifier != nil && (now.Sub(lastBroadcast) >= 500*time.Millisecond || processed == total) {
			lastBroadcast = now
			h.notifier.Broadcast("scan:progress", map[string]interface{}{
				"jobId":          jobID,
				"totalFiles":     total,
				"processedFiles": processed,
				"currentFolder":  currentFolder,
				"newItems":       newItems,
				"errorsCount":    errorsCount,
			})
		}
	}

	result, err := h.scanner.Scan(ctx, settings, progressFn)
	if err != nil {
		h.fail(jobID, err)
		return fmt.Errorf("scan: %w", err)
	}

	if err := h.scanJobs.Complete(jobID, models.JobCompleted, nil); err != nil {
		log.Printf("Scan: failed to mark job %s complete: %v", jobID, err)
	}
	log.Printf("Scan: job %s complete — %d processed, %d new, %d errors", jobID, result.ProcessedFiles, result.NewItems, result.ErrorsCount)

	if h.notifier != nil {
		h.notifier.Broadcast("scan:done", map[string]interface{}{"jobId": jobID, "status": models.JobCompleted})
	}
	return nil
}

func (h *ScanHandler) fail(jobID uuid.UUID, cause error) {
	msg := cause.Error()
	if err := h.scanJobs.Complete(jobID, models.JobFailed, &msg); err != nil {
		log.Printf("Scan: failed to mark job %s failed: %v", jobID, err)
	}
	if h.notifier != nil {
		h.notifier.Broadcast("scan:done", map[string]interface{}{"jobId": jobID, "status": models.JobFailed})
	}
}
