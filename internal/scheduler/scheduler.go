// Package scheduler drives optional cron-triggered rescans, supplementing
// spec.md's startScan command surface with an unattended trigger.
package scheduler

import (
	"log"

	"github.com/robfig/cron/v3"

	"github.com/JustinTDCT/organizer/internal/jobs"
	"github.com/JustinTDCT/organizer/internal/repository"
)

// Scheduler wraps a cron.Cron that periodically calls startScan, logging
// and skipping the run (via jobs.Controller's own gate) when a scan is
// already active.
type Scheduler struct {
	cron         *cron.Cron
	controller   *jobs.Controller
	settingsRepo *repository.SettingsRepository
}

// New returns a Scheduler. expr is a standard five-field cron expression;
// an empty expr disables scheduled rescans entirely.
func New(expr string, controller *jobs.Controller, settingsRepo *repository.SettingsRepository) (*Scheduler, error) {
	s := &Scheduler{
		cron:         cron.New(),
		controller:   controller,
		settingsRepo: settingsRepo,
	}
	if expr == "" {
		return s, nil
	}
	if _, err := s.cron.AddFunc(expr, s.runScan); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) runScan() {
	settings, err := s.settingsRepo.Get()
	if err != nil {
		log.Printf("scheduler: failed to load settings: %v", err)
		return
	}
	if _, err := s.controller.StartScan(settings); err != nil {
		log.Printf("scheduler: skipped scheduled scan: %v", err)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
