package jobs

import "errors"

var (
	// ErrAlreadyRunning is returned by startScan/startOrganize when a job
	// of the same kind is already active (spec.md §4.2, §4.6, §5).
	ErrAlreadyRunning = errors.New("jobs: a job of this kind is already running")
	// ErrNotConfigured is returned when the prerequisite settings for the
	// requested job are missing (spec.md §4.2, §4.6).
	ErrNotConfigured = errors.New("jobs: required settings are not configured")
)
