package jobs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hibiken/asynq"
)

func TestIsTaskConflictSentinelErrors(t *testing.T) {
	if !isTaskConflict(asynq.ErrDuplicateTask) {
		t.Error("expected ErrDuplicateTask to be a conflict")
	}
	if !isTaskConflict(asynq.ErrTaskIDConflict) {
		t.Error("expected ErrTaskIDConflict to be a conflict")
	}
	if !isTaskConflict(fmt.Errorf("wrapped: %w", asynq.ErrDuplicateTask)) {
		t.Error("expected a wrapped sentinel to still be detected via errors.Is")
	}
}

func TestIsTaskConflictStringFallback(t *testing.T) {
	cases := []string{
		"asynq: task ID conflicts with another task",
		"redis: duplicate task detected",
	}
	for _, msg := range cases {
		if !isTaskConflict(errors.New(msg)) {
			t.Errorf("expected %q to be detected as a conflict via string fallback", msg)
		}
	}
}

func TestIsTaskConflictUnrelatedError(t *testing.T) {
	if isTaskConflict(errors.New("connection refused")) {
		t.Error("expected an unrelated error not to be treated as a conflict")
	}
}
