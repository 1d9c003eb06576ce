// Package probe wraps ffprobe to extract a media file's duration, bounded
// by a hard wall-clock timeout so a hung mount never stalls a scan
// (spec.md §4.2 step f, §5 "media-probe has a 10-second timeout").
package probe

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"time"
)

const defaultTimeout = 10 * time.Second

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// DurationSeconds runs ffprobe against path and returns its duration in
// whole seconds, or nil on any failure or timeout: per spec.md, a probe
// failure yields a null duration, not an item error.
func DurationSeconds(ffprobePath, path string) *int {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil
	}

	seconds, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil {
		return nil
	}
	rounded := int(seconds + 0.5)
	return &rounded
}
