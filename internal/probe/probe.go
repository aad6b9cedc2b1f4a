// Package probe reads the playback duration of audio artifacts with ffprobe.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrNoDuration indicates the probe returned a non-positive duration.
var ErrNoDuration = errors.New("media has no positive duration")

// FFProbe reads durations by running ffprobe.
type FFProbe struct {
	// Binary defaults to "ffprobe".
	Binary string
	// Timeout bounds one invocation. Defaults to 15s.
	Timeout time.Duration
}

// Duration returns the duration of the media at path.
func (p FFProbe) Duration(ctx context.Context, path string) (time.Duration, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("unable to probe %s: %w", path, err)
	}

	binary := p.Binary
	if binary == "" {
		binary = "ffprobe"
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, //nolint:gosec
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	cmd.Stdin = strings.NewReader("")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("%s timeout: %w", binary, ctx.Err())
		}
		return 0, fmt.Errorf("%s failed: %w, stderr: %s", binary, err, strings.TrimSpace(stderr.String()))
	}

	return ParseDuration(stdout.String())
}

// ParseDuration converts ffprobe's seconds output, e.g. "9.024000", into a
// duration. Values that are not positive finite numbers yield ErrNoDuration.
func ParseDuration(out string) (time.Duration, error) {
	s := strings.TrimSpace(out)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" || s == "N/A" {
		return 0, ErrNoDuration
	}

	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse duration %q: %w", s, err)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoDuration, s)
	}
	return time.Duration(math.Round(seconds * float64(time.Second))), nil
}
