package synth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// CLIConfig configures the command-line transport.
type CLIConfig struct {
	// Binary is the edge-tts compatible executable. Defaults to "edge-tts".
	Binary string
	// Timeout bounds a single invocation. Defaults to 60s.
	Timeout time.Duration
}

// CLITransport runs an edge-tts compatible program that writes the audio of
// --text to stdout. It cannot express styles.
type CLITransport struct {
	binary  string
	timeout time.Duration
}

// NewCLITransport creates the command-line transport.
func NewCLITransport(config CLIConfig) *CLITransport {
	if config.Binary == "" {
		config.Binary = "edge-tts"
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	return &CLITransport{binary: config.Binary, timeout: config.Timeout}
}

// Name implements Transport.
func (t *CLITransport) Name() string {
	return "cli"
}

// Args returns the command-line arguments for req.
func (t *CLITransport) Args(req Request) []string {
	return []string{
		"--voice", req.Voice,
		"--rate=" + orDefault(req.Rate, "+0%"),
		"--pitch=" + orDefault(req.Pitch, "+0Hz"),
		"--volume=" + orDefault(req.Volume, "+0%"),
		"--text", req.Text,
	}
}

// Synthesize implements Transport.
func (t *CLITransport) Synthesize(ctx context.Context, req Request, w io.Writer) error {
	if strings.TrimSpace(req.Text) == "" {
		return ErrEmptyText
	}
	if req.Enriched() {
		return ErrEmotionUnsupported
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.binary, t.Args(req)...) //nolint:gosec
	cmd.Stdin = strings.NewReader("")

	counter := &countingWriter{w: w}
	var stderr bytes.Buffer
	cmd.Stdout = counter
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s timed out after %v", t.binary, t.timeout)
		}
		return fmt.Errorf("%s failed: %w: %s", t.binary, err, strings.TrimSpace(stderr.String()))
	}
	if counter.n == 0 {
		return ErrNoAudio
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
