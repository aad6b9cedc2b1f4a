package caption

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Splitter is a linguistic sentence-boundary model. Implementations return
// sentence-like strings in order, or a *SegmentationError.
type Splitter interface {
	Split(text string) ([]string, error)
}

// SplitterFunc adapts a function to the Splitter interface.
type SplitterFunc func(text string) ([]string, error)

// Split calls f.
func (f SplitterFunc) Split(text string) ([]string, error) {
	return f(text)
}

// CommandSplitter runs an external program that reads text on stdin and
// writes one sentence per line on stdout.
type CommandSplitter struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// NewCommandSplitter parses a command line such as "python3 -m splitter".
func NewCommandSplitter(commandLine string, timeout time.Duration) (*CommandSplitter, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, errors.New("empty splitter command")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CommandSplitter{
		Command: fields[0],
		Args:    fields[1:],
		Timeout: timeout,
	}, nil
}

// Split implements Splitter.
func (c *CommandSplitter) Split(text string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Command, c.Args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = errors.Join(err, errors.New(msg))
		}
		return nil, &SegmentationError{Splitter: c.Command, Err: err}
	}

	var sentences []string
	sc := bufio.NewScanner(&stdout)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			sentences = append(sentences, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &SegmentationError{Splitter: c.Command, Err: err}
	}
	if len(sentences) == 0 && strings.TrimSpace(text) != "" {
		return nil, &SegmentationError{Splitter: c.Command, Err: errors.New("no sentences returned")}
	}
	return sentences, nil
}
