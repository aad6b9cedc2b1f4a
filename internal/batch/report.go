package batch

import (
	"fmt"
	"sort"
	"sync"
)

// Unit kinds.
const (
	KindWhole   = "whole"
	KindLine    = "line"
	KindCaption = "caption"
)

// Unit statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// UnitError tags a failure with the unit it belongs to.
type UnitError struct {
	Document string
	Voice    string
	// Line is the 1-based line number, or 0 for the whole document.
	Line int
	Err  error
}

// Error implements the error interface.
func (e *UnitError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s [%s] line %d: %v", e.Document, e.Voice, e.Line, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Document, e.Voice, e.Err)
}

// Unwrap returns the underlying error.
func (e *UnitError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one output unit.
type Result struct {
	Document string
	Voice    string
	Line     int
	Kind     string
	Status   string
	Path     string
	Size     int64
	Cached   bool
	Reason   string
	Err      error
}

// Report collects results from concurrent voice workers.
type Report struct {
	RunID string

	mu      sync.Mutex
	results []Result
}

func (r *Report) add(res Result) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
}

// Results returns the results ordered by voice, then in the order each voice
// worker produced them.
func (r *Report) Results() []Result {
	r.mu.Lock()
	out := make([]Result, len(r.results))
	copy(out, r.results)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Voice < out[j].Voice })
	return out
}

// Errors returns the unit errors of failed results.
func (r *Report) Errors() []error {
	var errs []error
	for _, res := range r.Results() {
		if res.Status == StatusFailed && res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errs
}

// Summary counts results by status.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
	Cached    int
	Bytes     int64
}

// Summary totals the report.
func (r *Report) Summary() Summary {
	var s Summary
	for _, res := range r.Results() {
		switch res.Status {
		case StatusOK:
			s.Succeeded++
			s.Bytes += res.Size
			if res.Cached {
				s.Cached++
			}
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}
