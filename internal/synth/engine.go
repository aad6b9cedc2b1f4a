// Package synth drives text-to-speech requests against a remote service.
//
// An Engine tries its transports in order, refreshes credentials when the
// service rejects them, and finally resubmits the request without style
// annotations. A failed call never leaves a zero-byte file behind.
package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voxcue/internal/cache"
	"github.com/dgnsrekt/voxcue/internal/metrics"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
)

// DefaultRetryDelay is the pause between retry rounds.
const DefaultRetryDelay = time.Second

// Artifact is a synthesized audio file.
type Artifact struct {
	Path   string
	Size   int64
	Cached bool
}

// Config configures an Engine.
type Config struct {
	// Transports are tried in order within each round.
	Transports []Transport
	// Refresher renegotiates credentials on auth failures. Optional.
	Refresher Refresher
	// Gate throttles refreshes. Defaults to a gate with DefaultRefreshCooldown.
	Gate *RefreshGate
	// RetryDelay is the pause before the second round. Defaults to DefaultRetryDelay.
	RetryDelay time.Duration
	// Cache serves repeated requests. Optional.
	Cache cache.Store
	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Engine executes synthesis requests with layered fallbacks. It is safe for
// concurrent use; all state shared between calls lives in the RefreshGate
// and the cache.
type Engine struct {
	transports []Transport
	refresher  Refresher
	gate       *RefreshGate
	retryDelay time.Duration
	cache      cache.Store
	logger     *log.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewEngine creates an Engine.
func NewEngine(config Config) (*Engine, error) {
	if len(config.Transports) == 0 {
		return nil, ErrNoTransports
	}
	if config.Gate == nil {
		config.Gate = NewRefreshGate(DefaultRefreshCooldown)
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	return &Engine{
		transports: config.Transports,
		refresher:  config.Refresher,
		gate:       config.Gate,
		retryDelay: config.RetryDelay,
		cache:      config.Cache,
		logger:     config.Logger,
		sleep:      sleepContext,
	}, nil
}

// Synthesize writes audio for req to path.
//
// Each round tries every transport in order. After a failed first round the
// engine refreshes credentials if the failure looks like an auth problem,
// waits, and runs a second round. If that fails too, one last round is run
// with the plain request. On failure the returned error is a
// *SynthesisError, or the context error if ctx was cancelled.
func (e *Engine) Synthesize(ctx context.Context, req Request, path string) (Artifact, error) {
	start := time.Now()
	art, err := e.synthesize(ctx, req, path)
	metrics.RecordSynthesis(err == nil, time.Since(start).Seconds())
	return art, err
}

func (e *Engine) synthesize(ctx context.Context, req Request, path string) (Artifact, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Artifact{}, fmt.Errorf("unable to create output directory: %w", err)
	}

	if art, ok := e.fromCache(req, path); ok {
		return art, nil
	}

	logger := e.logger.With("voice", req.Voice, "text", truncate.StringWithTail(req.Text, 40, "…"))

	var (
		current  = req
		rounds   int
		attempts int
		plain    bool
		lastErr  error
		st       = stateAttempt
	)
	for {
		switch st {
		case stateAttempt:
			if err := ctx.Err(); err != nil {
				removeEmpty(path)
				return Artifact{}, err
			}
			art, n, err := e.round(ctx, current, path)
			attempts += n
			if err == nil {
				e.toCache(current, art, logger)
				logger.Debug("Synthesis succeeded", "path", art.Path, "size", humanize.Bytes(uint64(art.Size)), "plain", plain)
				return art, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				removeEmpty(path)
				return Artifact{}, ctxErr
			}
			lastErr = err
			if !plain {
				rounds++
			}
			st = nextState(rounds, plain, err)
			logger.Warn("Synthesis round failed", "round", rounds, "plain", plain, "next", st, "error", err)

		case stateRefresh:
			e.refresh(ctx, false, logger)
			st = stateBackoff

		case stateBackoff:
			if err := e.sleep(ctx, e.retryDelay); err != nil {
				removeEmpty(path)
				return Artifact{}, err
			}
			st = stateAttempt

		case statePlain:
			current = req.Plain()
			plain = true
			st = stateAttempt

		case stateFailed:
			removeEmpty(path)
			return Artifact{}, &SynthesisError{
				Voice:    req.Voice,
				Path:     path,
				Attempts: attempts,
				Err:      lastErr,
				Guidance: Guidance,
			}
		}
	}
}

// round tries each transport once and returns the number of transport calls.
func (e *Engine) round(ctx context.Context, req Request, path string) (Artifact, int, error) {
	var errs []error
	calls := 0
	for _, t := range e.transports {
		if err := ctx.Err(); err != nil {
			return Artifact{}, calls, err
		}
		calls++
		art, err := e.attempt(ctx, t, req, path)
		if err == nil {
			metrics.RecordAttempt(t.Name(), "success")
			return art, calls, nil
		}
		status := "error"
		if errors.Is(err, ErrNoAudio) {
			status = "empty"
		}
		metrics.RecordAttempt(t.Name(), status)
		errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
	}
	return Artifact{}, calls, errors.Join(errs...)
}

// attempt runs one transport into path. On any failure the file is removed.
func (e *Engine) attempt(ctx context.Context, t Transport, req Request, path string) (Artifact, error) {
	f, err := os.Create(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("unable to create artifact: %w", err)
	}

	err = t.Synthesize(ctx, req, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("unable to close artifact: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(path)
		return Artifact{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		_ = os.Remove(path)
		return Artifact{}, fmt.Errorf("unable to stat artifact: %w", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(path)
		return Artifact{}, ErrNoAudio
	}
	return Artifact{Path: path, Size: info.Size()}, nil
}

// RefreshCredentials runs the refresher if the gate allows it and reports
// whether a refresh happened.
func (e *Engine) RefreshCredentials(ctx context.Context, force bool) (bool, error) {
	if e.refresher == nil {
		return false, nil
	}
	if !e.gate.Acquire(force) {
		metrics.RecordRefresh("throttled")
		return false, nil
	}
	if err := e.refresher.Refresh(ctx); err != nil {
		metrics.RecordRefresh("error")
		return true, fmt.Errorf("credential refresh: %w", err)
	}
	metrics.RecordRefresh("refreshed")
	return true, nil
}

func (e *Engine) refresh(ctx context.Context, force bool, logger *log.Logger) {
	refreshed, err := e.RefreshCredentials(ctx, force)
	switch {
	case err != nil:
		logger.Warn("Credential refresh failed", "error", err)
	case refreshed:
		logger.Info("Credentials refreshed")
	default:
		logger.Debug("Credential refresh skipped", "last", e.gate.Last())
	}
}

func (e *Engine) fromCache(req Request, path string) (Artifact, bool) {
	if e.cache == nil {
		return Artifact{}, false
	}
	data, ok := e.cache.Get(req.CacheKey())
	metrics.RecordCacheLookup(ok)
	if !ok {
		return Artifact{}, false
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		e.logger.Warn("Unable to write cached audio", "path", path, "error", err)
		removeEmpty(path)
		return Artifact{}, false
	}
	return Artifact{Path: path, Size: int64(len(data)), Cached: true}, true
}

func (e *Engine) toCache(req Request, art Artifact, logger *log.Logger) {
	if e.cache == nil {
		return
	}
	data, err := os.ReadFile(art.Path)
	if err == nil {
		err = e.cache.Put(req.CacheKey(), data)
	}
	if err != nil {
		logger.Debug("Unable to cache audio", "error", err)
	}
}

// removeEmpty deletes path if it exists with zero bytes.
func removeEmpty(path string) {
	if info, err := os.Stat(path); err == nil && info.Size() == 0 {
		_ = os.Remove(path)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
