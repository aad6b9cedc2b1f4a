// Package batch runs synthesis and captioning for documents across voices.
//
// Each voice gets its own worker. A worker handles documents in order and,
// within a document, lines in order; a failed unit is recorded in the
// Report and the worker moves on.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voxcue/internal/caption"
	"github.com/dgnsrekt/voxcue/internal/metrics"
	"github.com/dgnsrekt/voxcue/internal/synth"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyDocument marks a document with no text.
var ErrEmptyDocument = errors.New("document is empty")

// Synthesizer produces an audio artifact for a request.
type Synthesizer interface {
	Synthesize(ctx context.Context, req synth.Request, path string) (synth.Artifact, error)
}

// DurationProber reads the duration of an audio artifact.
type DurationProber interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// Options selects what a run produces.
type Options struct {
	// OutputDir is the root of the output tree:
	// <OutputDir>/<document>/<voice>/<document>.mp3 and .../lines/NNNN_<slug>.mp3.
	OutputDir string
	// Whole synthesizes each document in one request.
	Whole bool
	// Lines synthesizes each assembled line separately.
	Lines bool
	// Captions writes an .srt file next to every whole-document artifact.
	Captions bool
	// SlugWidth caps line slugs. Defaults to DefaultSlugWidth.
	SlugWidth int
	// Extension of audio files. Defaults to ".mp3".
	Extension string
	// Request holds prosody and emotion settings copied into every request.
	Request synth.Request
}

// Config configures an Orchestrator.
type Config struct {
	Synthesizer Synthesizer
	// Prober is required when Options.Captions is set.
	Prober   DurationProber
	Pipeline *caption.Pipeline
	Options  Options
	Logger   *log.Logger
}

// Orchestrator fans documents out over voices.
type Orchestrator struct {
	synth    Synthesizer
	prober   DurationProber
	pipeline *caption.Pipeline
	opts     Options
	logger   *log.Logger
}

// New creates an Orchestrator.
func New(config Config) (*Orchestrator, error) {
	if config.Synthesizer == nil {
		return nil, errors.New("batch: synthesizer is required")
	}
	if config.Pipeline == nil {
		return nil, errors.New("batch: caption pipeline is required")
	}
	if config.Options.Captions && config.Prober == nil {
		return nil, errors.New("batch: captions need a duration prober")
	}
	if !config.Options.Whole && !config.Options.Lines {
		return nil, errors.New("batch: nothing to produce, enable whole or line output")
	}
	if config.Options.Extension == "" {
		config.Options.Extension = ".mp3"
	}
	if config.Options.SlugWidth <= 0 {
		config.Options.SlugWidth = DefaultSlugWidth
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	return &Orchestrator{
		synth:    config.Synthesizer,
		prober:   config.Prober,
		pipeline: config.Pipeline,
		opts:     config.Options,
		logger:   config.Logger,
	}, nil
}

// Run processes every document for every voice. Voices run concurrently.
// Unit failures are recorded in the report; the returned error is only set
// when ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context, docs []Document, voices []string) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	logger := o.logger.With("run", report.RunID[:8])
	logger.Info("Starting batch", "documents", len(docs), "voices", len(voices))

	dirs := documentDirs(docs)

	var g errgroup.Group
	for _, voice := range voices {
		g.Go(func() error {
			return o.runVoice(ctx, voice, docs, dirs, report, logger.With("voice", voice))
		})
	}
	err := g.Wait()

	s := report.Summary()
	logger.Info("Batch finished",
		"succeeded", s.Succeeded, "failed", s.Failed, "skipped", s.Skipped,
		"cached", s.Cached, "size", humanize.Bytes(uint64(s.Bytes)))
	return report, err
}

// documentDirs claims one output directory name per document, in input
// order, so documents sharing a base name do not overwrite each other.
func documentDirs(docs []Document) []string {
	names := Names{}
	dirs := make([]string, len(docs))
	for i, doc := range docs {
		dirs[i] = Claim(names, Sanitize(doc.Name))
	}
	return dirs
}

func (o *Orchestrator) runVoice(ctx context.Context, voice string, docs []Document, dirs []string, report *Report, logger *log.Logger) error {
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			logger.Warn("Batch cancelled", "next", doc.Name)
			return err
		}
		if err := o.runDocument(ctx, voice, doc, dirs[i], report, logger.With("document", doc.Name)); err != nil {
			return err
		}
	}
	return nil
}

// runDocument returns an error only on cancellation.
func (o *Orchestrator) runDocument(ctx context.Context, voice string, doc Document, docName string, report *Report, logger *log.Logger) error {
	if strings.TrimSpace(doc.Text) == "" {
		logger.Warn("Skipping empty document")
		o.record(report, Result{Document: doc.Name, Voice: voice, Kind: KindWhole, Status: StatusSkipped, Reason: ErrEmptyDocument.Error()})
		return nil
	}

	dir := filepath.Join(o.opts.OutputDir, docName, Sanitize(voice))

	if o.opts.Whole {
		path := filepath.Join(dir, docName+o.opts.Extension)
		if err := o.runWhole(ctx, voice, doc, path, report, logger); err != nil {
			return err
		}
	}

	if o.opts.Lines {
		return o.runLines(ctx, voice, doc, filepath.Join(dir, "lines"), report, logger)
	}
	return nil
}

func (o *Orchestrator) runWhole(ctx context.Context, voice string, doc Document, path string, report *Report, logger *log.Logger) error {
	art, err := o.synth.Synthesize(ctx, o.request(doc.Text, voice), path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Error("Document synthesis failed", "error", err)
		o.record(report, Result{
			Document: doc.Name, Voice: voice, Kind: KindWhole, Status: StatusFailed, Path: path,
			Err: &UnitError{Document: doc.Name, Voice: voice, Err: err},
		})
		return nil
	}

	logger.Info("Wrote audio", "path", art.Path, "size", humanize.Bytes(uint64(art.Size)), "cached", art.Cached)
	o.record(report, Result{
		Document: doc.Name, Voice: voice, Kind: KindWhole, Status: StatusOK,
		Path: art.Path, Size: art.Size, Cached: art.Cached,
	})

	if o.opts.Captions {
		o.runCaptions(ctx, voice, doc, art.Path, report, logger)
	}
	return nil
}

func (o *Orchestrator) runCaptions(ctx context.Context, voice string, doc Document, audioPath string, report *Report, logger *log.Logger) {
	srtPath := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".srt"
	result := Result{Document: doc.Name, Voice: voice, Kind: KindCaption, Path: srtPath}

	cues, err := o.captions(ctx, doc.Text, audioPath)
	switch {
	case err != nil:
		logger.Warn("Skipping captions", "reason", err)
		result.Status, result.Reason = StatusSkipped, err.Error()
	case len(cues) == 0:
		logger.Warn("Skipping captions", "reason", "no cues")
		result.Status, result.Reason = StatusSkipped, "no cues"
	default:
		data := caption.FormatSRT(cues)
		if err := writeFileAtomic(srtPath, []byte(data)); err != nil {
			logger.Error("Unable to write captions", "path", srtPath, "error", err)
			result.Status = StatusFailed
			result.Err = &UnitError{Document: doc.Name, Voice: voice, Err: err}
			break
		}
		metrics.RecordCaption(len(cues))
		logger.Info("Wrote captions", "path", srtPath, "cues", len(cues))
		result.Status, result.Size = StatusOK, int64(len(data))
	}
	o.record(report, result)
}

func (o *Orchestrator) captions(ctx context.Context, text, audioPath string) ([]caption.Cue, error) {
	d, err := o.prober.Duration(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read audio duration: %w", err)
	}
	if d <= 0 {
		return nil, fmt.Errorf("audio duration %v is not positive", d)
	}
	return o.pipeline.Captions(text, d)
}

func (o *Orchestrator) runLines(ctx context.Context, voice string, doc Document, dir string, report *Report, logger *log.Logger) error {
	lines := o.pipeline.Lines(doc.Text)
	if len(lines) == 0 {
		logger.Warn("Skipping line output", "reason", caption.ErrNoLines)
		o.record(report, Result{Document: doc.Name, Voice: voice, Kind: KindLine, Status: StatusSkipped, Reason: caption.ErrNoLines.Error()})
		return nil
	}

	names := Names{}
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			logger.Warn("Batch cancelled", "line", i+1)
			return err
		}

		name := Claim(names, Slug(line, o.opts.SlugWidth))
		path := filepath.Join(dir, LineFileName(i+1, len(lines), name, o.opts.Extension))
		lineLogger := logger.With("line", i+1, "text", truncate.StringWithTail(line, 24, "…"))

		art, err := o.synth.Synthesize(ctx, o.request(line, voice), path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			lineLogger.Error("Line synthesis failed", "error", err)
			o.record(report, Result{
				Document: doc.Name, Voice: voice, Line: i + 1, Kind: KindLine, Status: StatusFailed, Path: path,
				Err: &UnitError{Document: doc.Name, Voice: voice, Line: i + 1, Err: err},
			})
			continue
		}

		lineLogger.Debug("Wrote line audio", "path", art.Path)
		o.record(report, Result{
			Document: doc.Name, Voice: voice, Line: i + 1, Kind: KindLine, Status: StatusOK,
			Path: art.Path, Size: art.Size, Cached: art.Cached,
		})
	}
	return nil
}

func (o *Orchestrator) request(text, voice string) synth.Request {
	req := o.opts.Request
	req.Text = text
	req.Voice = voice
	if req.Emotion != nil {
		e := *req.Emotion
		req.Emotion = &e
	}
	return req
}

func (o *Orchestrator) record(report *Report, res Result) {
	metrics.RecordUnit(res.Kind, res.Status)
	report.add(res)
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("unable to rename captions into place: %w", err)
	}
	return nil
}
