package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voxcue/internal/batch"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/term"
)

// watchDebounce collapses the bursts of events editors produce on save.
const watchDebounce = 300 * time.Millisecond

// watchDocuments re-runs a document for every voice whenever its file is
// written, until ctx is done. Documents read from stdin are not watched.
func watchDocuments(ctx context.Context, orch *batch.Orchestrator, docs []batch.Document, voices []string, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close() //nolint:errcheck

	watched := watchedPaths(docs)
	if len(watched) == 0 {
		log.Warn("Nothing to watch, documents were not read from files")
		return nil
	}

	dirs := make(map[string]struct{})
	for p := range watched {
		dir := filepath.Dir(p)
		if _, ok := dirs[dir]; ok {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			log.Error("error adding dir to fsnotify watcher", "dir", dir, "error", err)
			continue
		}
		dirs[dir] = struct{}{}
	}
	log.Info("Watching documents", "files", len(watched), "dirs", len(dirs))

	pending := make(map[string]struct{})
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopped watching")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := watched[name]; !ok {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			pending[name] = struct{}{}
			timer.Reset(watchDebounce)

		case <-timer.C:
			for path := range pending {
				delete(pending, path)
				rerun(ctx, orch, path, voices, w)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "error", err)
		}
	}
}

func rerun(ctx context.Context, orch *batch.Orchestrator, path string, voices []string, w io.Writer) {
	doc, err := batch.LoadDocument(path)
	if err != nil {
		log.Error("Unable to reload document", "path", path, "error", err)
		return
	}
	log.Info("Document changed, synthesizing again", "document", doc.Name)

	report, err := orch.Run(ctx, []batch.Document{doc}, voices)
	printSummary(w, report, term.IsTerminal(int(os.Stdout.Fd())))
	if err != nil {
		log.Warn("Run interrupted", "error", err)
	}
}

// watchedPaths maps the absolute path of every file-backed document.
func watchedPaths(docs []batch.Document) map[string]struct{} {
	paths := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if d.Path == "" {
			continue
		}
		abs, err := filepath.Abs(d.Path)
		if err != nil {
			continue
		}
		paths[abs] = struct{}{}
	}
	return paths
}
