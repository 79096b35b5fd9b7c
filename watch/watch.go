// Package watch re-exports a proposal whenever its JSON file changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lvillar/offerdeck/export"
	"github.com/lvillar/offerdeck/model"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// FileExporter writes the PDF of a document to path.
type FileExporter interface {
	ExportFile(ctx context.Context, doc model.Document, path string) (export.Result, error)
}

// Event reports the outcome of one rebuild.
type Event struct {
	Source string
	Result export.Result
	Err    error
}

// Watcher rebuilds Output from Source.
type Watcher struct {
	Source   string
	Output   string
	Exporter FileExporter
	Debounce time.Duration
	Logger   *slog.Logger
	OnBuild  func(Event) // optional
}

// Run exports once, then again after every change to Source, until ctx is
// done. A document that fails to decode is reported and the previous output
// is kept.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Exporter == nil {
		return fmt.Errorf("watch: no exporter")
	}
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	src, err := filepath.Abs(w.Source)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fw.Close()
	// Editors often replace the file on save, so the directory is watched.
	if err := fw.Add(filepath.Dir(src)); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	w.build(ctx, logger, src)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			name, _ := filepath.Abs(event.Name)
			if name != src || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: watcher error", "err", err)
		case <-timer.C:
			w.build(ctx, logger, src)
		}
	}
}

func (w *Watcher) build(ctx context.Context, logger *slog.Logger, src string) {
	ev := Event{Source: src}
	ev.Result, ev.Err = w.rebuild(ctx, src)
	if ev.Err != nil {
		logger.Error("watch: rebuild failed", "source", src, "err", ev.Err)
	} else {
		logger.Info("watch: rebuilt", "source", src, "output", w.Output, "pages", ev.Result.Pages)
	}
	if w.OnBuild != nil {
		w.OnBuild(ev)
	}
}

func (w *Watcher) rebuild(ctx context.Context, src string) (export.Result, error) {
	f, err := os.Open(src)
	if err != nil {
		return export.Result{}, fmt.Errorf("watch: %w", err)
	}
	defer f.Close()
	doc, err := model.Decode(f)
	if err != nil {
		return export.Result{}, err
	}
	return w.Exporter.ExportFile(ctx, doc, w.Output)
}
