// Package watch follows a store file on disk and reports its content each
// time another session persists it.
package watch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/mesh-intelligence/pantry/internal/jsonfile"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Watcher reports decoded snapshots of one store file.
type Watcher struct {
	path   string
	format string
	logger *slog.Logger

	last []byte
}

// New returns a Watcher for the store file at path written in format.
// A nil logger discards log output.
func New(path, format string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		path:   filepath.Clean(path),
		format: format,
		logger: logger.With("path", path),
	}
}

// Run calls fn with the current content of the file, then again after
// every change, until ctx is cancelled. The parent directory is watched
// rather than the file so replacements by rename are seen too. Transient
// states (an empty file mid-rewrite, a half-written document) and
// unchanged content are skipped.
func (w *Watcher) Run(ctx context.Context, fn func(types.Snapshot)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	w.emit(fn)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.emit(fn)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "Error watching store", "err", err)
		}
	}
}

func (w *Watcher) emit(fn func(types.Snapshot)) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("Failed to read store", "err", err)
		}
		return
	}
	if len(data) == 0 || bytes.Equal(data, w.last) {
		return
	}
	snap, err := jsonfile.DecodeSnapshot(data, w.format)
	if err != nil {
		w.logger.Debug("Skipping unreadable store state", "err", err)
		return
	}
	w.last = data
	fn(snap)
}
