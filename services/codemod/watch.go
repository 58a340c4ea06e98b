// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package codemod

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shamrt/ast-react-intl/services/codemod/files"
)

// DefaultDebounce is how long a file must stay quiet before it is
// re-transformed.
const DefaultDebounce = 300 * time.Millisecond

// Watcher re-runs a Runner over source files as they change.
//
// Description:
//
//	Create and write events for files accepted by the Transformer's filter
//	are collected; once a file has been quiet for the debounce delay it is
//	passed to the Runner together with every other settled file. New
//	directories are watched as they appear. Writes made by the Runner
//	itself come back as no-op transforms.
//
// Thread Safety:
//
//	Add may be called concurrently with Run. Run must be called once.
type Watcher struct {
	runner   *Runner
	filter   *files.Filter
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher returns a Watcher driving r. A non-positive debounce uses
// DefaultDebounce.
func NewWatcher(r *Runner, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		runner:   r,
		filter:   r.Transformer.Filter(),
		watcher:  fw,
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]time.Time),
	}, nil
}

// Add watches root and every directory below it that files.List would
// search. A file root watches its directory.
func (w *Watcher) Add(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return w.watcher.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !de.IsDir() {
			return nil
		}
		if path != root && files.IgnoredDir(de.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run processes events until ctx is done, calling onBatch after each
// batch. It closes the underlying watcher before returning.
func (w *Watcher) Run(ctx context.Context, onBatch func(Summary, error)) error {
	defer w.watcher.Close()

	tick := time.NewTicker(w.debounce / 3)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", slog.String("error", err.Error()))

		case <-tick.C:
			paths := w.settled(time.Now())
			if len(paths) == 0 {
				continue
			}
			sum, err := w.runner.Run(ctx, paths)
			if onBatch != nil {
				onBatch(sum, err)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.Add(event.Name); err != nil {
				w.logger.Warn("watch new directory failed", slog.String("dir", event.Name), slog.String("error", err.Error()))
			}
			return
		}
	}
	if !w.filter.Include(event.Name) {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// settled removes and returns the pending files quiet since before
// now minus the debounce delay, sorted.
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			out = append(out, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(out)
	return out
}
