// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-extracts decks as they change in a directory.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/course-helper/internal/extract"
	"github.com/pdiddy/course-helper/pkg/types"
)

// Watcher extracts every deck in a directory once, then again whenever a
// deck is created or written. Events are collected until the directory has
// been quiet for the debounce interval, so a deck still being copied is
// extracted once it is complete. Decks are processed one at a time.
type Watcher struct {
	cfg  types.WatchConfig
	w    io.Writer
	warn io.Writer

	pending map[string]bool
}

// New returns a watcher for cfg.Dir writing results under cfg.OutDir.
// Progress goes to w and image warnings to warn.
func New(cfg types.WatchConfig, w, warn io.Writer) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = types.DefaultDebounce
	}
	return &Watcher{
		cfg:     cfg,
		w:       w,
		warn:    warn,
		pending: make(map[string]bool),
	}
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (wt *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(wt.cfg.Dir)
	if err != nil {
		return fmt.Errorf("stat watch directory %s: %w", wt.cfg.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch path %s is not a directory", wt.cfg.Dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(wt.cfg.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", wt.cfg.Dir, err)
	}

	fmt.Fprintf(wt.w, "watching %s (debounce %s)\n", wt.cfg.Dir, wt.cfg.Debounce)

	summary, err := extract.ExtractBatch([]string{wt.cfg.Dir}, wt.cfg.BatchConfig, false, wt.w, wt.warn)
	if err != nil {
		return err
	}
	fmt.Fprintf(wt.w, "initial batch: %d extracted, %d skipped, %d failed\n",
		summary.Extracted, summary.Skipped, summary.Failed)

	timer := time.NewTimer(wt.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !wt.relevant(event) {
				continue
			}
			wt.pending[event.Name] = true
			timer.Reset(wt.cfg.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(wt.warn, "watcher error: %v\n", err)

		case <-timer.C:
			wt.flush()

		case <-ctx.Done():
			return nil
		}
	}
}

// relevant reports whether an event should trigger extraction.
func (wt *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return extract.IsDeckFile(event.Name)
}

// flush extracts every pending deck in name order.
func (wt *Watcher) flush() {
	paths := make([]string, 0, len(wt.pending))
	for p := range wt.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	clear(wt.pending)

	for _, p := range paths {
		wt.process(p)
	}
}

// process extracts one deck, always overwriting the previous result.
func (wt *Watcher) process(path string) {
	stem := extract.DeckStem(path)
	if _, err := os.Stat(path); err != nil {
		// Removed or renamed before the debounce elapsed.
		return
	}

	fmt.Fprintf(wt.w, "changed %s\n", filepath.Base(path))
	result, err := extract.ExtractDeck(path, wt.cfg.OutDir, wt.cfg.ExtractionConfig, true, wt.warn)
	if err != nil {
		fmt.Fprintf(wt.w, "failed  %s: %v\n", stem, err)
		return
	}
	fmt.Fprintf(wt.w, "extracted %s (%d slides, %d images)\n", stem, result.SlideCount, result.ImageCount())
}
