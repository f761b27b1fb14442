// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/course-helper/internal/deck/decktest"
	"github.com/pdiddy/course-helper/pkg/types"
)

// syncBuffer is a bytes.Buffer safe for the watcher goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func oneSlide(title string) decktest.Deck {
	return decktest.Deck{Slides: []decktest.Slide{{Shapes: []decktest.Shape{decktest.Title(title)}}}}
}

func TestRelevant(t *testing.T) {
	wt := New(types.WatchConfig{}, &bytes.Buffer{}, &bytes.Buffer{})

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"create deck", fsnotify.Event{Name: "/d/a.pptx", Op: fsnotify.Create}, true},
		{"write deck", fsnotify.Event{Name: "/d/a.pptx", Op: fsnotify.Write}, true},
		{"remove deck", fsnotify.Event{Name: "/d/a.pptx", Op: fsnotify.Remove}, false},
		{"chmod deck", fsnotify.Event{Name: "/d/a.pptx", Op: fsnotify.Chmod}, false},
		{"lock file", fsnotify.Event{Name: "/d/~$a.pptx", Op: fsnotify.Create}, false},
		{"hidden file", fsnotify.Event{Name: "/d/.a.pptx", Op: fsnotify.Write}, false},
		{"other extension", fsnotify.Event{Name: "/d/a.json", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wt.relevant(tt.event))
		})
	}
}

func TestNew_DefaultDebounce(t *testing.T) {
	wt := New(types.WatchConfig{}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Equal(t, types.DefaultDebounce, wt.cfg.Debounce)
}

func TestRun_MissingDirectory(t *testing.T) {
	wt := New(types.WatchConfig{Dir: filepath.Join(t.TempDir(), "missing")}, &bytes.Buffer{}, &bytes.Buffer{})
	err := wt.Run(context.Background())
	require.Error(t, err)
}

func TestRun_ExtractsInitialAndChangedDecks(t *testing.T) {
	dir := t.TempDir()
	decks := filepath.Join(dir, "decks")
	out := filepath.Join(dir, "extracted")
	require.NoError(t, os.MkdirAll(decks, 0o755))
	decktest.Write(t, filepath.Join(decks, "existing.pptx"), oneSlide("Existing"))

	cfg := types.WatchConfig{
		BatchConfig: types.BatchConfig{OutDir: out},
		Dir:         decks,
		Debounce:    50 * time.Millisecond,
	}
	var w, warn syncBuffer
	wt := New(cfg, &w, &warn)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- wt.Run(ctx) }()

	existing := filepath.Join(out, "existing", "existing.json")
	require.Eventually(t, func() bool {
		_, err := os.Stat(existing)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	decktest.Write(t, filepath.Join(decks, "~$added.pptx"), oneSlide("Lock"))
	decktest.Write(t, filepath.Join(decks, "added.pptx"), oneSlide("Added"))

	added := filepath.Join(out, "added", "added.json")
	require.Eventually(t, func() bool {
		_, err := os.Stat(added)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}

	assert.NoDirExists(t, filepath.Join(out, "~$added"))
	assert.Contains(t, w.String(), "extracted existing (1 slides, 0 images)")
	assert.Contains(t, w.String(), "changed added.pptx")
}
