// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/course-helper/internal/deck/decktest"
	"github.com/pdiddy/course-helper/pkg/types"
)

func TestBatchSummary(t *testing.T) {
	s := BatchSummary{Extracted: 2, Skipped: 3, Failed: 1}
	assert.Equal(t, 6, s.Total())
	assert.True(t, s.HasFailures())
	assert.False(t, BatchSummary{Extracted: 1}.HasFailures())
}

func TestIsDeckFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"lecture01.pptx", true},
		{"LECTURE.PPTX", true},
		{"dir/lecture.pptx", true},
		{"~$lecture01.pptx", false},
		{".hidden.pptx", false},
		{"notes.ppt", false},
		{"lecture.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDeckFile(tt.name))
		})
	}
}

func TestCollectDecks(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pptx", "a.pptx", "~$a.pptx", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "c.pptx"), []byte("x"), 0o644))

	decks, err := CollectDecks([]string{dir, filepath.Join(dir, "sub", "c.pptx"), filepath.Join(dir, "a.pptx")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.pptx"),
		filepath.Join(dir, "b.pptx"),
		filepath.Join(dir, "sub", "c.pptx"),
	}, decks)

	_, err = CollectDecks([]string{filepath.Join(dir, "missing")})
	require.Error(t, err)
}

func TestOutputPathFor(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "week1", "week1.json"), OutputPathFor(filepath.Join("decks", "week1.pptx"), "out"))
	assert.Equal(t, "week1", DeckStem("/decks/week1.pptx"))
}

func TestExtractBatch(t *testing.T) {
	dir := t.TempDir()
	decks := filepath.Join(dir, "decks")
	out := filepath.Join(dir, "extracted")
	require.NoError(t, os.MkdirAll(decks, 0o755))

	decktest.Write(t, filepath.Join(decks, "week1.pptx"), lectureDeck())
	decktest.Write(t, filepath.Join(decks, "week2.pptx"), decktest.Deck{Slides: []decktest.Slide{{
		Shapes: []decktest.Shape{decktest.Title("Pictures"), decktest.Picture(decktest.PNG(t), "png")},
	}}})
	require.NoError(t, os.WriteFile(filepath.Join(decks, "week3.pptx"), []byte("broken"), 0o644))

	cfg := types.BatchConfig{OutDir: out}

	var w bytes.Buffer
	summary, err := ExtractBatch([]string{decks}, cfg, false, &w, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Extracted: 2, Failed: 1}, summary)
	assert.Contains(t, w.String(), "extracted week1 (3 slides, 0 images)\n")
	assert.Contains(t, w.String(), "extracted week2 (1 slides, 1 images)\n")
	assert.Contains(t, w.String(), "failed  week3: ")

	data, err := os.ReadFile(filepath.Join(out, "week1", "week1.json"))
	require.NoError(t, err)
	var result types.ExtractionResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "week1.pptx", result.SourceFile)
	assert.Equal(t, filepath.Join(out, "week1", "images"), result.ImagesDir)
	assert.FileExists(t, filepath.Join(out, "week2", "images", "slide_01_img_01.png"))

	t.Run("second run skips up-to-date decks", func(t *testing.T) {
		var w bytes.Buffer
		summary, err := ExtractBatch([]string{decks}, cfg, false, &w, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, BatchSummary{Skipped: 2, Failed: 1}, summary)
		assert.Contains(t, w.String(), "skipped week1\n")
	})

	t.Run("touched deck is extracted again", func(t *testing.T) {
		future := time.Now().Add(time.Hour)
		require.NoError(t, os.Chtimes(filepath.Join(decks, "week1.pptx"), future, future))

		summary, err := ExtractBatch([]string{decks}, cfg, false, &bytes.Buffer{}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, BatchSummary{Extracted: 1, Skipped: 1, Failed: 1}, summary)
	})

	t.Run("force extracts everything", func(t *testing.T) {
		summary, err := ExtractBatch([]string{decks}, cfg, true, &bytes.Buffer{}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, BatchSummary{Extracted: 2, Failed: 1}, summary)
	})
}

func TestExtractDeck_SkippedReturnsNil(t *testing.T) {
	dir := t.TempDir()
	deckPath := filepath.Join(dir, "deck.pptx")
	decktest.Write(t, deckPath, lectureDeck())

	result, err := ExtractDeck(deckPath, dir, types.ExtractionConfig{}, false, &bytes.Buffer{})
	require.NoError(t, err)
	require.NotNil(t, result)

	result, err = ExtractDeck(deckPath, dir, types.ExtractionConfig{}, false, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Nil(t, result)
}
