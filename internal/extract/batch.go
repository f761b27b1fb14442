// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/course-helper/internal/deck"
	"github.com/pdiddy/course-helper/pkg/types"
)

const deckExt = ".pptx"

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of decks processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any deck failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// IsDeckFile reports whether name looks like a deck worth extracting. Office
// lock files (~$name.pptx) and hidden files are excluded.
func IsDeckFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), deckExt)
}

// CollectDecks expands paths into a list of deck files. Directories are
// scanned non-recursively in name order; files are kept as given. Duplicates
// are dropped.
func CollectDecks(paths []string) ([]string, error) {
	var decks []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			decks = append(decks, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading deck directory %s: %w", p, err)
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && IsDeckFile(e.Name()) {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			add(filepath.Join(p, name))
		}
	}
	return decks, nil
}

// DeckStem returns the deck filename without directory and extension.
func DeckStem(deckPath string) string {
	base := filepath.Base(deckPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPathFor returns outDir/<stem>/<stem>.json for a deck.
func OutputPathFor(deckPath, outDir string) string {
	stem := DeckStem(deckPath)
	return filepath.Join(outDir, stem, stem+".json")
}

// ExtractDeck extracts one deck into its output directory under outDir,
// unless the existing result is newer than the deck and force is false.
// It returns a nil result when the deck was skipped. Image warnings go to
// warn.
func ExtractDeck(deckPath, outDir string, cfg types.ExtractionConfig, force bool, warn io.Writer) (*types.ExtractionResult, error) {
	cfg = cfg.WithDefaults()
	outPath := OutputPathFor(deckPath, outDir)

	if !force {
		changed, err := hasChanged(deckPath, outPath)
		if err != nil {
			return nil, err
		}
		if !changed {
			return nil, nil
		}
	}

	p, err := deck.Open(deckPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	imagesDir := ImagesDirFor(deckPath, outPath, cfg.ImagesDirName)
	result, err := Presentation(p, imagesDir, cfg, warn)
	if err != nil {
		return nil, err
	}

	if err := writeResult(outPath, result, types.FormatJSON); err != nil {
		return nil, err
	}
	return result, nil
}

// ExtractBatch extracts every deck found in paths into cfg.OutDir, skipping
// decks whose result is up to date. Per-deck failures are reported to w and
// counted; image warnings go to warn.
func ExtractBatch(paths []string, cfg types.BatchConfig, force bool, w, warn io.Writer) (BatchSummary, error) {
	decks, err := CollectDecks(paths)
	if err != nil {
		return BatchSummary{}, err
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	var summary BatchSummary
	for _, deckPath := range decks {
		stem := DeckStem(deckPath)

		result, err := ExtractDeck(deckPath, cfg.OutDir, cfg.ExtractionConfig, force, warn)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", stem, err)
			summary.Failed++
			continue
		}
		if result == nil {
			fmt.Fprintf(w, "skipped %s\n", stem)
			summary.Skipped++
			continue
		}

		fmt.Fprintf(w, "extracted %s (%d slides, %d images)\n", stem, result.SlideCount, result.ImageCount())
		summary.Extracted++
	}

	return summary, nil
}

// hasChanged reports whether the deck is newer than its extraction result,
// or the result does not exist yet.
func hasChanged(deckPath, outPath string) (bool, error) {
	deckInfo, err := os.Stat(deckPath)
	if err != nil {
		return false, fmt.Errorf("stat deck %s: %w", deckPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	return deckInfo.ModTime().After(outInfo.ModTime()), nil
}
