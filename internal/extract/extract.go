// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns presentation decks into per-slide records: it
// classifies each slide's rhetorical type, collects title, body and notes
// text, saves embedded pictures and assembles the result document.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/course-helper/internal/deck"
	"github.com/pdiddy/course-helper/pkg/types"
)

// Presentation builds the extraction result for an opened deck. Pictures are
// written into imagesDir, which is created if needed; image paths in the
// records are relative to the directory containing imagesDir. Per-image
// failures are reported to warn and do not stop extraction.
func Presentation(p *deck.Presentation, imagesDir string, cfg types.ExtractionConfig, warn io.Writer) (*types.ExtractionResult, error) {
	cfg = cfg.WithDefaults()

	absImages, err := filepath.Abs(imagesDir)
	if err != nil {
		return nil, fmt.Errorf("resolving images directory %s: %w", imagesDir, err)
	}
	if err := os.MkdirAll(absImages, 0o755); err != nil {
		return nil, fmt.Errorf("creating images directory: %w", err)
	}
	relDir := filepath.Base(absImages)

	records := make([]types.SlideRecord, 0, len(p.Slides))
	for i, slide := range p.Slides {
		records = append(records, slideRecord(slide, i, absImages, relDir, cfg, warn))
	}

	return &types.ExtractionResult{
		SourceFile: p.SourceFile,
		SlideCount: len(records),
		ImagesDir:  absImages,
		Slides:     records,
	}, nil
}

// slideRecord extracts one slide at zero-based deck position pos.
func slideRecord(slide *deck.Slide, pos int, imagesDir, relDir string, cfg types.ExtractionConfig, warn io.Writer) types.SlideRecord {
	number := pos + 1

	saver := newImageSaver(imagesDir, relDir, number, cfg.MaxGroupDepth, warn)
	saver.walk(slide.Shapes, 0)

	title, body := slideText(slide)
	classTitle, classBody := classificationText(slide)

	return types.SlideRecord{
		Index:      number,
		Type:       ClassifySlide(classTitle, classBody, pos),
		Title:      title,
		BodyText:   body,
		Notes:      slide.Notes,
		HasImages:  len(saver.paths) > 0 || hasDirectPicture(slide),
		ImagePaths: saver.paths,
		LayoutName: slide.LayoutName,
	}
}

// ImagesDirFor returns where images for inputPath go: next to outputPath, or
// next to the input deck when outputPath is empty.
func ImagesDirFor(inputPath, outputPath, dirName string) string {
	if dirName == "" {
		dirName = types.DefaultImagesDirName
	}
	base := filepath.Dir(inputPath)
	if outputPath != "" {
		base = filepath.Dir(outputPath)
	}
	return filepath.Join(base, dirName)
}

// File extracts the deck at inputPath. With an empty outputPath the rendered
// document is written to stdout; otherwise it is written to outputPath in
// one piece after extraction finishes, and a summary goes to stdout.
// Warnings go to stderr.
func File(inputPath, outputPath string, cfg types.ExtractionConfig, stdout, stderr io.Writer) (*types.ExtractionResult, error) {
	cfg = cfg.WithDefaults()

	p, err := deck.Open(inputPath)
	if err != nil {
		return nil, err
	}

	imagesDir := ImagesDirFor(inputPath, outputPath, cfg.ImagesDirName)
	result, err := Presentation(p, imagesDir, cfg, stderr)
	if err != nil {
		return nil, err
	}

	if outputPath == "" {
		if err := Render(stdout, result, cfg.Format); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := writeResult(outputPath, result, cfg.Format); err != nil {
		return nil, err
	}

	fmt.Fprintf(stdout, "Extracted %d slides -> %s\n", result.SlideCount, outputPath)
	if n := result.ImageCount(); n > 0 {
		fmt.Fprintf(stdout, "  Saved %d images -> %s\n", n, result.ImagesDir)
	}
	return result, nil
}

// writeResult renders the result in memory and writes it to path in one call.
func writeResult(path string, result *types.ExtractionResult, format types.OutputFormat) error {
	var buf bytes.Buffer
	if err := Render(&buf, result, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing output %s: %w", path, err)
	}
	return nil
}
