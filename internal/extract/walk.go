// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/course-helper/internal/deck"
)

// slideText returns the trimmed title placeholder text and the body lines of
// every other top-level text shape, in shape order then paragraph order,
// skipping blank paragraphs.
func slideText(slide *deck.Slide) (title string, body []string) {
	body = []string{}
	for _, sh := range slide.Shapes {
		ts, ok := sh.(*deck.TextShape)
		if !ok {
			continue
		}
		if ts.IsTitle() {
			title = strings.TrimSpace(ts.Text())
			continue
		}
		for _, p := range ts.Paragraphs {
			if line := strings.TrimSpace(p); line != "" {
				body = append(body, line)
			}
		}
	}
	return title, body
}

// hasDirectPicture reports whether any top-level shape is a picture.
func hasDirectPicture(slide *deck.Slide) bool {
	for _, sh := range slide.Shapes {
		if _, ok := sh.(*deck.PictureShape); ok {
			return true
		}
	}
	return false
}

// imageSaver writes a slide's pictures into dir as slide_NN_img_MM.<ext>.
// The counter advances for every picture found, including ones that fail
// to save, so names stay tied to shape order.
type imageSaver struct {
	dir      string
	relDir   string
	slide    int
	counter  int
	maxDepth int
	warn     io.Writer
	paths    []string
}

func newImageSaver(dir, relDir string, slide, maxDepth int, warn io.Writer) *imageSaver {
	return &imageSaver{
		dir:      dir,
		relDir:   relDir,
		slide:    slide,
		maxDepth: maxDepth,
		warn:     warn,
		paths:    []string{},
	}
}

// walk visits shapes depth-first in child order, saving every picture.
// Groups nested deeper than maxDepth are skipped.
func (s *imageSaver) walk(shapes []deck.Shape, depth int) {
	for _, sh := range shapes {
		switch v := sh.(type) {
		case *deck.PictureShape:
			s.counter++
			name, err := s.save(v)
			if err != nil {
				fmt.Fprintf(s.warn, "  Warning: could not extract image: %v\n", err)
				continue
			}
			s.paths = append(s.paths, s.relDir+"/"+name)
		case *deck.GroupShape:
			if depth+1 > s.maxDepth {
				fmt.Fprintf(s.warn, "  Warning: slide %d: group %q nested deeper than %d levels, skipped\n",
					s.slide, v.Name(), s.maxDepth)
				continue
			}
			s.walk(v.Shapes, depth+1)
		}
	}
}

// save resolves the picture's extension first and then writes the file, so a
// failed picture never leaves a file behind under the wrong name.
func (s *imageSaver) save(pic *deck.PictureShape) (string, error) {
	img, err := pic.Image()
	if err != nil {
		return "", err
	}
	ext, err := img.Ext()
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("slide_%02d_img_%02d.%s", s.slide, s.counter, ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), img.Blob, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return name, nil
}
