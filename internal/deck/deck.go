// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deck loads PPTX presentation documents into a small object model:
// slides, their shape trees (text shapes, pictures, groups), speaker notes,
// layout names and embedded image blobs. Consumers see only the model, never
// the OOXML part layout.
package deck

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	presentationPart = "ppt/presentation.xml"
	slidePrefix      = "ppt/slides/slide"

	relTypeSlide       = "/slide"
	relTypeSlideLayout = "/slideLayout"
	relTypeNotesSlide  = "/notesSlide"
)

// Presentation is an opened deck. All part data it needs has been read into
// memory, so it stays valid after the underlying file is closed.
type Presentation struct {
	// SourceFile is the filename of the deck without directories.
	SourceFile string

	// Slides are in presentation order.
	Slides []*Slide
}

// Slide is one slide of a presentation.
type Slide struct {
	// Number is the 1-based position of the slide in the deck.
	Number int

	// PartName is the archive path of the slide part, e.g. "ppt/slides/slide3.xml".
	PartName string

	// LayoutName is the name of the slide layout, or "" when unknown.
	LayoutName string

	// Shapes is the top-level shape tree in document order.
	Shapes []Shape

	// HasNotes reports whether the slide has a notes slide.
	HasNotes bool

	// Notes is the trimmed text of the notes body placeholder.
	Notes string
}

// Shape is a node of a slide's shape tree: *TextShape, *PictureShape or *GroupShape.
type Shape interface {
	// Name is the shape name from its non-visual properties.
	Name() string
	shape()
}

// Placeholder identifies a shape that inherits from a layout placeholder.
type Placeholder struct {
	// Type is the placeholder type ("title", "body", "ctrTitle", ...); empty
	// means the OOXML default, an object placeholder.
	Type string

	// Idx is the placeholder index. The title placeholder has index 0, which
	// is also the value when the attribute is absent.
	Idx int
}

// TextShape is a shape with a text frame.
type TextShape struct {
	ShapeName   string
	Placeholder *Placeholder
	Paragraphs  []string
}

func (s *TextShape) Name() string { return s.ShapeName }
func (*TextShape) shape()         {}

// Text returns the paragraphs joined by newlines.
func (s *TextShape) Text() string {
	return strings.Join(s.Paragraphs, "\n")
}

// IsTitle reports whether the shape fills the title placeholder (index 0).
func (s *TextShape) IsTitle() bool {
	return s.Placeholder != nil && s.Placeholder.Idx == 0
}

// PictureShape is a picture. Its image may be unavailable (linked rather than
// embedded, or pointing at a missing part); Image reports why.
type PictureShape struct {
	ShapeName string
	image     *Image
	imageErr  error
}

func (s *PictureShape) Name() string { return s.ShapeName }
func (*PictureShape) shape()         {}

// Image returns the embedded image or the reason it could not be resolved.
func (s *PictureShape) Image() (*Image, error) {
	if s.imageErr != nil {
		return nil, s.imageErr
	}
	return s.image, nil
}

// GroupShape holds child shapes in document order.
type GroupShape struct {
	ShapeName string
	Shapes    []Shape
}

func (s *GroupShape) Name() string { return s.ShapeName }
func (*GroupShape) shape()         {}

// Open reads the presentation at filename.
func Open(filename string) (*Presentation, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening presentation %s: %w", filename, err)
	}
	defer zr.Close()

	p, err := read(&zr.Reader)
	if err != nil {
		return nil, fmt.Errorf("opening presentation %s: %w", filename, err)
	}
	p.SourceFile = filepath.Base(filename)
	return p, nil
}

// Read parses a presentation from an in-memory or otherwise random-access archive.
func Read(r io.ReaderAt, size int64, sourceFile string) (*Presentation, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("reading presentation archive: %w", err)
	}
	p, err := read(zr)
	if err != nil {
		return nil, err
	}
	p.SourceFile = sourceFile
	return p, nil
}

// pkg indexes the archive members of an open deck.
type pkg struct {
	files map[string]*zip.File
}

func read(zr *zip.Reader) (*Presentation, error) {
	pk := &pkg{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		pk.files[f.Name] = f
	}

	if _, ok := pk.files[presentationPart]; !ok {
		return nil, fmt.Errorf("missing required part %s", presentationPart)
	}

	slideParts, err := pk.slideOrder()
	if err != nil {
		return nil, err
	}

	p := &Presentation{Slides: make([]*Slide, 0, len(slideParts))}
	for i, part := range slideParts {
		s, err := pk.loadSlide(part, i+1)
		if err != nil {
			return nil, fmt.Errorf("loading slide %d (%s): %w", i+1, part, err)
		}
		p.Slides = append(p.Slides, s)
	}
	return p, nil
}

// slideOrder returns slide part names in presentation order: the slide-id
// list when present, otherwise ascending slide part number.
func (pk *pkg) slideOrder() ([]string, error) {
	var pres presentationXML
	if err := pk.decode(presentationPart, &pres); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", presentationPart, err)
	}

	if len(pres.SlideIDs) > 0 {
		rels, err := pk.relationships(presentationPart)
		if err != nil {
			return nil, err
		}
		parts := make([]string, 0, len(pres.SlideIDs))
		for _, id := range pres.SlideIDs {
			rel, ok := rels.byID(id.RID)
			if !ok || !strings.HasSuffix(rel.Type, relTypeSlide) {
				return nil, fmt.Errorf("slide id %s: no slide relationship %q", id.ID, id.RID)
			}
			target := rels.resolve(rel)
			if _, ok := pk.files[target]; !ok {
				return nil, fmt.Errorf("slide id %s: missing part %s", id.ID, target)
			}
			parts = append(parts, target)
		}
		return parts, nil
	}

	var parts []string
	for name := range pk.files {
		if strings.HasPrefix(name, slidePrefix) && strings.HasSuffix(name, ".xml") {
			if _, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, slidePrefix), ".xml")); err == nil {
				parts = append(parts, name)
			}
		}
	}
	sort.Slice(parts, func(i, j int) bool {
		return slidePartNumber(parts[i]) < slidePartNumber(parts[j])
	})
	return parts, nil
}

func slidePartNumber(name string) int {
	n, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, slidePrefix), ".xml"))
	return n
}

func (pk *pkg) loadSlide(part string, number int) (*Slide, error) {
	var sx slideXML
	if err := pk.decode(part, &sx); err != nil {
		return nil, fmt.Errorf("parsing slide: %w", err)
	}

	rels, err := pk.relationships(part)
	if err != nil {
		return nil, err
	}

	s := &Slide{
		Number:   number,
		PartName: part,
		Shapes:   pk.buildShapes(sx.CSld.SpTree.Items, rels),
	}

	if rel, ok := rels.firstOfType(relTypeSlideLayout); ok {
		var layout slideLayoutXML
		if err := pk.decode(rels.resolve(rel), &layout); err == nil {
			s.LayoutName = layout.CSld.Name
		}
	}

	if rel, ok := rels.firstOfType(relTypeNotesSlide); ok {
		var notes notesSlideXML
		if err := pk.decode(rels.resolve(rel), &notes); err == nil {
			s.HasNotes = true
			s.Notes = notesText(notes.CSld.SpTree.Items)
		}
	}

	return s, nil
}

// buildShapes converts parsed shape tree nodes into model shapes.
func (pk *pkg) buildShapes(items []shapeNodeXML, rels *relationshipsXML) []Shape {
	shapes := make([]Shape, 0, len(items))
	for _, it := range items {
		switch {
		case it.Sp != nil:
			shapes = append(shapes, textShape(it.Sp))
		case it.Pic != nil:
			shapes = append(shapes, pk.pictureShape(it.Pic, rels))
		case it.Group != nil:
			shapes = append(shapes, &GroupShape{
				ShapeName: it.Group.Name,
				Shapes:    pk.buildShapes(it.Group.Items, rels),
			})
		}
	}
	return shapes
}

func textShape(sp *spXML) *TextShape {
	ts := &TextShape{ShapeName: sp.NvSpPr.CNvPr.Name}
	if ph := sp.NvSpPr.NvPr.Ph; ph != nil {
		ts.Placeholder = &Placeholder{Type: ph.Type, Idx: ph.Idx}
	}
	if sp.TxBody != nil {
		ts.Paragraphs = make([]string, 0, len(sp.TxBody.P))
		for _, p := range sp.TxBody.P {
			ts.Paragraphs = append(ts.Paragraphs, p.Text)
		}
	}
	return ts
}

func (pk *pkg) pictureShape(pic *picXML, rels *relationshipsXML) *PictureShape {
	ps := &PictureShape{ShapeName: pic.NvPicPr.CNvPr.Name}
	blip := pic.BlipFill.Blip

	if blip.Embed == "" {
		if blip.Link != "" {
			ps.imageErr = fmt.Errorf("picture %q is linked, not embedded", ps.ShapeName)
		} else {
			ps.imageErr = fmt.Errorf("picture %q has no image reference", ps.ShapeName)
		}
		return ps
	}

	rel, ok := rels.byID(blip.Embed)
	if !ok {
		ps.imageErr = fmt.Errorf("picture %q: unknown relationship %q", ps.ShapeName, blip.Embed)
		return ps
	}
	if rel.TargetMode == "External" {
		ps.imageErr = fmt.Errorf("picture %q is linked to %s, not embedded", ps.ShapeName, rel.Target)
		return ps
	}

	target := rels.resolve(rel)
	blob, err := pk.read(target)
	if err != nil {
		ps.imageErr = fmt.Errorf("picture %q: %w", ps.ShapeName, err)
		return ps
	}
	ps.image = &Image{PartName: target, Blob: blob}
	return ps
}

// notesText returns the trimmed text of the body placeholder on a notes slide.
func notesText(items []shapeNodeXML) string {
	for _, it := range items {
		if it.Sp == nil || it.Sp.NvSpPr.NvPr.Ph == nil {
			continue
		}
		if it.Sp.NvSpPr.NvPr.Ph.Type == "body" {
			return strings.TrimSpace(textShape(it.Sp).Text())
		}
	}
	return ""
}

func (pk *pkg) read(name string) ([]byte, error) {
	f, ok := pk.files[name]
	if !ok {
		return nil, fmt.Errorf("missing part %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening part %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading part %s: %w", name, err)
	}
	return data, nil
}

// relationships loads the .rels part for source. A part without relationships
// yields an empty set.
func (pk *pkg) relationships(source string) (*relationshipsXML, error) {
	relsPart := path.Join(path.Dir(source), "_rels", path.Base(source)+".rels")
	rels := &relationshipsXML{source: source}
	if _, ok := pk.files[relsPart]; !ok {
		return rels, nil
	}
	if err := pk.decode(relsPart, rels); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", relsPart, err)
	}
	return rels, nil
}
