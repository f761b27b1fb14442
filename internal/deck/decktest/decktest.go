// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decktest builds synthetic PPTX archives for tests. It writes just
// enough of the OOXML package (presentation, slides, layouts, notes slides,
// relationships and media) for the deck reader to load.
package decktest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
)

const (
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	relSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relNotesSlide  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	relImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// Deck describes a synthetic presentation.
type Deck struct {
	Slides []Slide

	// Order lists 1-based slide part numbers in presentation order. Empty
	// means part order.
	Order []int

	// OmitSlideIDList writes presentation.xml without a slide-id list.
	OmitSlideIDList bool
}

// Slide describes one slide. A notes slide is written when Notes is non-empty.
type Slide struct {
	Layout string
	Shapes []Shape
	Notes  string
}

// Shape renders itself into a slide's shape tree.
type Shape interface {
	render(b *slideBuilder) string
}

type textShape struct {
	phType     string
	phIdx      int
	hasPh      bool
	omitIdx    bool
	paragraphs []string
	noTxBody   bool
}

// Title is a title placeholder (index 0).
func Title(text string) Shape {
	return &textShape{phType: "title", hasPh: true, omitIdx: true, paragraphs: []string{text}}
}

// CenterTitle is a centered title placeholder as used on title slides.
func CenterTitle(text string) Shape {
	return &textShape{phType: "ctrTitle", hasPh: true, omitIdx: true, paragraphs: []string{text}}
}

// Body is a body placeholder at index 1. A paragraph containing "\n" is
// written as runs separated by line breaks.
func Body(paragraphs ...string) Shape {
	return &textShape{phType: "body", phIdx: 1, hasPh: true, paragraphs: paragraphs}
}

// Placeholder is a text placeholder with an explicit type and index.
func Placeholder(phType string, idx int, paragraphs ...string) Shape {
	return &textShape{phType: phType, phIdx: idx, hasPh: true, paragraphs: paragraphs}
}

// TextBox is a text shape that is not a placeholder.
func TextBox(paragraphs ...string) Shape {
	return &textShape{paragraphs: paragraphs}
}

// EmptyShape is an autoshape without a text body.
func EmptyShape() Shape {
	return &textShape{noTxBody: true}
}

func (s *textShape) render(b *slideBuilder) string {
	id := b.nextID()
	var sb strings.Builder
	fmt.Fprintf(&sb, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Shape %d"/><p:cNvSpPr/><p:nvPr>`, id, id)
	if s.hasPh {
		sb.WriteString(`<p:ph`)
		if s.phType != "" {
			fmt.Fprintf(&sb, ` type="%s"`, s.phType)
		}
		if !s.omitIdx {
			fmt.Fprintf(&sb, ` idx="%d"`, s.phIdx)
		}
		sb.WriteString(`/>`)
	}
	sb.WriteString(`</p:nvPr></p:nvSpPr><p:spPr/>`)
	if !s.noTxBody {
		sb.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/>`)
		for _, p := range s.paragraphs {
			sb.WriteString(`<a:p>`)
			for i, line := range strings.Split(p, "\n") {
				if i > 0 {
					sb.WriteString(`<a:br><a:rPr lang="en-US"/></a:br>`)
				}
				if line != "" {
					fmt.Fprintf(&sb, `<a:r><a:rPr lang="en-US"/><a:t>%s</a:t></a:r>`, esc(line))
				}
			}
			sb.WriteString(`<a:endParaRPr lang="en-US"/></a:p>`)
		}
		sb.WriteString(`</p:txBody>`)
	}
	sb.WriteString(`</p:sp>`)
	return sb.String()
}

type pictureShape struct {
	data   []byte
	ext    string
	link   string
	broken bool
}

// Picture is an embedded picture stored as ppt/media/imageN.<ext>.
func Picture(data []byte, ext string) Shape {
	return &pictureShape{data: data, ext: ext}
}

// LinkedPicture is a picture linked to an external URL rather than embedded.
func LinkedPicture(url string) Shape {
	return &pictureShape{link: url}
}

// BrokenPicture references a media part that is missing from the archive.
func BrokenPicture() Shape {
	return &pictureShape{broken: true, ext: "png"}
}

func (s *pictureShape) render(b *slideBuilder) string {
	id := b.nextID()
	var blip string
	switch {
	case s.link != "":
		rid := b.addRel(relImage, s.link, true)
		blip = fmt.Sprintf(`<a:blip r:link="%s"/>`, rid)
	case s.broken:
		rid := b.addRel(relImage, "../media/missing.png", false)
		blip = fmt.Sprintf(`<a:blip r:embed="%s"/>`, rid)
	default:
		name := b.deck.addMedia(s.data, s.ext)
		rid := b.addRel(relImage, "../media/"+name, false)
		blip = fmt.Sprintf(`<a:blip r:embed="%s"/>`, rid)
	}
	return fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="Picture %d"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`+
		`<p:blipFill>%s<a:stretch><a:fillRect/></a:stretch></p:blipFill><p:spPr/></p:pic>`, id, id, blip)
}

type groupShape struct {
	children []Shape
}

// Group nests shapes inside a group shape.
func Group(children ...Shape) Shape {
	return &groupShape{children: children}
}

func (s *groupShape) render(b *slideBuilder) string {
	id := b.nextID()
	var sb strings.Builder
	fmt.Fprintf(&sb, `<p:grpSp><p:nvGrpSpPr><p:cNvPr id="%d" name="Group %d"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`, id, id)
	for _, c := range s.children {
		sb.WriteString(c.render(b))
	}
	sb.WriteString(`</p:grpSp>`)
	return sb.String()
}

type rawShape string

// Raw inserts literal shape-tree XML, e.g. a graphic frame.
func Raw(xmlText string) Shape {
	return rawShape(xmlText)
}

func (s rawShape) render(*slideBuilder) string { return string(s) }

type rel struct {
	id, typ, target string
	external        bool
}

type slideBuilder struct {
	deck *deckBuilder
	rels []rel
	id   int
}

func (b *slideBuilder) nextID() int {
	b.id++
	return b.id
}

func (b *slideBuilder) addRel(typ, target string, external bool) string {
	id := fmt.Sprintf("rId%d", len(b.rels)+1)
	b.rels = append(b.rels, rel{id: id, typ: typ, target: target, external: external})
	return id
}

type deckBuilder struct {
	files map[string][]byte
	names []string
	media int
}

func (d *deckBuilder) add(name string, data []byte) {
	if _, ok := d.files[name]; !ok {
		d.names = append(d.names, name)
	}
	d.files[name] = data
}

func (d *deckBuilder) addMedia(data []byte, ext string) string {
	d.media++
	name := fmt.Sprintf("image%d.%s", d.media, ext)
	d.add("ppt/media/"+name, data)
	return name
}

// Bytes renders the deck as a PPTX archive.
func Bytes(t testing.TB, deck Deck) []byte {
	t.Helper()

	d := &deckBuilder{files: make(map[string][]byte)}

	d.add("[Content_Types].xml", []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/></Types>`))
	d.add("_rels/.rels", relsXML([]rel{{id: "rId1", typ: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument", target: "ppt/presentation.xml"}}))

	layouts := map[string]int{}
	var presRels []rel
	for i, s := range deck.Slides {
		n := i + 1
		b := &slideBuilder{deck: d, id: 1}

		if s.Layout != "" {
			li, ok := layouts[s.Layout]
			if !ok {
				li = len(layouts) + 1
				layouts[s.Layout] = li
				d.add(fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", li), []byte(fmt.Sprintf(
					`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><p:sldLayout xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld name="%s"><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree></p:cSld></p:sldLayout>`,
					nsA, nsR, nsP, esc(s.Layout))))
			}
			b.addRel(relSlideLayout, fmt.Sprintf("../slideLayouts/slideLayout%d.xml", li), false)
		}

		var tree strings.Builder
		for _, sh := range s.Shapes {
			tree.WriteString(sh.render(b))
		}

		if s.Notes != "" {
			b.addRel(relNotesSlide, fmt.Sprintf("../notesSlides/notesSlide%d.xml", n), false)
			d.add(fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n), []byte(notesXML(s.Notes)))
		}

		d.add(fmt.Sprintf("ppt/slides/slide%d.xml", n), []byte(fmt.Sprintf(
			`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>%s</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`,
			nsA, nsR, nsP, tree.String())))
		d.add(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), relsXML(b.rels))

		presRels = append(presRels, rel{id: fmt.Sprintf("rId%d", n), typ: relSlide, target: fmt.Sprintf("slides/slide%d.xml", n)})
	}

	order := deck.Order
	if len(order) == 0 {
		for i := range deck.Slides {
			order = append(order, i+1)
		}
	}
	var ids strings.Builder
	if !deck.OmitSlideIDList && len(order) > 0 {
		ids.WriteString(`<p:sldIdLst>`)
		for i, n := range order {
			fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, n)
		}
		ids.WriteString(`</p:sldIdLst>`)
	}
	d.add("ppt/presentation.xml", []byte(fmt.Sprintf(
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">%s<p:sldSz cx="9144000" cy="6858000"/></p:presentation>`,
		nsA, nsR, nsP, ids.String())))
	d.add("ppt/_rels/presentation.xml.rels", relsXML(presRels))

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range d.names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s in zip: %v", name, err)
		}
		if _, err := w.Write(d.files[name]); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

// Write renders the deck to path.
func Write(t testing.TB, path string, deck Deck) {
	t.Helper()
	if err := os.WriteFile(path, Bytes(t, deck), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func notesXML(text string) string {
	var paras strings.Builder
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(&paras, `<a:p><a:r><a:t>%s</a:t></a:r></a:p>`, esc(line))
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><p:notes xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`+
		`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/><p:cNvSpPr/><p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr><p:spPr/></p:sp>`+
		`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/><p:cNvSpPr/><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/>%s</p:txBody></p:sp>`+
		`</p:spTree></p:cSld></p:notes>`, nsA, nsR, nsP, paras.String())
}

func relsXML(rels []rel) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		mode := ""
		if r.external {
			mode = ` TargetMode="External"`
		}
		fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s" Target="%s"%s/>`, r.id, r.typ, esc(r.target), mode)
	}
	sb.WriteString(`</Relationships>`)
	return []byte(sb.String())
}

func esc(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

func sample() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	img.Set(1, 1, color.RGBA{B: 200, A: 255})
	return img
}

// PNG returns a small PNG image.
func PNG(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, sample()); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// JPEG returns a small JPEG image.
func JPEG(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, sample(), nil); err != nil {
		t.Fatalf("encoding jpeg: %v", err)
	}
	return buf.Bytes()
}

// GIF returns a small GIF image.
func GIF(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, sample(), nil); err != nil {
		t.Fatalf("encoding gif: %v", err)
	}
	return buf.Bytes()
}

// BMP returns a small BMP image.
func BMP(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, sample()); err != nil {
		t.Fatalf("encoding bmp: %v", err)
	}
	return buf.Bytes()
}
