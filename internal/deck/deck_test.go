// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/course-helper/internal/deck/decktest"
)

func openDeck(t *testing.T, d decktest.Deck) *Presentation {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lecture.pptx")
	decktest.Write(t, path, d)
	p, err := Open(path)
	require.NoError(t, err)
	return p
}

func TestOpen_SlidesAndText(t *testing.T) {
	p := openDeck(t, decktest.Deck{Slides: []decktest.Slide{
		{
			Layout: "Title Slide",
			Shapes: []decktest.Shape{
				decktest.CenterTitle("CS101 Introduction"),
				decktest.Placeholder("subTitle", 1, "Fall term"),
			},
		},
		{
			Layout: "Title and Content",
			Shapes: []decktest.Shape{
				decktest.Title("Definition"),
				decktest.Body("Let X denote a set.", "", "Second line\nwith a break"),
			},
			Notes: "Remind students about homework.",
		},
	}})

	assert.Equal(t, "lecture.pptx", p.SourceFile)
	require.Len(t, p.Slides, 2)

	s1 := p.Slides[0]
	assert.Equal(t, 1, s1.Number)
	assert.Equal(t, "Title Slide", s1.LayoutName)
	assert.False(t, s1.HasNotes)
	assert.Equal(t, "", s1.Notes)
	require.Len(t, s1.Shapes, 2)

	title, ok := s1.Shapes[0].(*TextShape)
	require.True(t, ok)
	assert.True(t, title.IsTitle())
	assert.Equal(t, "ctrTitle", title.Placeholder.Type)
	assert.Equal(t, "CS101 Introduction", title.Text())

	sub, ok := s1.Shapes[1].(*TextShape)
	require.True(t, ok)
	assert.False(t, sub.IsTitle())

	s2 := p.Slides[1]
	assert.Equal(t, "Title and Content", s2.LayoutName)
	assert.True(t, s2.HasNotes)
	assert.Equal(t, "Remind students about homework.", s2.Notes)

	body, ok := s2.Shapes[1].(*TextShape)
	require.True(t, ok)
	assert.Equal(t, []string{"Let X denote a set.", "", "Second line\nwith a break"}, body.Paragraphs)
}

func TestOpen_SlideOrder(t *testing.T) {
	slides := []decktest.Slide{
		{Shapes: []decktest.Shape{decktest.Title("first part")}},
		{Shapes: []decktest.Shape{decktest.Title("second part")}},
		{Shapes: []decktest.Shape{decktest.Title("third part")}},
	}

	tests := []struct {
		name string
		deck decktest.Deck
		want []string
	}{
		{
			name: "slide id list order wins over part numbers",
			deck: decktest.Deck{Slides: slides, Order: []int{3, 1, 2}},
			want: []string{"third part", "first part", "second part"},
		},
		{
			name: "part numbers without slide id list",
			deck: decktest.Deck{Slides: slides, OmitSlideIDList: true},
			want: []string{"first part", "second part", "third part"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := openDeck(t, tt.deck)
			require.Len(t, p.Slides, len(tt.want))
			for i, s := range p.Slides {
				assert.Equal(t, i+1, s.Number)
				ts := s.Shapes[0].(*TextShape)
				assert.Equal(t, tt.want[i], ts.Text())
			}
		})
	}
}

func TestOpen_ShapeTreeOrderAndGroups(t *testing.T) {
	png := decktest.PNG(t)
	p := openDeck(t, decktest.Deck{Slides: []decktest.Slide{{
		Shapes: []decktest.Shape{
			decktest.Title("Shapes"),
			decktest.Picture(png, "png"),
			decktest.TextBox("caption"),
			decktest.Group(
				decktest.TextBox("inside"),
				decktest.Group(decktest.Picture(png, "png")),
			),
			decktest.Raw(`<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="90" name="Table"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr></p:graphicFrame>`),
		},
	}}})

	shapes := p.Slides[0].Shapes
	require.Len(t, shapes, 4, "graphic frames are not part of the model")
	assert.IsType(t, &TextShape{}, shapes[0])
	assert.IsType(t, &PictureShape{}, shapes[1])
	assert.IsType(t, &TextShape{}, shapes[2])

	group, ok := shapes[3].(*GroupShape)
	require.True(t, ok)
	require.Len(t, group.Shapes, 2)
	assert.IsType(t, &TextShape{}, group.Shapes[0])
	inner, ok := group.Shapes[1].(*GroupShape)
	require.True(t, ok)
	require.Len(t, inner.Shapes, 1)

	pic := inner.Shapes[0].(*PictureShape)
	img, err := pic.Image()
	require.NoError(t, err)
	assert.Equal(t, png, img.Blob)
	assert.Equal(t, "ppt/media/image2.png", img.PartName)
}

func TestOpen_UnavailablePictures(t *testing.T) {
	p := openDeck(t, decktest.Deck{Slides: []decktest.Slide{{
		Shapes: []decktest.Shape{
			decktest.LinkedPicture("https://example.com/figure.png"),
			decktest.BrokenPicture(),
		},
	}}})

	shapes := p.Slides[0].Shapes
	require.Len(t, shapes, 2)

	_, err := shapes[0].(*PictureShape).Image()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "linked")

	_, err = shapes[1].(*PictureShape).Image()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing part")
}

func TestOpen_EmptyShapeHasNoParagraphs(t *testing.T) {
	p := openDeck(t, decktest.Deck{Slides: []decktest.Slide{{
		Shapes: []decktest.Shape{decktest.EmptyShape()},
	}}})
	ts := p.Slides[0].Shapes[0].(*TextShape)
	assert.Empty(t, ts.Paragraphs)
	assert.Equal(t, "", ts.Text())
	assert.False(t, ts.IsTitle())
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	notZip := filepath.Join(dir, "notes.pptx")
	require.NoError(t, os.WriteFile(notZip, []byte("plain text"), 0o644))

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<document/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	wrongPkg := filepath.Join(dir, "report.pptx")
	require.NoError(t, os.WriteFile(wrongPkg, buf.Bytes(), 0o644))

	tests := []struct {
		name   string
		path   string
		errMsg string
	}{
		{name: "missing file", path: filepath.Join(dir, "absent.pptx"), errMsg: "opening presentation"},
		{name: "not a zip archive", path: notZip, errMsg: "opening presentation"},
		{name: "not a presentation package", path: wrongPkg, errMsg: "missing required part ppt/presentation.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRead_InMemory(t *testing.T) {
	data := decktest.Bytes(t, decktest.Deck{Slides: []decktest.Slide{
		{Shapes: []decktest.Shape{decktest.Title("Only slide")}},
	}})
	p, err := Read(bytes.NewReader(data), int64(len(data)), "memory.pptx")
	require.NoError(t, err)
	assert.Equal(t, "memory.pptx", p.SourceFile)
	require.Len(t, p.Slides, 1)
}

func TestImageExt(t *testing.T) {
	tests := []struct {
		name    string
		img     Image
		want    string
		wantErr bool
	}{
		{name: "png bytes", img: Image{PartName: "ppt/media/image1.png", Blob: decktest.PNG(t)}, want: "png"},
		{name: "jpeg normalized to jpg", img: Image{PartName: "ppt/media/image1.jpeg", Blob: decktest.JPEG(t)}, want: "jpg"},
		{name: "gif bytes", img: Image{PartName: "ppt/media/image1.gif", Blob: decktest.GIF(t)}, want: "gif"},
		{name: "bmp bytes", img: Image{PartName: "ppt/media/image1.bmp", Blob: decktest.BMP(t)}, want: "bmp"},
		{name: "format sniffed over part extension", img: Image{PartName: "ppt/media/image1.png", Blob: decktest.JPEG(t)}, want: "jpg"},
		{name: "metafile falls back to part extension", img: Image{PartName: "ppt/media/image1.EMF", Blob: []byte{0x01, 0x00, 0x00, 0x00}}, want: "emf"},
		{name: "corrupt raster is an error", img: Image{PartName: "ppt/media/image1.png", Blob: []byte("nope")}, wantErr: true},
		{name: "no extension and unknown bytes", img: Image{PartName: "ppt/media/blob", Blob: []byte("nope")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.img.Ext()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
