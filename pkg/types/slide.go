// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SlideType is the rhetorical role assigned to a slide by keyword heuristics.
type SlideType string

const (
	SlideTitle          SlideType = "title"
	SlideOutline        SlideType = "outline"
	SlideDefinition     SlideType = "definition"
	SlideTheorem        SlideType = "theorem"
	SlideProof          SlideType = "proof"
	SlideExample        SlideType = "example"
	SlideExercise       SlideType = "exercise"
	SlideRemark         SlideType = "remark"
	SlideAlgorithm      SlideType = "algorithm"
	SlideSectionDivider SlideType = "section_divider"
	SlideSummary        SlideType = "summary"
	SlideReference      SlideType = "reference"
	SlideContent        SlideType = "content"
)

// SlideTypes lists every SlideType in classification table order, with the
// content fallback last.
var SlideTypes = []SlideType{
	SlideTitle, SlideOutline, SlideDefinition, SlideTheorem, SlideProof,
	SlideExample, SlideExercise, SlideRemark, SlideAlgorithm,
	SlideSectionDivider, SlideSummary, SlideReference, SlideContent,
}

// Valid reports whether t is one of the known slide types.
func (t SlideType) Valid() bool {
	for _, known := range SlideTypes {
		if t == known {
			return true
		}
	}
	return false
}

// SlideRecord is the normalized output for one slide. Records are built once
// during extraction and never mutated afterwards.
type SlideRecord struct {
	// Index is the 1-based position of the slide in the deck.
	Index int `json:"index" yaml:"index"`

	// Type is the classified rhetorical role.
	Type SlideType `json:"type" yaml:"type"`

	// Title is the trimmed text of the title placeholder, or "".
	Title string `json:"title" yaml:"title"`

	// BodyText holds non-empty paragraphs of every non-title text shape,
	// in shape order then paragraph order.
	BodyText []string `json:"body_text" yaml:"body_text"`

	// Notes is the trimmed speaker-notes text, or "" when the slide has none.
	Notes string `json:"notes" yaml:"notes"`

	// HasImages is true when images were saved or the slide carries a
	// top-level picture that could not be saved.
	HasImages bool `json:"has_images" yaml:"has_images"`

	// ImagePaths are relative paths of saved images ("images/slide_01_img_01.png").
	ImagePaths []string `json:"image_paths" yaml:"image_paths"`

	// LayoutName is the name of the slide layout, possibly empty.
	LayoutName string `json:"layout_name" yaml:"layout_name"`
}

// ExtractionResult is the document written for one deck.
type ExtractionResult struct {
	// SourceFile is the deck filename without directories.
	SourceFile string `json:"source_file" yaml:"source_file"`

	// SlideCount is the number of entries in Slides.
	SlideCount int `json:"slide_count" yaml:"slide_count"`

	// ImagesDir is the absolute path of the directory images were written to.
	ImagesDir string `json:"images_dir" yaml:"images_dir"`

	// Slides holds one record per slide in deck order.
	Slides []SlideRecord `json:"slides" yaml:"slides"`
}

// ImageCount returns the total number of saved images across all slides.
func (r *ExtractionResult) ImageCount() int {
	n := 0
	for _, s := range r.Slides {
		n += len(s.ImagePaths)
	}
	return n
}
