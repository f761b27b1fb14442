// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/course-helper/internal/deck"
	"github.com/pdiddy/course-helper/pkg/types"
)

// dividerMaxRunes is the combined text length below which a titled slide is
// treated as a section divider.
const dividerMaxRunes = 30

// signalRule pairs a slide type with the substrings that indicate it.
type signalRule struct {
	Type    types.SlideType
	Signals []string
}

// signalTable is scanned in order; the first type with a matching signal
// wins, so the order resolves slides that match several types.
var signalTable = []signalRule{
	{types.SlideTitle, []string{"course", "lecture", "instructor", "cuhk", "university"}},
	{types.SlideOutline, []string{"outline", "agenda", "contents", "today", "topics"}},
	{types.SlideDefinition, []string{"definition", "def.", "let ", "denote", "we say"}},
	{types.SlideTheorem, []string{"theorem", "lemma", "corollary", "proposition"}},
	{types.SlideProof, []string{"proof:", "proof of", "pf."}},
	{types.SlideExample, []string{"example", "ex.", "illustration"}},
	{types.SlideExercise, []string{"exercise", "problem", "homework", "hw"}},
	{types.SlideRemark, []string{"remark", "note:", "observation"}},
	{types.SlideAlgorithm, []string{"algorithm", "pseudocode", "procedure"}},
	{types.SlideSectionDivider, nil}, // detected by length, not signals
	{types.SlideSummary, []string{"summary", "takeaway", "conclusion", "recap"}},
	{types.SlideReference, []string{"references", "bibliography", "citation"}},
}

// ClassifySlide returns the slide type for a slide's title and body text at
// the given zero-based deck position. Matching is case-insensitive substring
// search, so "def." also matches inside longer words.
func ClassifySlide(title, body string, position int) types.SlideType {
	if position == 0 {
		return types.SlideTitle
	}

	// A Caser is stateful and must not be shared.
	lower := cases.Lower(language.Und)
	title = lower.String(title)
	combined := title + " " + lower.String(body)

	if utf8.RuneCountInString(strings.TrimSpace(combined)) < dividerMaxRunes && title != "" {
		return types.SlideSectionDivider
	}

	for _, rule := range signalTable {
		for _, signal := range rule.Signals {
			if strings.Contains(combined, signal) {
				return rule.Type
			}
		}
	}
	return types.SlideContent
}

// classificationText collects the text ClassifySlide reads from a slide's
// top-level text shapes: the trimmed title placeholder text (the last one
// wins) and every other shape's trimmed text, each prefixed by a space.
// Pictures and groups contribute nothing.
func classificationText(slide *deck.Slide) (title, body string) {
	var b strings.Builder
	for _, sh := range slide.Shapes {
		ts, ok := sh.(*deck.TextShape)
		if !ok {
			continue
		}
		text := strings.TrimSpace(ts.Text())
		if ts.IsTitle() {
			title = text
			continue
		}
		b.WriteString(" ")
		b.WriteString(text)
	}
	return title, b.String()
}
