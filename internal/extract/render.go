// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/russross/blackfriday/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/course-helper/pkg/types"
)

// ParseFormat validates an output format name. An empty name selects json.
func ParseFormat(name string) (types.OutputFormat, error) {
	switch f := types.OutputFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return types.FormatJSON, nil
	case types.FormatJSON, types.FormatYAML, types.FormatMarkdown, types.FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json, yaml, markdown or html)", name)
	}
}

// Render writes result to w in the given format.
func Render(w io.Writer, result *types.ExtractionResult, format types.OutputFormat) error {
	switch format {
	case types.FormatJSON, "":
		return FormatJSON(w, result)
	case types.FormatYAML:
		return FormatYAML(w, result)
	case types.FormatMarkdown:
		_, err := io.WriteString(w, markdownOutline(result))
		return err
	case types.FormatHTML:
		_, err := w.Write(blackfriday.Run([]byte(markdownOutline(result))))
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// FormatJSON writes the result as two-space indented JSON. Non-ASCII and
// HTML-significant characters are written literally.
func FormatJSON(w io.Writer, result *types.ExtractionResult) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// FormatYAML writes the result as YAML with the same field names as JSON.
func FormatYAML(w io.Writer, result *types.ExtractionResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return nil
}

// markdownOutline renders a readable outline of the deck: a heading per
// slide with its type, body lines as bullets, notes as a blockquote and
// image links.
func markdownOutline(result *types.ExtractionResult) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", result.SourceFile)
	fmt.Fprintf(&b, "%d slides\n", result.SlideCount)

	for _, s := range result.Slides {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&b, "\n## %d. %s\n\n", s.Index, title)
		fmt.Fprintf(&b, "*%s*", s.Type)
		if s.LayoutName != "" {
			fmt.Fprintf(&b, " (layout: %s)", s.LayoutName)
		}
		b.WriteString("\n")

		if len(s.BodyText) > 0 {
			b.WriteString("\n")
			for _, line := range s.BodyText {
				fmt.Fprintf(&b, "- %s\n", strings.ReplaceAll(line, "\n", " "))
			}
		}

		if len(s.ImagePaths) > 0 {
			b.WriteString("\n")
			for _, p := range s.ImagePaths {
				fmt.Fprintf(&b, "![%s](%s)\n", p, p)
			}
		}

		if s.Notes != "" {
			b.WriteString("\n")
			for _, line := range strings.Split(s.Notes, "\n") {
				fmt.Fprintf(&b, "> %s\n", line)
			}
		}
	}
	return b.String()
}
