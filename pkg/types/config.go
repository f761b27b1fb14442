// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// OutputFormat selects how an extraction result is rendered.
type OutputFormat string

const (
	FormatJSON     OutputFormat = "json"
	FormatYAML     OutputFormat = "yaml"
	FormatMarkdown OutputFormat = "markdown"
	FormatHTML     OutputFormat = "html"
)

// ExtractionConfig holds settings for slide content extraction.
type ExtractionConfig struct {
	// ImagesDirName is the name of the image directory created next to the
	// output document (default "images").
	ImagesDirName string `json:"images_dir" yaml:"images_dir" mapstructure:"images_dir"`

	// MaxGroupDepth bounds recursion into nested group shapes (default 32).
	MaxGroupDepth int `json:"max_group_depth" yaml:"max_group_depth" mapstructure:"max_group_depth"`

	// Format selects the renderer for the result (default json).
	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format"`
}

// BatchConfig holds settings for extracting many decks at once.
type BatchConfig struct {
	ExtractionConfig `yaml:",inline" mapstructure:",squash"`

	// OutDir is the base directory; each deck gets OutDir/<stem>/<stem>.json.
	OutDir string `json:"out_dir" yaml:"out_dir" mapstructure:"out_dir"`
}

// WatchConfig holds settings for the directory watcher.
type WatchConfig struct {
	BatchConfig `yaml:",inline" mapstructure:",squash"`

	// Dir is the directory watched for .pptx files.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Debounce is how long to wait after a change before extracting (default 2s).
	Debounce time.Duration `json:"debounce" yaml:"debounce" mapstructure:"debounce"`
}

// CatalogConfig holds settings for the slide catalog.
type CatalogConfig struct {
	// Dir is the catalog base directory (contains index/).
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// Defaults used when configuration leaves a value unset.
const (
	DefaultImagesDirName = "images"
	DefaultMaxGroupDepth = 32
	DefaultDebounce      = 2 * time.Second
	DefaultMaxResults    = 20
)

// WithDefaults returns a copy of c with unset fields filled in.
func (c ExtractionConfig) WithDefaults() ExtractionConfig {
	if c.ImagesDirName == "" {
		c.ImagesDirName = DefaultImagesDirName
	}
	if c.MaxGroupDepth <= 0 {
		c.MaxGroupDepth = DefaultMaxGroupDepth
	}
	if c.Format == "" {
		c.Format = FormatJSON
	}
	return c
}
