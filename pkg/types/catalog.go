// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CatalogDeck describes one indexed extraction result.
type CatalogDeck struct {
	// ID is the source file stem (e.g. "lecture03" for lecture03.pptx).
	ID string `json:"id" yaml:"id"`

	// SourceFile is the deck filename recorded in the extraction result.
	SourceFile string `json:"source_file" yaml:"source_file"`

	// SlideCount is the number of slides in the deck.
	SlideCount int `json:"slide_count" yaml:"slide_count"`

	// ResultPath is the extraction JSON file the deck was indexed from.
	ResultPath string `json:"result_path" yaml:"result_path"`
}

// CatalogSlide is a slide record stored in the catalog, keyed by deck and index.
type CatalogSlide struct {
	DeckID string `json:"deck_id" yaml:"deck_id"`
	SlideRecord `yaml:",inline"`
}
