// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/course-helper/pkg/types"
)

// QueryOptions holds parameters for catalog queries.
type QueryOptions struct {
	// Query matches slides whose title, body or notes contain it,
	// case-insensitively.
	Query string

	// Type filters by slide type.
	Type types.SlideType

	// DeckID filters by deck.
	DeckID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Type == "" && q.DeckID == ""
}

// Retrieve returns catalog slides matching opts, ordered by deck then slide
// index.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.CatalogSlide, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(
		`SELECT deck_id, idx, type, title, body_text, notes, has_images, image_paths, layout_name
		FROM slides
		WHERE 1=1`)

	if q := strings.TrimSpace(opts.Query); q != "" {
		qb.WriteString(` AND search_text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(fold(q))+"%")
	}

	if opts.Type != "" {
		qb.WriteString(` AND type = ?`)
		args = append(args, string(opts.Type))
	}

	if opts.DeckID != "" {
		qb.WriteString(` AND deck_id = ?`)
		args = append(args, opts.DeckID)
	}

	qb.WriteString(` ORDER BY deck_id, idx LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	results := []types.CatalogSlide{}
	for rows.Next() {
		var (
			cs         types.CatalogSlide
			slideType  string
			bodyJSON   string
			imagesJSON string
		)

		if err := rows.Scan(
			&cs.DeckID, &cs.Index, &slideType, &cs.Title, &bodyJSON, &cs.Notes,
			&cs.HasImages, &imagesJSON, &cs.LayoutName,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		cs.Type = types.SlideType(slideType)
		if err := json.Unmarshal([]byte(bodyJSON), &cs.BodyText); err != nil {
			return nil, fmt.Errorf("decoding body text of %s slide %d: %w", cs.DeckID, cs.Index, err)
		}
		if err := json.Unmarshal([]byte(imagesJSON), &cs.ImagePaths); err != nil {
			return nil, fmt.Errorf("decoding image paths of %s slide %d: %w", cs.DeckID, cs.Index, err)
		}

		results = append(results, cs)
	}

	return results, rows.Err()
}

// Decks lists indexed decks in id order.
func (s *Store) Decks(ctx context.Context) ([]types.CatalogDeck, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_file, slide_count, result_path FROM decks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}
	defer rows.Close()

	decks := []types.CatalogDeck{}
	for rows.Next() {
		var d types.CatalogDeck
		if err := rows.Scan(&d.ID, &d.SourceFile, &d.SlideCount, &d.ResultPath); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// escapeLike escapes LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
