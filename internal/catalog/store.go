// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog indexes extraction results in SQLite so slides can be
// searched across decks by text, type and deck.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/course-helper/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "slides.db"
)

// Store manages the slide catalog database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the catalog at cfg.Dir/index/slides.db and
// creates the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = types.DefaultMaxResults
	}

	s := &Store{
		db:         db,
		dir:        cfg.Dir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS decks (
			id TEXT PRIMARY KEY,
			source_file TEXT NOT NULL,
			slide_count INTEGER NOT NULL,
			result_path TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS slides (
			deck_id TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			body_text TEXT NOT NULL,
			notes TEXT NOT NULL,
			has_images INTEGER NOT NULL,
			image_paths TEXT NOT NULL,
			layout_name TEXT NOT NULL,
			search_text TEXT NOT NULL,
			PRIMARY KEY (deck_id, idx)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_slides_type ON slides(type)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			deck_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from a catalog indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of result files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// HasFailures reports whether any result file failed to index.
func (s IngestSummary) HasFailures() bool {
	return s.Failed > 0
}

// Ingest indexes every extraction result (*.json) found under extractedDir,
// recursively. Files whose modification time matches the stored one are
// skipped; changed files replace the deck's slides. When anything changed,
// export.yaml is rewritten.
func (s *Store) Ingest(ctx context.Context, extractedDir string, w io.Writer) (IngestSummary, error) {
	files, err := resultFiles(extractedDir)
	if err != nil {
		return IngestSummary{}, err
	}

	var summary IngestSummary

	for _, path := range files {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		deckID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", deckID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE deck_id = ?`, deckID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", deckID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		result, err := readResult(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", deckID, err)
			summary.Failed++
			continue
		}

		if err := s.ingestDeck(ctx, deckID, path, result, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", deckID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d slides)\n", deckID, len(result.Slides))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d slides)\n", deckID, len(result.Slides))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if _, err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

// resultFiles lists *.json files under dir in path order.
func resultFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading extraction directory %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// readResult parses an extraction result and rejects JSON that is not one.
func readResult(path string) (*types.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var result types.ExtractionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if result.SourceFile == "" {
		return nil, fmt.Errorf("not an extraction result (no source_file)")
	}
	for _, slide := range result.Slides {
		if !slide.Type.Valid() {
			return nil, fmt.Errorf("slide %d has unknown type %q", slide.Index, slide.Type)
		}
	}
	return &result, nil
}

func (s *Store) ingestDeck(ctx context.Context, deckID, path string, result *types.ExtractionResult, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM slides WHERE deck_id = ?`, deckID); err != nil {
		return fmt.Errorf("deleting old slides: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO decks (id, source_file, slide_count, result_path)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			source_file=excluded.source_file, slide_count=excluded.slide_count,
			result_path=excluded.result_path`,
		deckID, result.SourceFile, result.SlideCount, path,
	)
	if err != nil {
		return fmt.Errorf("upserting deck: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO slides (deck_id, idx, type, title, body_text, notes, has_images, image_paths, layout_name, search_text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, slide := range result.Slides {
		bodyJSON, _ := json.Marshal(nonNil(slide.BodyText))
		imagesJSON, _ := json.Marshal(nonNil(slide.ImagePaths))
		_, err := stmt.ExecContext(ctx,
			deckID, slide.Index, string(slide.Type), slide.Title,
			string(bodyJSON), slide.Notes, slide.HasImages, string(imagesJSON),
			slide.LayoutName, searchText(slide),
		)
		if err != nil {
			return fmt.Errorf("inserting slide %d: %w", slide.Index, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (deck_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(deck_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		deckID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// searchText is the lowercased text a query is matched against.
func searchText(slide types.SlideRecord) string {
	parts := append([]string{slide.Title}, slide.BodyText...)
	parts = append(parts, slide.Notes)
	return fold(strings.Join(parts, "\n"))
}

// fold lowercases with full Unicode case mapping.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
