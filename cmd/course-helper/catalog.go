// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/course-helper/internal/catalog"
	"github.com/pdiddy/course-helper/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Index and search extracted slides (store, search, export)",
	Long: `Catalog manages a local SQLite index of extraction results. Use
subcommands to index results, search slides across decks, or export.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"catalog-dir": "catalog.dir",
			"max-results": "catalog.max_results",
		})
	},
}

// --- store subcommand ---

var catalogStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Index extraction results into the catalog",
	Long: `Store reads every extraction JSON file under --extracted-dir
(recursively) and indexes its slides into catalog/index/slides.db.
Unchanged files are skipped on subsequent runs.`,
	RunE: runCatalogStore,
}

func runCatalogStore(cmd *cobra.Command, args []string) error {
	extractedDir, _ := cmd.Flags().GetString("extracted-dir")
	if extractedDir == "" {
		extractedDir = viper.GetString("batch.out_dir")
	}

	store, err := catalog.NewStore(catalogConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), extractedDir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d result file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search catalog slides by text, type and deck",
	Long: `Search returns slides whose title, body text or notes contain the
query (case-insensitive), optionally filtered by slide type and deck.
Results are ordered by deck and slide index.`,
	RunE: runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	opts, err := queryOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --type, or --deck")
	}

	store, err := catalog.NewStore(catalogConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []types.CatalogSlide, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-5s  %-15s  %s\n", "Deck", "Slide", "Type", "Title")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))

	for _, r := range results {
		deck := r.DeckID
		if len(deck) > 20 {
			deck = deck[:17] + "..."
		}
		title := r.Title
		if title == "" && len(r.BodyText) > 0 {
			title = r.BodyText[0]
		}
		if runes := []rune(title); len(runes) > 40 {
			title = string(runes[:37]) + "..."
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-5d  %-15s  %s\n", deck, r.Index, r.Type, title)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export catalog slides to YAML or JSON",
	Long: `Export writes the catalog (or a filtered subset) to
catalog/index/export.yaml or export.json. Supports the same filter flags
as search for partial exports.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	opts, err := queryOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}

	store, err := catalog.NewStore(catalogConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background(), opts)
	case "json":
		path, err = store.ExportJSON(context.Background(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

func catalogConfig() types.CatalogConfig {
	return types.CatalogConfig{
		Dir:        viper.GetString("catalog.dir"),
		MaxResults: viper.GetInt("catalog.max_results"),
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) (catalog.QueryOptions, error) {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	slideType, _ := cmd.Flags().GetString("type")
	deckID, _ := cmd.Flags().GetString("deck")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := catalog.QueryOptions{
		Query:      queryText,
		Type:       types.SlideType(slideType),
		DeckID:     deckID,
		MaxResults: limit,
	}
	if opts.Type != "" && !opts.Type.Valid() {
		return opts, fmt.Errorf("unknown slide type %q", slideType)
	}
	return opts, nil
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("catalog-dir", "catalog", "base directory for the catalog (contains index/)")
	catalogCmd.PersistentFlags().Int("max-results", types.DefaultMaxResults, "maximum number of search results")

	catalogStoreCmd.Flags().String("extracted-dir", "", "directory of extraction results (default: batch.out_dir)")

	// Search flags.
	catalogSearchCmd.Flags().String("query", "", "text to search for in titles, body text and notes")
	catalogSearchCmd.Flags().String("type", "", "filter by slide type, e.g. definition or theorem")
	catalogSearchCmd.Flags().String("deck", "", "filter by deck ID (the deck filename without extension)")
	catalogSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogSearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().String("query", "", "text filter for partial export")
	catalogExportCmd.Flags().String("type", "", "filter by slide type for partial export")
	catalogExportCmd.Flags().String("deck", "", "filter by deck ID for partial export")
	catalogExportCmd.Flags().Int("limit", 0, "maximum slides to export (0 = all)")

	catalogCmd.AddCommand(catalogStoreCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
