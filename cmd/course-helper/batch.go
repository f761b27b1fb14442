package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-helper/internal/extract"
)

var batchCmd = &cobra.Command{
	Use:   "batch [decks or directories...]",
	Short: "Extract many decks into an output directory",
	Long: `Batch extracts every deck given on the command line; directories are
scanned (not recursively) for .pptx files. Each deck is written to
<out-dir>/<name>/<name>.json with its own images/ directory.

Decks whose output is newer than the deck are skipped unless --force is
given. With no arguments the current directory is scanned.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		keys := map[string]string{"out-dir": "batch.out_dir"}
		for k, v := range extractionKeys {
			keys[k] = v
		}
		return bindFlags(cmd, keys)
	},
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := batchConfig()
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	summary, err := extract.ExtractBatch(paths, cfg, force, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		summary.Extracted, summary.Skipped, summary.Failed, summary.Total())

	if summary.HasFailures() {
		return fmt.Errorf("%d deck(s) failed extraction", summary.Failed)
	}
	return nil
}

func init() {
	extractionFlags(batchCmd.Flags())
	batchCmd.Flags().String("out-dir", "extracted", "base directory for extraction output")
	batchCmd.Flags().Bool("force", false, "re-extract decks even when their output is up to date")

	rootCmd.AddCommand(batchCmd)
}
