package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-helper/internal/extract"
	"github.com/pdiddy/course-helper/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <input.pptx> [output]",
	Short: "Extract slide content from one deck",
	Long: `Extract reads a PPTX deck and produces one record per slide: its index,
classified type, title, body text, speaker notes, layout name and the
images it contains.

Without an output path the document is printed to stdout. Images are saved
to an images/ directory next to the output file, or next to the deck when
printing to stdout.`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		keys := map[string]string{"format": "extract.format"}
		for k, v := range extractionKeys {
			keys[k] = v
		}
		return bindFlags(cmd, keys)
	},
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := extractionConfig()
	if err != nil {
		return err
	}

	output := ""
	if len(args) > 1 {
		output = args[1]
	}

	_, err = extract.File(args[0], output, cfg, os.Stdout, os.Stderr)
	return err
}

// parseFormat validates a format name from flags or config.
func parseFormat(name string) (types.OutputFormat, error) {
	return extract.ParseFormat(name)
}

func init() {
	extractionFlags(extractCmd.Flags())
	extractCmd.Flags().String("format", string(types.FormatJSON), "output format: json, yaml, markdown or html")

	rootCmd.AddCommand(extractCmd)
}
