package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/course-helper/internal/watch"
	"github.com/pdiddy/course-helper/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-extract decks in a directory whenever they change",
	Long: `Watch extracts every deck in a directory (skipping up-to-date ones), then
waits for .pptx files to be created or saved and extracts them again once
the directory has been quiet for the debounce interval. Office lock files
(~$name.pptx) and hidden files are ignored. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		keys := map[string]string{
			"out-dir":  "batch.out_dir",
			"debounce": "watch.debounce",
		}
		for k, v := range extractionKeys {
			keys[k] = v
		}
		return bindFlags(cmd, keys)
	},
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	bc, err := batchConfig()
	if err != nil {
		return err
	}

	cfg := types.WatchConfig{
		BatchConfig: bc,
		Dir:         args[0],
		Debounce:    viper.GetDuration("watch.debounce"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watch.New(cfg, os.Stdout, os.Stderr).Run(ctx)
}

func init() {
	extractionFlags(watchCmd.Flags())
	watchCmd.Flags().String("out-dir", "extracted", "base directory for extraction output")
	watchCmd.Flags().Duration("debounce", types.DefaultDebounce, "quiet period before changed decks are extracted")

	rootCmd.AddCommand(watchCmd)
}
