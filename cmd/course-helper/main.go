// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the course-helper CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/course-helper/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the course-helper CLI.
var rootCmd = &cobra.Command{
	Use:   "course-helper",
	Short: "Extract structured content from lecture slide decks",
	Long: `course-helper turns PPTX lecture decks into structured JSON: one record
per slide with its classified type (title, definition, theorem, ...), title,
body text, speaker notes and extracted images.

Use extract for a single deck, batch for many, watch to keep a directory of
decks extracted as they change, and catalog to index and search the results.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./course-helper.yaml or ~/.config/course-helper/config.yaml)")
}

func initConfig() {
	// A missing .env is not an error.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("course-helper")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "course-helper"))
		}
	}

	viper.SetDefault("extract.images_dir", types.DefaultImagesDirName)
	viper.SetDefault("extract.max_group_depth", types.DefaultMaxGroupDepth)
	viper.SetDefault("extract.format", string(types.FormatJSON))
	viper.SetDefault("batch.out_dir", "extracted")
	viper.SetDefault("watch.debounce", types.DefaultDebounce)
	viper.SetDefault("catalog.dir", "catalog")
	viper.SetDefault("catalog.max_results", types.DefaultMaxResults)

	viper.SetEnvPrefix("COURSE_HELPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags binds command flags to config keys. It runs when the command
// runs, so commands sharing a key do not override each other's binding.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", flag)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}
	return nil
}

// extractionFlags registers the flags shared by extract, batch and watch.
func extractionFlags(fs *pflag.FlagSet) {
	fs.String("images-dir", types.DefaultImagesDirName, "name of the image directory created next to the output")
	fs.Int("max-group-depth", types.DefaultMaxGroupDepth, "maximum nesting of group shapes searched for pictures")
}

var extractionKeys = map[string]string{
	"images-dir":      "extract.images_dir",
	"max-group-depth": "extract.max_group_depth",
}

// extractionConfig reads extraction settings from config, env and flags.
func extractionConfig() (types.ExtractionConfig, error) {
	format, err := parseFormat(viper.GetString("extract.format"))
	if err != nil {
		return types.ExtractionConfig{}, err
	}
	return types.ExtractionConfig{
		ImagesDirName: viper.GetString("extract.images_dir"),
		MaxGroupDepth: viper.GetInt("extract.max_group_depth"),
		Format:        format,
	}.WithDefaults(), nil
}

func batchConfig() (types.BatchConfig, error) {
	ec, err := extractionConfig()
	if err != nil {
		return types.BatchConfig{}, err
	}
	return types.BatchConfig{
		ExtractionConfig: ec,
		OutDir:           viper.GetString("batch.out_dir"),
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
