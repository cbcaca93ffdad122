// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the litgraph CLI. The engine
// resolves bibliographic submissions to stable local identifiers,
// accumulates their metadata, and maintains the citation graph; the
// CLI surfaces ingestion, graph maintenance, and review operations.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/litgraph/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the litgraph CLI.
var rootCmd = &cobra.Command{
	Use:   "litgraph",
	Short: "Identity resolution and citation graph for literature records",
	Long: `litgraph ingests bibliographic submissions, deduplicates them into
records with stable local identifiers (LIDs), accumulates metadata from
multiple extraction sources under a priority model, and maintains a
citation graph in which not-yet-ingested works appear as placeholder
nodes until they arrive.

Each operation is a subcommand: ingest reads submissions from YAML,
graph maintains and inspects the citation graph, and review lists
near-duplicate matches waiting for a human decision.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./litgraph.yaml or ~/.config/litgraph/config.yaml)")
	rootCmd.PersistentFlags().String("store", "", "database file (default: litgraph.db)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("litgraph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "litgraph"))
		}
	}

	viper.SetEnvPrefix("LITGRAPH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// engineConfig builds the engine configuration from defaults, config
// file, and flags, in increasing order of precedence.
func engineConfig(cmd *cobra.Command) types.EngineConfig {
	cfg := types.DefaultEngineConfig()

	if v := viper.GetFloat64("matching.title_threshold"); v != 0 {
		cfg.Matching.TitleThreshold = v
	}
	if v := viper.GetFloat64("matching.author_threshold"); v != 0 {
		cfg.Matching.AuthorThreshold = v
	}
	if viper.IsSet("matching.review_margin") {
		cfg.Matching.ReviewMargin = viper.GetFloat64("matching.review_margin")
	}
	if v := viper.GetInt("lid.max_attempts"); v != 0 {
		cfg.LID.MaxAttempts = v
	}
	if v := viper.GetString("store.path"); v != "" {
		cfg.Store.Path = v
	}
	if v := viper.GetStringSlice("accumulator.expected_fields"); len(v) > 0 {
		cfg.Accumulator.ExpectedFields = v
	}
	if v := viper.GetInt("accumulator.submission_priority"); v != 0 {
		cfg.Accumulator.SubmissionPriority = v
	}
	if v := viper.GetInt("pipeline.workers"); v != 0 {
		cfg.Pipeline.Workers = v
	}

	if storePath, _ := cmd.Flags().GetString("store"); storePath != "" {
		cfg.Store.Path = storePath
	}
	return cfg
}

// newLogger builds the CLI logger: human-readable, debug level when
// --verbose is set.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zcfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
