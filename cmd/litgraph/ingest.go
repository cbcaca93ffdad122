// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	yaml "go.yaml.in/yaml/v3"

	"github.com/pdiddy/litgraph/internal/pipeline"
	"github.com/pdiddy/litgraph/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest bibliographic submissions from YAML files",
	Long: `Ingest reads submission YAML files (each holding a list of
submissions), resolves every entry to a record, accumulates its
metadata, and links its references into the citation graph. Duplicate
submissions merge into existing records; a failed submission is
reported and skipped, not fatal to the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := engineConfig(cmd)
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Pipeline.Workers = workers
	}
	engine, err := pipeline.New(cfg, log)
	if err != nil {
		return err
	}
	defer engine.Close()

	var subs []types.Submission
	for _, path := range args {
		fileSubs, err := readSubmissions(path)
		if err != nil {
			return err
		}
		subs = append(subs, fileSubs...)
	}
	if len(subs) == 0 {
		return fmt.Errorf("no submissions found in %d file(s)", len(args))
	}

	summary, err := engine.IngestBatch(context.Background(), subs)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Ingested %d submission(s): %d created, %d matched, %d flagged, %d failed\n",
		summary.Total(), summary.Created, summary.Matched, summary.Flagged, summary.Failed)
	if summary.HasFailures() {
		return fmt.Errorf("%d submission(s) failed", summary.Failed)
	}
	return nil
}

// readSubmissions parses one YAML file holding a submission list.
func readSubmissions(path string) ([]types.Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var subs []types.Submission
	if err := yaml.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return subs, nil
}

func init() {
	ingestCmd.Flags().Int("workers", 0, "parallel ingestion workers (0 = config default)")
	rootCmd.AddCommand(ingestCmd)
}
