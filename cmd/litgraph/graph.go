// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litgraph/internal/pipeline"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect and maintain the citation graph",
	Long: `Graph operates on the stored citation graph. Use subcommands to
show summary statistics, list the edges of a record, or sweep
placeholder nodes that lost their last citer.`,
}

// --- stats subcommand ---

var graphStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show record, placeholder, and edge counts",
	RunE:  runGraphStats,
}

func runGraphStats(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	counts, err := engine.Store().Counts(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(counts)
	}

	fmt.Fprintf(os.Stdout, "Records:        %d\n", counts.Records)
	fmt.Fprintf(os.Stdout, "Placeholders:   %d\n", counts.Placeholders)
	fmt.Fprintf(os.Stdout, "Edges:          %d\n", counts.Edges)
	fmt.Fprintf(os.Stdout, "Pending review: %d\n", counts.PendingReview)
	return nil
}

// --- edges subcommand ---

var graphEdgesCmd = &cobra.Command{
	Use:   "edges <lid>",
	Short: "List the outgoing and inbound edges of a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphEdges,
}

func runGraphEdges(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := context.Background()
	lid := args[0]

	outgoing, err := engine.Store().EdgesFrom(ctx, lid)
	if err != nil {
		return err
	}
	inbound, err := engine.Store().EdgesTo(ctx, lid)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Outgoing edges of %s: %d\n", lid, len(outgoing))
	for _, e := range outgoing {
		fmt.Fprintf(os.Stdout, "  -> %s (%s, confidence %.2f, via %s)\n",
			e.ToKey, e.ToKind, e.Confidence, e.Source)
	}
	fmt.Fprintf(os.Stdout, "Inbound edges of %s: %d\n", lid, len(inbound))
	for _, e := range inbound {
		fmt.Fprintf(os.Stdout, "  <- %s (confidence %.2f, via %s)\n",
			e.FromLID, e.Confidence, e.Source)
	}
	return nil
}

// --- sweep subcommand ---

var graphSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete placeholder nodes with no remaining citers",
	Long: `Sweep removes placeholder nodes whose last inbound edge has
disappeared. A placeholder that is still cited is never touched.`,
	RunE: runGraphSweep,
}

func runGraphSweep(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	summary, err := engine.SweepOrphans(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Examined %d orphan(s): %d deleted, %d kept\n",
		summary.Examined, summary.Deleted, summary.Kept)
	return nil
}

// --- review subcommand ---

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List near-duplicate matches waiting for manual review",
	Long: `Review lists submissions that scored inside the ambiguity band
around the matching thresholds. Each was kept as its own record; a
human decides whether to merge it with the flagged candidate.`,
	RunE: runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	flags, err := engine.Store().PendingReviewFlags(context.Background())
	if err != nil {
		return err
	}

	if len(flags) == 0 {
		fmt.Println("No matches pending review.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-38s  %-40s  %-24s  %-6s  %s\n",
		"ID", "Title", "Candidate", "Title", "Authors")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 118))
	for _, f := range flags {
		title := f.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-38s  %-40s  %-24s  %.3f  %.3f\n",
			f.ID, title, f.CandidateLID, f.TitleScore, f.AuthorScore)
	}
	fmt.Fprintf(os.Stdout, "\n%d match(es) pending review\n", len(flags))
	return nil
}

// openEngine assembles the engine for read-side and maintenance
// commands.
func openEngine(cmd *cobra.Command) (*pipeline.Engine, error) {
	log, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	return pipeline.New(engineConfig(cmd), log)
}

func init() {
	graphStatsCmd.Flags().Bool("json", false, "output counts as JSON")

	graphCmd.AddCommand(graphStatsCmd)
	graphCmd.AddCommand(graphEdgesCmd)
	graphCmd.AddCommand(graphSweepCmd)

	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(reviewCmd)
}
