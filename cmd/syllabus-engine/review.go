// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/syllabus-engine/internal/index"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List extracted syllabi that need human review",
	Long: `Review lists documents from the run index whose results were flagged:
the grading scheme does not sum to 100 within tolerance, or the overall
confidence is low. The lowest-confidence documents come first.`,
	RunE: runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"batch.syllabi_dir": "syllabi-dir",
		"index.dir":         "index-dir",
	}); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := index.NewStore(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	docs, err := store.ReviewQueue(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatReviewOutput(cmd.OutOrStdout(), docs, jsonOutput)
}

func formatReviewOutput(w io.Writer, docs []index.Document, jsonOutput bool) error {
	if jsonOutput {
		if docs == nil {
			docs = []index.Document{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	if len(docs) == 0 {
		fmt.Fprintln(w, "Nothing to review.")
		return nil
	}

	fmt.Fprintf(w, "%-30s  %-10s  %-10s  %-6s  %-11s  %-6s  %s\n",
		"Document", "Code", "Confidence", "Closed", "Assessments", "Total", "Meetings")
	fmt.Fprintln(w, strings.Repeat("-", 94))

	for _, d := range docs {
		id := d.ID
		if len(id) > 30 {
			id = id[:27] + "..."
		}
		code := d.CourseCode
		if code == "" {
			code = "-"
		}
		fmt.Fprintf(w, "%-30s  %-10s  %-10.2f  %-6t  %-11d  %-6.1f  %d\n",
			id, code, d.Confidence, d.SchemeClosed, d.AssessmentCount, d.AssessmentTotal, d.MeetingCount)
	}

	fmt.Fprintf(w, "\n%d documents need review\n", len(docs))
	return nil
}

func init() {
	reviewCmd.Flags().String("syllabi-dir", "syllabi", "base directory for syllabi (contains index/)")
	reviewCmd.Flags().String("index-dir", "", "directory for the run index (default: <syllabi-dir>/index)")
	reviewCmd.Flags().Bool("json", false, "output the review queue as JSON")

	rootCmd.AddCommand(reviewCmd)
}
