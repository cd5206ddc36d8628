// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/syllabus-engine/internal/extract"
	"github.com/pdiddy/syllabus-engine/internal/index"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract every syllabus in a directory",
	Long: `Batch reads syllabi/text/*.txt, writes one YAML result per document to
syllabi/extracted/, and records the run in the SQLite index under
syllabi/index/. Documents whose content is unchanged since the last run are
skipped unless --force is given.`,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"batch.syllabi_dir":            "syllabi-dir",
		"batch.workers":                "workers",
		"batch.force":                  "force",
		"index.dir":                    "index-dir",
		"extraction.tolerance":         "tolerance",
		"extraction.percent_precision": "precision",
	}); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var idx *index.Store
	if noIndex, _ := cmd.Flags().GetBool("no-index"); !noIndex {
		idx, err = index.NewStore(cfg.Index)
		if err != nil {
			return err
		}
		defer idx.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := extract.NewPipeline(cfg.Extraction, logger)
	summary, err := extract.ExtractAll(ctx, p, cfg.Batch, idx, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed extraction", summary.Failed)
	}
	return nil
}

func init() {
	batchCmd.Flags().String("syllabi-dir", "syllabi", "base directory for syllabi (contains text/, extracted/, index/)")
	batchCmd.Flags().Int("workers", 0, "documents processed in parallel (0 = GOMAXPROCS)")
	batchCmd.Flags().Bool("force", false, "re-extract documents whose content is unchanged")
	batchCmd.Flags().String("index-dir", "", "directory for the run index (default: <syllabi-dir>/index)")
	batchCmd.Flags().Bool("no-index", false, "skip the run index and compare file times instead")
	batchCmd.Flags().Float64("tolerance", 2, "allowed deviation from 100 for a closed grading scheme")
	batchCmd.Flags().Int("precision", 0, "decimals kept when points convert to percents")

	rootCmd.AddCommand(batchCmd)
}
