// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/syllabus-engine/internal/index"
	"github.com/pdiddy/syllabus-engine/pkg/types"
)

const (
	textDir      = "text"
	extractedDir = "extracted"
)

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
	Review    int
}

// Total returns the number of documents processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any documents failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractAll runs p over every .txt file in cfg.SyllabiDir/text/ and writes
// one YAML result per document to cfg.SyllabiDir/extracted/. Documents are
// processed by cfg.Workers goroutines. When idx is non-nil, documents whose
// content hash matches the last recorded extraction are skipped unless
// cfg.Force is set, and the run and its results are recorded; without an
// index a document is skipped when its output is newer than its text.
//
// Per-document failures are counted and reported on w; the returned error is
// reserved for setup failures and cancellation.
func ExtractAll(ctx context.Context, p *Pipeline, cfg types.BatchConfig, idx *index.Store, w io.Writer) (BatchSummary, error) {
	inDir := filepath.Join(cfg.SyllabiDir, textDir)
	outDir := filepath.Join(cfg.SyllabiDir, extractedDir)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	entries, err := os.ReadDir(inDir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading text directory %s: %w", inDir, err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".txt") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	runID := ""
	if idx != nil {
		if runID, err = idx.BeginRun(ctx); err != nil {
			return BatchSummary{}, err
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu      sync.Mutex
		summary BatchSummary
	)
	report := func(update func(*BatchSummary), format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		update(&summary)
		fmt.Fprintf(w, format, args...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, name := range names {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docID := strings.TrimSuffix(name, ".txt")
			outPath := filepath.Join(outDir, docID+".yaml")

			doc, err := ReadDocument(filepath.Join(inDir, name), "")
			if err != nil {
				report(func(s *BatchSummary) { s.Failed++ }, "failed  %s: %v\n", docID, err)
				return nil
			}
			hash := contentHash(doc.Text)

			changed, err := needsExtraction(gctx, idx, doc, hash, filepath.Join(inDir, name), outPath)
			if err != nil {
				report(func(s *BatchSummary) { s.Failed++ }, "failed  %s: %v\n", docID, err)
				return nil
			}
			if !changed && !cfg.Force {
				report(func(s *BatchSummary) { s.Skipped++ }, "skipped %s\n", docID)
				return nil
			}

			result := p.Run(doc)
			if err := writeResult(outPath, result); err != nil {
				report(func(s *BatchSummary) { s.Failed++ }, "failed  %s: write error: %v\n", docID, err)
				return nil
			}
			if idx != nil {
				if err := idx.Record(gctx, runID, docID, hash, result); err != nil {
					report(func(s *BatchSummary) { s.Failed++ }, "failed  %s: %v\n", docID, err)
					return nil
				}
			}

			report(func(s *BatchSummary) {
				s.Extracted++
				if result.NeedsReview {
					s.Review++
				}
			}, "extracted %s (%d assessments, %d meetings, confidence %.2f%s)\n",
				docID, len(result.Assessments), len(result.MeetingTimes), result.Confidence, reviewMark(result))
			return nil
		})
	}
	waitErr := g.Wait()

	if idx != nil {
		counts := index.RunCounts{Extracted: summary.Extracted, Skipped: summary.Skipped, Failed: summary.Failed}
		if err := idx.FinishRun(context.WithoutCancel(ctx), runID, counts); err != nil {
			fmt.Fprintf(w, "warning: %v\n", err)
		}
		if summary.Extracted > 0 {
			if err := idx.ExportYAML(context.WithoutCancel(ctx)); err != nil {
				fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
			}
			if err := idx.ExportJSON(context.WithoutCancel(ctx)); err != nil {
				fmt.Fprintf(w, "warning: export.json write failed: %v\n", err)
			}
		}
	}

	fmt.Fprintf(w, "\nextracted: %d, skipped: %d, failed: %d, needs review: %d\n",
		summary.Extracted, summary.Skipped, summary.Failed, summary.Review)

	if waitErr != nil {
		return summary, waitErr
	}
	return summary, ctx.Err()
}

// needsExtraction asks the index whether doc changed, or compares file
// modification times when there is no index.
func needsExtraction(ctx context.Context, idx *index.Store, doc types.RawDocument, hash, inPath, outPath string) (bool, error) {
	if idx != nil {
		return idx.Changed(ctx, doc.ID, hash)
	}
	return hasChanged(inPath, outPath)
}

// hasChanged reports whether the text file is newer than the output file.
// Returns true if the output does not exist.
func hasChanged(inPath, outPath string) (bool, error) {
	inInfo, err := os.Stat(inPath)
	if err != nil {
		return false, fmt.Errorf("stat text %s: %w", inPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	return inInfo.ModTime().After(outInfo.ModTime()), nil
}

// contentHash returns the hex SHA-256 of text.
func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// writeResult marshals the ExtractionResult to a YAML file.
func writeResult(path string, result *types.ExtractionResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func reviewMark(r *types.ExtractionResult) string {
	if r.NeedsReview {
		return ", needs review"
	}
	return ""
}
