package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/syllabus-engine/internal/coursecode"
	"github.com/pdiddy/syllabus-engine/internal/index"
	"github.com/pdiddy/syllabus-engine/pkg/types"
)

const completeSyllabus = `EE 382N: Distributed Systems
Fall 2015

Grading: 30 % Assignments, 15 % Test 1, 15 % Test 2, 20 % Test 3, 15% Term paper, 5% Class presentation

Lecture: MWF 10-11 a.m., ECJ 1.202
`

// --- test helpers ---

func testPipeline() *Pipeline {
	return NewPipeline(types.ExtractionConfig{}, nil)
}

func codeResult(code *types.CourseCode) coursecode.Result {
	return coursecode.Result{Code: code}
}

func writeText(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testIndex(t *testing.T, base string) *index.Store {
	t.Helper()
	store, err := index.NewStore(types.IndexConfig{Dir: filepath.Join(base, "index")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// --- pipeline tests ---

func TestRunCompleteSyllabus(t *testing.T) {
	got := testPipeline().Run(types.RawDocument{ID: "ee382n", Text: completeSyllabus})

	require.NotNil(t, got.CourseCode)
	assert.Equal(t, types.CourseCode{Department: "EE", Number: "382", Suffix: "N"}, *got.CourseCode)
	require.NotNil(t, got.CourseName)
	assert.Equal(t, "Distributed Systems", *got.CourseName)
	assert.Equal(t, "ee382n", got.DocumentID)

	require.Len(t, got.Assessments, 6)
	assert.InDelta(t, 100, got.AssessmentTotal(), 0.001)
	assert.True(t, got.SchemeClosed)

	require.Len(t, got.MeetingTimes, 1)
	assert.Equal(t, "ECJ 1.202", got.MeetingTimes[0].Location)

	assert.InDelta(t, 0.9, got.Confidence, 1e-9)
	assert.False(t, got.NeedsReview)
}

func TestRunEmptyDocument(t *testing.T) {
	got := testPipeline().Run(types.RawDocument{})

	assert.Nil(t, got.CourseCode)
	assert.Nil(t, got.CourseName)
	assert.NotNil(t, got.Assessments)
	assert.Empty(t, got.Assessments)
	assert.NotNil(t, got.MeetingTimes)
	assert.Empty(t, got.MeetingTimes)
	assert.Zero(t, got.Confidence)
	assert.True(t, got.NeedsReview)
}

func TestRunFallbackIdentifier(t *testing.T) {
	got := testPipeline().Run(types.RawDocument{Text: "Welcome to class.", FallbackID: "M408K_fall"})

	require.NotNil(t, got.CourseCode)
	assert.Equal(t, "M 408K", got.CourseCode.String())
	assert.InDelta(t, 0.1, got.Confidence, 1e-9)
	assert.True(t, got.NeedsReview)
}

func TestRunCodeAtLineEnd(t *testing.T) {
	got := testPipeline().Run(types.RawDocument{Text: "EE 382\nA note on grading"})

	require.NotNil(t, got.CourseCode)
	assert.Equal(t, "EE 382", got.CourseCode.String())
	assert.Nil(t, got.CourseName)
}

func TestRunNoFinalExamFlagsReview(t *testing.T) {
	text := "Grading: Homework 30%, Midterm 30%, Final Exam 40%\nThere is No Final Exam in this course."
	got := testPipeline().Run(types.RawDocument{Text: text})

	for _, a := range got.Assessments {
		if strings.Contains(strings.ToLower(a.Title), "final") {
			t.Errorf("final exam record kept: %+v", a)
		}
	}
	assert.False(t, got.SchemeClosed)
	assert.True(t, got.NeedsReview)
}

func TestRunDeterministic(t *testing.T) {
	p := testPipeline()
	doc := types.RawDocument{ID: "x", Text: completeSyllabus}
	assert.Equal(t, p.Run(doc), p.Run(doc))
}

func TestConfidence(t *testing.T) {
	closed := types.GradingScheme{Records: make([]types.AssessmentRecord, 3), Total: 100, Closed: true, Families: 1}
	tests := []struct {
		name     string
		scheme   types.GradingScheme
		meetings int
		hasCode  bool
		want     float64
	}{
		{"nothing", types.GradingScheme{}, 0, false, 0},
		{"closed scheme only", closed, 0, false, 0.55},
		{"closed with meeting and code", closed, 1, true, 0.9},
		{"three families", types.GradingScheme{Records: make([]types.AssessmentRecord, 3), Total: 100, Closed: true, Families: 3}, 2, true, 1},
		{"open partial scheme", types.GradingScheme{Records: make([]types.AssessmentRecord, 1), Total: 40}, 1, false, 0.35},
		{"open overfull scheme", types.GradingScheme{Records: make([]types.AssessmentRecord, 1), Total: 140}, 0, false, 0.25},
		{"meeting only", types.GradingScheme{}, 1, false, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confidence(tt.scheme, tt.meetings, tt.hasCode)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestMergeNeedsReview(t *testing.T) {
	closed := types.GradingScheme{Records: []types.AssessmentRecord{{Title: "Homework", Percent: 100}}, Total: 100, Closed: true, Families: 1}

	// 0.5 + 0.05: closed but low confidence.
	got := Merge("a", codeResult(nil), closed, nil)
	assert.True(t, got.NeedsReview)

	got = Merge("b", codeResult(&types.CourseCode{Department: "CS", Number: "101"}), closed,
		[]types.MeetingRecord{{Days: []types.Weekday{types.Monday}, StartTime: "09:00", EndTime: "10:00"}})
	assert.False(t, got.NeedsReview)
}

// --- boundary tests ---

func TestReadDocument(t *testing.T) {
	dir := t.TempDir()
	writeText(t, dir, "EE382N_fall.txt", "\xef\xbb\xbfGrading: Homework 100%")

	doc, err := ReadDocument(filepath.Join(dir, "EE382N_fall.txt"), "")
	require.NoError(t, err)
	assert.Equal(t, "EE382N_fall", doc.ID)
	assert.Equal(t, "EE382N_fall", doc.FallbackID)
	assert.Equal(t, "Grading: Homework 100%", doc.Text)

	doc, err = ReadDocument(filepath.Join(dir, "EE382N_fall.txt"), "cs101")
	require.NoError(t, err)
	assert.Equal(t, "cs101", doc.FallbackID)
}

func TestReadDocumentRejectsBinary(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"nul byte", "Grading\x00 Homework"},
		{"invalid utf-8", "Grading \xff\xfe Homework"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeText(t, dir, "bad.txt", tt.content)
			_, err := ReadDocument(filepath.Join(dir, "bad.txt"), "")
			if !errors.Is(err, ErrNotText) {
				t.Errorf("err = %v, want ErrNotText", err)
			}
		})
	}
}

func TestReadDocumentMissing(t *testing.T) {
	_, err := ReadDocument(filepath.Join(t.TempDir(), "missing.txt"), "")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotText))
}

// --- batch tests ---

func TestExtractAllWithIndex(t *testing.T) {
	base := t.TempDir()
	textPath := filepath.Join(base, textDir)
	writeText(t, textPath, "ee382n.txt", completeSyllabus)
	writeText(t, textPath, "empty.txt", "")
	writeText(t, textPath, "notes.md", "ignored")
	idx := testIndex(t, base)
	cfg := types.BatchConfig{SyllabiDir: base, Workers: 2}
	ctx := context.Background()

	var out strings.Builder
	summary, err := ExtractAll(ctx, testPipeline(), cfg, idx, &out)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Extracted: 2, Review: 1}, summary)
	assert.Contains(t, out.String(), "extracted ee382n (6 assessments, 1 meetings, confidence 0.90)")
	assert.Contains(t, out.String(), "extracted: 2, skipped: 0, failed: 0, needs review: 1")

	data, err := os.ReadFile(filepath.Join(base, extractedDir, "ee382n.yaml"))
	require.NoError(t, err)
	var result types.ExtractionResult
	require.NoError(t, yaml.Unmarshal(data, &result))
	assert.Len(t, result.Assessments, 6)
	assert.True(t, result.SchemeClosed)

	queue, err := idx.ReviewQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "empty", queue[0].ID)

	// Second run skips unchanged documents.
	out.Reset()
	summary, err = ExtractAll(ctx, testPipeline(), cfg, idx, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Skipped)
	assert.Zero(t, summary.Extracted)
	assert.Contains(t, out.String(), "skipped ee382n")

	// A changed document is re-extracted.
	writeText(t, textPath, "empty.txt", "Grading: Homework 100%")
	summary, err = ExtractAll(ctx, testPipeline(), cfg, idx, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Extracted)
	assert.Equal(t, 1, summary.Skipped)

	// Force re-extracts everything.
	cfg.Force = true
	summary, err = ExtractAll(ctx, testPipeline(), cfg, idx, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Extracted)

	run, err := idx.LastRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, 2, run.Extracted)
	for _, name := range []string{"export.yaml", "export.json"} {
		_, err = os.Stat(filepath.Join(idx.Dir(), name))
		assert.NoError(t, err, name)
	}
}

func TestExtractAllCountsFailures(t *testing.T) {
	base := t.TempDir()
	writeText(t, filepath.Join(base, textDir), "good.txt", completeSyllabus)
	writeText(t, filepath.Join(base, textDir), "scan.txt", "%PDF-1.4\x00\x01")

	var out strings.Builder
	summary, err := ExtractAll(context.Background(), testPipeline(), types.BatchConfig{SyllabiDir: base, Workers: 1}, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Extracted)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.HasFailures())
	assert.Equal(t, 2, summary.Total())
	assert.Contains(t, out.String(), "failed  scan:")
}

func TestExtractAllWithoutIndexSkipsByModTime(t *testing.T) {
	base := t.TempDir()
	writeText(t, filepath.Join(base, textDir), "a.txt", completeSyllabus)
	cfg := types.BatchConfig{SyllabiDir: base}

	var out strings.Builder
	summary, err := ExtractAll(context.Background(), testPipeline(), cfg, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Extracted)

	summary, err = ExtractAll(context.Background(), testPipeline(), cfg, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
}

func TestExtractAllMissingDirectory(t *testing.T) {
	var out strings.Builder
	_, err := ExtractAll(context.Background(), testPipeline(), types.BatchConfig{SyllabiDir: t.TempDir()}, nil, &out)
	assert.Error(t, err)
}

func TestExtractAllCancelled(t *testing.T) {
	base := t.TempDir()
	writeText(t, filepath.Join(base, textDir), "a.txt", completeSyllabus)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out strings.Builder
	summary, err := ExtractAll(ctx, testPipeline(), types.BatchConfig{SyllabiDir: base}, nil, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Extracted)
}

func TestBatchSummaryTotal(t *testing.T) {
	s := BatchSummary{Extracted: 3, Skipped: 2, Failed: 1, Review: 2}
	if s.Total() != 6 {
		t.Errorf("Total() = %d, want 6", s.Total())
	}
}
