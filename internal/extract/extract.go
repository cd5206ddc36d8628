// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract runs the syllabus pipeline: it normalizes a document,
// resolves its course code, extracts the grading scheme and meeting times,
// and merges them into one scored ExtractionResult. ExtractAll applies the
// pipeline to a directory of text files.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/syllabus-engine/internal/coursecode"
	"github.com/pdiddy/syllabus-engine/internal/grading"
	"github.com/pdiddy/syllabus-engine/internal/junk"
	"github.com/pdiddy/syllabus-engine/internal/meeting"
	"github.com/pdiddy/syllabus-engine/internal/textnorm"
	"github.com/pdiddy/syllabus-engine/pkg/types"
)

// ErrNotText is returned for input that is not UTF-8 text.
var ErrNotText = errors.New("input is not UTF-8 text")

// reviewThreshold is the confidence below which a result needs review.
const reviewThreshold = 0.7

// Pipeline turns raw syllabus text into an ExtractionResult. It holds no
// per-document state and is safe for concurrent use.
type Pipeline struct {
	resolver *coursecode.Resolver
	grading  *grading.Extractor
	meetings *meeting.Extractor
	logger   *zap.Logger
}

// NewPipeline builds a Pipeline from cfg. A nil logger disables diagnostics.
func NewPipeline(cfg types.ExtractionConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.WithDefaults()
	return &Pipeline{
		resolver: coursecode.NewResolver(cfg.DepartmentCorrections),
		grading:  grading.New(junk.New(cfg.JunkPhrases...), cfg, logger.Named("grading")),
		meetings: meeting.New(meeting.Options{
			LocationMaxLen: cfg.LocationMaxLen,
			LocationWindow: cfg.LocationWindow,
		}, logger.Named("meeting")),
		logger: logger,
	}
}

// Run extracts doc. It never fails: unrecognized text is left unextracted
// and an incomplete result is flagged for review.
func (p *Pipeline) Run(doc types.RawDocument) *types.ExtractionResult {
	d := textnorm.NewDocument(doc.Text)

	code := p.resolver.Resolve(d, doc.FallbackID)
	scheme := p.grading.Scheme(d)
	meetings := p.meetings.Extract(d)

	result := Merge(doc.ID, code, scheme, meetings)
	p.logger.Debug("document merged",
		zap.String("document", doc.ID),
		zap.Int("assessments", len(result.Assessments)),
		zap.Float64("total", scheme.Total),
		zap.Bool("closed", scheme.Closed),
		zap.Int("meetings", len(result.MeetingTimes)),
		zap.Float64("confidence", result.Confidence),
		zap.Bool("needs_review", result.NeedsReview))
	return result
}

// Merge combines the branch outputs into a scored result.
func Merge(id string, code coursecode.Result, scheme types.GradingScheme, meetings []types.MeetingRecord) *types.ExtractionResult {
	result := &types.ExtractionResult{
		DocumentID:   id,
		CourseCode:   code.Code,
		Assessments:  scheme.Records,
		SchemeClosed: scheme.Closed,
		MeetingTimes: meetings,
	}
	if code.Name != "" {
		name := code.Name
		result.CourseName = &name
	}
	if result.Assessments == nil {
		result.Assessments = []types.AssessmentRecord{}
	}
	if result.MeetingTimes == nil {
		result.MeetingTimes = []types.MeetingRecord{}
	}
	result.Confidence = Confidence(scheme, len(meetings), code.Code != nil)
	result.NeedsReview = result.Confidence < reviewThreshold || !scheme.Closed
	return result
}

// Confidence scores a result in [0, 1]. A closed scheme is worth 0.5 (an
// open one up to 0.25 by how much of 100 it covers), meetings 0.25, a course
// code 0.1, and agreement between recognizer families up to 0.15.
func Confidence(scheme types.GradingScheme, meetings int, hasCode bool) float64 {
	var c float64
	switch {
	case scheme.Closed:
		c += 0.5
	case len(scheme.Records) > 0:
		c += 0.25 * math.Min(1, scheme.Total/100)
	}
	if meetings > 0 {
		c += 0.25
	}
	if hasCode {
		c += 0.1
	}
	c += 0.15 * math.Min(1, float64(scheme.Families)/3)

	c = math.Max(0, math.Min(1, c))
	return math.Round(c*100) / 100
}

// ReadDocument loads a text file as a RawDocument. The document ID is the
// file name without extension; fallbackID defaults to it. Files that are not
// UTF-8 text fail with ErrNotText.
func ReadDocument(path, fallbackID string) (types.RawDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.RawDocument{}, fmt.Errorf("reading %s: %w", path, err)
	}
	text, err := decodeText(data)
	if err != nil {
		return types.RawDocument{}, fmt.Errorf("%s: %w", path, err)
	}

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if fallbackID == "" {
		fallbackID = id
	}
	return types.RawDocument{ID: id, Text: text, FallbackID: fallbackID}, nil
}

// decodeText validates data as UTF-8 text and strips a byte-order mark.
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return "", ErrNotText
	}
	return string(data), nil
}
