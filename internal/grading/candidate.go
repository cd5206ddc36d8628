// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grading locates grading-weight statements in syllabus text and
// turns them into a normalized grading scheme.
//
// Extraction is an ordered cascade of recognizer families. Each family is a
// pure function of the document lines and a precomputed Context; it returns
// matches, each claiming a span of the text. The cascade runner keeps the
// span bookkeeping: a match overlapping a span claimed by an earlier family
// (or an earlier match of the same family) is dropped. Normalize then
// converts points, aggregates parts, collapses groups, deduplicates, and
// checks that the scheme closes near 100%.
package grading

import (
	"strconv"

	"github.com/pdiddy/syllabus-engine/pkg/types"
)

// Family identifies a recognizer family. Lower values have higher priority.
type Family int

const (
	FamilyGradingLine Family = iota + 1
	FamilyOrdinal
	FamilyPoints
	FamilyDropLowest
	FamilyActivity
	FamilyCounted
	FamilyTable
	FamilyFreeform
)

var familyNames = map[Family]string{
	FamilyGradingLine: "grading-line",
	FamilyOrdinal:     "ordinal",
	FamilyPoints:      "points",
	FamilyDropLowest:  "drop-lowest",
	FamilyActivity:    "activity",
	FamilyCounted:     "counted",
	FamilyTable:       "table",
	FamilyFreeform:    "freeform",
}

// familyConfidence biases candidates by how specific their family is.
var familyConfidence = map[Family]float64{
	FamilyGradingLine: 0.95,
	FamilyOrdinal:     0.9,
	FamilyPoints:      0.9,
	FamilyDropLowest:  0.9,
	FamilyActivity:    0.95,
	FamilyCounted:     0.9,
	FamilyTable:       0.7,
	FamilyFreeform:    0.6,
}

func (f Family) String() string {
	if n, ok := familyNames[f]; ok {
		return n
	}
	return "family-" + strconv.Itoa(int(f))
}

// Unit is the unit of a candidate weight.
type Unit int

const (
	Percent Unit = iota
	Points
)

// Weight is a numeric weight with its unit.
type Weight struct {
	Value float64
	Unit  Unit
}

// Span is a half-open byte range in the normalized document text.
type Span struct {
	Start int
	End   int
}

// Overlaps reports whether s and o share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Candidate is an unnormalized assessment found by one family.
type Candidate struct {
	Title      string
	Weight     Weight
	Kind       types.AssessmentKind
	Family     Family
	Pattern    string
	Span       Span
	Confidence float64

	// Group ties candidates that describe one grouped item (drop-lowest or
	// aggregate statements) so Normalize can collapse them.
	Group string

	DueHint string
}

// Match is one recognizer hit: the span it claims and the candidates it
// yields. A match is accepted or rejected as a whole.
type Match struct {
	Span       Span
	Candidates []Candidate
}

// newMatch builds a single-candidate match with family defaults filled in.
func newMatch(f Family, pattern string, span Span, title string, w Weight, kind types.AssessmentKind) Match {
	return Match{
		Span: span,
		Candidates: []Candidate{{
			Title:      title,
			Weight:     w,
			Kind:       kind,
			Family:     f,
			Pattern:    f.String() + "/" + pattern,
			Span:       span,
			Confidence: familyConfidence[f],
		}},
	}
}
