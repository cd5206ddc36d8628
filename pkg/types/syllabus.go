// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the syllabus-engine pipeline:
// the raw document handed in by ingestion, the course code, grading and
// meeting records, and the merged ExtractionResult handed to downstream
// consumers.
package types

import "fmt"

// RawDocument is the immutable input to one pipeline invocation.
type RawDocument struct {
	// ID identifies the document in batch output (usually the file stem).
	ID string `json:"id" yaml:"id"`

	// Text is the decoded syllabus body.
	Text string `json:"text" yaml:"text"`

	// FallbackID is an optional folder or file identifier consulted for a
	// course code only when the text has none (e.g. "EE382N_fall").
	FallbackID string `json:"fallback_id,omitempty" yaml:"fallback_id,omitempty"`
}

// Weekday is a two-letter weekday tag in iCalendar BYDAY form.
type Weekday string

const (
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
	Sunday    Weekday = "SU"
)

// WeekOrder lists the weekdays in calendar order starting Monday.
var WeekOrder = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// AssessmentKind tags how an assessment record was derived.
type AssessmentKind string

const (
	KindSingle     AssessmentKind = "single"
	KindAggregate  AssessmentKind = "aggregate"
	KindDropLowest AssessmentKind = "drop-lowest"
	KindActivity   AssessmentKind = "activity"
)

// CourseCode is a department + number (+ optional letter suffix) code,
// e.g. {EE, 382, N}.
type CourseCode struct {
	Department string `json:"department" yaml:"department"`
	Number     string `json:"number" yaml:"number"`
	Suffix     string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// String renders the code as "EE 382N".
func (c CourseCode) String() string {
	return fmt.Sprintf("%s %s%s", c.Department, c.Number, c.Suffix)
}

// AssessmentRecord is a finalized gradable component.
type AssessmentRecord struct {
	Title   string         `json:"title" yaml:"title"`
	Percent float64        `json:"percent" yaml:"percent"`
	Type    AssessmentKind `json:"type" yaml:"type"`

	// DueHint is a date-like token found next to the item ("Oct 12", "10/12").
	// It is not validated against a calendar.
	DueHint string `json:"due_hint,omitempty" yaml:"due_hint,omitempty"`
}

// GradingScheme is the ordered set of assessments for one document.
type GradingScheme struct {
	Records []AssessmentRecord

	// Total is the sum of Records[].Percent.
	Total float64

	// Closed reports whether Total lies within tolerance of 100. An open
	// scheme is still returned; it is flagged, not rejected.
	Closed bool

	// Families counts the distinct recognizer families that contributed.
	Families int
}

// MeetingRecord is one recurring weekly class block.
type MeetingRecord struct {
	Days      []Weekday `json:"days" yaml:"days"`
	StartTime string    `json:"start_time" yaml:"start_time"`
	EndTime   string    `json:"end_time" yaml:"end_time"`
	Location  string    `json:"location,omitempty" yaml:"location,omitempty"`

	// Term is set when the statement was prefixed by a season and year
	// ("Spring 2015").
	Term string `json:"term,omitempty" yaml:"term,omitempty"`
}

// ExtractionResult is the terminal aggregate for one document. It is
// created once by the merger and never mutated afterwards.
type ExtractionResult struct {
	DocumentID   string             `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	CourseCode   *CourseCode        `json:"course_code" yaml:"course_code"`
	CourseName   *string            `json:"course_name" yaml:"course_name"`
	Assessments  []AssessmentRecord `json:"assessments" yaml:"assessments"`
	SchemeClosed bool               `json:"scheme_closed" yaml:"scheme_closed"`
	MeetingTimes []MeetingRecord    `json:"meeting_times" yaml:"meeting_times"`

	// Confidence is a score in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// NeedsReview flags low-confidence or incomplete results for a human.
	NeedsReview bool `json:"needs_review" yaml:"needs_review"`
}

// AssessmentTotal returns the sum of assessment percents.
func (r *ExtractionResult) AssessmentTotal() float64 {
	var total float64
	for _, a := range r.Assessments {
		total += a.Percent
	}
	return total
}
