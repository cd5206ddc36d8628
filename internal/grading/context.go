package grading

import (
	"regexp"
	"strconv"

	"github.com/pdiddy/syllabus-engine/internal/textnorm"
)

var (
	noFinalRe = regexp.MustCompile(`(?im)\bno\s+(?:cumulative\s+|comprehensive\s+|written\s+)?final\s+(?:exam(?:ination)?|test)\b|\bno\s+final\s*(?:[.!;,]|$)`)

	activityRe = regexp.MustCompile(`(?i)\b(?:1|one)[- ]credit\b|\bactivity\s+course\b|\b(?:1|one)\s+credit\s+hour\b`)

	inClassRe = regexp.MustCompile(`(?i)\bin[- ]class\s+(?:exam|test)`)

	// attendanceRe matches "attend at least 80% of the classes to pass".
	attendanceRe = regexp.MustCompile(`(?is)\battend\w*\b.{0,120}?\b(\d{1,3})\s*%.{0,200}?\bto\s+(?:pass|receive\s+credit|earn\s+credit|get\s+credit)\b`)
)

// Context holds document-level flags computed once before the families
// run, so each recognizer stays a pure function of (lines, Context).
type Context struct {
	// NoFinalExam is set by an explicit "No Final Exam" statement.
	NoFinalExam bool

	// ActivityCourse is set by a 1-credit or activity-course statement.
	ActivityCourse bool

	// InClassExams is set when exams are described as in-class.
	InClassExams bool

	// AttendanceThreshold is the percent of meetings a student must attend
	// to pass, or 0.
	AttendanceThreshold int

	// AttendanceSpan locates the attendance statement.
	AttendanceSpan Span
}

// NewContext computes the flags for doc.
func NewContext(doc *textnorm.Document) Context {
	var c Context
	c.NoFinalExam = doc.Contains("final") && noFinalRe.MatchString(doc.Text)
	c.ActivityCourse = (doc.Contains("credit") || doc.Contains("activity")) && activityRe.MatchString(doc.Text)
	c.InClassExams = doc.Contains("class") && inClassRe.MatchString(doc.Text)
	if !doc.Contains("attend") {
		return c
	}
	if m := attendanceRe.FindStringSubmatchIndex(doc.Text); m != nil {
		if n, err := strconv.Atoi(doc.Text[m[2]:m[3]]); err == nil && n > 0 && n <= 100 {
			c.AttendanceThreshold = n
			c.AttendanceSpan = Span{Start: m[0], End: m[1]}
		}
	}
	return c
}
