package junk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsJunk(t *testing.T) {
	f := New()
	tests := []struct {
		title string
		want  bool
	}{
		{"Homework", false},
		{"Midterm Exam 1", false},
		{"Class presentation", false},
		{"Attendance and Participation", false},
		{"", true},
		{"   ", true},
		{"20%", true},
		{"of the final grade", true},
		{"except for the final", true},
		{"and quizzes", true},
		{"at least 80%", true},
		{"up to 5 points", true},
		{"per assignment", true},
		{"Learning Outcomes", true},
		{"Late Policy", true},
		{"Extra credit", true},
		{"Office Hours", true},
		{"Total", true},
		{"Grading Scale", true},
		{"Grade", true},
		{"Percentage", true},
		{"Homework counts toward the overall course performance measured across the semester", true},
	}
	for _, tt := range tests {
		if got := f.IsJunk(tt.title); got != tt.want {
			t.Errorf("IsJunk(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestIsJunkLine(t *testing.T) {
	f := New()
	tests := []struct {
		line string
		want bool
	}{
		{"Grading: Homework 30%, Exams 70%", false},
		{"", false},
		{"Late work loses 10% per day", true},
		{"5 points deducted for each late assignment", true},
		{"Missed Exams: no makeups", true},
		{"A 93-100%", true},
		{"B+ = 87 to 89", true},
		{"A- >= 90 - 92", true},
		{"Exams 50%", false},
	}
	for _, tt := range tests {
		if got := f.IsJunkLine(tt.line); got != tt.want {
			t.Errorf("IsJunkLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestIsJunkIdempotentOverList(t *testing.T) {
	f := New()
	keep := func(titles []string) []string {
		out := []string{}
		for _, title := range titles {
			if !f.IsJunk(title) {
				out = append(out, title)
			}
		}
		return out
	}
	titles := []string{"Homework", "of the grade", "Quizzes", "Total", "", "Final Exam", "late policy", "Labs"}

	once := keep(titles)
	twice := keep(once)

	assert.Equal(t, []string{"Homework", "Quizzes", "Final Exam", "Labs"}, once)
	assert.Equal(t, once, twice)
}

func TestNewExtraPhrases(t *testing.T) {
	f := New("Reading Response", "  ")

	assert.True(t, f.IsJunk("reading response journal"))
	assert.True(t, f.IsJunkLine("Reading response due weekly"))
	assert.False(t, New().IsJunk("reading response journal"))
}
