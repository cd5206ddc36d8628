// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/syllabus-engine/internal/junk"
	"github.com/pdiddy/syllabus-engine/internal/textnorm"
	"github.com/pdiddy/syllabus-engine/pkg/types"
)

// --- test helpers ---

func scheme(t *testing.T, text string) types.GradingScheme {
	t.Helper()
	e := New(junk.New(), types.ExtractionConfig{}, nil)
	return e.Scheme(textnorm.NewDocument(text))
}

func titles(s types.GradingScheme) []string {
	out := make([]string, 0, len(s.Records))
	for _, r := range s.Records {
		out = append(out, r.Title)
	}
	return out
}

func percents(s types.GradingScheme) []float64 {
	out := make([]float64, 0, len(s.Records))
	for _, r := range s.Records {
		out = append(out, r.Percent)
	}
	return out
}

// --- end-to-end schemes ---

func TestSchemeGradingLinePercentFirst(t *testing.T) {
	s := scheme(t, "Grading: 30 % Assignments, 15 % Test 1, 15 % Test 2, 20 % Test 3, 15% Term paper, 5% Class presentation")

	assert.Equal(t, []string{"Assignments", "Test 1", "Test 2", "Test 3", "Term paper", "Class presentation"}, titles(s))
	assert.Equal(t, []float64{30, 15, 15, 20, 15, 5}, percents(s))
	assert.Equal(t, 100.0, s.Total)
	assert.True(t, s.Closed)
	assert.Equal(t, 1, s.Families)
}

func TestSchemeGradingLineNameFirst(t *testing.T) {
	s := scheme(t, "Course grade: Homework 25%, Quizzes (15%), Midterm - 25% and Final Exam 35%")

	assert.Equal(t, []string{"Homework", "Quizzes", "Midterm", "Final Exam"}, titles(s))
	assert.Equal(t, []float64{25, 15, 25, 35}, percents(s))
	assert.True(t, s.Closed)
}

func TestSchemePointsWithParts(t *testing.T) {
	s := scheme(t, "Midterm test 1 (part A): 40, Midterm test 1 (part B): 60, Midterm test 2: 100, Final exam: 100")

	assert.Equal(t, []string{"Midterm test 1", "Midterm test 2", "Final exam"}, titles(s))
	assert.Equal(t, []float64{33, 33, 33}, percents(s))
	assert.True(t, s.Closed, "99 is within the default tolerance")
}

func TestSchemePointsPrecision(t *testing.T) {
	e := New(junk.New(), types.ExtractionConfig{PercentPrecision: 1}, nil)
	s := e.Scheme(textnorm.NewDocument("Homework: 100 points\nMidterm: 100 points\nFinal: 100 points"))

	assert.Equal(t, []float64{33.3, 33.3, 33.3}, percents(s))
}

func TestSchemePointsOutOfRangeDiscarded(t *testing.T) {
	s := scheme(t, "Homework: 400, Midterm: 300, Final: 300")

	assert.Empty(t, s.Records)
	assert.False(t, s.Closed)
}

func TestSchemeDropLowest(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		percent float64
	}{
		{
			name:    "parenthesized drop before percent",
			text:    "Homework 30%\nTests (3 in-class, drop lowest) 40%\nFinal Exam 30%",
			want:    "Tests (3 in-class, drop lowest)",
			percent: 40,
		},
		{
			name:    "highest N each",
			text:    "Homework 40%\nHighest two test scores 20% each\nFinal Exam 20%",
			want:    "Tests (highest 2)",
			percent: 40,
		},
		{
			name:    "lowest dropped after percent",
			text:    "Homework 50%\nQuizzes 10% (lowest dropped)\nFinal Exam 40%",
			want:    "Quizzes (lowest dropped)",
			percent: 10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scheme(t, tt.text)
			require.Len(t, s.Records, 3)

			var found []types.AssessmentRecord
			for _, r := range s.Records {
				if r.Type == types.KindDropLowest {
					found = append(found, r)
				}
			}
			require.Len(t, found, 1, "one record per group")
			assert.Equal(t, tt.want, found[0].Title)
			assert.Equal(t, tt.percent, found[0].Percent)
			assert.True(t, s.Closed)
		})
	}
}

func TestSchemeActivityAttendance(t *testing.T) {
	text := "PED 101 Beginning Tennis\n" +
		"This is a 1-credit activity course.\n" +
		"Students must attend at least 80% of class meetings to pass the course.\n" +
		"Participation 20%"
	s := scheme(t, text)

	require.Len(t, s.Records, 1)
	assert.Equal(t, "Attendance and Participation (80% required to pass)", s.Records[0].Title)
	assert.Equal(t, 100.0, s.Records[0].Percent)
	assert.Equal(t, types.KindActivity, s.Records[0].Type)
	assert.True(t, s.Closed)
}

func TestSchemeAttendanceWithoutActivityContext(t *testing.T) {
	s := scheme(t, "Students must attend at least 80% of class meetings to pass.\nHomework 50%\nFinal Exam 50%")

	for _, r := range s.Records {
		assert.NotEqual(t, types.KindActivity, r.Type)
	}
	assert.Equal(t, []string{"Homework", "Final Exam"}, titles(s))
}

func TestSchemeNoFinalExam(t *testing.T) {
	s := scheme(t, "Grading: Homework 30%, Midterm 30%, Final Exam 40%\nNo Final Exam will be given this semester.")

	assert.Equal(t, []string{"Homework", "Midterm"}, titles(s))
	assert.Equal(t, 60.0, s.Total)
	assert.False(t, s.Closed)
}

func TestSchemeLogsUnclaimedEachItem(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := New(junk.New(), types.ExtractionConfig{}, zap.New(core))

	s := e.Scheme(textnorm.NewDocument("Grading: Homework 20%, Quizzes 10% each, Midterm 30%, Final 40%"))
	assert.Equal(t, 90.0, s.Total)
	assert.False(t, s.Closed)

	entries := logs.FilterMessage("qualified item unclaimed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Quizzes 10% each", entries[0].ContextMap()["item"])
}

func TestSchemeCountedAggregate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"colon each", "3 Midterm Exams: 20% each\nFinal Exam: 40%", "Midterm Exams (3 x 20%)"},
		{"per ea", "Three midterms 20%/ea\nFinal Exam: 40%", "Midterms (3 x 20%)"},
		{"at each", "3 Examinations @ 20% each\nFinal Exam: 40%", "Examinations (3 x 20%)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scheme(t, tt.text)
			require.Len(t, s.Records, 2)
			assert.Equal(t, tt.want, s.Records[0].Title)
			assert.Equal(t, 60.0, s.Records[0].Percent)
			assert.Equal(t, types.KindAggregate, s.Records[0].Type)
			assert.Equal(t, "Final Exam", s.Records[1].Title)
			assert.True(t, s.Closed)
		})
	}
}

func TestSchemeCountedNamedInstances(t *testing.T) {
	text := "Three midterms 20%/ea\n" +
		"Midterm 1: Sept 30\n" +
		"Midterm 2: Oct 28\n" +
		"Midterm 3: Nov 25\n" +
		"Final exam 40%"
	s := scheme(t, text)

	assert.Equal(t, []string{"Midterm 1", "Midterm 2", "Midterm 3", "Final exam"}, titles(s))
	assert.Equal(t, []float64{20, 20, 20, 40}, percents(s))
	assert.True(t, s.Closed)
}

func TestSchemeOrdinalPapers(t *testing.T) {
	s := scheme(t, "1st Paper: 20%\n2nd Paper: 25%\nFinal Exam: 55%")

	assert.Equal(t, []string{"1st Paper", "2nd Paper", "Final Exam"}, titles(s))
	assert.Equal(t, []float64{20, 25, 55}, percents(s))
}

func TestSchemeTableRows(t *testing.T) {
	text := "Homework 10 20%\n" +
		"Test 1 15%\n" +
		"Test 2 15%\n" +
		"Participation 12.5% in-class discussion\n" +
		"Final Exam 37.5%"
	s := scheme(t, text)

	assert.Equal(t, []string{"Homework", "Test 1", "Test 2", "Participation", "Final Exam"}, titles(s))
	assert.Equal(t, []float64{20, 15, 15, 12.5, 37.5}, percents(s))
	assert.True(t, s.Closed)
}

func TestSchemeFreeformIdioms(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		titles   []string
		percents []float64
	}{
		{
			name:     "fraction of grade",
			text:     "The homework will contribute 20% of your grade. The final project will count 80% of the final grade.",
			titles:   []string{"Homework", "Final project"},
			percents: []float64{20, 80},
		},
		{
			name:     "half and half",
			text:     "The mid-term and end-term exams each count for half of the final grade.",
			titles:   []string{"Mid-term Exam", "End-term Exam"},
			percents: []float64{50, 50},
		},
		{
			name:     "point allocation prose",
			text:     "You can earn 40 points for homework, 25 points for the midterm and 35 points from the final project.",
			titles:   []string{"Homework", "Midterm", "Final project"},
			percents: []float64{40, 25, 35},
		},
		{
			name:     "parenthesized percent",
			text:     "Your grade is based on homework (30%) and the final project (70%).",
			titles:   []string{"Homework", "Final project"},
			percents: []float64{30, 70},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scheme(t, tt.text)
			assert.Equal(t, tt.titles, titles(s))
			assert.Equal(t, tt.percents, percents(s))
			assert.True(t, s.Closed)
		})
	}
}

func TestSchemeDropsJunkLines(t *testing.T) {
	text := "Grading: Homework 50%, Final Exam 50%\n" +
		"Late assignments lose 10% per day.\n" +
		"A 93-100%\n" +
		"B 85-92%"
	s := scheme(t, text)

	assert.Equal(t, []string{"Homework", "Final Exam"}, titles(s))
	assert.True(t, s.Closed)
}

func TestSchemeEmpty(t *testing.T) {
	s := scheme(t, "")
	assert.Empty(t, s.Records)
	assert.False(t, s.Closed)
	assert.Equal(t, 0, s.Families)
}

func TestExtractDueHint(t *testing.T) {
	e := New(nil, types.ExtractionConfig{}, nil)
	cands := e.Extract(textnorm.NewDocument("Paper 1 20% due Oct 12\nFinal Exam 80%"))

	require.Len(t, cands, 2)
	assert.Equal(t, "Paper 1", cands[0].Title)
	assert.Equal(t, "Oct 12", cands[0].DueHint)
	assert.Empty(t, cands[1].DueHint)
}

func TestExtractClaimsSpans(t *testing.T) {
	e := New(nil, types.ExtractionConfig{}, nil)
	cands := e.Extract(textnorm.NewDocument("Tests (3 in-class, drop lowest) 40%"))

	require.Len(t, cands, 1, "table and freeform must not re-match the claimed span")
	assert.Equal(t, FamilyDropLowest, cands[0].Family)
	assert.Equal(t, 0.9, cands[0].Confidence)
}

// --- context ---

func TestNewContext(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Context
	}{
		{
			name: "no final",
			text: "There is no final exam in this course.",
			want: Context{NoFinalExam: true},
		},
		{
			name: "no cumulative final",
			text: "No cumulative final examination.",
			want: Context{NoFinalExam: true},
		},
		{
			name: "in-class exams",
			text: "Two in-class exams are given.",
			want: Context{InClassExams: true},
		},
		{
			name: "plain final",
			text: "Final exam: Dec 12",
			want: Context{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewContext(textnorm.NewDocument(tt.text))
			if got != tt.want {
				t.Errorf("NewContext(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNewContextAttendance(t *testing.T) {
	ctx := NewContext(textnorm.NewDocument("One-credit activity course. You must attend 90% of classes to receive credit."))

	assert.True(t, ctx.ActivityCourse)
	assert.Equal(t, 90, ctx.AttendanceThreshold)
	assert.Greater(t, ctx.AttendanceSpan.End, ctx.AttendanceSpan.Start)
}

// --- normalize ---

func TestNormalizeDedupe(t *testing.T) {
	pct := func(v float64) Weight { return Weight{Value: v, Unit: Percent} }
	cands := []Candidate{
		{Title: "Homework", Weight: pct(20), Family: FamilyTable, Span: Span{0, 10}},
		{Title: "Midterm", Weight: pct(30), Family: FamilyFreeform, Span: Span{11, 20}},
		{Title: "homework", Weight: pct(25), Family: FamilyTable, Span: Span{21, 30}},
		{Title: "Midterm", Weight: pct(35), Family: FamilyGradingLine, Span: Span{31, 40}},
		{Title: "Midterm", Weight: pct(99), Family: FamilyFreeform, Span: Span{41, 50}},
		{Title: "Final", Weight: pct(40), Family: FamilyTable, Span: Span{51, 60}},
	}
	s := Normalize(cands, types.ExtractionConfig{})

	assert.Equal(t, []string{"homework", "Midterm", "Final"}, titles(s), "same family: last writer wins in place")
	assert.Equal(t, []float64{25, 35, 40}, percents(s), "cross family: higher priority wins")
	assert.True(t, s.Closed)
	assert.Equal(t, 2, s.Families)
}

func TestNormalizeCollapsesGroups(t *testing.T) {
	cands := []Candidate{
		{Title: "Quizzes (best 3 of 4)", Weight: Weight{Value: 20}, Kind: types.KindDropLowest, Family: FamilyDropLowest, Group: "quizzes", Span: Span{0, 5}},
		{Title: "Quizzes (lowest dropped)", Weight: Weight{Value: 20}, Kind: types.KindDropLowest, Family: FamilyDropLowest, Group: "quizzes", Span: Span{6, 9}},
		{Title: "Final", Weight: Weight{Value: 80}, Family: FamilyTable, Span: Span{10, 20}},
	}
	s := Normalize(cands, types.ExtractionConfig{})

	assert.Equal(t, []string{"Quizzes (best 3 of 4)", "Final"}, titles(s))
	assert.Equal(t, 100.0, s.Total)
}

func TestNormalizePointsNearHundred(t *testing.T) {
	cands := []Candidate{
		{Title: "Homework", Weight: Weight{Value: 40, Unit: Points}, Family: FamilyPoints, Span: Span{0, 5}},
		{Title: "Exams", Weight: Weight{Value: 60, Unit: Points}, Family: FamilyPoints, Span: Span{6, 9}},
	}
	s := Normalize(cands, types.ExtractionConfig{})

	assert.Equal(t, []float64{40, 60}, percents(s))
	assert.True(t, s.Closed)
}

func TestNormalizeOpenSchemeIsReturned(t *testing.T) {
	cands := []Candidate{
		{Title: "Homework", Weight: Weight{Value: 40}, Family: FamilyTable},
	}
	s := Normalize(cands, types.ExtractionConfig{Tolerance: 5})

	require.Len(t, s.Records, 1)
	assert.False(t, s.Closed)
	assert.Equal(t, 40.0, s.Total)
}
