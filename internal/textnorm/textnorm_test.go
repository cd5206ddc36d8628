package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"tabs and runs of spaces", "Homework\t\t20%   each", "Homework 20% each"},
		{"trimmed lines", "  Grading:  \n   Exams 50% ", "Grading:\nExams 50%"},
		{"typographic punctuation", "\u201cMidterm\u201d \u2013 Student\u2019s 30\uff05", `"Midterm" - Student's 30%`},
		{"no-break space", "10\u00a0a.m.", "10 a.m."},
		{"soft hyphen break", "assign-\nments 20%", "assignments 20%"},
		{"hyphen before capital kept", "Mid-\nTerm", "Mid-\nTerm"},
		{"blank runs collapsed", "a\n\n\n\nb\n\n", "a\n\nb"},
		{"leading blanks dropped", "\n\n\na", "a"},
		{"nfc composition", "cafe\u0301", "caf\u00e9"},
		{"zero-width dropped", "Home\u200bwork", "Homework"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "Grading:\t30 % Assignments – 15 % Test 1\r\n\r\n\r\nLecture: MWF 10–11 a.m."
	once := Normalize(in)
	assert.Equal(t, once, Normalize(once))
}

func TestNewDocumentLines(t *testing.T) {
	d := NewDocument("Grading:\nExams 50%\n\nLab 50%")

	require.Len(t, d.Lines, 4)
	for _, l := range d.Lines {
		assert.Equal(t, l.Text, d.Text[l.Offset:l.End()], "line %d", l.Index)
	}
	assert.Equal(t, "", d.Lines[2].Text)
	assert.Equal(t, "Lab 50%", d.Lines[3].Text)
}

func TestNewDocumentEmpty(t *testing.T) {
	d := NewDocument("")
	assert.Empty(t, d.Text)
	assert.Empty(t, d.Lines)
	_, ok := d.LineAt(0)
	assert.False(t, ok)
}

func TestDocumentSearch(t *testing.T) {
	d := NewDocument("Course Grade\nNO FINAL EXAM will be given.")

	assert.True(t, d.Contains("no final exam"))
	assert.False(t, d.Contains("midterm"))
	assert.Equal(t, 13, d.Index("no final", 0))
	assert.Equal(t, -1, d.Index("course", 1))
	assert.Equal(t, -1, d.Index("grade", 100))
	assert.Len(t, d.Lower, len(d.Text))
}

func TestLineAt(t *testing.T) {
	d := NewDocument("abc\ndefg\nhi")
	tests := []struct {
		offset int
		want   int
		ok     bool
	}{
		{0, 0, true},
		{3, 0, true},
		{4, 1, true},
		{8, 1, true},
		{9, 2, true},
		{11, 2, true},
		{12, 0, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		l, ok := d.LineAt(tt.offset)
		if ok != tt.ok || (ok && l.Index != tt.want) {
			t.Errorf("LineAt(%d) = line %d %v, want line %d %v", tt.offset, l.Index, ok, tt.want, tt.ok)
		}
	}
}
