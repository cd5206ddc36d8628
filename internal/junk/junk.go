// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package junk recognizes noise phrases and instructional boilerplate that
// would otherwise be mistaken for assessment or meeting-time entries.
package junk

import (
	"regexp"
	"strings"
	"unicode"
)

// maxTitleLen bounds a plausible assessment title.
const maxTitleLen = 60

// titlePrefixes mark fragments cut out of the middle of a sentence.
var titlePrefixes = []string{
	"of ",
	"except for ",
	"and ",
	"or ",
	"at least ",
	"up to ",
	"per ",
	"to ",
	"in ",
	"than ",
	"the rest",
}

// titlePhrases mark administrative headers and policy text.
var titlePhrases = []string{
	"learning outcomes",
	"missed exam",
	"late policy",
	"late penalty",
	"late submission",
	"grading scale",
	"letter grade",
	"extra credit",
	"bonus",
	"office hours",
	"total",
	"of the grade",
	"of your grade",
	"of the final grade",
	"of the course grade",
	"required to pass",
}

// exactTitles are column headers that are junk only on their own.
var exactTitles = map[string]bool{
	"grading":      true,
	"grade":        true,
	"grades":       true,
	"course grade": true,
	"final grade":  true,
	"weight":       true,
	"percent":      true,
	"percentage":   true,
	"points":       true,
}

// linePhrases mark whole lines of boilerplate that are dropped before
// recognition.
var linePhrases = []string{
	"per day",
	"per class day",
	"deducted",
	"penalty",
	"late submission",
	"late work",
	"late assignments",
	"late homework",
	"learning outcomes",
	"missed exams",
	"missed exam policy",
	"grading scale",
}

// gradeScaleRe matches letter-grade scale rows: "A 93-100%", "B+ = 87 to 89".
var gradeScaleRe = regexp.MustCompile(`^[A-F][+-]?\s*[:=]?\s*(?:>=?\s*)?\d+(?:\.\d+)?\s*%?\s*(?:-|to)\s*\d+`)

// Filter is a stoplist predicate. It holds no mutable state after
// construction and is safe for concurrent use.
type Filter struct {
	prefixes []string
	phrases  []string
	lines    []string
}

// New returns a Filter with the built-in stoplist plus extra phrases. Extra
// phrases apply to both titles and lines.
func New(extra ...string) *Filter {
	f := &Filter{
		prefixes: titlePrefixes,
		phrases:  append([]string(nil), titlePhrases...),
		lines:    append([]string(nil), linePhrases...),
	}
	for _, p := range extra {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		f.phrases = append(f.phrases, p)
		f.lines = append(f.lines, p)
	}
	return f
}

// IsJunk reports whether a candidate title is a known non-assessment phrase.
func (f *Filter) IsJunk(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" || len(t) > maxTitleLen || !hasLetter(t) || exactTitles[t] {
		return true
	}
	for _, p := range f.prefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	for _, p := range f.phrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

// IsJunkLine reports whether a whole line is boilerplate to be ignored by
// the recognizers.
func (f *Filter) IsJunkLine(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	if l == "" {
		return false
	}
	if gradeScaleRe.MatchString(strings.TrimSpace(line)) {
		return true
	}
	for _, p := range f.lines {
		if strings.Contains(l, p) {
			return true
		}
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
