// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grading

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/syllabus-engine/internal/textnorm"
	"github.com/pdiddy/syllabus-engine/pkg/types"
)

var (
	// gradingHeaderRe matches "Grading:", "Course grade:", "Grades will be
	// determined as follows:" and captures the item list after the colon.
	gradingHeaderRe = regexp.MustCompile(`(?i)^\s*(?:[-*]\s*)?(?:the\s+)?(?:final\s+|course\s+|overall\s+)?grad(?:ing|es?)\b[^:%]{0,40}:\s*(.+)$`)

	percentFirstRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*%\s*(?:for\s+|on\s+|from\s+|-\s*)?(.+)$`)
	nameFirstRe    = regexp.MustCompile(`^(.+?)\s*[:=(-]?\s*(\d+(?:\.\d+)?)\s*%\s*\)?$`)

	// eachQualifierRe marks items that belong to the drop-lowest or counted
	// families.
	eachQualifierRe = regexp.MustCompile(`(?i)\b(?:each|ea|apiece|drop(?:s|ped|ping)?|lowest|highest|best)\b|@|/\s*ea`)

	andSplitRe = regexp.MustCompile(`(?i)\s+and\s+`)

	ordinalRe = regexp.MustCompile(`(?i)\b(\d(?:st|nd|rd|th)|first|second|third|fourth|fifth|sixth)\s+(paper|essay|exam|examination|midterm|quiz|test|project|assignment|report)\b\s*(?:[:=(-]\s*)?(\d+(?:\.\d+)?)\s*%\)?`)
)

// piece is a substring of a line with its line-relative offset.
type piece struct {
	text  string
	start int
}

func (p piece) end() int { return p.start + len(p.text) }

// trim strips surrounding spaces, keeping the offset aligned.
func (p piece) trim() piece {
	lead := len(p.text) - len(strings.TrimLeft(p.text, " "))
	return piece{text: strings.TrimSpace(p.text), start: p.start + lead}
}

// splitItems splits s on commas and semicolons outside parentheses.
func splitItems(s string, base int) []piece {
	var out []piece
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',', ';':
			if depth == 0 {
				out = append(out, piece{text: s[start:i], start: base + start})
				start = i + 1
			}
		}
	}
	return append(out, piece{text: s[start:], start: base + start})
}

// splitAnd splits a piece holding two weights joined by "and".
func splitAnd(p piece) []piece {
	if strings.Count(p.text, "%") < 2 {
		return []piece{p}
	}
	var out []piece
	prev := 0
	for _, m := range andSplitRe.FindAllStringIndex(p.text, -1) {
		out = append(out, piece{text: p.text[prev:m[0]], start: p.start + prev})
		prev = m[1]
	}
	return append(out, piece{text: p.text[prev:], start: p.start + prev})
}

// findGradingLines is family 1: comma-separated grading lines.
func findGradingLines(in Input, _ Context) []Match {
	var out []Match
	for _, l := range in.Lines {
		for _, p := range gradingLineItems(l) {
			if eachQualifierRe.MatchString(p.text) {
				continue
			}
			if match, ok := gradingItem(p, lineSpan(l, p.start, p.end())); ok {
				out = append(out, match)
			}
		}
	}
	return out
}

// gradingLineItems returns the trimmed items of a grading line, or nil when
// l is not one.
func gradingLineItems(l textnorm.Line) []piece {
	m := gradingHeaderRe.FindStringSubmatchIndex(l.Text)
	if m == nil {
		return nil
	}
	var out []piece
	for _, raw := range splitItems(l.Text[m[2]:m[3]], m[2]) {
		for _, p := range splitAnd(raw) {
			p = p.trim()
			if lower := strings.ToLower(p.text); strings.HasPrefix(lower, "and ") {
				p = piece{text: p.text[4:], start: p.start + 4}.trim()
			}
			if p.text != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// unclaimedQualified returns the qualified grading-line items ("Quizzes 10%
// each") left to the group families that none of them claimed.
func unclaimedQualified(in Input, claimed []Span) []string {
	var out []string
	for _, l := range in.Lines {
		for _, p := range gradingLineItems(l) {
			if !eachQualifierRe.MatchString(p.text) || !strings.Contains(p.text, "%") {
				continue
			}
			if !overlapsAny(lineSpan(l, p.start, p.end()), claimed) {
				out = append(out, p.text)
			}
		}
	}
	return out
}

// gradingItem parses one "N% Name" or "Name N%" item.
func gradingItem(p piece, span Span) (Match, bool) {
	if m := percentFirstRe.FindStringSubmatch(p.text); m != nil {
		v, ok := parsePercent(m[1])
		title := cleanTitle(m[2])
		if !ok || title == "" || strings.Contains(title, "%") {
			return Match{}, false
		}
		return newMatch(FamilyGradingLine, "percent-first", span, title, Weight{Value: v, Unit: Percent}, types.KindSingle), true
	}
	if m := nameFirstRe.FindStringSubmatch(p.text); m != nil {
		v, ok := parsePercent(m[2])
		title := cleanTitle(m[1])
		if !ok || title == "" || strings.Contains(title, "%") {
			return Match{}, false
		}
		return newMatch(FamilyGradingLine, "name-first", span, title, Weight{Value: v, Unit: Percent}, types.KindSingle), true
	}
	return Match{}, false
}

// findOrdinals is family 2: "1st Paper: 20%", "Second Essay (25%)".
func findOrdinals(in Input, _ Context) []Match {
	var out []Match
	lineMatches(ordinalRe, in.Lines, func(l textnorm.Line, m []int) {
		v, ok := parsePercent(group(l.Text, m, 3))
		if !ok {
			return
		}
		title := capitalize(group(l.Text, m, 1) + " " + group(l.Text, m, 2))
		out = append(out, newMatch(FamilyOrdinal, "ordinal", lineSpan(l, m[0], m[1]), title, Weight{Value: v, Unit: Percent}, types.KindSingle))
	})
	return out
}

// findActivity is family 5: an attendance threshold to pass in an
// activity or 1-credit course becomes the whole grade.
func findActivity(_ Input, ctx Context) []Match {
	if !ctx.ActivityCourse || ctx.AttendanceThreshold == 0 {
		return nil
	}
	title := fmt.Sprintf("Attendance and Participation (%d%% required to pass)", ctx.AttendanceThreshold)
	return []Match{newMatch(FamilyActivity, "attendance", ctx.AttendanceSpan, title, Weight{Value: 100, Unit: Percent}, types.KindActivity)}
}
