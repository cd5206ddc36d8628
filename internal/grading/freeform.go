// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grading

import (
	"regexp"
	"strings"

	"github.com/pdiddy/syllabus-engine/internal/textnorm"
	"github.com/pdiddy/syllabus-engine/pkg/types"
)

var (
	// tableRowRe matches "Homework 10 20%", "Test 1: 15%", and
	// "Participation 12.5% in-class discussion". Groups: 1 name, 2 count,
	// 3 percent, 4 description.
	tableRowRe = regexp.MustCompile(`^(?:[-*+]\s*)?([A-Za-z][A-Za-z0-9 &/',.()-]*?)\s*[:|=-]?\s*(?:(\d{1,3})\s+)?(\d{1,3}(?:\.\d+)?)\s*%\s*(.*)$`)

	// tableProseRe marks row names that are really sentences.
	tableProseRe = regexp.MustCompile(`(?i)\b(?:will|is|are|be|counts?|contributes?|worth|makes?|account|you|your|of|for|based|than)\b`)

	// fractionRe matches "the homework will contribute 20% of your grade".
	fractionRe = regexp.MustCompile(`(?i)\b([A-Za-z][A-Za-z -]{2,60}?)\s+(?:will\s+)?(?:be\s+)?(?:contribute|contributes|counts?(?:\s+(?:as|for))?|(?:is|are)\s+worth|worth|accounts?\s+for|makes?\s+up|constitutes?)\s+(\d+(?:\.\d+)?)\s*%\s+of\s+(?:your|the)\s+(?:\w+\s+)?grade`)

	midtermRe  = regexp.MustCompile(`(?i)\bmid-?term\b`)
	endtermRe  = regexp.MustCompile(`(?i)\bend-?(?:of-?)?term\b`)
	halfRe     = regexp.MustCompile(`(?i)\bhalf\b|\b50\s*%`)
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]?`)

	parenPercentRe = regexp.MustCompile(`([A-Za-z][A-Za-z0-9 &/'-]{0,60}?)\s*\(\s*(\d+(?:\.\d+)?)\s*%\s*\)`)
	colonPercentRe = regexp.MustCompile(`([A-Za-z][A-Za-z0-9 &/'()-]{0,60}?)\s*:\s*(\d+(?:\.\d+)?)\s*%`)
	leadPercentRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%\s*(?:for\s+|on\s+|from\s+|-\s*|:\s*)?([A-Za-z][A-Za-z0-9 &/'-]{0,60})`)
)

// findTableRows is family 7: one "Name [count] percent [description]" row
// per line.
func findTableRows(in Input, _ Context) []Match {
	var out []Match
	for _, l := range in.Lines {
		m := tableRowRe.FindStringSubmatchIndex(l.Text)
		if m == nil {
			continue
		}
		name := cleanTitle(group(l.Text, m, 1))
		desc := strings.ToLower(strings.TrimSpace(group(l.Text, m, 4)))
		if len(name) < 3 || len(strings.Fields(name)) > 6 || tableProseRe.MatchString(name) || strings.HasPrefix(desc, "of ") {
			continue
		}
		v, ok := parsePercent(group(l.Text, m, 3))
		if !ok {
			continue
		}
		if count := group(l.Text, m, 2); count != "" && keepsCount(name) {
			name += " " + count
		}

		end := len(l.Text)
		if strings.Contains(desc, "%") {
			end = m[7] + strings.IndexByte(l.Text[m[7]:], '%') + 1
		}
		out = append(out, newMatch(FamilyTable, "row", lineSpan(l, m[0], end), name, Weight{Value: v, Unit: Percent}, types.KindSingle))
	}
	return out
}

// keepsCount reports whether a number between a row name and its percent is
// part of the name ("Test 1") rather than an item count ("Homework 10").
func keepsCount(name string) bool {
	words := strings.Fields(strings.ToLower(name))
	last := words[len(words)-1]
	return !strings.HasSuffix(last, "s") && !strings.HasSuffix(last, "work")
}

// findFreeform is family 8. Its idioms are tried in a fixed order: fraction
// prose, half/half mid-term and end-term prose, point-allocation prose,
// then the "Name (N%)", "Name: N%", and "N% Name" catch-alls.
func findFreeform(in Input, _ Context) []Match {
	var out []Match
	lineMatches(fractionRe, in.Lines, func(l textnorm.Line, m []int) {
		v, ok := parsePercent(group(l.Text, m, 2))
		title := capitalize(tailTitle(group(l.Text, m, 1)))
		if ok && title != "" {
			out = append(out, newMatch(FamilyFreeform, "fraction", lineSpan(l, m[0], m[1]), title, Weight{Value: v, Unit: Percent}, types.KindSingle))
		}
	})
	out = append(out, halfAndHalf(in)...)
	out = append(out, prosePoints(in)...)
	out = append(out, namedPercents(in, parenPercentRe, "paren", 1, 2, tailTitle)...)
	out = append(out, namedPercents(in, colonPercentRe, "colon", 1, 2, tailTitle)...)
	out = append(out, namedPercents(in, leadPercentRe, "lead", 2, 1, leadTitle)...)
	return out
}

// halfAndHalf recognizes a sentence splitting the grade evenly between a
// mid-term and an end-term exam.
func halfAndHalf(in Input) []Match {
	for _, l := range in.Lines {
		for _, s := range sentenceRe.FindAllStringIndex(l.Text, -1) {
			sentence := l.Text[s[0]:s[1]]
			if !midtermRe.MatchString(sentence) || !endtermRe.MatchString(sentence) || !halfRe.MatchString(sentence) {
				continue
			}
			span := lineSpan(l, s[0], s[1])
			match := Match{Span: span}
			for _, title := range []string{"Mid-term Exam", "End-term Exam"} {
				c := newMatch(FamilyFreeform, "half", span, title, Weight{Value: 50, Unit: Percent}, types.KindSingle).Candidates[0]
				match.Candidates = append(match.Candidates, c)
			}
			return []Match{match}
		}
	}
	return nil
}

// namedPercents applies one catch-all pattern; nameGroup and pctGroup are
// submatch indexes and shorten trims the captured name.
func namedPercents(in Input, re *regexp.Regexp, pattern string, nameGroup, pctGroup int, shorten func(string) string) []Match {
	var out []Match
	lineMatches(re, in.Lines, func(l textnorm.Line, m []int) {
		v, ok := parsePercent(group(l.Text, m, pctGroup))
		title := capitalize(shorten(group(l.Text, m, nameGroup)))
		if !ok || title == "" {
			return
		}
		out = append(out, newMatch(FamilyFreeform, pattern, lineSpan(l, m[0], m[1]), title, Weight{Value: v, Unit: Percent}, types.KindSingle))
	})
	return out
}
