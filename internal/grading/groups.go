// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grading

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/syllabus-engine/internal/textnorm"
	"github.com/pdiddy/syllabus-engine/pkg/types"
)

var (
	// highestRe matches "Highest two test scores 20% each" and
	// "Best 3 of 4 quizzes 10% each".
	highestRe = regexp.MustCompile(`(?i)\b(highest|best|top)\s+(` + countWordPattern + `)(?:\s+(?:of|out\s+of)\s+(?:the\s+)?(` + countWordPattern + `))?\s+([A-Za-z][A-Za-z -]{0,30}?)\s*[:=(-]?\s*(\d+(?:\.\d+)?)\s*%\s*\)?(?:\s*(each|ea|apiece)\b)?`)

	// dropBeforeRe matches "Tests (3 in-class, drop lowest) 40%".
	dropBeforeRe = regexp.MustCompile(`(?i)([A-Za-z][A-Za-z0-9 -]{0,40}?)\s*\(([^)]*\b(?:drop(?:s|ped|ping)?|lowest)\b[^)]*)\)\s*[:=-]?\s*(\d+(?:\.\d+)?)\s*%`)

	// dropAfterRe matches "Quizzes 10% (lowest dropped)".
	dropAfterRe = regexp.MustCompile(`(?i)([A-Za-z][A-Za-z0-9 -]{0,40}?)\s*[:=-]?\s*(\d+(?:\.\d+)?)\s*%\s*\(([^)]*\b(?:drop(?:s|ped|ping)?|lowest)\b[^)]*)\)`)

	scoreWordsRe = regexp.MustCompile(`(?i)\s+(?:scores?|grades?|marks?)$`)

	// countedRe matches "Three midterms 20%/ea", "3 Midterm Exams: 20% each"
	// and "3 Examinations @ 20% each".
	countedRe = regexp.MustCompile(`(?i)\b(` + countWordPattern + `)\s+((?:in-class\s+|midterm\s+|mid-term\s+|hour\s+|unit\s+)?(?:exams?|examinations?|tests?|quizzes|quiz|papers?|projects?|essays?|assignments?|homeworks?|labs?|reports?|presentations?)|mid-?terms?)\b\s*(?:\([^)]*\))?\s*[:=(-]?\s*(?:@|at\b)?\s*(\d+(?:\.\d+)?)\s*%\s*\)?\s*(?:/\s*ea\b\.?|each\b|ea\b\.?|apiece\b)`)
)

// findDropLowest is family 4: a group of like items graded together, with
// some scores dropped. It yields one record per group at the stated total.
func findDropLowest(in Input, _ Context) []Match {
	var out []Match
	lineMatches(highestRe, in.Lines, func(l textnorm.Line, m []int) {
		n, ok := parseCount(group(l.Text, m, 2))
		pct, okPct := parsePercent(group(l.Text, m, 5))
		if !ok || !okPct {
			return
		}
		noun := scoreWordsRe.ReplaceAllString(strings.TrimSpace(group(l.Text, m, 4)), "")
		if noun == "" {
			return
		}
		label := strings.ToLower(group(l.Text, m, 1)) + " " + strconv.Itoa(n)
		if of, ok := parseCount(group(l.Text, m, 3)); ok {
			label += " of " + strconv.Itoa(of)
		}
		if group(l.Text, m, 6) != "" {
			pct *= float64(n)
		}
		if pct > 100 {
			return
		}
		plural := capitalize(pluralize(strings.ToLower(noun)))
		out = append(out, groupMatch(FamilyDropLowest, "highest", lineSpan(l, m[0], m[1]),
			plural+" ("+label+")", pct, types.KindDropLowest, plural))
	})
	lineMatches(dropBeforeRe, in.Lines, func(l textnorm.Line, m []int) {
		pct, ok := parsePercent(group(l.Text, m, 3))
		name := tailTitle(group(l.Text, m, 1))
		if !ok || name == "" {
			return
		}
		title := capitalize(name) + " (" + strings.TrimSpace(group(l.Text, m, 2)) + ")"
		out = append(out, groupMatch(FamilyDropLowest, "drop-before", lineSpan(l, m[0], m[1]), title, pct, types.KindDropLowest, name))
	})
	lineMatches(dropAfterRe, in.Lines, func(l textnorm.Line, m []int) {
		pct, ok := parsePercent(group(l.Text, m, 2))
		name := tailTitle(group(l.Text, m, 1))
		if !ok || name == "" {
			return
		}
		title := capitalize(name) + " (" + strings.TrimSpace(group(l.Text, m, 3)) + ")"
		out = append(out, groupMatch(FamilyDropLowest, "drop-after", lineSpan(l, m[0], m[1]), title, pct, types.KindDropLowest, name))
	})
	return out
}

// findCounted is family 6: "N items at P% each". When the text names at
// least N distinct instances ("Midterm 1", "Midterm 2"), each instance is
// its own record; otherwise the statement is one aggregate record.
func findCounted(in Input, ctx Context) []Match {
	var out []Match
	lineMatches(countedRe, in.Lines, func(l textnorm.Line, m []int) {
		n, ok := parseCount(group(l.Text, m, 1))
		pct, okPct := parsePercent(group(l.Text, m, 3))
		if !ok || !okPct || n < 2 || pct*float64(n) > 100 {
			return
		}
		span := lineSpan(l, m[0], m[1])
		noun := strings.TrimSpace(group(l.Text, m, 2))

		base, basePattern := instanceBase(noun)
		if labels := instanceLabels(in.Text, basePattern, span); len(labels) >= n {
			match := Match{Span: span}
			for _, label := range labels[:n] {
				c := newMatch(FamilyCounted, "instances", span, base+" "+label, Weight{Value: pct, Unit: Percent}, types.KindSingle).Candidates[0]
				match.Candidates = append(match.Candidates, c)
			}
			out = append(out, match)
			return
		}

		display := capitalize(noun)
		lower := strings.ToLower(noun)
		if ctx.InClassExams && !strings.Contains(lower, "in-class") && (strings.Contains(lower, "exam") || strings.Contains(lower, "test")) {
			display = "In-class " + lower
		}
		title := fmt.Sprintf("%s (%d x %s%%)", display, n, formatNumber(pct))
		out = append(out, groupMatch(FamilyCounted, "aggregate", span, title, pct*float64(n), types.KindAggregate, noun))
	})
	return out
}

// groupMatch builds a grouped single-candidate match.
func groupMatch(f Family, pattern string, span Span, title string, pct float64, kind types.AssessmentKind, group string) Match {
	m := newMatch(f, pattern, span, title, Weight{Value: pct, Unit: Percent}, kind)
	m.Candidates[0].Group = strings.ToLower(pluralize(strings.TrimSpace(group)))
	return m
}

// instanceBase returns the display name of one instance of a counted noun
// ("Midterm Exams" → "Midterm") and a pattern matching it in text.
func instanceBase(noun string) (string, string) {
	lower := strings.ToLower(noun)
	if strings.Contains(lower, "mid") {
		return "Midterm", `mid-?term`
	}
	words := strings.Fields(lower)
	base := singularize(words[len(words)-1])
	return capitalize(base), regexp.QuoteMeta(base)
}

// instanceLabels lists the distinct instance labels ("1", "2", "II") that
// follow basePattern in text, outside skip, in order of appearance.
func instanceLabels(text, basePattern string, skip Span) []string {
	re := regexp.MustCompile(`(?i)\b` + basePattern + `(?:\s+exam(?:ination)?)?\s*#?\s*(\d{1,2}|iv|v|i{1,3})\b`)
	seen := make(map[string]bool)
	var labels []string
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		if (Span{Start: m[0], End: m[1]}).Overlaps(skip) {
			continue
		}
		label := strings.ToUpper(text[m[2]:m[3]])
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	return labels
}
