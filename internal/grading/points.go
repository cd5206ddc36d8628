// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grading

import (
	"math"
	"regexp"
	"strings"

	"github.com/pdiddy/syllabus-engine/internal/textnorm"
	"github.com/pdiddy/syllabus-engine/pkg/types"
)

var (
	// pointsItemRe matches "Name: N", "Name = N points" items ending at a
	// separator or the end of the line.
	pointsItemRe = regexp.MustCompile(`([A-Za-z][A-Za-z0-9 ()'&/.#-]*?)\s*[:=]\s*(\d+(?:\.\d+)?)\s*((?i:points?|pts\.?))?\s*(?:[,;]|$)`)

	// pointsRowRe matches a whole line "Homework 100 points".
	pointsRowRe = regexp.MustCompile(`^(?:[-*+]\s*)?([A-Za-z][A-Za-z0-9 ()'&/#-]*?)\s*[-(]?\s*(\d+(?:\.\d+)?)\s*(?i:points?|pts\.?)\)?\s*(?:\(([^)]*)\))?\s*$`)

	// proseWordRe marks names that are sentence fragments rather than items.
	proseWordRe = regexp.MustCompile(`(?i)\b(?:you|your|will|can|may|must|earn|is|are|be|up\s+to|per|out\s+of|of|than|worth)\b`)

	// clockRangeRe marks meeting-time lines such as "MWF 10:00-11:00".
	clockRangeRe = regexp.MustCompile(`\d{1,2}:\d{2}\s*(?:[ap]\.?m\.?\s*)?-\s*\d{1,2}(?::\d{2})?`)

	// prosePointsRe matches "40 points for homework" in running text.
	prosePointsRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s+points?\s+(?:for|from|on)\s+(?:the\s+|your\s+)?([A-Za-z][A-Za-z -]{1,40}?)\s*(?:[,;.)]|\s+and\s|$)`)
)

// nonItemNames are "Name: N" labels that are never graded items.
var nonItemNames = []string{
	"room", "rm", "section", "sec", "unique", "office", "phone", "ext",
	"fax", "time", "date", "credit", "zip", "page",
	"chapter", "week", "lecture", "call",
}

// findPoints is family 3: point-valued items. A line qualifies when it
// carries a points keyword or at least two "Name: N" items, and holds no
// percent sign.
func findPoints(in Input, _ Context) []Match {
	var out []Match
	for _, l := range in.Lines {
		if strings.Contains(l.Text, "%") || clockRangeRe.MatchString(l.Text) {
			continue
		}
		if m := pointsRowRe.FindStringSubmatchIndex(l.Text); m != nil {
			if match, ok := pointsMatch(l, m, "row"); ok {
				out = append(out, match)
			}
			continue
		}

		ms := pointsItemRe.FindAllStringSubmatchIndex(l.Text, -1)
		keyword := false
		for _, m := range ms {
			if m[6] >= 0 {
				keyword = true
			}
		}
		if !keyword && len(ms) < 2 {
			continue
		}
		for _, m := range ms {
			if match, ok := pointsMatch(l, m, "item"); ok {
				out = append(out, match)
			}
		}
	}
	return out
}

func pointsMatch(l textnorm.Line, m []int, pattern string) (Match, bool) {
	name := cleanTitle(group(l.Text, m, 1))
	if name == "" || proseWordRe.MatchString(name) || isNonItem(name) || len(strings.Fields(name)) > 6 {
		return Match{}, false
	}
	v, ok := parsePoints(group(l.Text, m, 2))
	if !ok {
		return Match{}, false
	}
	return newMatch(FamilyPoints, pattern, lineSpan(l, m[0], m[1]), name, Weight{Value: v, Unit: Points}, types.KindSingle), true
}

func isNonItem(name string) bool {
	first := strings.ToLower(strings.Fields(name)[0])
	first = strings.TrimRight(first, ".#")
	for _, n := range nonItemNames {
		if first == n {
			return true
		}
	}
	return false
}

// prosePoints is the freeform point-allocation idiom: "40 points for
// homework, 60 points from exams". It yields matches only when the stated
// points add up to 100, and then as percents.
func prosePoints(in Input) []Match {
	var out []Match
	var sum float64
	lineMatches(prosePointsRe, in.Lines, func(l textnorm.Line, m []int) {
		v, ok := parsePoints(group(l.Text, m, 1))
		title := capitalize(leadTitle(group(l.Text, m, 2)))
		if !ok || title == "" {
			return
		}
		sum += v
		out = append(out, newMatch(FamilyFreeform, "prose-points", lineSpan(l, m[0], m[1]), title, Weight{Value: v, Unit: Percent}, types.KindSingle))
	})
	if len(out) < 2 || math.Abs(sum-100) > 0.5 {
		return nil
	}
	return out
}
