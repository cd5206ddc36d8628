// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grading

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/syllabus-engine/pkg/types"
)

// Point totals in this range are converted to percents of the total.
const (
	minPointTotal = 200
	maxPointTotal = 500
)

// partRe strips a part qualifier: "Midterm test 1 (part A)" → "Midterm test 1".
var partRe = regexp.MustCompile(`(?i)\s*[(,-]?\s*\bpart\s+[A-Za-z0-9]{1,2}\)?\s*$`)

// Normalize turns accepted candidates into a grading scheme: it converts
// points to percents, aggregates parts, collapses grouped items, removes
// duplicate titles, and checks that the total closes near 100.
func Normalize(cands []Candidate, cfg types.ExtractionConfig) types.GradingScheme {
	cfg = cfg.WithDefaults()

	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Span.Start < sorted[j].Span.Start })

	for _, c := range sorted {
		if c.Kind == types.KindActivity {
			return closeScheme([]Candidate{c}, cfg)
		}
	}

	var percents, points []Candidate
	for _, c := range sorted {
		if c.Weight.Unit == Points {
			points = append(points, c)
		} else {
			percents = append(percents, c)
		}
	}
	merged := append(percents, convertPoints(points, cfg)...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Span.Start < merged[j].Span.Start })

	return closeScheme(dedupe(collapseGroups(merged)), cfg)
}

// convertPoints sums parts sharing a base name, then converts the items to
// percents when the total is in the points range, keeps them when the total
// is already about 100, and discards them otherwise.
func convertPoints(points []Candidate, cfg types.ExtractionConfig) []Candidate {
	if len(points) == 0 {
		return nil
	}
	var items []Candidate
	index := make(map[string]int)
	var total float64
	for _, c := range points {
		base := strings.TrimSpace(partRe.ReplaceAllString(c.Title, ""))
		if base == "" {
			base = c.Title
		}
		total += c.Weight.Value
		if i, ok := index[titleKey(base)]; ok {
			items[i].Weight.Value += c.Weight.Value
			items[i].Span.End = max(items[i].Span.End, c.Span.End)
			continue
		}
		c.Title = base
		index[titleKey(base)] = len(items)
		items = append(items, c)
	}

	switch {
	case total >= minPointTotal && total <= maxPointTotal:
		for i := range items {
			items[i].Weight = Weight{Value: round(items[i].Weight.Value/total*100, cfg.PercentPrecision), Unit: Percent}
		}
	case math.Abs(total-100) <= cfg.Tolerance:
		for i := range items {
			items[i].Weight.Unit = Percent
		}
	default:
		return nil
	}
	return items
}

// collapseGroups keeps the first candidate of each group.
func collapseGroups(cands []Candidate) []Candidate {
	seen := make(map[string]bool)
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Group != "" {
			if seen[c.Group] {
				continue
			}
			seen[c.Group] = true
		}
		out = append(out, c)
	}
	return out
}

// dedupe removes candidates with the same title. Within one family the
// later candidate replaces the earlier one in place; across families the
// higher-priority family is kept.
func dedupe(cands []Candidate) []Candidate {
	index := make(map[string]int)
	var out []Candidate
	for _, c := range cands {
		key := titleKey(c.Title)
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, c)
			continue
		}
		if c.Family <= out[i].Family {
			span := out[i].Span
			out[i] = c
			out[i].Span = span
		}
	}
	return out
}

// closeScheme builds the scheme and runs the closing check.
func closeScheme(cands []Candidate, cfg types.ExtractionConfig) types.GradingScheme {
	var s types.GradingScheme
	families := make(map[Family]bool)
	for _, c := range cands {
		if c.Weight.Value <= 0 || c.Weight.Value > 100 {
			continue
		}
		s.Records = append(s.Records, types.AssessmentRecord{
			Title:   c.Title,
			Percent: c.Weight.Value,
			Type:    c.Kind,
			DueHint: c.DueHint,
		})
		s.Total += c.Weight.Value
		families[c.Family] = true
	}
	s.Total = round(s.Total, 2)
	s.Families = len(families)
	s.Closed = len(s.Records) > 0 && math.Abs(s.Total-100) <= cfg.Tolerance
	return s
}
