// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package coursecode extracts a department + number (+ suffix) course code
// and an optional course name from syllabus text, with a fallback to a code
// embedded in the document identifier.
package coursecode

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/syllabus-engine/internal/textnorm"
	"github.com/pdiddy/syllabus-engine/pkg/types"
)

var (
	// codeRe matches "EE 382", "EE382N", "EE 382 N", "CHx301", and "Ex 302".
	// Groups: 1 department, 2 attached lower-case artifact, 3 number,
	// 4 suffix. A code never spans a line break.
	codeRe = regexp.MustCompile(`\b([A-Z]{1,4})(?:([a-z])[ \t]?|[ \t]?)(\d{3})(?:[ \t]?([A-Z]))?\b`)

	// fallbackRe finds a code inside an identifier like "syllabus_ee382n".
	fallbackRe = regexp.MustCompile(`(?i)(?:^|[^a-z])([a-z]{1,4})[\s_.-]?(\d{3})([a-z])?(?:$|[^a-z0-9])`)

	// precededByTimeRe matches text ending in a clock time, so that room
	// codes after meeting times ("2:00 CAL 100") are not taken as courses.
	precededByTimeRe = regexp.MustCompile(`(?i)(?:\d:\d\d|\d\s*(?:am|pm|a\.m\.|p\.m\.|a|p|n))\s*[,;|]?\s*(?:(?:in|at)\s+)?$`)

	// precededByPlaceRe matches text ending in a location marker.
	precededByPlaceRe = regexp.MustCompile(`(?i)(?:\broom|\brm\.?|@|\blocation:?|\bplace:?|\bwhere:?|\bbuilding:?)\s*$`)

	courseTitleRe = regexp.MustCompile(`(?im)^\s*course\s+(?:title|name)\s*:\s*(.+)$`)

	trailingNoiseRe = regexp.MustCompile(`(?i)[\s:,-]*(?:course\s+)?(?:syllabus|outline|information)?[\s:,.-]*$`)
)

// notDepartments are upper-case tokens that look like departments but are
// day runs, meridiems, or room abbreviations.
var notDepartments = map[string]bool{
	"MWF": true, "MW": true, "WF": true, "TTH": true, "TR": true, "TH": true,
	"TU": true, "MTWR": true, "MTWF": true, "MTW": true, "AM": true, "PM": true,
	"RM": true, "NO": true, "PG": true, "PP": true, "SEC": true,
	"EXT": true, "FAX": true, "TEL": true, "ID": true,
}

// Resolver extracts course codes. Safe for concurrent use.
type Resolver struct {
	corrections map[string]string
}

// NewResolver returns a Resolver that rewrites confusable department
// prefixes using corrections (e.g. {"MA": "M"}).
func NewResolver(corrections map[string]string) *Resolver {
	c := make(map[string]string, len(corrections))
	for k, v := range corrections {
		c[strings.ToUpper(k)] = strings.ToUpper(v)
	}
	return &Resolver{corrections: c}
}

// Result is the outcome of Resolve.
type Result struct {
	Code *types.CourseCode
	Name string
}

type occurrence struct {
	code  types.CourseCode
	start int
	end   int
}

// Resolve returns the best-effort course code and name for doc, falling
// back to fallbackID when the text holds no code. Code is nil when nothing
// matches.
func (r *Resolver) Resolve(doc *textnorm.Document, fallbackID string) Result {
	occs := r.scan(doc.Text)
	if len(occs) == 0 {
		code := r.FromIdentifier(fallbackID)
		return Result{Code: code, Name: titleLine(doc.Text)}
	}

	best := pickBest(occs)
	name := titleLine(doc.Text)
	if name == "" {
		name = nameAfter(doc, best)
	}
	code := best.code
	return Result{Code: &code, Name: name}
}

// scan finds every plausible code occurrence in text order.
func (r *Resolver) scan(text string) []occurrence {
	var occs []occurrence
	for _, m := range codeRe.FindAllStringSubmatchIndex(text, -1) {
		dept := text[m[2]:m[3]]
		if notDepartments[dept] {
			continue
		}
		before := text[max(0, m[0]-16):m[0]]
		if precededByTimeRe.MatchString(before) || precededByPlaceRe.MatchString(before) {
			continue
		}
		// Group 2, an attached lower-case letter, is a department-name
		// artifact and is dropped.
		number := text[m[6]:m[7]]
		var suffix string
		if m[8] >= 0 {
			suffix = text[m[8]:m[9]]
		}
		occs = append(occs, occurrence{
			code:  r.correct(types.CourseCode{Department: dept, Number: number, Suffix: suffix}),
			start: m[0],
			end:   m[1],
		})
	}
	return occs
}

// correct applies the department correction map, preserving the suffix.
func (r *Resolver) correct(c types.CourseCode) types.CourseCode {
	if to, ok := r.corrections[c.Department]; ok {
		c.Department = to
	}
	return c
}

// pickBest chooses the most frequent department+number (first occurrence
// breaks ties) and prefers any suffixed variant of it.
func pickBest(occs []occurrence) occurrence {
	type tally struct {
		count int
		first int
	}
	counts := make(map[string]*tally)
	var order []string
	for i, o := range occs {
		key := o.code.Department + " " + o.code.Number
		t, ok := counts[key]
		if !ok {
			t = &tally{first: i}
			counts[key] = t
			order = append(order, key)
		}
		t.count++
	}

	bestKey := order[0]
	for _, k := range order[1:] {
		if counts[k].count > counts[bestKey].count {
			bestKey = k
		}
	}

	best := occs[counts[bestKey].first]
	for _, o := range occs {
		if o.code.Department+" "+o.code.Number == bestKey && o.code.Suffix != "" {
			best.code.Suffix = o.code.Suffix
			break
		}
	}
	return best
}

// FromIdentifier extracts a code from an external identifier such as a
// folder name. It returns nil when the identifier does not follow the
// department convention.
func (r *Resolver) FromIdentifier(id string) *types.CourseCode {
	if id == "" {
		return nil
	}
	base := filepath.Base(strings.TrimSpace(id))
	m := fallbackRe.FindStringSubmatch(base)
	if m == nil {
		return nil
	}
	dept := strings.ToUpper(m[1])
	if notDepartments[dept] {
		return nil
	}
	code := r.correct(types.CourseCode{
		Department: dept,
		Number:     m[2],
		Suffix:     strings.ToUpper(m[3]),
	})
	return &code
}

// titleLine returns the value of a "Course Title:" line, if any.
func titleLine(text string) string {
	m := courseTitleRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return cleanName(m[1])
}

// nameAfter reads a course name from the rest of the line holding the code:
// "EE 382N: Distributed Systems (Fall 2015)" yields "Distributed Systems".
func nameAfter(doc *textnorm.Document, o occurrence) string {
	line, ok := doc.LineAt(o.start)
	if !ok {
		return ""
	}
	if o.end > line.End() {
		return ""
	}
	rest := doc.Text[o.end:line.End()]
	rest = strings.TrimLeft(rest, " :-,")
	return cleanName(rest)
}

func cleanName(s string) string {
	if i := strings.IndexAny(s, "(|;"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, " - "); i >= 0 {
		s = s[:i]
	}
	s = trailingNoiseRe.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.TrimSpace(s)
	if len(s) < 3 || len(s) > 80 || strings.ContainsAny(s, "%@") || strings.Contains(s, ":") {
		return ""
	}
	letters := 0
	for _, c := range s {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			letters++
		}
	}
	if letters < 3 {
		return ""
	}
	return s
}
