// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package meeting finds weekly class-meeting statements (days, time range,
// location) in syllabus text.
//
// Like the grading cascade, recognizers run in a fixed order and the runner
// owns span claiming: keyworded headers first, then season-prefixed
// statements, then bare day-token statements. Locations are read inline,
// from a labelled value near a header, or from a room token on the next
// lines. Statements inside an office-hours clause never become records.
package meeting

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/syllabus-engine/internal/textnorm"
	"github.com/pdiddy/syllabus-engine/pkg/types"
)

var (
	// headerRe matches a meeting header and ends where its body begins.
	headerRe = regexp.MustCompile(`(?i)^\s*(?:[-*]\s*)?(?:section|lecture|discussion|lab(?:oratory)?|class\s+meetings?|meeting\s+times?|time\s+and\s+place|date\s*/\s*time\s*/\s*location|information\s+time|class\s+time|class\s+hours|time|hours)\b[^:]{0,25}:\s*`)

	// daysTimeRe matches "MWF 10-11 a.m.". Groups: days, then the four
	// time-range groups.
	daysTimeRe = regexp.MustCompile(`(` + daysPattern + `)\s*(?:[,:|]\s*)?(?:(?i:from|at)\s+)?` + timeRangePattern)

	// timeDaysRe matches "10-11 a.m. MWF". Groups: the four time-range
	// groups, then days.
	timeDaysRe = regexp.MustCompile(timeRangePattern + `\s*(?:[,|]\s*)?(?:(?i:on|every)\s+)?(` + daysPattern + `)`)

	// seasonRe matches "Spring 2015 TTH 12:30-2:00". Groups: season, year,
	// days, then the four time-range groups.
	seasonRe = regexp.MustCompile(`(?i:\b(spring|summer|fall|autumn|winter)\s+((?:19|20)\d{2}))\s*[:,-]?\s*(` + daysPattern + `)\s*(?:[,:|]\s*)?` + timeRangePattern)

	// officeClauseEndRe matches a line that ends by opening an office-hours
	// block: "UTC 3.112 Office Hours:".
	officeClauseEndRe = regexp.MustCompile(`(?i)\boffice\s+hours?\s*:?\s*$`)

	// officeHeaderRe matches a line that starts an office-hours block:
	// "Office hours: Tuesday 2-3 pm," or "TA Office Hours (GDC 1.302):".
	officeHeaderRe = regexp.MustCompile(`(?i)^\s*(?:[-*]\s*)?(?:[\w.']+\s+){0,3}office\s+hours?\b[^:]{0,25}:`)
)

// officeBlockLines bounds how many lines an office-hours block runs past
// its opening line when no blank line or header ends it.
const officeBlockLines = 6

// Base confidence per recognizer.
const (
	headerConfidence   = 0.9
	seasonConfidence   = 0.85
	dayTokenConfidence = 0.75
)

// span is a half-open byte range in the normalized text.
type span struct {
	start int
	end   int
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// Candidate is a meeting statement before deduplication.
type Candidate struct {
	Days       []types.Weekday
	Start      string
	End        string
	Location   string
	Term       string
	Pattern    string
	Confidence float64

	span span
}

// statement describes where a regexp keeps its groups.
type statement struct {
	re                        *regexp.Regexp
	days, start, startMer     int
	end, endMer, season, year int
}

var (
	daysFirst = statement{re: daysTimeRe, days: 1, start: 2, startMer: 3, end: 4, endMer: 5, season: -1, year: -1}
	timeFirst = statement{re: timeDaysRe, start: 1, startMer: 2, end: 3, endMer: 4, days: 5, season: -1, year: -1}
	seasonal  = statement{re: seasonRe, season: 1, year: 2, days: 3, start: 4, startMer: 5, end: 6, endMer: 7}
)

// Options configures an Extractor.
type Options struct {
	// LocationMaxLen bounds an accepted location (default 50).
	LocationMaxLen int

	// LocationWindow is how far past a header statement a labelled location
	// is searched (default 150).
	LocationWindow int
}

// Extractor runs the meeting cascade. It is safe for concurrent use.
type Extractor struct {
	opts   Options
	logger *zap.Logger
}

// New returns an Extractor. A nil logger disables diagnostics.
func New(opts Options, logger *zap.Logger) *Extractor {
	if opts.LocationMaxLen <= 0 {
		opts.LocationMaxLen = 50
	}
	if opts.LocationWindow <= 0 {
		opts.LocationWindow = 150
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{opts: opts, logger: logger}
}

// Extract returns the meeting records of doc in text order, with duplicate
// (days, start, end, location) records collapsed.
func (e *Extractor) Extract(doc *textnorm.Document) []types.MeetingRecord {
	return Records(e.Candidates(doc))
}

// Candidates runs the cascade and returns accepted candidates. A statement
// overlapping one claimed earlier is dropped; office-hours statements claim
// their span but are not returned.
func (e *Extractor) Candidates(doc *textnorm.Document) []Candidate {
	recognizers := []struct {
		name string
		find func(*textnorm.Document) []Candidate
	}{
		{"header", e.findHeaders},
		{"season", e.findSeasonal},
		{"day-token", e.findDayTokens},
	}

	var claimed []span
	var out []Candidate
	for _, r := range recognizers {
		for _, c := range r.find(doc) {
			if overlapsAny(c.span, claimed) {
				continue
			}
			claimed = append(claimed, c.span)
			if inOfficeHours(doc, c.span.start) {
				e.logger.Debug("office hours statement skipped",
					zap.String("recognizer", r.name),
					zap.String("start", c.Start),
					zap.String("end", c.End))
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// Records converts candidates to records and collapses duplicates.
func Records(cands []Candidate) []types.MeetingRecord {
	seen := make(map[string]bool)
	var out []types.MeetingRecord
	for _, c := range cands {
		key := joinDays(c.Days) + "|" + c.Start + "|" + c.End + "|" + strings.ToLower(c.Location)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, types.MeetingRecord{
			Days:      c.Days,
			StartTime: c.Start,
			EndTime:   c.End,
			Location:  c.Location,
			Term:      c.Term,
		})
	}
	return out
}

// findHeaders reads statements after keyworded headers. A header with an
// empty body takes its statement from the next non-empty line.
func (e *Extractor) findHeaders(doc *textnorm.Document) []Candidate {
	var out []Candidate
	for i, l := range doc.Lines {
		h := headerRe.FindStringIndex(l.Text)
		if h == nil {
			continue
		}
		target, from := i, h[1]
		if strings.TrimSpace(l.Text[h[1]:]) == "" {
			target, from = nextNonEmpty(doc, i), 0
			if target < 0 {
				continue
			}
		}
		for _, st := range []statement{daysFirst, timeFirst} {
			for _, c := range e.scanLine(doc, target, from, st, false) {
				c.Pattern = "header"
				c.Confidence = headerConfidence
				if c.Location == "" {
					c.Location = labelledLocation(doc, target, c.span.end, e.opts.LocationWindow, e.opts.LocationMaxLen)
				}
				if c.Location == "" {
					c.Location = nearbyLocation(doc, target, e.opts.LocationMaxLen)
				}
				out = append(out, c)
			}
		}
	}
	return out
}

// findSeasonal reads "Spring 2015 TTH 12:30-2:00 CAL 100" statements.
func (e *Extractor) findSeasonal(doc *textnorm.Document) []Candidate {
	var out []Candidate
	for i := range doc.Lines {
		for _, c := range e.scanLine(doc, i, 0, seasonal, false) {
			c.Pattern = "season"
			c.Confidence = seasonConfidence
			if c.Location == "" {
				c.Location = nearbyLocation(doc, i, e.opts.LocationMaxLen)
			}
			out = append(out, c)
		}
	}
	return out
}

// findDayTokens reads bare day-token statements in either order.
func (e *Extractor) findDayTokens(doc *textnorm.Document) []Candidate {
	var out []Candidate
	for i := range doc.Lines {
		for _, st := range []statement{daysFirst, timeFirst} {
			for _, c := range e.scanLine(doc, i, 0, st, true) {
				c.Pattern = "day-token"
				c.Confidence = dayTokenConfidence
				if c.Location == "" {
					c.Location = nearbyLocation(doc, i, e.opts.LocationMaxLen)
				}
				out = append(out, c)
			}
		}
	}
	return out
}

// scanLine finds statements of shape st on line idx from byte from onward.
// Strict mode rejects single-letter compact day tokens. Inline locations are
// filled in.
func (e *Extractor) scanLine(doc *textnorm.Document, idx, from int, st statement, strict bool) []Candidate {
	l := doc.Lines[idx]
	text := l.Text[from:]
	var out []Candidate
	for _, m := range st.re.FindAllStringSubmatchIndex(text, -1) {
		days, compact := parseDays(text[m[2*st.days]:m[2*st.days+1]])
		if len(days) == 0 || (strict && compact && len(days) < 2) {
			continue
		}
		start, ok1 := parseClock(sub(text, m, st.start), sub(text, m, st.startMer))
		end, ok2 := parseClock(sub(text, m, st.end), sub(text, m, st.endMer))
		if !ok1 || !ok2 {
			continue
		}
		s, en, ok := resolveRange(start, end)
		if !ok {
			continue
		}
		c := Candidate{
			Days:     days,
			Start:    s,
			End:      en,
			Location: inlineLocation(text[m[1]:], e.opts.LocationMaxLen),
			span:     span{start: l.Offset + from + m[0], end: l.Offset + from + m[1]},
		}
		if st.season >= 0 {
			c.Term = capitalize(sub(text, m, st.season)) + " " + sub(text, m, st.year)
		}
		out = append(out, c)
	}
	return out
}

// inOfficeHours reports whether offset sits in an office-hours clause: the
// same line mentions office hours before it, or an earlier line opened an
// office-hours block that no blank line or meeting header has closed since.
func inOfficeHours(doc *textnorm.Document, offset int) bool {
	line, ok := doc.LineAt(offset)
	if !ok {
		return false
	}
	if officeRe.MatchString(doc.Text[line.Offset:offset]) {
		return true
	}
	if headerRe.MatchString(line.Text) {
		return false
	}
	for j := line.Index - 1; j >= 0 && line.Index-j <= officeBlockLines; j-- {
		prev := doc.Lines[j].Text
		switch {
		case strings.TrimSpace(prev) == "":
			return false
		case officeHeaderRe.MatchString(prev), officeClauseEndRe.MatchString(prev):
			return true
		case headerRe.MatchString(prev):
			return false
		}
	}
	return false
}

func nextNonEmpty(doc *textnorm.Document, i int) int {
	for j := i + 1; j < len(doc.Lines); j++ {
		if doc.Lines[j].Text != "" {
			return j
		}
	}
	return -1
}

func overlapsAny(s span, claimed []span) bool {
	for _, c := range claimed {
		if s.overlaps(c) {
			return true
		}
	}
	return false
}

func sub(s string, m []int, i int) string {
	if m[2*i] < 0 {
		return ""
	}
	return s[m[2*i]:m[2*i+1]]
}

func joinDays(days []types.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = string(d)
	}
	return strings.Join(parts, ",")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
