// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grading

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/syllabus-engine/internal/junk"
	"github.com/pdiddy/syllabus-engine/internal/textnorm"
	"github.com/pdiddy/syllabus-engine/pkg/types"
)

var (
	// finalTitleRe matches titles naming the final exam.
	finalTitleRe = regexp.MustCompile(`(?i)^(?:the\s+)?(?:cumulative\s+|comprehensive\s+)?final(?:\s+(?:exam(?:ination)?|test))?$|\bfinal\s+(?:exam(?:ination)?|test)\b`)

	// dueRe matches "Oct 12", "October 12", "10/12", and "10/12/15".
	dueRe = regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2}\b|\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`)
)

// Input is what a recognizer sees: the normalized text, which all spans
// index into, and the lines that survived the junk line filter.
type Input struct {
	Text  string
	Lines []textnorm.Line
}

// recognizer is one family of the cascade.
type recognizer struct {
	family Family
	find   func(in Input, ctx Context) []Match
}

// cascade is the fixed priority order of the families.
var cascade = []recognizer{
	{FamilyGradingLine, findGradingLines},
	{FamilyOrdinal, findOrdinals},
	{FamilyPoints, findPoints},
	{FamilyDropLowest, findDropLowest},
	{FamilyActivity, findActivity},
	{FamilyCounted, findCounted},
	{FamilyTable, findTableRows},
	{FamilyFreeform, findFreeform},
}

// Extractor runs the assessment cascade. It holds no per-document state
// and is safe for concurrent use.
type Extractor struct {
	junk   *junk.Filter
	cfg    types.ExtractionConfig
	logger *zap.Logger
}

// New returns an Extractor. A nil logger disables diagnostics.
func New(filter *junk.Filter, cfg types.ExtractionConfig, logger *zap.Logger) *Extractor {
	if filter == nil {
		filter = junk.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{junk: filter, cfg: cfg.WithDefaults(), logger: logger}
}

// Extract runs every family over doc in priority order and returns the
// accepted candidates. A match overlapping a span already claimed by an
// earlier match is dropped whole. Candidates with junk titles are dropped,
// and an explicit "No Final Exam" statement removes final-exam candidates.
func (e *Extractor) Extract(doc *textnorm.Document) []Candidate {
	in := Input{Text: doc.Text}
	for _, l := range doc.Lines {
		if !e.junk.IsJunkLine(l.Text) {
			in.Lines = append(in.Lines, l)
		}
	}
	ctx := NewContext(doc)

	var claimed []Span
	var out []Candidate
	for _, r := range cascade {
		matches := r.find(in, ctx)
		accepted := 0
		for _, m := range matches {
			if overlapsAny(m.Span, claimed) {
				continue
			}
			var kept []Candidate
			for _, c := range m.Candidates {
				// The activity title embeds its own threshold phrase.
				if c.Kind != types.KindActivity && e.junk.IsJunk(c.Title) {
					e.logger.Debug("junk candidate dropped",
						zap.String("family", r.family.String()),
						zap.String("title", c.Title))
					continue
				}
				c.DueHint = dueHint(doc, c.Span)
				kept = append(kept, c)
			}
			if len(kept) == 0 {
				continue
			}
			claimed = append(claimed, m.Span)
			out = append(out, kept...)
			accepted++
		}
		if len(matches) > 0 {
			e.logger.Debug("family matched",
				zap.String("family", r.family.String()),
				zap.Int("matches", len(matches)),
				zap.Int("accepted", accepted))
		}
	}

	for _, item := range unclaimedQualified(in, claimed) {
		e.logger.Debug("qualified item unclaimed",
			zap.String("family", FamilyGradingLine.String()),
			zap.String("item", item))
	}

	if ctx.NoFinalExam {
		out = dropFinals(out)
	}
	return out
}

// Scheme extracts and normalizes the grading scheme of doc.
func (e *Extractor) Scheme(doc *textnorm.Document) types.GradingScheme {
	return Normalize(e.Extract(doc), e.cfg)
}

func overlapsAny(s Span, claimed []Span) bool {
	for _, c := range claimed {
		if s.Overlaps(c) {
			return true
		}
	}
	return false
}

// dropFinals removes every final-exam candidate.
func dropFinals(cands []Candidate) []Candidate {
	out := cands[:0]
	for _, c := range cands {
		if finalTitleRe.MatchString(strings.TrimSpace(c.Title)) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// dueHint returns a date-like token on the candidate's line, looking inside
// the span and after it up to the next item separator.
func dueHint(doc *textnorm.Document, s Span) string {
	line, ok := doc.LineAt(s.Start)
	if !ok {
		return ""
	}
	end := s.End
	if s.End <= line.End() {
		end = line.End()
		if i := strings.IndexAny(doc.Text[s.End:end], ",;%"); i >= 0 {
			end = s.End + i
		}
	}
	return dueRe.FindString(doc.Text[s.Start:end])
}

// lineMatches applies re to every line and calls fn with line-relative
// submatch indexes.
func lineMatches(re *regexp.Regexp, lines []textnorm.Line, fn func(l textnorm.Line, m []int)) {
	for _, l := range lines {
		for _, m := range re.FindAllStringSubmatchIndex(l.Text, -1) {
			fn(l, m)
		}
	}
}

// group returns submatch i of m within s, or "".
func group(s string, m []int, i int) string {
	if 2*i+1 >= len(m) || m[2*i] < 0 {
		return ""
	}
	return s[m[2*i]:m[2*i+1]]
}

// lineSpan converts a line-relative range to a document span.
func lineSpan(l textnorm.Line, start, end int) Span {
	return Span{Start: l.Offset + start, End: l.Offset + end}
}
