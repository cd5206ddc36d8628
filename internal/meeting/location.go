// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package meeting

import (
	"regexp"
	"strings"

	"github.com/pdiddy/syllabus-engine/internal/textnorm"
)

var (
	// inlineLeadRe strips separators and labels between a statement and an
	// inline location: ", in Room: ECJ 1.202" → "ECJ 1.202".
	inlineLeadRe = regexp.MustCompile(`^[\s,;|@-]*(?:(?i:in|at)\s+)?(?:(?i:location|place|where|room|rm|classroom)\s*:\s*)?`)

	// locationEndRe marks where a location string stops.
	locationEndRe = regexp.MustCompile(`(?i)[;|(]|\s-\s|\b(?:lectures?|instructor|office|hours|email|e-mail|phone|tel|ta)\b`)

	// notLocationRe rejects labels that carry digits but are not places.
	notLocationRe = regexp.MustCompile(`(?i)^(?:section|sec\.?|unique|class|course|call|ext|phone|week|chapter|lecture|exam|quiz|homework|hw|credit)\b`)

	clockRe = regexp.MustCompile(`\d{1,2}(?::\d{2})?\s*(?:-|to)\s*\d{1,2}`)

	// labelledRe matches "Place: WEL 2.224", "Location: GDC 1.304".
	labelledRe = regexp.MustCompile(`(?i)\b(?:place|location|room|where|classroom)\s*:\s*([^\n]+)`)

	// leadingLocationRe matches a building+room token at the start of a line:
	// "UTC 3.112", "CAL 100", "Room 101".
	leadingLocationRe = regexp.MustCompile(`^(?:[A-Z]{2,5}\.?\s?\d{1,4}(?:\.\d{1,4})?[A-Za-z]?|(?i:room|rm\.?)\s*#?\s*\d{1,4}[A-Za-z]?)\b`)

	officeRe = regexp.MustCompile(`(?i)\boffice\s+hours?\b`)
)

// validLocation cuts s at the first terminator and returns it when it looks
// like a place: it contains a digit, is at most maxLen long, and is not a
// time range. It returns "" otherwise.
func validLocation(s string, maxLen int) string {
	if loc := locationEndRe.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, " :;,|-")
	switch {
	case s == "", len(s) > maxLen, !strings.ContainsAny(s, "0123456789"):
		return ""
	case clockRe.MatchString(s), notLocationRe.MatchString(s):
		return ""
	}
	return s
}

// inlineLocation reads a location directly after a statement on its line.
func inlineLocation(rest string, maxLen int) string {
	rest = inlineLeadRe.ReplaceAllString(rest, "")
	return validLocation(rest, maxLen)
}

// labelledLocation finds a "Place:"/"Location:" value after offset, within
// window characters or the next three lines, whichever reaches further.
// Labels on a line that mentions an office are skipped.
func labelledLocation(doc *textnorm.Document, lineIdx, offset, window, maxLen int) string {
	end := min(len(doc.Text), offset+window)
	if last := min(len(doc.Lines)-1, lineIdx+3); last >= 0 && doc.Lines[last].End() > end {
		end = doc.Lines[last].End()
	}
	region := doc.Text[offset:end]
	for _, m := range labelledRe.FindAllStringSubmatchIndex(region, -1) {
		line, ok := doc.LineAt(offset + m[0])
		if !ok {
			continue
		}
		if i := doc.Index("office", line.Offset); i >= 0 && i < offset+m[0] {
			continue
		}
		if loc := validLocation(region[m[2]:m[3]], maxLen); loc != "" {
			return loc
		}
	}
	return ""
}

// nearbyLocation looks for a location token at the start of the next two
// non-empty lines, stopping at an office-hours line.
func nearbyLocation(doc *textnorm.Document, lineIdx, maxLen int) string {
	seen := 0
	for j := lineIdx + 1; j < len(doc.Lines) && seen < 2; j++ {
		text := doc.Lines[j].Text
		if text == "" {
			continue
		}
		seen++
		if tok := leadingLocationRe.FindString(text); tok != "" {
			if loc := validLocation(tok, maxLen); loc != "" {
				return loc
			}
		}
		if officeRe.MatchString(text) {
			return ""
		}
	}
	return ""
}
