// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textnorm cleans raw syllabus text before any recognizer runs and
// exposes a case-insensitive, line-addressable view of the result.
package textnorm

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// foldReplacer maps typographic punctuation and odd whitespace to ASCII.
var foldReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\t", " ",
	"\u00a0", " ", // no-break space
	"\u2007", " ",
	"\u202f", " ",
	"\u200b", "", // zero-width space
	"\ufeff", "",
	"\u2018", "'",
	"\u2019", "'",
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2010", "-",
	"\u2011", "-",
	"\u2012", "-",
	"\u2013", "-", // en dash
	"\u2014", "-", // em dash
	"\u2212", "-",
	"\u2022", "*", // bullet
	"\u00b7", "*",
	"\uff05", "%",
)

var (
	// softHyphenRe joins words broken across lines: "assign-\nments".
	softHyphenRe = regexp.MustCompile(`(\p{Ll})-\n(\p{Ll})`)

	spaceRunRe = regexp.MustCompile(` {2,}`)
)

// Normalize returns text with NFC composition, ASCII punctuation, single
// spaces, trimmed lines, joined soft hyphenation, and at most one blank line
// in a row. Empty input yields empty output.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := norm.NFC.String(raw)
	s = foldReplacer.Replace(s)
	s = softHyphenRe.ReplaceAllString(s, "$1$2")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// Line is one line of a Document with its byte offset in Document.Text.
type Line struct {
	Index  int
	Offset int
	Text   string
}

// End returns the offset just past the line's last byte.
func (l Line) End() int {
	return l.Offset + len(l.Text)
}

// Document is normalized text plus a lower-cased search copy. Both strings
// have identical byte offsets because normalization leaves only ASCII
// punctuation and lower-casing is applied rune-for-rune on ASCII only.
type Document struct {
	Text  string
	Lower string
	Lines []Line
}

// NewDocument normalizes raw and indexes the result.
func NewDocument(raw string) *Document {
	text := Normalize(raw)
	d := &Document{
		Text:  text,
		Lower: asciiLower(text),
	}
	if text == "" {
		return d
	}
	offset := 0
	for i, l := range strings.Split(text, "\n") {
		d.Lines = append(d.Lines, Line{Index: i, Offset: offset, Text: l})
		offset += len(l) + 1
	}
	return d
}

// Contains reports whether substr occurs in the document, ignoring case.
func (d *Document) Contains(substr string) bool {
	return strings.Contains(d.Lower, strings.ToLower(substr))
}

// Index returns the offset of the first case-insensitive occurrence of
// substr at or after from, or -1.
func (d *Document) Index(substr string, from int) int {
	if from < 0 {
		from = 0
	}
	if from >= len(d.Lower) {
		return -1
	}
	i := strings.Index(d.Lower[from:], strings.ToLower(substr))
	if i < 0 {
		return -1
	}
	return from + i
}

// LineAt returns the line containing offset.
func (d *Document) LineAt(offset int) (Line, bool) {
	if len(d.Lines) == 0 || offset < 0 || offset > len(d.Text) {
		return Line{}, false
	}
	i := sort.Search(len(d.Lines), func(i int) bool {
		return d.Lines[i].End() >= offset
	})
	if i == len(d.Lines) {
		return Line{}, false
	}
	return d.Lines[i], true
}

// asciiLower lower-cases ASCII letters only so offsets stay aligned with
// the original text.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
