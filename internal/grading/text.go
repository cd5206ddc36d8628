package grading

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// numberWords maps spelled-out counts to integers.
var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// countWordPattern matches a digit count or a spelled-out count.
const countWordPattern = `(?:\d{1,2}|one|two|three|four|five|six|seven|eight|nine|ten)`

var (
	leadingBulletRe = regexp.MustCompile(`^(?:[-*+>]+\s*|\(?\d{1,2}[.)]\s+|\(?[a-h][.)]\s+)`)
	spacesRe        = regexp.MustCompile(`\s+`)

	// clauseBreakRe cuts freeform titles at the first verb or conjunction
	// that starts a new clause.
	clauseBreakRe = regexp.MustCompile(`(?i)\s+(?:and|or|plus|with|is|are|will|which|that|includes?|consists?|counts?|weighted|worth)\b.*$`)

	determiners = map[string]bool{
		"the": true, "your": true, "a": true, "an": true, "each": true,
		"all": true, "our": true, "their": true, "this": true, "these": true,
	}

	tailStops = map[string]bool{
		"the": true, "your": true, "a": true, "an": true, "our": true,
		"this": true, "these": true, "on": true, "of": true, "for": true,
		"by": true, "from": true, "is": true, "are": true, "will": true,
		"be": true, "based": true, "include": true, "includes": true,
		"including": true, "follows": true, "follow": true,
	}
)

// parsePercent parses a percent value, rejecting anything outside (0, 100].
func parsePercent(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 || v > 100 {
		return 0, false
	}
	return v, true
}

// parsePoints parses a positive point value.
func parsePoints(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseCount parses "3" or "three".
func parseCount(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, ok := numberWords[s]; ok {
		return n, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// cleanTitle trims bullets, separators, and surrounding punctuation, and
// collapses inner whitespace. Case is preserved.
func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = leadingBulletRe.ReplaceAllString(s, "")
	s = strings.Trim(s, " \t:;,.|=*-")
	s = spacesRe.ReplaceAllString(s, " ")
	if strings.Count(s, "(") < strings.Count(s, ")") {
		s = strings.TrimRight(s, ")")
	}
	if strings.Count(s, "(") > strings.Count(s, ")") {
		s = strings.TrimSpace(s[:strings.LastIndex(s, "(")])
	}
	return strings.TrimSpace(s)
}

// leadTitle shortens a title that follows a percent in running prose
// ("20% homework, due weekly"): it cuts at the first clause break, drops
// leading determiners, and keeps at most four words.
func leadTitle(s string) string {
	s = cleanTitle(s)
	s = clauseBreakRe.ReplaceAllString(s, "")
	words := strings.Fields(s)
	for len(words) > 0 && determiners[strings.ToLower(words[0])] {
		words = words[1:]
	}
	if len(words) > 4 {
		words = words[:4]
	}
	return cleanTitle(strings.Join(words, " "))
}

// tailTitle shortens a title that precedes a percent in running prose
// ("Grades are based on the final project (30%)"): it keeps the words after
// the last determiner, preposition, or verb, at most four of them.
func tailTitle(s string) string {
	words := strings.Fields(cleanTitle(s))
	for i := len(words) - 1; i >= 0; i-- {
		if tailStops[strings.ToLower(words[i])] {
			words = words[i+1:]
			break
		}
	}
	if len(words) > 4 {
		words = words[len(words)-4:]
	}
	return cleanTitle(strings.Join(words, " "))
}

// capitalize upper-cases the first letter.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// titleKey is the deduplication key for a title.
func titleKey(s string) string {
	return strings.ToLower(spacesRe.ReplaceAllString(strings.TrimSpace(s), " "))
}

// pluralize returns a naive English plural of a noun phrase.
func pluralize(s string) string {
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "s"), strings.HasSuffix(lower, "work"):
		return s
	case strings.HasSuffix(lower, "quiz"):
		return s + "zes"
	default:
		return s + "s"
	}
}

// singularize strips a plural ending from a single word.
func singularize(s string) string {
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "quizzes"):
		return s[:len(s)-3]
	case strings.HasSuffix(lower, "ss"):
		return s
	case strings.HasSuffix(lower, "s"):
		return s[:len(s)-1]
	default:
		return s
	}
}

// formatNumber renders 20 as "20" and 12.5 as "12.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// round rounds v to the given number of decimals.
func round(v float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}
