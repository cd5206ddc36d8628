// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package meeting

import (
	"regexp"
	"strings"

	"github.com/pdiddy/syllabus-engine/pkg/types"
)

// dayNamePattern matches a spelled or abbreviated weekday name, singular or
// plural: "Mon", "Tues", "Thurs.", "Wednesdays".
const dayNamePattern = `(?:mon(?:day)?|tue(?:s(?:day)?)?|wed(?:nesday)?|thu(?:r(?:s(?:day)?)?)?|fri(?:day)?|sat(?:urday)?|sun(?:day)?)s?\b\.?`

// dayUnitPattern matches one unit of a compact day run. Two-letter units come
// before their one-letter prefixes so "TTh" reads as T + Th.
const dayUnitPattern = `(?:M|T[Uu]|T[Hh]|T|W|R|F|S[Aa]|S[Uu]|S|U)`

// daysPattern matches a name list ("Monday / Wednesday / Friday",
// "Tuesdays and Thursdays") or a compact run ("MWF", "TTh", "M-Tu-W-Th-F").
// It has no capturing groups.
const daysPattern = `(?:(?i:\b` + dayNamePattern + `(?:\s*(?:/|,|&|\+|-|\band\b)\s*` + dayNamePattern + `)*)` +
	`|\b` + dayUnitPattern + `(?:-?` + dayUnitPattern + `)*\b)`

var (
	dayNameRe = regexp.MustCompile(`(?i)\b` + dayNamePattern)
	dayUnitRe = regexp.MustCompile(dayUnitPattern)
)

// namePrefixes maps the first three letters of a day name to its tag.
var namePrefixes = map[string]types.Weekday{
	"mon": types.Monday,
	"tue": types.Tuesday,
	"wed": types.Wednesday,
	"thu": types.Thursday,
	"fri": types.Friday,
	"sat": types.Saturday,
	"sun": types.Sunday,
}

// unitDays maps compact day units to tags. R is Thursday, S is Saturday,
// and U is Sunday.
var unitDays = map[string]types.Weekday{
	"M":  types.Monday,
	"T":  types.Tuesday,
	"TU": types.Tuesday,
	"W":  types.Wednesday,
	"TH": types.Thursday,
	"R":  types.Thursday,
	"F":  types.Friday,
	"SA": types.Saturday,
	"S":  types.Saturday,
	"SU": types.Sunday,
	"U":  types.Sunday,
}

// parseDays converts a matched day token to weekday tags in calendar order.
// compact reports a run of letters rather than day names, so strict callers
// can reject a lone "F" or "W".
func parseDays(token string) (days []types.Weekday, compact bool) {
	set := make(map[types.Weekday]bool)
	if names := dayNameRe.FindAllString(token, -1); len(names) > 0 {
		for _, n := range names {
			if d, ok := namePrefixes[strings.ToLower(n[:3])]; ok {
				set[d] = true
			}
		}
	} else {
		compact = true
		for _, u := range dayUnitRe.FindAllString(token, -1) {
			if d, ok := unitDays[strings.ToUpper(u)]; ok {
				set[d] = true
			}
		}
	}
	for _, d := range types.WeekOrder {
		if set[d] {
			days = append(days, d)
		}
	}
	return days, compact
}
