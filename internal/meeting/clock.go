package meeting

import (
	"fmt"
	"strconv"
	"strings"
)

// meridiemPattern matches "a.m.", "pm", "noon", and bare "a"/"p"/"n".
const meridiemPattern = `(?i:[ap]\.\s?m\.?|[ap]m\b|noon\b|[apn]\b)`

// timeRangePattern matches "10-11 a.m.", "12:30-2:00", "9:00am to 10:15am".
// Groups: start, start meridiem, end, end meridiem.
const timeRangePattern = `(\d{1,2}(?:[:.]\d{2})?)\s*(` + meridiemPattern + `)?\s*(?:-|(?i:to|until|till)\b)\s*(\d{1,2}(?:[:.]\d{2})?)\s*(` + meridiemPattern + `)?`

// clock is a parsed time of day before meridiem inference.
type clock struct {
	hour int
	min  int
	mer  byte // 'a', 'p', 'n' (noon), or 0
}

// parseClock parses "10", "10:30", or "10.30" with an optional meridiem.
func parseClock(num, mer string) (clock, bool) {
	var c clock
	h, m, found := strings.Cut(strings.ReplaceAll(num, ".", ":"), ":")
	var err error
	if c.hour, err = strconv.Atoi(h); err != nil {
		return clock{}, false
	}
	if found {
		if c.min, err = strconv.Atoi(m); err != nil {
			return clock{}, false
		}
	}
	if c.hour > 23 || c.min > 59 {
		return clock{}, false
	}
	switch mer = strings.ToLower(strings.TrimSpace(mer)); {
	case mer == "":
	case mer == "noon" || mer == "n":
		c.mer = 'n'
	case mer[0] == 'a':
		c.mer = 'a'
	case mer[0] == 'p':
		c.mer = 'p'
	}
	return c, true
}

// minutes returns minutes after midnight under meridiem mer. Hours past 12
// are read as 24-hour times.
func (c clock) minutes(mer byte) int {
	h := c.hour
	switch {
	case h > 12:
	case mer == 'a':
		if h == 12 {
			h = 0
		}
	case mer == 'p', mer == 'n':
		if h != 12 {
			h += 12
		}
	}
	return h*60 + c.min
}

// bareMeridiem guesses the meridiem of an hour given without one: 1-7 are
// afternoon, 8-11 morning, and 12 is noon.
func bareMeridiem(hour int) byte {
	switch {
	case hour >= 1 && hour <= 7:
		return 'p'
	case hour == 12:
		return 'n'
	default:
		return 'a'
	}
}

// flip swaps morning and afternoon.
func flip(mer byte) byte {
	if mer == 'a' {
		return 'p'
	}
	return 'a'
}

// resolveRange infers missing meridiems and returns "HH:MM" start and end.
// The start inherits the end's meridiem unless that would put it after the
// end; an end without a meridiem inherits the start's under the same rule,
// and falls back to the bare-hour guess.
func resolveRange(start, end clock) (string, string, bool) {
	endMer := end.mer
	if endMer == 0 {
		if start.mer != 0 {
			endMer = start.mer
			if end.minutes(endMer) <= start.minutes(start.mer) {
				endMer = bareMeridiem(end.hour)
			}
		} else {
			endMer = bareMeridiem(end.hour)
		}
	}
	startMer := start.mer
	if startMer == 0 {
		startMer = endMer
		if start.minutes(startMer) >= end.minutes(endMer) {
			startMer = flip(endMer)
		}
	}

	s, e := start.minutes(startMer), end.minutes(endMer)
	if s >= e {
		return "", "", false
	}
	return formatMinutes(s), formatMinutes(e), true
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
