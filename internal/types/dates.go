package types

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the absolute form every date entity is normalized to.
const DateLayout = "2006-01-02"

// Now is the clock used by ResolveDate and ResolveRange. Tests may replace it.
var Now = time.Now

// Today returns the current local date as YYYY-MM-DD.
func Today() string {
	return FormatDate(Now())
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseWeekday accepts full English names and the usual abbreviations.
func ParseWeekday(s string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monday", "mon":
		return time.Monday, true
	case "tuesday", "tue", "tues":
		return time.Tuesday, true
	case "wednesday", "wed":
		return time.Wednesday, true
	case "thursday", "thu", "thurs":
		return time.Thursday, true
	case "friday", "fri":
		return time.Friday, true
	case "saturday", "sat":
		return time.Saturday, true
	case "sunday", "sun":
		return time.Sunday, true
	}
	return 0, false
}

// NextWeekday returns the next occurrence of target strictly after from (1 to 7 days ahead).
func NextWeekday(from time.Time, target time.Weekday) time.Time {
	ahead := (int(target) - int(from.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return midnight(from).AddDate(0, 0, ahead)
}

// ResolveDate converts a relative date token to YYYY-MM-DD against the current date.
// Unrecognized input, including already-absolute dates, is returned unchanged.
func ResolveDate(s string) string {
	return ResolveDateAt(s, Now())
}

// ResolveDateAt is ResolveDate with an explicit reference date.
func ResolveDateAt(s string, now time.Time) string {
	today := midnight(now)
	token := strings.ToLower(strings.TrimSpace(s))

	switch token {
	case "today":
		return FormatDate(today)
	case "tomorrow":
		return FormatDate(today.AddDate(0, 0, 1))
	case "yesterday":
		return FormatDate(today.AddDate(0, 0, -1))
	}

	if rest, ok := strings.CutPrefix(token, "next "); ok {
		if wd, ok := ParseWeekday(rest); ok {
			return FormatDate(NextWeekday(today, wd))
		}
	}
	if wd, ok := ParseWeekday(token); ok {
		return FormatDate(NextWeekday(today, wd))
	}
	return s
}

// ResolveRange resolves range phrases to a start date and an optional end date.
// The end is "" for single dates.
func ResolveRange(s string) (start, end string) {
	return ResolveRangeAt(s, Now())
}

// ResolveRangeAt is ResolveRange with an explicit reference date.
func ResolveRangeAt(s string, now time.Time) (start, end string) {
	today := midnight(now)
	token := strings.ToLower(strings.TrimSpace(s))

	if token == "next week" {
		return FormatDate(today), FormatDate(today.AddDate(0, 0, 6))
	}

	if rest, ok := strings.CutPrefix(token, "next "); ok {
		if num, ok := strings.CutSuffix(rest, " days"); ok {
			if n, err := strconv.ParseUint(strings.TrimSpace(num), 10, 32); err == nil {
				span := int(n) - 1
				if span < 0 {
					span = 0
				}
				return FormatDate(today), FormatDate(today.AddDate(0, 0, span))
			}
		}
	}

	if token == "this weekend" {
		saturday := today
		if today.Weekday() != time.Saturday {
			saturday = NextWeekday(today, time.Saturday)
		}
		return FormatDate(saturday), FormatDate(saturday.AddDate(0, 0, 1))
	}

	if strings.Contains(token, "forecast") {
		return FormatDate(today), FormatDate(today.AddDate(0, 0, 6))
	}

	return ResolveDateAt(s, now), ""
}
