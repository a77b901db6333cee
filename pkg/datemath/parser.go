package datemath

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// weeks start on Monday
const weekStart = time.Monday

var nextDaysRe = regexp.MustCompile(`^(?:next|coming) (\d+) days$`)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ParseRange resolves common relative period phrases against a base time,
// in the base time's location. It only answers phrases it can resolve
// deterministically; anything it does not recognize returns ok=false so
// the caller can fall through to richer interpretation.
func ParseRange(phrase string, base time.Time) (Range, bool) {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	loc := base.Location()
	today := startOfDay(base, loc)

	switch phrase {
	case "", "today":
		return day(today, "today"), true
	case "tomorrow":
		return day(today.AddDate(0, 0, 1), "tomorrow"), true
	case "yesterday":
		return day(today.AddDate(0, 0, -1), "yesterday"), true
	case "this week":
		start := weekOf(today)
		return Range{Start: start, End: start.AddDate(0, 0, 7), Label: "this week"}, true
	case "next week":
		start := weekOf(today).AddDate(0, 0, 7)
		return Range{Start: start, End: start.AddDate(0, 0, 7), Label: "next week"}, true
	case "this weekend":
		sat := weekOf(today).AddDate(0, 0, 5)
		return Range{Start: sat, End: sat.AddDate(0, 0, 2), Label: "this weekend"}, true
	case "this month":
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		return Range{Start: start, End: start.AddDate(0, 1, 0), Label: "this month"}, true
	case "next month":
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
		return Range{Start: start, End: start.AddDate(0, 1, 0), Label: "next month"}, true
	}

	// "next 3 days" style rolling windows, starting today.
	if m := nextDaysRe.FindStringSubmatch(phrase); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return Range{}, false
		}
		return Range{Start: today, End: today.AddDate(0, 0, n), Label: phrase}, true
	}

	// Bare or "next"-prefixed weekday names resolve to the next such day.
	dayName := strings.TrimPrefix(phrase, "next ")
	if wd, ok := weekdays[dayName]; ok {
		delta := int(wd-today.Weekday()+7) % 7
		if delta == 0 {
			delta = 7
		}
		return day(today.AddDate(0, 0, delta), phrase), true
	}

	return Range{}, false
}

func day(start time.Time, label string) Range {
	return Range{Start: start, End: start.AddDate(0, 0, 1), Label: label}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// weekOf returns the start of the week containing the given day.
func weekOf(today time.Time) time.Time {
	delta := int(today.Weekday()-weekStart+7) % 7
	return today.AddDate(0, 0, -delta)
}
