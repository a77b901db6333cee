// Package timefmt normalizes raw calendar event times into timezone-aware
// intervals and the display strings shown to users.
package timefmt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"calendar-assistant/internal/model"
)

var (
	// ErrMissingStart means the event carries no start date or instant.
	ErrMissingStart = errors.New("event has no start time")
	// ErrUnparsable means a date or instant could not be parsed.
	ErrUnparsable = errors.New("event time is unparsable")
)

const (
	dayLayout     = "Mon, Jan 02"
	timeLayout    = "03:04 PM"
	zonedLayout   = "03:04 PM MST"
	fullLayout    = "Mon, Jan 02, 03:04 PM MST"
	confirmLayout = "Mon, Jan 02, 2006 at 03:04 PM MST"
)

// Interval is a normalized event time in the display timezone.
// For all-day events Start and End are midnight-aligned and End is the
// exclusive end converted to the display timezone.
type Interval struct {
	AllDay   bool
	Start    time.Time
	End      time.Time
	Display  string // human time string, e.g. "04:00 PM – 05:30 PM CEST"
	Duration string // human duration, e.g. "1h, 30min"; empty when not meaningful
}

// Normalize converts raw start/end fields into an Interval localized to loc.
func Normalize(start, end model.EventTime, loc *time.Location) (Interval, error) {
	if start.IsZero() {
		return Interval{}, ErrMissingStart
	}

	if start.Date != "" {
		return normalizeAllDay(start, end, loc)
	}
	return normalizeTimed(start, end, loc)
}

func normalizeAllDay(start, end model.EventTime, loc *time.Location) (Interval, error) {
	startDay, err := time.ParseInLocation("2006-01-02", start.Date, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %q", ErrUnparsable, start.Date)
	}

	// The backend's all-day end date is exclusive; default to start when absent.
	endExclusive := startDay.AddDate(0, 0, 1)
	if end.Date != "" {
		d, err := time.ParseInLocation("2006-01-02", end.Date, loc)
		if err != nil {
			return Interval{}, fmt.Errorf("%w: %q", ErrUnparsable, end.Date)
		}
		endExclusive = d
	}

	numDays := civilDays(startDay, endExclusive)

	iv := Interval{
		AllDay: true,
		Start:  startDay,
		End:    endExclusive,
	}
	if numDays <= 1 {
		iv.Display = fmt.Sprintf("%s (All Day)", startDay.Format(dayLayout))
		iv.Duration = "All day"
	} else {
		lastDay := endExclusive.AddDate(0, 0, -1)
		iv.Display = fmt.Sprintf("%s – %s (All Day)", startDay.Format(dayLayout), lastDay.Format(dayLayout))
		iv.Duration = fmt.Sprintf("%d days", numDays)
	}
	return iv, nil
}

// civilDays counts whole calendar days between two midnight-aligned local
// times. Counting via wall-clock hours undercounts across a spring-forward
// transition, so the dates are re-anchored in UTC first.
func civilDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}

func normalizeTimed(start, end model.EventTime, loc *time.Location) (Interval, error) {
	startAt, err := time.Parse(time.RFC3339, start.DateTime)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %q", ErrUnparsable, start.DateTime)
	}

	endRaw := end.DateTime
	if endRaw == "" {
		endRaw = start.DateTime
	}
	endAt, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %q", ErrUnparsable, endRaw)
	}

	startAt = startAt.In(loc)
	endAt = endAt.In(loc)

	iv := Interval{
		Start:    startAt,
		End:      endAt,
		Duration: formatDelta(calendarDelta(startAt, endAt)),
	}

	sameDay := startAt.Year() == endAt.Year() && startAt.YearDay() == endAt.YearDay()
	if sameDay {
		iv.Display = fmt.Sprintf("%s – %s", startAt.Format(timeLayout), endAt.Format(zonedLayout))
	} else {
		iv.Display = fmt.Sprintf("%s – %s", startAt.Format(fullLayout), endAt.Format(fullLayout))
	}
	return iv, nil
}

// FormatConfirm renders an instant the way confirmation messages show it.
func FormatConfirm(t time.Time) string {
	return t.Format(confirmLayout)
}

// delta is a calendar-aware difference between two instants.
type delta struct {
	years, months, days, hours, minutes int
}

// calendarDelta computes the year/month/day/hour/minute difference from
// start to end, borrowing across units the way humans count calendar
// spans. All components are zero when end precedes start.
func calendarDelta(start, end time.Time) delta {
	if end.Before(start) {
		return delta{}
	}

	d := delta{
		years:   end.Year() - start.Year(),
		months:  int(end.Month()) - int(start.Month()),
		days:    end.Day() - start.Day(),
		hours:   end.Hour() - start.Hour(),
		minutes: end.Minute() - start.Minute(),
	}

	if d.minutes < 0 {
		d.minutes += 60
		d.hours--
	}
	if d.hours < 0 {
		d.hours += 24
		d.days--
	}
	if d.days < 0 {
		// Borrow the length of the month preceding end.
		firstOfEndMonth := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
		d.days += firstOfEndMonth.AddDate(0, 0, -1).Day()
		d.months--
	}
	if d.months < 0 {
		d.months += 12
		d.years--
	}
	if d.years < 0 {
		return delta{}
	}
	return d
}

func formatDelta(d delta) string {
	var parts []string
	if d.years > 0 {
		parts = append(parts, fmt.Sprintf("%dy", d.years))
	}
	if d.months > 0 {
		parts = append(parts, fmt.Sprintf("%dmo", d.months))
	}
	if d.days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", d.days))
	}
	if d.hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", d.hours))
	}
	if d.minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dmin", d.minutes))
	}
	return strings.Join(parts, ", ")
}
