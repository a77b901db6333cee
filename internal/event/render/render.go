// Package render formats calendar event lists as Telegram HTML.
package render

import (
	"fmt"
	"html"
	"net/url"
	"sort"
	"strings"
	"time"

	"calendar-assistant/internal/model"
	"calendar-assistant/pkg/timefmt"
)

const dayHeaderLayout = "Monday, January 2"

// List renders events as an HTML transcript, grouped by day in loc.
// includeIDs adds a per-event id line, used when the user must pick one.
func List(events []model.CalendarEvent, label string, loc *time.Location, includeIDs bool) string {
	if len(events) == 0 {
		return noEvents(label)
	}

	sorted := make([]model.CalendarEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return startKey(sorted[i]) < startKey(sorted[j])
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 <b>Events for %s</b>\n", html.EscapeString(label)))

	emitted := 0
	currentDay := ""
	for _, ev := range sorted {
		iv, err := timefmt.Normalize(ev.Start, ev.End, loc)
		if err != nil {
			// One broken event must not sink the whole listing.
			sb.WriteString(fmt.Sprintf("\n• <b>%s</b>\n  [time unavailable]\n", titleOf(ev)))
			emitted++
			continue
		}

		day := iv.Start.Format(dayHeaderLayout)
		if day != currentDay {
			sb.WriteString(fmt.Sprintf("\n<b>%s</b>\n", day))
			currentDay = day
		}

		sb.WriteString(fmt.Sprintf("• <b>%s</b>\n", titleOf(ev)))

		timeLine := "  " + iv.Display
		if !iv.AllDay && iv.Duration != "" {
			timeLine += fmt.Sprintf(" (%s)", iv.Duration)
		}
		sb.WriteString(timeLine + "\n")

		if ev.Location != "" {
			sb.WriteString(fmt.Sprintf("  📍 <a href=\"%s\">%s</a>\n", mapsLink(ev.Location), html.EscapeString(ev.Location)))
		}
		if includeIDs && ev.ID != "" {
			sb.WriteString(fmt.Sprintf("  id: <code>%s</code>\n", html.EscapeString(ev.ID)))
		}
		emitted++
	}

	if emitted == 0 {
		return noEvents(label)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func noEvents(label string) string {
	return fmt.Sprintf("No events found for %s.", label)
}

func titleOf(ev model.CalendarEvent) string {
	if strings.TrimSpace(ev.Summary) == "" {
		return "(untitled)"
	}
	return html.EscapeString(ev.Summary)
}

// startKey orders events by their raw start field. RFC3339 instants and
// plain dates both sort correctly as strings within a listing.
func startKey(ev model.CalendarEvent) string {
	if ev.Start.DateTime != "" {
		return ev.Start.DateTime
	}
	return ev.Start.Date
}

func mapsLink(location string) string {
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(location)
}
