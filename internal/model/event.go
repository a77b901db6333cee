package model

// EventTime is one side of a calendar event interval, either a date-only
// value (all-day) or an RFC3339 instant with an optional IANA timezone.
// Exactly one of Date or DateTime is set.
type EventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// IsZero reports whether neither a date nor an instant is present.
func (t EventTime) IsZero() bool {
	return t.Date == "" && t.DateTime == ""
}

// CalendarEvent is a calendar event as returned by the calendar backend.
// All-day events carry date-only start/end; the end date is exclusive
// (the day after the last included day).
type CalendarEvent struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	HTMLLink    string    `json:"htmlLink,omitempty"`
}

// EventBody is the payload submitted to the calendar backend when
// creating an event.
type EventBody struct {
	Summary     string    `json:"summary"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
}

// EventDelta holds only the fields an update changes. Nil fields are
// left untouched by the patch.
type EventDelta struct {
	Summary     *string    `json:"summary,omitempty"`
	Start       *EventTime `json:"start,omitempty"`
	End         *EventTime `json:"end,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
}

// IsEmpty reports whether the delta changes nothing.
func (d EventDelta) IsEmpty() bool {
	return d.Summary == nil && d.Start == nil && d.End == nil &&
		d.Description == nil && d.Location == nil
}
