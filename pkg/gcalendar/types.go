package gcalendar

import "time"

// SearchRequest is the input for searching or listing calendar events.
// An empty Query lists everything in the window.
type SearchRequest struct {
	Query      string
	TimeMin    time.Time
	TimeMax    time.Time
	MaxResults int64
}

// CreateResult reports a successful event creation.
type CreateResult struct {
	ID   string
	Link string
}
