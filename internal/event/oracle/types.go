package oracle

import (
	"errors"
	"time"
)

// ErrMalformed means the model replied with something that does not
// decode into the expected shape. Callers treat it as ambiguous user
// input, never as a crash.
var ErrMalformed = errors.New("malformed model output")

// Intent is the coarse classification of a free-text message.
type Intent string

const (
	IntentSummary Intent = "summary"
	IntentCreate  Intent = "create"
	IntentDelete  Intent = "delete"
	IntentUpdate  Intent = "update"
	IntentChat    Intent = "chat"
)

// DateRange is a resolved calendar period with a human label.
type DateRange struct {
	Start time.Time
	End   time.Time
	Label string // e.g. "today", "this week"
}

// UpdateParts splits an update request into the phrase that finds the
// event and the phrase that describes the changes. When the message pins
// the event to a period ("my meeting next Tuesday"), WindowStart/WindowEnd
// narrow the candidate search; both are nil otherwise.
type UpdateParts struct {
	Search      string
	Changes     string
	WindowStart *time.Time
	WindowEnd   *time.Time
}

// MatchKind says how many candidates the model considers a match.
type MatchKind string

const (
	MatchNone     MatchKind = "none"
	MatchSingle   MatchKind = "single"
	MatchMultiple MatchKind = "multiple"
)

// Selection is the disambiguation verdict over a candidate list.
type Selection struct {
	Match MatchKind
	Index int // valid only when Match is MatchSingle
}
