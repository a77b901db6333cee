package model

import "time"

// ActionKind tags a pending mutation proposal.
type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionDelete ActionKind = "delete"
	ActionUpdate ActionKind = "update"
)

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionCreate, ActionDelete, ActionUpdate:
		return true
	}
	return false
}

// PendingCreate is the payload of a proposed event creation: the full
// body that will be submitted on confirmation.
type PendingCreate struct {
	Body EventBody `json:"body"`
}

// PendingDelete is the payload of a proposed event deletion.
type PendingDelete struct {
	EventID string `json:"event_id"`
	Summary string `json:"summary"`
}

// PendingUpdate is the payload of a proposed event update: the target id,
// the delta to apply, and a snapshot of the original for the confirmation
// message.
type PendingUpdate struct {
	EventID         string     `json:"event_id"`
	Delta           EventDelta `json:"delta"`
	OriginalSummary string     `json:"original_summary"`
	OriginalStart   string     `json:"original_start"`
}

// PendingAction is an unconfirmed calendar mutation awaiting an explicit
// confirm or cancel. A user has at most one at any time; storing a new one
// supersedes whatever was pending, regardless of kind. Exactly the payload
// matching Kind is non-nil.
type PendingAction struct {
	UserID    string         `json:"user_id"`
	Kind      ActionKind     `json:"kind"`
	Token     string         `json:"token"`
	CreatedAt time.Time      `json:"created_at"`
	Create    *PendingCreate `json:"create,omitempty"`
	Delete    *PendingDelete `json:"delete,omitempty"`
	Update    *PendingUpdate `json:"update,omitempty"`
}
