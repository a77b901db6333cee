package event

import "calendar-assistant/internal/model"

// DispatchInput carries a raw free-text message from the user.
type DispatchInput struct {
	Text string
}

// SummaryInput is the input for a calendar listing request.
type SummaryInput struct {
	Text string // Natural language period, e.g. "what's on next week"
}

// ProposeInput is the input for the propose operations.
type ProposeInput struct {
	Text string // Natural language mutation request
}

// Decision is the user's answer to a staged proposal.
type Decision string

const (
	DecisionConfirm Decision = "confirm"
	DecisionCancel  Decision = "cancel"
)

// ResolveInput identifies which staged action the user is answering.
type ResolveInput struct {
	Kind     model.ActionKind
	Decision Decision
}

// Reply is a user-ready message. Confirm names the action kind awaiting
// confirm/cancel buttons; empty means a plain message.
type Reply struct {
	Text    string
	Confirm model.ActionKind
}
