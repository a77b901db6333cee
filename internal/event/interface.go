package event

import (
	"context"

	"calendar-assistant/internal/model"
)

// UseCase defines the business logic interface for the calendar event domain.
type UseCase interface {
	// Dispatch classifies a free-text message and routes it to the
	// matching operation, falling back to general chat.
	Dispatch(ctx context.Context, sc model.Scope, input DispatchInput) (Reply, error)

	// Summary lists the user's events for the period named in the text.
	Summary(ctx context.Context, sc model.Scope, input SummaryInput) (Reply, error)

	// ProposeCreate extracts an event from the text and stages it for confirmation.
	ProposeCreate(ctx context.Context, sc model.Scope, input ProposeInput) (Reply, error)

	// ProposeDelete finds the event the text refers to and stages its removal.
	ProposeDelete(ctx context.Context, sc model.Scope, input ProposeInput) (Reply, error)

	// ProposeDeleteByID stages the removal of a concretely identified event.
	ProposeDeleteByID(ctx context.Context, sc model.Scope, eventID string) (Reply, error)

	// ProposeUpdate finds the target event, extracts the requested changes,
	// and stages them for confirmation.
	ProposeUpdate(ctx context.Context, sc model.Scope, input ProposeInput) (Reply, error)

	// Resolve applies or discards the user's staged action of the given kind.
	Resolve(ctx context.Context, sc model.Scope, input ResolveInput) (Reply, error)
}
