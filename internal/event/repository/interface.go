package repository

import (
	"context"
	"errors"

	"calendar-assistant/internal/model"
)

// ErrNoPending means no pending action exists for the user (or none of
// the requested kind).
var ErrNoPending = errors.New("no pending action")

// PendingRepository stores at most one unconfirmed mutation proposal per
// user. Put supersedes whatever was pending regardless of kind, which is
// what keeps the single-pending-action invariant structural rather than
// a matter of callers remembering to clear sibling slots.
type PendingRepository interface {
	// Put upserts the user's pending action.
	Put(ctx context.Context, action model.PendingAction) error

	// Get returns the user's pending action, or ErrNoPending.
	Get(ctx context.Context, userID string) (model.PendingAction, error)

	// Take atomically removes and returns the user's pending action if its
	// kind matches; ErrNoPending otherwise. Two concurrent confirms for the
	// same user get the action at most once between them.
	Take(ctx context.Context, userID string, kind model.ActionKind) (model.PendingAction, error)

	// Clear removes the user's pending action. Clearing when nothing is
	// pending is a success.
	Clear(ctx context.Context, userID string) error
}
