package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"calendar-assistant/internal/event/repository"
	"calendar-assistant/internal/model"
)

// PendingActionStore implements repository.PendingRepository on SQLite.
type PendingActionStore struct {
	db *sql.DB
}

// Put upserts the user's pending action, superseding any prior one.
func (s *PendingActionStore) Put(ctx context.Context, action model.PendingAction) error {
	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshaling pending action: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pending_actions (user_id, kind, payload, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			kind = excluded.kind,
			payload = excluded.payload,
			created_at = excluded.created_at`,
		action.UserID, string(action.Kind), string(payload), action.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storing pending action: %w", err)
	}
	return nil
}

// Get returns the user's pending action, or repository.ErrNoPending.
func (s *PendingActionStore) Get(ctx context.Context, userID string) (model.PendingAction, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM pending_actions WHERE user_id = ?`, userID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PendingAction{}, repository.ErrNoPending
	}
	if err != nil {
		return model.PendingAction{}, fmt.Errorf("fetching pending action: %w", err)
	}
	return decode(payload)
}

// Take atomically removes and returns the pending action when its kind
// matches. The select and delete share one transaction so concurrent
// confirms cannot both win.
func (s *PendingActionStore) Take(ctx context.Context, userID string, kind model.ActionKind) (model.PendingAction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.PendingAction{}, fmt.Errorf("starting take transaction: %w", err)
	}
	defer tx.Rollback()

	var payload string
	err = tx.QueryRowContext(ctx,
		`SELECT payload FROM pending_actions WHERE user_id = ? AND kind = ?`, userID, string(kind),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PendingAction{}, repository.ErrNoPending
	}
	if err != nil {
		return model.PendingAction{}, fmt.Errorf("fetching pending action: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM pending_actions WHERE user_id = ? AND kind = ?`, userID, string(kind),
	); err != nil {
		return model.PendingAction{}, fmt.Errorf("removing pending action: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.PendingAction{}, fmt.Errorf("committing take: %w", err)
	}
	return decode(payload)
}

// Clear removes the user's pending action; removing nothing is a success.
func (s *PendingActionStore) Clear(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM pending_actions WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("clearing pending action: %w", err)
	}
	return nil
}

func decode(payload string) (model.PendingAction, error) {
	var action model.PendingAction
	if err := json.Unmarshal([]byte(payload), &action); err != nil {
		return model.PendingAction{}, fmt.Errorf("decoding pending action: %w", err)
	}
	return action, nil
}
