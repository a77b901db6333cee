package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"calendar-assistant/internal/preferences"
)

// PreferenceStore persists per-user settings.
type PreferenceStore struct {
	db *sql.DB
}

// GetTimezone returns the stored IANA zone name for the user, or
// preferences.ErrNotSet when the user never chose one.
func (s *PreferenceStore) GetTimezone(ctx context.Context, userID string) (string, error) {
	var zone string
	err := s.db.QueryRowContext(ctx,
		`SELECT timezone FROM user_preferences WHERE user_id = ?`, userID,
	).Scan(&zone)
	if errors.Is(err, sql.ErrNoRows) {
		return "", preferences.ErrNotSet
	}
	if err != nil {
		return "", fmt.Errorf("fetching timezone preference: %w", err)
	}
	return zone, nil
}

// SetTimezone stores the user's zone, replacing any previous choice.
func (s *PreferenceStore) SetTimezone(ctx context.Context, userID, zone string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, timezone)
		VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET timezone = excluded.timezone`,
		userID, zone,
	)
	if err != nil {
		return fmt.Errorf("storing timezone preference: %w", err)
	}
	return nil
}
