package preferences_test

import (
	"context"
	"errors"
	"testing"
	_ "time/tzdata"

	"calendar-assistant/internal/preferences"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...any)                 {}
func (m *mockLogger) Debugf(ctx context.Context, format string, args ...any) {}
func (m *mockLogger) Info(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Infof(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) Warn(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Warnf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) Error(ctx context.Context, args ...any)                 {}
func (m *mockLogger) Errorf(ctx context.Context, format string, args ...any) {}
func (m *mockLogger) Fatal(ctx context.Context, args ...any)                 {}
func (m *mockLogger) Fatalf(ctx context.Context, format string, args ...any) {}

type mockRepo struct {
	zones map[string]string
	gets  int
	fail  bool
}

func (m *mockRepo) GetTimezone(ctx context.Context, userID string) (string, error) {
	m.gets++
	if m.fail {
		return "", errors.New("db down")
	}
	zone, ok := m.zones[userID]
	if !ok {
		return "", preferences.ErrNotSet
	}
	return zone, nil
}

func (m *mockRepo) SetTimezone(ctx context.Context, userID, zone string) error {
	if m.fail {
		return errors.New("db down")
	}
	if m.zones == nil {
		m.zones = map[string]string{}
	}
	m.zones[userID] = zone
	return nil
}

func TestLocationDefaultsWhenUnset(t *testing.T) {
	svc, err := preferences.NewService(&mockLogger{}, &mockRepo{}, "Europe/Amsterdam")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	loc := svc.Location(context.Background(), "u1")
	if loc.String() != "Europe/Amsterdam" {
		t.Errorf("location = %q", loc.String())
	}
}

func TestLocationUsesStoredZoneAndCaches(t *testing.T) {
	repo := &mockRepo{zones: map[string]string{"u1": "America/New_York"}}
	svc, err := preferences.NewService(&mockLogger{}, repo, "UTC")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	if loc := svc.Location(ctx, "u1"); loc.String() != "America/New_York" {
		t.Errorf("location = %q", loc.String())
	}

	// Second lookup is served from the cache.
	svc.Location(ctx, "u1")
	if repo.gets != 1 {
		t.Errorf("repo hit %d times, want 1", repo.gets)
	}
}

func TestLocationFallsBackOnRepoFailure(t *testing.T) {
	svc, err := preferences.NewService(&mockLogger{}, &mockRepo{fail: true}, "Europe/Amsterdam")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if loc := svc.Location(context.Background(), "u1"); loc.String() != "Europe/Amsterdam" {
		t.Errorf("location = %q", loc.String())
	}
}

func TestSetTimezone(t *testing.T) {
	repo := &mockRepo{}
	svc, err := preferences.NewService(&mockLogger{}, repo, "UTC")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	if err := svc.SetTimezone(ctx, "u1", "Asia/Tokyo"); err != nil {
		t.Fatalf("SetTimezone: %v", err)
	}
	if loc := svc.Location(ctx, "u1"); loc.String() != "Asia/Tokyo" {
		t.Errorf("location = %q", loc.String())
	}
	// The set refreshed the cache, the lookup never hit the repo.
	if repo.gets != 0 {
		t.Errorf("repo hit %d times, want 0", repo.gets)
	}
}

func TestSetTimezoneRejectsUnknownZone(t *testing.T) {
	svc, err := preferences.NewService(&mockLogger{}, &mockRepo{}, "UTC")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	err = svc.SetTimezone(context.Background(), "u1", "Mars/Olympus_Mons")
	if !errors.Is(err, preferences.ErrInvalidTimezone) {
		t.Errorf("err = %v, want ErrInvalidTimezone", err)
	}
}

func TestNewServiceRejectsBadDefault(t *testing.T) {
	if _, err := preferences.NewService(&mockLogger{}, &mockRepo{}, "not-a-zone"); err == nil {
		t.Fatal("expected error for invalid default zone")
	}
}
