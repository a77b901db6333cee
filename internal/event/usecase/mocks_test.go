package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"
	_ "time/tzdata"

	"calendar-assistant/internal/event/oracle"
	"calendar-assistant/internal/event/repository"
	"calendar-assistant/internal/model"
	"calendar-assistant/pkg/gcalendar"
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

// mockOracle returns canned answers per RPC.
type mockOracle struct {
	intent    oracle.Intent
	intentErr error

	dateRange    oracle.DateRange
	dateRangeErr error

	createBody model.EventBody
	createErr  error

	parts    oracle.UpdateParts
	partsErr error

	delta    model.EventDelta
	deltaErr error

	selection    oracle.Selection
	selectionErr error

	chatReply string
	chatErr   error
}

func (m *mockOracle) ClassifyIntent(ctx context.Context, text string) (oracle.Intent, error) {
	return m.intent, m.intentErr
}

func (m *mockOracle) ParseDateRange(ctx context.Context, text string, now time.Time) (oracle.DateRange, error) {
	return m.dateRange, m.dateRangeErr
}

func (m *mockOracle) ExtractCreate(ctx context.Context, text string, now time.Time, zone string) (model.EventBody, error) {
	return m.createBody, m.createErr
}

func (m *mockOracle) SplitSearchAndChanges(ctx context.Context, text string, now time.Time) (oracle.UpdateParts, error) {
	return m.parts, m.partsErr
}

func (m *mockOracle) ExtractUpdateDelta(ctx context.Context, changes string, original model.CalendarEvent, now time.Time, zone string) (model.EventDelta, error) {
	return m.delta, m.deltaErr
}

func (m *mockOracle) Disambiguate(ctx context.Context, text string, candidates []model.CalendarEvent) (oracle.Selection, error) {
	return m.selection, m.selectionErr
}

func (m *mockOracle) Chat(ctx context.Context, text string) (string, error) {
	return m.chatReply, m.chatErr
}

// mockCalendar records mutations and serves canned events.
type mockCalendar struct {
	events        []model.CalendarEvent
	searchErr     error
	getErr        error
	createErr     error
	deleteErr     error
	patchErr      error
	created       []model.EventBody
	deleted       []string
	patched       []string
	patchedDeltas []model.EventDelta
	searches      []gcalendar.SearchRequest
}

func (m *mockCalendar) Get(ctx context.Context, eventID string) (*model.CalendarEvent, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, ev := range m.events {
		if ev.ID == eventID {
			found := ev
			return &found, nil
		}
	}
	return nil, gcalendar.ErrNotFound
}

func (m *mockCalendar) Search(ctx context.Context, req gcalendar.SearchRequest) ([]model.CalendarEvent, error) {
	m.searches = append(m.searches, req)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.events, nil
}

func (m *mockCalendar) Create(ctx context.Context, body model.EventBody) (*gcalendar.CreateResult, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, body)
	return &gcalendar.CreateResult{ID: "new-ev", Link: "https://calendar.example/new-ev"}, nil
}

func (m *mockCalendar) Delete(ctx context.Context, eventID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, eventID)
	return nil
}

func (m *mockCalendar) Patch(ctx context.Context, eventID string, delta model.EventDelta) error {
	if m.patchErr != nil {
		return m.patchErr
	}
	m.patched = append(m.patched, eventID)
	m.patchedDeltas = append(m.patchedDeltas, delta)
	return nil
}

// mockPending is an in-memory PendingRepository with the same single-slot
// and take-by-kind semantics as the SQLite store.
type mockPending struct {
	mu      sync.Mutex
	slots   map[string]model.PendingAction
	putErr  error
	puts    int
	takeErr error
}

func newMockPending() *mockPending {
	return &mockPending{slots: map[string]model.PendingAction{}}
}

func (m *mockPending) Put(ctx context.Context, action model.PendingAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.puts++
	m.slots[action.UserID] = action
	return nil
}

func (m *mockPending) Get(ctx context.Context, userID string) (model.PendingAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	action, ok := m.slots[userID]
	if !ok {
		return model.PendingAction{}, repository.ErrNoPending
	}
	return action, nil
}

func (m *mockPending) Take(ctx context.Context, userID string, kind model.ActionKind) (model.PendingAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.takeErr != nil {
		return model.PendingAction{}, m.takeErr
	}
	action, ok := m.slots[userID]
	if !ok || action.Kind != kind {
		return model.PendingAction{}, repository.ErrNoPending
	}
	delete(m.slots, userID)
	return action, nil
}

func (m *mockPending) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, userID)
	return nil
}

// mockPrefs pins every user to a fixed location.
type mockPrefs struct {
	loc *time.Location
}

func (m *mockPrefs) Location(ctx context.Context, userID string) *time.Location {
	if m.loc != nil {
		return m.loc
	}
	return time.UTC
}

var errBoom = errors.New("boom")
