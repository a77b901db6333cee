package usecase

import (
	"context"
	"time"

	"calendar-assistant/internal/event/oracle"
	"calendar-assistant/internal/event/repository"
	"calendar-assistant/internal/model"
	"calendar-assistant/pkg/gcalendar"
	pkgLog "calendar-assistant/pkg/log"
)

// Search window and candidate limits for the propose operations.
const (
	deleteWindowDays = 3
	updateWindowDays = 14

	summaryMaxResults = 25
	deleteMaxResults  = 25
	updateMaxResults  = 10
)

// Calendar is the slice of the calendar client the usecase needs.
type Calendar interface {
	Get(ctx context.Context, eventID string) (*model.CalendarEvent, error)
	Search(ctx context.Context, req gcalendar.SearchRequest) ([]model.CalendarEvent, error)
	Create(ctx context.Context, body model.EventBody) (*gcalendar.CreateResult, error)
	Delete(ctx context.Context, eventID string) error
	Patch(ctx context.Context, eventID string, delta model.EventDelta) error
}

// Preferences resolves the user's display timezone.
type Preferences interface {
	Location(ctx context.Context, userID string) *time.Location
}

type implUseCase struct {
	l        pkgLog.Logger
	oracle   oracle.Oracle
	calendar Calendar
	pending  repository.PendingRepository
	prefs    Preferences
	now      func() time.Time
}

// New creates a new event UseCase instance.
func New(
	l pkgLog.Logger,
	o oracle.Oracle,
	calendar Calendar,
	pending repository.PendingRepository,
	prefs Preferences,
) *implUseCase {
	return &implUseCase{
		l:        l,
		oracle:   o,
		calendar: calendar,
		pending:  pending,
		prefs:    prefs,
		now:      time.Now,
	}
}
