package usecase

import (
	"context"
	"errors"
	"time"

	"calendar-assistant/internal/event"
	"calendar-assistant/internal/event/oracle"
	"calendar-assistant/internal/event/render"
	"calendar-assistant/internal/model"
	"calendar-assistant/pkg/datemath"
	"calendar-assistant/pkg/gcalendar"
)

// Summary lists the user's events for the period the text names,
// defaulting to today when the oracle cannot resolve one.
func (uc *implUseCase) Summary(ctx context.Context, sc model.Scope, input event.SummaryInput) (event.Reply, error) {
	loc := uc.prefs.Location(ctx, sc.UserID)
	now := uc.now().In(loc)

	// Common period phrases resolve deterministically without a model
	// round trip; free-form text goes to the oracle.
	var dr oracle.DateRange
	if r, ok := datemath.ParseRange(input.Text, now); ok {
		dr = oracle.DateRange{Start: r.Start, End: r.End, Label: r.Label}
	} else {
		var err error
		dr, err = uc.oracle.ParseDateRange(ctx, input.Text, now)
		if err != nil {
			uc.l.Warnf(ctx, "Summary: user=%s range parse failed, defaulting to today: %v", sc.UserID, err)
			dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
			dr.Start, dr.End, dr.Label = dayStart, dayStart.AddDate(0, 0, 1), "today"
		}
	}

	events, err := uc.calendar.Search(ctx, gcalendar.SearchRequest{
		TimeMin:    dr.Start,
		TimeMax:    dr.End,
		MaxResults: summaryMaxResults,
	})
	if errors.Is(err, gcalendar.ErrAuth) {
		return reply(msgAuthReconnect), nil
	}
	if err != nil {
		uc.l.Errorf(ctx, "Summary: user=%s search failed: %v", sc.UserID, err)
		return reply(msgServiceTrouble), nil
	}

	return reply(render.List(events, dr.Label, loc, false)), nil
}
