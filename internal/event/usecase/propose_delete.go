package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"calendar-assistant/internal/event"
	"calendar-assistant/internal/model"
	"calendar-assistant/pkg/gcalendar"
)

// ProposeDelete finds the event the text refers to and stages its removal.
func (uc *implUseCase) ProposeDelete(ctx context.Context, sc model.Scope, input event.ProposeInput) (event.Reply, error) {
	if strings.TrimSpace(input.Text) == "" {
		return event.Reply{}, event.ErrEmptyInput
	}

	// Phrases like "delete Friday's standup" carry their own window; let
	// the oracle narrow the search before falling back to the next few days.
	timeMin, timeMax := uc.defaultWindow(ctx, sc, deleteWindowDays)
	loc := uc.prefs.Location(ctx, sc.UserID)
	now := uc.now().In(loc)
	if dr, err := uc.oracle.ParseDateRange(ctx, input.Text, now); err == nil && !dr.Start.IsZero() && dr.End.After(dr.Start) {
		timeMin, timeMax = dr.Start, dr.End
	}

	target, userMsg, err := uc.locateEvent(ctx, sc, input.Text, timeMin, timeMax, deleteMaxResults)
	if err != nil {
		return event.Reply{}, err
	}
	if target == nil {
		return reply(userMsg), nil
	}

	return uc.proposeDeleteByID(ctx, sc, target.ID)
}

// ProposeDeleteByID stages the deletion of a concretely identified event.
func (uc *implUseCase) ProposeDeleteByID(ctx context.Context, sc model.Scope, eventID string) (event.Reply, error) {
	if strings.TrimSpace(eventID) == "" {
		return event.Reply{}, event.ErrEmptyInput
	}
	return uc.proposeDeleteByID(ctx, sc, eventID)
}

func (uc *implUseCase) proposeDeleteByID(ctx context.Context, sc model.Scope, eventID string) (event.Reply, error) {
	target, err := uc.calendar.Get(ctx, eventID)
	if errors.Is(err, gcalendar.ErrNotFound) {
		return reply("That event id may be incorrect, or the event was already deleted."), nil
	}
	if errors.Is(err, gcalendar.ErrAuth) {
		return reply(msgAuthReconnect), nil
	}
	if err != nil {
		uc.l.Errorf(ctx, "ProposeDelete: user=%s fetch %s failed: %v", sc.UserID, eventID, err)
		return reply(msgServiceTrouble), nil
	}

	if err := uc.stage(ctx, sc, model.PendingAction{
		Kind:   model.ActionDelete,
		Delete: &model.PendingDelete{EventID: target.ID, Summary: target.Summary},
	}); err != nil {
		uc.l.Errorf(ctx, "ProposeDelete: user=%s staging failed: %v", sc.UserID, err)
		return reply(msgServiceTrouble), nil
	}

	loc := uc.prefs.Location(ctx, sc.UserID)
	text := fmt.Sprintf("🗑 <b>Delete event</b>\n\n<b>%s</b>\n%s\n\nAre you sure you want to delete it?",
		escapeTitle(target.Summary), describeWhen(target.Start, loc))

	uc.l.Infof(ctx, "ProposeDelete: user=%s staged %s", sc.UserID, target.ID)
	return confirmReply(model.ActionDelete, text), nil
}
