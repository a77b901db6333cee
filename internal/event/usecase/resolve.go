package usecase

import (
	"context"
	"errors"
	"fmt"

	"calendar-assistant/internal/event"
	"calendar-assistant/internal/event/repository"
	"calendar-assistant/internal/model"
	"calendar-assistant/pkg/gcalendar"
)

// Resolve applies or discards the user's staged action. Confirmation
// takes the staged action out of the store atomically, so a given
// proposal executes at most once even under concurrent confirms.
func (uc *implUseCase) Resolve(ctx context.Context, sc model.Scope, input event.ResolveInput) (event.Reply, error) {
	if !input.Kind.Valid() {
		return event.Reply{}, event.ErrUnknownKind
	}

	switch input.Decision {
	case event.DecisionCancel:
		return uc.cancel(ctx, sc, input.Kind)
	case event.DecisionConfirm:
		return uc.confirm(ctx, sc, input.Kind)
	}
	return event.Reply{}, event.ErrInvalidDecision
}

func (uc *implUseCase) cancel(ctx context.Context, sc model.Scope, kind model.ActionKind) (event.Reply, error) {
	_, err := uc.pending.Take(ctx, sc.UserID, kind)
	if errors.Is(err, repository.ErrNoPending) {
		return reply("Nothing to cancel."), nil
	}
	if err != nil {
		uc.l.Errorf(ctx, "Resolve: user=%s cancel %s failed: %v", sc.UserID, kind, err)
		return reply("Nothing to cancel."), nil
	}
	uc.l.Infof(ctx, "Resolve: user=%s cancelled %s", sc.UserID, kind)
	return reply("Okay, cancelled. Nothing was changed."), nil
}

func (uc *implUseCase) confirm(ctx context.Context, sc model.Scope, kind model.ActionKind) (event.Reply, error) {
	action, err := uc.pending.Take(ctx, sc.UserID, kind)
	if errors.Is(err, repository.ErrNoPending) {
		return reply("Those details have expired. Please start over."), nil
	}
	if err != nil {
		// A read failure means re-asking is safer than guessing.
		uc.l.Errorf(ctx, "Resolve: user=%s confirm %s read failed: %v", sc.UserID, kind, err)
		return reply("Those details have expired. Please start over."), nil
	}

	switch kind {
	case model.ActionCreate:
		return uc.confirmCreate(ctx, sc, action)
	case model.ActionDelete:
		return uc.confirmDelete(ctx, sc, action)
	case model.ActionUpdate:
		return uc.confirmUpdate(ctx, sc, action)
	}
	return event.Reply{}, event.ErrUnknownKind
}

func (uc *implUseCase) confirmCreate(ctx context.Context, sc model.Scope, action model.PendingAction) (event.Reply, error) {
	if action.Create == nil {
		return reply("Those details have expired. Please start over."), nil
	}

	result, err := uc.calendar.Create(ctx, action.Create.Body)
	if errors.Is(err, gcalendar.ErrAuth) {
		return reply(msgAuthReconnect), nil
	}
	if err != nil {
		uc.l.Errorf(ctx, "Resolve: user=%s create failed: %v", sc.UserID, err)
		return reply(msgServiceTrouble), nil
	}

	uc.l.Infof(ctx, "Resolve: user=%s created %s", sc.UserID, result.ID)
	text := fmt.Sprintf("✅ <b>%s</b> is on your calendar.", escapeTitle(action.Create.Body.Summary))
	if result.Link != "" {
		text += fmt.Sprintf("\n<a href=\"%s\">Open in Google Calendar</a>", result.Link)
	}
	return reply(text), nil
}

func (uc *implUseCase) confirmDelete(ctx context.Context, sc model.Scope, action model.PendingAction) (event.Reply, error) {
	if action.Delete == nil {
		return reply("Those details have expired. Please start over."), nil
	}

	err := uc.calendar.Delete(ctx, action.Delete.EventID)
	switch {
	case errors.Is(err, gcalendar.ErrNotFound):
		// Already gone, which is what the user wanted.
		return reply(fmt.Sprintf("<b>%s</b> was already gone from your calendar.", escapeTitle(action.Delete.Summary))), nil
	case errors.Is(err, gcalendar.ErrAuth):
		return reply(msgAuthReconnect), nil
	case err != nil:
		uc.l.Errorf(ctx, "Resolve: user=%s delete %s failed: %v", sc.UserID, action.Delete.EventID, err)
		return reply(msgServiceTrouble), nil
	}

	uc.l.Infof(ctx, "Resolve: user=%s deleted %s", sc.UserID, action.Delete.EventID)
	return reply(fmt.Sprintf("🗑 <b>%s</b> has been deleted.", escapeTitle(action.Delete.Summary))), nil
}

func (uc *implUseCase) confirmUpdate(ctx context.Context, sc model.Scope, action model.PendingAction) (event.Reply, error) {
	if action.Update == nil {
		return reply("Those details have expired. Please start over."), nil
	}

	err := uc.calendar.Patch(ctx, action.Update.EventID, action.Update.Delta)
	switch {
	case errors.Is(err, gcalendar.ErrNotFound):
		return reply("That event no longer exists. It may have been deleted in the meantime."), nil
	case errors.Is(err, gcalendar.ErrAuth):
		return reply(msgAuthReconnect), nil
	case err != nil:
		uc.l.Errorf(ctx, "Resolve: user=%s patch %s failed: %v", sc.UserID, action.Update.EventID, err)
		return reply(msgServiceTrouble), nil
	}

	loc := uc.prefs.Location(ctx, sc.UserID)
	uc.l.Infof(ctx, "Resolve: user=%s updated %s", sc.UserID, action.Update.EventID)
	return reply(fmt.Sprintf("✏️ <b>%s</b> has been updated:\n%s",
		escapeTitle(action.Update.OriginalSummary), describeDelta(action.Update.Delta, loc))), nil
}
