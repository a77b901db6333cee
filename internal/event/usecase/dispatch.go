package usecase

import (
	"context"
	"strings"

	"calendar-assistant/internal/event"
	"calendar-assistant/internal/event/oracle"
	"calendar-assistant/internal/model"
)

// Dispatch classifies a free-text message and routes it to the matching
// operation, falling back to general chat.
func (uc *implUseCase) Dispatch(ctx context.Context, sc model.Scope, input event.DispatchInput) (event.Reply, error) {
	if strings.TrimSpace(input.Text) == "" {
		return event.Reply{}, event.ErrEmptyInput
	}

	intent, err := uc.oracle.ClassifyIntent(ctx, input.Text)
	if err != nil {
		uc.l.Warnf(ctx, "Dispatch: user=%s classification failed, falling back to chat: %v", sc.UserID, err)
		intent = oracle.IntentChat
	}
	uc.l.Infof(ctx, "Dispatch: user=%s intent=%s", sc.UserID, intent)

	switch intent {
	case oracle.IntentSummary:
		return uc.Summary(ctx, sc, event.SummaryInput{Text: input.Text})
	case oracle.IntentCreate:
		return uc.ProposeCreate(ctx, sc, event.ProposeInput{Text: input.Text})
	case oracle.IntentDelete:
		return uc.ProposeDelete(ctx, sc, event.ProposeInput{Text: input.Text})
	case oracle.IntentUpdate:
		return uc.ProposeUpdate(ctx, sc, event.ProposeInput{Text: input.Text})
	}

	answer, err := uc.oracle.Chat(ctx, input.Text)
	if err != nil {
		uc.l.Warnf(ctx, "Dispatch: user=%s chat failed: %v", sc.UserID, err)
		return reply("Sorry, I didn't catch that. I can create, change, and delete calendar events, or tell you what's coming up."), nil
	}
	return reply(answer), nil
}
