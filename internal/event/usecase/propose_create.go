package usecase

import (
	"context"
	"fmt"
	"strings"

	"calendar-assistant/internal/event"
	"calendar-assistant/internal/model"
	"calendar-assistant/pkg/timefmt"
)

// ProposeCreate extracts an event from free text and stages it for
// confirmation. Nothing touches the calendar until the user confirms.
func (uc *implUseCase) ProposeCreate(ctx context.Context, sc model.Scope, input event.ProposeInput) (event.Reply, error) {
	if strings.TrimSpace(input.Text) == "" {
		return event.Reply{}, event.ErrEmptyInput
	}

	loc := uc.prefs.Location(ctx, sc.UserID)
	now := uc.now().In(loc)

	body, err := uc.oracle.ExtractCreate(ctx, input.Text, now, loc.String())
	if err != nil {
		uc.l.Warnf(ctx, "ProposeCreate: user=%s extraction failed: %v", sc.UserID, err)
		return reply(msgExtractionFailed), nil
	}

	iv, err := timefmt.Normalize(body.Start, body.End, loc)
	if err != nil {
		uc.l.Warnf(ctx, "ProposeCreate: user=%s extracted time unusable: %v", sc.UserID, err)
		return reply(msgExtractionFailed), nil
	}

	if err := uc.stage(ctx, sc, model.PendingAction{
		Kind:   model.ActionCreate,
		Create: &model.PendingCreate{Body: body},
	}); err != nil {
		uc.l.Errorf(ctx, "ProposeCreate: user=%s staging failed: %v", sc.UserID, err)
		return reply(msgServiceTrouble), nil
	}

	var sb strings.Builder
	sb.WriteString("📝 <b>New event</b>\n\n")
	sb.WriteString(fmt.Sprintf("<b>%s</b>\n", escapeTitle(body.Summary)))
	if iv.AllDay {
		sb.WriteString(iv.Display + "\n")
	} else {
		sb.WriteString(fmt.Sprintf("%s\n%s", timefmt.FormatConfirm(iv.Start), iv.Display))
		if iv.Duration != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", iv.Duration))
		}
		sb.WriteString("\n")
	}
	if body.Location != "" {
		sb.WriteString("📍 " + escapeTitle(body.Location) + "\n")
	}
	if body.Description != "" {
		sb.WriteString(escapeTitle(body.Description) + "\n")
	}
	sb.WriteString("\nShall I add it to your calendar?")

	uc.l.Infof(ctx, "ProposeCreate: user=%s staged %q", sc.UserID, body.Summary)
	return confirmReply(model.ActionCreate, sb.String()), nil
}
