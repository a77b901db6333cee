package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"calendar-assistant/internal/event"
	"calendar-assistant/internal/model"
)

// ProposeUpdate runs the two-stage extraction: split the request into a
// search phrase and a change description, locate the target, then turn
// the change description into a delta against the original event.
func (uc *implUseCase) ProposeUpdate(ctx context.Context, sc model.Scope, input event.ProposeInput) (event.Reply, error) {
	if strings.TrimSpace(input.Text) == "" {
		return event.Reply{}, event.ErrEmptyInput
	}

	loc := uc.prefs.Location(ctx, sc.UserID)
	now := uc.now().In(loc)

	parts, err := uc.oracle.SplitSearchAndChanges(ctx, input.Text, now)
	if err != nil {
		uc.l.Warnf(ctx, "ProposeUpdate: user=%s split failed: %v", sc.UserID, err)
		return reply(msgNoChanges), nil
	}

	timeMin, timeMax := uc.defaultWindow(ctx, sc, updateWindowDays)
	if parts.WindowStart != nil && parts.WindowEnd != nil {
		timeMin, timeMax = *parts.WindowStart, *parts.WindowEnd
	}
	target, userMsg, err := uc.locateEvent(ctx, sc, parts.Search, timeMin, timeMax, updateMaxResults)
	if err != nil {
		return event.Reply{}, err
	}
	if target == nil {
		return reply(userMsg), nil
	}

	delta, err := uc.oracle.ExtractUpdateDelta(ctx, parts.Changes, *target, now, loc.String())
	if err != nil {
		uc.l.Warnf(ctx, "ProposeUpdate: user=%s delta extraction failed: %v", sc.UserID, err)
		return reply(msgNoChanges), nil
	}
	if delta.IsEmpty() {
		return reply(msgNoChanges), nil
	}
	if msg := validateDeltaTimes(&delta, loc); msg != "" {
		uc.l.Warnf(ctx, "ProposeUpdate: user=%s delta rejected: %s", sc.UserID, msg)
		return reply(msgNoChanges), nil
	}

	if err := uc.stage(ctx, sc, model.PendingAction{
		Kind: model.ActionUpdate,
		Update: &model.PendingUpdate{
			EventID:         target.ID,
			Delta:           delta,
			OriginalSummary: target.Summary,
			OriginalStart:   startKeyOf(*target),
		},
	}); err != nil {
		uc.l.Errorf(ctx, "ProposeUpdate: user=%s staging failed: %v", sc.UserID, err)
		return reply(msgServiceTrouble), nil
	}

	text := fmt.Sprintf("✏️ <b>Update event</b>\n\n<b>%s</b>\n%s\n\nChanges:\n%s\n\nApply these changes?",
		escapeTitle(target.Summary), describeWhen(target.Start, loc), describeDelta(delta, loc))

	uc.l.Infof(ctx, "ProposeUpdate: user=%s staged %s", sc.UserID, target.ID)
	return confirmReply(model.ActionUpdate, text), nil
}

// validateDeltaTimes checks that changed time fields carry a usable
// instant or date, injecting the display timezone where the oracle left
// it off a timed field. Returns a reason when the delta is unusable.
func validateDeltaTimes(delta *model.EventDelta, loc *time.Location) string {
	for _, t := range []*model.EventTime{delta.Start, delta.End} {
		if t == nil {
			continue
		}
		if t.IsZero() {
			return "time field present but empty"
		}
		if t.DateTime != "" {
			if _, err := time.Parse(time.RFC3339, t.DateTime); err != nil {
				return fmt.Sprintf("unparsable instant %q", t.DateTime)
			}
			if t.TimeZone == "" {
				t.TimeZone = loc.String()
			}
		} else if _, err := time.Parse("2006-01-02", t.Date); err != nil {
			return fmt.Sprintf("unparsable date %q", t.Date)
		}
	}
	return ""
}

func startKeyOf(ev model.CalendarEvent) string {
	if ev.Start.DateTime != "" {
		return ev.Start.DateTime
	}
	return ev.Start.Date
}
