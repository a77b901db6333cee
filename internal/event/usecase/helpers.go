package usecase

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"

	"calendar-assistant/internal/event"
	"calendar-assistant/internal/event/oracle"
	"calendar-assistant/internal/model"
	"calendar-assistant/pkg/gcalendar"
	"calendar-assistant/pkg/timefmt"
)

// User-facing messages for degraded outcomes.
const (
	msgExtractionFailed = "I couldn't work out the event details from that. Could you rephrase with a title and a time?"
	msgNoMatch          = "I couldn't find an event matching that. Could you be more specific about the title or date?"
	msgMultipleMatches  = "I found more than one event that could match. Could you be more specific?"
	msgNoChanges        = "I couldn't identify what should change. Could you describe the change, e.g. \"move it to 3pm\"?"
	msgServiceTrouble   = "I'm having trouble reaching your calendar right now. Please try again in a moment."
	msgAuthReconnect    = "I've lost access to your calendar. Please reconnect your Google account and try again."
)

// defaultWindow spans from local midnight through windowDays ahead.
func (uc *implUseCase) defaultWindow(ctx context.Context, sc model.Scope, windowDays int) (time.Time, time.Time) {
	loc := uc.prefs.Location(ctx, sc.UserID)
	now := uc.now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return dayStart, dayStart.AddDate(0, 0, windowDays+1)
}

// locateEvent searches the window for candidates and asks the oracle to
// pick the one the text refers to. A nil event with a non-empty reply
// means the lookup ended in a user-facing message, not a failure.
func (uc *implUseCase) locateEvent(ctx context.Context, sc model.Scope, text string, timeMin, timeMax time.Time, maxResults int64) (*model.CalendarEvent, string, error) {
	candidates, err := uc.calendar.Search(ctx, gcalendar.SearchRequest{
		Query:      text,
		TimeMin:    timeMin,
		TimeMax:    timeMax,
		MaxResults: maxResults,
	})
	if err != nil {
		uc.l.Errorf(ctx, "locateEvent: user=%s search failed: %v", sc.UserID, err)
		return nil, msgServiceTrouble, nil
	}
	if len(candidates) == 0 {
		return nil, msgNoMatch, nil
	}

	sel, err := uc.oracle.Disambiguate(ctx, text, candidates)
	if err != nil {
		// Malformed verdicts, including out-of-range indices, degrade to
		// asking for specificity rather than guessing.
		uc.l.Warnf(ctx, "locateEvent: user=%s disambiguation failed: %v", sc.UserID, err)
		return nil, msgNoMatch, nil
	}

	switch sel.Match {
	case oracle.MatchNone:
		return nil, msgNoMatch, nil
	case oracle.MatchMultiple:
		return nil, msgMultipleMatches, nil
	}
	picked := candidates[sel.Index]
	return &picked, "", nil
}

// stage writes the pending action, superseding whatever was staged before.
func (uc *implUseCase) stage(ctx context.Context, sc model.Scope, action model.PendingAction) error {
	action.UserID = sc.UserID
	action.Token = uuid.NewString()
	action.CreatedAt = uc.now().UTC()
	return uc.pending.Put(ctx, action)
}

// describeWhen renders an event time for confirmation messages.
func describeWhen(t model.EventTime, loc *time.Location) string {
	iv, err := timefmt.Normalize(t, model.EventTime{}, loc)
	if err != nil {
		return "[time unavailable]"
	}
	if iv.AllDay {
		return iv.Start.Format("Mon, Jan 02, 2006") + " (All Day)"
	}
	return timefmt.FormatConfirm(iv.Start)
}

// describeDelta lists the fields an update will change, one per line.
func describeDelta(delta model.EventDelta, loc *time.Location) string {
	var lines []string
	if delta.Summary != nil {
		lines = append(lines, "• Title: "+html.EscapeString(*delta.Summary))
	}
	if delta.Start != nil {
		lines = append(lines, "• Starts: "+describeWhen(*delta.Start, loc))
	}
	if delta.End != nil {
		lines = append(lines, "• Ends: "+describeWhen(*delta.End, loc))
	}
	if delta.Location != nil {
		lines = append(lines, "• Location: "+html.EscapeString(*delta.Location))
	}
	if delta.Description != nil {
		lines = append(lines, "• Description: "+html.EscapeString(*delta.Description))
	}
	return strings.Join(lines, "\n")
}

func escapeTitle(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(untitled)"
	}
	return html.EscapeString(s)
}

func reply(text string) event.Reply { return event.Reply{Text: text} }

func confirmReply(kind model.ActionKind, text string) event.Reply {
	return event.Reply{Text: text, Confirm: kind}
}
