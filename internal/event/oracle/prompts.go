package oracle

import (
	"fmt"
	"strings"
	"time"

	"calendar-assistant/internal/model"
)

const classifySystemPrompt = `You are an intent classifier for a calendar assistant.

Classify the user's message into exactly one intent:
- "summary": the user wants to see what is on their calendar
- "create": the user wants to add a new event
- "delete": the user wants to remove an existing event
- "update": the user wants to change an existing event
- "chat": anything else (greetings, questions, small talk)

Return ONLY a valid JSON object. No markdown, no code blocks, no explanation text.

EXAMPLE OUTPUT:
{"intent": "create"}`

func buildClassifyPrompt(text string) string {
	return classifySystemPrompt + "\n\nNow classify the following message and return ONLY the JSON object:\n" + text
}

const dateRangeSystemPrompt = `You are a date range resolver for a calendar assistant.

Resolve the period the user's message refers to into an absolute range:
- start: RFC3339 date-time of the start of the period, in the user's timezone
- end: RFC3339 date-time of the end of the period, in the user's timezone
- label: a short human phrase for the period (e.g. "today", "this week", "August 19")

If the message names no period at all, use today.

Return ONLY a valid JSON object. No markdown, no code blocks, no explanation text.

EXAMPLE OUTPUT:
{"start": "2026-08-24T00:00:00+02:00", "end": "2026-08-30T23:59:59+02:00", "label": "this week"}`

func buildDateRangePrompt(text string, now time.Time) string {
	return dateRangeSystemPrompt +
		"\n\nCURRENT DATE-TIME (USE FOR RELATIVE RESOLUTION):\n" + now.Format(time.RFC3339) +
		"\n\nNow resolve the period in the following message and return ONLY the JSON object:\n" + text
}

const extractCreateSystemPrompt = `You are an event extraction assistant for a calendar.

Extract a single calendar event from the user's message:
- summary: short event title (required)
- start, end: objects with EITHER "date" (YYYY-MM-DD, for all-day events) OR "dateTime" (RFC3339) plus "timeZone" (IANA name). Never both.
- description: additional details (omit if none)
- location: place name or address (omit if none)

RULES:
1. If no duration or end is mentioned for a timed event, make the event 1 hour long.
2. For all-day events use date only. The end date is EXCLUSIVE: a single-day event on the 19th has start.date 2026-08-19 and end.date 2026-08-20.
3. Resolve relative dates ("tomorrow", "next Friday") against the current date-time below.
4. Return ONLY a valid JSON object. No markdown, no code blocks, no explanation text.

EXAMPLE OUTPUT:
{"summary": "Dentist", "start": {"dateTime": "2026-08-19T16:00:00+02:00", "timeZone": "Europe/Amsterdam"}, "end": {"dateTime": "2026-08-19T17:30:00+02:00", "timeZone": "Europe/Amsterdam"}, "location": "Main St 4"}`

func buildExtractCreatePrompt(text string, now time.Time, zone string) string {
	return extractCreateSystemPrompt +
		"\n\nCURRENT DATE-TIME: " + now.Format(time.RFC3339) +
		"\nUSER TIMEZONE: " + zone +
		"\n\nNow extract the event from the following message and return ONLY the JSON object:\n" + text
}

const splitUpdateSystemPrompt = `You are helping a calendar assistant process an event update request.

Split the user's message into two phrases:
- search: the words that identify WHICH event to change (title words, date, time)
- changes: the words that describe WHAT should change

If the message pins the event to a specific day or period, also output
search_start and search_end as RFC3339 timestamps covering that period,
resolved against the current date-time below. Omit them otherwise.

Return ONLY a valid JSON object. No markdown, no code blocks, no explanation text.

EXAMPLE INPUT:
"move my dentist appointment on Tuesday to 3pm"

EXAMPLE OUTPUT:
{"search": "dentist appointment Tuesday", "changes": "move to 3pm", "search_start": "2026-08-25T00:00:00+02:00", "search_end": "2026-08-26T00:00:00+02:00"}`

func buildSplitUpdatePrompt(text string, now time.Time) string {
	return splitUpdateSystemPrompt +
		"\n\nCURRENT DATE-TIME: " + now.Format(time.RFC3339) +
		"\n\nNow split the following message and return ONLY the JSON object:\n" + text
}

const extractDeltaSystemPrompt = `You are an event update assistant for a calendar.

Given an existing event and a requested change, produce ONLY the fields that
must change. Omit every field the user did not ask to change. Never output
null values.

Fields:
- summary: new title (string)
- start, end: objects with EITHER "date" (YYYY-MM-DD) OR "dateTime" (RFC3339) plus "timeZone" (IANA name)
- description: new details (string)
- location: new place (string)

RULES:
1. If the start moves and the user gave no new duration, keep the original duration by moving the end by the same amount, and output both start and end.
2. Resolve relative dates against the current date-time below.
3. Return ONLY a valid JSON object. No markdown, no code blocks, no explanation text.

EXAMPLE OUTPUT:
{"start": {"dateTime": "2026-08-19T15:00:00+02:00", "timeZone": "Europe/Amsterdam"}, "end": {"dateTime": "2026-08-19T16:00:00+02:00", "timeZone": "Europe/Amsterdam"}}`

func buildExtractDeltaPrompt(changes string, original model.CalendarEvent, now time.Time, zone string) string {
	var sb strings.Builder
	sb.WriteString(extractDeltaSystemPrompt)
	sb.WriteString("\n\nCURRENT DATE-TIME: " + now.Format(time.RFC3339))
	sb.WriteString("\nUSER TIMEZONE: " + zone)
	sb.WriteString("\n\nEXISTING EVENT:")
	sb.WriteString("\n  title: " + original.Summary)
	sb.WriteString("\n  start: " + describeEventTime(original.Start))
	sb.WriteString("\n  end: " + describeEventTime(original.End))
	if original.Location != "" {
		sb.WriteString("\n  location: " + original.Location)
	}
	if original.Description != "" {
		sb.WriteString("\n  description: " + original.Description)
	}
	sb.WriteString("\n\nNow produce the changed fields for the following request and return ONLY the JSON object:\n")
	sb.WriteString(changes)
	return sb.String()
}

const disambiguateSystemPrompt = `You are helping a calendar assistant pick the event a user is referring to.

Given the user's request and a numbered candidate list, decide:
- match "single" with the zero-based index when exactly one candidate clearly matches
- match "multiple" when more than one candidate could be meant
- match "none" when no candidate matches

Return ONLY a valid JSON object. No markdown, no code blocks, no explanation text.

EXAMPLE OUTPUT:
{"match": "single", "index": 2}`

func buildDisambiguatePrompt(text string, candidates []model.CalendarEvent) string {
	var sb strings.Builder
	sb.WriteString(disambiguateSystemPrompt)
	sb.WriteString("\n\nCANDIDATES:")
	for i, c := range candidates {
		sb.WriteString(fmt.Sprintf("\n%d. %s (%s)", i, c.Summary, describeEventTime(c.Start)))
	}
	sb.WriteString("\n\nUSER REQUEST:\n")
	sb.WriteString(text)
	sb.WriteString("\n\nReturn ONLY the JSON object:")
	return sb.String()
}

const chatSystemPrompt = `You are a friendly calendar assistant. You can create, change, and delete
calendar events and summarize the user's schedule when asked. Answer the
following message conversationally in at most three sentences. Plain text
only, no markdown.`

func buildChatPrompt(text string) string {
	return chatSystemPrompt + "\n\n" + text
}

func describeEventTime(t model.EventTime) string {
	if t.Date != "" {
		return t.Date + " (all day)"
	}
	if t.TimeZone != "" {
		return t.DateTime + " " + t.TimeZone
	}
	return t.DateTime
}
