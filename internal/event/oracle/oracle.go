package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"calendar-assistant/internal/model"
	"calendar-assistant/pkg/gemini"
	"calendar-assistant/pkg/log"
)

// Generator is the slice of the Gemini client the oracle needs.
type Generator interface {
	GenerateContent(ctx context.Context, req gemini.GenerateRequest) (*gemini.GenerateResponse, error)
}

// Oracle turns natural language into typed calendar structures.
type Oracle interface {
	ClassifyIntent(ctx context.Context, text string) (Intent, error)
	ParseDateRange(ctx context.Context, text string, now time.Time) (DateRange, error)
	ExtractCreate(ctx context.Context, text string, now time.Time, zone string) (model.EventBody, error)
	SplitSearchAndChanges(ctx context.Context, text string, now time.Time) (UpdateParts, error)
	ExtractUpdateDelta(ctx context.Context, changes string, original model.CalendarEvent, now time.Time, zone string) (model.EventDelta, error)
	Disambiguate(ctx context.Context, text string, candidates []model.CalendarEvent) (Selection, error)
	Chat(ctx context.Context, text string) (string, error)
}

type implOracle struct {
	l   log.Logger
	llm Generator
}

func New(l log.Logger, llm Generator) Oracle {
	return &implOracle{l: l, llm: llm}
}

// generate runs one prompt with deterministic settings and returns the
// raw text of the first candidate.
func (o *implOracle) generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	resp, err := o.llm.GenerateContent(ctx, gemini.GenerateRequest{
		Contents: []gemini.Content{
			{Parts: []gemini.Part{{Text: prompt}}},
		},
		GenerationConfig: &gemini.GenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: 2048,
		},
	})
	if err != nil {
		return "", fmt.Errorf("LLM request failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from LLM")
	}
	return text, nil
}

// generateJSON runs one prompt and decodes the sanitized reply into out.
func (o *implOracle) generateJSON(ctx context.Context, prompt string, out any) error {
	raw, err := o.generate(ctx, prompt, 0.2)
	if err != nil {
		return err
	}
	cleaned := sanitizeJSONResponse(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		o.l.Errorf(ctx, "oracle: failed to decode model output. Raw=%q Cleaned=%q", raw, cleaned)
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func (o *implOracle) ClassifyIntent(ctx context.Context, text string) (Intent, error) {
	var wire struct {
		Intent string `json:"intent"`
	}
	if err := o.generateJSON(ctx, buildClassifyPrompt(text), &wire); err != nil {
		return "", err
	}
	switch intent := Intent(wire.Intent); intent {
	case IntentSummary, IntentCreate, IntentDelete, IntentUpdate, IntentChat:
		return intent, nil
	}
	return "", fmt.Errorf("%w: unknown intent %q", ErrMalformed, wire.Intent)
}

func (o *implOracle) ParseDateRange(ctx context.Context, text string, now time.Time) (DateRange, error) {
	var wire struct {
		Start string `json:"start"`
		End   string `json:"end"`
		Label string `json:"label"`
	}
	if err := o.generateJSON(ctx, buildDateRangePrompt(text, now), &wire); err != nil {
		return DateRange{}, err
	}
	start, err := time.Parse(time.RFC3339, wire.Start)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: bad range start %q", ErrMalformed, wire.Start)
	}
	end, err := time.Parse(time.RFC3339, wire.End)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: bad range end %q", ErrMalformed, wire.End)
	}
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("%w: range end before start", ErrMalformed)
	}
	label := strings.TrimSpace(wire.Label)
	if label == "" {
		label = "the requested period"
	}
	return DateRange{Start: start, End: end, Label: label}, nil
}

func (o *implOracle) ExtractCreate(ctx context.Context, text string, now time.Time, zone string) (model.EventBody, error) {
	var wire eventBodyWire
	if err := o.generateJSON(ctx, buildExtractCreatePrompt(text, now, zone), &wire); err != nil {
		return model.EventBody{}, err
	}
	body := wire.toModel(zone)
	if strings.TrimSpace(body.Summary) == "" {
		return model.EventBody{}, fmt.Errorf("%w: extracted event has no title", ErrMalformed)
	}
	if body.Start.IsZero() {
		return model.EventBody{}, fmt.Errorf("%w: extracted event has no start", ErrMalformed)
	}
	return body, nil
}

func (o *implOracle) SplitSearchAndChanges(ctx context.Context, text string, now time.Time) (UpdateParts, error) {
	var wire struct {
		Search      string `json:"search"`
		Changes     string `json:"changes"`
		SearchStart string `json:"search_start"`
		SearchEnd   string `json:"search_end"`
	}
	if err := o.generateJSON(ctx, buildSplitUpdatePrompt(text, now), &wire); err != nil {
		return UpdateParts{}, err
	}
	parts := UpdateParts{
		Search:  strings.TrimSpace(wire.Search),
		Changes: strings.TrimSpace(wire.Changes),
	}
	if parts.Search == "" || parts.Changes == "" {
		return UpdateParts{}, fmt.Errorf("%w: update request did not split", ErrMalformed)
	}
	// The window is a hint. Anything that does not parse into a sane
	// ordered pair is dropped, not an error.
	if wire.SearchStart != "" && wire.SearchEnd != "" {
		start, errS := time.Parse(time.RFC3339, wire.SearchStart)
		end, errE := time.Parse(time.RFC3339, wire.SearchEnd)
		if errS == nil && errE == nil && start.Before(end) {
			parts.WindowStart, parts.WindowEnd = &start, &end
		}
	}
	return parts, nil
}

func (o *implOracle) ExtractUpdateDelta(ctx context.Context, changes string, original model.CalendarEvent, now time.Time, zone string) (model.EventDelta, error) {
	var wire deltaWire
	if err := o.generateJSON(ctx, buildExtractDeltaPrompt(changes, original, now, zone), &wire); err != nil {
		return model.EventDelta{}, err
	}
	return wire.toModel(zone), nil
}

func (o *implOracle) Disambiguate(ctx context.Context, text string, candidates []model.CalendarEvent) (Selection, error) {
	var wire struct {
		Match string `json:"match"`
		Index int    `json:"index"`
	}
	if err := o.generateJSON(ctx, buildDisambiguatePrompt(text, candidates), &wire); err != nil {
		return Selection{}, err
	}
	match := MatchKind(wire.Match)
	switch match {
	case MatchNone, MatchMultiple:
		return Selection{Match: match}, nil
	case MatchSingle:
		if wire.Index < 0 || wire.Index >= len(candidates) {
			return Selection{}, fmt.Errorf("%w: selection index %d out of range", ErrMalformed, wire.Index)
		}
		return Selection{Match: MatchSingle, Index: wire.Index}, nil
	}
	return Selection{}, fmt.Errorf("%w: unknown match kind %q", ErrMalformed, wire.Match)
}

func (o *implOracle) Chat(ctx context.Context, text string) (string, error) {
	reply, err := o.generate(ctx, buildChatPrompt(text), 0.7)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// eventBodyWire mirrors the JSON shape the extraction prompts request,
// which is deliberately the Google Calendar event shape.
type eventBodyWire struct {
	Summary     string         `json:"summary"`
	Start       *eventTimeWire `json:"start"`
	End         *eventTimeWire `json:"end"`
	Description string         `json:"description"`
	Location    string         `json:"location"`
}

type eventTimeWire struct {
	Date     string `json:"date"`
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

func (w eventBodyWire) toModel(zone string) model.EventBody {
	body := model.EventBody{
		Summary:     strings.TrimSpace(w.Summary),
		Description: strings.TrimSpace(w.Description),
		Location:    strings.TrimSpace(w.Location),
	}
	if w.Start != nil {
		body.Start = w.Start.toModel(zone)
	}
	if w.End != nil {
		body.End = w.End.toModel(zone)
	}
	return body
}

// toModel injects the display timezone on timed fields when the model
// omitted it. All-day fields never carry a zone.
func (w eventTimeWire) toModel(zone string) model.EventTime {
	t := model.EventTime{
		Date:     strings.TrimSpace(w.Date),
		DateTime: strings.TrimSpace(w.DateTime),
		TimeZone: strings.TrimSpace(w.TimeZone),
	}
	if t.DateTime != "" && t.TimeZone == "" {
		t.TimeZone = zone
	}
	return t
}

type deltaWire struct {
	Summary     *string        `json:"summary"`
	Start       *eventTimeWire `json:"start"`
	End         *eventTimeWire `json:"end"`
	Description *string        `json:"description"`
	Location    *string        `json:"location"`
}

func (w deltaWire) toModel(zone string) model.EventDelta {
	var delta model.EventDelta
	delta.Summary = w.Summary
	delta.Description = w.Description
	delta.Location = w.Location
	if w.Start != nil {
		start := w.Start.toModel(zone)
		if !start.IsZero() {
			delta.Start = &start
		}
	}
	if w.End != nil {
		end := w.End.toModel(zone)
		if !end.IsZero() {
			delta.End = &end
		}
	}
	return delta
}
