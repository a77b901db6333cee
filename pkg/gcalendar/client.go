package gcalendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"calendar-assistant/internal/model"
)

// Client wraps the Google Calendar API service.
type Client struct {
	service    *calendar.Service
	calendarID string
}

// NewClientFromCredentialsFile creates a Calendar client from a Service Account JSON file path.
func NewClientFromCredentialsFile(ctx context.Context, credentialsPath, calendarID string) (*Client, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return NewClientFromCredentialsJSON(ctx, data, calendarID)
}

// NewClientFromCredentialsJSON creates a Calendar client from raw Service Account JSON bytes.
// OAuth "installed app" credentials are also accepted when a token.json is present.
func NewClientFromCredentialsJSON(ctx context.Context, credentialsJSON []byte, calendarID string) (*Client, error) {
	config, err := google.JWTConfigFromJSON(credentialsJSON, calendar.CalendarScope)
	if err == nil {
		svc, svcErr := calendar.NewService(ctx, option.WithTokenSource(config.TokenSource(ctx)))
		if svcErr != nil {
			return nil, fmt.Errorf("failed to create calendar service: %w", svcErr)
		}
		return newClient(svc, calendarID), nil
	}

	var oauthCreds struct {
		Installed struct {
			ClientID     string   `json:"client_id"`
			ClientSecret string   `json:"client_secret"`
			RedirectURIs []string `json:"redirect_uris"`
		} `json:"installed"`
	}
	if jsonErr := json.Unmarshal(credentialsJSON, &oauthCreds); jsonErr != nil {
		return nil, fmt.Errorf("unsupported credentials format: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     oauthCreds.Installed.ClientID,
		ClientSecret: oauthCreds.Installed.ClientSecret,
		Scopes:       []string{calendar.CalendarScope},
		Endpoint:     google.Endpoint,
	}

	tokenData, tokenErr := os.ReadFile("token.json")
	if tokenErr != nil {
		return nil, fmt.Errorf("google credentials are OAuth Desktop type but no token.json found: use Service Account instead")
	}

	var tok oauth2.Token
	if jsonErr := json.Unmarshal(tokenData, &tok); jsonErr != nil {
		return nil, fmt.Errorf("failed to parse token.json: %w", jsonErr)
	}

	svc, svcErr := calendar.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, &tok)))
	if svcErr != nil {
		return nil, fmt.Errorf("failed to create calendar service from OAuth token: %w", svcErr)
	}
	return newClient(svc, calendarID), nil
}

// NewClientFromHTTP creates a Calendar client from a pre-configured HTTP client.
func NewClientFromHTTP(ctx context.Context, httpClient *http.Client, calendarID string) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return newClient(svc, calendarID), nil
}

func newClient(svc *calendar.Service, calendarID string) *Client {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Client{service: svc, calendarID: calendarID}
}

// Get fetches a single event by id.
func (c *Client) Get(ctx context.Context, eventID string) (*model.CalendarEvent, error) {
	ev, err := c.service.Events.Get(c.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}
	converted := fromAPI(ev)
	return &converted, nil
}

// Search returns events in the window, optionally filtered by a free-text
// query. A nil slice with an error means the backend call failed; an empty
// slice means the window genuinely holds no events.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]model.CalendarEvent, error) {
	call := c.service.Events.List(c.calendarID).
		TimeMin(req.TimeMin.Format(time.RFC3339)).
		TimeMax(req.TimeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if req.Query != "" {
		call = call.Q(req.Query)
	}
	if req.MaxResults > 0 {
		call = call.MaxResults(req.MaxResults)
	}

	result, err := call.Do()
	if err != nil {
		return nil, classify(err)
	}

	events := make([]model.CalendarEvent, 0, len(result.Items))
	for _, item := range result.Items {
		events = append(events, fromAPI(item))
	}
	return events, nil
}

// Create inserts a new event and returns its id and link.
func (c *Client) Create(ctx context.Context, body model.EventBody) (*CreateResult, error) {
	created, err := c.service.Events.Insert(c.calendarID, &calendar.Event{
		Summary:     body.Summary,
		Description: body.Description,
		Location:    body.Location,
		Start:       toAPITime(body.Start),
		End:         toAPITime(body.End),
	}).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}
	return &CreateResult{ID: created.Id, Link: created.HtmlLink}, nil
}

// Delete removes an event by id.
func (c *Client) Delete(ctx context.Context, eventID string) error {
	err := c.service.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
	return classify(err)
}

// Patch applies exactly the delta's non-nil fields to an event.
func (c *Client) Patch(ctx context.Context, eventID string, delta model.EventDelta) error {
	patch := &calendar.Event{}
	if delta.Summary != nil {
		patch.Summary = *delta.Summary
		patch.ForceSendFields = append(patch.ForceSendFields, "Summary")
	}
	if delta.Description != nil {
		patch.Description = *delta.Description
		patch.ForceSendFields = append(patch.ForceSendFields, "Description")
	}
	if delta.Location != nil {
		patch.Location = *delta.Location
		patch.ForceSendFields = append(patch.ForceSendFields, "Location")
	}
	if delta.Start != nil {
		patch.Start = toAPITime(*delta.Start)
	}
	if delta.End != nil {
		patch.End = toAPITime(*delta.End)
	}

	_, err := c.service.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
	return classify(err)
}

func toAPITime(t model.EventTime) *calendar.EventDateTime {
	if t.IsZero() {
		return nil
	}
	return &calendar.EventDateTime{
		Date:     t.Date,
		DateTime: t.DateTime,
		TimeZone: t.TimeZone,
	}
}

func fromAPITime(t *calendar.EventDateTime) model.EventTime {
	if t == nil {
		return model.EventTime{}
	}
	return model.EventTime{Date: t.Date, DateTime: t.DateTime, TimeZone: t.TimeZone}
}

func fromAPI(ev *calendar.Event) model.CalendarEvent {
	return model.CalendarEvent{
		ID:          ev.Id,
		Summary:     ev.Summary,
		Start:       fromAPITime(ev.Start),
		End:         fromAPITime(ev.End),
		Description: ev.Description,
		Location:    ev.Location,
		HTMLLink:    ev.HtmlLink,
	}
}
