package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleEvents implements EventsAPI against the Google Calendar v3 API.
type GoogleEvents struct {
	svc *gcal.Service
}

var _ EventsAPI = (*GoogleEvents)(nil)

// NewGoogleEvents builds an EventsAPI from OAuth client credentials and a
// previously saved token. Run the onboard command first to obtain the token;
// refresh afterwards is automatic.
func NewGoogleEvents(ctx context.Context, credentialsFile, tokenFile string) (*GoogleEvents, error) {
	oauthConfig, err := LoadOAuthConfig(credentialsFile)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(tokenFile)
	if err != nil {
		return nil, err
	}

	client := oauthConfig.Client(ctx, token)
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &GoogleEvents{svc: svc}, nil
}

func (g *GoogleEvents) List(ctx context.Context, calendarID string, q ListQuery) ([]Event, error) {
	call := g.svc.Events.List(calendarID).
		Context(ctx).
		TimeMin(q.TimeMin).
		TimeMax(q.TimeMax).
		MaxResults(q.MaxResults).
		SingleEvents(true)
	if q.Query != "" {
		call = call.Q(q.Query)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	out := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, fromGoogleEvent(item))
	}
	return out, nil
}

func (g *GoogleEvents) Insert(ctx context.Context, calendarID string, ev Event) (Event, error) {
	created, err := g.svc.Events.Insert(calendarID, &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &gcal.EventDateTime{Date: ev.StartDate},
		End:         &gcal.EventDateTime{Date: ev.EndDate},
	}).Context(ctx).Do()
	if err != nil {
		return Event{}, fmt.Errorf("insert event: %w", err)
	}
	return fromGoogleEvent(created), nil
}

func (g *GoogleEvents) Delete(ctx context.Context, calendarID, eventID string) error {
	if err := g.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}
	return nil
}

func fromGoogleEvent(item *gcal.Event) Event {
	ev := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
	}
	if item.Start != nil {
		ev.StartDate = item.Start.Date
	}
	if item.End != nil {
		ev.EndDate = item.End.Date
	}
	return ev
}

// --- OAuth plumbing, shared with the onboard command ---

// LoadOAuthConfig parses an OAuth client credentials file with calendar scope.
func LoadOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(data, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}
	return oauthConfig, nil
}

// LoadToken reads a saved OAuth token.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", tokenFile, err)
	}
	return &token, nil
}

// SaveToken writes an OAuth token with owner-only permissions.
func SaveToken(tokenFile string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(tokenFile, data, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}
