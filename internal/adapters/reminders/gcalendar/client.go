package gcalendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tb-treatment-plans/internal/platform/httpclient"
	"tb-treatment-plans/internal/ports/reminders"
)

var (
	ErrCalendarNotConfigured = errors.New("calendar client not configured")
	ErrCalendarUpstream      = errors.New("calendar upstream error")
)

const DefaultBaseURL = "https://www.googleapis.com/calendar/v3"

type Config struct {
	BaseURL    string
	CalendarID string
	Token      string
	Timeout    time.Duration
}

// Client inserta eventos en un calendario REST (API v3). Implementa reminders.CalendarPublisher.
type Client struct {
	http       *httpclient.Client
	calendarID string
	token      string
}

var _ reminders.CalendarPublisher = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:       hc,
		calendarID: strings.TrimSpace(cfg.CalendarID),
		token:      strings.TrimSpace(cfg.Token),
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.calendarID != "" && c.token != ""
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventRequest struct {
	Summary string    `json:"summary"`
	Start   eventTime `json:"start"`
	End     eventTime `json:"end"`
}

type eventResponse struct {
	ID string `json:"id"`
}

func (c *Client) CreateEvent(ctx context.Context, ev reminders.CalendarEvent) error {
	if !c.IsConfigured() {
		return ErrCalendarNotConfigured
	}

	body := eventRequest{
		Summary: ev.Subject,
		Start:   eventTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: ev.TimeZone},
		End:     eventTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: ev.TimeZone},
	}
	path := "/calendars/" + url.PathEscape(c.calendarID) + "/events"
	headers := map[string]string{"Authorization": "Bearer " + c.token}

	var out eventResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, path, headers, body, &out); err != nil {
		return fmt.Errorf("%w: %w", ErrCalendarUpstream, err)
	}
	return nil
}
