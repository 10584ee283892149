package gcalendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tb-treatment-plans/internal/platform/httpclient"
	"tb-treatment-plans/internal/ports/reminders"
)

func TestCreateEvent_SendsEvent(t *testing.T) {
	var got eventRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendars/clinic@example.org/events" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"id":"ev-1"}`))
	}))
	defer ts.Close()

	c, err := NewClient(Config{BaseURL: ts.URL, CalendarID: "clinic@example.org", Token: "tok", Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	loc := time.FixedZone("PHT", 8*3600)
	at := time.Date(2024, 1, 29, 0, 0, 0, 0, loc)
	ev := reminders.CalendarEvent{Subject: "Follow Up for Juan", Start: at, End: at, TimeZone: "Asia/Manila"}
	if err := c.CreateEvent(context.Background(), ev); err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}

	if got.Summary != "Follow Up for Juan" {
		t.Fatalf("unexpected summary %q", got.Summary)
	}
	if got.Start.DateTime != "2024-01-29T00:00:00+08:00" || got.Start.TimeZone != "Asia/Manila" {
		t.Fatalf("unexpected start %+v", got.Start)
	}
	if got.End != got.Start {
		t.Fatalf("expected end == start, got %+v", got.End)
	}
}

func TestCreateEvent_Errors(t *testing.T) {
	c, _ := NewClient(Config{})
	if err := c.CreateEvent(context.Background(), reminders.CalendarEvent{}); !errors.Is(err, ErrCalendarNotConfigured) {
		t.Fatalf("expected ErrCalendarNotConfigured, got %v", err)
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	c, _ = NewClient(Config{BaseURL: ts.URL, CalendarID: "c", Token: "t"})
	err := c.CreateEvent(context.Background(), reminders.CalendarEvent{Subject: "x"})
	if !errors.Is(err, ErrCalendarUpstream) {
		t.Fatalf("expected ErrCalendarUpstream, got %v", err)
	}
	var he *httpclient.HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusForbidden {
		t.Fatalf("expected wrapped HTTPError with 403, got %v", err)
	}
}
