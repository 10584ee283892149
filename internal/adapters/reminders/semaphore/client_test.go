package semaphore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tb-treatment-plans/internal/platform/httpclient"
	"tb-treatment-plans/internal/ports/reminders"
)

func TestSendSMS_PostsForm(t *testing.T) {
	var got map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v4/messages" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got = map[string]string{
			"apikey":     r.PostForm.Get("apikey"),
			"number":     r.PostForm.Get("number"),
			"message":    r.PostForm.Get("message"),
			"sendername": r.PostForm.Get("sendername"),
		}
		_, _ = w.Write([]byte(`[{"message_id":1}]`))
	}))
	defer ts.Close()

	c, err := NewClient(Config{BaseURL: ts.URL, APIKey: "key", SenderName: "TBDOTS", Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.SendSMS(context.Background(), reminders.SMS{Recipient: "09171234567", Message: "hola"}); err != nil {
		t.Fatalf("SendSMS returned error: %v", err)
	}

	want := map[string]string{"apikey": "key", "number": "09171234567", "message": "hola", "sendername": "TBDOTS"}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("field %s: expected %q, got %q", k, v, got[k])
		}
	}
}

func TestSendSMS_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer ts.Close()

	c, _ := NewClient(Config{BaseURL: ts.URL, APIKey: "key"})
	err := c.SendSMS(context.Background(), reminders.SMS{Recipient: "0917", Message: "x"})
	if !errors.Is(err, ErrSemaphoreUpstream) {
		t.Fatalf("expected ErrSemaphoreUpstream, got %v", err)
	}
	var he *httpclient.HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected wrapped HTTPError with 401, got %v", err)
	}
}

func TestSendSMS_Guards(t *testing.T) {
	c, _ := NewClient(Config{})
	if err := c.SendSMS(context.Background(), reminders.SMS{Recipient: "0917"}); !errors.Is(err, ErrSemaphoreNotConfigured) {
		t.Fatalf("expected ErrSemaphoreNotConfigured, got %v", err)
	}

	c, _ = NewClient(Config{APIKey: "key"})
	if err := c.SendSMS(context.Background(), reminders.SMS{Recipient: "  "}); !errors.Is(err, ErrEmptyRecipient) {
		t.Fatalf("expected ErrEmptyRecipient, got %v", err)
	}
}
