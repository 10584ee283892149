package semaphore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"tb-treatment-plans/internal/platform/httpclient"
	"tb-treatment-plans/internal/ports/reminders"
)

var (
	ErrSemaphoreNotConfigured = errors.New("semaphore client not configured")
	ErrSemaphoreUpstream      = errors.New("semaphore upstream error")
	ErrEmptyRecipient         = errors.New("sms recipient required")
)

const (
	DefaultBaseURL = "https://api.semaphore.co"
	messagesPath   = "/api/v4/messages"
)

type Config struct {
	BaseURL    string
	APIKey     string
	SenderName string
	Timeout    time.Duration
}

// Client envía SMS por el gateway Semaphore. Implementa reminders.SMSSender.
type Client struct {
	http       *httpclient.Client
	apiKey     string
	senderName string
}

var _ reminders.SMSSender = (*Client)(nil)

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
		apiKey:     strings.TrimSpace(cfg.APIKey),
		senderName: strings.TrimSpace(cfg.SenderName),
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != ""
}

func (c *Client) SendSMS(ctx context.Context, msg reminders.SMS) error {
	if !c.IsConfigured() {
		return ErrSemaphoreNotConfigured
	}
	to := strings.TrimSpace(msg.Recipient)
	if to == "" {
		return ErrEmptyRecipient
	}

	form := url.Values{}
	form.Set("apikey", c.apiKey)
	form.Set("number", to)
	form.Set("message", msg.Message)
	if c.senderName != "" {
		form.Set("sendername", c.senderName)
	}

	if err := c.http.PostForm(ctx, messagesPath, form, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrSemaphoreUpstream, err)
	}
	return nil
}
