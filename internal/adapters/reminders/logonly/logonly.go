// Package logonly deja los recordatorios en el log cuando no hay gateway configurado.
package logonly

import (
	"context"
	"time"

	"tb-treatment-plans/internal/platform/logger"
	"tb-treatment-plans/internal/ports/reminders"
)

type Publisher struct {
	log logger.Logger
}

var (
	_ reminders.CalendarPublisher = (*Publisher)(nil)
	_ reminders.SMSSender         = (*Publisher)(nil)
)

func New(log logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{log: log.With(map[string]any{"adapter": "logonly"})}
}

func (p *Publisher) CreateEvent(ctx context.Context, ev reminders.CalendarEvent) error {
	p.log.Info("calendar event", map[string]any{
		"subject":   ev.Subject,
		"start":     ev.Start.Format(time.RFC3339),
		"end":       ev.End.Format(time.RFC3339),
		"time_zone": ev.TimeZone,
	})
	return nil
}

func (p *Publisher) SendSMS(ctx context.Context, msg reminders.SMS) error {
	p.log.Info("sms", map[string]any{
		"recipient": msg.Recipient,
		"message":   msg.Message,
	})
	return nil
}
