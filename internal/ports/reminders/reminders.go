package reminders

import (
	"context"
	"time"
)

// CalendarEvent describe un evento de calendario por fecha de control.
type CalendarEvent struct {
	Subject  string
	Start    time.Time
	End      time.Time
	TimeZone string
}

// SMS es el payload de texto para el gateway.
type SMS struct {
	Recipient string
	Message   string
}

// CalendarPublisher crea eventos; reintentos y reporte de fallas son del colaborador.
type CalendarPublisher interface {
	CreateEvent(ctx context.Context, ev CalendarEvent) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, msg SMS) error
}
