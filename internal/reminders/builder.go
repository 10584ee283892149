package reminders

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"tb-treatment-plans/internal/domain/schedule"
	"tb-treatment-plans/internal/domain/treatmentplans"
	ports "tb-treatment-plans/internal/ports/reminders"
)

const DefaultTimeZone = "Asia/Manila"

var ErrInvalidMessageMode = errors.New("invalid reminder message mode")

// MessageMode decide el texto del SMS por fecha.
type MessageMode string

const (
	// ModeBroadcast repite el mismo texto en cada fecha.
	ModeBroadcast MessageMode = "broadcast"
	ModePerDate   MessageMode = "per_date"
)

func ParseMessageMode(s string) (MessageMode, error) {
	switch MessageMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeBroadcast:
		return ModeBroadcast, nil
	case ModePerDate:
		return ModePerDate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMessageMode, s)
	}
}

// Reminder agrupa lo que se envía por una fecha de control.
type Reminder struct {
	Date  time.Time
	Event ports.CalendarEvent
	SMS   ports.SMS
}

type BuilderConfig struct {
	TimeZone         string
	Mode             MessageMode
	DefaultRecipient string
}

type Builder struct {
	tz               string
	loc              *time.Location
	mode             MessageMode
	defaultRecipient string
}

func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	tz := strings.TrimSpace(cfg.TimeZone)
	if tz == "" {
		tz = DefaultTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", tz, err)
	}
	mode, err := ParseMessageMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}
	return &Builder{
		tz:               tz,
		loc:              loc,
		mode:             mode,
		defaultRecipient: strings.TrimSpace(cfg.DefaultRecipient),
	}, nil
}

func (b *Builder) Location() *time.Location { return b.loc }

// Build arma un recordatorio por fecha de control, en orden.
func (b *Builder) Build(p treatmentplans.TreatmentPlan) []Reminder {
	out := make([]Reminder, 0, len(p.FollowUpDates))
	for _, d := range p.FollowUpDates {
		at := b.instant(d)
		out = append(out, Reminder{
			Date: d,
			Event: ports.CalendarEvent{
				Subject:  "Follow Up for " + p.Patient.FullName,
				Start:    at,
				End:      at,
				TimeZone: b.tz,
			},
			SMS: ports.SMS{
				Recipient: b.Recipient(p),
				Message:   b.message(p, d),
			},
		})
	}
	return out
}

// DayOf es el SMS del barrido diario para una visita de hoy.
func (b *Builder) DayOf(p treatmentplans.TreatmentPlan, day time.Time) ports.SMS {
	return ports.SMS{
		Recipient: b.Recipient(p),
		Message: fmt.Sprintf("Reminder: %s has a TB follow-up visit today (%s).",
			p.Patient.FullName, day.Format(schedule.DateLayout)),
	}
}

func (b *Builder) Recipient(p treatmentplans.TreatmentPlan) string {
	if r := strings.TrimSpace(p.NotifyRecipient); r != "" {
		return r
	}
	return b.defaultRecipient
}

func (b *Builder) message(p treatmentplans.TreatmentPlan, d time.Time) string {
	if b.mode == ModePerDate {
		return fmt.Sprintf("%s's TB follow-up visit is scheduled on %s. Check your google calendar for more information.",
			p.Patient.FullName, d.Format(schedule.DateLayout))
	}
	return p.Patient.FullName + "'s TP follow-up dates are confirmed! Check your google calendar for more information."
}

// instant lleva la fecha de calendario a medianoche en la zona configurada.
func (b *Builder) instant(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, b.loc)
}
