package reminders

import (
	"context"
	"fmt"
	"time"

	"tb-treatment-plans/internal/domain/schedule"
	"tb-treatment-plans/internal/domain/treatmentplans"
	"tb-treatment-plans/internal/platform/logger"
	"tb-treatment-plans/internal/platform/metrics"
	ports "tb-treatment-plans/internal/ports/reminders"

	"github.com/go-co-op/gocron"
)

const DefaultSweepAt = "07:00"

// DueLister es el subconjunto del servicio que usa el barrido.
type DueLister interface {
	ListDueOn(ctx context.Context, day time.Time) ([]treatmentplans.TreatmentPlan, error)
}

// Sweeper manda, una vez al día, el SMS de los planes con control hoy.
type Sweeper struct {
	lister    DueLister
	sms       ports.SMSSender
	builder   *Builder
	log       logger.Logger
	at        string
	timeout   time.Duration
	now       func() time.Time
	scheduler *gocron.Scheduler
}

func NewSweeper(lister DueLister, sms ports.SMSSender, b *Builder, log logger.Logger, at string) *Sweeper {
	if log == nil {
		log = logger.Nop()
	}
	if at == "" {
		at = DefaultSweepAt
	}
	return &Sweeper{
		lister:    lister,
		sms:       sms,
		builder:   b,
		log:       log.With(map[string]any{"component": "sweeper"}),
		at:        at,
		timeout:   DefaultTimeout,
		now:       time.Now,
		scheduler: gocron.NewScheduler(b.Location()),
	}
}

func (s *Sweeper) Start() error {
	_, err := s.scheduler.Every(1).Day().At(s.at).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if _, err := s.RunOnce(ctx, s.now().In(s.builder.Location())); err != nil {
			s.log.Error("reminder sweep failed", map[string]any{"error": err})
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminder sweep: %w", err)
	}

	s.scheduler.StartAsync()
	s.log.Info("reminder sweep scheduled", map[string]any{"at": s.at})
	return nil
}

func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

// RunOnce envía los recordatorios del día y devuelve cuántos salieron bien.
func (s *Sweeper) RunOnce(ctx context.Context, day time.Time) (int, error) {
	day = schedule.Day(day)
	plans, err := s.lister.ListDueOn(ctx, day)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, p := range plans {
		msg := s.builder.DayOf(p, day)
		if err := s.sms.SendSMS(ctx, msg); err != nil {
			metrics.ReminderDeliveries.WithLabelValues("sweep", "error").Inc()
			s.log.Error("day-of reminder failed", map[string]any{"plan_id": p.ID, "error": err})
			continue
		}
		metrics.ReminderDeliveries.WithLabelValues("sweep", "ok").Inc()
		sent++
	}

	s.log.Info("reminder sweep done", map[string]any{
		"day":  day.Format(schedule.DateLayout),
		"due":  len(plans),
		"sent": sent,
	})
	return sent, nil
}
