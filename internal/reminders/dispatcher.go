package reminders

import (
	"context"
	"sync"
	"time"

	"tb-treatment-plans/internal/domain/schedule"
	"tb-treatment-plans/internal/domain/treatmentplans"
	"tb-treatment-plans/internal/platform/logger"
	"tb-treatment-plans/internal/platform/metrics"
	ports "tb-treatment-plans/internal/ports/reminders"

	"github.com/juju/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency = 4
	DefaultTimeout     = 2 * time.Minute

	channelCalendar = "calendar"
	channelSMS      = "sms"
)

type DispatcherConfig struct {
	Concurrency int
	Timeout     time.Duration

	// SMSRatePerSecond <= 0 desactiva el throttle.
	SMSRatePerSecond float64
	SMSBurst         int64
}

// Report resume un lote enviado.
type Report struct {
	Reminders    int
	EventsSent   int
	EventsFailed int
	SMSSent      int
	SMSFailed    int
}

func (r Report) Failed() int { return r.EventsFailed + r.SMSFailed }

// Dispatcher envía un evento y un SMS por fecha de control. Implementa
// treatmentplans.ReminderDispatcher; las fallas quedan en log y métricas.
type Dispatcher struct {
	builder  *Builder
	calendar ports.CalendarPublisher
	sms      ports.SMSSender
	log      logger.Logger

	limit   int
	timeout time.Duration
	bucket  *ratelimit.Bucket

	wg sync.WaitGroup
}

var _ treatmentplans.ReminderDispatcher = (*Dispatcher)(nil)

func NewDispatcher(b *Builder, cal ports.CalendarPublisher, sms ports.SMSSender, log logger.Logger, cfg DispatcherConfig) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	limit := cfg.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var bucket *ratelimit.Bucket
	if cfg.SMSRatePerSecond > 0 {
		burst := cfg.SMSBurst
		if burst <= 0 {
			burst = 1
		}
		bucket = ratelimit.NewBucketWithRate(cfg.SMSRatePerSecond, burst)
	}

	return &Dispatcher{
		builder:  b,
		calendar: cal,
		sms:      sms,
		log:      log.With(map[string]any{"component": "reminders"}),
		limit:    limit,
		timeout:  timeout,
		bucket:   bucket,
	}
}

// Dispatch corre el lote en background y vuelve de inmediato.
func (d *Dispatcher) Dispatch(p treatmentplans.TreatmentPlan) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		rep := d.DispatchSync(ctx, p)
		fields := map[string]any{
			"plan_id":   p.ID,
			"reminders": rep.Reminders,
			"failed":    rep.Failed(),
		}
		if rep.Failed() > 0 {
			d.log.Warn("reminder batch finished with failures", fields)
			return
		}
		d.log.Info("reminder batch sent", fields)
	}()
}

// DispatchSync envía el lote y espera a que termine.
func (d *Dispatcher) DispatchSync(ctx context.Context, p treatmentplans.TreatmentPlan) Report {
	batch := d.builder.Build(p)
	rep := Report{Reminders: len(batch)}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(d.limit)

	for _, r := range batch {
		g.Go(func() error {
			evErr := d.sendEvent(ctx, p, r)
			smsErr := d.sendSMS(ctx, p, r)

			mu.Lock()
			defer mu.Unlock()
			if evErr != nil {
				rep.EventsFailed++
			} else {
				rep.EventsSent++
			}
			if smsErr != nil {
				rep.SMSFailed++
			} else {
				rep.SMSSent++
			}
			return nil
		})
	}
	_ = g.Wait()
	return rep
}

// Close espera los lotes en curso.
func (d *Dispatcher) Close() {
	d.wg.Wait()
}

func (d *Dispatcher) sendEvent(ctx context.Context, p treatmentplans.TreatmentPlan, r Reminder) error {
	if d.calendar == nil {
		return nil
	}
	err := d.calendar.CreateEvent(ctx, r.Event)
	d.observe(channelCalendar, p, r.Date, err)
	return err
}

func (d *Dispatcher) sendSMS(ctx context.Context, p treatmentplans.TreatmentPlan, r Reminder) error {
	if d.sms == nil {
		return nil
	}
	if err := d.throttle(ctx); err != nil {
		d.observe(channelSMS, p, r.Date, err)
		return err
	}
	err := d.sms.SendSMS(ctx, r.SMS)
	d.observe(channelSMS, p, r.Date, err)
	return err
}

func (d *Dispatcher) throttle(ctx context.Context) error {
	if d.bucket == nil {
		return ctx.Err()
	}
	wait := d.timeout
	if dl, ok := ctx.Deadline(); ok {
		wait = time.Until(dl)
	}
	if !d.bucket.WaitMaxDuration(1, wait) {
		return context.DeadlineExceeded
	}
	return ctx.Err()
}

func (d *Dispatcher) observe(channel string, p treatmentplans.TreatmentPlan, date time.Time, err error) {
	if err == nil {
		metrics.ReminderDeliveries.WithLabelValues(channel, "ok").Inc()
		return
	}
	metrics.ReminderDeliveries.WithLabelValues(channel, "error").Inc()
	d.log.Error("reminder delivery failed", map[string]any{
		"channel": channel,
		"plan_id": p.ID,
		"date":    date.Format(schedule.DateLayout),
		"error":   err,
	})
}
