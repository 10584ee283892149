package treatmentplans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tb-treatment-plans/internal/domain/dosage"
	"tb-treatment-plans/internal/domain/regimens"
	"tb-treatment-plans/internal/domain/schedule"
	"tb-treatment-plans/internal/platform/metrics"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("treatment plan not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidOutcome    = errors.New("invalid outcome")

	// ErrStateConflict: otro request cambió el estado entre la lectura y la escritura.
	ErrStateConflict = errors.New("treatment plan state changed concurrently")
)

// ReminderDispatcher recibe el plan ya guardado. Es fire-and-forget: sus fallas
// no vuelven al servicio ni invalidan el plan.
type ReminderDispatcher interface {
	Dispatch(p TreatmentPlan)
}

type Service struct {
	repo       Repository
	assembler  *Assembler
	dispatcher ReminderDispatcher
	now        func() time.Time
	newID      func() string
}

func NewService(repo Repository, assembler *Assembler, dispatcher ReminderDispatcher) *Service {
	if assembler == nil {
		assembler = NewAssembler(nil, nil)
	}
	return &Service{
		repo:       repo,
		assembler:  assembler,
		dispatcher: dispatcher,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

type CreateInput struct {
	Patient         PatientRef
	RegimenCode     string
	WeightKg        float64
	StartDate       time.Time
	NotifyRecipient string
}

// Preview arma el plan sin guardarlo ni notificar.
func (s *Service) Preview(ctx context.Context, in AssembleInput) (TreatmentPlan, error) {
	return s.assemble(in)
}

// Create arma, guarda y recién entonces entrega el plan al dispatcher.
func (s *Service) Create(ctx context.Context, in CreateInput) (TreatmentPlan, error) {
	if strings.TrimSpace(in.Patient.CaseID) == "" {
		return TreatmentPlan{}, fmt.Errorf("%w: case id required", ErrInvalidInput)
	}

	p, err := s.assemble(AssembleInput{
		RegimenCode: in.RegimenCode,
		WeightKg:    in.WeightKg,
		StartDate:   in.StartDate,
		Patient:     in.Patient,
	})
	if err != nil {
		return TreatmentPlan{}, err
	}

	now := s.now()
	p.ID = s.newID()
	p.NotifyRecipient = strings.TrimSpace(in.NotifyRecipient)
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Create(ctx, p); err != nil {
		return TreatmentPlan{}, err
	}

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(p)
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (TreatmentPlan, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return TreatmentPlan{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus aplica pending -> active -> completed, con discontinued como salida.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status) (TreatmentPlan, error) {
	if !next.Valid() {
		return TreatmentPlan{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return TreatmentPlan{}, err
	}
	if !p.Status.CanTransitionTo(next) {
		return TreatmentPlan{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, next)
	}

	now := s.now()
	err = s.repo.UpdateState(ctx, p.ID, StateChange{
		FromStatus:  p.Status,
		FromOutcome: p.Outcome,
		Status:      next,
		Outcome:     p.Outcome,
		UpdatedAt:   now,
	})
	if errors.Is(err, ErrStateConflict) {
		return TreatmentPlan{}, fmt.Errorf("%w: %s -> %s: %w", ErrInvalidTransition, p.Status, next, err)
	}
	if err != nil {
		return TreatmentPlan{}, err
	}
	p.Status = next
	p.UpdatedAt = now
	return p, nil
}

func (s *Service) RecordOutcome(ctx context.Context, id string, outcome Outcome) (TreatmentPlan, error) {
	if !outcome.Valid() {
		return TreatmentPlan{}, fmt.Errorf("%w: unknown outcome %q", ErrInvalidOutcome, outcome)
	}
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return TreatmentPlan{}, err
	}
	if !outcome.AllowedFor(p.Status) {
		return TreatmentPlan{}, fmt.Errorf("%w: %s not allowed while %s", ErrInvalidOutcome, outcome, p.Status)
	}

	now := s.now()
	err = s.repo.UpdateState(ctx, p.ID, StateChange{
		FromStatus:  p.Status,
		FromOutcome: p.Outcome,
		Status:      p.Status,
		Outcome:     outcome,
		UpdatedAt:   now,
	})
	if errors.Is(err, ErrStateConflict) {
		return TreatmentPlan{}, fmt.Errorf("%w: %s while %s: %w", ErrInvalidOutcome, outcome, p.Status, err)
	}
	if err != nil {
		return TreatmentPlan{}, err
	}
	p.Outcome = outcome
	p.UpdatedAt = now
	return p, nil
}

// ListDueOn lista planes pending/active con control en day.
func (s *Service) ListDueOn(ctx context.Context, day time.Time) ([]TreatmentPlan, error) {
	return s.repo.ListDueOn(ctx, schedule.Day(day))
}

func (s *Service) assemble(in AssembleInput) (TreatmentPlan, error) {
	p, err := s.assembler.Assemble(in)
	metrics.PlansAssembled.WithLabelValues(assembleResult(err)).Inc()
	return p, err
}

func assembleResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, regimens.ErrUnknownRegimen):
		return "unknown_regimen"
	case errors.Is(err, dosage.ErrWeightOutOfRange):
		return "weight_out_of_range"
	case errors.Is(err, schedule.ErrInvalidStartDate):
		return "invalid_start_date"
	default:
		return "error"
	}
}
