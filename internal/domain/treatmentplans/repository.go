package treatmentplans

import (
	"context"
	"time"
)

// StateChange es un compare-and-set: solo se aplica si el plan guardado sigue
// en FromStatus/FromOutcome. Si cambió entre la lectura y la escritura, el repo
// devuelve ErrStateConflict.
type StateChange struct {
	FromStatus  Status
	FromOutcome Outcome

	Status    Status
	Outcome   Outcome
	UpdatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, p TreatmentPlan) error
	GetByID(ctx context.Context, id string) (TreatmentPlan, error)
	UpdateState(ctx context.Context, id string, ch StateChange) error
	// ListDueOn devuelve planes pending/active con un control en day.
	ListDueOn(ctx context.Context, day time.Time) ([]TreatmentPlan, error)
}
