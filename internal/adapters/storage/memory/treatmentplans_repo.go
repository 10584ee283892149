package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"tb-treatment-plans/internal/domain/treatmentplans"
)

var ErrAlreadyExists = errors.New("treatment plan already exists")

type treatmentPlanRepo struct {
	mu   sync.RWMutex
	byID map[string]treatmentplans.TreatmentPlan
}

func NewTreatmentPlanRepo() treatmentplans.Repository {
	return &treatmentPlanRepo{
		byID: make(map[string]treatmentplans.TreatmentPlan),
	}
}

func (r *treatmentPlanRepo) Create(ctx context.Context, p treatmentplans.TreatmentPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("treatment plan id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return ErrAlreadyExists
	}
	r.byID[p.ID] = p.Clone()
	return nil
}

func (r *treatmentPlanRepo) GetByID(ctx context.Context, id string) (treatmentplans.TreatmentPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return treatmentplans.TreatmentPlan{}, treatmentplans.ErrNotFound
	}
	return p.Clone(), nil
}

// UpdateState compara y escribe bajo el mismo lock.
func (r *treatmentPlanRepo) UpdateState(ctx context.Context, id string, ch treatmentplans.StateChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return treatmentplans.ErrNotFound
	}
	if p.Status != ch.FromStatus || p.Outcome != ch.FromOutcome {
		return treatmentplans.ErrStateConflict
	}
	p.Status = ch.Status
	p.Outcome = ch.Outcome
	p.UpdatedAt = ch.UpdatedAt
	r.byID[id] = p
	return nil
}

func (r *treatmentPlanRepo) ListDueOn(ctx context.Context, day time.Time) ([]treatmentplans.TreatmentPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]treatmentplans.TreatmentPlan, 0)
	for _, p := range r.byID {
		if p.Status.Terminal() || !p.HasFollowUpOn(day) {
			continue
		}
		out = append(out, p.Clone())
	}

	// Orden estable por created_at asc
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
