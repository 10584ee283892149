package treatmentplans

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tb-treatment-plans/internal/domain/dosage"
	"tb-treatment-plans/internal/domain/regimens"
	"tb-treatment-plans/internal/domain/schedule"
)

var ErrInconsistentPlan = errors.New("inconsistent treatment plan")

type AssembleInput struct {
	RegimenCode string
	WeightKg    float64
	StartDate   time.Time
	Patient     PatientRef
}

// Assembler compone catálogo, dosis y calendario en un TreatmentPlan.
// No hace I/O ni guarda estado mutable: se puede compartir entre goroutines.
type Assembler struct {
	catalog *regimens.Catalog
	bands   *dosage.Table
}

func NewAssembler(catalog *regimens.Catalog, bands *dosage.Table) *Assembler {
	if catalog == nil {
		catalog = regimens.Default()
	}
	if bands == nil {
		bands = dosage.Default()
	}
	return &Assembler{catalog: catalog, bands: bands}
}

// Assemble es todo-o-nada: ante cualquier error devuelve el plan vacío.
func (a *Assembler) Assemble(in AssembleInput) (TreatmentPlan, error) {
	if err := schedule.Validate(in.StartDate); err != nil {
		return TreatmentPlan{}, err
	}

	reg, err := a.catalog.Lookup(in.RegimenCode)
	if err != nil {
		return TreatmentPlan{}, err
	}

	intensive, err := a.bands.DosageFor(in.WeightKg, reg.IntensiveMonths, dosage.PhaseIntensive)
	if err != nil {
		return TreatmentPlan{}, fmt.Errorf("intensive phase: %w", err)
	}
	continuation, err := a.bands.DosageFor(in.WeightKg, reg.ContinuationMonths, dosage.PhaseContinuation)
	if err != nil {
		return TreatmentPlan{}, fmt.Errorf("continuation phase: %w", err)
	}

	start := schedule.Day(in.StartDate)
	end := schedule.EndDate(start, reg.TotalMonths)

	p := TreatmentPlan{
		Patient: PatientRef{
			CaseID:     strings.TrimSpace(in.Patient.CaseID),
			CaseNumber: strings.TrimSpace(in.Patient.CaseNumber),
			FullName:   strings.TrimSpace(in.Patient.FullName),
		},
		RegimenCode:        reg.Code,
		WeightKg:           in.WeightKg,
		StartDate:          start,
		EndDate:            end,
		TotalMonths:        reg.TotalMonths,
		IntensiveMonths:    reg.IntensiveMonths,
		ContinuationMonths: reg.ContinuationMonths,
		Medications:        reg.MedicationLabels(),
		DosageIntensive:    intensive,
		DosageContinuation: continuation,
		DosageTotal:        dosage.Total(intensive, continuation),
		FollowUpDates:      schedule.FollowUpDates(start, end),
		Status:             StatusPending,
		Outcome:            OutcomeNotEvaluated,
	}

	if err := checkConsistency(p); err != nil {
		return TreatmentPlan{}, err
	}
	return p, nil
}

func checkConsistency(p TreatmentPlan) error {
	if p.IntensiveMonths+p.ContinuationMonths != p.TotalMonths {
		return fmt.Errorf("%w: phases do not sum to total", ErrInconsistentPlan)
	}
	if p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrInconsistentPlan)
	}
	for i, d := range p.FollowUpDates {
		if d.After(p.EndDate) || !d.After(p.StartDate) {
			return fmt.Errorf("%w: follow-up %s outside treatment", ErrInconsistentPlan, d.Format(schedule.DateLayout))
		}
		if i > 0 && !d.After(p.FollowUpDates[i-1]) {
			return fmt.Errorf("%w: follow-ups not increasing", ErrInconsistentPlan)
		}
	}
	for d, n := range p.DosageTotal {
		if n != p.DosageIntensive.Get(d)+p.DosageContinuation.Get(d) {
			return fmt.Errorf("%w: total for %s is not the sum of phases", ErrInconsistentPlan, d)
		}
	}
	return nil
}
