package treatmentplans

import (
	"time"

	"tb-treatment-plans/internal/domain/dosage"
)

// PatientRef apunta al expediente externo; este módulo no es dueño del paciente.
type PatientRef struct {
	CaseID     string
	CaseNumber string
	FullName   string
}

type TreatmentPlan struct {
	ID      string
	Patient PatientRef

	RegimenCode string
	WeightKg    float64

	StartDate time.Time
	EndDate   time.Time

	TotalMonths        int
	IntensiveMonths    int
	ContinuationMonths int

	Medications []string

	DosageIntensive    dosage.Schedule
	DosageContinuation dosage.Schedule
	DosageTotal        dosage.Schedule

	FollowUpDates []time.Time

	Status  Status
	Outcome Outcome

	NotifyRecipient string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasFollowUpOn indica si day (medianoche) es una fecha de control del plan.
func (p TreatmentPlan) HasFollowUpOn(day time.Time) bool {
	y, m, d := day.Date()
	for _, f := range p.FollowUpDates {
		fy, fm, fd := f.Date()
		if fy == y && fm == m && fd == d {
			return true
		}
	}
	return false
}

// Clone copia slices y mapas para que el repositorio no comparta memoria con el caller.
func (p TreatmentPlan) Clone() TreatmentPlan {
	out := p
	out.Medications = append([]string(nil), p.Medications...)
	out.DosageIntensive = cloneSchedule(p.DosageIntensive)
	out.DosageContinuation = cloneSchedule(p.DosageContinuation)
	out.DosageTotal = cloneSchedule(p.DosageTotal)
	out.FollowUpDates = append(make([]time.Time, 0, len(p.FollowUpDates)), p.FollowUpDates...)
	return out
}

func cloneSchedule(s dosage.Schedule) dosage.Schedule {
	if s == nil {
		return nil
	}
	out := make(dosage.Schedule, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
