package treatmentplans

type Status string

const (
	StatusPending      Status = "pending"
	StatusActive       Status = "active"
	StatusCompleted    Status = "completed"
	StatusDiscontinued Status = "discontinued"
)

type Outcome string

const (
	OutcomeNotEvaluated       Outcome = "not_evaluated"
	OutcomeCured              Outcome = "cured"
	OutcomeTreatmentCompleted Outcome = "treatment_completed"
	OutcomeFailed             Outcome = "failed"
	OutcomeDied               Outcome = "died"
	OutcomeLostToFollowUp     Outcome = "lost_to_follow_up"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusActive, StatusDiscontinued},
	StatusActive:  {StatusCompleted, StatusDiscontinued},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusDiscontinued:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusDiscontinued
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeNotEvaluated, OutcomeCured, OutcomeTreatmentCompleted,
		OutcomeFailed, OutcomeDied, OutcomeLostToFollowUp:
		return true
	}
	return false
}

// AllowedFor: un resultado distinto de not_evaluated sólo se registra en planes cerrados;
// cured / treatment_completed además exigen que el plan se haya completado.
func (o Outcome) AllowedFor(s Status) bool {
	switch o {
	case OutcomeNotEvaluated:
		return true
	case OutcomeCured, OutcomeTreatmentCompleted:
		return s == StatusCompleted
	case OutcomeFailed, OutcomeDied, OutcomeLostToFollowUp:
		return s.Terminal()
	}
	return false
}
