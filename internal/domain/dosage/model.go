package dosage

import (
	"fmt"

	"tb-treatment-plans/internal/domain/drugs"
)

// DosesPerMonth: el esquema asume 28 dosis diarias por mes de tratamiento.
const DosesPerMonth = 28

type Phase string

const (
	PhaseIntensive    Phase = "intensive"
	PhaseContinuation Phase = "continuation"
)

// FDC son los comprimidos por dosis de cada fármaco en una combinación de dosis fija.
type FDC map[drugs.Code]int

// Schedule es el total de comprimidos por fármaco para una fase (o para todo el tratamiento).
type Schedule map[drugs.Code]int

// Band es un intervalo [MinKg, MaxKg] con sus FDC por fase.
type Band struct {
	MinKg        float64
	MaxKg        float64
	Intensive    FDC
	Continuation FDC
}

func (b Band) Contains(weightKg float64) bool {
	return weightKg >= b.MinKg && weightKg <= b.MaxKg
}

func (b Band) Label() string {
	return fmt.Sprintf("%g-%g", b.MinKg, b.MaxKg)
}

func (b Band) FDC(phase Phase) (FDC, error) {
	switch phase {
	case PhaseIntensive:
		return b.Intensive, nil
	case PhaseContinuation:
		return b.Continuation, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPhase, phase)
	}
}

// Get devuelve 0 para fármacos ausentes.
func (s Schedule) Get(d drugs.Code) int {
	return s[d]
}

// Sum es la suma elemento a elemento sobre la unión de fármacos.
func (s Schedule) Sum(other Schedule) Schedule {
	return Total(s, other)
}

// Total suma dos esquemas; un fármaco ausente en uno cuenta como 0.
func Total(a, b Schedule) Schedule {
	out := make(Schedule, len(a)+len(b))
	for d, n := range a {
		out[d] += n
	}
	for d, n := range b {
		out[d] += n
	}
	return out
}

func (f FDC) clone() FDC {
	out := make(FDC, len(f))
	for d, n := range f {
		out[d] = n
	}
	return out
}

func (b Band) clone() Band {
	b.Intensive = b.Intensive.clone()
	b.Continuation = b.Continuation.clone()
	return b
}
