package regimens

import "tb-treatment-plans/internal/domain/drugs"

// Definition es un régimen de tratamiento fijo. Es inmutable: Lookup devuelve copias.
type Definition struct {
	Code               string
	TotalMonths        int
	IntensiveMonths    int
	ContinuationMonths int
	Medications        []drugs.Code
}

// MedicationLabels devuelve las etiquetas en el orden del régimen.
func (d Definition) MedicationLabels() []string {
	out := make([]string, 0, len(d.Medications))
	for _, m := range d.Medications {
		out = append(out, m.Label())
	}
	return out
}

func (d Definition) clone() Definition {
	meds := make([]drugs.Code, len(d.Medications))
	copy(meds, d.Medications)
	d.Medications = meds
	return d
}
