package dosage

import (
	_ "embed"
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

var (
	ErrWeightOutOfRange   = errors.New("weight out of range")
	ErrUnknownPhase       = errors.New("unknown phase")
	ErrInvalidPhaseMonths = errors.New("phase months must not be negative")
	ErrInvalidBands       = errors.New("invalid weight bands")
)

//go:embed bands.yaml
var defaultYAML []byte

var defaultTable = mustLoad(defaultYAML)

// Table es una lista ordenada de bandas de peso; sólo lectura tras Load.
type Table struct {
	bands []Band
}

type bandsFile struct {
	Bands []struct {
		MinKg        float64 `yaml:"min_kg"`
		MaxKg        float64 `yaml:"max_kg"`
		Intensive    FDC     `yaml:"intensive"`
		Continuation FDC     `yaml:"continuation"`
	} `yaml:"bands"`
}

func Default() *Table {
	return defaultTable
}

// DosageFor calcula con la tabla embebida.
func DosageFor(weightKg float64, phaseMonths int, phase Phase) (Schedule, error) {
	return defaultTable.DosageFor(weightKg, phaseMonths, phase)
}

// Load parsea y valida la tabla. Las bandas deben venir ordenadas, sin solaparse más
// allá de un extremo compartido, y contiguas sobre la grilla de kilos enteros.
func Load(raw []byte) (*Table, error) {
	var f bandsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBands, err)
	}
	if len(f.Bands) == 0 {
		return nil, fmt.Errorf("%w: no bands", ErrInvalidBands)
	}

	t := &Table{bands: make([]Band, 0, len(f.Bands))}
	for i, fb := range f.Bands {
		b := Band{
			MinKg:        fb.MinKg,
			MaxKg:        fb.MaxKg,
			Intensive:    fb.Intensive,
			Continuation: fb.Continuation,
		}
		if err := validateBand(b); err != nil {
			return nil, err
		}
		if i > 0 {
			prev := t.bands[i-1]
			gap := b.MinKg - prev.MaxKg
			if gap < 0 {
				return nil, fmt.Errorf("%w: band %s overlaps %s", ErrInvalidBands, b.Label(), prev.Label())
			}
			if gap > 1 {
				return nil, fmt.Errorf("%w: gap between %s and %s", ErrInvalidBands, prev.Label(), b.Label())
			}
		}
		t.bands = append(t.bands, b)
	}
	return t, nil
}

func mustLoad(raw []byte) *Table {
	t, err := Load(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func validateBand(b Band) error {
	if b.MinKg <= 0 || b.MaxKg < b.MinKg {
		return fmt.Errorf("%w: bad interval %s", ErrInvalidBands, b.Label())
	}
	if len(b.Intensive) == 0 {
		return fmt.Errorf("%w: band %s has no intensive fdc", ErrInvalidBands, b.Label())
	}
	for _, fdc := range []FDC{b.Intensive, b.Continuation} {
		for d, n := range fdc {
			if !d.Valid() {
				return fmt.Errorf("%w: band %s unknown drug %q", ErrInvalidBands, b.Label(), d)
			}
			if n <= 0 {
				return fmt.Errorf("%w: band %s drug %s tablets must be positive", ErrInvalidBands, b.Label(), d)
			}
		}
	}
	return nil
}

// Bands devuelve copias de las bandas en orden.
func (t *Table) Bands() []Band {
	out := make([]Band, 0, len(t.bands))
	for _, b := range t.bands {
		out = append(out, b.clone())
	}
	return out
}

// BandFor devuelve la primera banda que contiene el peso. Nunca elige la "más cercana".
func (t *Table) BandFor(weightKg float64) (Band, error) {
	b, err := t.find(weightKg)
	if err != nil {
		return Band{}, err
	}
	return b.clone(), nil
}

func (t *Table) find(weightKg float64) (Band, error) {
	if math.IsNaN(weightKg) || math.IsInf(weightKg, 0) {
		return Band{}, fmt.Errorf("%w: %v kg", ErrWeightOutOfRange, weightKg)
	}
	for _, b := range t.bands {
		if b.Contains(weightKg) {
			return b, nil
		}
	}
	return Band{}, fmt.Errorf("%w: %g kg", ErrWeightOutOfRange, weightKg)
}

// DosageFor: tablets[drug] = fdc[drug] * 28 * phaseMonths para cada fármaco de la fase.
// Los fármacos que no están en la FDC de la fase quedan fuera del mapa.
func (t *Table) DosageFor(weightKg float64, phaseMonths int, phase Phase) (Schedule, error) {
	if phaseMonths < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPhaseMonths, phaseMonths)
	}
	b, err := t.find(weightKg)
	if err != nil {
		return nil, err
	}
	fdc, err := b.FDC(phase)
	if err != nil {
		return nil, err
	}

	out := make(Schedule, len(fdc))
	for d, perDose := range fdc {
		out[d] = perDose * DosesPerMonth * phaseMonths
	}
	return out, nil
}
