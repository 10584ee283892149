package regimens

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"tb-treatment-plans/internal/domain/drugs"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownRegimen = errors.New("unknown regimen")
	ErrInvalidCatalog = errors.New("invalid regimen catalog")
)

//go:embed regimens.yaml
var defaultYAML []byte

// defaultCatalog se carga una sola vez al iniciar el proceso; un catálogo inválido
// aborta el arranque en vez de fallar en mitad de un cálculo.
var defaultCatalog = mustLoad(defaultYAML)

type Catalog struct {
	order  []string
	byCode map[string]Definition
}

type catalogFile struct {
	Regimens []struct {
		Code               string       `yaml:"code"`
		TotalMonths        int          `yaml:"total_months"`
		IntensiveMonths    int          `yaml:"intensive_months"`
		ContinuationMonths int          `yaml:"continuation_months"`
		Medications        []drugs.Code `yaml:"medications"`
	} `yaml:"regimens"`
}

// Default devuelve el catálogo embebido.
func Default() *Catalog {
	return defaultCatalog
}

// Lookup busca en el catálogo embebido.
func Lookup(code string) (Definition, error) {
	return defaultCatalog.Lookup(code)
}

// Load parsea y valida un catálogo en YAML.
func Load(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(f.Regimens) == 0 {
		return nil, fmt.Errorf("%w: no regimens", ErrInvalidCatalog)
	}

	c := &Catalog{
		order:  make([]string, 0, len(f.Regimens)),
		byCode: make(map[string]Definition, len(f.Regimens)),
	}

	for _, r := range f.Regimens {
		d := Definition{
			Code:               r.Code,
			TotalMonths:        r.TotalMonths,
			IntensiveMonths:    r.IntensiveMonths,
			ContinuationMonths: r.ContinuationMonths,
			Medications:        r.Medications,
		}
		if err := validate(d); err != nil {
			return nil, err
		}
		if _, dup := c.byCode[d.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate code %q", ErrInvalidCatalog, d.Code)
		}
		c.byCode[d.Code] = d
		c.order = append(c.order, d.Code)
	}

	return c, nil
}

func mustLoad(raw []byte) *Catalog {
	c, err := Load(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func validate(d Definition) error {
	if strings.TrimSpace(d.Code) == "" {
		return fmt.Errorf("%w: empty code", ErrInvalidCatalog)
	}
	if d.IntensiveMonths <= 0 {
		return fmt.Errorf("%w: %q intensive_months must be positive", ErrInvalidCatalog, d.Code)
	}
	if d.ContinuationMonths < 0 {
		return fmt.Errorf("%w: %q continuation_months must not be negative", ErrInvalidCatalog, d.Code)
	}
	if d.IntensiveMonths+d.ContinuationMonths != d.TotalMonths {
		return fmt.Errorf("%w: %q intensive (%d) + continuation (%d) != total (%d)",
			ErrInvalidCatalog, d.Code, d.IntensiveMonths, d.ContinuationMonths, d.TotalMonths)
	}
	if len(d.Medications) == 0 {
		return fmt.Errorf("%w: %q has no medications", ErrInvalidCatalog, d.Code)
	}
	for _, m := range d.Medications {
		if !m.Valid() {
			return fmt.Errorf("%w: %q unknown drug %q", ErrInvalidCatalog, d.Code, m)
		}
	}
	return nil
}

// Lookup es exacto: no normaliza mayúsculas ni espacios.
func (c *Catalog) Lookup(code string) (Definition, error) {
	d, ok := c.byCode[code]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownRegimen, code)
	}
	return d.clone(), nil
}

// All devuelve las definiciones en el orden del catálogo.
func (c *Catalog) All() []Definition {
	out := make([]Definition, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.byCode[code].clone())
	}
	return out
}
