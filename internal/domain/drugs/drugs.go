package drugs

import "fmt"

// Code identifica un fármaco antituberculoso de primera línea.
type Code string

const (
	Isoniazid    Code = "H"
	Rifampicin   Code = "R"
	Pyrazinamide Code = "Z"
	Ethambutol   Code = "E"
	Streptomycin Code = "S"
)

var names = map[Code]string{
	Isoniazid:    "Isoniazid",
	Rifampicin:   "Rifampicin",
	Pyrazinamide: "Pyrazinamide",
	Ethambutol:   "Ethambutol",
	Streptomycin: "Streptomycin",
}

// Order es el orden canónico en que se listan los fármacos.
var Order = []Code{Isoniazid, Rifampicin, Pyrazinamide, Ethambutol, Streptomycin}

func (c Code) Valid() bool {
	_, ok := names[c]
	return ok
}

func (c Code) Name() string {
	return names[c]
}

// Label devuelve la etiqueta de UI, p.ej. "[H] Isoniazid".
func (c Code) Label() string {
	if !c.Valid() {
		return string(c)
	}
	return fmt.Sprintf("[%s] %s", string(c), names[c])
}
