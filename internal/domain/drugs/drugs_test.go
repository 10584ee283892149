package drugs

import "testing"

func TestCode_Label(t *testing.T) {
	cases := map[Code]string{
		Isoniazid:    "[H] Isoniazid",
		Rifampicin:   "[R] Rifampicin",
		Pyrazinamide: "[Z] Pyrazinamide",
		Ethambutol:   "[E] Ethambutol",
		Streptomycin: "[S] Streptomycin",
	}
	for c, want := range cases {
		if got := c.Label(); got != want {
			t.Fatalf("Label(%s): expected %q, got %q", c, want, got)
		}
	}
}

func TestCode_Valid(t *testing.T) {
	for _, c := range Order {
		if !c.Valid() {
			t.Fatalf("expected %s to be valid", c)
		}
	}
	if Code("X").Valid() {
		t.Fatalf("expected X to be invalid")
	}
	if got := Code("X").Label(); got != "X" {
		t.Fatalf("expected raw code as label for unknown drug, got %q", got)
	}
}
