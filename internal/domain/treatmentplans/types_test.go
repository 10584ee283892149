package treatmentplans

import "testing"

func TestStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusActive, true},
		{StatusPending, StatusDiscontinued, true},
		{StatusPending, StatusCompleted, false},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusDiscontinued, true},
		{StatusActive, StatusPending, false},
		{StatusCompleted, StatusActive, false},
		{StatusDiscontinued, StatusActive, false},
		{StatusCompleted, StatusDiscontinued, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.ok, got)
		}
	}
}

func TestOutcome_AllowedFor(t *testing.T) {
	cases := []struct {
		o  Outcome
		s  Status
		ok bool
	}{
		{OutcomeNotEvaluated, StatusPending, true},
		{OutcomeCured, StatusCompleted, true},
		{OutcomeCured, StatusDiscontinued, false},
		{OutcomeCured, StatusActive, false},
		{OutcomeTreatmentCompleted, StatusCompleted, true},
		{OutcomeFailed, StatusDiscontinued, true},
		{OutcomeDied, StatusCompleted, true},
		{OutcomeLostToFollowUp, StatusActive, false},
		{OutcomeLostToFollowUp, StatusDiscontinued, true},
	}
	for _, tc := range cases {
		if got := tc.o.AllowedFor(tc.s); got != tc.ok {
			t.Fatalf("%s on %s: expected %v, got %v", tc.o, tc.s, tc.ok, got)
		}
	}
	if Outcome("recovered").Valid() || Status("paused").Valid() {
		t.Fatalf("unknown values must be invalid")
	}
}
