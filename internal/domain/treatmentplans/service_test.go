package treatmentplans

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tb-treatment-plans/internal/domain/dosage"
	"tb-treatment-plans/internal/domain/regimens"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu        sync.Mutex
	byID      map[string]TreatmentPlan
	createErr error

	// readBarrier retiene cada lectura hasta que todas las lecturas esperadas
	// ocurrieron, así los requests concurrentes ven el mismo estado.
	readBarrier *sync.WaitGroup
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]TreatmentPlan{}}
}

func (r *testRepo) Create(ctx context.Context, p TreatmentPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if p.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (TreatmentPlan, error) {
	r.mu.Lock()
	p, ok := r.byID[id]
	barrier := r.readBarrier
	r.mu.Unlock()

	if barrier != nil {
		barrier.Done()
		barrier.Wait()
	}
	if !ok {
		return TreatmentPlan{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) UpdateState(ctx context.Context, id string, ch StateChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if p.Status != ch.FromStatus || p.Outcome != ch.FromOutcome {
		return ErrStateConflict
	}
	p.Status = ch.Status
	p.Outcome = ch.Outcome
	p.UpdatedAt = ch.UpdatedAt
	r.byID[id] = p
	return nil
}

func (r *testRepo) ListDueOn(ctx context.Context, day time.Time) ([]TreatmentPlan, error) {
	out := make([]TreatmentPlan, 0)
	for _, p := range r.byID {
		if p.Status.Terminal() {
			continue
		}
		if p.HasFollowUpOn(day) {
			out = append(out, p)
		}
	}
	return out, nil
}

type testDispatcher struct {
	got []TreatmentPlan
}

func (d *testDispatcher) Dispatch(p TreatmentPlan) {
	d.got = append(d.got, p)
}

func newTestService(repo Repository, disp ReminderDispatcher) *Service {
	svc := NewService(repo, nil, disp)
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	svc.newID = func() string { return "plan-1" }
	return svc
}

func validCreateInput() CreateInput {
	return CreateInput{
		Patient:     PatientRef{CaseID: "case-1", CaseNumber: "TB-001", FullName: "Juan Dela Cruz"},
		RegimenCode: "I. 2HRZE/4HR",
		WeightKg:    10,
		StartDate:   day(2024, 1, 15),
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_PersistsThenDispatches(t *testing.T) {
	repo := newTestRepo()
	disp := &testDispatcher{}
	svc := newTestService(repo, disp)

	in := validCreateInput()
	in.NotifyRecipient = " 09170000000 "
	p, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.ID != "plan-1" {
		t.Fatalf("expected id plan-1, got %q", p.ID)
	}
	if p.CreatedAt.IsZero() || !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Fatalf("expected CreatedAt == UpdatedAt == now")
	}
	if p.NotifyRecipient != "09170000000" {
		t.Fatalf("expected trimmed recipient, got %q", p.NotifyRecipient)
	}
	if _, ok := repo.byID["plan-1"]; !ok {
		t.Fatalf("expected plan to be stored")
	}
	if len(disp.got) != 1 || disp.got[0].ID != "plan-1" {
		t.Fatalf("expected the stored plan to be dispatched once, got %d", len(disp.got))
	}
}

func TestService_Create_RequiresCaseID(t *testing.T) {
	repo := newTestRepo()
	disp := &testDispatcher{}
	svc := newTestService(repo, disp)

	in := validCreateInput()
	in.Patient.CaseID = "  "
	if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(repo.byID) != 0 || len(disp.got) != 0 {
		t.Fatalf("no collaborator may run on invalid input")
	}
}

func TestService_Create_AssemblyFailureTouchesNothing(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateInput)
		want   error
	}{
		{"weight", func(in *CreateInput) { in.WeightKg = 3 }, dosage.ErrWeightOutOfRange},
		{"regimen", func(in *CreateInput) { in.RegimenCode = "III. unknown" }, regimens.ErrUnknownRegimen},
	}
	for _, tc := range cases {
		repo := newTestRepo()
		disp := &testDispatcher{}
		svc := newTestService(repo, disp)

		in := validCreateInput()
		tc.mutate(&in)
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if len(repo.byID) != 0 || len(disp.got) != 0 {
			t.Fatalf("%s: no collaborator may run when assembly fails", tc.name)
		}
	}
}

func TestService_Create_PersistenceFailureSkipsDispatch(t *testing.T) {
	repo := newTestRepo()
	repo.createErr = errors.New("db down")
	disp := &testDispatcher{}
	svc := newTestService(repo, disp)

	if _, err := svc.Create(context.Background(), validCreateInput()); err == nil {
		t.Fatalf("expected persistence error")
	}
	if len(disp.got) != 0 {
		t.Fatalf("reminders must not be sent for an unsaved plan")
	}
}

func TestService_Preview_DoesNotPersist(t *testing.T) {
	repo := newTestRepo()
	disp := &testDispatcher{}
	svc := newTestService(repo, disp)

	p, err := svc.Preview(context.Background(), AssembleInput{RegimenCode: "I. 2HRZE/4HR", WeightKg: 10, StartDate: day(2024, 1, 15)})
	if err != nil {
		t.Fatalf("Preview returned error: %v", err)
	}
	if p.ID != "" {
		t.Fatalf("preview must not assign an id")
	}
	if len(repo.byID) != 0 || len(disp.got) != 0 {
		t.Fatalf("preview must not touch collaborators")
	}
}

func TestService_StatusLifecycle(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, p.ID, StatusCompleted); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending -> completed: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.RecordOutcome(ctx, p.ID, OutcomeCured); !errors.Is(err, ErrInvalidOutcome) {
		t.Fatalf("cured while pending: expected ErrInvalidOutcome, got %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, p.ID, StatusActive); err != nil {
		t.Fatalf("pending -> active: %v", err)
	}
	done, err := svc.UpdateStatus(ctx, p.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("active -> completed: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", done.Status)
	}

	cured, err := svc.RecordOutcome(ctx, p.ID, OutcomeCured)
	if err != nil {
		t.Fatalf("RecordOutcome returned error: %v", err)
	}
	if cured.Outcome != OutcomeCured || cured.Status != StatusCompleted {
		t.Fatalf("unexpected state %s/%s", cured.Status, cured.Outcome)
	}

	stored := repo.byID[p.ID]
	if stored.Status != StatusCompleted || stored.Outcome != OutcomeCured {
		t.Fatalf("repo not updated: %s/%s", stored.Status, stored.Outcome)
	}
	if stored.RegimenCode != p.RegimenCode || len(stored.FollowUpDates) != len(p.FollowUpDates) {
		t.Fatalf("derived fields must not change on status updates")
	}

	if _, err := svc.UpdateStatus(ctx, p.ID, StatusDiscontinued); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completed is terminal: expected ErrInvalidTransition, got %v", err)
	}
}

func TestService_ConcurrentTerminalTransitions_OnlyOneWins(t *testing.T) {
	ctx := context.Background()

	for trial := 0; trial < 20; trial++ {
		repo := newTestRepo()
		svc := newTestService(repo, nil)

		p, err := svc.Create(ctx, validCreateInput())
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if _, err := svc.UpdateStatus(ctx, p.ID, StatusActive); err != nil {
			t.Fatalf("pending -> active: %v", err)
		}

		// ambos leen "active" antes de que cualquiera escriba
		barrier := &sync.WaitGroup{}
		barrier.Add(2)
		repo.readBarrier = barrier

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, next := range []Status{StatusCompleted, StatusDiscontinued} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = svc.UpdateStatus(ctx, p.ID, next)
			}()
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case !errors.Is(err, ErrInvalidTransition):
				t.Fatalf("trial %d: expected ErrInvalidTransition for the loser, got %v", trial, err)
			}
		}
		if ok != 1 {
			t.Fatalf("trial %d: expected exactly one terminal transition to succeed, got %d", trial, ok)
		}

		stored := repo.byID[p.ID]
		if !stored.Status.Terminal() {
			t.Fatalf("trial %d: expected a terminal status, got %s", trial, stored.Status)
		}
	}
}

func TestService_ConcurrentOutcomes_OnlyOneWins(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	p, _ := svc.Create(ctx, validCreateInput())
	_, _ = svc.UpdateStatus(ctx, p.ID, StatusActive)
	_, _ = svc.UpdateStatus(ctx, p.ID, StatusCompleted)
	barrier := &sync.WaitGroup{}
	barrier.Add(2)
	repo.readBarrier = barrier

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, o := range []Outcome{OutcomeCured, OutcomeTreatmentCompleted} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.RecordOutcome(ctx, p.ID, o)
		}()
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			if !errors.Is(err, ErrInvalidOutcome) || !errors.Is(err, ErrStateConflict) {
				t.Fatalf("expected ErrInvalidOutcome wrapping ErrStateConflict, got %v", err)
			}
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("expected exactly one outcome to be rejected, got %d", failed)
	}
}

func TestService_UnknownValuesAndMissingPlan(t *testing.T) {
	svc := newTestService(newTestRepo(), nil)
	ctx := context.Background()

	if _, err := svc.UpdateStatus(ctx, "missing", StatusActive); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "missing", Status("paused")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.RecordOutcome(ctx, "missing", Outcome("recovered")); !errors.Is(err, ErrInvalidOutcome) {
		t.Fatalf("expected ErrInvalidOutcome, got %v", err)
	}
	if _, err := svc.GetByID(ctx, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_ListDueOn(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validCreateInput()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	due, err := svc.ListDueOn(ctx, time.Date(2024, 1, 29, 13, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListDueOn returned error: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected 1 plan due on 2024-01-29, got %d", len(due))
	}

	due, _ = svc.ListDueOn(ctx, day(2024, 1, 30))
	if len(due) != 0 {
		t.Fatalf("expected no plan due on 2024-01-30, got %d", len(due))
	}
}
