package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tb-treatment-plans/internal/domain/dosage"
	"tb-treatment-plans/internal/domain/schedule"
	"tb-treatment-plans/internal/domain/treatmentplans"
)

type TreatmentPlansRepo struct {
	db *sql.DB
}

var _ treatmentplans.Repository = (*TreatmentPlansRepo)(nil)

func NewTreatmentPlansRepo(db *sql.DB) *TreatmentPlansRepo {
	return &TreatmentPlansRepo{db: db}
}

const selectPlan = `
	SELECT
		id, case_id, case_number, full_name,
		regimen_code, weight_kg,
		start_date, end_date,
		total_months, intensive_months, continuation_months,
		medications, dosage_intensive, dosage_continuation, dosage_total, follow_up_dates,
		status, outcome, notify_recipient,
		created_at, updated_at
	FROM treatment_plans
`

func (r *TreatmentPlansRepo) Create(ctx context.Context, p treatmentplans.TreatmentPlan) error {
	meds, err := json.Marshal(p.Medications)
	if err != nil {
		return err
	}
	intensive, err := json.Marshal(p.DosageIntensive)
	if err != nil {
		return err
	}
	continuation, err := json.Marshal(p.DosageContinuation)
	if err != nil {
		return err
	}
	total, err := json.Marshal(p.DosageTotal)
	if err != nil {
		return err
	}
	// fechas como "YYYY-MM-DD": el operador ? (con índice GIN) matchea por texto
	followUps, err := json.Marshal(schedule.FormatDates(p.FollowUpDates))
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO treatment_plans (
			id, case_id, case_number, full_name,
			regimen_code, weight_kg,
			start_date, end_date,
			total_months, intensive_months, continuation_months,
			medications, dosage_intensive, dosage_continuation, dosage_total, follow_up_dates,
			status, outcome, notify_recipient,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	`,
		p.ID,
		p.Patient.CaseID,
		p.Patient.CaseNumber,
		p.Patient.FullName,
		p.RegimenCode,
		p.WeightKg,
		p.StartDate.Format(schedule.DateLayout),
		p.EndDate.Format(schedule.DateLayout),
		p.TotalMonths,
		p.IntensiveMonths,
		p.ContinuationMonths,
		string(meds),
		string(intensive),
		string(continuation),
		string(total),
		string(followUps),
		string(p.Status),
		string(p.Outcome),
		p.NotifyRecipient,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *TreatmentPlansRepo) GetByID(ctx context.Context, id string) (treatmentplans.TreatmentPlan, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return treatmentplans.TreatmentPlan{}, treatmentplans.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, selectPlan+` WHERE id = $1`, id)
	p, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return treatmentplans.TreatmentPlan{}, treatmentplans.ErrNotFound
		}
		return treatmentplans.TreatmentPlan{}, err
	}
	return p, nil
}

// UpdateState escribe solo si el estado guardado sigue siendo el esperado.
// 0 filas: ErrNotFound si el id no existe, si no ErrStateConflict.
func (r *TreatmentPlansRepo) UpdateState(ctx context.Context, id string, ch treatmentplans.StateChange) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE treatment_plans
		SET
			status = $2,
			outcome = $3,
			updated_at = $4
		WHERE id = $1
		  AND status = $5
		  AND outcome = $6
	`, id, string(ch.Status), string(ch.Outcome), ch.UpdatedAt, string(ch.FromStatus), string(ch.FromOutcome))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM treatment_plans WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return treatmentplans.ErrNotFound
	}
	return treatmentplans.ErrStateConflict
}

// ? y no jsonb_exists(): solo el operador usa treatment_plans_follow_up_dates_idx.
const listDueOnSQL = selectPlan + `
		WHERE status IN ('pending', 'active')
		  AND follow_up_dates ? $1
		ORDER BY created_at ASC, id ASC
	`

func (r *TreatmentPlansRepo) ListDueOn(ctx context.Context, day time.Time) ([]treatmentplans.TreatmentPlan, error) {
	rows, err := r.db.QueryContext(ctx, listDueOnSQL, day.Format(schedule.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]treatmentplans.TreatmentPlan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(s rowScanner) (treatmentplans.TreatmentPlan, error) {
	var (
		p                                          treatmentplans.TreatmentPlan
		status, outcome                            string
		meds, intensive, continuation, total, fups []byte
	)
	if err := s.Scan(
		&p.ID,
		&p.Patient.CaseID,
		&p.Patient.CaseNumber,
		&p.Patient.FullName,
		&p.RegimenCode,
		&p.WeightKg,
		&p.StartDate,
		&p.EndDate,
		&p.TotalMonths,
		&p.IntensiveMonths,
		&p.ContinuationMonths,
		&meds,
		&intensive,
		&continuation,
		&total,
		&fups,
		&status,
		&outcome,
		&p.NotifyRecipient,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return treatmentplans.TreatmentPlan{}, err
	}
	p.Status = treatmentplans.Status(status)
	p.Outcome = treatmentplans.Outcome(outcome)

	if err := json.Unmarshal(meds, &p.Medications); err != nil {
		return treatmentplans.TreatmentPlan{}, fmt.Errorf("decode medications: %w", err)
	}
	var err error
	if p.DosageIntensive, err = decodeSchedule(intensive); err != nil {
		return treatmentplans.TreatmentPlan{}, err
	}
	if p.DosageContinuation, err = decodeSchedule(continuation); err != nil {
		return treatmentplans.TreatmentPlan{}, err
	}
	if p.DosageTotal, err = decodeSchedule(total); err != nil {
		return treatmentplans.TreatmentPlan{}, err
	}
	if p.FollowUpDates, err = decodeDates(fups); err != nil {
		return treatmentplans.TreatmentPlan{}, err
	}
	return p, nil
}

func decodeSchedule(raw []byte) (dosage.Schedule, error) {
	var s dosage.Schedule
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode dosage: %w", err)
	}
	return s, nil
}

func decodeDates(raw []byte) ([]time.Time, error) {
	var ss []string
	if err := json.Unmarshal(raw, &ss); err != nil {
		return nil, fmt.Errorf("decode follow-up dates: %w", err)
	}
	out := make([]time.Time, 0, len(ss))
	for _, s := range ss {
		d, err := schedule.ParseDate(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
