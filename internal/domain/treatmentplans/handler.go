package treatmentplans

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"tb-treatment-plans/internal/domain/dosage"
	"tb-treatment-plans/internal/domain/regimens"
	"tb-treatment-plans/internal/domain/schedule"
	"tb-treatment-plans/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, catalog *regimens.Catalog) {
	if catalog == nil {
		catalog = regimens.Default()
	}

	r.Get("/regimens", listRegimensHandler(catalog))

	r.Post("/cases/{caseID}/treatment-plans", createPlanHandler(svc))

	r.Route("/treatment-plans", func(tr chi.Router) {
		// Sólo deriva; no guarda ni notifica.
		tr.Post("/preview", previewPlanHandler(svc))

		tr.Get("/{planID}", getPlanHandler(svc))

		// Transiciones del flujo de gestión de casos
		tr.Post("/{planID}/status", updateStatusHandler(svc))
		tr.Post("/{planID}/outcome", recordOutcomeHandler(svc))
	})
}

// createPlanRequest es el cuerpo para crear un plan de tratamiento para un caso.
type createPlanRequest struct {
	CaseNumber      string  `json:"case_number"`
	FullName        string  `json:"full_name"`
	Regimen         string  `json:"regimen" enums:"I. 2HRZE/4HR,Ia. 2HRZE/10HR,II. 2HRZES/1HRZE/5HRE,IIa. 2HRZES/1HRZE/9HRE"`
	WeightKg        float64 `json:"weight_kg"`
	StartDate       string  `json:"start_date"`                 // YYYY-MM-DD
	NotifyRecipient string  `json:"notify_recipient,omitempty"` // opcional; si no, el destinatario por defecto
}

type previewPlanRequest struct {
	CaseID     string  `json:"case_id,omitempty"`
	CaseNumber string  `json:"case_number,omitempty"`
	FullName   string  `json:"full_name,omitempty"`
	Regimen    string  `json:"regimen"`
	WeightKg   float64 `json:"weight_kg"`
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
}

type updateStatusRequest struct {
	Status Status `json:"status" enums:"pending,active,completed,discontinued"`
}

type recordOutcomeRequest struct {
	Outcome Outcome `json:"outcome" enums:"not_evaluated,cured,treatment_completed,failed,died,lost_to_follow_up"`
}

// PlanResponse representa un plan de tratamiento devuelto por la API. Fechas en YYYY-MM-DD.
type PlanResponse struct {
	ID                 string          `json:"id,omitempty"`
	CaseID             string          `json:"case_id,omitempty"`
	CaseNumber         string          `json:"case_number,omitempty"`
	FullName           string          `json:"full_name,omitempty"`
	Regimen            string          `json:"regimen"`
	WeightKg           float64         `json:"weight_kg"`
	StartDate          string          `json:"start_date"`
	EndDate            string          `json:"end_date"`
	DurationMonths     int             `json:"duration_months"`
	IntensiveMonths    int             `json:"intensive_months"`
	ContinuationMonths int             `json:"continuation_months"`
	Medications        []string        `json:"medications"`
	DosageIntensive    dosage.Schedule `json:"dosage_intensive"`
	DosageContinuation dosage.Schedule `json:"dosage_continuation"`
	DosageTotal        dosage.Schedule `json:"dosage_total"`
	FollowUpDates      []string        `json:"follow_up_dates"`
	Status             Status          `json:"status"`
	Outcome            Outcome         `json:"outcome"`
	NotifyRecipient    string          `json:"notify_recipient,omitempty"`
	CreatedAt          *time.Time      `json:"created_at,omitempty"`
	UpdatedAt          *time.Time      `json:"updated_at,omitempty"`
}

type regimenResponse struct {
	Code               string   `json:"code"`
	TotalMonths        int      `json:"total_months"`
	IntensiveMonths    int      `json:"intensive_months"`
	ContinuationMonths int      `json:"continuation_months"`
	Medications        []string `json:"medications"`
}

// listRegimensHandler godoc
// @Summary Listar regímenes soportados
// @Description Devuelve el catálogo cerrado de regímenes con sus duraciones por fase y medicamentos.
// @Tags regimens
// @Produce json
// @Success 200 {array} regimenResponse
// @Router /regimens [get]
func listRegimensHandler(catalog *regimens.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		all := catalog.All()
		out := make([]regimenResponse, 0, len(all))
		for _, d := range all {
			out = append(out, regimenResponse{
				Code:               d.Code,
				TotalMonths:        d.TotalMonths,
				IntensiveMonths:    d.IntensiveMonths,
				ContinuationMonths: d.ContinuationMonths,
				Medications:        d.MedicationLabels(),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createPlanHandler godoc
// @Summary Crear plan de tratamiento
// @Description Deriva el plan (duraciones, dosis FDC por fase y total, fecha de fin y controles quincenales), lo guarda y dispara los recordatorios de calendario/SMS en segundo plano. Una falla de recordatorios no invalida el plan.
// @Tags treatment-plans
// @Accept json
// @Produce json
// @Param caseID path string true "ID del caso (expediente externo)"
// @Param payload body createPlanRequest true "Datos del plan; start_date en formato YYYY-MM-DD"
// @Success 201 {object} PlanResponse
// @Failure 400 {string} string "invalid json / unknown regimen / weight out of range / invalid start date"
// @Failure 500 {string} string "internal error"
// @Router /cases/{caseID}/treatment-plans [post]
func createPlanHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caseID := chi.URLParam(r, "caseID")

		var req createPlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		start, err := schedule.ParseDate(req.StartDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), CreateInput{
			Patient: PatientRef{
				CaseID:     caseID,
				CaseNumber: req.CaseNumber,
				FullName:   req.FullName,
			},
			RegimenCode:     req.Regimen,
			WeightKg:        req.WeightKg,
			StartDate:       start,
			NotifyRecipient: req.NotifyRecipient,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, ToPlanResponse(p))
	}
}

// previewPlanHandler godoc
// @Summary Previsualizar plan de tratamiento
// @Description Deriva el plan sin guardarlo ni enviar recordatorios.
// @Tags treatment-plans
// @Accept json
// @Produce json
// @Param payload body previewPlanRequest true "Régimen, peso y fecha de inicio (YYYY-MM-DD)"
// @Success 200 {object} PlanResponse
// @Failure 400 {string} string "invalid json / unknown regimen / weight out of range / invalid start date"
// @Router /treatment-plans/preview [post]
func previewPlanHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req previewPlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		start, err := schedule.ParseDate(req.StartDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		p, err := svc.Preview(r.Context(), AssembleInput{
			RegimenCode: req.Regimen,
			WeightKg:    req.WeightKg,
			StartDate:   start,
			Patient: PatientRef{
				CaseID:     req.CaseID,
				CaseNumber: req.CaseNumber,
				FullName:   req.FullName,
			},
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, ToPlanResponse(p))
	}
}

// getPlanHandler godoc
// @Summary Obtener plan de tratamiento
// @Tags treatment-plans
// @Produce json
// @Param planID path string true "ID del plan"
// @Success 200 {object} PlanResponse
// @Failure 404 {string} string "treatment plan not found"
// @Router /treatment-plans/{planID} [get]
func getPlanHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "planID"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ToPlanResponse(p))
	}
}

// updateStatusHandler godoc
// @Summary Cambiar estado del plan
// @Description Transiciones válidas: pending→active, pending→discontinued, active→completed, active→discontinued.
// @Tags treatment-plans
// @Accept json
// @Produce json
// @Param planID path string true "ID del plan"
// @Param payload body updateStatusRequest true "Nuevo estado"
// @Success 200 {object} PlanResponse
// @Failure 400 {string} string "invalid json"
// @Failure 404 {string} string "treatment plan not found"
// @Failure 409 {string} string "invalid status transition"
// @Router /treatment-plans/{planID}/status [post]
func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "planID"), Status(strings.TrimSpace(string(req.Status))))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ToPlanResponse(p))
	}
}

// recordOutcomeHandler godoc
// @Summary Registrar resultado del tratamiento
// @Description cured y treatment_completed exigen estado completed; failed, died y lost_to_follow_up exigen un estado terminal.
// @Tags treatment-plans
// @Accept json
// @Produce json
// @Param planID path string true "ID del plan"
// @Param payload body recordOutcomeRequest true "Resultado"
// @Success 200 {object} PlanResponse
// @Failure 400 {string} string "invalid json"
// @Failure 404 {string} string "treatment plan not found"
// @Failure 409 {string} string "invalid outcome"
// @Router /treatment-plans/{planID}/outcome [post]
func recordOutcomeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordOutcomeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.RecordOutcome(r.Context(), chi.URLParam(r, "planID"), Outcome(strings.TrimSpace(string(req.Outcome))))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ToPlanResponse(p))
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, regimens.ErrUnknownRegimen),
		errors.Is(err, dosage.ErrWeightOutOfRange),
		errors.Is(err, schedule.ErrInvalidStartDate),
		errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "treatment plan not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrInvalidOutcome):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		middleware.LoggerFrom(r.Context()).Error("treatment plan request failed", map[string]any{"error": err})
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func ToPlanResponse(p TreatmentPlan) PlanResponse {
	out := PlanResponse{
		ID:                 p.ID,
		CaseID:             p.Patient.CaseID,
		CaseNumber:         p.Patient.CaseNumber,
		FullName:           p.Patient.FullName,
		Regimen:            p.RegimenCode,
		WeightKg:           p.WeightKg,
		StartDate:          p.StartDate.Format(schedule.DateLayout),
		EndDate:            p.EndDate.Format(schedule.DateLayout),
		DurationMonths:     p.TotalMonths,
		IntensiveMonths:    p.IntensiveMonths,
		ContinuationMonths: p.ContinuationMonths,
		Medications:        p.Medications,
		DosageIntensive:    p.DosageIntensive,
		DosageContinuation: p.DosageContinuation,
		DosageTotal:        p.DosageTotal,
		FollowUpDates:      schedule.FormatDates(p.FollowUpDates),
		Status:             p.Status,
		Outcome:            p.Outcome,
		NotifyRecipient:    p.NotifyRecipient,
	}
	if !p.CreatedAt.IsZero() {
		t := p.CreatedAt
		out.CreatedAt = &t
	}
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// writeJSON está duplicado a propósito en cada módulo con handlers.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
