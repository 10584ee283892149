package router

import (
	"database/sql"
	"net/http"

	_ "tb-treatment-plans/docs"
	mem "tb-treatment-plans/internal/adapters/storage/memory"
	pg "tb-treatment-plans/internal/adapters/storage/postgres"
	"tb-treatment-plans/internal/domain/regimens"
	"tb-treatment-plans/internal/domain/treatmentplans"
	"tb-treatment-plans/internal/middleware"
	"tb-treatment-plans/internal/platform/logger"
	"tb-treatment-plans/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Logger logger.Logger // nil => Nop

	// Service ya armado (serve lo comparte con el sweeper). Si es nil se arma uno
	// con DB (Postgres) o, sin DB, con el repo in-memory.
	Service *treatmentplans.Service
	DB      *sql.DB

	// Solo se usa cuando Service es nil. Puede ser nil (sin recordatorios).
	Dispatcher treatmentplans.ReminderDispatcher

	// Catálogo de regímenes para GET /regimens y, cuando Service es nil, para
	// derivar planes. nil => catálogo embebido.
	Catalog *regimens.Catalog
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.Recover)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	svc := opts.Service
	if svc == nil {
		svc = NewService(opts.DB, opts.Catalog, opts.Dispatcher)
	}

	treatmentplans.RegisterRoutes(r, svc, opts.Catalog)

	return r
}

// NewService arma el servicio sobre Postgres si hay DB, si no in-memory.
// catalog nil => catálogo embebido.
func NewService(db *sql.DB, catalog *regimens.Catalog, dispatcher treatmentplans.ReminderDispatcher) *treatmentplans.Service {
	var repo treatmentplans.Repository
	if db != nil {
		repo = pg.NewTreatmentPlansRepo(db)
	} else {
		repo = mem.NewTreatmentPlanRepo()
	}
	return treatmentplans.NewService(repo, treatmentplans.NewAssembler(catalog, nil), dispatcher)
}
