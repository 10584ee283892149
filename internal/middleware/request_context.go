package middleware

import (
	"context"
	"net/http"
	"time"

	"tb-treatment-plans/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// RequestLogger:
// - deja en el contexto un logger con request_id (chimw.RequestID debe ir antes);
// - al terminar loguea method, route, status y duración.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLog := log.With(map[string]any{"request_id": chimw.GetReqID(r.Context())})
			ctx := context.WithValue(r.Context(), loggerKey, reqLog)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := map[string]any{
				"method":      r.Method,
				"route":       routePattern(r),
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if status >= http.StatusInternalServerError {
				reqLog.Error("request", fields)
				return
			}
			reqLog.Info("request", fields)
		})
	}
}

// LoggerFrom devuelve el logger del request, o uno mudo si no hay middleware.
func LoggerFrom(ctx context.Context) logger.Logger {
	if l, ok := ctx.Value(loggerKey).(logger.Logger); ok && l != nil {
		return l
	}
	return logger.Nop()
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}
