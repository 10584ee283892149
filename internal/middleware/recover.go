package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// Recover reemplaza a chimw.Recoverer: el panic queda en el logger del request
// y el cliente recibe 500 "internal error".
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			LoggerFrom(r.Context()).Error("panic recovered", map[string]any{
				"panic": fmt.Sprint(rec),
				"stack": string(debug.Stack()),
				"path":  r.URL.Path,
			})
			http.Error(w, "internal error", http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}
