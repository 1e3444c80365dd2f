// Package recovery converts handler panics into JSON 500 responses so one
// bad request cannot take down the service.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/kiritosahai/agrisense-insights/internal/api/respond"
)

// Middleware recovers panics raised by downstream handlers. The client gets
// the standard error body; the stack trace goes to the log only.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.Error().
				Interface("panic", rec).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")

			respond.WriteInternalError(w, "unexpected server error")
		}()
		next.ServeHTTP(w, r)
	})
}
