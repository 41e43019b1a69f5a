// Package middleware provides HTTP middleware for the bioinfer API.
package middleware

import (
	"log"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Logger logs one line per request with the chi request ID, status, bytes
// written and duration.
func Logger(next http.Handler) http.Handler {
	return LoggerTo(log.Default())(next)
}

// LoggerTo returns a request-logging middleware writing to l.
func LoggerTo(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				reqID := chimiddleware.GetReqID(r.Context())
				if reqID == "" {
					reqID = "-"
				}
				l.Printf("[%s] %s %s %d %dB %s", reqID, r.Method, r.URL.Path, status, ww.BytesWritten(), time.Since(start))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
