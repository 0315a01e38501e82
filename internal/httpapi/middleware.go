package httpapi

import (
	"log"
	"net/http"
	"time"
)

// loggingMiddleware logs method, path, status, and latency for every
// request, matching the access-log shape used across the rest of this
// codebase's HTTP surfaces.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Printf("httpapi: %s %s %d %v", r.Method, r.URL.Path, sw.status, time.Since(start))
	})
}

// recoveryMiddleware turns a handler panic into a 500 response instead of
// taking down the whole listener.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("httpapi: panic handling %s %s: %v", r.Method, r.URL.Path, rec)
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// securityHeaders sets a minimal, uncontroversial set of response headers.
// This surface has no authentication beyond the backend-selector cookie,
// so there is no CORS or CSRF middleware to carry.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
