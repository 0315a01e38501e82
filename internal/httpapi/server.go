// Package httpapi implements the Hub's browser-facing HTTP surface: the
// system metrics page, the backend-selector cookie endpoint, static asset
// serving, and the ambient health/metrics endpoints. None of this is part
// of the request-dispatch fabric itself; every handler here is a thin
// caller of a hub.RequestHandle.
package httpapi

import (
	"html/template"
	"net/http"
	"time"

	"github.com/strand-protocol/fleetwatch/internal/hub"
	"github.com/strand-protocol/fleetwatch/internal/metrics"
	"github.com/strand-protocol/fleetwatch/web"
)

// requestTimeout bounds how long a single page render waits on its agent
// queries before surfacing a gateway error.
const requestTimeout = 5 * time.Second

// Server is the Hub's HTTP handler.
type Server struct {
	registry *hub.Registry
	metrics  *metrics.Metrics
	tmpl     *template.Template
	mux      *http.ServeMux
}

// NewServer builds the Hub's HTTP handler. It panics if the embedded
// templates fail to parse, which would indicate a build-time defect, not
// a runtime condition callers can recover from.
func NewServer(registry *hub.Registry, m *metrics.Metrics) *Server {
	tmpl := template.Must(template.ParseFS(web.Templates, "templates/*.html"))

	s := &Server{registry: registry, metrics: m, tmpl: tmpl}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /system", s.handleSystem)
	mux.HandleFunc("GET /set-backend", s.handleSetBackend)
	mux.HandleFunc("GET /static/", s.handleStatic)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	s.mux = mux
	return s
}

// ServeHTTP implements http.Handler, wrapping the route mux with the
// ambient request logging and recovery middleware.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	recoveryMiddleware(loggingMiddleware(securityHeaders(s.mux))).ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/system", http.StatusPermanentRedirect)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.SetConnectedAgents(s.registry.Len())
	s.metrics.WritePrometheus(w)
}

func writeError(w http.ResponseWriter, m *metrics.Metrics, status int, body string) {
	m.IncHTTPError()
	w.WriteHeader(status)
	w.Write([]byte(body))
}
