// Package metrics tracks a handful of process-wide counters for the Hub
// and exposes them in Prometheus text exposition format, hand-written
// rather than pulled in from a client library: every route and backend
// query here is a simple monotonic or up/down counter, and the pack
// carries no example usage of a Prometheus client to ground one on.
package metrics

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Metrics holds the Hub's counters. The zero value is ready to use.
type Metrics struct {
	httpRequests    atomic.Int64
	httpErrors      atomic.Int64
	agentQueries    atomic.Int64
	cacheHits       atomic.Int64
	connectedAgents atomic.Int64
}

// New returns a ready-to-use Metrics.
func New() *Metrics {
	return &Metrics{}
}

// IncHTTPRequest records one served request. Only the system page handler
// calls it; other routes are not counted.
func (m *Metrics) IncHTTPRequest() { m.httpRequests.Add(1) }

// IncHTTPError records one HTTP request that ended in 5xx/503/502. Only the
// system page handler's error responses are counted.
func (m *Metrics) IncHTTPError() { m.httpErrors.Add(1) }

// IncAgentQuery records one send_with_response call that reached the
// agent (i.e. was not served from the ResponseCache).
func (m *Metrics) IncAgentQuery() { m.agentQueries.Add(1) }

// IncCacheHit records one send_with_response call served from the
// ResponseCache.
func (m *Metrics) IncCacheHit() { m.cacheHits.Add(1) }

// SetConnectedAgents records the current AgentRegistry size.
func (m *Metrics) SetConnectedAgents(n int) { m.connectedAgents.Store(int64(n)) }

// WritePrometheus writes the current counters to w in Prometheus text
// exposition format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	fmt.Fprintf(w, "# HELP fleetwatch_http_requests_total Total system page requests served by the Hub.\n")
	fmt.Fprintf(w, "# TYPE fleetwatch_http_requests_total counter\n")
	fmt.Fprintf(w, "fleetwatch_http_requests_total %d\n", m.httpRequests.Load())

	fmt.Fprintf(w, "# HELP fleetwatch_http_errors_total Total system page requests that ended in an error response.\n")
	fmt.Fprintf(w, "# TYPE fleetwatch_http_errors_total counter\n")
	fmt.Fprintf(w, "fleetwatch_http_errors_total %d\n", m.httpErrors.Load())

	fmt.Fprintf(w, "# HELP fleetwatch_agent_queries_total Total metric queries that reached an agent.\n")
	fmt.Fprintf(w, "# TYPE fleetwatch_agent_queries_total counter\n")
	fmt.Fprintf(w, "fleetwatch_agent_queries_total %d\n", m.agentQueries.Load())

	fmt.Fprintf(w, "# HELP fleetwatch_cache_hits_total Total metric queries served from the response cache.\n")
	fmt.Fprintf(w, "# TYPE fleetwatch_cache_hits_total counter\n")
	fmt.Fprintf(w, "fleetwatch_cache_hits_total %d\n", m.cacheHits.Load())

	fmt.Fprintf(w, "# HELP fleetwatch_connected_agents Current number of connected agents.\n")
	fmt.Fprintf(w, "# TYPE fleetwatch_connected_agents gauge\n")
	fmt.Fprintf(w, "fleetwatch_connected_agents %d\n", m.connectedAgents.Load())
}
