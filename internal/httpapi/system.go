package httpapi

import (
	"context"
	"net/http"

	"github.com/strand-protocol/fleetwatch/internal/hub"
	"github.com/strand-protocol/fleetwatch/internal/metrics"
	"github.com/strand-protocol/fleetwatch/internal/protocol"
)

// systemPageData is the value rendered by templates/system.html.
type systemPageData struct {
	Nickname        string
	SelectedAddress string
	Backends        []hub.AgentInfo
	Cpu             *protocol.CpuReport
	Temp            *protocol.TempReport
	Mem             *protocol.MemReport
	Disk            *protocol.DiskReport
	NetIO           *protocol.NetReport
}

var systemTags = []protocol.Tag{
	protocol.TagCpu,
	protocol.TagTemp,
	protocol.TagMem,
	protocol.TagDisk,
	protocol.TagNetIO,
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	s.metrics.IncHTTPRequest()

	info, ok := s.registry.Pick(selectedBackend(r))
	if !ok {
		writeError(w, s.metrics, http.StatusServiceUnavailable, "no connected backends")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	responses, err := queryAll(ctx, info.Handle, s.metrics)
	if err != nil {
		writeError(w, s.metrics, http.StatusBadGateway, "agent query failed: "+err.Error())
		return
	}

	data := systemPageData{
		Nickname:        info.Nickname,
		SelectedAddress: info.Address,
		Backends:        s.registry.Snapshot(),
		Cpu:             responses[protocol.TagCpu].Cpu,
		Temp:            responses[protocol.TagTemp].Temp,
		Mem:             responses[protocol.TagMem].Mem,
		Disk:            responses[protocol.TagDisk].Disk,
		NetIO:           responses[protocol.TagNetIO].NetIO,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "system.html", data); err != nil {
		writeError(w, s.metrics, http.StatusInternalServerError, "template render failed")
	}
}

// queryAll fans out one send_with_response call per tag in systemTags and
// waits for all of them, so that a page render issues its queries
// concurrently rather than paying for five sequential round-trips (each
// of which may itself be collapsed by the agent connection's ResponseCache
// if another handler already primed it).
func queryAll(ctx context.Context, handle hub.RequestHandle, m *metrics.Metrics) (map[protocol.Tag]protocol.Response, error) {
	type result struct {
		tag      protocol.Tag
		resp     protocol.Response
		cacheHit bool
		err      error
	}

	results := make(chan result, len(systemTags))
	for _, tag := range systemTags {
		go func(tag protocol.Tag) {
			resp, cacheHit, err := handle.SendWithResponseDetail(ctx, tag)
			results <- result{tag: tag, resp: resp, cacheHit: cacheHit, err: err}
		}(tag)
	}

	out := make(map[protocol.Tag]protocol.Response, len(systemTags))
	var firstErr error
	for range systemTags {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		out[r.tag] = r.resp
		if r.cacheHit {
			m.IncCacheHit()
		} else {
			m.IncAgentQuery()
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
