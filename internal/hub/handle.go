package hub

import (
	"context"
	"errors"

	"github.com/strand-protocol/fleetwatch/internal/protocol"
)

// ErrConnectionClosed is returned by RequestHandle methods when the
// underlying AgentConnection has torn down, either before the request
// could be enqueued or while it was awaiting a reply.
var ErrConnectionClosed = errors.New("hub: agent connection closed")

// RequestHandle is the cheap, cloneable send-side interface HTTP handlers
// use to query one agent. It is a thin wrapper around the connection's
// inbox channel plus a shared close signal; copying a RequestHandle is
// always safe and dropping one has no effect on the connection.
type RequestHandle struct {
	inbox  chan<- inboundMsg
	closed <-chan struct{}
}

// SendWithResponse enqueues a metric query and blocks for its reply, a
// cache hit, or cancellation via ctx. The errors returned are
// ErrConnectionClosed, ctx.Err(), or the wrapped write error when writing
// the request to the agent fails; a successful decode is guaranteed by the
// schema once a response is received.
func (h RequestHandle) SendWithResponse(ctx context.Context, tag protocol.Tag) (protocol.Response, error) {
	resp, _, err := h.SendWithResponseDetail(ctx, tag)
	return resp, err
}

// SendWithResponseDetail is SendWithResponse plus a cacheHit flag telling
// the caller whether the reply was served from the connection's
// ResponseCache rather than reaching the agent, so callers that track
// cache-hit metrics don't have to guess.
func (h RequestHandle) SendWithResponseDetail(ctx context.Context, tag protocol.Tag) (resp protocol.Response, cacheHit bool, err error) {
	reply := make(chan replyResult, 1)
	msg := inboundMsg{kind: msgWithResponse, tag: tag, reply: reply}

	select {
	case h.inbox <- msg:
	case <-h.closed:
		return protocol.Response{}, false, ErrConnectionClosed
	case <-ctx.Done():
		return protocol.Response{}, false, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.resp, res.cacheHit, res.err
	case <-h.closed:
		return protocol.Response{}, false, ErrConnectionClosed
	case <-ctx.Done():
		return protocol.Response{}, false, ctx.Err()
	}
}

// SendFireAndForget enqueues a request with no expected reply, used for
// the reserved Terminal/Signal extension point. It returns as soon as the
// request is handed to the connection's inbox, without waiting for it to
// reach the wire.
func (h RequestHandle) SendFireAndForget(ctx context.Context, tag protocol.Tag) error {
	msg := inboundMsg{kind: msgFireAndForget, tag: tag}
	select {
	case h.inbox <- msg:
		return nil
	case <-h.closed:
		return ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
