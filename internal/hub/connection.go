package hub

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/strand-protocol/fleetwatch/internal/protocol"
	"github.com/strand-protocol/fleetwatch/internal/wire"
)

// CacheDuration is the absolute TTL applied to cached responses. Metric
// pages poll at roughly 2-second intervals and often render several
// fragments that query the same metric in one pass; this window collapses
// those into a single round-trip to the agent while staying fresh enough
// to look live.
const CacheDuration = 1500 * time.Millisecond

// inboxCapacity bounds the number of HTTP-handler requests that may be
// queued for this connection's single goroutine before SendWithResponse /
// SendFireAndForget start blocking their callers.
const inboxCapacity = 64

type msgKind int

const (
	msgWithResponse msgKind = iota
	msgFireAndForget
)

// inboundMsg is what a RequestHandle sends into the connection's inbox.
type inboundMsg struct {
	kind  msgKind
	tag   protocol.Tag
	reply chan replyResult // nil for msgFireAndForget
}

type replyResult struct {
	resp     protocol.Response
	cacheHit bool
	err      error
}

type pendingEntry struct {
	tag   protocol.Tag
	reply chan replyResult
}

type cacheEntry struct {
	resp       protocol.Response
	insertedAt time.Time
}

// AgentConnection owns one agent's socket end to end: it is the sole
// writer and the sole reader of PendingTable and ResponseCache state, all
// of it touched only from the single goroutine running (*AgentConnection).run.
// HTTP handlers never reach into this state directly; they go through the
// RequestHandle's channel, and the socket reader runs on its own goroutine
// that does nothing but decode frames and hand them back across a channel,
// so no lock is needed around pending or cache.
type AgentConnection struct {
	conn     net.Conn
	addr     string
	nickname string
	registry *Registry

	inbox  chan inboundMsg
	closed chan struct{}

	nextID  uint16
	pending map[uint16]pendingEntry
	cache   map[protocol.Tag]cacheEntry
}

// Accept performs the handshake and, on success, registers and runs a new
// AgentConnection until the socket closes. It blocks for the lifetime of
// the connection and is meant to be called in its own goroutine per
// accepted socket.
func Accept(conn net.Conn, registry *Registry) {
	addr := canonicalPeerAddr(conn)

	frame, err := wire.ReadFrame(conn)
	if err != nil {
		log.Printf("hub: %s: handshake read failed: %v", addr, err)
		conn.Close()
		return
	}
	resp, err := protocol.DecodeResponse(frame.Payload)
	if err != nil || resp.Tag != protocol.TagHandshake || resp.Handshake == nil {
		log.Printf("hub: %s: first frame was not a valid handshake: %v", addr, err)
		conn.Close()
		return
	}
	if resp.Handshake.ProtocolVersion != protocol.ProtocolVersion {
		log.Printf("hub: %s: protocol version mismatch: agent=%d hub=%d",
			addr, resp.Handshake.ProtocolVersion, protocol.ProtocolVersion)
		conn.Close()
		return
	}

	nickname := resp.Handshake.Nickname
	if nickname == "" {
		nickname = addr
	}

	c := &AgentConnection{
		conn:     conn,
		addr:     addr,
		nickname: nickname,
		registry: registry,
		inbox:    make(chan inboundMsg, inboxCapacity),
		closed:   make(chan struct{}),
		pending:  make(map[uint16]pendingEntry),
		cache:    make(map[protocol.Tag]cacheEntry),
	}

	registry.Insert(AgentInfo{
		Address:  addr,
		Nickname: nickname,
		Handle:   RequestHandle{inbox: c.inbox, closed: c.closed},
	})
	log.Printf("hub: %s registered as %q", addr, nickname)

	c.run()
}

// canonicalPeerAddr returns the peer IP of conn, canonicalising an
// IPv4-mapped IPv6 address down to plain IPv4 so dual-stack listeners key
// the registry consistently regardless of which family the peer dialed
// with.
func canonicalPeerAddr(conn net.Conn) string {
	tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return conn.RemoteAddr().String()
	}
	ip := tcpAddr.IP
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	return ip.String()
}

func (c *AgentConnection) run() {
	defer c.teardown()

	// Buffered so the reader keeps draining the socket while this loop is
	// blocked writing a request; otherwise a peer blocked writing its reply
	// never reads that request and both sides stall.
	frameCh := make(chan wire.Frame, inboxCapacity)
	errCh := make(chan error, 1)
	go func() {
		for {
			f, err := wire.ReadFrame(c.conn)
			if err != nil {
				errCh <- err
				return
			}
			frameCh <- f
		}
	}()

	for {
		select {
		case msg := <-c.inbox:
			if !c.handleInbound(msg) {
				return
			}
		case f := <-frameCh:
			c.handleFrame(f)
		case err := <-errCh:
			if errors.Is(err, io.EOF) {
				log.Printf("hub: %s (%s) disconnected", c.addr, c.nickname)
			} else {
				log.Printf("hub: %s (%s) transport error: %v", c.addr, c.nickname, err)
			}
			return
		}
	}
}

// handleInbound processes one message from an HTTP handler. It returns
// false if a write failure means the connection must be torn down.
func (c *AgentConnection) handleInbound(msg inboundMsg) bool {
	switch msg.kind {
	case msgWithResponse:
		if msg.tag.Cacheable() {
			if entry, ok := c.cache[msg.tag]; ok && time.Since(entry.insertedAt) < CacheDuration {
				msg.reply <- replyResult{resp: entry.resp, cacheHit: true}
				return true
			}
		}
		id := c.allocateID()
		c.pending[id] = pendingEntry{tag: msg.tag, reply: msg.reply}
		payload := protocol.EncodeRequest(msg.tag)
		if err := wire.WriteFrame(c.conn, id, payload); err != nil {
			delete(c.pending, id)
			msg.reply <- replyResult{err: fmt.Errorf("hub: write request: %w", err)}
			log.Printf("hub: %s (%s): write failed, closing connection: %v", c.addr, c.nickname, err)
			return false
		}
		return true
	case msgFireAndForget:
		payload := protocol.EncodeRequest(msg.tag)
		if err := wire.WriteFrame(c.conn, 0, payload); err != nil {
			log.Printf("hub: %s (%s): fire-and-forget write failed, closing connection: %v", c.addr, c.nickname, err)
			return false
		}
		return true
	default:
		return true
	}
}

// handleFrame processes one frame read from the agent socket.
func (c *AgentConnection) handleFrame(f wire.Frame) {
	resp, err := protocol.DecodeResponse(f.Payload)
	if err != nil {
		log.Printf("hub: %s (%s): dropping undecodable frame id=%d: %v", c.addr, c.nickname, f.ID, err)
		return
	}
	if resp.Tag == protocol.TagHandshake {
		log.Printf("hub: %s (%s): dropping stray handshake frame mid-stream", c.addr, c.nickname)
		return
	}

	entry, ok := c.pending[f.ID]
	if !ok {
		log.Printf("hub: %s (%s): unknown correlation id %d, dropping", c.addr, c.nickname, f.ID)
		return
	}
	delete(c.pending, f.ID)

	if resp.Tag.Cacheable() {
		c.cache[resp.Tag] = cacheEntry{resp: resp, insertedAt: time.Now()}
	}

	// Buffered by 1: this never blocks, even if the waiting HTTP handler
	// has already been cancelled and nobody will ever read it.
	entry.reply <- replyResult{resp: resp}
}

// allocateID finds the next correlation id not already occupied in
// PendingTable, wrapping at 2^16.
func (c *AgentConnection) allocateID() uint16 {
	for {
		c.nextID++
		if _, occupied := c.pending[c.nextID]; !occupied {
			return c.nextID
		}
	}
}

func (c *AgentConnection) teardown() {
	close(c.closed)
	c.conn.Close()
	c.registry.Remove(c.addr)
	for id, entry := range c.pending {
		entry.reply <- replyResult{err: ErrConnectionClosed}
		delete(c.pending, id)
	}
	log.Printf("hub: %s (%s) removed from registry", c.addr, c.nickname)
}
