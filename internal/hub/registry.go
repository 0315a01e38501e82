// Package hub implements the Hub side of the system: the per-agent
// connection multiplexer, the registry of connected agents, and the
// cheap send-side handle HTTP code uses to query them.
package hub

import "sync"

// AgentInfo is a snapshot of one registered agent: its handshake nickname
// and a handle HTTP code can use to query it. Address is the canonical
// string form of the peer's IP.
type AgentInfo struct {
	Address string
	Nickname string
	Handle  RequestHandle
}

// Registry maps agent address to AgentInfo. The accept loop mutates it on
// connection establishment and teardown; HTTP handlers only read snapshots.
// Unlike the per-connection PendingTable and ResponseCache (owned
// exclusively by a single goroutine per connection, per the concurrency note
// in DESIGN.md), the Registry is genuinely shared across goroutines — the
// accept loop and every concurrent HTTP handler — so it is guarded by a
// mutex, held only across the non-suspending map operations below and
// never across I/O.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]AgentInfo
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]AgentInfo)}
}

// Insert adds or replaces the entry for addr. A second handshake from the
// same address replaces the prior entry; the prior RequestHandle is left
// to fail on next use (its connection is being torn down by the caller).
func (reg *Registry) Insert(info AgentInfo) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.agents[info.Address] = info
}

// Remove deletes the entry for addr, if present.
func (reg *Registry) Remove(addr string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.agents, addr)
}

// Lookup returns the entry for addr, if any.
func (reg *Registry) Lookup(addr string) (AgentInfo, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	info, ok := reg.agents[addr]
	return info, ok
}

// Snapshot returns a consistent copy of all current entries. Iteration
// order is not guaranteed to be stable across calls, only within one
// returned slice.
func (reg *Registry) Snapshot() []AgentInfo {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]AgentInfo, 0, len(reg.agents))
	for _, info := range reg.agents {
		out = append(out, info)
	}
	return out
}

// Len returns the number of currently registered agents.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.agents)
}

// Pick selects an agent for an HTTP request. preferred, if non-empty, is
// tried first (the address decoded from the backend cookie); otherwise, or
// if preferred is not registered, the first entry in map iteration order is
// returned. Go randomises that order, so the fallback agent may differ
// between calls. The second return is false if no agents are registered at
// all.
func (reg *Registry) Pick(preferred string) (AgentInfo, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	if preferred != "" {
		if info, ok := reg.agents[preferred]; ok {
			return info, true
		}
	}
	for _, info := range reg.agents {
		return info, true
	}
	return AgentInfo{}, false
}
