// Package runtime wires the directory, connection registry and persistence
// into the chat engine. It orchestrates the system without containing domain
// rules of its own.
package runtime

import (
	"sync"

	"chatbois/contract"
)

type session struct {
	sink contract.PushSink
	gen  uint64
}

// Registry maps a logged-in username to its single live outbound sink.
//
// Invariant: at most one session per username at any instant. A new connection
// for an already-connected username supersedes the previous one: the old sink
// is closed before the new one is installed, never kept alongside it.
//
// Sessions are generation-tagged so that the teardown of a superseded
// connection cannot remove the sink a later attach installed: Detach only
// removes the entry whose generation it was handed.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]session
	nextGen  uint64
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]session)}
}

// Attach installs sink as the live channel for username and returns the
// generation the caller must present on Detach. Any previous sink for the
// same username is closed first.
func (r *Registry) Attach(username string, sink contract.PushSink) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.sessions[username]; ok {
		prev.sink.Close()
	}
	r.nextGen++
	r.sessions[username] = session{sink: sink, gen: r.nextGen}
	return r.nextGen
}

// Detach removes the session installed under gen and closes its sink.
// A no-op when the user is already gone or has since reconnected under a
// newer generation; safe to call from both the write pump and the transport
// teardown path.
func (r *Registry) Detach(username string, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[username]
	if !ok || current.gen != gen {
		return
	}
	current.sink.Close()
	delete(r.sessions, username)
}

// Lookup returns the live sink for username together with its generation.
// Read-only: concurrent attach/detach on other identities never block it.
func (r *Registry) Lookup(username string) (contract.PushSink, uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[username]
	if !ok {
		return nil, 0, false
	}
	return s.sink, s.gen, true
}

// Online reports the number of live sessions, for operator pages.
func (r *Registry) Online() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
