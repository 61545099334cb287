package slideshow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/haivivi/slideshow/pkg/genx"
	"github.com/haivivi/slideshow/pkg/kv"
)

// Registry hands out one Session per session ID, all sharing a generator
// and a store. The web surface keeps one per browser.
//
// Sessions held with Acquire are never evicted; the others are dropped by
// Evict once idle.
type Registry struct {
	gen   genx.Generator
	model string
	store kv.Store
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session  *Session
	refs     int
	lastUsed time.Time
}

// NewRegistry creates an empty registry. A nil store means in-memory.
func NewRegistry(gen genx.Generator, model string, store kv.Store) *Registry {
	if store == nil {
		store = kv.NewMemory(nil)
	}
	return &Registry{
		gen:      gen,
		model:    model,
		store:    store,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Get returns the session for id, creating it on first use. Slides recorded
// under id in a persistent store are visible to the new session.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(id).session
}

// New creates a session with a fresh random ID.
func (r *Registry) New() *Session {
	s := NewSession(r.gen, Options{Model: r.model, Store: r.store})
	r.mu.Lock()
	r.sessions[s.ID()] = &entry{session: s, lastUsed: r.now()}
	r.mu.Unlock()
	return s
}

// Acquire is Get for a long-lived user such as a websocket connection. The
// session stays registered until the matching Release.
func (r *Registry) Acquire(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.lookup(id)
	e.refs++
	return e.session
}

// Release ends a hold taken with Acquire.
func (r *Registry) Release(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[s.ID()]
	if !ok || e.session != s {
		return
	}
	if e.refs > 0 {
		e.refs--
	}
	e.lastUsed = r.now()
}

// Evict drops sessions that are not held, not generating, and unused for
// longer than maxIdle. With dropSlides their recorded slides are deleted
// too. It returns the number of sessions evicted.
func (r *Registry) Evict(ctx context.Context, maxIdle time.Duration, dropSlides bool) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var idle []*Session
	for id, e := range r.sessions {
		if e.refs > 0 || e.lastUsed.After(cutoff) || e.session.running() {
			continue
		}
		delete(r.sessions, id)
		idle = append(idle, e.session)
	}
	r.mu.Unlock()

	for _, s := range idle {
		if !dropSlides {
			continue
		}
		if err := s.Clear(ctx); err != nil {
			slog.Warn("slideshow/registry: clear evicted session", "session", s.ID(), "error", err)
		}
	}
	if len(idle) > 0 {
		slog.Debug("slideshow/registry: evicted idle sessions", "count", len(idle))
	}
	return len(idle)
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CancelAll stops every in-flight run. Used on server shutdown.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.sessions {
		e.session.Cancel()
	}
}

// lookup returns the entry for id, creating it, and marks it used. r.mu
// must be held.
func (r *Registry) lookup(id string) *entry {
	e, ok := r.sessions[id]
	if !ok {
		e = &entry{session: NewSession(r.gen, Options{ID: id, Model: r.model, Store: r.store})}
		r.sessions[id] = e
	}
	e.lastUsed = r.now()
	return e
}
