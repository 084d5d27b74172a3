package application

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// Registry is the process-wide guild → Session map.
// The lock guards the map only; it is never held while a session runs.
type Registry struct {
	mu       sync.Mutex
	sessions map[snowflake.ID]*Session
	factory  func(guildID snowflake.ID) *Session
}

// NewRegistry creates a Registry that builds missing sessions with factory.
// The factory must return a session whose worker is already running.
func NewRegistry(factory func(guildID snowflake.ID) *Session) *Registry {
	return &Registry{
		sessions: make(map[snowflake.ID]*Session),
		factory:  factory,
	}
}

// Get returns the session for the guild, or nil if none exists.
func (r *Registry) Get(guildID snowflake.ID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sessions[guildID]
}

// GetOrCreate returns the session for the guild, creating it if absent.
func (r *Registry) GetOrCreate(guildID snowflake.ID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[guildID]; ok {
		return s
	}
	s := r.factory(guildID)
	r.sessions[guildID] = s
	return s
}

// remove drops s from the registry if it is still the guild's session.
func (r *Registry) remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.sessions[s.guildID]; ok && current == s {
		delete(r.sessions, s.guildID)
	}
}

// Len returns the number of live sessions (for testing/monitoring).
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// All returns the live sessions.
func (r *Registry) All() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// CloseAll stops accepting events on every session, empties the registry,
// and returns the closed sessions.
func (r *Registry) CloseAll() []*Session {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	clear(r.sessions)
	r.mu.Unlock()

	for _, s := range sessions {
		s.mailbox.close()
	}
	return sessions
}
