package server

import (
	"sync"

	"isle-conquest/internal/game"
)

// liveMatch is a running match. mu serialises every action on it.
type liveMatch struct {
	mu    sync.Mutex
	match *game.Match
}

// MatchRegistry holds the running matches by game ID.
type MatchRegistry struct {
	mu      sync.RWMutex
	matches map[string]*liveMatch
}

// NewMatchRegistry creates an empty registry.
func NewMatchRegistry() *MatchRegistry {
	return &MatchRegistry{matches: make(map[string]*liveMatch)}
}

// Put registers m under its ID, replacing any previous match.
func (r *MatchRegistry) Put(m *game.Match) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[m.ID] = &liveMatch{match: m}
}

// Remove forgets a match.
func (r *MatchRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.matches, id)
}

// Len returns the number of running matches.
func (r *MatchRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}

// With runs fn with exclusive access to the match with the given ID. It
// reports false when no such match is running.
func (r *MatchRegistry) With(id string, fn func(m *game.Match)) bool {
	r.mu.RLock()
	lm := r.matches[id]
	r.mu.RUnlock()
	if lm == nil {
		return false
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	fn(lm.match)
	return true
}
