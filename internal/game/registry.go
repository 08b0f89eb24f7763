package game

import (
	"sort"
	"sync"
	"time"
)

// Canceller cancels outstanding timers for a session.
type Canceller interface {
	Cancel(sessionID string)
}

// Registry owns the live sessions. The registry lock is never held while a
// session lock is being acquired.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	maxRounds int
	timers    Canceller
	now       func() time.Time
}

func NewRegistry(maxRounds int, timers Canceller) *Registry {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Registry{
		sessions:  make(map[string]*Session),
		maxRounds: maxRounds,
		timers:    timers,
		now:       timeNowUTC,
	}
}

func (r *Registry) GetOrCreate(id string) *Session {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return session
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		return session
	}
	session = newSession(id, r.maxRounds, r.now())
	r.sessions[id] = session
	return session
}

func (r *Registry) Find(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

// Remove deletes the session and cancels its timers. The caller holds the
// session lock and marks it removed.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	if r.timers != nil {
		r.timers.Cancel(id)
	}
}

// Sessions returns the live sessions ordered by id.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	list := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		list = append(list, session)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
