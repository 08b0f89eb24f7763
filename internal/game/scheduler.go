package game

import (
	"sync"
	"time"
)

type TimerKind int

const (
	TimerNone TimerKind = iota
	TimerDrawing
	TimerPreparation
)

func (k TimerKind) String() string {
	switch k {
	case TimerDrawing:
		return "drawing"
	case TimerPreparation:
		return "preparation"
	default:
		return "none"
	}
}

// Timer is the subset of *time.Timer the scheduler relies on.
type Timer interface {
	Stop() bool
}

// AfterFunc arms f to run once after d. time.AfterFunc satisfies it through
// RealClock; tests substitute a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

func RealClock(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// FireFunc receives only identifiers; the session must be re-resolved.
type FireFunc func(sessionID string, kind TimerKind, token uint64)

type scheduledTimer struct {
	kind  TimerKind
	token uint64
	timer Timer
}

// Scheduler keeps at most one pending timer per session.
type Scheduler struct {
	mu          sync.Mutex
	timers      map[string]scheduledTimer
	afterFunc   AfterFunc
	drawing     time.Duration
	preparation time.Duration
	fire        FireFunc
}

func NewScheduler(drawing, preparation time.Duration, afterFunc AfterFunc, fire FireFunc) *Scheduler {
	if afterFunc == nil {
		afterFunc = RealClock
	}
	return &Scheduler{
		timers:      make(map[string]scheduledTimer),
		afterFunc:   afterFunc,
		drawing:     drawing,
		preparation: preparation,
		fire:        fire,
	}
}

func (s *Scheduler) Duration(kind TimerKind) time.Duration {
	switch kind {
	case TimerDrawing:
		return s.drawing
	case TimerPreparation:
		return s.preparation
	default:
		return 0
	}
}

// Schedule replaces whatever timer is armed for sessionID.
func (s *Scheduler) Schedule(sessionID string, kind TimerKind, token uint64) time.Duration {
	duration := s.Duration(kind)
	if kind == TimerNone {
		s.Cancel(sessionID)
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.timers[sessionID]; ok {
		existing.timer.Stop()
	}
	timer := s.afterFunc(duration, func() {
		s.expire(sessionID, token)
		if s.fire != nil {
			s.fire(sessionID, kind, token)
		}
	})
	s.timers[sessionID] = scheduledTimer{kind: kind, token: token, timer: timer}
	return duration
}

// Cancel is a no-op when nothing is armed.
func (s *Scheduler) Cancel(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.timers[sessionID]; ok {
		existing.timer.Stop()
		delete(s.timers, sessionID)
	}
}

func (s *Scheduler) Pending(sessionID string) (TimerKind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.timers[sessionID]
	if !ok {
		return TimerNone, false
	}
	return existing.kind, true
}

// Stop cancels every pending timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.timers {
		existing.timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) expire(sessionID string, token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.timers[sessionID]; ok && existing.token == token {
		delete(s.timers, sessionID)
	}
}
