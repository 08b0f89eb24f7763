package game

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type manualTimer struct {
	clock   *manualClock
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// manualClock records armed timers and only fires them when told to.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) active() []*manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := make([]*manualTimer, 0)
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			list = append(list, t)
		}
	}
	return list
}

// fireNext runs the oldest active timer and reports its duration.
func (c *manualClock) fireNext(t *testing.T) time.Duration {
	t.Helper()
	active := c.active()
	require.NotEmpty(t, active, "expected an armed timer")
	next := active[0]
	c.mu.Lock()
	next.fired = true
	c.mu.Unlock()
	next.f()
	return next.d
}

type recordingEmitter struct {
	mu        sync.Mutex
	events    map[string][]Event
	forgotten []string
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{events: make(map[string][]Event)}
}

func (r *recordingEmitter) Emit(sessionID string, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[sessionID] = append(r.events[sessionID], ev)
}

func (r *recordingEmitter) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forgotten = append(r.forgotten, sessionID)
}

func (r *recordingEmitter) take(sessionID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := r.events[sessionID]
	delete(r.events, sessionID)
	return events
}

func (r *recordingEmitter) types(sessionID string) []EventType {
	events := r.take(sessionID)
	types := make([]EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}

const (
	testDrawing     = 10 * time.Second
	testPreparation = 5 * time.Second
)

func newTestEngine(t *testing.T) (*Engine, *manualClock, *recordingEmitter) {
	t.Helper()
	clock := &manualClock{}
	emitter := newRecordingEmitter()
	engine := NewEngine(Options{
		DrawingDuration:  testDrawing,
		PreparationDelay: testPreparation,
		MaxRounds:        DefaultMaxRounds,
		Emitter:          emitter,
		Logger:           zerolog.Nop(),
		Clock:            clock.AfterFunc,
	})
	t.Cleanup(engine.Close)
	return engine, clock, emitter
}

func mustSnapshot(t *testing.T, e *Engine, sessionID string) Snapshot {
	t.Helper()
	snap, ok := e.Snapshot(sessionID)
	require.True(t, ok, "session %s not found", sessionID)
	return snap
}

func requireDrawerIsMember(t *testing.T, snap Snapshot) {
	t.Helper()
	if snap.Drawer == nil {
		return
	}
	require.NotEqual(t, -1, indexOfPlayer(snap.Players, snap.Drawer.ID), "drawer %s is not a player", snap.Drawer.ID)
	for _, queued := range snap.DrawingQueue {
		require.NotEqual(t, -1, indexOfPlayer(snap.Players, queued.ID), "queued %s is not a player", queued.ID)
	}
}
