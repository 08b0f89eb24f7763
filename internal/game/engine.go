package game

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	DrawingDuration  time.Duration
	PreparationDelay time.Duration
	MaxRounds        int
	Emitter          Emitter
	Logger           zerolog.Logger
	// Clock and Now default to the wall clock.
	Clock AfterFunc
	Now   func() time.Time
}

// Engine runs every session operation and timer firing under that
// session's lock, so operations on one session never interleave.
type Engine struct {
	registry  *Registry
	scheduler *Scheduler
	emitter   Emitter
	log       zerolog.Logger
	now       func() time.Time
	settings  Settings
}

func NewEngine(opts Options) *Engine {
	e := &Engine{
		emitter: opts.Emitter,
		log:     opts.Logger,
		now:     opts.Now,
	}
	if e.emitter == nil {
		e.emitter = nopEmitter{}
	}
	if e.now == nil {
		e.now = timeNowUTC
	}
	e.scheduler = NewScheduler(opts.DrawingDuration, opts.PreparationDelay, opts.Clock, e.onTimer)
	e.registry = NewRegistry(opts.MaxRounds, e.scheduler)
	e.registry.now = e.now
	e.settings = Settings{
		DrawingDurationMs:  opts.DrawingDuration.Milliseconds(),
		PreparationDelayMs: opts.PreparationDelay.Milliseconds(),
		MaxRounds:          e.registry.maxRounds,
	}
	return e
}

func (e *Engine) Settings() Settings {
	return e.settings
}

// Join adds the player to the session, creating the session on first join.
func (e *Engine) Join(sessionID string, player Player) Snapshot {
	for {
		session := e.registry.GetOrCreate(sessionID)
		session.mu.Lock()
		if session.removed {
			session.mu.Unlock()
			continue
		}
		if session.addPlayer(player) {
			e.log.Info().Str("session_id", sessionID).Str("player_id", player.ID).
				Str("name", player.Name).Int("players", len(session.Players)).Msg("player joined")
		}
		e.emit(session, gameUpdate(session))
		snap := session.snapshot()
		session.mu.Unlock()
		return snap
	}
}

func (e *Engine) Start(sessionID, playerID string) error {
	return e.withSession(sessionID, func(session *Session) error {
		if err := session.start(playerID, e.now()); err != nil {
			return err
		}
		e.log.Info().Str("session_id", sessionID).Int("players", len(session.Players)).Msg("game started")
		if session.Status == StatusFinished {
			e.disarm(session)
		}
		e.emit(session, gameUpdate(session))
		return nil
	})
}

func (e *Engine) StartDrawing(sessionID, playerID, word string) error {
	return e.withSession(sessionID, func(session *Session) error {
		if err := session.beginDrawing(playerID, word, e.now()); err != nil {
			return err
		}
		e.arm(session, TimerDrawing)
		e.log.Info().Str("session_id", sessionID).Str("player_id", playerID).
			Int("round", session.Round).Msg("drawing started")
		e.emit(session,
			gameUpdate(session),
			Event{Type: EventDrawingStarted, Payload: DrawingStartedPayload{Word: session.Word}},
		)
		return nil
	})
}

// Guess reports the guess to every member, then the verdict. It never
// changes session state.
func (e *Engine) Guess(sessionID, playerID, guess string) (bool, error) {
	correct := false
	err := e.withSession(sessionID, func(session *Session) error {
		correct = IsCorrectGuess(session.Word, guess)
		verdict := EventIncorrectGuess
		if correct {
			verdict = EventCorrectGuess
		}
		payload := GuessPayload{PlayerID: playerID, Guess: guess}
		e.emit(session,
			Event{Type: EventGuess, Payload: payload},
			Event{Type: verdict, Payload: payload},
		)
		return nil
	})
	return correct, err
}

// RelayDrawing forwards payload to the session members byte for byte.
func (e *Engine) RelayDrawing(sessionID string, payload json.RawMessage) error {
	return e.withSession(sessionID, func(session *Session) error {
		e.emit(session, Event{Type: EventDrawingData, Payload: payload})
		return nil
	})
}

// Leave removes the player from every session it belongs to. Sessions left
// empty are destroyed without a broadcast.
func (e *Engine) Leave(playerID string) error {
	left := 0
	for _, session := range e.registry.Sessions() {
		session.mu.Lock()
		if !session.removed && session.hasPlayer(playerID) {
			e.depart(session, playerID)
			left++
		}
		session.mu.Unlock()
	}
	if left == 0 {
		return ErrNotMember
	}
	return nil
}

func (e *Engine) Snapshot(sessionID string) (Snapshot, bool) {
	var snap Snapshot
	err := e.withSession(sessionID, func(session *Session) error {
		snap = session.snapshot()
		return nil
	})
	return snap, err == nil
}

func (e *Engine) Summaries() []Summary {
	sessions := e.registry.Sessions()
	list := make([]Summary, 0, len(sessions))
	for _, session := range sessions {
		session.mu.Lock()
		if !session.removed {
			list = append(list, session.summary())
		}
		session.mu.Unlock()
	}
	return list
}

func (e *Engine) SessionCount() int {
	return e.registry.Len()
}

// PendingTimer reports which timer, if any, is armed for the session.
func (e *Engine) PendingTimer(sessionID string) (TimerKind, bool) {
	return e.scheduler.Pending(sessionID)
}

// Close cancels all timers. Sessions are volatile and simply dropped.
func (e *Engine) Close() {
	e.scheduler.Stop()
}

func (e *Engine) withSession(sessionID string, fn func(session *Session) error) error {
	session, ok := e.registry.Find(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.removed {
		return ErrSessionNotFound
	}
	return fn(session)
}

func (e *Engine) depart(session *Session, playerID string) {
	wasDrawer := session.removePlayer(playerID)
	e.log.Info().Str("session_id", session.ID).Str("player_id", playerID).
		Int("players", len(session.Players)).Bool("was_drawer", wasDrawer).Msg("player left")
	if len(session.Players) == 0 {
		session.removed = true
		session.timerKind = TimerNone
		e.registry.Remove(session.ID)
		e.emitter.Forget(session.ID)
		e.log.Info().Str("session_id", session.ID).Msg("session destroyed")
		return
	}
	if wasDrawer {
		e.endDrawingRound(session)
		return
	}
	e.emit(session, gameUpdate(session))
}

// endDrawingRound clears the drawer and word and arms the preparation delay.
// Arming replaces any pending drawing timer.
func (e *Engine) endDrawingRound(session *Session) {
	from := session.Status
	session.endDrawing(e.now())
	e.arm(session, TimerPreparation)
	e.log.Debug().Str("session_id", session.ID).Str("from", string(from)).
		Str("to", string(session.Status)).Msg("drawing round ended")
	e.emit(session, gameUpdate(session))
}

func (e *Engine) advance(session *Session) {
	from := session.Status
	session.advanceRound(e.now())
	if session.Status == StatusFinished {
		e.disarm(session)
		e.log.Info().Str("session_id", session.ID).Msg("game finished")
	} else {
		e.log.Debug().Str("session_id", session.ID).Str("from", string(from)).
			Str("to", string(session.Status)).Str("drawer", session.Drawer.ID).
			Int("round", session.Round).Msg("round advanced")
	}
	e.emit(session, gameUpdate(session))
}

// onTimer is the scheduler callback. It resolves the session again and
// ignores firings whose token or phase no longer matches.
func (e *Engine) onTimer(sessionID string, kind TimerKind, token uint64) {
	session, ok := e.registry.Find(sessionID)
	if !ok {
		e.log.Debug().Str("session_id", sessionID).Str("timer", kind.String()).Msg("timer fired for missing session")
		return
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.removed || session.timerToken != token || session.timerKind != kind {
		e.log.Debug().Str("session_id", sessionID).Str("timer", kind.String()).Msg("stale timer ignored")
		return
	}
	session.timerKind = TimerNone
	session.PhaseEndsAt = time.Time{}
	switch kind {
	case TimerDrawing:
		if session.Status != StatusDrawing {
			return
		}
		e.endDrawingRound(session)
	case TimerPreparation:
		if session.Status != StatusPreparing || session.Drawer != nil {
			return
		}
		e.advance(session)
	}
}

func (e *Engine) arm(session *Session, kind TimerKind) {
	session.timerToken++
	session.timerKind = kind
	duration := e.scheduler.Schedule(session.ID, kind, session.timerToken)
	session.PhaseEndsAt = session.PhaseStartedAt.Add(duration)
}

func (e *Engine) disarm(session *Session) {
	session.timerToken++
	session.timerKind = TimerNone
	session.PhaseEndsAt = time.Time{}
	e.scheduler.Cancel(session.ID)
}

func (e *Engine) emit(session *Session, events ...Event) {
	for _, ev := range events {
		e.emitter.Emit(session.ID, ev)
	}
}
