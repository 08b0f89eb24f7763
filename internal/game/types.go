package game

import (
	"sync"
	"time"
)

type Status string

const (
	StatusInactive  Status = "INACTIVE"
	StatusActive    Status = "ACTIVE"
	StatusPreparing Status = "PREPARING"
	StatusDrawing   Status = "DRAWING"
	StatusFinished  Status = "FINISHED"
)

// DefaultMaxRounds is the number of rounds a game runs when no override is configured.
const DefaultMaxRounds = 3

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is one game. All fields are guarded by mu; callers outside this
// package only ever see a Snapshot.
type Session struct {
	mu sync.Mutex

	ID             string
	HostID         string
	Players        []Player
	Drawer         *Player
	Word           string
	Status         Status
	Round          int
	DrawingQueue   []Player
	MaxRounds      int
	CreatedAt      time.Time
	PhaseStartedAt time.Time
	PhaseEndsAt    time.Time

	timerToken uint64
	timerKind  TimerKind
	removed    bool
}

type Snapshot struct {
	ID             string    `json:"id"`
	HostID         string    `json:"hostId"`
	Players        []Player  `json:"players"`
	Drawer         *Player   `json:"drawer"`
	Word           string    `json:"word"`
	Status         Status    `json:"status"`
	Round          int       `json:"round"`
	MaxRounds      int       `json:"maxRounds"`
	DrawingQueue   []Player  `json:"drawingQueue"`
	PhaseStartedAt time.Time `json:"phaseStartedAt"`
	PhaseEndsAt    time.Time `json:"phaseEndsAt,omitempty"`
}

type Summary struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Round     int       `json:"round"`
	MaxRounds int       `json:"maxRounds"`
	Players   int       `json:"players"`
	CreatedAt time.Time `json:"createdAt"`
}

// Settings are the timing options clients need to render countdowns.
type Settings struct {
	DrawingDurationMs  int64 `json:"drawingDurationMs"`
	PreparationDelayMs int64 `json:"preparationDelayMs"`
	MaxRounds          int   `json:"maxRounds"`
}

func newSession(id string, maxRounds int, now time.Time) *Session {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Session{
		ID:             id,
		Players:        []Player{},
		DrawingQueue:   []Player{},
		Status:         StatusInactive,
		MaxRounds:      maxRounds,
		CreatedAt:      now,
		PhaseStartedAt: now,
	}
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		ID:             s.ID,
		HostID:         s.HostID,
		Players:        append([]Player(nil), s.Players...),
		Word:           s.Word,
		Status:         s.Status,
		Round:          s.Round,
		MaxRounds:      s.MaxRounds,
		DrawingQueue:   append([]Player(nil), s.DrawingQueue...),
		PhaseStartedAt: s.PhaseStartedAt,
		PhaseEndsAt:    s.PhaseEndsAt,
	}
	if snap.Players == nil {
		snap.Players = []Player{}
	}
	if snap.DrawingQueue == nil {
		snap.DrawingQueue = []Player{}
	}
	if s.Drawer != nil {
		drawer := *s.Drawer
		snap.Drawer = &drawer
	}
	return snap
}

func (s *Session) summary() Summary {
	return Summary{
		ID:        s.ID,
		Status:    s.Status,
		Round:     s.Round,
		MaxRounds: s.MaxRounds,
		Players:   len(s.Players),
		CreatedAt: s.CreatedAt,
	}
}
