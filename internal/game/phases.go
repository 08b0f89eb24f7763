package game

import (
	"fmt"
	"time"
)

// The mutators below assume the session lock is held. They never touch
// timers or emit events; the engine sequences those around them.

func (s *Session) hasPlayer(playerID string) bool {
	return indexOfPlayer(s.Players, playerID) >= 0
}

// addPlayer appends p in join order. Rejoining with a known id is a no-op.
// Players joining mid-round are not queued until the next refill.
func (s *Session) addPlayer(p Player) bool {
	if s.hasPlayer(p.ID) {
		return false
	}
	s.Players = append(s.Players, p)
	if s.HostID == "" {
		s.HostID = p.ID
	}
	return true
}

func (s *Session) start(playerID string, at time.Time) error {
	if playerID != s.HostID {
		return ErrNotHost
	}
	if s.Status != StatusInactive {
		return fmt.Errorf("start from %s: %w", s.Status, ErrInvalidPhase)
	}
	s.setStatus(StatusActive, at)
	s.Round = 1
	s.DrawingQueue = append([]Player(nil), s.Players...)
	s.advanceRound(at)
	return nil
}

// advanceRound picks the next drawer, refilling the queue from the live
// player list when a round is exhausted. Past the last round the session
// finishes for good.
func (s *Session) advanceRound(at time.Time) {
	if s.Round > s.MaxRounds {
		s.finish(at)
		return
	}
	if len(s.DrawingQueue) == 0 {
		s.Round++
		if s.Round > s.MaxRounds {
			s.finish(at)
			return
		}
		s.DrawingQueue = append([]Player(nil), s.Players...)
	}
	if len(s.DrawingQueue) == 0 {
		s.finish(at)
		return
	}
	next := s.DrawingQueue[0]
	s.DrawingQueue = s.DrawingQueue[1:]
	s.Drawer = &next
	s.setStatus(StatusPreparing, at)
}

func (s *Session) finish(at time.Time) {
	s.Drawer = nil
	s.Word = ""
	s.DrawingQueue = []Player{}
	s.setStatus(StatusFinished, at)
}

func (s *Session) beginDrawing(playerID, word string, at time.Time) error {
	if s.Drawer == nil || s.Drawer.ID != playerID {
		return ErrNotDrawer
	}
	if s.Status != StatusPreparing {
		return fmt.Errorf("start drawing from %s: %w", s.Status, ErrInvalidPhase)
	}
	if word == "" {
		return ErrEmptyWord
	}
	s.Word = word
	s.setStatus(StatusDrawing, at)
	return nil
}

func (s *Session) endDrawing(at time.Time) {
	s.Word = ""
	s.Drawer = nil
	s.setStatus(StatusPreparing, at)
}

// removePlayer drops playerID from the player list and the queue, handing
// the host role to the earliest remaining player. It reports whether the
// departing player was the drawer.
func (s *Session) removePlayer(playerID string) bool {
	idx := indexOfPlayer(s.Players, playerID)
	if idx < 0 {
		return false
	}
	s.Players = append(s.Players[:idx:idx], s.Players[idx+1:]...)
	if qi := indexOfPlayer(s.DrawingQueue, playerID); qi >= 0 {
		s.DrawingQueue = append(s.DrawingQueue[:qi:qi], s.DrawingQueue[qi+1:]...)
	}
	if s.HostID == playerID {
		s.HostID = ""
		if len(s.Players) > 0 {
			s.HostID = s.Players[0].ID
		}
	}
	return s.Drawer != nil && s.Drawer.ID == playerID
}

func (s *Session) setStatus(status Status, at time.Time) {
	s.Status = status
	s.PhaseStartedAt = at
}

// IsCorrectGuess is an exact, case-sensitive comparison. No trimming or
// folding is applied; an empty guess matches an empty word.
func IsCorrectGuess(word, guess string) bool {
	return guess == word
}

func indexOfPlayer(players []Player, playerID string) int {
	for i := range players {
		if players[i].ID == playerID {
			return i
		}
	}
	return -1
}
