package game

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotHost         = errors.New("only the host can start the game")
	ErrNotDrawer       = errors.New("only the drawer can start drawing")
	ErrInvalidPhase    = errors.New("operation not allowed in current phase")
	ErrEmptyWord       = errors.New("word is required")
	ErrNotMember       = errors.New("player is not in any session")
)
