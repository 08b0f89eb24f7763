package game

type EventType string

const (
	EventGameUpdate     EventType = "gameUpdate"
	EventDrawingStarted EventType = "drawingStarted"
	EventGuess          EventType = "guess"
	EventCorrectGuess   EventType = "correctGuess"
	EventIncorrectGuess EventType = "incorrectGuess"
	EventDrawingData    EventType = "drawingData"
)

// Event is one outbound broadcast scoped to a session's members.
type Event struct {
	Type    EventType
	Payload any
}

type DrawingStartedPayload struct {
	Word string `json:"word"`
}

type GuessPayload struct {
	PlayerID string `json:"playerId"`
	Guess    string `json:"guess"`
}

// Emitter delivers events to every member of a session. Implementations must
// not block on network I/O since Emit runs with the session lock held.
type Emitter interface {
	Emit(sessionID string, ev Event)
	Forget(sessionID string)
}

func gameUpdate(s *Session) Event {
	return Event{Type: EventGameUpdate, Payload: s.snapshot()}
}

type nopEmitter struct{}

func (nopEmitter) Emit(string, Event) {}
func (nopEmitter) Forget(string)      {}
