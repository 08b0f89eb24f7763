package server

import "encoding/json"

const (
	inboundJoinGame     = "joinGame"
	inboundStartGame    = "startGame"
	inboundStartDrawing = "startDrawing"
	inboundGuessWord    = "guessWord"
	inboundDrawingData  = "drawingData"
)

const outboundConnected = "connected"

// envelope frames every websocket message in both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type joinGamePayload struct {
	SessionID  string `json:"sessionId" binding:"required,max=64,sessionid"`
	PlayerName string `json:"playerName" binding:"max=64"`
}

type startGamePayload struct {
	SessionID string `json:"sessionId" binding:"required,max=64,sessionid"`
}

type startDrawingPayload struct {
	SessionID string `json:"sessionId" binding:"required,max=64,sessionid"`
	Word      string `json:"word"`
}

type guessWordPayload struct {
	SessionID string `json:"sessionId" binding:"required,max=64,sessionid"`
	Guess     string `json:"guess"`
}

// drawingDataPayload only extracts the session id; the frame is relayed as received.
type drawingDataPayload struct {
	SessionID string `json:"sessionId" binding:"required,max=64,sessionid"`
}

type connectedPayload struct {
	PlayerID string `json:"playerId"`
}
