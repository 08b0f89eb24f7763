package server

import (
	"encoding/json"

	"scribble/internal/game"
)

// dispatch translates one inbound frame into an engine call. Anything the
// engine refuses is dropped; clients resync from the next gameUpdate.
func (s *Server) dispatch(c *wsClient, data []byte) {
	var msg envelope
	if err := json.Unmarshal(data, &msg); err != nil {
		s.log.Debug().Err(err).Str("player_id", c.id).Msg("ws malformed frame")
		return
	}

	var err error
	switch msg.Event {
	case inboundJoinGame:
		var req joinGamePayload
		if err = decodePayload(msg.Data, &req); err == nil {
			s.hub.Subscribe(req.SessionID, c)
			s.engine.Join(req.SessionID, game.Player{ID: c.id, Name: req.PlayerName})
		}
	case inboundStartGame:
		var req startGamePayload
		if err = decodePayload(msg.Data, &req); err == nil {
			err = s.engine.Start(req.SessionID, c.id)
		}
	case inboundStartDrawing:
		var req startDrawingPayload
		if err = decodePayload(msg.Data, &req); err == nil {
			err = s.engine.StartDrawing(req.SessionID, c.id, req.Word)
		}
	case inboundGuessWord:
		var req guessWordPayload
		if err = decodePayload(msg.Data, &req); err == nil {
			_, err = s.engine.Guess(req.SessionID, c.id, req.Guess)
		}
	case inboundDrawingData:
		var req drawingDataPayload
		if err = decodePayload(msg.Data, &req); err == nil {
			err = s.engine.RelayDrawing(req.SessionID, msg.Data)
		}
	default:
		s.log.Debug().Str("player_id", c.id).Str("event", msg.Event).Msg("ws unknown event")
		return
	}
	if err != nil {
		s.log.Debug().Err(err).Str("player_id", c.id).Str("event", msg.Event).Msg("ws event dropped")
	}
}
