package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"scribble/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsClient is one websocket connection. Its id doubles as the player id.
type wsClient struct {
	id      string
	conn    *websocket.Conn
	limiter *rate.Limiter

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newWSClient(conn *websocket.Conn, limiter *rate.Limiter) *wsClient {
	return &wsClient{
		id:      uuid.NewString(),
		conn:    conn,
		limiter: limiter,
		send:    make(chan []byte, sendBufferSize),
	}
}

// enqueue never blocks; it reports false when the client is closed or its
// buffer is full.
func (c *wsClient) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// wsHub groups connections by session id and implements game.Emitter.
type wsHub struct {
	mu      sync.RWMutex
	groups  map[string]map[*wsClient]struct{}
	log     zerolog.Logger
	changed func()
}

func newWSHub(logger zerolog.Logger) *wsHub {
	return &wsHub{
		groups: make(map[string]map[*wsClient]struct{}),
		log:    logger,
	}
}

func (h *wsHub) Subscribe(sessionID string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[sessionID]
	if group == nil {
		group = make(map[*wsClient]struct{})
		h.groups[sessionID] = group
	}
	group[c] = struct{}{}
}

// Unsubscribe drops the client from every group it belongs to.
func (h *wsHub) Unsubscribe(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sessionID, group := range h.groups {
		delete(group, c)
		if len(group) == 0 {
			delete(h.groups, sessionID)
		}
	}
}

func (h *wsHub) Members(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[sessionID])
}

func (h *wsHub) Emit(sessionID string, ev game.Event) {
	data, err := json.Marshal(outboundEnvelope{Event: string(ev.Type), Data: ev.Payload})
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID).Str("event", string(ev.Type)).Msg("encode event failed")
		return
	}
	h.mu.RLock()
	group := h.groups[sessionID]
	clients := make([]*wsClient, 0, len(group))
	for c := range group {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(data) {
			h.log.Warn().Str("session_id", sessionID).Str("player_id", c.id).Msg("ws send buffer full, dropping connection")
			_ = c.conn.Close()
		}
	}
	if ev.Type == game.EventGameUpdate && h.changed != nil {
		h.changed()
	}
}

// Forget drops the session's group once no connection is left in it.
// Members leave through Unsubscribe when their connection closes.
func (h *wsHub) Forget(sessionID string) {
	h.mu.Lock()
	if group, ok := h.groups[sessionID]; ok && len(group) == 0 {
		delete(h.groups, sessionID)
	}
	h.mu.Unlock()
	if h.changed != nil {
		h.changed()
	}
}

func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug().Err(err).Str("remote", c.Request.RemoteAddr).Msg("ws upgrade failed")
		return
	}
	client := newWSClient(conn, rate.NewLimiter(rate.Limit(s.cfg.MessageRatePerSecond), s.cfg.MessageBurst))
	s.log.Info().Str("player_id", client.id).Str("remote", c.Request.RemoteAddr).Msg("ws connected")

	hello, _ := json.Marshal(outboundEnvelope{Event: outboundConnected, Data: connectedPayload{PlayerID: client.id}})
	client.enqueue(hello)

	go s.writeWS(client)
	go s.readWS(client)
}

func (s *Server) readWS(c *wsClient) {
	defer s.disconnect(c)
	c.conn.SetReadLimit(s.cfg.MaxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Str("player_id", c.id).Msg("ws read failed")
			}
			return
		}
		if !c.limiter.Allow() {
			s.log.Debug().Str("player_id", c.id).Msg("ws message rate limited")
			continue
		}
		s.dispatch(c, data)
	}
}

func (s *Server) writeWS(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// disconnect runs departure handling once the read loop ends.
func (s *Server) disconnect(c *wsClient) {
	s.hub.Unsubscribe(c)
	c.close()
	if err := s.engine.Leave(c.id); err != nil && !errors.Is(err, game.ErrNotMember) {
		s.log.Warn().Err(err).Str("player_id", c.id).Msg("leave failed")
	}
	s.log.Info().Str("player_id", c.id).Msg("ws disconnected")
}
