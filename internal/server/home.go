package server

import (
	"encoding/json"
	"sync"

	"scribble/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// homeHub pushes session summaries to status-page viewers.
type homeHub struct {
	mu    sync.Mutex
	conns map[*wsClient]struct{}
	log   zerolog.Logger
}

func newHomeHub(logger zerolog.Logger) *homeHub {
	return &homeHub{
		conns: make(map[*wsClient]struct{}),
		log:   logger,
	}
}

func (h *homeHub) Add(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *homeHub) Remove(c *wsClient) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	c.close()
}

func (h *homeHub) Broadcast(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.Lock()
	conns := make([]*wsClient, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		if !c.enqueue(data) {
			_ = c.conn.Close()
		}
	}
}

func (s *Server) handleHomeWebsocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := newWSClient(conn, rate.NewLimiter(rate.Limit(s.cfg.MessageRatePerSecond), s.cfg.MessageBurst))
	s.log.Debug().Str("remote", c.Request.RemoteAddr).Msg("home ws connected")
	s.homeWS.Add(client)
	data, _ := json.Marshal(s.homePayload())
	client.enqueue(data)
	go s.writeWS(client)
	go s.readHomeWS(client)
}

func (s *Server) readHomeWS(c *wsClient) {
	defer s.homeWS.Remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			s.log.Debug().Err(err).Msg("home ws disconnected")
			return
		}
	}
}

// markHomeDirty runs with a session lock held, so it only signals.
func (s *Server) markHomeDirty() {
	select {
	case s.homeDirty <- struct{}{}:
	default:
	}
}

func (s *Server) homeLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.homeDirty:
			s.homeWS.Broadcast(s.homePayload())
		}
	}
}

func (s *Server) homePayload() map[string]any {
	summaries := s.homeSummaries()
	return map[string]any{
		"sessions": summaries,
		"html":     s.renderHomeSessionsHTML(summaries),
	}
}

func (s *Server) homeSummaries() []web.SessionSummary {
	summaries := make([]web.SessionSummary, 0)
	for _, session := range s.engine.Summaries() {
		summaries = append(summaries, web.SessionSummary{
			ID:        session.ID,
			Status:    string(session.Status),
			Round:     session.Round,
			MaxRounds: session.MaxRounds,
			Players:   session.Players,
		})
	}
	return summaries
}
