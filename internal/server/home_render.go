package server

import (
	"bytes"
	"context"

	"scribble/internal/web"
)

func (s *Server) renderHomeSessionsHTML(summaries []web.SessionSummary) string {
	var buf bytes.Buffer
	if err := web.ActiveSessionsList(summaries).Render(context.Background(), &buf); err != nil {
		return ""
	}
	return buf.String()
}

func (s *Server) homeSettings() web.HomeSettings {
	settings := s.engine.Settings()
	return web.HomeSettings{
		DrawingSeconds:     settings.DrawingDurationMs / 1000,
		PreparationSeconds: settings.PreparationDelayMs / 1000,
		MaxRounds:          settings.MaxRounds,
	}
}
