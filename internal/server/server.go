package server

import (
	"net/http"
	"sync"
	"time"

	"scribble/internal/config"
	"scribble/internal/game"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Server struct {
	engine    *game.Engine
	hub       *wsHub
	homeWS    *homeHub
	cfg       config.Config
	log       zerolog.Logger
	router    *gin.Engine
	homeDirty chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func New(cfg config.Config, logger zerolog.Logger) *Server {
	registerValidators()
	setGinMode(cfg.GinMode)

	hub := newWSHub(logger)
	s := &Server{
		hub:       hub,
		homeWS:    newHomeHub(logger),
		cfg:       cfg,
		log:       logger,
		homeDirty: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	s.engine = game.NewEngine(game.Options{
		DrawingDuration:  cfg.DrawingDuration(),
		PreparationDelay: cfg.PreparationDelay(),
		MaxRounds:        cfg.MaxRounds,
		Emitter:          hub,
		Logger:           logger,
	})
	hub.changed = s.markHomeDirty
	s.router = s.routes()
	go s.homeLoop()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger(), cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))
	router.GET("/", s.handleHome)
	router.GET("/healthz", s.handleHealth)
	router.GET("/api/config", s.handleConfig)
	router.GET("/api/sessions", s.handleListSessions)
	router.GET("/api/sessions/:id", s.handleGetSession)
	router.GET("/ws", s.handleWebsocket)
	router.GET("/ws/home", s.handleHomeWebsocket)
	return router
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Close stops every timer and the home broadcaster. Open connections are
// left to the http.Server shutdown.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.engine.Close()
	})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/healthz" {
			return
		}
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}

func setGinMode(mode string) {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
}
