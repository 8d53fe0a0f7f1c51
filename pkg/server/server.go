// Package server exposes the voice agent over the Retell custom-LLM
// websocket protocol, one connection per active call.
package server

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/kiempfang/voicedesk/pkg/agent"
	"github.com/kiempfang/voicedesk/pkg/calcom"
	"github.com/kiempfang/voicedesk/pkg/session"
)

// Sessions idle longer than this are swept.
const sessionMaxIdle = 10 * time.Minute

// Config holds server dependencies.
type Config struct {
	Port         string
	Orchestrator *agent.Orchestrator
	Sessions     *session.Registry
	Logger       *slog.Logger
}

// Server is the HTTP and websocket front of the agent.
type Server struct {
	app      *fiber.App
	orch     *agent.Orchestrator
	sessions *session.Registry
	logger   *slog.Logger
	port     string
	stop     chan struct{}
}

// New creates the server and registers all routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		orch:     cfg.Orchestrator,
		sessions: cfg.Sessions,
		logger:   logger.With("component", "server"),
		port:     cfg.Port,
		stop:     make(chan struct{}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "voicedesk",
		DisableStartupMessage: true,
	})

	app.Get("/healthz", s.handleHealth)
	app.Get("/api/tools", s.handleListTools)

	// WebSocket upgrade middleware
	app.Use("/llm-websocket", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/llm-websocket/:call_id", websocket.New(s.handleCall))

	s.app = app
	return s
}

// Listen starts serving and blocks until Shutdown.
func (s *Server) Listen() error {
	go s.sweepLoop()
	s.logger.Info("listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	close(s.stop)
	return s.app.Shutdown()
}

// sweepLoop removes sessions for calls that never closed cleanly.
func (s *Server) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.sessions.Sweep(sessionMaxIdle); removed > 0 {
				s.logger.Info("swept idle sessions", "removed", removed)
			}
		case <-s.stop:
			return
		}
	}
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "ok",
		"active_calls": s.sessions.Count(),
	})
}

// ToolInfo describes a catalogue entry for the listing endpoint.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleListTools(c *fiber.Ctx) error {
	catalogue := append(calcom.Catalogue(), calcom.EndCallTool())
	infos := make([]ToolInfo, len(catalogue))
	for i, t := range catalogue {
		infos[i] = ToolInfo{Name: t.Function.Name, Description: t.Function.Description}
	}
	return c.JSON(infos)
}
