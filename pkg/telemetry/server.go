// Package telemetry provides the ground-test status surface: a small HTTP
// API over the control loop plus a websocket stream of cycle snapshots.
package telemetry

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/JH-ESCL/helimix/internal/log"
	"github.com/JH-ESCL/helimix/pkg/heli"
	"github.com/JH-ESCL/helimix/pkg/hub"
)

// Server exposes loop diagnostics and test controls over HTTP.
type Server struct {
	app  *fiber.App
	port string

	loop      *heli.Loop
	statusHub *hub.Hub
}

// NewServer builds the telemetry server around a control loop.
func NewServer(loop *heli.Loop, port string) *Server {
	s := &Server{
		port:      port,
		loop:      loop,
		statusHub: hub.New("status"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "helimix telemetry",
		DisableStartupMessage: true,
	})

	// CORS for local ground-station tooling
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/params", s.handleParams)
	api.Get("/prearm", s.handlePreArm)
	api.Post("/command", s.handleCommand)
	api.Post("/rotor", s.handleRotor)
	api.Post("/inject/:name", s.handleInject)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start starts the telemetry server. Blocks.
func (s *Server) Start() error {
	go s.statusHub.Run()
	log.Info("telemetry listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the telemetry server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("telemetry server failed", "err", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// PublishStatus broadcasts a loop snapshot to websocket subscribers.
// Safe to call from the control loop's OnTick hook; slow clients are
// dropped rather than back-pressuring the loop.
func (s *Server) PublishStatus(status heli.LoopStatus) {
	if s.statusHub.ClientCount() == 0 {
		return
	}
	s.statusHub.BroadcastJSON(status)
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.loop.Snapshot())
}

func (s *Server) handleParams(c *fiber.Ctx) error {
	return c.JSON(s.loop.Mixer().Params())
}

func (s *Server) handlePreArm(c *fiber.Ctx) error {
	ok, reason := s.loop.Mixer().ParameterCheck()
	return c.JSON(fiber.Map{"ok": ok, "reason": reason})
}

type commandRequest struct {
	Roll       float64 `json:"roll"`
	Pitch      float64 `json:"pitch"`
	Collective float64 `json:"collective"`
	Yaw        float64 `json:"yaw"`
}

func (s *Server) handleCommand(c *fiber.Ctx) error {
	var req commandRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s.loop.SetCommand(req.Roll, req.Pitch, req.Collective, req.Yaw)
	return c.JSON(fiber.Map{"ok": true})
}

type rotorRequest struct {
	Desired float64 `json:"desired"`
}

func (s *Server) handleRotor(c *fiber.Ctx) error {
	var req rotorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s.loop.Mixer().SetDesiredRotorSpeed(req.Desired)
	return c.JSON(fiber.Map{"ok": true})
}

type injectRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleInject(c *fiber.Ctx) error {
	name := c.Params("name")
	switch name {
	case heli.InjectSlowStart, heli.InjectExcitation, heli.InjectChirp, heli.InjectFault:
	default:
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("unknown injector %q", name))
	}
	var req injectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s.loop.Mixer().SetInjectorEnabled(name, req.Enabled)
	return c.JSON(fiber.Map{"ok": true, "injector": name, "enabled": req.Enabled})
}

func (s *Server) handleStatusWS(conn *websocket.Conn) {
	client := hub.NewClient(s.statusHub, conn)
	client.Run()
}
