// Package service exposes the episodic memory engine over HTTP so a
// chat front-end can record finished conversations and fetch priming
// directives.
package service

import (
	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/theapemachine/orb/pkg/memory"
)

// MemoryServer serves the remember/recall/directive surface.
type MemoryServer struct {
	app    *fiber.App
	engine *memory.Engine
	alpha  float64
	addr   string
}

// EpisodeRequest is the body of POST /episodes.
type EpisodeRequest struct {
	UserID string        `json:"user_id"`
	Turns  []memory.Turn `json:"turns"`
}

// RecallRequest is the body of POST /recall.
type RecallRequest struct {
	UserID string   `json:"user_id"`
	Query  string   `json:"query"`
	Alpha  *float64 `json:"alpha,omitempty"`
}

// NewMemoryServer constructs a server around the engine. alpha is the
// default fusion weight for recalls that do not supply their own.
func NewMemoryServer(engine *memory.Engine, alpha float64, addr string) *MemoryServer {
	return &MemoryServer{
		app: fiber.New(fiber.Config{
			AppName:      "orb",
			ServerHeader: "Orb-Memory-Server",
		}),
		engine: engine,
		alpha:  alpha,
		addr:   addr,
	}
}

func (srv *MemoryServer) Start() error {
	srv.routes()
	return srv.app.Listen(srv.addr, fiber.ListenConfig{DisableStartupMessage: true})
}

func (srv *MemoryServer) routes() {
	srv.app.Use(logger.New())
	srv.app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	srv.app.Get(healthcheck.ReadinessEndpoint, healthcheck.New())
	srv.app.Get("/", srv.handleRoot)
	srv.app.Post("/episodes", srv.handleEpisode)
	srv.app.Post("/recall", srv.handleRecall)
	srv.app.Get("/directive", srv.handleDirective)
}

// App returns the underlying fiber app, used by tests.
func (srv *MemoryServer) App() *fiber.App {
	srv.routes()
	return srv.app
}

func (srv *MemoryServer) handleRoot(ctx fiber.Ctx) error {
	return ctx.SendString("OK")
}

func (srv *MemoryServer) handleEpisode(ctx fiber.Ctx) error {
	var request EpisodeRequest

	if err := ctx.Bind().Body(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).SendString("invalid episode request: " + err.Error())
	}

	if len(request.Turns) == 0 {
		return ctx.Status(fiber.StatusBadRequest).SendString("episode request needs at least one turn")
	}

	episode, err := srv.engine.AddEpisode(ctx, request.Turns, request.UserID)

	if err != nil {
		log.Error("failed to add episode", "user", request.UserID, "error", err)
		return ctx.Status(fiber.StatusBadGateway).SendString(err.Error())
	}

	return ctx.Status(fiber.StatusCreated).JSON(episode)
}

func (srv *MemoryServer) handleRecall(ctx fiber.Ctx) error {
	var request RecallRequest

	if err := ctx.Bind().Body(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).SendString("invalid recall request: " + err.Error())
	}

	alpha := srv.alpha

	if request.Alpha != nil {
		alpha = *request.Alpha
	}

	results, err := srv.engine.Recall(ctx, request.UserID, request.Query, alpha)

	if err != nil {
		log.Error("recall failed", "user", request.UserID, "error", err)
		return ctx.Status(fiber.StatusBadGateway).SendString(err.Error())
	}

	return ctx.Status(fiber.StatusOK).JSON(results)
}

func (srv *MemoryServer) handleDirective(ctx fiber.Ctx) error {
	directive, err := srv.engine.Directive(
		ctx, ctx.Query("user_id"), ctx.Query("query"),
	)

	if err != nil {
		log.Error("directive failed", "error", err)
		return ctx.Status(fiber.StatusBadGateway).SendString(err.Error())
	}

	return ctx.SendString(directive)
}
