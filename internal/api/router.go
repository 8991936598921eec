package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/mirada/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/mirada/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/mirada/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/mirada/internal/config"
	"github.com/saturnino-fabrica-de-software/mirada/internal/upload"
	"github.com/saturnino-fabrica-de-software/mirada/internal/ws"
)

// Version is reported by /health and the API docs
const Version = "0.3.0"

// room for multipart headers around a file of MaxUploadSize bytes
const formOverhead = 64 * 1024

type Dependencies struct {
	Analyzer handler.Analyzer
	Store    *upload.Store
	// Checks are pinged by /ready, keyed by name
	Checks map[string]handler.Pinger
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	cfg         *config.Config
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
	streams     *ws.Hub
}

func NewRouter(logger *slog.Logger, cfg *config.Config, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Mirada API",
		BodyLimit:    cfg.MaxUploadSize + formOverhead,
	})

	return &Router{
		app:    app,
		logger: logger,
		cfg:    cfg,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.cfg.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger(Version)
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints are not rate limited
	var checks map[string]handler.Pinger
	if r.deps != nil {
		checks = r.deps.Checks
	}
	healthHandler := handler.NewHealthHandler(Version, checks)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	// Non-positive limit disables rate limiting
	if r.cfg.RateLimitPerMinute > 0 {
		rlConfig := middleware.DefaultRateLimiterConfig()
		rlConfig.Max = r.cfg.RateLimitPerMinute
		r.rateLimiter = middleware.NewRateLimiter(rlConfig)
		r.app.Use(r.rateLimiter.Handler())
	}

	gazeHandler := handler.NewGazeHandler(r.deps.Analyzer, r.deps.Store, int64(r.cfg.MaxUploadSize), r.logger)
	r.app.Get("/", gazeHandler.Index)
	r.app.Post("/process_image", gazeHandler.ProcessImage)

	r.streams = ws.NewHub()
	r.app.Get("/ws/gaze", ws.UpgradeMiddleware(), ws.Handler(r.streams, r.deps.Analyzer, int64(r.cfg.MaxUploadSize), r.logger))
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Close open streams so their handlers return
	if r.streams != nil {
		r.streams.Close()
	}

	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
