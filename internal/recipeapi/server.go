// Package recipeapi serves the recipe service REST API: recipe CRUD and
// the consolidated shopping list.
package recipeapi

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"recipe-planner/internal/metrics"
	"recipe-planner/internal/shopping"
	"recipe-planner/internal/storage"
)

// MetricsRecorder receives one metric per served request.
type MetricsRecorder interface {
	Record(m metrics.RequestMetric) error
}

// Config wraps the knobs that impact runtime behavior.
type Config struct {
	Addr string
	// Secret enables bearer token auth on the recipe and shopping routes.
	Secret string
	// DataPath is reported on by the health endpoint.
	DataPath string
	// AccessLog enables fiber's access log lines.
	AccessLog bool
}

// Server exposes the Fiber application.
type Server struct {
	app     *fiber.App
	store   storage.Store
	mailer  shopping.Mailer
	metrics MetricsRecorder
	cfg     Config
}

// Option customises a Server.
type Option func(*Server)

// WithMailer enables emailing shopping lists.
func WithMailer(m shopping.Mailer) Option {
	return func(s *Server) { s.mailer = m }
}

// WithMetrics records request metrics to rec.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *Server) { s.metrics = rec }
}

// NewServer wires handlers and middleware.
func NewServer(cfg Config, store storage.Store, opts ...Option) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          errorHandler,
	})

	srv := &Server{app: app, store: store, cfg: cfg}
	for _, opt := range opts {
		opt(srv)
	}

	app.Use(recover.New())
	app.Use(requestID())
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} | ${status} | ${latency} | ${method} ${path} | ${locals:request_id}\n",
		}))
	}
	app.Use(cors.New())
	if srv.metrics != nil {
		app.Use(recordMetrics(srv.metrics))
	}

	srv.registerRoutes()
	return srv
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts listening for HTTP traffic until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.app.Shutdown()
	}()

	log.Printf("Recipe API listening on %s", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

func (s *Server) registerRoutes() {
	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to the Recipe API!"})
	})
	s.app.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	s.app.Get("/health", s.handleHealth)

	guarded := []fiber.Handler{}
	if s.cfg.Secret != "" {
		guarded = append(guarded, requireToken(s.cfg.Secret))
	}

	recipes := s.app.Group("/recipes", guarded...)
	recipes.Get("/", s.handleListRecipes)
	recipes.Post("/", s.handleCreateRecipe)
	recipes.Get("/:id<int>", s.handleGetRecipe)
	recipes.Put("/:id<int>", s.handleUpdateRecipe)
	recipes.Delete("/:id<int>", s.handleDeleteRecipe)

	s.app.Post("/shopping", append(guarded, s.handleShopping)...)
}

// errorHandler renders every error as {"error": message}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		requestLogger(c).WithError(err).Error("Unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
