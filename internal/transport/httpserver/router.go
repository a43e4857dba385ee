// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"content-scoring-service/internal/app/service"
	"content-scoring-service/internal/transport/httpserver/dto"
	"content-scoring-service/internal/transport/httpserver/handler"
	"content-scoring-service/internal/transport/httpserver/middleware"
	"content-scoring-service/internal/validator"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         int
	BodyLimit    int
	Debug        bool
	AdminUserIDs []string
}

// Services groups the application services exposed over HTTP.
type Services struct {
	Scoring  *service.ScoringService
	Earnings *service.EarningsService
	Audit    *service.AuditService
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// probes gate the readiness endpoint.
func NewServer(
	cfg ServerConfig,
	svcs Services,
	v *validator.Validator,
	logger *zap.Logger,
	probes ...middleware.Probe,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "content-scoring-service",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(logger),
		Views:        newViews(cfg.Debug),
	})

	// Health checks go first so probes answer even when later middleware is slow.
	app.Use(middleware.NewHealthCheck(logger, probes...))

	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(cors.New())
	app.Use(compress.New())

	itemHandler := handler.NewItemHandler(svcs.Scoring, svcs.Earnings, v, logger)
	userHandler := handler.NewUserHandler(svcs.Earnings, logger)
	adminHandler := handler.NewAdminHandler(svcs.Audit, logger)
	dashboardHandler := handler.NewDashboardHandler(svcs.Earnings, logger)

	registerRoutes(app, cfg.AdminUserIDs, itemHandler, userHandler, adminHandler, dashboardHandler)

	return &Server{
		App:    app,
		Logger: logger,
	}
}

// registerRoutes sets up all API routes.
func registerRoutes(
	app *fiber.App,
	adminUserIDs []string,
	itemHandler *handler.ItemHandler,
	userHandler *handler.UserHandler,
	adminHandler *handler.AdminHandler,
	dashboardHandler *handler.DashboardHandler,
) {
	// Health checks are handled by middleware (/livez, /readyz)

	app.Get("/dashboard/:userID", dashboardHandler.Render)

	v1 := app.Group("/api/v1")

	items := v1.Group("/items")
	items.Post("/", middleware.RequireUser(), itemHandler.Create)
	items.Get("/:id", itemHandler.Get)
	items.Get("/:id/points", itemHandler.Points)
	items.Post("/:id/ratings", middleware.RequireUser(), itemHandler.Rate)
	items.Post("/:id/downloads", middleware.RequireUser(), itemHandler.Download)
	items.Post("/:id/likes", middleware.RequireUser(), itemHandler.Like)

	users := v1.Group("/users")
	users.Get("/:id", userHandler.Get)
	users.Get("/:id/earnings", userHandler.Earnings)
	users.Get("/:id/earnings/monthly", userHandler.MonthlyEarnings)
	users.Get("/:id/items", userHandler.Items)

	admin := v1.Group("/admin", middleware.RequireUser(), middleware.RequireAdmin(adminUserIDs))
	admin.Post("/audit", adminHandler.Audit)
}

// errorHandler returns a custom error handler that logs based on HTTP status code.
// 404s are logged at DEBUG level, 4xx at WARN, 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		fields := []zap.Field{
			zap.Int("status", code),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
		}

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("route not found", fields...)
		case code >= 500:
			logger.Error("server error", append(fields, zap.Error(err))...)
		default:
			logger.Warn("client error", append(fields, zap.Error(err))...)
		}

		return c.Status(code).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "UNHANDLED_ERROR",
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.ShutdownWithContext(ctx)
}
