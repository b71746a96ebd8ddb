// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"engagement-score-service/internal/app/service"
	"engagement-score-service/internal/metrics"
	"engagement-score-service/internal/transport/httpserver/dto"
	"engagement-score-service/internal/transport/httpserver/handler"
	"engagement-score-service/internal/transport/httpserver/middleware"
	"engagement-score-service/internal/validator"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         int
	BodyLimit    int
	Debug        bool
	TemplatesDir string
	MaxBatchSize int
	MetricsPath  string
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// collector may be nil to disable metrics; readiness checks are optional.
func NewServer(
	cfg ServerConfig,
	scoreSvc *service.ScoreService,
	v *validator.Validator,
	collector *metrics.Collector,
	logger *zap.Logger,
	readiness ...middleware.ReadinessFunc,
) *Server {
	engine := html.New(cfg.TemplatesDir, ".html")
	if cfg.Debug {
		engine.Reload(true)
	}

	app := fiber.New(fiber.Config{
		AppName:      "engagement-score-service",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(logger),
		Views:        engine,
	})

	// Health check middleware MUST be registered BEFORE other middleware
	// so probes answer even under load
	app.Use(middleware.NewHealthCheck(readiness...))

	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	if collector != nil {
		app.Use(collector.Middleware())
	}
	app.Use(cors.New())
	app.Use(compress.New())

	scoreHandler := handler.NewScoreHandler(scoreSvc, v, cfg.MaxBatchSize, logger)
	calculatorHandler := handler.NewCalculatorHandler(scoreSvc, cfg.MaxBatchSize, logger)
	adminHandler := handler.NewAdminHandler(scoreSvc, logger)

	if collector != nil {
		metricsPath := cfg.MetricsPath
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		app.Get(metricsPath, adaptor.HTTPHandler(collector.Handler()))
	}

	registerRoutes(app, scoreHandler, calculatorHandler, adminHandler)

	return &Server{
		App:    app,
		Logger: logger,
	}
}

// registerRoutes sets up the HTML page and API routes.
func registerRoutes(
	app *fiber.App,
	scoreHandler *handler.ScoreHandler,
	calculatorHandler *handler.CalculatorHandler,
	adminHandler *handler.AdminHandler,
) {
	// Health checks are handled by middleware (/livez, /readyz)

	app.Get("/calculator", calculatorHandler.Render)
	app.Post("/calculator", calculatorHandler.Submit)
	app.Get("/calculator/batch", calculatorHandler.RenderBatch)
	app.Post("/calculator/batch", calculatorHandler.SubmitBatch)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/calculator")
	})

	v1 := app.Group("/api/v1")

	scores := v1.Group("/scores")
	scores.Post("/post", scoreHandler.ScorePost)
	scores.Post("/batch", scoreHandler.ScoreBatch)

	admin := v1.Group("/admin")
	admin.Delete("/cache", adminHandler.ClearCache)
}

// errorHandler returns a custom error handler that logs based on HTTP status code.
// 404s are logged at DEBUG level, 4xx at WARN, 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		errCode := "INTERNAL_ERROR"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			errCode = errorCode(code)
		}

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		message := err.Error()
		if code >= 500 {
			message = "internal server error"
		}

		return c.Status(code).JSON(dto.ErrorResponse{
			Error: message,
			Code:  errCode,
		})
	}
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	default:
		if status >= 500 {
			return "INTERNAL_ERROR"
		}
		return "BAD_REQUEST"
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.Shutdown()
}
