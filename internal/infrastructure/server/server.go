package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/giapha/core/docs"
	httpHandlers "github.com/giapha/core/internal/adapters/http"
	"github.com/giapha/core/internal/application/services"
	"github.com/giapha/core/internal/domain/family"
	"github.com/giapha/core/internal/infrastructure/config"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/infrastructure/metrics"
)

// Server represents the HTTP server
type Server struct {
	echo      *echo.Echo
	config    *config.Config
	logger    *logger.Logger
	container *services.Container
	metrics   *metrics.Metrics
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance around an already loaded container.
func New(cfg *config.Config, appLogger *logger.Logger, container *services.Container, m *metrics.Metrics) *Server {
	e := echo.New()

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	server := &Server{
		echo:      e,
		config:    cfg,
		logger:    appLogger,
		container: container,
		metrics:   m,
	}

	server.setupMiddleware()

	// Metrics middleware must wrap the routes registered below.
	if cfg.Metrics.Enabled && m != nil {
		server.setupMetrics()
	}

	server.setupRoutes()

	return server
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			latency := float64(values.Latency.Nanoseconds()) / 1000000
			log := s.logger.WithRequestID(values.RequestID)
			if values.Error != nil {
				log.WithError(values.Error).Errorw("HTTP request failed",
					"method", values.Method,
					"uri", values.URI,
					"status", values.Status,
					"latency_ms", latency,
					"remote_ip", values.RemoteIP,
				)
				return nil
			}
			log.LogHTTPRequest(values.Method, values.URI, values.UserAgent, values.RemoteIP, values.Status, latency)
			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  splitOrigins(s.config.Security.CORSAllowedOrigins),
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))

	if s.config.Security.RateLimitRequests > 0 {
		window := s.config.Security.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		limit := rate.Every(window / time.Duration(s.config.Security.RateLimitRequests))
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: func(c echo.Context) bool {
				return strings.HasPrefix(c.Path(), "/health") || c.Path() == "/ready"
			},
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      limit,
				Burst:     s.config.Security.RateLimitRequests,
				ExpiresIn: window,
			}),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(context echo.Context, err error) error {
				return context.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
			},
			DenyHandler: func(context echo.Context, identifier string, err error) error {
				return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
			},
		}))
	}

	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         31536000,
	}))

	s.echo.Use(middleware.RequestID())

	if s.config.Server.RequestTimeout > 0 {
		s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Skipper: func(c echo.Context) bool {
				return strings.HasPrefix(c.Path(), "/swagger")
			},
			Timeout: s.config.Server.RequestTimeout,
		}))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	c := s.container
	authHandler := httpHandlers.NewAuthHandler(c.Auth, s.logger)
	treeHandler := httpHandlers.NewTreeHandler(c.Site, c.Family, s.logger)
	contentHandler := httpHandlers.NewContentHandler(c.Content, s.logger)
	syncHandler := httpHandlers.NewSyncHandler(c.Sync, s.logger)
	exportHandler := httpHandlers.NewExportHandler(c.Export, s.logger)
	viewHandler := httpHandlers.NewViewHandler(c.Views, s.logger)

	admin := []echo.MiddlewareFunc{s.authMiddleware(c.Auth), s.requireRole(services.RoleAdmin)}

	v1 := s.echo.Group("/api/v1")

	v1.POST("/auth/login", authHandler.Login)

	// Site and tree
	v1.GET("/site", treeHandler.GetSite)
	v1.PATCH("/content", contentHandler.PatchContent, admin...)

	tree := v1.Group("/tree")
	tree.GET("", treeHandler.GetTree)
	tree.GET("/anniversaries", treeHandler.GetAnniversaries)
	tree.GET("/members/:id", treeHandler.GetMember)
	tree.POST("/members/:id/children", treeHandler.AddChild, admin...)
	tree.PUT("/members/:id", treeHandler.UpdateMember, admin...)
	tree.DELETE("/members/:id", treeHandler.DeleteMember, admin...)

	// News and events
	v1.GET("/news", contentHandler.ListNews)
	v1.PUT("/news", contentHandler.UpsertNews, admin...)
	v1.DELETE("/news/:id", contentHandler.DeleteNews, admin...)
	v1.GET("/events", contentHandler.GetCalendar)
	v1.POST("/events", contentHandler.AddEvent, admin...)
	v1.DELETE("/events/:id", contentHandler.DeleteEvent, admin...)

	// Sync
	sync := v1.Group("/sync", admin...)
	sync.GET("/settings", syncHandler.GetSettings)
	sync.PUT("/settings", syncHandler.UpdateSettings)
	sync.POST("", syncHandler.Sync)

	// Exports
	export := v1.Group("/export", admin...)
	export.GET("/tree.json", exportHandler.TreeJSON)
	export.GET("/tree.csv", exportHandler.TreeCSV)
	export.GET("/tree.png", exportHandler.TreePNG)
	export.GET("/backup.json", exportHandler.Backup)

	// Tree views
	views := v1.Group("/views")
	views.POST("", viewHandler.CreateView)
	views.GET("/:id", viewHandler.GetView)
	views.DELETE("/:id", viewHandler.DeleteView)
	views.PUT("/:id/size", viewHandler.Resize)
	views.PUT("/:id/search", viewHandler.Search)
	views.POST("/:id/toggle/:memberId", viewHandler.Toggle)
	views.POST("/:id/gestures", viewHandler.Gesture)
	views.POST("/:id/wheel", viewHandler.Wheel)
	views.POST("/:id/zoom", viewHandler.Zoom)
	views.POST("/:id/reset", viewHandler.Reset)
	views.GET("/:id/snapshot.png", viewHandler.Snapshot, admin...)
}

// setupMetrics installs the request metrics middleware and the scrape endpoint.
func (s *Server) setupMetrics() {
	m := s.metrics
	path := s.config.Metrics.Path
	if path == "" {
		path = "/metrics"
	}

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}

			m.RequestsTotal.WithLabelValues(c.Request().Method, c.Path(), fmt.Sprintf("%d", status)).Inc()
			m.RequestDuration.WithLabelValues(c.Request().Method, c.Path()).Observe(time.Since(start).Seconds())

			return err
		}
	})

	s.echo.GET(path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	gateway := s.container.Gateway
	if err := gateway.Ping(c.Request().Context()); err != nil {
		status = "degraded"
		checks["storage"] = map[string]interface{}{
			"status": "error",
			"driver": gateway.Driver(),
			"error":  err.Error(),
		}
	} else {
		storage := map[string]interface{}{
			"status": "ok",
			"driver": gateway.Driver(),
		}
		if stats := gateway.Stats(); stats != nil {
			storage["stats"] = stats
		}
		checks["storage"] = storage
	}

	data := s.container.Site.Data()
	checks["site"] = map[string]interface{}{
		"clan_name":    data.ClanName,
		"last_updated": data.LastUpdated,
		"members":      family.Count(data.FamilyTree),
	}
	checks["views"] = map[string]interface{}{
		"sessions": s.container.Views.Len(),
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  runtime.Version(),
		},
	}

	// A failing store degrades the report without failing it.
	return c.JSON(http.StatusOK, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.container.Gateway.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "storage_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)

	srv := &http.Server{
		Addr:         address,
		Handler:      s.echo,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}
	err := s.echo.StartServer(srv)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		var he *echo.HTTPError
		var ve validator.ValidationErrors
		switch {
		case errors.As(err, &he):
			code = he.Code
			msg = map[string]interface{}{"error": http.StatusText(code), "message": he.Message}
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		case errors.As(err, &ve):
			code = http.StatusBadRequest
			msg = map[string]string{"error": http.StatusText(code), "message": "validation failed", "details": ve.Error()}
		default:
			msg = map[string]string{"error": http.StatusText(code), "message": http.StatusText(code)}
		}

		if code >= http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
