// Package httpcontroller exposes the scan pipeline over HTTP: the public
// prediction and locations API, health probes, metrics, and the
// cookie-authenticated admin map view.
package httpcontroller

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/Keithclinton/Counter-Front/internal/conf"
	"github.com/Keithclinton/Counter-Front/internal/datastore"
	"github.com/Keithclinton/Counter-Front/internal/logging"
	"github.com/Keithclinton/Counter-Front/internal/observability"
	"github.com/Keithclinton/Counter-Front/internal/processor"
)

// Server wires the echo router to the scan pipeline.
type Server struct {
	Echo      *echo.Echo
	Settings  *conf.Settings
	DS        datastore.Interface
	Processor *processor.Processor
	Metrics   *observability.Metrics

	sessions      *sessions.CookieStore
	locationCache *cache.Cache
	logger        *slog.Logger
	webLogger     *slog.Logger
	webLogClose   func() error
	startTime     time.Time
}

// New builds a Server with all middleware and routes registered. The
// returned server is started with Start and stopped with Shutdown.
func New(settings *conf.Settings, ds datastore.Interface, proc *processor.Processor, metrics *observability.Metrics) (*Server, error) {
	secret := settings.Security.SessionSecret
	if secret == "" {
		secret = conf.GenerateRandomSecret()
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(settings.Security.SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   !settings.WebServer.Debug,
		SameSite: http.SameSiteStrictMode,
	}

	s := &Server{
		Echo:          echo.New(),
		Settings:      settings,
		DS:            ds,
		Processor:     proc,
		Metrics:       metrics,
		sessions:      store,
		locationCache: cache.New(1*time.Minute, 5*time.Minute),
		logger:        logging.ForService("httpcontroller"),
		startTime:     time.Now(),
	}

	s.Echo.HideBanner = true
	s.Echo.HidePort = true

	if settings.WebServer.Log.Enabled {
		webLogger, closeFn, err := logging.NewFileLogger(settings.WebServer.Log, "web", slog.LevelInfo)
		if err != nil {
			s.logger.Warn("failed to initialize web log file, logging to stdout only", "error", err)
		} else {
			s.webLogger = webLogger
			s.webLogClose = closeFn
		}
	}

	s.configureMiddleware()
	s.initRoutes()
	return s, nil
}

func (s *Server) configureMiddleware() {
	s.Echo.Use(middleware.Recover())

	origins := s.Settings.WebServer.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	if max := s.Settings.Upload.MaxSize; max > 0 {
		// Slack over the raw image size covers multipart framing overhead.
		s.Echo.Use(middleware.BodyLimit(fmt.Sprintf("%dB", max+64*1024)))
	}

	s.Echo.Use(s.accessLogMiddleware())
}

// accessLogMiddleware logs each request to the structured web logger, or to
// the service logger when no web log file is configured.
func (s *Server) accessLogMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			target := s.webLogger
			if target == nil {
				target = s.logger
			}
			target.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"ip", v.RemoteIP,
				"latency_ms", v.Latency.Milliseconds(),
				"user_agent", v.UserAgent)
			return nil
		},
	})
}

// predictRateLimiter limits prediction requests per client IP. The
// configured value is requests per minute.
func (s *Server) predictRateLimiter() echo.MiddlewareFunc {
	perMinute := s.Settings.WebServer.RateLimit
	if perMinute <= 0 {
		perMinute = 60
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perMinute / 60),
			Burst:     int(perMinute),
			ExpiresIn: 3 * time.Minute,
		}),
	})
}

func (s *Server) initRoutes() {
	s.Echo.GET("/", s.handleHome)
	s.Echo.GET("/health", s.handleHealth)
	s.Echo.GET("/predict/health", s.handlePredictHealth)
	s.Echo.POST("/predict", s.handlePredict, s.predictRateLimiter())
	s.Echo.GET("/api/locations", s.handleLocations)
	s.Echo.GET("/Uploads/:filename", s.handleUploadedFile)
	s.Echo.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))

	if s.Settings.AdminEnabled() {
		s.Echo.GET("/admin/login", s.handleLoginPage)
		s.Echo.POST("/admin/login", s.handleLogin)
		s.Echo.GET("/admin/logout", s.handleLogout)
		s.Echo.GET("/admin/map", s.handleAdminMap)
	} else {
		s.logger.Warn("admin credentials not configured, admin routes disabled")
	}
}

// Start runs the HTTP server until it fails or is shut down.
func (s *Server) Start() error {
	addr := ":" + s.Settings.WebServer.Port
	s.logger.Info("starting web server", "address", addr)
	if err := s.Echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and closes the web log file.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	if s.webLogClose != nil {
		if closeErr := s.webLogClose(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
