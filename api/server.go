package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/OldStager01/parksense/api/handlers"
	"github.com/OldStager01/parksense/api/middleware"
	"github.com/OldStager01/parksense/api/websocket"
	_ "github.com/OldStager01/parksense/docs"
	"github.com/OldStager01/parksense/internal/auth"
	"github.com/OldStager01/parksense/pkg/config"
	"github.com/OldStager01/parksense/pkg/models"
)

const maxRequestBody = 1 << 20

// Options carries the server dependencies. Everything except Service and
// Users may be nil.
type Options struct {
	Service handlers.ParkingService
	Users   handlers.Authenticator
	Events  <-chan *models.Event
	DB      handlers.HealthChecker
	Cache   handlers.HealthChecker
	MQTT    handlers.ConnectionChecker
}

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      config.APIConfig
	opts        Options
	authService *auth.Service
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
	stop        chan struct{}
}

func NewServer(cfg config.APIConfig, wsCfg config.WebSocketConfig, opts Options) *Server {
	if cfg.JWTSecret == "" || cfg.JWTSecret == "change-me-in-production" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	authService := auth.NewServiceWithIssuer(cfg.JWTSecret, cfg.JWTDuration, cfg.JWTIssuer)
	wsHub := websocket.NewHub(&wsCfg)

	s := &Server{
		router:      router,
		config:      cfg,
		opts:        opts,
		authService: authService,
		wsHub:       wsHub,
		stop:        make(chan struct{}),
	}

	s.setupMiddleware()
	s.setupRoutes()

	go wsHub.Run()

	if opts.Events != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, opts.Events)
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.CORS(middleware.CORSConfigFrom(s.config.CORS)))
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.RequestSizeLimit(maxRequestBody))

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit, time.Minute)
	rateLimiter.StartCleanup(s.stop)
	s.router.Use(middleware.RateLimit(rateLimiter))

	endpointLimiter := middleware.NewEndpointRateLimiter()
	endpointLimiter.AddEndpoint(http.MethodPost, "/refresh", 6, time.Minute)
	s.router.Use(endpointLimiter.Middleware())
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.opts.DB, s.opts.Cache, s.opts.Service, s.opts.MQTT)
	authHandler := handlers.NewAuthHandler(s.opts.Users, s.authService)
	spotHandler := handlers.NewSpotHandler(s.opts.Service, &s.config)
	spotHandler.OnChange = func(spot models.ParkingSpot) {
		websocket.BroadcastSpotState(s.wsHub, spot)
	}
	metricsHandler := handlers.NewMetricsHandler(s.opts.Service)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router.POST("/auth/login", middleware.AuthRateLimiter(), authHandler.Login)

	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	s.router.GET("/spots", spotHandler.List)
	s.router.GET("/spots/:id", spotHandler.Get)
	s.router.GET("/spots/:id/history", spotHandler.History)
	s.router.GET("/spots/:id/periods", spotHandler.Periods)
	s.router.GET("/spots/:id/metrics", spotHandler.Metrics)

	s.router.GET("/metrics/global", metricsHandler.Global)
	s.router.GET("/metrics/hourly", metricsHandler.Hourly)
	s.router.GET("/metrics/hourly/chart", metricsHandler.HourlyChart)
	s.router.GET("/metrics/peak-hours", metricsHandler.PeakHours)
	s.router.GET("/stats", metricsHandler.Stats)

	protected := s.router.Group("/")
	protected.Use(middleware.JWTAuth(s.authService))
	{
		protected.POST("/spots/:id/observations", spotHandler.AddObservation)
		protected.DELETE("/spots/:id/history", spotHandler.ResetHistory)
		protected.POST("/refresh", metricsHandler.Refresh)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	idle := s.config.IdleTimeout
	if idle <= 0 {
		idle = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  idle,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}
	s.wsHub.Stop()
	close(s.stop)

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) AuthService() *auth.Service {
	return s.authService
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
