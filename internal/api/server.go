package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kassa/internal/auth"
	"kassa/internal/cache"
	"kassa/internal/config"
	"kassa/internal/database"
	"kassa/internal/external"
	"kassa/internal/handlers"
	"kassa/internal/logger"
	"kassa/internal/messaging"
	"kassa/internal/metrics"
	"kassa/internal/middleware"
	"kassa/internal/repository"
	"kassa/internal/search"
	"kassa/internal/service"
)

// Server wires the HTTP API together: database, optional cache/search/
// broker, services and routes.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	search   *search.ElasticsearchClient
	services *service.Services
	repos    *repository.Repositories
	issuer   *auth.TokenIssuer
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	// Cache and search are optional: when unreachable or unconfigured the
	// API serves everything from Postgres.
	valkeyClient, err := cache.NewValkeyClient()
	if err != nil {
		logger.Get().Warn("Valkey unavailable, events cache disabled", "error", err)
		valkeyClient = nil
	}

	var esClient *search.ElasticsearchClient
	var searchIndex service.SearchIndex
	esConfig := config.LoadElasticsearchConfig()
	if esConfig.URL != "" {
		esClient, err = search.NewElasticsearchClient(esConfig)
		if err != nil {
			logger.Get().Warn("Elasticsearch unavailable, catalog search falls back to SQL", "error", err)
			esClient = nil
		} else {
			searchIndex = esClient
		}
	}

	webhookClient := external.NewWebhookClient(cfg.Webhook)
	marketData := external.NewMarketDataClient(cfg.MarketData)

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, issuer, natsClient, webhookClient, marketData, searchIndex)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(metrics.HTTPMiddleware())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		search:   esClient,
		services: services,
		repos:    repos,
		issuer:   issuer,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.valkey)
	requireAuth := middleware.RequireAuth(s.issuer, s.repos.Accounts)
	requireAdmin := middleware.RequireAdmin()

	api := s.router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
		}

		user := api.Group("/user", requireAuth)
		{
			user.GET("/me", h.Me)
			user.PUT("/update", h.UpdateMe)
			user.POST("/member-verify", h.MemberVerify)
			user.GET("/tickets", h.MyTickets)
		}

		events := api.Group("/events")
		{
			events.GET("", h.ListEvents)
			events.GET("/:id", h.GetEvent)
		}

		api.POST("/validate-coupon", requireAuth, h.ValidateCoupon)
		api.POST("/purchase-tickets", requireAuth, h.PurchaseTickets)

		tickets := api.Group("/tickets", requireAuth)
		{
			tickets.GET("/:id", h.GetTicket)
			tickets.POST("/:id/verify", requireAdmin, h.VerifyTicket)
		}

		api.GET("/signals/:symbol", requireAuth, h.GetSignals)

		admin := api.Group("/admin", requireAuth, requireAdmin)
		{
			adminEvents := admin.Group("/events")
			{
				adminEvents.GET("", h.AdminListEvents)
				adminEvents.POST("", h.AdminCreateEvent)
				adminEvents.PUT("/:id", h.AdminUpdateEvent)
				adminEvents.DELETE("/:id", h.AdminDeleteEvent)
			}

			adminCoupons := admin.Group("/coupons")
			{
				adminCoupons.GET("", h.AdminListCoupons)
				adminCoupons.POST("", h.AdminCreateCoupon)
				adminCoupons.PUT("/:id", h.AdminUpdateCoupon)
				adminCoupons.DELETE("/:id", h.AdminDeleteCoupon)
			}
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	health := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	// Search is optional, so a broken index degrades the report without
	// taking the service out of rotation.
	searchStatus := "disabled"
	if s.search != nil {
		searchStatus = "healthy"
		if err := s.search.HealthCheck(c.Request.Context()); err != nil {
			searchStatus = "unhealthy"
		}
	}

	c.JSON(status, gin.H{
		"status":   health.Status,
		"service":  "kassa-api",
		"database": health,
		"search":   searchStatus,
	})
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Get().Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
