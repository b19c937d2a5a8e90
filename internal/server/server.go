package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/murasakijyuutann/transport-payment/internal/auth"
	"github.com/murasakijyuutann/transport-payment/internal/card"
	"github.com/murasakijyuutann/transport-payment/internal/config"
	"github.com/murasakijyuutann/transport-payment/internal/journey"
	"github.com/murasakijyuutann/transport-payment/internal/ledger"
	"github.com/murasakijyuutann/transport-payment/internal/station"
	"github.com/murasakijyuutann/transport-payment/internal/user"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Users    *user.Handler
	Cards    *card.Handler
	Stations *station.Handler
	Wallet   *ledger.Handler
	Journeys *journey.Handler
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

func New(cfg *config.Config, tokens *auth.Issuer, h Handlers, checks HealthChecks) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	router.GET("/health", Health(checks))
	router.GET("/metrics", Metrics())

	public := router.Group("/auth")
	{
		public.POST("/register", h.Users.Register)
		public.POST("/login", h.Users.Login)
		public.POST("/refresh", h.Users.RefreshToken)
	}

	// Card readers are unauthenticated; throttle them per client.
	readers := router.Group("/api/journeys")
	readers.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	{
		readers.POST("/tap-in", h.Journeys.TapIn)
		readers.POST("/tap-out", h.Journeys.TapOut)
		readers.GET("/active", h.Journeys.ActiveJourney)
	}

	router.GET("/api/stations", h.Stations.ListStations)
	router.GET("/api/stations/:code", h.Stations.GetStation)

	authMiddleware := auth.AuthMiddleware(tokens)
	protected := router.Group("/api")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", h.Users.GetMe)

		protected.GET("/cards", h.Cards.ListMyCards)
		protected.POST("/cards", h.Cards.RegisterCard)
		protected.POST("/cards/:cardNumber/block", h.Cards.BlockCard)

		protected.GET("/wallet", h.Wallet.GetBalance)
		protected.POST("/wallet/top-up", h.Wallet.TopUp)
		protected.GET("/wallet/transactions", h.Wallet.ListTransactions)
		protected.GET("/wallet/daily-spend", h.Wallet.DailySpend)

		protected.GET("/journeys/history", h.Journeys.History)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/journeys/sweep", h.Journeys.Sweep)
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. After Shutdown it returns
// http.ErrServerClosed.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
