package http

import (
	"time"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	rateLimitCacheSize = 10_000
	rateLimitTTL       = time.Hour
)

type RouterDeps struct {
	Handler *Handler
	Guard   middleware.Authenticator
	Config  *config.Config
	Metrics *metrics.Metrics
	Log     *zap.Logger
	// Stop завершает фоновые горутины middleware.
	Stop <-chan struct{}
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Log))
	router.Use(middleware.Metrics(d.Metrics))
	if d.Config.RateLimitRPS > 0 {
		router.Use(middleware.NewHTTPRateLimitPerIP(
			d.Config.RateLimitRPS, d.Config.RateLimitBurst, rateLimitCacheSize, rateLimitTTL, d.Stop,
		))
	}

	if len(d.Config.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: d.Config.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders: []string{
				"Origin", "Content-Type", "Accept",
				"Authorization",
				"X-Requested-With",
			},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: d.Config.AllowCredentials,
			MaxAge:           12 * time.Hour,
		}))
	}

	h := d.Handler
	auth := middleware.RequireAuth(d.Guard, d.Metrics)

	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/registration", h.Register)
		api.POST("/activate-user", h.Activate)
		api.POST("/login-user", h.Login)
		api.POST("/social-auth", h.SocialAuth)
		api.GET("/refresh-token", h.Refresh)

		api.GET("/logout-user", auth, h.Logout)
		api.GET("/profile-info", auth, h.UserInfo)
		api.PUT("/update-user-info", auth, h.UpdateUserInfo)
		api.PUT("/update-user-password", auth, h.UpdatePassword)
		api.PUT("/update-user-avatar", auth, h.UpdateAvatar)
		api.POST("/create-order", auth, h.CreateOrder)
	}

	router.NoRoute(h.NotFound)

	return router
}
