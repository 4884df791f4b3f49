package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/comitanigiacomo/kanso-streaks/docs"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-streaks/internal/metrics"
)

type RouterDependencies struct {
	AuthHandler      *AuthHandler
	UserHandler      *UserHandler
	HabitHandler     *HabitHandler
	LogHandler       *LogHandler
	DashboardHandler *DashboardHandler
	StatsHandler     *StatsHandler
	TokenValidator   middleware.TokenValidator

	DB           *sqlx.DB
	Redis        *redis.Client
	LocalLimiter *middleware.LocalRateLimiter
	Logger       *zap.Logger
	Metrics      *metrics.Metrics

	RateLimit   int
	RateWindow  time.Duration
	CORSOrigins []string
	StartTime   time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/health", healthHandler(deps))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")

	// Only the API is rate limited; health checks and scrapes are not.
	switch {
	case deps.RateLimit <= 0:
	case deps.Redis != nil:
		apiV1.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, deps.RateWindow, logger, deps.Metrics))
	case deps.LocalLimiter != nil:
		apiV1.Use(deps.LocalLimiter.Middleware(deps.Metrics))
	}

	deps.AuthHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenValidator, deps.Metrics))
	{
		deps.UserHandler.RegisterRoutes(protected)
		deps.HabitHandler.RegisterRoutes(protected)
		deps.LogHandler.RegisterRoutes(protected)
		deps.DashboardHandler.RegisterRoutes(protected)
		deps.StatsHandler.RegisterRoutes(protected)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// healthHandler reports 503 when the database is down. Redis is optional,
// so it only degrades the status when it was configured and fails.
func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		dbStatus := "connected"
		if deps.DB == nil || deps.DB.PingContext(ctx) != nil {
			dbStatus = "unreachable"
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				redisStatus = "unreachable"
			}
		}

		status, code := "ok", http.StatusOK
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}
