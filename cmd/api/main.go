package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-streaks/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-streaks/internal/config"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/workers"
	"github.com/comitanigiacomo/kanso-streaks/internal/logger"
	"github.com/comitanigiacomo/kanso-streaks/internal/metrics"
)

// @title Kanso Streaks API
// @version 1.0
// @description Habit tracking with daily and weekly-quota streaks.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Critical: failed to build logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped with error", zap.Error(err))
	}
}

type storage struct {
	db     *sqlx.DB
	redis  *redis.Client
	users  domain.UserRepository
	habits domain.HabitRepository
	logs   domain.HabitLogRepository
}

func (s *storage) Close() {
	if s.redis != nil {
		s.redis.Close()
	}
	s.db.Close()
}

// openStorage connects to Postgres, applies the schema and, when configured,
// puts the Redis cache in front of the habit repository.
func openStorage(ctx context.Context, cfg *config.Config, zl *zap.Logger) (*storage, error) {
	zl.Info("connecting to database", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))

	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	st := &storage{
		db:    db,
		users: repository.NewPostgresUserRepository(db.DB),
		logs:  repository.NewPostgresHabitLogRepository(db),
	}

	var habits domain.HabitRepository = repository.NewPostgresHabitRepository(db)
	if cfg.RedisEnabled() {
		rdb, err := cache.NewRedisClient(ctx, cache.Options{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			zl.Warn("redis unavailable, running without cache", zap.Error(err))
		} else {
			st.redis = rdb
			habits = repository.NewCachedHabitRepository(habits, rdb, cfg.HabitCacheTTL, zl)
		}
	}
	st.habits = habits

	return st, nil
}

type app struct {
	router       *gin.Engine
	worker       *workers.StreakWorker
	localLimiter *middleware.LocalRateLimiter
}

func newApp(cfg *config.Config, zl *zap.Logger, st *storage, m *metrics.Metrics) *app {
	worker := workers.NewStreakWorker(st.habits, st.logs, st.users,
		workers.WithQueueSize(cfg.WorkerQueueSize),
		workers.WithLogger(zl),
		workers.WithMetrics(m),
		workers.WithFallbackLocation(cfg.DefaultTimezone),
	)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL, st.users)
	authSvc := services.NewAuthService(st.users, tokens)
	userSvc := services.NewUserService(st.users)
	habitSvc := services.NewHabitService(st.habits, worker)
	logSvc := services.NewLogService(st.logs, habitSvc, worker)
	dashboardSvc := services.NewDashboardService(st.users, st.habits, st.logs, cfg.DefaultTimezone)
	statsSvc := services.NewStatsService(st.users, st.habits, st.logs, cfg.DefaultTimezone)

	var local *middleware.LocalRateLimiter
	if st.redis == nil && cfg.RateLimit > 0 {
		local = middleware.NewLocalRateLimiter(cfg.RateLimit, cfg.RateWindow)
	}

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(authSvc),
		UserHandler:      adapterHTTP.NewUserHandler(userSvc),
		HabitHandler:     adapterHTTP.NewHabitHandler(habitSvc),
		LogHandler:       adapterHTTP.NewLogHandler(logSvc),
		DashboardHandler: adapterHTTP.NewDashboardHandler(dashboardSvc, m),
		StatsHandler:     adapterHTTP.NewStatsHandler(statsSvc),
		TokenValidator:   tokens,
		DB:               st.db,
		Redis:            st.redis,
		LocalLimiter:     local,
		Logger:           zl,
		Metrics:          m,
		RateLimit:        cfg.RateLimit,
		RateWindow:       cfg.RateWindow,
		CORSOrigins:      cfg.CORSOrigins,
		StartTime:        time.Now(),
	})

	return &app{router: router, worker: worker, localLimiter: local}
}

// start launches the background goroutines. They stop when ctx is done.
func (a *app) start(ctx context.Context) {
	a.worker.Start(ctx)
	if a.localLimiter != nil {
		go a.localLimiter.Cleanup(ctx)
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer st.Close()

	zl.Info("database connected", zap.Bool("redis", st.redis != nil))

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	a := newApp(cfg, zl, st, metrics.New())
	a.start(workerCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zl.Info("kanso streaks running", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		cancelWorkers()
		a.worker.Wait()
		return err
	case <-ctx.Done():
	}

	zl.Info("stop signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
	}

	// Requests are drained, so nothing enqueues anymore.
	cancelWorkers()
	a.worker.Wait()

	zl.Info("server stopped gracefully")
	return nil
}
