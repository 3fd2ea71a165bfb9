package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"tasktracker/internal/access"
	"tasktracker/internal/config"
	apphttp "tasktracker/internal/http"
	"tasktracker/internal/repository"
	"tasktracker/internal/repository/postgres"
	"tasktracker/internal/repository/sqlite"
	"tasktracker/internal/service"
)

const version = "1.0.0"

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	configureLogger(logger, cfg)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer repos.close()

	if err := repos.tasks.Init(ctx); err != nil {
		logger.Fatalf("init task repository: %v", err)
	}
	if err := repos.users.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	logger.Infof("connected to %s database", cfg.Database.Driver)

	clock := service.NewMonotonicClock()
	taskService := service.NewTaskService(repos.tasks, service.TaskConfig{
		Policy: access.NewPolicy(cfg.Tasks.DefaultLimit, cfg.Tasks.MaxLimit),
		Logger: logger,
		Now:    clock.Now,
	})
	userService := service.NewUserService(repos.users, service.UserConfig{
		BcryptCost:       cfg.Auth.BcryptCost,
		AllowAdminSignup: cfg.Auth.AllowAdminSignup,
		Logger:           logger,
		Now:              clock.Now,
	})
	tokenService, err := service.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	if err != nil {
		logger.Fatalf("token service: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := apphttp.NewMetrics(registry)

	limiter, closeLimiter := buildLimiter(ctx, cfg, logger)
	defer closeLimiter()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(apphttp.Options{
		Tasks:       taskService,
		Users:       userService,
		Tokens:      tokenService,
		Logger:      logger,
		Metrics:     metrics,
		AuthLimiter: limiter,
		DB:          repos.ping,
		Version:     version,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

type store struct {
	tasks repository.TaskRepository
	users repository.UserRepository
	ping  apphttp.Pinger
	close func()
}

func openStore(ctx context.Context, cfg config.Config) (*store, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &store{
			tasks: sqlite.NewTaskRepository(db),
			users: sqlite.NewUserRepository(db),
			ping:  apphttp.PingerFunc(db.PingContext),
			close: func() { db.Close() },
		}, nil
	default:
		pool, err := postgres.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			return nil, err
		}
		return &store{
			tasks: postgres.NewTaskRepository(pool),
			users: postgres.NewUserRepository(pool),
			ping:  apphttp.PingerFunc(pool.Ping),
			close: pool.Close,
		}, nil
	}
}

// buildLimiter returns nil when redis is not configured or unreachable; auth routes are then unlimited.
func buildLimiter(ctx context.Context, cfg config.Config, logger *logrus.Logger) (apphttp.Limiter, func()) {
	if cfg.Redis.Addr == "" {
		logger.Info("redis not configured, auth rate limiting disabled")
		return nil, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warnf("redis ping failed, auth rate limiting disabled: %v", err)
		client.Close()
		return nil, func() {}
	}

	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	logger.Infof("auth rate limit: %d requests per %s", cfg.RateLimit.AuthRequests, window)
	return apphttp.NewRedisLimiter(client, cfg.RateLimit.AuthRequests, window), func() { client.Close() }
}
