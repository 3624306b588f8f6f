package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/usermatch/adapters/event"
	httpAdapter "github.com/khoahotran/usermatch/adapters/http"
	"github.com/khoahotran/usermatch/adapters/persistence"
	"github.com/khoahotran/usermatch/internal/application/service"
	matchUC "github.com/khoahotran/usermatch/internal/application/usecase/match"
	userUC "github.com/khoahotran/usermatch/internal/application/usecase/user"
	"github.com/khoahotran/usermatch/internal/config"
	"github.com/khoahotran/usermatch/internal/domain/match"
	"github.com/khoahotran/usermatch/pkg/logger"
	"github.com/khoahotran/usermatch/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting user matching API server...", zap.String("env", cfg.App.Env))

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing
	if cfg.Tracing.OTLPEndpoint != "" {
		tp, err := tracing.NewTracerProvider(cfg, appLogger, "usermatch-api")
		if err != nil {
			appLogger.Fatal("Cannot init tracer provider", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				appLogger.Error("Tracer provider shutdown failed", err)
			}
		}()
	}

	// Database
	if cfg.DB.MigrateOnStart {
		if err := persistence.RunMigrations(cfg.DB.DSN, appLogger); err != nil {
			appLogger.Fatal("Cannot run migrations", err)
		}
	}
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	// Rate limiting
	var rateLimit gin.HandlerFunc
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot connect Redis", err)
		}
		defer redisClient.Close()
		rateLimit = httpAdapter.RateLimitMiddleware(
			persistence.NewRedisWindowCounter(redisClient),
			cfg.RateLimit.Requests,
			cfg.RateLimit.Window,
			appLogger,
		)
	} else {
		appLogger.Warn("REDIS_ADDR not set, rate limiting disabled")
	}

	// Events
	var publisher service.EventPublisher = event.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	} else {
		appLogger.Warn("KAFKA_BROKERS not set, user events disabled")
	}

	// Use cases
	userStore := persistence.NewPostgresUserStore(dbPool, appLogger)
	userUseCase := userUC.NewUserUseCase(userStore, publisher, appLogger)
	matchUseCase := matchUC.NewMatchUseCase(userStore, match.Config{
		MatchLimit: cfg.Match.Limit,
		AgeLimit:   cfg.Match.AgeLimit,
	}, appLogger)

	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		UserHandler:  httpAdapter.NewUserHandler(userUseCase, appLogger),
		MatchHandler: httpAdapter.NewMatchHandler(matchUseCase, appLogger),
		Logger:       appLogger,
		RateLimit:    rateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
