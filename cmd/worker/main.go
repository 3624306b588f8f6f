package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/usermatch/adapters/event"
	"github.com/khoahotran/usermatch/adapters/persistence"
	auditUC "github.com/khoahotran/usermatch/internal/application/usecase/audit"
	"github.com/khoahotran/usermatch/internal/config"
	"github.com/khoahotran/usermatch/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting user event audit worker...")

	if len(cfg.Kafka.Brokers) == 0 {
		appLogger.Fatal("Cannot start worker", errors.New("KAFKA_BROKERS is not set"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	auditRepo := persistence.NewPostgresAuditRepo(dbPool, appLogger)
	recordEventUC := auditUC.NewRecordEventUseCase(auditRepo, appLogger)

	// Kafka Consumer
	userConsumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicUserEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer userConsumer.Close()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicUserEvents), zap.String("group_id", cfg.Kafka.GroupID))

	consumer := event.NewUserEventConsumer(userConsumer, recordEventUC, appLogger)
	if err := consumer.Run(ctx); err != nil {
		appLogger.Error("Worker stopped with error", err)
		return
	}
	appLogger.Info("Worker stopped")
}
