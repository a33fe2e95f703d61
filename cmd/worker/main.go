package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/config"
	"github.com/coursemedia/uploads-ms-go/internal/db"
	workerHandler "github.com/coursemedia/uploads-ms-go/internal/handler/worker"
	"github.com/coursemedia/uploads-ms-go/internal/logger"
	"github.com/coursemedia/uploads-ms-go/internal/port"
	"github.com/coursemedia/uploads-ms-go/internal/repository/mariadb"
	"github.com/coursemedia/uploads-ms-go/internal/storage"
	"github.com/coursemedia/uploads-ms-go/internal/task"
	assetSvc "github.com/coursemedia/uploads-ms-go/internal/usecase/asset"
	"github.com/hibiken/asynq"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}
	if cfg.RedisAddr == "" {
		logger.Error(ctx, "⚠️  REDIS_ADDR must be set to run the worker")
		os.Exit(1)
	}

	logger.Init()

	database := initDb(cfg)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Warnf(ctx, "DB close error: %v", err)
		}
	}()

	strg := initStorage(cfg)

	assetRepo := mariadb.NewAssetRepository(database.DB)
	materializerSvc := assetSvc.NewRecordingMaterializer(assetRepo, strg, assetSvc.Config{
		UploadsBucket: cfg.UploadsBucket,
		LessonsBucket: cfg.LessonsBucket,
	})
	notifierSvc := assetSvc.NewInstructorNotifier(assetRepo)

	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeMaterializeRecording, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseMaterializeRecordingPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.MaterializeRecordingHandler(ctx, p, materializerSvc)
	})
	mux.HandleFunc(task.TypeNotifyInstructor, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseNotifyInstructorPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.NotifyInstructorHandler(ctx, p, notifierSvc)
	})

	runWorker(ctx, mux, cfg, database)
}

func initDb(cfg *config.Settings) *db.Database {
	ctx := context.Background()
	logger.Info(ctx, "initialising database...")

	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	return database
}

func initStorage(cfg *config.Settings) port.Storage {
	strg, err := storage.NewMinioStorage(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Errorf(context.Background(), "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	return strg
}

func runWorker(ctx context.Context, mux *asynq.ServeMux, cfg *config.Settings, database *db.Database) {
	srv := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}, asynq.Config{Concurrency: 10})

	// Run server in background
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Errorf(context.Background(), "❌  Worker failed: %v", err)
			os.Exit(1)
		}
	}()
	logger.Info(ctx, "🚀 Worker started")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// Give Asynq up to 30 sec to finish tasks
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	srv.Shutdown()       // stop accepting new tasks, finish in-flight
	<-shutdownCtx.Done() // either timeout or done

	logger.Info(ctx, "✅  Worker gracefully stopped")
}
