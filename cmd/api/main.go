package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/cache"
	"github.com/coursemedia/uploads-ms-go/internal/config"
	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/handler/api"
	"github.com/coursemedia/uploads-ms-go/internal/logger"
	cMiddleware "github.com/coursemedia/uploads-ms-go/internal/middleware"
	"github.com/coursemedia/uploads-ms-go/internal/port"
	"github.com/coursemedia/uploads-ms-go/internal/ratelimit"
	"github.com/coursemedia/uploads-ms-go/internal/renderer"
	"github.com/coursemedia/uploads-ms-go/internal/repository/mariadb"
	"github.com/coursemedia/uploads-ms-go/internal/storage"
	"github.com/coursemedia/uploads-ms-go/internal/task"
	assetSvc "github.com/coursemedia/uploads-ms-go/internal/usecase/asset"
	uploadSvc "github.com/coursemedia/uploads-ms-go/internal/usecase/upload"
	"github.com/coursemedia/uploads-ms-go/internal/usecase/webhook"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	database := initDb(ctx, cfg)

	strg := initStorage(ctx, cfg)
	initBuckets(ctx, strg, []string{cfg.UploadsBucket, cfg.LessonsBucket})

	intentRepo := mariadb.NewIntentRepository(database.DB)
	sessionRepo := mariadb.NewSessionRepository(database.DB)
	assetRepo := mariadb.NewAssetRepository(database.DB)

	var ca port.Cache
	var dispatcher port.TaskDispatcher
	var limiter port.RateLimiter
	if cfg.RedisAddr != "" {
		ca = cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
		dispatcher = task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword)
		limiter = ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RateLimitWindow, cfg.RateLimitMax)
		logger.Info(ctx, "✅  Redis enabled (cache, rate limiting, task queue)")
	} else {
		ca = cache.NewNoop()
		dispatcher = task.NewNoopDispatcher()
		limiter = ratelimit.NewNoop()
		logger.Warn(ctx, "⚠️  Redis not configured; caching, rate limiting and task dispatch are disabled")
	}

	uploadCfg := uploadSvc.Config{
		Bucket:             cfg.UploadsBucket,
		IntentTTL:          cfg.IntentTTL,
		UploadURLExpiry:    cfg.UploadURLExpiry,
		PartURLExpiry:      cfg.PartURLExpiry,
		MultipartThreshold: cfg.MultipartThreshold,
		MinPartSize:        cfg.MinPartSize,
		MaxParts:           cfg.MaxParts,
	}

	r := initRouter(ctx)

	// signature-gated, never behind owner auth
	webhookProcessorSvc := webhook.NewReconciler(assetRepo, dispatcher, ca, []byte(cfg.WebhookSecret))
	r.Post("/webhooks/media", api.WebhookHandler(webhookProcessorSvc))

	r.Group(func(r chi.Router) {
		r.Use(cMiddleware.WithOwnerAuth(cfg.JWTSecret))

		intentCreatorSvc := uploadSvc.NewIntentCreator(intentRepo, sessionRepo, strg, limiter, db.NewUUID, uploadCfg)
		r.Post("/uploads/intent", api.CreateIntentHandler(intentCreatorSvc))

		intentCompleterSvc := uploadSvc.NewIntentCompleter(intentRepo, assetRepo, strg, db.NewUUID, uploadCfg)
		r.With(cMiddleware.WithIntentID()).
			Post("/uploads/intent/{id}/complete", api.CompleteIntentHandler(intentCompleterSvc))

		multipartSvc := uploadSvc.NewMultipartManager(intentRepo, sessionRepo, strg, uploadCfg)
		r.With(cMiddleware.WithIntentID()).
			Post("/uploads/multipart/{id}/init", api.InitMultipartHandler(multipartSvc))
		r.With(cMiddleware.WithIntentID()).
			Post("/uploads/multipart/{id}/sign", api.SignPartHandler(multipartSvc))
		r.With(cMiddleware.WithIntentID()).
			Post("/uploads/multipart/{id}/complete", api.CompleteMultipartHandler(multipartSvc))
		r.With(cMiddleware.WithIntentID()).
			Delete("/uploads/multipart/{id}", api.AbortMultipartHandler(multipartSvc))

		getAssetSvc := assetSvc.NewAssetGetter(assetRepo, strg, assetSvc.Config{
			UploadsBucket: cfg.UploadsBucket,
			LessonsBucket: cfg.LessonsBucket,
		})
		rendererSvc := renderer.NewHTTPRenderer(ca)
		r.With(cMiddleware.WithAssetID()).
			Get("/assets/{id}", api.GetAssetHandler(rendererSvc, getAssetSvc))
	})

	listenRouter(ctx, r, cfg, database)
}

func initDb(ctx context.Context, cfg *config.Settings) *db.Database {
	logger.Info(ctx, "initialising database...")

	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}

	return database
}

func initRouter(ctx context.Context) *chi.Mux {
	logger.Info(ctx, "initialising router...")

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.NotFound(api.NotFoundHandler())
	r.MethodNotAllowed(api.MethodNotAllowedHandler())

	return r
}

func initStorage(ctx context.Context, cfg *config.Settings) port.Storage {
	strg, err := storage.NewMinioStorage(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	return strg
}

func initBuckets(ctx context.Context, strg port.Storage, buckets []string) {
	for _, b := range buckets {
		if err := strg.InitBucket(b); err != nil {
			logger.Errorf(ctx, "❌  Failed to initialize bucket %q: %v", b, err)
			os.Exit(1)
		}
	}
}

func listenRouter(ctx context.Context, r *chi.Mux, cfg *config.Settings, database *db.Database) {
	srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.ServerPort), Handler: r}

	// start serving
	go func() {
		logger.Infof(ctx, "🚀 API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Listen error: %v", err)
			os.Exit(1)
		}
	}()

	// block until we get SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Server gracefully stopped")

	if err := database.Close(); err != nil {
		logger.Errorf(ctx, "DB close error: %v", err)
		os.Exit(1)
	}
}
