package main

import (
	"context"
	"log"

	"github.com/coursemedia/uploads-ms-go/internal/config"
	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/port"
	"github.com/coursemedia/uploads-ms-go/internal/repository/mariadb"
	"github.com/coursemedia/uploads-ms-go/internal/storage"
	uploadSvc "github.com/coursemedia/uploads-ms-go/internal/usecase/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌  Configuration error: %v", err)
	}

	database := initDb(cfg)
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("DB close error: %v", err)
		}
	}()

	strg := initStorage(cfg)

	intentRepo := mariadb.NewIntentRepository(database.DB)
	sessionRepo := mariadb.NewSessionRepository(database.DB)

	sweeper := uploadSvc.NewIntentSweeper(intentRepo, sessionRepo, strg, uploadSvc.Config{
		Bucket:      cfg.UploadsBucket,
		MinPartSize: cfg.MinPartSize,
		MaxParts:    cfg.MaxParts,
	})

	swept, err := sweeper.SweepExpired(context.Background())
	if err != nil {
		log.Fatalf("❌  Intent sweep failed: %v", err)
	}
	log.Printf("✅  Intent sweep completed, %d intents expired", swept)
}

func initDb(cfg *config.Settings) *db.Database {
	log.Println("initialising database...")
	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		log.Fatalf("❌  Failed to connect to db: %v", err)
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
		log.Fatalf("❌  Failed to initialize MinIO client: %v", err)
	}
	return strg
}
