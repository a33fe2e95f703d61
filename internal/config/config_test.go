package config

import (
	"os"
	"testing"
	"time"
)

func requiredEnv() map[string]string {
	return map[string]string{
		"MARIADB_DSN":               "user:pass@tcp(localhost:3306)/db",
		"MARIADB_MAX_OPEN_CONN":     "10",
		"MARIADB_MAX_IDLE_CONNS":    "5",
		"MARIADB_CONN_MAX_LIFETIME": "30",
		"SERVER_PORT":               "8080",
		"MINIO_ENDPOINT":            "localhost:9000",
		"MINIO_ACCESS_KEY":          "minio",
		"MINIO_SECRET_KEY":          "minio123",
		"WEBHOOK_SECRET":            "whsec",
	}
}

func chdirTemp(t *testing.T) {
	t.Helper()
	// Switch to a temp directory to avoid loading a real .env
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("could not chdir to temp dir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Fatalf("could not chdir back to original dir: %v", err)
		}
	})
}

func TestLoad_Success(t *testing.T) {
	chdirTemp(t)

	reqs := requiredEnv()
	for k, v := range reqs {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.MariaDBDSN != reqs["MARIADB_DSN"] {
		t.Errorf("MariaDBDSN: expected %q, got %q", reqs["MARIADB_DSN"], cfg.MariaDBDSN)
	}
	if cfg.ConnMaxLifetime != 30*time.Second {
		t.Errorf("ConnMaxLifetime: expected %v, got %v", 30*time.Second, cfg.ConnMaxLifetime)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort: expected %d, got %d", 8080, cfg.ServerPort)
	}
	if cfg.WebhookSecret != "whsec" {
		t.Errorf("WebhookSecret: expected %q, got %q", "whsec", cfg.WebhookSecret)
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	for k, v := range requiredEnv() {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.MultipartThreshold != 64<<20 {
		t.Errorf("MultipartThreshold: expected %d, got %d", 64<<20, cfg.MultipartThreshold)
	}
	if cfg.MinPartSize != 5<<20 {
		t.Errorf("MinPartSize: expected %d, got %d", 5<<20, cfg.MinPartSize)
	}
	if cfg.MaxParts != 10000 {
		t.Errorf("MaxParts: expected %d, got %d", 10000, cfg.MaxParts)
	}
	if cfg.IntentTTL != time.Hour {
		t.Errorf("IntentTTL: expected %v, got %v", time.Hour, cfg.IntentTTL)
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow: expected %v, got %v", time.Minute, cfg.RateLimitWindow)
	}
}

func TestLoad_MissingRequiredVars(t *testing.T) {
	chdirTemp(t)

	for missing := range requiredEnv() {
		t.Run(missing, func(t *testing.T) {
			os.Clearenv()
			for k, v := range requiredEnv() {
				if k == missing {
					continue
				}
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Errorf("expected error when %s is missing, got nil", missing)
			}
		})
	}
}
