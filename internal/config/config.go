package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Settings struct {
	MariaDBDSN      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ServerPort      int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	UploadsBucket  string
	LessonsBucket  string

	RedisAddr     string
	RedisPassword string

	JWTSecret     string
	WebhookSecret string

	// upload policy
	IntentTTL          time.Duration
	UploadURLExpiry    time.Duration
	PartURLExpiry      time.Duration
	MultipartThreshold int64
	MinPartSize        int64
	MaxParts           int

	// per-owner sliding window rate limit
	RateLimitWindow time.Duration
	RateLimitMax    int
}

func Load() (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; proceeding with OS environment variables")
	}

	viper.AutomaticEnv()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	for _, key := range []string{
		"MARIADB_DSN",
		"MARIADB_MAX_OPEN_CONN",
		"MARIADB_MAX_IDLE_CONNS",
		"MARIADB_CONN_MAX_LIFETIME",
		"SERVER_PORT",
		"MINIO_ENDPOINT",
		"MINIO_ACCESS_KEY",
		"MINIO_SECRET_KEY",
		"WEBHOOK_SECRET",
	} {
		if !viper.IsSet(key) {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	viper.SetDefault("UPLOADS_BUCKET", "uploads")
	viper.SetDefault("LESSONS_BUCKET", "lessons")
	viper.SetDefault("INTENT_TTL", 3600)            // seconds
	viper.SetDefault("UPLOAD_URL_EXPIRY", 300)      // seconds
	viper.SetDefault("PART_URL_EXPIRY", 300)        // seconds
	viper.SetDefault("MULTIPART_THRESHOLD", 64<<20) // 64 MiB
	viper.SetDefault("MIN_PART_SIZE", 5<<20)        // provider minimum
	viper.SetDefault("MAX_PARTS", 10000)            // provider cap
	viper.SetDefault("RATE_LIMIT_WINDOW", 60)       // seconds
	viper.SetDefault("RATE_LIMIT_MAX", 30)

	return &Settings{
		MariaDBDSN:      viper.GetString("MARIADB_DSN"),
		MaxOpenConns:    viper.GetInt("MARIADB_MAX_OPEN_CONN"),
		MaxIdleConns:    viper.GetInt("MARIADB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: time.Duration(viper.GetInt("MARIADB_CONN_MAX_LIFETIME")) * time.Second,
		ServerPort:      viper.GetInt("SERVER_PORT"),

		MinioEndpoint:  viper.GetString("MINIO_ENDPOINT"),
		MinioAccessKey: viper.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey: viper.GetString("MINIO_SECRET_KEY"),
		MinioUseSSL:    viper.GetBool("MINIO_USE_SSL"),
		UploadsBucket:  viper.GetString("UPLOADS_BUCKET"),
		LessonsBucket:  viper.GetString("LESSONS_BUCKET"),

		RedisAddr:     viper.GetString("REDIS_ADDR"),
		RedisPassword: viper.GetString("REDIS_PASSWORD"),

		JWTSecret:     viper.GetString("JWT_SECRET"),
		WebhookSecret: viper.GetString("WEBHOOK_SECRET"),

		IntentTTL:          time.Duration(viper.GetInt("INTENT_TTL")) * time.Second,
		UploadURLExpiry:    time.Duration(viper.GetInt("UPLOAD_URL_EXPIRY")) * time.Second,
		PartURLExpiry:      time.Duration(viper.GetInt("PART_URL_EXPIRY")) * time.Second,
		MultipartThreshold: viper.GetInt64("MULTIPART_THRESHOLD"),
		MinPartSize:        viper.GetInt64("MIN_PART_SIZE"),
		MaxParts:           viper.GetInt("MAX_PARTS"),

		RateLimitWindow: time.Duration(viper.GetInt("RATE_LIMIT_WINDOW")) * time.Second,
		RateLimitMax:    viper.GetInt("RATE_LIMIT_MAX"),
	}, nil
}
