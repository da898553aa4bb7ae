package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Blob     BlobConfig
	Probe    ProbeConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

// BlobConfig describes where deck bytes live. Endpoint/Bucket/APIKey point at
// the remote blob store; UploadDir enables the local-disk backup path and
// SlidesDir holds the bundled sample decks.
type BlobConfig struct {
	Endpoint  string
	Bucket    string
	APIKey    string
	UploadDir string
	SlidesDir string
}

type ProbeConfig struct {
	SizeProbeTimeoutSec int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Blob: BlobConfig{
			Endpoint:  getEnv("BLOB_STORE_URL", ""),
			Bucket:    getEnv("BLOB_STORE_BUCKET", "decks"),
			APIKey:    getEnv("BLOB_STORE_API_KEY", ""),
			UploadDir: getEnv("UPLOAD_DIR", ""),
			SlidesDir: getEnv("SLIDES_DIR", "./slides"),
		},
		Probe: ProbeConfig{
			SizeProbeTimeoutSec: getEnvAsInt("SIZE_PROBE_TIMEOUT_SEC", 6),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
