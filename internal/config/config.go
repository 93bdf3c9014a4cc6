package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini      string
	EmbedContentTopic string
}

type AIConfig struct {
	// DefaultEmbeddingProvider applies to owners that have no settings row
	// yet: "local" or "remote".
	DefaultEmbeddingProvider string
	OllamaBaseURL            string
	OllamaModel              string
	// EmbedTimeout bounds a single provider call so a hung remote endpoint
	// cannot leak a background task forever.
	EmbedTimeout time.Duration
	// EmbedCacheTTL is how long redis keeps content-hash embedding entries.
	EmbedCacheTTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			EmbedContentTopic: getEnv("EMBED_CONTENT_TOPIC_NAME", "EMBED_CONTENT"),
		},
		Ai: AIConfig{
			DefaultEmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "local"),
			OllamaBaseURL:            getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:              getEnv("OLLAMA_EMBEDDING_MODEL", "all-minilm"),
			EmbedTimeout:             getEnvAsDuration("EMBED_TIMEOUT_SECONDS", 30),
			EmbedCacheTTL:            getEnvAsDuration("EMBED_CACHE_TTL_SECONDS", 86400),
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

func getEnvAsDuration(key string, fallbackSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallbackSeconds)) * time.Second
}
