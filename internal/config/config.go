package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	LogLevel             zerolog.Level
	WorkerCount          int
	MaxConcurrentLookups int
	CultureGroupsFile    string
	ExonymEndpoint       string
	ExonymTimeout        time.Duration
	DatabaseURL          string
	Neo4jURI             string
	Neo4jUser            string
	Neo4jPassword        string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return &Config{
		LogLevel:             level,
		WorkerCount:          getEnvInt("WORKER_COUNT", 8),
		MaxConcurrentLookups: getEnvInt("MAX_CONCURRENT_LOOKUPS", 4),
		CultureGroupsFile:    getEnv("CULTURE_GROUPS_FILE", ""),
		ExonymEndpoint:       getEnv("EXONYM_ENDPOINT", "https://en.wikipedia.org/w/api.php"),
		ExonymTimeout:        time.Duration(getEnvInt("EXONYM_TIMEOUT_SECONDS", 30)) * time.Second,
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		Neo4jURI:             getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:            getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:        getEnv("NEO4J_PASSWORD", "password"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
