package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         string
	Environment  string
	LogLevel     slog.Level
	LogFile      string // empty discards logs in the console player
	DataDir      string
	RedisURL     string // empty disables the Redis graph cache and events
	DiceSeed     uint64 // 0 seeds from the clock
	TagFile      string
	DefaultTag   string
	BarkDuration time.Duration
	PCID         string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:      getEnv("LOG_FILE", ""),
		DataDir:      getEnv("DATA_DIR", "./data"),
		RedisURL:     getEnv("REDIS_URL", ""),
		DiceSeed:     parseUint(getEnv("DICE_SEED", "0")),
		TagFile:      getEnv("TAG_FILE", "barks.json"),
		DefaultTag:   getEnv("DEFAULT_TAG", "idle"),
		BarkDuration: parseDuration(getEnv("BARK_DURATION", "3s"), 3*time.Second),
		PCID:         getEnv("PC_ID", ""),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseUint(value string) uint64 {
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
