package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Port            string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogPretty       bool
	AllowedOrigins  []string
	FrontendURL     string

	JWTSecret     string
	GameTokenTTL  time.Duration
	DefaultBot    string
	SearchDepth   int
	SessionIdle   time.Duration
	CleanupPeriod time.Duration

	RedisEnabled  bool
	RedisURL      string
	RedisPassword string

	KafkaBrokers  []string
	KafkaTopic    string
	KafkaUser     string
	KafkaPassword string
}

func LoadConfig() *Config {
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")

	// Frontend URL + localhost + CSV values
	allowedOrigins := []string{frontendURL}
	if frontendURL != "http://localhost:5173" {
		allowedOrigins = append(allowedOrigins, "http://localhost:5173")
	}
	allowedOrigins = append(allowedOrigins, splitCSV(GetEnv("ALLOWED_ORIGINS", ""))...)

	return &Config{
		Port:            GetEnv("PORT", "8080"),
		ShutdownTimeout: GetEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        GetEnv("LOG_LEVEL", "info"),
		LogPretty:       GetEnvAsBool("LOG_PRETTY", false),
		AllowedOrigins:  allowedOrigins,
		FrontendURL:     frontendURL,

		JWTSecret:     GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		GameTokenTTL:  time.Duration(GetEnvAsInt("GAME_TOKEN_TTL_HOURS", 24)) * time.Hour,
		DefaultBot:    GetEnv("DEFAULT_DIFFICULTY", "random"),
		SearchDepth:   GetEnvAsInt("SEARCH_DEPTH", 7),
		SessionIdle:   time.Duration(GetEnvAsInt("SESSION_IDLE_TIMEOUT_MINUTES", 60)) * time.Minute,
		CleanupPeriod: time.Duration(GetEnvAsInt("CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute,

		RedisEnabled:  GetEnvAsBool("REDIS_ENABLED", true),
		RedisURL:      GetEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),

		KafkaBrokers:  splitCSV(GetEnv("KAFKA_BROKERS", "")),
		KafkaTopic:    GetEnv("KAFKA_TOPIC", "game-events"),
		KafkaUser:     GetEnv("KAFKA_USER", ""),
		KafkaPassword: GetEnv("KAFKA_PASSWORD", ""),
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Int("default", defaultValue).Msg("invalid integer, using default")
		return defaultValue
	}
	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Bool("default", defaultValue).Msg("invalid boolean, using default")
		return defaultValue
	}
	return value
}

// GetEnvAsDuration accepts Go duration syntax such as "90s" or "5m".
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Dur("default", defaultValue).Msg("invalid duration, using default")
		return defaultValue
	}
	return value
}
