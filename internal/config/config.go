package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the simulation runtime settings, loaded from the
// environment (optionally seeded from a .env file).
type Config struct {
	Instruments   []string
	TickSize      float64
	FeedAddr      string // empty disables the feed server
	DepthLevels   int
	DepthInterval time.Duration
	StartPrice    float64
	LogLevel      string
}

// Load reads Config from the environment. A missing .env file is not an
// error; real environment variables always win.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	return Config{
		Instruments:   splitList(getEnv("INSTRUMENTS", "MSFT")),
		TickSize:      getFloat("TICK_SIZE", 0.01),
		FeedAddr:      getEnv("FEED_ADDR", ""),
		DepthLevels:   getInt("DEPTH_LEVELS", 10),
		DepthInterval: getDuration("DEPTH_INTERVAL", time.Second),
		StartPrice:    getFloat("START_PRICE", 100.0),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// SetupLogging applies the configured level to the global zerolog logger.
func (c Config) SetupLogging() {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid float, using default")
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid int, using default")
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid duration, using default")
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
