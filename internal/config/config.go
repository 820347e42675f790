package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string
	RedisAddr  string // empty disables the leaderboard cache
	AdminToken string // empty disables the admin endpoints
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:     getEnv("DB_PATH", "padel.db"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		RedisAddr:  getEnv("REDIS_ADDR", ""),
		AdminToken: getEnv("ADMIN_TOKEN", ""),
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, keeping default")
	}

	if cfg.AdminToken == "" {
		logger.Warn().Msg("ADMIN_TOKEN not set, recalculation and reset endpoints are disabled")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Bool("leaderboard_cache", cfg.RedisAddr != "").
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
