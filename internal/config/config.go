// Package config reads server configuration from the environment, with
// optional .env support for local development.
package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Addr is the TCP listen address for the game protocol.
	Addr string
	// WSAddr enables the WebSocket transport when non-empty.
	WSAddr string
	// HealthAddr serves the /health endpoint.
	HealthAddr string
	// NATSURL enables lifecycle event publishing when non-empty.
	NATSURL string
	// ConsulAddr enables service registration when non-empty.
	ConsulAddr string

	ServiceName string
	LogLevel    slog.Level
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	return Config{
		Addr:        getenv("ADDR", ":5000"),
		WSAddr:      os.Getenv("WS_ADDR"),
		HealthAddr:  getenv("HEALTH_ADDR", ":8080"),
		NATSURL:     os.Getenv("NATS_URL"),
		ConsulAddr:  os.Getenv("CONSUL_HTTP_ADDR"),
		ServiceName: getenv("SERVICE_NAME", "blockbattle"),
		LogLevel:    logLevel(os.Getenv("LOG_LEVEL")),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
