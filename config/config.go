// Package config resolves the bot's runtime settings from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Environment keys recognized by the bot. They match the runner's own
// conventions for bot containers.
const (
	EnvRunnerHost    = "RUNNER_IPV4_OR_URL"
	EnvRunnerPort    = "RUNNER_PORT"
	EnvHubName       = "HUB_NAME"
	EnvBotToken      = "BOT_TOKEN"
	EnvBotNickname   = "BOT_NICKNAME"
	EnvTimeLimitMS   = "MCTS_TIME_LIMIT_MS"
	EnvMaxIterations = "MCTS_MAX_ITERATIONS"
	EnvWorkers       = "MCTS_WORKERS"
)

// Config carries everything the bot needs to connect and search.
type Config struct {
	RunnerHost  string
	RunnerPort  int
	HubName     string
	BotToken    string
	BotNickname string

	TimeLimit     time.Duration
	MaxIterations int
	Workers       int
}

// Load reads the environment after sourcing an optional .env file. A
// missing token is replaced with a freshly generated one so the bot always
// has a stable identity for the session.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg := Config{
		RunnerHost:  envString(EnvRunnerHost, "localhost"),
		RunnerPort:  envInt(EnvRunnerPort, 5000),
		HubName:     envString(EnvHubName, "bothub"),
		BotToken:    envString(EnvBotToken, ""),
		BotNickname: envString(EnvBotNickname, "zooscape-mcts"),
		Workers:     envInt(EnvWorkers, 0),
	}

	if ms := envInt(EnvTimeLimitMS, 0); ms > 0 {
		cfg.TimeLimit = time.Duration(ms) * time.Millisecond
	}
	cfg.MaxIterations = envInt(EnvMaxIterations, 0)

	if cfg.BotToken == "" {
		cfg.BotToken = uuid.NewString()
		log.Info().Msg("no bot token configured, generated a fresh one")
	}

	return cfg
}

// HubURL is the websocket endpoint of the runner hub.
func (c Config) HubURL() string {
	return fmt.Sprintf("ws://%s:%d/%s", c.RunnerHost, c.RunnerPort, c.HubName)
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring non-numeric setting")
		return fallback
	}
	return parsed
}
