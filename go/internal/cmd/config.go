package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/rootleague/go/clients/league_client"
	"github.com/mcdev12/rootleague/go/internal/flagstore"
)

const defaultConfigPath = "leaguectl.yaml"

type Config struct {
	API struct {
		BaseURL string        `yaml:"base_url"`
		GameKey string        `yaml:"game_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"api"`
	FlagFile string `yaml:"flag_file"`
	Feed     struct {
		Addr    string `yaml:"addr"`
		NATSURL string `yaml:"nats_url"`
	} `yaml:"feed"`
	LogLevel string `yaml:"log_level"`
}

func defaultConfig() *Config {
	cfg := &Config{LogLevel: "info"}
	cfg.API.BaseURL = "http://localhost:8080"
	cfg.API.GameKey = league_client.DefaultGameKey
	cfg.API.Timeout = 30 * time.Second
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid duration")
	}
	return defaultValue
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// applyEnv lets environment variables override the file.
func applyEnv(cfg *Config) {
	cfg.API.BaseURL = getEnv("LEAGUE_API_BASE_URL", cfg.API.BaseURL)
	cfg.API.GameKey = getEnv("LEAGUE_GAME_KEY", cfg.API.GameKey)
	cfg.API.Timeout = getEnvAsDuration("LEAGUE_HTTP_TIMEOUT", cfg.API.Timeout)
	cfg.FlagFile = getEnv("LEAGUE_FLAG_FILE", cfg.FlagFile)
	cfg.Feed.Addr = getEnv("LEAGUE_FEED_ADDR", cfg.Feed.Addr)
	cfg.Feed.NATSURL = getEnv("NATS_URL", cfg.Feed.NATSURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
}

func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

// openFlagStore opens the configured file, falling back to memory when no file can
// be used.
func openFlagStore(cfg *Config) flagstore.Store {
	path := cfg.FlagFile
	if path == "" {
		var err error
		if path, err = flagstore.DefaultPath(); err != nil {
			log.Warn().Err(err).Msg("no config dir, match flags will not persist")
			return flagstore.NewMemoryStore()
		}
	}
	store, err := flagstore.OpenFileStore(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not open flag file, match flags will not persist")
		return flagstore.NewMemoryStore()
	}
	return store
}

func newClient(cfg *Config) *league_client.LeagueClient {
	client := league_client.NewLeagueClient(cfg.API.BaseURL, cfg.API.GameKey)
	if cfg.API.Timeout > 0 {
		client.SetTimeout(cfg.API.Timeout)
	}
	return client
}
