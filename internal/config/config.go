package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries everything the service and the CLI need. Values come from an
// optional YAML file, then the environment on top of it.
type Config struct {
	ServerPort int    `yaml:"server_port"`
	LogLevel   string `yaml:"log_level"`

	// Backend is "sqlite" or "kv".
	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir"`

	OwnerPassword string `yaml:"owner_password"`
	JWTSecret     string `yaml:"jwt_secret"`

	HistoryCap     int `yaml:"history_cap"`
	LeaderboardCap int `yaml:"leaderboard_cap"`
	GameRounds     int `yaml:"game_rounds"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
}

func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("notice: .env not loaded: %v", err)
		}
	}

	cfg := Config{
		ServerPort:     8080,
		LogLevel:       "info",
		Backend:        "sqlite",
		DataDir:        "data",
		HistoryCap:     5,
		LeaderboardCap: 5,
		GameRounds:     10,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.ServerPort = EnvIntDefault("SERVER_PORT", cfg.ServerPort)
	cfg.LogLevel = EnvDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.Backend = EnvDefault("STORE_BACKEND", cfg.Backend)
	cfg.DataDir = EnvDefault("DATA_DIR", cfg.DataDir)
	cfg.OwnerPassword = EnvDefault("OWNER_PASSWORD", cfg.OwnerPassword)
	cfg.JWTSecret = EnvDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.HistoryCap = EnvIntDefault("HISTORY_CAP", cfg.HistoryCap)
	cfg.LeaderboardCap = EnvIntDefault("LEADERBOARD_CAP", cfg.LeaderboardCap)
	cfg.GameRounds = EnvIntDefault("GAME_ROUNDS", cfg.GameRounds)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = CSV(v)
	}

	switch cfg.Backend {
	case "sqlite", "kv":
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Backend)
	}

	return cfg, nil
}

func CSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}
