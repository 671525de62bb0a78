package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/example/englearn/internal/database"
	"github.com/example/englearn/internal/grammar"
)

// Config holds all configuration for the application
type Config struct {
	Port            int           `mapstructure:"port"`
	DBType          string        `mapstructure:"db_type"`
	DatabaseURL     string        `mapstructure:"database_url"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	LanguageToolURL string        `mapstructure:"languagetool_url"`
	GrammarTimeout  time.Duration `mapstructure:"grammar_timeout"`
	LeaderboardSize int           `mapstructure:"leaderboard_size"`
	RecomputeEvery  time.Duration `mapstructure:"recompute_interval"`
	ContentFallback bool          `mapstructure:"content_fallback"`
	TelegramToken   string        `mapstructure:"telegram_bot_token"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
}

// Load reads configuration from a .env file (if any), the environment and
// flags already bound to v.
func Load(v *viper.Viper, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("error loading env file: %w", err)
	}

	SetDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range keys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var keys = []string{
	"port",
	"db_type",
	"database_url",
	"jwt_secret",
	"languagetool_url",
	"grammar_timeout",
	"leaderboard_size",
	"recompute_interval",
	"content_fallback",
	"telegram_bot_token",
	"log_level",
	"log_format",
}

// SetDefaults sets default configuration values
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("db_type", database.DriverSQLite)
	v.SetDefault("database_url", "data/englearn.db")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("languagetool_url", grammar.DefaultURL)
	v.SetDefault("grammar_timeout", 8*time.Second)
	v.SetDefault("leaderboard_size", 10)
	v.SetDefault("recompute_interval", time.Hour)
	v.SetDefault("content_fallback", false)
	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// Validate checks value ranges that viper cannot express
func (c *Config) Validate() error {
	switch c.DBType {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.GrammarTimeout <= 0 {
		return fmt.Errorf("GRAMMAR_TIMEOUT must be positive")
	}
	if c.LeaderboardSize <= 0 {
		return fmt.Errorf("LEADERBOARD_SIZE must be positive")
	}
	if c.RecomputeEvery < 0 {
		return fmt.Errorf("RECOMPUTE_INTERVAL must not be negative")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
