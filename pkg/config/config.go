package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

const defaultRulesCSVPath = "data/responses.csv"

// Config is the root runtime configuration loaded from config.json.
type Config struct {
	Line    LineConfig    `json:"line"`
	Rules   RulesConfig   `json:"rules"`
	Gateway GatewayConfig `json:"gateway"`
	Logging LoggingConfig `json:"logging,omitempty"`
}

// LineConfig holds Messaging API credentials and delivery settings.
type LineConfig struct {
	ChannelSecret       string `json:"channel_secret"`
	ChannelAccessToken  string `json:"channel_access_token"`
	ReplyTimeoutSeconds int    `json:"reply_timeout_seconds,omitempty"`
}

// RulesConfig locates the CSV rule source.
type RulesConfig struct {
	CSVPath string `json:"csv_path"`
}

// GatewayConfig configures HTTP bind settings for the webhook server.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// envOverrides are settings that may be injected from the environment on top
// of the config file, secrets first among them.
type envOverrides struct {
	ChannelSecret      string `env:"LINE_CHANNEL_SECRET"`
	ChannelAccessToken string `env:"LINE_CHANNEL_ACCESS_TOKEN"`
	RulesCSVPath       string `env:"JUKEI_RULES_CSV"`
}

// LoadConfig resolves config.json, unmarshals it, applies environment
// overrides, and fills defaults.
func LoadConfig() (*Config, error) {
	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Rules.CSVPath) == "" {
		cfg.Rules.CSVPath = defaultRulesCSVPath
	}

	return &cfg, nil
}

// Validate checks the settings the webhook server cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Line.ChannelSecret) == "" {
		return errors.New("line.channel_secret is required (or set LINE_CHANNEL_SECRET)")
	}
	if strings.TrimSpace(c.Line.ChannelAccessToken) == "" {
		return errors.New("line.channel_access_token is required (or set LINE_CHANNEL_ACCESS_TOKEN)")
	}

	return nil
}

// applyEnvOverrides injects env-driven settings on top of file config.
func applyEnvOverrides(cfg *Config) error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse environment overrides: %w", err)
	}

	if value := strings.TrimSpace(overrides.ChannelSecret); value != "" {
		cfg.Line.ChannelSecret = value
	}
	if value := strings.TrimSpace(overrides.ChannelAccessToken); value != "" {
		cfg.Line.ChannelAccessToken = value
	}
	if value := strings.TrimSpace(overrides.RulesCSVPath); value != "" {
		cfg.Rules.CSVPath = value
	}

	return nil
}

// findConfigPath resolves the active config file location.
//
// Precedence is JUKEI_CONFIG first, then cwd-local fallback paths.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv("JUKEI_CONFIG")); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("JUKEI_CONFIG does not point to a file: %s", value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("config.json not found (checked %s and %s)", candidates[0], candidates[1])
}
