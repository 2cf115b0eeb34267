package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func clearOverrideEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LINE_CHANNEL_SECRET", "")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "")
	t.Setenv("JUKEI_RULES_CSV", "")
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	clearOverrideEnv(t)

	path := writeConfig(t, `{
	  "line": {"channel_secret": "secret", "channel_access_token": "token", "reply_timeout_seconds": 20},
	  "rules": {"csv_path": "testdata/rules.csv"},
	  "gateway": {"host": "127.0.0.1", "port": 9000},
	  "logging": {"format": "json", "level": "debug"}
	}`)
	t.Setenv("JUKEI_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Line.ChannelSecret != "secret" || cfg.Line.ChannelAccessToken != "token" {
		t.Fatalf("line config = %#v", cfg.Line)
	}
	if cfg.Line.ReplyTimeoutSeconds != 20 {
		t.Fatalf("reply_timeout_seconds = %d, want 20", cfg.Line.ReplyTimeoutSeconds)
	}
	if cfg.Rules.CSVPath != "testdata/rules.csv" {
		t.Fatalf("rules.csv_path = %q", cfg.Rules.CSVPath)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging = %#v", cfg.Logging)
	}
}

func TestLoadConfigDefaultsRulesPath(t *testing.T) {
	clearOverrideEnv(t)

	path := writeConfig(t, `{"line": {"channel_secret": "s", "channel_access_token": "t"}}`)
	t.Setenv("JUKEI_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Rules.CSVPath != defaultRulesCSVPath {
		t.Fatalf("rules.csv_path = %q, want default", cfg.Rules.CSVPath)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `{"line": {"channel_secret": "file-secret", "channel_access_token": "file-token"}}`)
	t.Setenv("JUKEI_CONFIG", path)
	t.Setenv("LINE_CHANNEL_SECRET", "env-secret")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "env-token")
	t.Setenv("JUKEI_RULES_CSV", "/tmp/other.csv")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Line.ChannelSecret != "env-secret" {
		t.Fatalf("channel_secret = %q, want env override", cfg.Line.ChannelSecret)
	}
	if cfg.Line.ChannelAccessToken != "env-token" {
		t.Fatalf("channel_access_token = %q, want env override", cfg.Line.ChannelAccessToken)
	}
	if cfg.Rules.CSVPath != "/tmp/other.csv" {
		t.Fatalf("rules.csv_path = %q, want env override", cfg.Rules.CSVPath)
	}
}

func TestLoadConfigInvalidEnvPath(t *testing.T) {
	t.Setenv("JUKEI_CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing config path")
	}
}

func TestValidateRequiresCredentials(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing channel secret")
	}

	cfg.Line.ChannelSecret = "s"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing access token")
	}

	cfg.Line.ChannelAccessToken = "t"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
}
