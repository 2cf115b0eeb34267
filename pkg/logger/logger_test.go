package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/grinzing/jukei-line-yesterday/pkg/config"
)

func unsetLoggingEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JUKEI_LOG_FORMAT", "")
	t.Setenv("JUKEI_LOG_LEVEL", "")
	t.Setenv("JUKEI_LOG_ADD_SOURCE", "")
}

func TestLoggerJSONEntryShape(t *testing.T) {
	unsetLoggingEnv(t)

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{Format: "json", Level: "info"}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.With("component", "bot.dispatcher").Info("Reply sent", "request_id", "42", "messages", int64(3))

	raw := strings.TrimSpace(out.String())
	if raw == "" {
		t.Fatal("expected log output")
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}

	if entry.Level != "info" {
		t.Fatalf("level = %q, want info", entry.Level)
	}
	if entry.Message != "Reply sent" {
		t.Fatalf("message = %q", entry.Message)
	}
	if entry.Component != "bot.dispatcher" {
		t.Fatalf("component = %q", entry.Component)
	}
	if entry.Timestamp == "" {
		t.Fatal("expected timestamp")
	}
	if got := entry.Fields["request_id"]; got != "42" {
		t.Fatalf("fields.request_id = %v", got)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	unsetLoggingEnv(t)

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{Format: "json", Level: "error"}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.Info("suppressed")
	if out.Len() != 0 {
		t.Fatalf("expected info record to be filtered, got %q", out.String())
	}

	log.Error("kept")
	if out.Len() == 0 {
		t.Fatal("expected error record to be written")
	}
}

func TestLoggerRejectsUnknownSettings(t *testing.T) {
	unsetLoggingEnv(t)

	if _, err := newWithWriter(config.LoggingConfig{Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, err := newWithWriter(config.LoggingConfig{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unsupported level")
	}
}

func TestLoggerEnvFormatOverride(t *testing.T) {
	unsetLoggingEnv(t)
	t.Setenv("JUKEI_LOG_FORMAT", "json")

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{Format: "text"}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.Info("hello")
	var entry Entry
	if err := json.Unmarshal([]byte(strings.TrimSpace(out.String())), &entry); err != nil {
		t.Fatalf("expected JSON output under env override: %v", err)
	}
}
