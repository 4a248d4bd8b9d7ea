package main

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/citeshelf/citeshelf/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"user and password", "postgres://app:hunter2@db:5432/citeshelf", "postgres://app@db:5432/citeshelf"},
		{"password only", "redis://:hunter2@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"query password", "postgres://db/citeshelf?password=hunter2", "postgres://db/citeshelf?password=redacted"},
		{"no credentials", "redis://cache:6379", "redis://cache:6379"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactURL(tt.in); got != tt.want {
				t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://app:hunter2@db:5432/citeshelf"
	err := errors.New("failed to connect to " + dsn + ": password=hunter2 rejected")

	got := sanitizeError(err, dsn)
	if strings.Contains(got, "hunter2") {
		t.Errorf("sanitizeError leaked the password: %s", got)
	}
	if !strings.Contains(got, "postgres://app@db:5432/citeshelf") {
		t.Errorf("sanitizeError dropped the redacted DSN: %s", got)
	}
	if sanitizeError(nil) != "" {
		t.Error("sanitizeError(nil) should be empty")
	}
}

func TestInitLogger_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citeshelf.log")
	cfg := &config.Config{LogLevel: "info", LogFormat: "json", LogFile: path, LogMaxSizeMB: 1}

	var stdout bytes.Buffer
	logger, closer := initLogger(cfg, &stdout)
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil))) })

	logger.Info("author_created", "author_id", "a1")
	if err := closer.Close(); err != nil {
		t.Fatalf("close log file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for name, got := range map[string]string{"stdout": stdout.String(), "file": string(data)} {
		if !strings.Contains(got, `"msg":"author_created"`) {
			t.Errorf("%s missing log record: %s", name, got)
		}
	}
}

func TestLoadConfig_MemoryFlag(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STORE", "")

	if _, err := loadConfig(&cliOptions{}); err == nil {
		t.Fatal("expected an error without DATABASE_URL")
	}

	cfg, err := loadConfig(&cliOptions{memory: true, port: 9090})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Store != config.StoreMemory || cfg.AppPort != 9090 {
		t.Errorf("overrides not applied: store=%s port=%d", cfg.Store, cfg.AppPort)
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if got := out.String(); got != "citeshelf "+version+"\n" {
		t.Errorf("version output = %q", got)
	}
}

func TestMigrateCommand_RejectsMemoryStore(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"migrate", "--memory"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected migrate to refuse the in-memory store")
	}
}
