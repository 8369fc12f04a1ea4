package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/config"
	"storyreel/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from test")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "storyreel.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from test") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "project-store")
	logger.Info("saved project", logging.String("project", "my reel"), logging.Int("fields", 35))
	logger.Debug("hidden debug line")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "INFO project-store: saved project") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, `project="my reel"`) {
		t.Fatalf("expected quoted project value, got %q", line)
	}
	if !strings.Contains(line, "fields=35") {
		t.Fatalf("expected fields attr, got %q", line)
	}
	if strings.Contains(line, "hidden debug line") {
		t.Fatalf("debug line should be filtered at info level, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", line)
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithRunID(logging.WithProject(context.Background(), "alpha"), "run-1")
	logging.WithContext(ctx, logger).Info("reconciled")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(content, &payload); err != nil {
		t.Fatalf("unmarshal json log: %v (%q)", err, content)
	}
	if payload["project"] != "alpha" || payload["run_id"] != "run-1" {
		t.Fatalf("expected context fields, got %#v", payload)
	}
	if payload["level"] != "info" {
		t.Fatalf("expected lowercase level, got %#v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "save skipped", "project_save_skipped",
		logging.String(logging.FieldImpact, "nothing persisted"),
		logging.Error(errors.New("blank project")),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(content, &payload); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	if payload[logging.FieldEventType] != "project_save_skipped" {
		t.Fatalf("unexpected event type: %#v", payload[logging.FieldEventType])
	}
	if payload[logging.FieldErrorHint] != "check logs for details" {
		t.Fatalf("expected default hint, got %#v", payload[logging.FieldErrorHint])
	}
	if payload[logging.FieldImpact] != "nothing persisted" {
		t.Fatalf("caller impact should win, got %#v", payload[logging.FieldImpact])
	}
}

func TestContextHelpersIgnoreBlankValues(t *testing.T) {
	ctx := logging.WithProject(context.Background(), "   ")
	if _, ok := logging.ProjectFromContext(ctx); ok {
		t.Fatal("blank project should not be recorded")
	}
	if fields := logging.ContextFields(ctx); len(fields) != 0 {
		t.Fatalf("expected no context fields, got %v", fields)
	}
}
