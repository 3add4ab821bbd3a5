package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidscribe/internal/config"
	"vidscribe/internal/logging"
	"vidscribe/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "vidscribe.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{
		Format:  "console",
		Level:   "info",
		Outputs: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "scene").Info("message without caller", logging.Int("candidates", 3))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
	if !strings.Contains(line, "INFO scene: message without caller candidates=3") {
		t.Fatalf("unexpected console line %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("expected no colour codes for a file, got %q", line)
	}
}

func TestConsoleLoggerLiftsRunScopeAndPosition(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-scope.log")
	logger, err := logging.New(logging.Options{
		Format:  "console",
		Level:   "info",
		Outputs: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "0123456789abcdef")
	ctx = services.WithStage(ctx, "classify")
	component := logging.NewComponentLogger(logger, "classify")
	logging.WarnWithContext(logging.WithContext(ctx, component), "ocr unavailable", "ocr_unavailable",
		logging.String(logging.FieldImpact, "heuristics_only"),
		logging.At(40.5),
		logging.Int("frames", 2),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	want := `WARN classify (01234567/classify): ocr unavailable @40.5s frames=2 event_type=ocr_unavailable impact=heuristics_only error_hint="check logs for details"`
	if !strings.Contains(string(content), want) {
		t.Fatalf("console line %q does not contain %q", content, want)
	}
}

func TestConsoleLoggerFlattensGroups(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-group.log")
	logger, err := logging.New(logging.Options{Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.WithGroup("scan").Info("scan finished", logging.Int("candidates", 4), logging.String("baseline", "examined"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "INFO: scan finished scan.candidates=4 scan.baseline=examined") {
		t.Fatalf("unexpected console line %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{
		Format:  "console",
		Level:   "debug",
		Outputs: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{
		Format:  "json",
		Level:   "info",
		Outputs: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-xyz")
	ctx = services.WithStage(ctx, "classify")
	logging.WarnWithContext(logging.WithContext(ctx, logger), "ocr degraded", "ocr_unavailable",
		logging.String(logging.FieldImpact, "frame scored on heuristics only"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(content, &record); err != nil {
		t.Fatalf("decode log line %q: %v", content, err)
	}
	want := map[string]string{
		"level":                "warn",
		"msg":                  "ocr degraded",
		logging.FieldRunID:     "run-xyz",
		logging.FieldStage:     "classify",
		logging.FieldEventType: "ocr_unavailable",
		logging.FieldErrorHint: "check logs for details",
		logging.FieldImpact:    "frame scored on heuristics only",
	}
	for key, value := range want {
		if got, _ := record[key].(string); got != value {
			t.Fatalf("field %s = %q, want %q", key, got, value)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 8) {
		t.Fatal("nop logger should be disabled")
	}
	logging.WarnWithContext(nil, "ignored", "noop")
}
