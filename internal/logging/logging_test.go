package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenWritesLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processing.log")

	l, err := Open(path, false)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	l.Info("info %d", 1)
	l.Warn("warn message")
	l.Error("error message")
	l.Debug("debug message")

	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if !strings.Contains(content, "[INFO] info 1") {
		t.Error("expected info line in log file")
	}
	if !strings.Contains(content, "[WARN] warn message") {
		t.Error("expected warn line in log file")
	}
	if !strings.Contains(content, "[ERROR] error message") {
		t.Error("expected error line in log file")
	}
	if strings.Contains(content, "[DEBUG]") {
		t.Error("debug line should be filtered at info level")
	}
}

func TestOpenVerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processing.log")

	l, err := Open(path, true)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	l.Debug("debug message")
	_ = l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[DEBUG] debug message") {
		t.Error("expected debug line with verbose logging")
	}
}

func TestNilLoggerIsNoOp(t *testing.T) {
	var l *Logger

	// None of these should panic.
	l.Info("x")
	l.Debug("x")
	l.Warn("x")
	l.Error("x")

	if err := l.Close(); err != nil {
		t.Errorf("Close on nil logger should return nil, got %v", err)
	}
	if l.FilePath() != "" {
		t.Error("FilePath on nil logger should be empty")
	}
	if l.Writer() == nil {
		t.Error("Writer on nil logger should return a discard writer, not nil")
	}
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processing.log")

	l1, err := Open(path, false)
	if err != nil {
		t.Fatal(err)
	}
	l1.Info("first run")
	_ = l1.Close()

	l2, err := Open(path, false)
	if err != nil {
		t.Fatal(err)
	}
	l2.Info("second run")
	_ = l2.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "first run") || !strings.Contains(content, "second run") {
		t.Error("expected both runs in the appended log file")
	}
}
