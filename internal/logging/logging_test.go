package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewStderrLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Stderr: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()

	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("default level = %v, want warn", logger.GetLevel())
	}
	logger.Info("hidden")
	logger.WithField("op", "move").Warn("reconcile failed")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered: %q", out)
	}
	if !strings.Contains(out, "reconcile failed") || !strings.Contains(out, "op=move") {
		t.Errorf("missing warn entry: %q", out)
	}
}

func TestNewDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Debug: true, Stderr: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "kboard.log")
	logger, closer, err := New(Options{File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Warn("to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file missing entry: %q", data)
	}
}
