package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestNewFileLogger_CreatesDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "sidediff.log")

	logger, err := NewFileLogger(FileLoggerConfig{Path: logPath, Format: FormatText, Level: InfoLevel})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestFileLogger_AppendsAcrossOpens(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sidediff.log")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(FileLoggerConfig{Path: logPath, Format: FormatText, Level: InfoLevel})
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info(ctx, fmt.Sprintf("run %d", i), nil)
		logger.Close()
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{"run 0", "run 1"} {
		if !strings.Contains(string(content), want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sidediff.log")

	logger, err := NewFileLogger(FileLoggerConfig{
		Path:       logPath,
		Format:     FormatText,
		Level:      InfoLevel,
		MaxSize:    100,
		MaxBackups: 2,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		logger.Info(ctx, strings.Repeat("x", 50), Fields{"i": i})
	}
	logger.Close()

	if _, err := os.Stat(logPath + ".1"); err != nil {
		t.Errorf("first backup missing: %v", err)
	}
	if _, err := os.Stat(logPath + ".2"); err != nil {
		t.Errorf("second backup missing: %v", err)
	}
	if _, err := os.Stat(logPath + ".3"); !os.IsNotExist(err) {
		t.Errorf("backup beyond MaxBackups should not exist, stat err = %v", err)
	}
}

func TestFileLogger_WithFieldsDoesNotClose(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sidediff.log")

	logger, err := NewFileLogger(FileLoggerConfig{Path: logPath, Format: FormatText, Level: InfoLevel})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	child := logger.WithFields(Fields{"path": "a.txt"})
	if err := child.Close(); err != nil {
		t.Fatalf("child Close() error = %v", err)
	}

	logger.Info(context.Background(), "still open", nil)
	logger.Close()

	content, _ := os.ReadFile(logPath)
	if !strings.Contains(string(content), "still open") {
		t.Errorf("parent logger stopped writing after child Close():\n%s", content)
	}
}

func TestFileLogger_ConcurrentWrites(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sidediff.log")

	logger, err := NewFileLogger(FileLoggerConfig{Path: logPath, Format: FormatJSON, Level: InfoLevel})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			l := logger.WithFields(Fields{"worker": g})
			for i := 0; i < 25; i++ {
				l.Info(ctx, "compare", Fields{"i": i})
			}
		}(g)
	}
	wg.Wait()
	logger.Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 200 {
		t.Errorf("got %d lines, want 200", len(lines))
	}
}

func TestNullLogger(t *testing.T) {
	var logger Logger = NewNullLogger()
	ctx := context.Background()

	logger.Debug(ctx, "debug", nil)
	logger.Info(ctx, "info", Fields{"k": "v"})
	logger.Warn(ctx, "warn", nil)
	logger.Error(ctx, "error", fmt.Errorf("boom"), nil)

	if logger.WithFields(Fields{"k": "v"}) != logger {
		t.Error("WithFields() should return the same null logger")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
