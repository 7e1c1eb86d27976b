package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/fintrack/internal/config"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fintrack.log")

	log, err := New(config.LogConfig{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Info("loan paid")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"loan paid"`) {
		t.Errorf("log file = %q, want JSON entry", data)
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud", File: filepath.Join(t.TempDir(), "x.log")}); err == nil {
		t.Fatal("New() with unknown level succeeded")
	}
	if log := NewOrNop(config.LogConfig{Level: "loud"}); log == nil {
		t.Fatal("NewOrNop() returned nil")
	}
}
