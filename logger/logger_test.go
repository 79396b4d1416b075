package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWithComponent(t *testing.T) {
	log := Logger()
	entry := log.WithComponent("test")
	if v, ok := entry.Entry.Data["component"]; !ok || v != "test" {
		t.Fatalf("component field missing: %v", entry.Entry.Data)
	}
}

func TestConfigureInvalidLevel(t *testing.T) {
	// Ensure environment variables do not override the provided level
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	if err := log.Configure("invalid", "json", "stderr", 0); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestConfigureInvalidFormat(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	if err := log.Configure("info", "xml", "stderr", 0); err == nil {
		t.Fatalf("expected error for invalid format")
	}
}

func TestConfigureEnvLevelWins(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	log := Logger()
	if err := log.Configure("error", "text", "stderr", 0); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if got := log.GetLevel().String(); got != "debug" {
		t.Errorf("level = %q, want debug", got)
	}
}

func TestJSONOutput(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	if err := log.Configure("info", "json", "stderr", 0); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.WithComponent("store").WithError(errors.New("boom")).WithFields(Fields{"coin": "bitcoin"}).Warn("cannot save")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not json: %v: %q", err, buf.String())
	}
	for key, want := range map[string]string{
		"component": "store",
		"coin":      "bitcoin",
		"error":     "boom",
		"message":   "cannot save",
		"level":     "warning",
	} {
		if got[key] != want {
			t.Errorf("%s = %v, want %q", key, got[key], want)
		}
	}
}

func TestConfigureFileOutput(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "cfl.log")
	log := Logger()
	if err := log.Configure("info", "text", path, 0); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	log.WithComponent("test").Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file = %q, want it to contain hello", data)
	}
}
