package config_test

import (
	"os"
	"testing"

	"github.com/eargollo/stdfload/internal/config"
)

func TestLoad_DefaultsApplied(t *testing.T) {
	f, err := os.CreateTemp("", "stdfload-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString("source_paths:\n  - /tmp/test\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg, err := config.Load(f.Name())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Schedule == "" {
		t.Error("expected default schedule to be set")
	}
	if cfg.HTTPAddr == "" {
		t.Error("expected default http_addr to be set")
	}
	if cfg.QueueCapacity == 0 {
		t.Error("expected default queue_capacity to be set")
	}
	if len(cfg.SourcePaths) != 1 || cfg.SourcePaths[0] != "/tmp/test" {
		t.Errorf("unexpected source paths: %v", cfg.SourcePaths)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath == "" {
		t.Error("expected default db_path for a missing config file")
	}
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	f, err := os.CreateTemp("", "stdfload-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString("bogus_field: true\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := config.Load(f.Name()); err == nil {
		t.Error("expected error for unknown config field")
	}
}
