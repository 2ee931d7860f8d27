package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration loaded from config.yaml.
type Config struct {
	SourcePaths       []string `yaml:"source_paths"        json:"source_paths"`
	ExcludePaths      []string `yaml:"exclude_paths"       json:"exclude_paths"`
	Schedule          string   `yaml:"schedule"            json:"schedule"`
	IngestPaused      bool     `yaml:"ingest_paused"       json:"ingest_paused"`
	DBPath            string   `yaml:"db_path"             json:"-"`
	HTTPAddr          string   `yaml:"http_addr"           json:"-"`
	QueueCapacity     int      `yaml:"queue_capacity"      json:"queue_capacity"`
	ParametricWorkers int      `yaml:"parametric_workers"  json:"parametric_workers"`
	LogLevel          string   `yaml:"log_level"           json:"-"`
}

// applyDefaults fills zero/empty fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Schedule == "" {
		c.Schedule = "0 2 * * 0"
	}
	if c.DBPath == "" {
		c.DBPath = "/data/stdfload.db"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = 1 << 22
	}
	if c.ParametricWorkers == 0 {
		c.ParametricWorkers = 4
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load reads and parses the YAML config file at path.
// If the file does not exist, Load returns a default Config so the server
// can start without a mounted config file (useful for bare Docker runs).
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		var cfg Config
		cfg.applyDefaults()
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}
