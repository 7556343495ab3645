// Package config loads the serving configuration consumed by the app layer.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration.
type Config struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	DocumentRoot string `yaml:"document_root"`
	IndexOf      bool   `yaml:"index_of"`
	LogFile      string `yaml:"log_file"`
	Workers      int    `yaml:"workers"`
	QueueDepth   int    `yaml:"queue_depth"`
	ReadBuffer   int    `yaml:"read_buffer"`
	MaxConns     int    `yaml:"max_conns"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Host:       "127.0.0.1",
		Port:       7878,
		Workers:    8,
		QueueDepth: 1024,
		ReadBuffer: 1024,
	}
}

// Load reads a YAML configuration file over the defaults; fields absent
// from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, falling back to the defaults when the file is
// missing or unreadable.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}
