package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration. Every field can come
// from the YAML file; secrets come from the environment only.
type Config struct {
	Port     string      `yaml:"port"`
	DBPath   string      `yaml:"db_path"`
	LogLevel string      `yaml:"log_level"`
	MaxBody  int64       `yaml:"max_body"`
	Model    ModelConfig `yaml:"model"`
	Flows    FlowsConfig `yaml:"flows"`
}

// ModelConfig controls the chat-completions client.
type ModelConfig struct {
	BaseURL string        `yaml:"base_url"`
	Name    string        `yaml:"name"`
	Timeout time.Duration `yaml:"timeout"`
}

// FlowsConfig controls the flow orchestrator.
type FlowsConfig struct {
	MaxDocumentChars int `yaml:"max_document_chars"`
}

// loadConfig reads the optional YAML file, then lets environment
// variables override it.
func loadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Port = env("PORT", nonEmpty(cfg.Port, "8090"))
	cfg.DBPath = env("DB_PATH", nonEmpty(cfg.DBPath, "data/draftstudio.db"))
	cfg.LogLevel = env("LOG_LEVEL", nonEmpty(cfg.LogLevel, "info"))
	cfg.Model.BaseURL = env("MODEL_BASE_URL", cfg.Model.BaseURL)
	cfg.Model.Name = env("MODEL_NAME", nonEmpty(cfg.Model.Name, "google/gemini-2.0-flash-001"))

	if cfg.MaxBody <= 0 {
		cfg.MaxBody = 32 << 20
	}
	if cfg.Model.Timeout <= 0 {
		cfg.Model.Timeout = 90 * time.Second
	}
	if cfg.Flows.MaxDocumentChars <= 0 {
		cfg.Flows.MaxDocumentChars = 100_000
	}
	return &cfg, nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func nonEmpty(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
