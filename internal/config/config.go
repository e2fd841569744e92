package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	StoreChromem  = "chromem"
	StorePostgres = "postgres"
)

type Config struct {
	DocsDirectory     string `yaml:"docs_directory"`
	DatabaseDirectory string `yaml:"database_directory"`
	DatabaseCreation  bool   `yaml:"database_creation"`
	EmbeddingModel    string `yaml:"embedding_model"`
	LLMModel          string `yaml:"llm_model"`
	RAGLLM            bool   `yaml:"rag_llm"`
	OllamaURL         string `yaml:"ollama_url"`
	LogFile           string `yaml:"log_file"`
	ExtraFormats      bool   `yaml:"extra_formats"`
	Store             string `yaml:"store"`

	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

// Default returns the built-in configuration, used when no config file exists.
func Default() *Config {
	return &Config{
		DocsDirectory:     "./docs",
		DatabaseDirectory: "./db",
		DatabaseCreation:  false,
		EmbeddingModel:    "nomic-embed-text",
		LLMModel:          "qwen2:7b",
		RAGLLM:            true,
		OllamaURL:         "http://localhost:11434",
		LogFile:           "./build/log/output.log",
		Store:             StoreChromem,
	}
}

// LoadConfig reads the YAML config at path. A missing file is not an error;
// the defaults are returned instead.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DocsDirectory == "" {
		return fmt.Errorf("docs_directory is required")
	}
	if c.DatabaseDirectory == "" {
		return fmt.Errorf("database_directory is required")
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding_model is required")
	}
	if c.LLMModel == "" {
		return fmt.Errorf("llm_model is required")
	}
	switch c.Store {
	case StoreChromem:
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required when store is %q", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	return nil
}
