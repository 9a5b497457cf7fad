package configs

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"GoACE/app/clients"
	"GoACE/app/phases"
)

type Config struct {
	Model     ModelConfig      `yaml:"model" validate:"required"`
	Weights   phases.Weights   `yaml:"weights"`
	TieBreak  string           `yaml:"tie_break" validate:"omitempty,oneof=input alphabetical"`
	Retriever RetrieverConfig  `yaml:"retriever"`
	Clients   []clients.Config `yaml:"clients,omitempty" validate:"dive"`
	Task      string           `yaml:"task,omitempty"`
}

type ModelConfig struct {
	BaseURL         string `yaml:"base_url"`
	Name            string `yaml:"name" validate:"required"`
	EmbeddingsModel string `yaml:"embeddings_model"`
}

type RetrieverConfig struct {
	Enabled bool `yaml:"enabled"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configs file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate configs: %w", err)
	}
	if c.Retriever.Enabled && c.Model.EmbeddingsModel == "" {
		return fmt.Errorf("retriever enabled but model.embeddings_model is empty")
	}
	return nil
}

// CurationWeights returns the configured ranking weights, falling back to the
// documented defaults when the section is absent.
func (c *Config) CurationWeights() phases.Weights {
	if c.Weights.IsZero() {
		return phases.DefaultWeights()
	}
	return c.Weights
}

func (c *Config) CurationTieBreak() phases.TieBreak {
	if c.TieBreak == "alphabetical" {
		return phases.TieBreakAlphabetical
	}
	return phases.TieBreakInputOrder
}
