package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file.
const DefaultPath = "config/streamscribe.yaml"

type Config struct {
	Provider   string        `yaml:"provider"`
	Model      string        `yaml:"model"`
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	APIKeyFile string        `yaml:"api_key_file"`
	OutputDir  string        `yaml:"output_dir"`
	Prompts    PromptsConfig `yaml:"prompts"`
	Segment    SegmentConfig `yaml:"segment"`
	Retry      RetryConfig   `yaml:"retry"`
	Logging    LoggingConfig `yaml:"logging"`
}

// prompt file paths; empty means the built-in prompt
type PromptsConfig struct {
	Clean     string `yaml:"clean"`
	Summarize string `yaml:"summarize"`
	Merge     string `yaml:"merge"`
}

type SegmentConfig struct {
	MinSpaces int `yaml:"min_spaces"`
	MaxSpaces int `yaml:"max_spaces"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	Multiplier   float64       `yaml:"multiplier"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

var providerKeyEnv = map[string]string{
	"deepseek":  "DEEPSEEK_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Provider:  "deepseek",
		OutputDir: "output",
		Segment: SegmentConfig{
			MinSpaces: 50,
			MaxSpaces: 60,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			Multiplier:   2,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, ok := providerKeyEnv[c.Provider]; !ok {
		return fmt.Errorf("provider %q is not one of deepseek, openai, anthropic, gemini", c.Provider)
	}
	if c.Segment.MinSpaces <= 0 || c.Segment.MaxSpaces <= 0 {
		return fmt.Errorf("segment.min_spaces and segment.max_spaces must be positive")
	}
	if c.Segment.MinSpaces > c.Segment.MaxSpaces {
		return fmt.Errorf("segment.min_spaces (%d) exceeds segment.max_spaces (%d)", c.Segment.MinSpaces, c.Segment.MaxSpaces)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	if c.Retry.InitialDelay < 0 {
		return fmt.Errorf("retry.initial_delay must not be negative")
	}
	if c.Retry.Multiplier < 1 {
		return fmt.Errorf("retry.multiplier must be at least 1")
	}

	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}

// ResolveAPIKey returns the key for the configured provider: api_key, then
// the first non-comment line of api_key_file, then the provider's
// environment variable.
func (c *Config) ResolveAPIKey() (string, error) {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key, nil
	}

	if c.APIKeyFile != "" {
		key, err := readKeyFile(c.APIKeyFile)
		if err != nil {
			return "", err
		}
		return key, nil
	}

	envVar := providerKeyEnv[c.Provider]
	if key := strings.TrimSpace(os.Getenv(envVar)); key != "" {
		return key, nil
	}

	return "", fmt.Errorf("no API key for %s: set api_key or api_key_file in the config, or %s", c.Provider, envVar)
}

func readKeyFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read API key file: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			return line, nil
		}
	}
	return "", fmt.Errorf("no API key found in %s", path)
}
