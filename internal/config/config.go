// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file written into the repository directory by init.
const FileName = "config.json"

// EnvPath overrides the config file location when set.
const EnvPath = "VCS_CONFIG"

const (
	OrderLexical = "lexical"
	OrderNumeric = "numeric"
)

type Config struct {
	Server struct {
		Host string `json:"host" yaml:"host"`
		Port int    `json:"port" yaml:"port"`
	} `json:"server" yaml:"server"`

	Digest struct {
		Algorithm string `json:"algorithm" yaml:"algorithm"` // sha256, blake3
	} `json:"digest" yaml:"digest"`

	History struct {
		Order string `json:"order" yaml:"order"` // lexical, numeric
	} `json:"history" yaml:"history"`

	Catalog struct {
		Enabled  bool `json:"enabled" yaml:"enabled"`
		InMemory bool `json:"in_memory" yaml:"in_memory"`
	} `json:"catalog" yaml:"catalog"`

	Cache struct {
		Size int `json:"size" yaml:"size"` // objects kept by the read cache
	} `json:"cache" yaml:"cache"`

	Watch struct {
		DebounceMillis int `json:"debounce_ms" yaml:"debounce_ms"`
	} `json:"watch" yaml:"watch"`

	Environment string `json:"environment" yaml:"environment"` // dev, prod
	LogLevel    string `json:"log_level" yaml:"log_level"`     // debug, info, warn, error
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.Server.Host = "127.0.0.1"
	c.Server.Port = 7421
	c.Digest.Algorithm = "sha256"
	c.History.Order = OrderLexical
	c.Catalog.Enabled = true
	c.Cache.Size = 256
	c.Watch.DebounceMillis = 500
	c.Environment = "development"
	c.LogLevel = "warn"
	return &c
}

// Path returns the config file for a repository directory, honouring VCS_CONFIG.
func Path(repoDir string) string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return filepath.Join(repoDir, FileName)
}

// Load reads a JSON or YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(file).Decode(config); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	default:
		if err := json.NewDecoder(file).Decode(config); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadOrDefault is Load, except a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return c, err
}

func (c *Config) Validate() error {
	switch c.Digest.Algorithm {
	case "sha256", "blake3":
	default:
		return fmt.Errorf("unsupported digest algorithm %q", c.Digest.Algorithm)
	}
	switch c.History.Order {
	case OrderLexical, OrderNumeric:
	default:
		return fmt.Errorf("unsupported history order %q", c.History.Order)
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.Cache.Size)
	}
	return nil
}

// Save writes c as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
