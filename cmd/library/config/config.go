package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigFile = "LIBRARY_CONFIG"
	EnvFile       = "LIBRARY_FILE"
	EnvLogLevel   = "LIBRARY_LOG_LEVEL"
)

type Config struct {
	File     string `yaml:"file"`
	LogLevel string `yaml:"log_level"`
}

func Defaults() Config {
	return Config{
		File:     "books.json",
		LogLevel: "warn",
	}
}

/* Reads a YAML config file. Unknown keys are rejected so typos do not go unnoticed. */
func LoadYAML(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv reads the overrides from the environment. getenv is os.Getenv
// outside of tests.
func FromEnv(getenv func(string) string) Config {
	return Config{
		File:     getenv(EnvFile),
		LogLevel: getenv(EnvLogLevel),
	}
}

// Merge returns base with every non blank field of over applied on top.
func Merge(base, over Config) Config {
	out := base
	if v := strings.TrimSpace(over.File); v != "" {
		out.File = v
	}
	if v := strings.TrimSpace(over.LogLevel); v != "" {
		out.LogLevel = v
	}
	return out
}

func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.File) == "" {
		return errors.New("books file path must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}
