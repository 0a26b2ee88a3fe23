package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/reglet-dev/native-starter/application/validation"
	"github.com/reglet-dev/native-starter/hostfuncs"
	"gopkg.in/yaml.v3"
)

// Backends selectable with --backend.
const (
	BackendInProcess = "inprocess"
	BackendChannel   = "channel"
)

// Config holds the nativectl settings. Flags override values read from the
// config file.
type Config struct {
	Backend          string `yaml:"backend" validate:"oneof=inprocess channel"`
	LogLevel         string `yaml:"log_level" validate:"oneof=debug info warn error"`
	MaxRequestSize   int    `yaml:"max_request_size" validate:"gte=1"`
	MemoryLimitPages uint32 `yaml:"memory_limit_pages" validate:"lte=65536"`
	BenchCalls       int    `yaml:"bench_calls" validate:"gte=1"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendInProcess,
		LogLevel:       "warn",
		MaxRequestSize: hostfuncs.DefaultMaxRequestSize,
		BenchCalls:     10000,
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := validation.ValidateStruct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
