package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads and decodes the YAML file at path. Unknown keys are
// rejected. An empty file yields a zero configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Environment variables overriding the file.
const (
	EnvAddress  = "NRFNODE_ADDRESS"
	EnvChannel  = "NRFNODE_CHANNEL"
	EnvLowPower = "NRFNODE_LOW_POWER"
	EnvLogLevel = "NRFNODE_LOG_LEVEL"
)

// ApplyEnv overlays the NRFNODE_* variables returned by getenv onto cfg.
// Unset or empty variables leave the file value alone; malformed ones are
// an error.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvAddress); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAddress, err)
		}
		cfg.Node.Address = uint8(n)
	}

	if v := getenv(EnvChannel); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvChannel, err)
		}
		ch := uint8(n)
		cfg.Node.Channel = &ch
	}

	if v := getenv(EnvLowPower); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLowPower, err)
		}
		cfg.Node.LowPower = b
	}

	if v := getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	return nil
}
