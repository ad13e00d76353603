// Package config loads the YAML run configuration: output location,
// exclusion list, deserialization targets and the envelope tables that
// assemble the protocol's message unions.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full run configuration.
type Config struct {
	// Package is the name of the emitted Go package.
	Package string `yaml:"package"`
	// Output is the directory emitted files are written to.
	Output string `yaml:"output"`
	// Exclude lists opaque type names exempt from view rewriting.
	Exclude []string `yaml:"exclude"`
	// Targets optionally restricts classification to the named
	// definitions. Empty means every definition is a target.
	Targets []string `yaml:"targets"`
	// Envelope describes the client and server message unions.
	Envelope Envelope `yaml:"envelope"`
}

// Envelope holds the per-side message tables.
type Envelope struct {
	Client Side `yaml:"client"`
	Server Side `yaml:"server"`
}

// Side describes one direction of the protocol.
type Side struct {
	// Requests maps a method tag to the request payload type name.
	Requests map[string]string `yaml:"requests"`
	// Notifications maps a method tag to the notification payload type name.
	Notifications map[string]string `yaml:"notifications"`
	// Results lists result type names in the order the untagged result
	// union tries them.
	Results []string `yaml:"results"`
}

// Default returns a configuration with defaults applied and no envelope
// tables.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)

	return cfg
}

// LoadFile loads and parses a configuration file from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Package == "" {
		cfg.Package = "schema"
	}

	if cfg.Output == "" {
		cfg.Output = "./gen"
	}
}
