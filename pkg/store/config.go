package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of the root engine's options, loaded once at
// startup the same way the teacher repo loads its YAML-configured engine
// options rather than wiring flags straight into the constructor.
type Config struct {
	DataDir    string `yaml:"data_dir"`
	InMemory   bool   `yaml:"in_memory"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// LoadConfig reads and parses a Config from path.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("store: reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("store: parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// BadgerOptions adapts the loaded config into engine-open options.
func (c Config) BadgerOptions() BadgerOptions {
	return BadgerOptions{
		DataDir:    c.DataDir,
		InMemory:   c.InMemory,
		SyncWrites: c.SyncWrites,
	}
}
