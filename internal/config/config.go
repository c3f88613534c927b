package config

import (
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// FileName is the per-project configuration file.
const FileName = ".procspectre.yml"

// Config holds all procspectre configuration.
type Config struct {
	DBURL       string      `yaml:"db_url"`
	Exclude     Exclude     `yaml:"exclude"`
	Definitions Definitions `yaml:"definitions"`
	Catalog     Catalog     `yaml:"catalog"`
	Defaults    Defaults    `yaml:"defaults"`
}

// Exclude lists what to leave out of a sweep.
type Exclude struct {
	Extensions []string `yaml:"extensions"` // case-insensitive path suffixes
	Paths      []string `yaml:"paths"`      // case-insensitive path substrings
	Globs      []string `yaml:"globs"`      // doublestar patterns, relative to the code root
	Dirs       []string `yaml:"dirs"`       // directory names never descended, at any depth
	Findings   []string `yaml:"findings"`   // finding types to suppress
}

// Definitions describes where procedure definitions live under --procs.
type Definitions struct {
	Pattern string `yaml:"pattern"`
}

// Catalog limits which schemas a --db-url sweep reads routines from.
// Empty means every non-system schema.
type Catalog struct {
	Schemas []string `yaml:"schemas"`
}

// Defaults holds default CLI flag values.
type Defaults struct {
	Format     string `yaml:"format"`
	Workers    int    `yaml:"workers"` // 0 = one per CPU
	Timeout    string `yaml:"timeout"` // parsed as time.Duration
	Indication string `yaml:"indication"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Exclude: Exclude{
			Extensions: []string{
				".dll", ".exe", ".pdb", ".so", ".dylib", ".class", ".jar",
				".png", ".jpg", ".jpeg", ".gif", ".ico", ".zip", ".gz",
			},
			Dirs: []string{".git", ".hg", ".svn", "node_modules"},
		},
		Definitions: Definitions{
			Pattern: "**/*.sql",
		},
		Defaults: Defaults{
			Format:  "text",
			Timeout: "30s",
		},
	}
}

// Load reads configuration from .procspectre.yml in the given directory,
// falling back to ~/.procspectre.yml. Returns DefaultConfig if no file found.
func Load(dir string) (Config, error) {
	cfg := DefaultConfig()

	paths := []string{filepath.Join(dir, FileName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, FileName))
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	return cfg, nil
}

// Exists reports whether dir contains a configuration file.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil
}

// TimeoutDuration parses the Defaults.Timeout string as a time.Duration.
// Returns 30s if parsing fails.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Defaults.Timeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(c.Defaults.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
