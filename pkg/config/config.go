package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for covdiff.
type Config struct {
	// Detector selection and tuning
	Detectors DetectorsConfig `koanf:"detectors" toml:"detectors"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	// Logger settings
	Logger LoggerConfig `koanf:"logger" toml:"logger"`

	// Workers bounds parallel file processing; 0 means 2x NumCPU.
	Workers int `koanf:"workers" toml:"workers"`

	// MaxFileSize skips annotated files larger than this many bytes; 0 means no limit.
	MaxFileSize int64 `koanf:"max_file_size" toml:"max_file_size"`
}

// DetectorsConfig enables and tunes the discrepancy detectors.
type DetectorsConfig struct {
	IfOptimize     DetectorConfig  `koanf:"if_optimize" toml:"if_optimize"`
	UnmarkedLabel  DetectorConfig  `koanf:"unmarked_label" toml:"unmarked_label"`
	ConstArrayInit DetectorConfig  `koanf:"const_array_init" toml:"const_array_init"`
	JumpBlock      JumpBlockConfig `koanf:"jump_block" toml:"jump_block"`
}

// DetectorConfig toggles one detector.
type DetectorConfig struct {
	Enabled bool `koanf:"enabled" toml:"enabled"`
}

// JumpBlockConfig tunes the jump block detector.
type JumpBlockConfig struct {
	Enabled bool `koanf:"enabled" toml:"enabled"`
	// ChainFollowers also explains statements that follow an explained
	// jump follower.
	ChainFollowers bool `koanf:"chain_followers" toml:"chain_followers"`
}

// Disabled returns the names of disabled detectors.
func (d DetectorsConfig) Disabled() []string {
	toggles := []struct {
		name    string
		enabled bool
	}{
		{"if_optimize", d.IfOptimize.Enabled},
		{"unmarked_label", d.UnmarkedLabel.Enabled},
		{"const_array_init", d.ConstArrayInit.Enabled},
		{"jump_block", d.JumpBlock.Enabled},
	}
	var out []string
	for _, t := range toggles {
		if !t.enabled {
			out = append(out, t.name)
		}
	}
	return out
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns" toml:"patterns"`
	Extensions []string `koanf:"extensions" toml:"extensions"`
	Dirs       []string `koanf:"dirs" toml:"dirs"`
	Gitignore  bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// TTLDuration returns TTL as a duration.
func (c CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Hour
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color"`
	// Dir is where .map reports are written; empty disables writing.
	Dir string `koanf:"dir" toml:"dir"`
}

// LoggerConfig controls diagnostic logging.
type LoggerConfig struct {
	Level      string `koanf:"level" toml:"level"` // trace, debug, info, warn, error
	JSONFormat bool   `koanf:"json_format" toml:"json_format"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Detectors: DetectorsConfig{
			IfOptimize:     DetectorConfig{Enabled: true},
			UnmarkedLabel:  DetectorConfig{Enabled: true},
			ConstArrayInit: DetectorConfig{Enabled: true},
			JumpBlock:      JumpBlockConfig{Enabled: true},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.pb.c",
				"*.pb.cc",
			},
			Extensions: []string{
				".gcno",
				".gcda",
				".profraw",
				".profdata",
			},
			Dirs: []string{
				".git",
				".covdiff",
				"vendor",
				"third_party",
				"node_modules",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".covdiff/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Logger: LoggerConfig{
			Level: "info",
		},
	}
}

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "markdown", "toon"}

// Validate checks option values that decoding cannot.
func (c *Config) Validate() error {
	var errs []error
	if !contains(Formats, strings.ToLower(c.Output.Format)) {
		errs = append(errs, fmt.Errorf("output.format: unknown format %q", c.Output.Format))
	}
	switch strings.ToLower(c.Logger.Level) {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logger.level: unknown level %q", c.Logger.Level))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers: must not be negative, got %d", c.Workers))
	}
	if c.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("max_file_size: must not be negative, got %d", c.MaxFileSize))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl: must not be negative, got %d", c.Cache.TTL))
	}
	for _, p := range c.Exclude.Patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			errs = append(errs, fmt.Errorf("exclude.patterns: %q: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// Load loads configuration from a file over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the locations Find looks at, in order.
func SearchPaths() []string {
	configNames := []string{
		"covdiff.toml",
		"covdiff.yaml",
		"covdiff.yml",
		"covdiff.json",
		".covdiff.toml",
		".covdiff.yaml",
		".covdiff.yml",
		".covdiff.json",
	}

	var paths []string
	for _, dir := range []string{".", ".covdiff"} {
		for _, name := range configNames {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths
}

// Find returns the first existing config file from SearchPaths, or "".
func Find() string {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	// Check extension exclusions
	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	// Check pattern exclusions
	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
