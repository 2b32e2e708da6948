package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	// All detectors run by default
	if got := cfg.Detectors.Disabled(); len(got) != 0 {
		t.Errorf("Detectors.Disabled() = %v, want none", got)
	}
	if cfg.Detectors.JumpBlock.ChainFollowers {
		t.Error("JumpBlock.ChainFollowers should be false by default")
	}

	if !cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be true by default")
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true by default")
	}
	if cfg.Cache.TTLDuration() != 24*time.Hour {
		t.Errorf("Cache.TTLDuration() = %v, want 24h", cfg.Cache.TTLDuration())
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("Logger.Level = %s, want info", cfg.Logger.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "covdiff.toml")

	content := `
workers = 4
max_file_size = 1048576

[detectors.if_optimize]
enabled = false

[detectors.jump_block]
chain_followers = true

[exclude]
dirs = ["vendor", "custom_exclude"]

[cache]
enabled = false

[output]
format = "json"
dir = "reports"

[logger]
level = "debug"
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got := cfg.Detectors.Disabled(); len(got) != 1 || got[0] != "if_optimize" {
		t.Errorf("Detectors.Disabled() = %v, want [if_optimize]", got)
	}
	if !cfg.Detectors.JumpBlock.Enabled {
		t.Error("JumpBlock.Enabled should keep its default")
	}
	if !cfg.Detectors.JumpBlock.ChainFollowers {
		t.Error("JumpBlock.ChainFollowers should be true")
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.MaxFileSize != 1<<20 {
		t.Errorf("MaxFileSize = %d, want 1MiB", cfg.MaxFileSize)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false")
	}
	if cfg.Output.Format != "json" || cfg.Output.Dir != "reports" {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %s, want debug", cfg.Logger.Level)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "covdiff.yaml")

	content := `
detectors:
  unmarked_label:
    enabled: false
  const_array_init:
    enabled: false
output:
  format: toon
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	got := cfg.Detectors.Disabled()
	if len(got) != 2 || got[0] != "unmarked_label" || got[1] != "const_array_init" {
		t.Errorf("Detectors.Disabled() = %v", got)
	}
	if cfg.Output.Format != "toon" {
		t.Errorf("Output.Format = %s, want toon", cfg.Output.Format)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "covdiff.json")

	content := `{"detectors": {"jump_block": {"enabled": false}}, "cache": {"ttl": 2}}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got := cfg.Detectors.Disabled(); len(got) != 1 || got[0] != "jump_block" {
		t.Errorf("Detectors.Disabled() = %v, want [jump_block]", got)
	}
	if cfg.Cache.TTL != 2 {
		t.Errorf("Cache.TTL = %d, want 2", cfg.Cache.TTL)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/covdiff.toml")
	if err == nil {
		t.Error("Load() should return error for non-existent file")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "covdiff.toml")

	content := `[detectors
invalid toml`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() should return error for invalid config")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Format = "xml"
	cfg.Logger.Level = "loud"
	cfg.Workers = -1
	cfg.MaxFileSize = -5
	cfg.Exclude.Patterns = []string{"[unterminated"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	for _, want := range []string{"output.format", "logger.level", "workers", "max_file_size", "exclude.patterns"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q should mention %s", err, want)
		}
	}
}

func TestFindNone(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	if got := Find(); got != "" {
		t.Errorf("Find() = %q, want none", got)
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)

	if err := os.MkdirAll(filepath.Join(tmpDir, ".covdiff"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ".covdiff", "covdiff.toml"), []byte("workers = 3\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	if got := Find(); got != filepath.Join(".covdiff", "covdiff.toml") {
		t.Errorf("Find() = %q", got)
	}
	cfg, err := Load(Find())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Workers != 3 {
		t.Errorf("Load() should read the found file, got Workers=%d", cfg.Workers)
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		// Excluded directories
		{"vendor/lib/file.gcov.c", true},
		{"third_party/zlib/inflate.c", true},
		{".git/objects/file", true},

		// Excluded patterns
		{"msg.pb.c", true},

		// Excluded extensions
		{"main.gcda", true},
		{"default.profraw", true},

		// Not excluded
		{"main.gcov.c", false},
		{"src/util/helper.llvm-cov.cpp", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestShouldExcludePathsWithSeparators(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join("src", "vendor", "pkg", "file.c"), true},
		{filepath.Join("vendor", "file.c"), true},
		{filepath.Join("src", "main.c"), false},
		{filepath.Join("pkg", "vendor_utils.c"), false}, // "vendor" in name, not directory
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
