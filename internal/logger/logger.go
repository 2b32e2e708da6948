// Package logger builds the hclog loggers used across covdiff.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/panbanda/covdiff/pkg/config"
)

// EnvLevel names the environment variable that overrides the configured level.
const EnvLevel = "COVDIFF_LOG_LEVEL"

// Options adjusts a logger beyond what the configuration file sets.
type Options struct {
	// Verbose forces at least debug level.
	Verbose bool
	// Output defaults to os.Stderr so logs never mix with report output.
	Output io.Writer
}

// New creates an hclog.Logger named name. The level comes from
// COVDIFF_LOG_LEVEL when set, else from cfg.Level, else info.
func New(cfg config.LoggerConfig, name string, opts Options) hclog.Logger {
	level := determineLevel(cfg)
	if opts.Verbose && level > hclog.Debug {
		level = hclog.Debug
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		Level:       level,
		Output:      out,
		JSONFormat:  cfg.JSONFormat,
		DisableTime: true,
	})
}

// determineLevel reads the environment first, then the configuration.
func determineLevel(cfg config.LoggerConfig) hclog.Level {
	if env := os.Getenv(EnvLevel); env != "" {
		return ParseLevel(env)
	}
	return ParseLevel(cfg.Level)
}

// ParseLevel converts a level name to hclog.Level. Unknown or empty names
// map to info.
func ParseLevel(s string) hclog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "WARN", "WARNING":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	case "OFF":
		return hclog.Off
	default:
		return hclog.Info
	}
}
