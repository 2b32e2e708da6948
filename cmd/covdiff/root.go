package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/panbanda/covdiff/internal/cache"
	"github.com/panbanda/covdiff/internal/logger"
	"github.com/panbanda/covdiff/internal/output"
	"github.com/panbanda/covdiff/pkg/config"
	"github.com/spf13/cobra"
)

// app holds state shared by every subcommand of one invocation.
type app struct {
	cfgFile string
	verbose bool
	noColor bool

	cfg    *config.Config
	source string
	logger hclog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "covdiff",
		Short: "Explain why gcov and llvm-cov disagree",
		Long: `covdiff classifies the source lines on which gcov and llvm-cov report
different coverage, attributing each line to a known syntactic pattern
(constant-folded if, unmarked label, const array initialization, code
after an unconditional jump) or marking it unexplained.

Annotated sources are named after the tool that produced them, such as
main.gcov.c and main.llvm-cov.c.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.noColor {
				color.NoColor = true
			}
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	pf.BoolVar(&a.verbose, "verbose", false, "Enable verbose output")
	pf.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newClassifyCmd(a),
		newDiffCmd(a),
		newConfigCmd(a),
		newCacheCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads and validates the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.cfgFile
	if path == "" {
		path = config.Find()
	}

	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	a.cfg = cfg
	a.source = path
	a.logger = logger.New(cfg.Logger, "covdiff", logger.Options{
		Verbose: a.verbose,
		Output:  cmd.ErrOrStderr(),
	})
	if path != "" {
		a.logger.Debug("loaded config", "path", path)
	}
	return nil
}

// formatter builds the output formatter from the --format and --output
// flags, falling back to the configured format.
func (a *app) formatter(cmd *cobra.Command) (*output.Formatter, error) {
	format := getFormat(cmd)
	if format == "" {
		format = a.cfg.Output.Format
	}
	if path := getOutputFile(cmd); path != "" {
		return output.NewFormatter(output.ParseFormat(format), path, false)
	}
	colored := a.cfg.Output.Color && !a.noColor && !color.NoColor
	return output.NewWriterFormatter(output.ParseFormat(format), cmd.OutOrStdout(), colored), nil
}

// openCache returns the configured cache, or a disabled one.
func (a *app) openCache(disabled bool) (*cache.Cache, error) {
	if disabled || !a.cfg.Cache.Enabled {
		return cache.Disabled(), nil
	}
	return cache.New(a.cfg.Cache.Dir, a.cfg.Cache.TTLDuration(), true)
}
