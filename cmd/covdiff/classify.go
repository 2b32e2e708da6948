package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/panbanda/covdiff/internal/fileproc"
	"github.com/panbanda/covdiff/internal/output"
	"github.com/panbanda/covdiff/internal/progress"
	"github.com/panbanda/covdiff/internal/scanner"
	"github.com/panbanda/covdiff/pkg/analyzer"
	"github.com/panbanda/covdiff/pkg/analyzer/discrepancy"
	"github.com/panbanda/covdiff/pkg/coverage"
	"github.com/spf13/cobra"
)

var errNoCandidates = errors.New("no candidate lines: pass --lines, --gcov-lines/--llvm-cov-lines, or --gcov-report with --llvm-cov-report")

// candidateSource says where candidate lines come from. Exactly one of
// its three forms may be set.
type candidateSource struct {
	linesFile  string
	gcovLines  []int
	llvmLines  []int
	gcovReport string
	llvmReport string
}

// resolve returns a lookup from annotated file to its candidate lines.
func (s candidateSource) resolve() (func(path string) *coverage.CandidateLineSet, error) {
	explicit := len(s.gcovLines) > 0 || len(s.llvmLines) > 0
	reports := s.gcovReport != "" || s.llvmReport != ""

	set := 0
	for _, given := range []bool{s.linesFile != "", explicit, reports} {
		if given {
			set++
		}
	}
	switch {
	case set == 0:
		return nil, errNoCandidates
	case set > 1:
		return nil, errors.New("--lines, --gcov-lines/--llvm-cov-lines and --*-report are mutually exclusive")
	}

	switch {
	case s.linesFile != "":
		cf, err := coverage.LoadCandidates(s.linesFile)
		if err != nil {
			return nil, err
		}
		return cf.For, nil
	case explicit:
		lines := coverage.NewCandidateLineSet(s.gcovLines, s.llvmLines)
		return func(string) *coverage.CandidateLineSet { return lines }, nil
	default:
		lines, err := diffReports(s.gcovReport, s.llvmReport)
		if err != nil {
			return nil, err
		}
		return func(string) *coverage.CandidateLineSet { return lines }, nil
	}
}

// diffReports parses both tools' reports and computes candidate lines.
func diffReports(gcovReport, llvmReport string) (*coverage.CandidateLineSet, error) {
	if gcovReport == "" || llvmReport == "" {
		return nil, errors.New("--gcov-report and --llvm-cov-report must be given together")
	}
	gcov, err := coverage.ParseReportFile(gcovReport, coverage.Gcov)
	if err != nil {
		return nil, err
	}
	llvm, err := coverage.ParseReportFile(llvmReport, coverage.LLVMCov)
	if err != nil {
		return nil, err
	}
	return coverage.Diff(gcov, llvm), nil
}

type classifyOptions struct {
	candidates candidateSource
	outDir     string
	noCache    bool
	chain      bool
	disable    []string
	workers    int
	reasons    bool
}

func newClassifyCmd(a *app) *cobra.Command {
	opts := &classifyOptions{}
	cmd := &cobra.Command{
		Use:   "classify [path...]",
		Short: "Classify candidate lines of annotated sources",
		Long: `Classifies every candidate line of each annotated source (files named
*.gcov.<ext> or *.llvm-cov.<ext>) and writes gcov.map / llvm-cov.map
reports under --out, one directory per source file.

Examples:
  covdiff classify --gcov-lines 12,14 --llvm-cov-lines 20 main.gcov.c main.llvm-cov.c
  covdiff classify --lines candidates.toml --out reports src/
  covdiff classify --gcov-report main.c.gcov --llvm-cov-report main.c.txt .`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(a, cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.candidates.linesFile, "lines", "", "Candidate line file (TOML, YAML, or JSON)")
	f.IntSliceVar(&opts.candidates.gcovLines, "gcov-lines", nil, "Candidate lines for gcov-annotated files")
	f.IntSliceVar(&opts.candidates.llvmLines, "llvm-cov-lines", nil, "Candidate lines for llvm-cov-annotated files")
	f.StringVar(&opts.candidates.gcovReport, "gcov-report", "", "gcov line report to diff against --llvm-cov-report")
	f.StringVar(&opts.candidates.llvmReport, "llvm-cov-report", "", "llvm-cov line report to diff against --gcov-report")
	f.StringVar(&opts.outDir, "out", "", "Directory for .map reports (default from config output.dir)")
	f.BoolVar(&opts.noCache, "no-cache", false, "Disable the result cache")
	f.BoolVar(&opts.chain, "chain-followers", false, "Also explain statements that follow an explained jump follower")
	f.StringSliceVar(&opts.disable, "disable", nil, "Detectors to disable (if_optimize, unmarked_label, const_array_init, jump_block)")
	f.IntVar(&opts.workers, "workers", 0, "Parallel workers (default from config, 0 means 2x CPUs)")
	f.BoolVar(&opts.reasons, "reasons", false, "List the reason for every candidate line")
	addOutputFlags(cmd)
	return cmd
}

func runClassify(a *app, cmd *cobra.Command, args []string, opts *classifyOptions) error {
	if err := a.setup(cmd); err != nil {
		return err
	}
	if err := validateDetectors(opts.disable); err != nil {
		return err
	}

	linesFor, err := opts.candidates.resolve()
	if err != nil {
		return err
	}

	files, err := scanner.NewScanner(a.cfg).ScanPaths(getPaths(args))
	if err != nil {
		return err
	}
	files, skipped := scanner.FilterBySize(files, a.cfg.MaxFileSize)
	if skipped > 0 {
		a.logger.Warn("skipped files over max_file_size", "count", skipped, "max_file_size", a.cfg.MaxFileSize)
	}

	formatter, err := a.formatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if len(files) == 0 {
		formatter.Warning("No annotated source files found")
		return nil
	}

	jobs := make([]discrepancy.Job, len(files))
	for i, f := range files {
		jobs[i] = discrepancy.Job{Path: f, Lines: linesFor(f)}
	}
	groups := scanner.GroupByTool(files)
	for _, tool := range []coverage.Tool{coverage.Gcov, coverage.LLVMCov} {
		group := groups[tool]
		candidates := 0
		for _, f := range group {
			candidates += len(linesFor(f).Lines(tool))
		}
		a.logger.Debug("annotated files", "tool", tool.String(), "files", len(group), "candidate_lines", candidates)
		if len(group) > 0 && candidates == 0 {
			a.logger.Warn("no candidate lines for annotated files", "tool", tool.String(), "files", len(group))
		}
	}

	c, err := a.openCache(opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}

	anOpts := []discrepancy.Option{
		discrepancy.WithConfig(a.cfg),
		discrepancy.WithCache(c),
		discrepancy.WithLogger(a.logger),
		discrepancy.WithDisabledDetectors(opts.disable...),
	}
	if opts.chain {
		anOpts = append(anOpts, discrepancy.WithChainFollowers(true))
	}
	if opts.workers > 0 {
		anOpts = append(anOpts, discrepancy.WithWorkers(opts.workers))
	}
	an := discrepancy.New(anOpts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bar := progress.NewTrackerTo(cmd.ErrOrStderr(), "Classifying candidate lines...", len(jobs))
	ctx = analyzer.WithTracker(ctx, bar.Analyzer())
	analysis, runErr := an.Analyze(ctx, jobs)
	bar.FinishSuccess()

	var perrs *fileproc.ProcessingErrors
	if errors.As(runErr, &perrs) {
		for _, pe := range perrs.Sorted() {
			a.logger.Debug("classification failed", "path", pe.Path, "error", pe.Err)
			formatter.Error("%s: %v", pe.Path, pe.Err)
		}
	} else if runErr != nil {
		return runErr
	}

	outDir := opts.outDir
	if outDir == "" {
		outDir = a.cfg.Output.Dir
	}
	if outDir != "" {
		for _, f := range analysis.Files {
			path, err := f.Report.WriteMap(reportDir(outDir, f.Path))
			if err != nil {
				return err
			}
			a.logger.Info("wrote report", "path", path)
		}
	}

	report := output.AnalysisReport(analysis)
	if opts.reasons && !formatter.Format().Structured() {
		for _, f := range analysis.Files {
			report.Add(output.Reasons(f))
		}
	}
	if err := formatter.Output(report); err != nil {
		return err
	}

	if runErr != nil {
		return fmt.Errorf("classification incomplete: %w", runErr)
	}
	return nil
}
