package discrepancy

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/panbanda/covdiff/internal/cache"
	"github.com/panbanda/covdiff/internal/fileproc"
	"github.com/panbanda/covdiff/pkg/analyzer"
	"github.com/panbanda/covdiff/pkg/ast"
	"github.com/panbanda/covdiff/pkg/ast/treesitter"
	"github.com/panbanda/covdiff/pkg/config"
	"github.com/panbanda/covdiff/pkg/coverage"
	"github.com/panbanda/covdiff/pkg/parser"
)

// cacheVersion changes whenever classification output changes shape.
const cacheVersion = "covdiff-discrepancy-v1"

// Ensure Analyzer implements analyzer.JobAnalyzer.
var _ analyzer.JobAnalyzer[Job, *Analysis] = (*Analyzer)(nil)

// Job is one annotated source file and its candidate lines.
type Job struct {
	Path  string
	Lines *coverage.CandidateLineSet
}

// Analyzer classifies candidate lines across many annotated files. Each
// file gets its own session and registry.
type Analyzer struct {
	disabled []string
	chain    bool
	oracle   ast.Oracle
	cache    *cache.Cache
	logger   hclog.Logger
	workers  int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDisabledDetectors turns off the named detectors.
func WithDisabledDetectors(names ...string) Option {
	return func(a *Analyzer) {
		a.disabled = append(a.disabled, names...)
	}
}

// WithChainFollowers enables JumpBlock follower chaining.
func WithChainFollowers(enabled bool) Option {
	return func(a *Analyzer) {
		a.chain = enabled
	}
}

// WithFoldOracle replaces the constant-folding oracle. Results computed
// with a custom oracle are never cached.
func WithFoldOracle(o ast.Oracle) Option {
	return func(a *Analyzer) {
		a.oracle = o
	}
}

// WithCache stores per-file reports in c.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithLogger sets the logger. Per-line classification is logged at trace
// level.
func WithLogger(l hclog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithWorkers bounds parallel file processing. Zero means the default.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithConfig applies the detector and worker settings of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(a *Analyzer) {
		if cfg == nil {
			return
		}
		a.disabled = append(a.disabled, cfg.Detectors.Disabled()...)
		a.chain = cfg.Detectors.JumpBlock.ChainFollowers
		a.workers = cfg.Workers
	}
}

// New creates an analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		cache:  cache.Disabled(),
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze classifies every job in parallel. Results keep job order; jobs
// that fail are left out and reported through the returned error.
func (a *Analyzer) Analyze(ctx context.Context, jobs []Job) (*Analysis, error) {
	byPath := make(map[string]*coverage.CandidateLineSet, len(jobs))
	files := make([]string, 0, len(jobs))
	for _, j := range jobs {
		if _, seen := byPath[j.Path]; seen {
			continue
		}
		byPath[j.Path] = j.Lines
		files = append(files, j.Path)
	}

	results, errs := fileproc.MapFilesN(ctx, files, a.workers, func(psr *parser.Parser, path string) (FileResult, error) {
		r, err := a.analyze(psr, path, byPath[path])
		if err != nil {
			return FileResult{}, err
		}
		return *r, nil
	})

	analysis := NewAnalysis(results)
	if errs.HasErrors() {
		return analysis, errs
	}
	return analysis, nil
}

// AnalyzeFile classifies the candidate lines of a single annotated file.
func (a *Analyzer) AnalyzeFile(path string, lines *coverage.CandidateLineSet) (*FileResult, error) {
	psr := parser.New()
	defer psr.Close()
	return a.analyze(psr, path, lines)
}

func (a *Analyzer) analyze(psr *parser.Parser, path string, lines *coverage.CandidateLineSet) (*FileResult, error) {
	tool, err := coverage.ToolFromPath(path)
	if err != nil {
		return nil, err
	}
	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		return nil, fmt.Errorf("%w: %s", parser.ErrUnsupportedLanguage, path)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	candidates := lines.Lines(tool)

	useCache := a.cache.Enabled() && a.oracle == nil
	var key string
	if useCache {
		key = a.cacheKey(source, lang, tool, candidates)
		if cached, ok := cache.Load[FileResult](a.cache, key); ok && cached.Report != nil {
			cached.Path = path
			a.logger.Debug("cache hit", "path", path)
			return &cached, nil
		}
	}

	tree, err := treesitter.NewWithParser(psr).ParseSource(source, lang, path)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	session := NewSession(tool, a.registryOptions()...)
	session.SetLogger(a.logger.Named("session").With("path", path))
	report, err := session.Run(tree, candidates)
	if err != nil {
		return nil, err
	}

	result := &FileResult{
		Path:   path,
		Source: coverage.StripTool(path),
		Tool:   tool,
		Report: report,
	}
	a.logger.Debug("classified file",
		"path", path,
		"tool", tool,
		"candidates", len(report.Reasons),
		"explained", len(report.Reasons)-report.Unexplained,
		"unexplained", report.Unexplained,
	)

	if useCache {
		if err := cache.Store(a.cache, key, result); err != nil {
			a.logger.Warn("cache write failed", "path", path, "error", err)
		}
	}
	return result, nil
}

func (a *Analyzer) registryOptions() []RegistryOption {
	opts := []RegistryOption{WithDisabled(a.disabled...)}
	if a.oracle != nil {
		opts = append(opts, WithOracle(a.oracle))
	}
	if a.chain {
		opts = append(opts, WithJumpBlockOptions(WithFollowerChaining()))
	}
	return opts
}

// cacheKey covers the source and its language, the tool, the candidate
// lines and every setting that changes classification.
func (a *Analyzer) cacheKey(source []byte, lang parser.Language, tool coverage.Tool, lines []int) string {
	encoded := make([]byte, 0, len(lines)*binary.MaxVarintLen64)
	for _, l := range lines {
		encoded = binary.AppendUvarint(encoded, uint64(l))
	}
	settings := fmt.Sprintf("disabled=%s;chain=%t", strings.Join(a.disabled, ","), a.chain)
	return cache.Key(
		[]byte(cacheVersion),
		source,
		[]byte(lang),
		[]byte(tool.String()),
		encoded,
		[]byte(settings),
	)
}
