package discrepancy

import (
	"github.com/panbanda/covdiff/pkg/ast"
	"github.com/panbanda/covdiff/pkg/coverage"
)

// Registry is the ordered set of detectors used by one session. Detectors
// are consulted in priority order and the first match wins.
type Registry struct {
	detectors []Detector
}

type registryConfig struct {
	oracle   ast.Oracle
	disabled map[string]bool
	jumpOpts []JumpBlockOption
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

// WithOracle sets the constant-folding oracle used by detectors.
func WithOracle(o ast.Oracle) RegistryOption {
	return func(c *registryConfig) {
		c.oracle = o
	}
}

// WithDisabled removes the named detectors. The remaining ones keep their
// relative order.
func WithDisabled(names ...string) RegistryOption {
	return func(c *registryConfig) {
		for _, n := range names {
			c.disabled[n] = true
		}
	}
}

// WithJumpBlockOptions passes options to the JumpBlock detector.
func WithJumpBlockOptions(opts ...JumpBlockOption) RegistryOption {
	return func(c *registryConfig) {
		c.jumpOpts = append(c.jumpOpts, opts...)
	}
}

// NewRegistry creates fresh detectors in priority order: IfOptimize,
// UnmarkedLabel, ConstArrayInit, JumpBlock.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := &registryConfig{disabled: make(map[string]bool)}
	for _, opt := range opts {
		opt(cfg)
	}

	all := []Detector{
		NewIfOptimize(cfg.oracle),
		NewUnmarkedLabel(),
		NewConstArrayInit(cfg.oracle),
		NewJumpBlock(cfg.jumpOpts...),
	}

	r := &Registry{detectors: make([]Detector, 0, len(all))}
	for _, d := range all {
		if !cfg.disabled[d.Name()] {
			r.detectors = append(r.detectors, d)
		}
	}
	return r
}

// Detectors returns every detector in priority order.
func (r *Registry) Detectors() []Detector {
	return r.detectors
}

// ForTool returns the detectors whose pattern explains tool's report, in
// priority order.
func (r *Registry) ForTool(tool coverage.Tool) []Detector {
	var out []Detector
	for _, d := range r.detectors {
		if d.Tool() == tool {
			out = append(out, d)
		}
	}
	return out
}

// Classify offers node to the detectors of tool in priority order and
// returns the first that explains it, or nil.
func (r *Registry) Classify(node *ast.Node, tool coverage.Tool) Detector {
	for _, d := range r.detectors {
		if d.Tool() != tool {
			continue
		}
		if d.Parse(node) {
			return d
		}
	}
	return nil
}
