// Package scanner discovers coverage-annotated C and C++ sources.
package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/covdiff/pkg/config"
	"github.com/panbanda/covdiff/pkg/coverage"
	"github.com/panbanda/covdiff/pkg/parser"
)

// Scanner finds annotated source files: C or C++ files whose name carries
// a tool marker, such as "main.gcov.c" or "util.llvm-cov.cpp".
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
	loaded   map[string]bool
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg, loaded: make(map[string]bool)}
}

// findGitRoot returns the worktree root of the repository containing
// start, or "" outside a repository.
func findGitRoot(start string) string {
	repo, err := git.PlainOpenWithOptions(start, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return ""
	}
	wt, err := repo.Worktree()
	if err != nil {
		return ""
	}
	return wt.Filesystem.Root()
}

// loadExcludePatterns loads exclusion patterns from both config and .gitignore files.
// Config patterns are parsed as gitignore patterns and combined with .gitignore files.
func (s *Scanner) loadExcludePatterns(root string) {
	if s.loaded[root] {
		return
	}
	s.loaded[root] = true

	var patterns []gitignore.Pattern
	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			fs := osfs.New(gitRoot)
			if gitPatterns, err := gitignore.ReadPatterns(fs, nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

// isExcluded checks if a path matches any exclusion pattern.
func (s *Scanner) isExcluded(path string, isDir bool) bool {
	pathParts := strings.Split(path, string(filepath.Separator))
	if isDir {
		for _, dir := range s.config.Exclude.Dirs {
			if pathParts[len(pathParts)-1] == dir {
				return true
			}
		}
	} else if s.config.ShouldExclude(path) {
		return true
	}
	for _, m := range s.matchers {
		if m.Match(pathParts, isDir) {
			return true
		}
	}
	return false
}

// IsAnnotated reports whether path names a C or C++ file carrying a tool
// marker.
func IsAnnotated(path string) bool {
	if _, err := coverage.ToolFromPath(path); err != nil {
		return false
	}
	return parser.DetectLanguage(path) != parser.LangUnknown
}

// ScanDir recursively scans a directory for annotated source files, in
// lexical order. Symlinks that leave root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 64)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(root)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		if relPath == "." {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isExcluded(relPath, false) {
			return nil
		}
		if IsAnnotated(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// ScanFile checks if a single file should be analyzed.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}

	s.loadExcludePatterns(filepath.Dir(path))
	if s.isExcluded(filepath.Base(path), false) {
		return false, nil
	}
	return IsAnnotated(path), nil
}

// ErrNotAnnotated is returned by ScanPaths for an explicitly named file
// that carries no tool marker or is not C or C++.
var ErrNotAnnotated = errors.New("not an annotated C/C++ source")

// ScanPaths expands files and directories into a sorted, de-duplicated
// list of annotated files. Excluded files named explicitly are skipped;
// explicitly named files that are not annotated sources are an error.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			files, err := s.ScanDir(p)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
			continue
		}
		if !IsAnnotated(p) {
			return nil, &fs.PathError{Op: "scan", Path: p, Err: ErrNotAnnotated}
		}
		if ok, err := s.ScanFile(p); err != nil {
			return nil, err
		} else if ok {
			add(p)
		}
	}

	sort.Strings(out)
	return out, nil
}

// GroupByTool groups annotated files by the tool named in their file name.
func GroupByTool(files []string) map[coverage.Tool][]string {
	groups := make(map[coverage.Tool][]string)
	for _, f := range files {
		if tool, err := coverage.ToolFromPath(f); err == nil {
			groups[tool] = append(groups[tool], f)
		}
	}
	return groups
}

// FilterBySize filters files that exceed the configured maximum size.
// Returns the filtered list and the count of files that were skipped.
// If maxSize is 0, returns the original list unchanged.
func FilterBySize(files []string, maxSize int64) ([]string, int) {
	if maxSize <= 0 {
		return files, 0
	}

	filtered := make([]string, 0, len(files))
	skipped := 0
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || info.Size() > maxSize {
			skipped++
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered, skipped
}
