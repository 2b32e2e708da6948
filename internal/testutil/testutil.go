// Package testutil holds filesystem helpers and annotated source fixtures
// shared by covdiff tests.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Lines joins source lines with newlines and a trailing newline.
func Lines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// IfOptimizeSource has a constant-true if on line 2 whose body is line 3.
var IfOptimizeSource = Lines(
	"int f(int x) {",
	"  if (1) {",
	"    x = 2;",
	"  }",
	"  return x;",
	"}",
)

// JumpBlockSource has a statement after an always-returning if on line 5.
var JumpBlockSource = Lines(
	"int k(int x) {",
	"  if (x > 1) {",
	"    return 1;",
	"  }",
	"  x++;",
	"  return x;",
	"}",
)

// WriteFile writes content to root/name, creating parent directories, and
// returns the full path.
func WriteFile(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
	return path
}

// ReadFile reads content from a file.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// CreateFileTree creates multiple files from a map of path -> content.
func CreateFileTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, root, name, content)
	}
}

// ListFiles returns every file under root as a sorted, slash-separated
// path relative to root.
func ListFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDir(%s) error: %v", root, err)
	}
	sort.Strings(files)
	return files
}
