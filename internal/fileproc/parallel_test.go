package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/panbanda/covdiff/pkg/analyzer"
	"github.com/panbanda/covdiff/pkg/parser"
)

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestMapFiles_PreservesInputOrder(t *testing.T) {
	tmpDir := t.TempDir()

	var files []string
	for i := 0; i < 20; i++ {
		files = append(files, createTestFile(t, tmpDir, fmt.Sprintf("f%02d.gcov.c", i), "int x;"))
	}

	results, errs := MapFilesN(context.Background(), files, 4, func(p *parser.Parser, path string) (string, error) {
		return filepath.Base(path), nil
	})

	if errs != nil {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(results) != len(files) {
		t.Fatalf("Expected %d results, got %d", len(files), len(results))
	}
	for i, r := range results {
		if want := filepath.Base(files[i]); r != want {
			t.Errorf("results[%d] = %s, want %s", i, r, want)
		}
	}
}

func TestMapFiles_EmptyFileList(t *testing.T) {
	results, errs := MapFiles(context.Background(), []string{}, func(p *parser.Parser, path string) (string, error) {
		return path, nil
	})

	if results != nil {
		t.Errorf("Expected nil for empty file list, got %v", results)
	}
	if errs != nil {
		t.Errorf("Expected nil errors for empty file list, got %v", errs)
	}
}

func TestMapFiles_WithErrors(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "good1.gcov.c", "int a;"),
		createTestFile(t, tmpDir, "bad.c", "int b;"),
		createTestFile(t, tmpDir, "good2.llvm-cov.c", "int c;"),
	}

	sentinel := errors.New("simulated error")
	processedCount := atomic.Int32{}
	results, errs := MapFiles(context.Background(), files, func(p *parser.Parser, path string) (string, error) {
		processedCount.Add(1)
		if filepath.Base(path) == "bad.c" {
			return "", sentinel
		}
		return filepath.Base(path), nil
	})

	if int(processedCount.Load()) != 3 {
		t.Errorf("Expected all 3 files to be processed, got %d", processedCount.Load())
	}
	if len(results) != 2 || results[0] != "good1.gcov.c" || results[1] != "good2.llvm-cov.c" {
		t.Errorf("Unexpected results: %v", results)
	}

	if errs == nil {
		t.Fatal("Expected errors to be returned")
	}
	if len(errs.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(errs.Errors))
	}
	if errs.Errors[0].Path != files[1] {
		t.Errorf("Error path = %s, want %s", errs.Errors[0].Path, files[1])
	}
	if !errors.Is(errs, sentinel) {
		t.Error("errors.Is should find the file error through ProcessingErrors")
	}
}

func TestMapFiles_ParserAvailable(t *testing.T) {
	tmpDir := t.TempDir()
	file := createTestFile(t, tmpDir, "main.gcov.c", "int main(void) { return 0; }\n")

	results, errs := MapFiles(context.Background(), []string{file}, func(p *parser.Parser, path string) (bool, error) {
		if p == nil {
			t.Error("Parser should not be nil")
			return false, nil
		}

		result, err := p.ParseFile(path)
		if err != nil {
			return false, err
		}
		defer result.Tree.Close()

		return result.Tree.RootNode() != nil, nil
	})

	if errs != nil {
		t.Errorf("Unexpected errors: %v", errs)
	}
	if len(results) != 1 || !results[0] {
		t.Error("Parser should have successfully parsed the file")
	}
}

func TestMapFiles_WithTracker(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "file1.c", "int a;"),
		createTestFile(t, tmpDir, "file2.c", "int b;"),
		createTestFile(t, tmpDir, "file3.c", "int c;"),
	}

	progressCount := atomic.Int32{}
	tracker := analyzer.NewTracker(func(p analyzer.Progress) {
		progressCount.Add(1)
	})

	ctx := analyzer.WithTracker(context.Background(), tracker)
	_, errs := MapFiles(ctx, files, func(p *parser.Parser, path string) (int, error) {
		if filepath.Base(path) == "file2.c" {
			return 0, errors.New("boom")
		}
		return 1, nil
	})

	if errs == nil {
		t.Fatal("Expected one error")
	}
	if int(progressCount.Load()) != len(files) {
		t.Errorf("Expected progress callback %d times, got %d", len(files), progressCount.Load())
	}
	if tracker.Total() != 3 || tracker.Failed() != 1 {
		t.Errorf("tracker total=%d failed=%d, want 3 and 1", tracker.Total(), tracker.Failed())
	}
}

func TestMapFiles_ContextCancelled(t *testing.T) {
	tmpDir := t.TempDir()
	files := []string{
		createTestFile(t, tmpDir, "a.c", "int a;"),
		createTestFile(t, tmpDir, "b.c", "int b;"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, errs := MapFiles(ctx, files, func(p *parser.Parser, path string) (int, error) {
		return 1, nil
	})

	if len(results) != 0 {
		t.Errorf("Expected no results after cancellation, got %d", len(results))
	}
	if errs == nil || len(errs.Errors) != len(files) {
		t.Fatalf("Expected %d cancellation errors, got %v", len(files), errs)
	}
	if !errors.Is(errs, context.Canceled) {
		t.Error("Expected context.Canceled in collected errors")
	}
}

func TestProcessingErrors(t *testing.T) {
	var nilErrs *ProcessingErrors
	if nilErrs.HasErrors() {
		t.Error("nil collection should have no errors")
	}

	errs := &ProcessingErrors{}
	if errs.Error() != "no errors" {
		t.Errorf("Error() = %q", errs.Error())
	}

	errs.Add("z.c", errors.New("late"))
	if got := errs.Error(); got != "z.c: late" {
		t.Errorf("Error() = %q", got)
	}

	errs.Add("a.c", errors.New("early"))
	sorted := errs.Sorted()
	if sorted[0].Path != "a.c" || sorted[1].Path != "z.c" {
		t.Errorf("Sorted() = %v", sorted)
	}
	if got := errs.Error(); got != "2 files failed to process (first: z.c: late)" {
		t.Errorf("Error() = %q", got)
	}
}
