package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/panbanda/covdiff/pkg/analyzer/discrepancy"
	"github.com/panbanda/covdiff/pkg/coverage"
	"github.com/spf13/cobra"
)

// getPaths returns paths from args, defaulting to ["."]
func getPaths(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

// addOutputFlags registers --format and --output.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "Output format: text, json, markdown, toon (default from config)")
	cmd.Flags().StringP("output", "o", "", "Write output to file instead of stdout")
}

// getFormat returns the format flag value from the command.
func getFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("format")
	return format
}

// getOutputFile returns the output file path from the command.
func getOutputFile(cmd *cobra.Command) string {
	outputFile, _ := cmd.Flags().GetString("output")
	return outputFile
}

// reportDir returns the directory that holds the .map reports of an
// annotated file: main.gcov.c and main.llvm-cov.c both map to <out>/main.
func reportDir(out, annotated string) string {
	name := filepath.Base(coverage.StripTool(annotated))
	return filepath.Join(out, strings.TrimSuffix(name, filepath.Ext(name)))
}

// validateDetectors rejects unknown detector names.
func validateDetectors(names []string) error {
	for _, n := range names {
		known := false
		for _, k := range discrepancy.Names {
			if n == k {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown detector %q (known: %s)", n, strings.Join(discrepancy.Names, ", "))
		}
	}
	return nil
}

// joinInts renders lines as a comma-separated list.
func joinInts(lines []int) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprint(l)
	}
	return strings.Join(parts, ", ")
}
