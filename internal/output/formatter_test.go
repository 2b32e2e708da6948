package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

// forceColor enables ANSI output for the rest of the test.
func forceColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"TEXT", FormatText},
		{"json", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"TOON", FormatTOON},
		{"", FormatText},
		{"xml", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatStructured(t *testing.T) {
	for format, want := range map[Format]bool{
		FormatText:     false,
		FormatMarkdown: false,
		FormatJSON:     true,
		FormatTOON:     true,
	} {
		if got := format.Structured(); got != want {
			t.Errorf("%s.Structured() = %v, want %v", format, got, want)
		}
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "report.json")

	f, err := NewFormatter(FormatJSON, outputPath, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	if f.file == nil {
		t.Error("file should not be nil for file output")
	}
	if f.colored {
		t.Error("file output should never be colored")
	}
	if err := f.Output(NewTable("T", nil, nil, nil, []int{2, 3})); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("output file should exist: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[\n  2,\n  3\n]" {
		t.Errorf("file content = %q", data)
	}
}

func TestNewFormatterInvalidPath(t *testing.T) {
	if _, err := NewFormatter(FormatText, "/nonexistent/directory/file.txt", false); err == nil {
		t.Error("NewFormatter() should error for invalid path")
	}
}

func TestNewWriterFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatMarkdown, &buf, true)

	if f.Format() != FormatMarkdown || !f.colored || f.writer != &buf {
		t.Errorf("unexpected formatter state: %+v", f)
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close() should not error without a file: %v", err)
	}
}

func TestTableRenderText(t *testing.T) {
	tests := []struct {
		name  string
		table *Table
		want  []string
	}{
		{
			name: "with_footer",
			table: NewTable(
				"Patterns",
				[]string{"Tool", "Pattern", "Occurrences"},
				[][]string{
					{"gcov", "If Optimize", "3"},
					{"llvm-cov", "Jump Block", "2"},
				},
				[]string{"", "Total", "5"},
				nil,
			),
			want: []string{"Patterns\n========", "TOOL", "PATTERN", "If Optimize", "Jump Block", "Total", "5"},
		},
		{
			name:  "empty",
			table: NewTable("Files", []string{"File", "Tool"}, [][]string{}, nil, nil),
			want:  []string{"Files", "FILE", "TOOL"},
		},
		{
			name:  "no_title",
			table: NewTable("", []string{"A", "B"}, [][]string{{"1", "2"}}, nil, nil),
			want:  []string{"A", "B", "1", "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.table.RenderText(&buf, false); err != nil {
				t.Fatalf("RenderText() error: %v", err)
			}
			output := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("RenderText() missing %q in output:\n%s", want, output)
				}
			}
		})
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := NewTable("Files",
		[]string{"File", "Tool"},
		[][]string{{"main.gcov.c", "gcov"}},
		[]string{"1 file", ""},
		nil,
	)

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}

	want := "## Files\n\n" +
		"| File | Tool |\n" +
		"| --- | --- |\n" +
		"| main.gcov.c | gcov |\n" +
		"| 1 file |  |\n\n"
	if buf.String() != want {
		t.Errorf("RenderMarkdown() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestDocumentRender(t *testing.T) {
	d := &Document{Title: "Coverage Discrepancy Analysis", Data: map[string]int{"files": 1}}
	d.Add(
		NewTable("Files", []string{"File"}, [][]string{{"a.gcov.c"}}, nil, nil),
		NewTable("Lines", []string{"Line"}, [][]string{{"7"}}, nil, nil),
	)

	var text bytes.Buffer
	if err := d.RenderText(&text, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	out := text.String()
	if !strings.HasPrefix(out, "Coverage Discrepancy Analysis\n=============================\n\nFiles\n") {
		t.Errorf("RenderText() should open with the title and first block:\n%s", out)
	}
	if strings.Index(out, "a.gcov.c") > strings.Index(out, "Lines") {
		t.Errorf("blocks out of order:\n%s", out)
	}

	var md bytes.Buffer
	if err := d.RenderMarkdown(&md); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	if !strings.HasPrefix(md.String(), "# Coverage Discrepancy Analysis\n\n## Files") {
		t.Errorf("RenderMarkdown() = %q", md.String())
	}

	if m, ok := d.RenderData().(map[string]int); !ok || m["files"] != 1 {
		t.Errorf("RenderData() = %v, want Data", d.RenderData())
	}
}

func TestFormatterOutputDispatch(t *testing.T) {
	table := NewTable("Cache", []string{"Entries"}, [][]string{{"3"}}, nil, map[string]int{"entries": 3})

	tests := []struct {
		format Format
		check  func(t *testing.T, out string)
	}{
		{FormatText, func(t *testing.T, out string) {
			if !strings.Contains(out, "ENTRIES") {
				t.Errorf("text output should render the table:\n%s", out)
			}
		}},
		{FormatMarkdown, func(t *testing.T, out string) {
			if !strings.HasPrefix(out, "## Cache\n\n| Entries |") {
				t.Errorf("markdown output should render the table:\n%s", out)
			}
		}},
		{FormatJSON, func(t *testing.T, out string) {
			var got map[string]int
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("output is not JSON: %v\n%s", err, out)
			}
			if got["entries"] != 3 {
				t.Errorf("got %v", got)
			}
		}},
		{FormatTOON, func(t *testing.T, out string) {
			if !strings.Contains(out, "entries: 3") {
				t.Errorf("TOON output should serialize Data:\n%s", out)
			}
			if strings.HasPrefix(strings.TrimSpace(out), "{") {
				t.Errorf("TOON output should not be JSON:\n%s", out)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewWriterFormatter(tt.format, &buf, false).Output(table); err != nil {
				t.Fatalf("Output() error: %v", err)
			}
			tt.check(t, buf.String())
		})
	}
}

func TestFormatterMessageMethods(t *testing.T) {
	tests := []struct {
		name   string
		method func(*Formatter, string, ...any)
		format string
		args   []any
		want   string
	}{
		{"success", (*Formatter).Success, "Wrote %d reports", []any{2}, "Wrote 2 reports\n"},
		{"warning", (*Formatter).Warning, "Skipped %s", []any{"big.gcov.c"}, "WARNING: Skipped big.gcov.c\n"},
		{"error", (*Formatter).Error, "Parse failed", nil, "ERROR: Parse failed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.method(NewWriterFormatter(FormatText, &buf, false), tt.format, tt.args...)
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestCoverageColor(t *testing.T) {
	forceColor(t)

	tests := []struct {
		explained, total int
		code             string
	}{
		{0, 0, "\x1b[32m"},
		{3, 3, "\x1b[32m"},
		{0, 4, "\x1b[31m"},
		{2, 4, "\x1b[33m"},
	}
	for _, tt := range tests {
		got := CoverageColor(tt.explained, tt.total, "x")
		if !strings.HasPrefix(got, tt.code) || !strings.Contains(got, "x") {
			t.Errorf("CoverageColor(%d, %d) = %q, want prefix %q", tt.explained, tt.total, got, tt.code)
		}
	}
}
