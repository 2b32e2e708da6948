package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// heading writes title underlined with rule. Empty titles write nothing.
func heading(w io.Writer, title string, rule byte, colored bool, attrs ...color.Attribute) {
	if title == "" {
		return
	}
	if colored {
		color.New(attrs...).Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintln(w, strings.Repeat(string(rule), len(title)))
}

// Table is a titled grid of cells. Data is what JSON and TOON output
// serialize in place of the cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  []string
	Data    any
}

// NewTable creates a table.
func NewTable(title string, headers []string, rows [][]string, footer []string, data any) *Table {
	return &Table{Title: title, Headers: headers, Rows: rows, Footer: footer, Data: data}
}

func (t *Table) RenderData() any {
	return t.Data
}

// RenderText draws the table without borders or column separators.
func (t *Table) RenderText(w io.Writer, colored bool) error {
	heading(w, t.Title, '=', colored, color.Bold)
	if t.Title != "" {
		fmt.Fprintln(w)
	}

	left := tw.CellAlignment{Global: tw.AlignLeft}
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{Alignment: left, Formatting: tw.CellFormatting{AutoFormat: tw.On}},
			Row:    tw.CellConfig{Alignment: left},
			Footer: tw.CellConfig{Alignment: left},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders:  tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{Separators: tw.Separators{BetweenColumns: tw.Off}},
		}),
	)
	table.Header(t.Headers)
	for _, r := range t.Rows {
		table.Append(r)
	}
	if len(t.Footer) > 0 {
		cells := make([]any, len(t.Footer))
		for i, c := range t.Footer {
			cells[i] = c
		}
		table.Footer(cells...)
	}
	table.Render()
	_, err := fmt.Fprintln(w)
	return err
}

func (t *Table) RenderMarkdown(w io.Writer) error {
	if t.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", t.Title)
	}
	row := func(cells []string) {
		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	row(t.Headers)
	rule := make([]string, len(t.Headers))
	for i := range rule {
		rule[i] = "---"
	}
	row(rule)
	for _, r := range t.Rows {
		row(r)
	}
	if len(t.Footer) > 0 {
		row(t.Footer)
	}
	_, err := fmt.Fprintln(w)
	return err
}

// Document is a titled sequence of blocks. JSON and TOON output serialize
// Data alone.
type Document struct {
	Title  string
	Blocks []Renderable
	Data   any
}

// Add appends blocks to the document.
func (d *Document) Add(blocks ...Renderable) {
	d.Blocks = append(d.Blocks, blocks...)
}

func (d *Document) RenderData() any {
	return d.Data
}

func (d *Document) RenderText(w io.Writer, colored bool) error {
	heading(w, d.Title, '=', colored, color.Bold, color.FgCyan)
	for _, b := range d.Blocks {
		fmt.Fprintln(w)
		if err := b.RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) RenderMarkdown(w io.Writer) error {
	if d.Title != "" {
		fmt.Fprintf(w, "# %s\n\n", d.Title)
	}
	for _, b := range d.Blocks {
		if err := b.RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}
