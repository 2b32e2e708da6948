package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/covdiff/pkg/analyzer/discrepancy"
)

// AnalysisReport renders a classification run as a summary, a pattern
// table and a per-file table. Unexplained lines get their own table when
// there are any. JSON and TOON output serialize the analysis itself.
func AnalysisReport(a *discrepancy.Analysis) *Document {
	d := &Document{Title: "Coverage Discrepancy Analysis", Data: a}
	d.Add(summaryBlock(a.Summary), patternTable(a), fileTable(a))
	if t := unexplainedTable(a); t != nil {
		d.Add(t)
	}
	return d
}

// summaryBlock lists run-wide counts. The explained ratio is colored by
// how much of the candidate set it covers.
type summaryBlock discrepancy.Summary

func (s summaryBlock) RenderData() any {
	return discrepancy.Summary(s)
}

func (s summaryBlock) ratio() string {
	return fmt.Sprintf("%d (%s)", s.ExplainedLines, percent(s.ExplainedLines, s.CandidateLines))
}

func (s summaryBlock) RenderText(w io.Writer, colored bool) error {
	heading(w, "Summary", '=', colored, color.Bold)
	explained := s.ratio()
	if colored {
		explained = CoverageColor(s.ExplainedLines, s.CandidateLines, explained)
	}
	_, err := fmt.Fprintf(w, "Files analyzed:   %d\nCandidate lines:  %d\nExplained lines:  %s\nUnexplained:      %d\n",
		s.TotalFiles, s.CandidateLines, explained, s.UnexplainedLines)
	return err
}

func (s summaryBlock) RenderMarkdown(w io.Writer) error {
	_, err := fmt.Fprintf(w, "## Summary\n\n- Files analyzed: %d\n- Candidate lines: %d\n- Explained lines: %s\n- Unexplained: %d\n\n",
		s.TotalFiles, s.CandidateLines, s.ratio(), s.UnexplainedLines)
	return err
}

// patternTable totals each tool's pattern counts across files, gcov
// patterns first.
func patternTable(a *discrepancy.Analysis) *Table {
	type key struct{ tool, detector string }
	totals := make(map[key]discrepancy.PatternCount)
	var order []key
	total := 0
	for _, f := range a.Files {
		if f.Report == nil {
			continue
		}
		for _, pc := range f.Report.Summary {
			k := key{tool: f.Tool.String(), detector: pc.Detector}
			sum, ok := totals[k]
			if !ok {
				sum = discrepancy.PatternCount{Detector: pc.Detector, Description: pc.Description, Category: pc.Category}
				order = append(order, k)
			}
			sum.Count += pc.Count
			totals[k] = sum
			total += pc.Count
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].tool < order[j].tool
	})

	rows := make([][]string, 0, len(order))
	for _, k := range order {
		pc := totals[k]
		rows = append(rows, []string{k.tool, pc.Description, pc.Category.String(), strconv.Itoa(pc.Count)})
	}
	return NewTable("Patterns",
		[]string{"Tool", "Pattern", "Category", "Occurrences"},
		rows,
		[]string{"", "Total", "", strconv.Itoa(total)},
		nil,
	)
}

func fileTable(a *discrepancy.Analysis) *Table {
	rows := make([][]string, 0, len(a.Files))
	for _, f := range a.Files {
		if f.Report == nil {
			continue
		}
		candidates := len(f.Report.Reasons)
		explained := candidates - f.Report.Unexplained
		rows = append(rows, []string{
			f.Path,
			f.Tool.String(),
			strconv.Itoa(candidates),
			strconv.Itoa(explained),
			strconv.Itoa(f.Report.Unexplained),
			percent(explained, candidates),
		})
	}
	return NewTable("Files",
		[]string{"File", "Tool", "Candidates", "Explained", "Unexplained", "Coverage"},
		rows, nil, nil,
	)
}

func unexplainedTable(a *discrepancy.Analysis) *Table {
	var rows [][]string
	for _, f := range a.Files {
		if f.Report == nil || f.Report.Unexplained == 0 {
			continue
		}
		var lines []string
		for _, reason := range f.Report.Reasons {
			if !reason.Explained() {
				lines = append(lines, strconv.Itoa(reason.Line))
			}
		}
		rows = append(rows, []string{f.Path, f.Tool.String(), strings.Join(lines, ", ")})
	}
	if len(rows) == 0 {
		return nil
	}
	return NewTable("Unexplained Lines", []string{"File", "Tool", "Lines"}, rows, nil, nil)
}

// Reasons renders one file's classification the way its .map report
// reads. Explained lines are green and unexplained lines red when colored.
func Reasons(f discrepancy.FileResult) Renderable {
	return reasonList(f)
}

type reasonList discrepancy.FileResult

func (r reasonList) RenderData() any {
	return discrepancy.FileResult(r)
}

func (r reasonList) RenderText(w io.Writer, colored bool) error {
	heading(w, r.Path, '-', colored, color.Bold)
	if r.Report == nil {
		return nil
	}
	for _, reason := range r.Report.Reasons {
		line := reason.String()
		switch {
		case !colored:
		case reason.Explained():
			line = color.GreenString(line)
		default:
			line = color.RedString(line)
		}
		fmt.Fprintln(w, line)
	}
	for _, pc := range r.Report.Summary {
		fmt.Fprintf(w, "%s: %d\n", pc.Description, pc.Count)
	}
	_, err := fmt.Fprintf(w, "Total: %d\n", r.Report.Total)
	return err
}

func (r reasonList) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "## %s\n\n```\n", r.Path)
	if r.Report != nil {
		if _, err := r.Report.WriteTo(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "```\n\n")
	return err
}

func percent(part, whole int) string {
	if whole == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(whole))
}
