package main

import (
	"strconv"

	"github.com/panbanda/covdiff/internal/output"
	"github.com/panbanda/covdiff/pkg/coverage"
	"github.com/spf13/cobra"
)

// candidateLines is the serialized form of a diff. Its JSON form is a
// valid --lines file.
type candidateLines struct {
	Gcov    []int `json:"gcov"`
	LLVMCov []int `json:"llvm-cov"`
}

func newDiffCmd(a *app) *cobra.Command {
	var gcovReport, llvmReport string
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compute candidate lines from a gcov and an llvm-cov report",
		Long: `Parses a gcov text report and an llvm-cov text report for the same
source file and lists the lines on which they disagree. A line is a
candidate for the tool that ranks it higher: executed over not executed
over not executable.

Examples:
  covdiff diff --gcov-report main.c.gcov --llvm-cov-report main.c.txt
  covdiff diff --gcov-report main.c.gcov --llvm-cov-report main.c.txt -f json -o lines.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			gcov, err := coverage.ParseReportFile(gcovReport, coverage.Gcov)
			if err != nil {
				return err
			}
			llvm, err := coverage.ParseReportFile(llvmReport, coverage.LLVMCov)
			if err != nil {
				return err
			}
			set := coverage.Diff(gcov, llvm)
			a.logger.Debug("diffed reports",
				"gcov_executable", gcov.ExecutableLines(),
				"llvm_cov_executable", llvm.ExecutableLines(),
				"candidates", set.Len(coverage.Gcov)+set.Len(coverage.LLVMCov),
			)

			formatter, err := a.formatter(cmd)
			if err != nil {
				return err
			}
			defer formatter.Close()

			data := candidateLines{
				Gcov:    nonNil(set.Lines(coverage.Gcov)),
				LLVMCov: nonNil(set.Lines(coverage.LLVMCov)),
			}
			rows := [][]string{
				diffRow(coverage.Gcov, gcov, data.Gcov),
				diffRow(coverage.LLVMCov, llvm, data.LLVMCov),
			}
			return formatter.Output(output.NewTable("Candidate Lines",
				[]string{"Tool", "Executable", "Executed", "Candidates", "Lines"},
				rows, nil, data,
			))
		},
	}
	cmd.Flags().StringVar(&gcovReport, "gcov-report", "", "gcov line report")
	cmd.Flags().StringVar(&llvmReport, "llvm-cov-report", "", "llvm-cov line report")
	_ = cmd.MarkFlagRequired("gcov-report")
	_ = cmd.MarkFlagRequired("llvm-cov-report")
	addOutputFlags(cmd)
	return cmd
}

func diffRow(tool coverage.Tool, cov *coverage.LineCoverage, lines []int) []string {
	return []string{
		tool.String(),
		strconv.Itoa(cov.ExecutableLines()),
		strconv.Itoa(cov.ExecutedLines()),
		strconv.Itoa(len(lines)),
		joinInts(lines),
	}
}

func nonNil(lines []int) []int {
	if lines == nil {
		return []int{}
	}
	return lines
}
