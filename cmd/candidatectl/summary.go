package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/report"
)

func newSummaryCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary <file.csv>...",
		Short: "Print the report of one or more files",
		Long: `Summary loads every file and prints its heading, shape and the
totals of the six report sections. Sections that cannot be drawn print
their warning instead. A file that fails is reported and the others
are still printed.

Example:
  candidatectl summary consulta_cand_2024_BA.csv
  candidatectl summary --json --encoding utf-8 sp.csv rj.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd.OutOrStdout(), opts, args, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the reports as JSON")
	return cmd
}

func runSummary(out io.Writer, opts *options, paths []string, asJSON bool) error {
	reports := make([]*report.Report, 0, len(paths))
	failed := 0
	for _, path := range paths {
		r, err := opts.buildReport(path)
		if err != nil {
			failed++
			fmt.Fprintf(out, "Erro ao processar o arquivo: %s: %v\n", path, err)
			continue
		}
		reports = append(reports, r)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encode reports: %w", err)
		}
	} else {
		for _, r := range reports {
			writeSummary(out, r)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func writeSummary(out io.Writer, r *report.Report) {
	fmt.Fprintf(out, "%s (%s)\n", r.Heading, r.FileName)
	fmt.Fprintf(out, "Total de linhas: %d\n", r.RowCount)
	fmt.Fprintf(out, "Total de colunas: %d\n", r.ColumnCount)
	for i := range r.Sections {
		s := &r.Sections[i]
		if s.Warning != "" {
			fmt.Fprintf(out, "  %-17s %s\n", s.Kind, s.Warning)
			continue
		}
		fmt.Fprintf(out, "  %-17s %d\n", s.Kind, s.Total())
	}
	fmt.Fprintln(out)
}
