package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/charts"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/report"
)

func newRenderCmd(opts *options) *cobra.Command {
	var (
		outDir string
		format string
	)

	cmd := &cobra.Command{
		Use:   "render <file.csv>",
		Short: "Write one chart file per report section",
		Long: `Render builds the report of a file and writes every section that
has data as <name>-<kind>.<format> into the output directory.

Example:
  candidatectl render consulta_cand_2024_BA.csv --out charts --format png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := charts.Format(strings.ToLower(format))
			if f != charts.FormatSVG && f != charts.FormatPNG {
				return fmt.Errorf("unknown format %q (valid: svg, png)", format)
			}
			return runRender(cmd.OutOrStdout(), opts, args[0], outDir, f)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVarP(&format, "format", "f", string(charts.FormatSVG), "chart format (svg or png)")
	return cmd
}

func runRender(out io.Writer, opts *options, path, outDir string, format charts.Format) error {
	r, err := opts.buildReport(path)
	if err != nil {
		return fmt.Errorf("process %s: %w", path, err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i := range r.Sections {
		s := &r.Sections[i]
		if !s.HasChart() {
			msg := s.Warning
			if msg == "" {
				msg = "no data"
			}
			fmt.Fprintf(out, "skipped %s: %s\n", s.Kind, msg)
			continue
		}

		target := filepath.Join(outDir, fmt.Sprintf("%s-%s.%s", base, s.Kind, format))
		if err := writeChart(target, s, format); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", target)
	}
	return nil
}

func writeChart(target string, s *report.Section, format charts.Format) error {
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if err := charts.Render(s, format, f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", s.Kind, err)
	}
	return f.Close()
}
