// Command candidatectl builds candidate reports from CSV exports on the
// command line, without the web server, database or cache.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/candidates"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/report"
)

// options are the flags shared by every command
type options struct {
	encoding   string
	maleCode   string
	femaleCode string
}

func (o *options) loadOptions() candidates.LoadOptions {
	opts := candidates.DefaultLoadOptions()
	opts.Encoding = o.encoding
	return opts
}

func (o *options) reportOptions() report.Options {
	opts := report.DefaultOptions()
	opts.MaleCode = o.maleCode
	opts.FemaleCode = o.femaleCode
	return opts
}

// buildReport loads one file and runs the report builder over it
func (o *options) buildReport(path string) (*report.Report, error) {
	table, err := candidates.LoadFile(path, o.loadOptions())
	if err != nil {
		return nil, err
	}
	return report.Build(table, o.reportOptions()), nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "candidatectl",
		Short:        "Summarize and chart candidate CSV exports",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.encoding, "encoding", candidates.EncodingLatin1, "input encoding (iso-8859-1 or utf-8)")
	root.PersistentFlags().StringVar(&opts.maleCode, "male-code", candidates.DefaultMaleCode, "CD_GENERO value of men")
	root.PersistentFlags().StringVar(&opts.femaleCode, "female-code", candidates.DefaultFemaleCode, "CD_GENERO value of women")

	root.AddCommand(newSummaryCmd(opts), newRenderCmd(opts))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
