package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/JonMunkholm/prfbulk/internal/archive"
	"github.com/JonMunkholm/prfbulk/internal/core"
	"github.com/spf13/cobra"
)

// errRunFailed is returned when the pipeline ends in the failed phase. The
// messages have already been printed.
var errRunFailed = errors.New("conversion failed")

type convertOptions struct {
	startSeq  string
	out       string
	errorsOut string
	workers   int
	quiet     bool
}

func newConvertCmd() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <input.csv|input.xlsx|input.xls>",
		Short: "Convert a payment file into a bulk-import ZIP",
		Long: `Validate and convert a payment file.

On success the ZIP archive holds the numbered output files, errors.csv,
warnings.csv and manifest.json. On failure nothing is written except the
optional --errors-out report, and the command exits non-zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runConvert(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.startSeq, "start-seq", "001", "First sequence number; its width sets the minimum zero padding")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Archive path (default: prf_bulk_import_<date>_<range>.zip in the current directory)")
	cmd.Flags().StringVar(&opts.errorsOut, "errors-out", "", "Also write the error report CSV to this path")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Classification workers (default: number of CPUs)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print individual errors and warnings")

	return cmd
}

func runConvert(ctx context.Context, stdout, stderr io.Writer, input string, opts convertOptions) error {
	f, err := os.Open(input)
	if err != nil {
		return explain(stderr, fmt.Errorf("open input: %w", err))
	}
	defer f.Close()

	p := core.NewPipeline(core.Options{
		Workers:  opts.workers,
		Packager: archive.NewZipPackager(),
	})

	res, err := p.RunFile(ctx, input, f, opts.startSeq)
	if err != nil {
		return explain(stderr, fmt.Errorf("run: %w", err))
	}

	if opts.errorsOut != "" {
		if err := os.WriteFile(opts.errorsOut, core.RenderReport(res.Errors), 0o644); err != nil {
			return fmt.Errorf("write error report: %w", err)
		}
	}

	if !opts.quiet {
		for _, m := range res.Errors {
			fmt.Fprintln(stderr, "error:", m)
		}
		for _, m := range res.Warnings {
			fmt.Fprintln(stderr, "warning:", m)
		}
	}

	if res.Failed() {
		fmt.Fprintf(stderr, "conversion failed with %d error(s)\n", len(res.Errors))
		return errRunFailed
	}

	out := opts.out
	if out == "" {
		out = defaultArchiveName(res)
	}
	if err := os.WriteFile(out, res.Artifact, 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	printSummary(stdout, res, out)
	return nil
}

// explain prints the support-code form of err when one is known, then
// returns err unchanged for cobra to report.
func explain(stderr io.Writer, err error) error {
	if core.IsUserFacing(err) {
		fmt.Fprintln(stderr, core.FormatUserError(err))
	}
	return err
}

func defaultArchiveName(res *core.RunResult) string {
	m := res.Manifest
	date := strings.ReplaceAll(m.DateUTC, "-", "")
	if m.SequenceRangeStart == "" {
		return fmt.Sprintf("prf_bulk_import_%s.zip", date)
	}
	return fmt.Sprintf("prf_bulk_import_%s_%s-%s.zip", date, m.SequenceRangeStart, m.SequenceRangeEnd)
}

func printSummary(w io.Writer, res *core.RunResult, out string) {
	c := res.Counts
	fmt.Fprintf(w, "job:       %s\n", res.JobID)
	fmt.Fprintf(w, "rows:      %d (%d valid, %d rejected)\n", c.TotalRows, c.ValidRows, c.ErrorCount)
	fmt.Fprintf(w, "members:   %d new, %d existing\n", c.NewMemberCount, c.ExistingMemberCount)
	fmt.Fprintf(w, "warnings:  %d\n", c.WarningCount)
	if m := res.Manifest; m.SequenceRangeStart != "" {
		fmt.Fprintf(w, "sequence:  %s-%s\n", m.SequenceRangeStart, m.SequenceRangeEnd)
	}
	for _, f := range res.NewFiles {
		fmt.Fprintf(w, "  %s (%d rows)\n", f.FileName, f.RowCount)
	}
	for _, f := range res.ExistingFiles {
		fmt.Fprintf(w, "  %s (%d rows)\n", f.FileName, f.RowCount)
	}
	fmt.Fprintf(w, "archive:   %s\n", filepath.Clean(out))
}
