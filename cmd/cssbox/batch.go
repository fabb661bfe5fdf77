package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/benoitkugler/cssbox/batch"
	"github.com/spf13/cobra"
)

type batchFlags struct {
	output    string
	report    string
	reference string
	saveDir   string
	tests     []string
}

func newBatchCmd(a *app) *cobra.Command {
	var bf batchFlags
	cmd := &cobra.Command{
		Use:   "batch <suite url>",
		Short: "Run a reference test suite",
		Long: "Run the reference tests listed in the " + batch.TOCFile + " index of the suite.\n" +
			"Each test is rendered with its reference and the score is the proportion\n" +
			"of different pixels.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.runBatch(ctx, cmd.OutOrStdout(), args[0], bf)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&bf.output, "output", "o", "results.csv", "CSV results file")
	flags.StringVar(&bf.report, "json", "", "optional JSON report file")
	flags.StringVar(&bf.reference, "reference", "", "CSV results of a reference run, to list the regressions")
	flags.StringVar(&bf.saveDir, "save-dir", "", "directory receiving the renderings of the failed tests")
	flags.StringSliceVar(&bf.tests, "tests", nil, "run only these tests")
	flags.Int("workers", 12, "number of tests run in parallel")
	flags.Duration("timeout", 30*time.Second, "time limit of each test")
	a.bindFlags(flags, map[string]string{
		"workers": "batch.workers",
		"timeout": "batch.timeout",
	})
	return cmd
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) runBatch(ctx context.Context, stdout io.Writer, suite string, bf batchFlags) error {
	runner := batch.NewRunner(a.cfg)
	runner.SaveDir = bf.saveDir

	report, err := runner.Run(ctx, suite, bf.tests)
	if err != nil && report == nil {
		return err
	}
	if werr := writeFile(bf.output, report.WriteCSV); werr != nil {
		return werr
	}
	if bf.report != "" {
		if werr := writeFile(bf.report, report.WriteJSON); werr != nil {
			return werr
		}
	}

	s := batch.Summarize(report.Results)
	fmt.Fprintf(stdout, "%d tests: %d passed, %d failed (%d fatal)\n", len(report.Results), s.Success, s.Fail, s.Fatal)
	if bf.reference != "" {
		f, oerr := os.Open(bf.reference)
		if oerr != nil {
			return oerr
		}
		reference, rerr := batch.ReadCSV(f)
		f.Close()
		if rerr != nil {
			return rerr
		}
		for _, r := range report.Regressions(reference) {
			fmt.Fprintf(stdout, "regression: %s %g -> %g\n", r.Name, r.Reference, r.Got)
		}
	}
	return err
}
