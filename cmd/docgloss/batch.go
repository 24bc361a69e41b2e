package main

import (
	"fmt"

	"github.com/dgallion1/docgloss/internal/pipeline"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract documents into the store",
	Long:  `Extract the given .docx, .pdf and .doc files, or every document in the assets directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, func(r *pipeline.Runner) (*pipeline.Report, error) {
			report := pipeline.NewReport()
			defer report.Finish()
			return report, r.Extract(cmd.Context(), args, report)
		})
	},
}

var termsCmd = &cobra.Command{
	Use:   "terms [files...]",
	Short: "Index glossary pages into the store",
	Long:  `Index the given glossary pages, or every <n>.html page in the details directory except reserved numbers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, func(r *pipeline.Runner) (*pipeline.Report, error) {
			report := pipeline.NewReport()
			defer report.Finish()
			return report, r.Terms(cmd.Context(), args, report)
		})
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Extract every document, then index every glossary page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, func(r *pipeline.Runner) (*pipeline.Report, error) {
			return r.Build(cmd.Context())
		})
	},
}

func init() {
	rootCmd.AddCommand(extractCmd, termsCmd, buildCmd)
}

// runBatch opens the store, runs fn and prints the summary of its report.
// Any failed item makes the command fail.
func runBatch(cmd *cobra.Command, fn func(*pipeline.Runner) (*pipeline.Report, error)) error {
	e, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	runner := pipeline.NewRunner(e.cfg, e.store, e.log)
	report, runErr := fn(runner)

	timings := runner.Timings()
	FormatReport(cmd.OutOrStdout(), report, &timings)
	e.log.Info("run finished", "run_id", report.RunID, "elapsed", report.Elapsed(), "items", len(report.Items()))

	if runErr != nil {
		return runErr
	}
	if report.Failed() {
		return fmt.Errorf("run %s: some files failed", report.RunID)
	}
	return nil
}
