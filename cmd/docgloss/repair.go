package main

import (
	"fmt"
	"os"

	"github.com/dgallion1/docgloss/internal/pipeline"
	"github.com/dgallion1/docgloss/internal/segment"
	"github.com/spf13/cobra"
)

var (
	segmentTitles      string
	segmentPlaceholder string
	segmentOut         string
	segmentExpanded    bool
	segmentRenumber    bool
)

var segmentCmd = &cobra.Command{
	Use:   "segment <file>...",
	Short: "Restructure pages into collapsible sections",
	Long: `Restructure HTML pages in place into collapsible sections with a navigation
list. Markdown sources are rendered to <stem>.html first.

By default every h1/h2 heading starts a section. With --titles, sections start at
short emphasized paragraphs naming an entry of the catalog (one title per line).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if segmentOut != "" && len(args) > 1 {
			return fmt.Errorf("--out takes a single input file")
		}
		opts := pipeline.RepairOptions{
			Segment:  true,
			Renumber: segmentRenumber,
			Out:      segmentOut,
			Segmentation: segment.Options{
				Placeholder: segmentPlaceholder,
				Expanded:    segmentExpanded,
			},
		}
		if segmentTitles != "" {
			titles, err := loadCatalog(segmentTitles)
			if err != nil {
				return err
			}
			opts.Segmentation.Mode = segment.ModeKnownTitles
			opts.Segmentation.KnownTitles = titles
		}
		return runRepair(cmd, args, opts)
	},
}

var renumberCmd = &cobra.Command{
	Use:   "renumber <file>...",
	Short: "Fill missing numbers in page tables",
	Long: `Repair the numbering column of every table in each page. A page is written
only when a cell changed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepair(cmd, args, pipeline.RepairOptions{Renumber: true})
	},
}

func init() {
	segmentCmd.Flags().StringVar(&segmentTitles, "titles", "", "Known-title catalog file; switches to known-title mode")
	segmentCmd.Flags().StringVar(&segmentPlaceholder, "placeholder", "", "Title for content before the first section (default from SECTION_PLACEHOLDER)")
	segmentCmd.Flags().StringVarP(&segmentOut, "out", "o", "", "Write the result here instead of in place")
	segmentCmd.Flags().BoolVar(&segmentExpanded, "expanded", false, "Leave sections open")
	segmentCmd.Flags().BoolVar(&segmentRenumber, "renumber", false, "Also repair table numbering")

	rootCmd.AddCommand(segmentCmd, renumberCmd)
}

func loadCatalog(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open title catalog: %w", err)
	}
	defer f.Close()
	titles, err := segment.ParseCatalog(f)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("title catalog %s is empty", path)
	}
	return titles, nil
}

// runRepair applies opts to each page. Pages do not need the store.
func runRepair(cmd *cobra.Command, paths []string, opts pipeline.RepairOptions) error {
	e, err := setup(cmd, false)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(e.cfg, nil, e.log)
	report := pipeline.NewReport()
	runErr := runner.Repair(cmd.Context(), paths, opts, report)
	report.Finish()

	FormatReport(cmd.OutOrStdout(), report, nil)
	if runErr != nil {
		return runErr
	}
	if report.Failed() {
		return fmt.Errorf("run %s: some pages failed", report.RunID)
	}
	return nil
}
