package main

import (
	"fmt"
	"strconv"

	"github.com/dgallion1/docgloss/internal/store"
	"github.com/spf13/cobra"
)

var (
	searchSection int
	searchLimit   int
	searchOffset  int
	docsSection   int
	docText       bool
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List sections with term and document counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		sections, err := e.store.ListSections(cmd.Context())
		if err != nil {
			return err
		}
		FormatSections(cmd.OutOrStdout(), sections)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search glossary terms",
	Long: `Search terms, descriptions and abbreviations for a substring. Without a
query every term is listed. Results are ordered by section, then item number.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		q := store.TermQuery{Limit: searchLimit, Offset: searchOffset}
		if len(args) == 1 {
			q.Text = args[0]
		}
		if cmd.Flags().Changed("section") {
			q.Section = &searchSection
		}
		page, err := e.store.SearchTerms(cmd.Context(), q)
		if err != nil {
			return err
		}
		FormatTerms(cmd.OutOrStdout(), page, q)
		return nil
	},
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List documents whose source file is still available",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		var section *int
		if cmd.Flags().Changed("section") {
			section = &docsSection
		}
		docs, err := e.store.ListDocuments(cmd.Context(), section)
		if err != nil {
			return err
		}
		FormatDocuments(cmd.OutOrStdout(), docs)
		return nil
	},
}

var docCmd = &cobra.Command{
	Use:   "doc <id>",
	Short: "Show one document and its images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid document id %q", args[0])
		}
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		doc, err := e.store.GetDocument(cmd.Context(), id)
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("document %d not found", id)
		}
		images, err := e.store.ListDocumentImages(cmd.Context(), id)
		if err != nil {
			return err
		}
		FormatDocument(cmd.OutOrStdout(), doc, images, docText)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchSection, "section", "s", 0, "Only this section")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 50, "Maximum results (capped at 500)")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Results to skip")

	docsCmd.Flags().IntVarP(&docsSection, "section", "s", 0, "Only this section")

	docCmd.Flags().BoolVar(&docText, "text", false, "Print the full extracted text")

	rootCmd.AddCommand(sectionsCmd, searchCmd, docsCmd, docCmd)
}
