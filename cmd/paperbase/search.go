// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperbase/internal/library"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over the paper library",
	Long: `Search runs an FTS5 query over stored titles, authors, and abstracts
and prints matches ranked by relevance.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("max-results", 0, "maximum number of results (default from config)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search query")
	}
	limit, _ := cmd.Flags().GetInt("max-results")
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := library.Open(libraryConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Search(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	printRecords(records, os.Stdout)
	return nil
}

// printRecords writes records as a human-readable table.
func printRecords(records []library.Record, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-24s  %-60s  %-20s  %s\n", "Key", "Title", "Authors", "Year")
	fmt.Fprintln(w, strings.Repeat("-", 114))

	for _, rec := range records {
		title := truncate(rec.Title, 60)
		year := ""
		if !rec.PublicationDate.IsZero() {
			year = fmt.Sprintf("%d", rec.PublicationDate.Year())
		}
		fmt.Fprintf(w, "%-24s  %-60s  %-20s  %s\n",
			rec.Key(), title, formatAuthors(rec.Authors), year)
	}
	fmt.Fprintf(w, "\n%d result(s)\n", len(records))
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to at most max characters, counting runes so a
// multi-byte character is never cut mid-sequence.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
