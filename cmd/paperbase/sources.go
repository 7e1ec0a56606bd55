// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperbase/internal/retriever"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured paper sources",
	Long: `Sources prints every loaded source configuration in precedence order:
bundled defaults first, then user files from the sources directory. When two
patterns match the same input, the earlier source wins.`,
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg := retrieverConfig()
	registry, err := retriever.LoadRegistry(cfg.SourcesDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-6s  %s\n", "Name", "Format", "Pattern")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 70))
	for _, src := range registry.Sources() {
		fmt.Fprintf(os.Stdout, "%-12s  %-6s  %s\n",
			src.Name, src.ResponseFormat.Type, src.Pattern)
	}
	fmt.Fprintf(os.Stdout, "\n%d source(s), user sources from %s\n",
		registry.Len(), cfg.SourcesDir)
	return nil
}
