// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperbase/internal/library"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recently added papers",
	RunE:  runList,
}

func init() {
	listCmd.Flags().Int("max-results", 0, "maximum number of papers (default from config)")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("max-results")

	store, err := library.Open(libraryConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	printRecords(records, os.Stdout)
	return nil
}
