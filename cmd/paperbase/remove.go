// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperbase/internal/library"
)

var removeCmd = &cobra.Command{
	Use:   "remove [source] [identifier]",
	Short: "Remove a paper from the library",
	Args:  cobra.ExactArgs(2),
	RunE:  runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	store, err := library.Open(libraryConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Remove(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("removed: %s:%s\n", args[0], args[1])
	return nil
}
