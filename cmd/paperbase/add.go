// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sethgrid/pester"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/pdiddy/paperbase/internal/download"
	"github.com/pdiddy/paperbase/internal/library"
	"github.com/pdiddy/paperbase/internal/retriever"
	"github.com/pdiddy/paperbase/pkg/types"
)

var addCmd = &cobra.Command{
	Use:   "add [identifiers...]",
	Short: "Fetch paper metadata and store it in the library",
	Long: `Add resolves each identifier or URL against the configured sources,
fetches the metadata record, and stores it in the local library. Records are
upserted by (source, identifier), so re-adding a paper refreshes it.

With --fetch-pdf the paper's document is downloaded alongside the record.`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().Bool("fetch-pdf", false, "download the paper's PDF into the library")

	rootCmd.AddCommand(addCmd)
}

// addResult is the outcome of one identifier in a batch.
type addResult struct {
	input string
	paper *types.Paper
	err   error
}

func runAdd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more paper identifiers or URLs")
	}
	fetchPDF, _ := cmd.Flags().GetBool("fetch-pdf")

	cfg := retrieverConfig()
	registry, err := retriever.LoadRegistry(cfg.SourcesDir)
	if err != nil {
		return err
	}

	// Retry policy lives here in the calling layer; the engine itself
	// performs a single GET per fetch.
	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = 3
	client.Concurrency = 1

	engine := retriever.NewEngine(registry, client, cfg)

	store, err := library.Open(libraryConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	failed := addBatch(cmd.Context(), engine, store, client, args, cfg, fetchPDF, os.Stdout)
	if failed > 0 {
		return fmt.Errorf("%d paper(s) failed", failed)
	}
	return nil
}

// addBatch fetches all identifiers concurrently, paced by a shared
// rate limiter, and stores each result as it arrives. A failure for
// one identifier never affects the others.
func addBatch(ctx context.Context, engine *retriever.Engine, store *library.Store,
	client download.Doer, inputs []string, cfg types.RetrieverConfig, fetchPDF bool, w io.Writer) int {

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), 1)

	results := make(chan addResult, len(inputs))
	var wg sync.WaitGroup

	for _, input := range inputs {
		wg.Add(1)
		go func(input string) {
			defer wg.Done()
			if err := limiter.Wait(ctx); err != nil {
				results <- addResult{input: input, err: err}
				return
			}
			paper, err := engine.GetPaper(ctx, input)
			results <- addResult{input: input, paper: paper, err: err}
		}(input)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	added, failed := 0, 0
	for res := range results {
		if res.err != nil {
			fmt.Fprintf(w, "failed: %s (%v)\n", res.input, res.err)
			failed++
			continue
		}

		if _, err := store.Save(ctx, res.paper); err != nil {
			fmt.Fprintf(w, "failed: %s (%v)\n", res.input, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "added:  %s:%s  %s\n", res.paper.Source, res.paper.Identifier, res.paper.Title)
		added++

		if fetchPDF {
			fetchDocument(ctx, store, client, res.paper, cfg.UserAgent, w)
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d added, %d failed (total: %d)\n", added, failed, len(inputs))
	return failed
}

// fetchDocument downloads the paper's PDF when a URL is known. A
// download failure is a warning, not a batch failure: the metadata
// record is already stored.
func fetchDocument(ctx context.Context, store *library.Store, client download.Doer,
	paper *types.Paper, userAgent string, w io.Writer) {

	if paper.PDFURL == "" {
		fmt.Fprintf(w, "  warning: no PDF URL for %s:%s\n", paper.Source, paper.Identifier)
		return
	}

	destPath := download.DocumentPath(store.DataDir(), paper.Source, paper.Identifier)
	skipped, err := download.Fetch(ctx, client, paper.PDFURL, destPath, userAgent)
	if err != nil {
		fmt.Fprintf(w, "  warning: PDF download failed: %v\n", err)
		return
	}
	if skipped {
		fmt.Fprintf(w, "  pdf:    %s (already exists)\n", destPath)
	} else {
		fmt.Fprintf(w, "  pdf:    %s\n", destPath)
	}

	if err := store.SetDocumentPath(ctx, paper.Source, paper.Identifier, destPath); err != nil {
		fmt.Fprintf(w, "  warning: recording PDF path failed: %v\n", err)
	}
}
