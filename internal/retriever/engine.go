// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retriever

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/paperbase/pkg/types"
)

// Doer executes one HTTP request. *http.Client satisfies it; callers
// wanting retry behavior substitute a resilient client — the engine
// itself never retries.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Engine turns a free-form input string into a canonical Paper:
// classify against the registry, build the request, fetch, parse, and
// normalize. The registry is read-only after load, so one Engine
// serves any number of concurrent fetches; each fetch owns its own
// request, document, and record.
type Engine struct {
	registry *Registry
	client   Doer
	cfg      types.RetrieverConfig
}

// NewEngine creates an engine over a loaded registry. A nil client
// uses http.DefaultClient.
func NewEngine(registry *Registry, client Doer, cfg types.RetrieverConfig) *Engine {
	if client == nil {
		client = http.DefaultClient
	}
	return &Engine{registry: registry, client: client, cfg: cfg}
}

// Registry exposes the engine's source registry.
func (e *Engine) Registry() *Registry { return e.registry }

// GetPaper resolves input to a source, issues one GET, and normalizes
// the response into a Paper. Every failure is returned as a typed
// error; a partially populated Paper is never returned. The network
// step honors ctx and the configured timeout; cancellation past that
// point is not observed because parsing and normalization are fast,
// pure, and CPU-bound.
func (e *Engine) GetPaper(ctx context.Context, input string) (*types.Paper, error) {
	src, identifier, err := e.registry.Classify(input)
	if err != nil {
		return nil, err
	}

	req := BuildRequest(src, identifier)
	logrus.Debugf("fetching %s %s from %s", src.Name, identifier, req.URL)

	data, err := e.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	doc, err := ParseResponse(data, src.ResponseFormat)
	if err != nil {
		return nil, err
	}

	return Normalize(doc, src, identifier)
}

// fetch performs the single GET for a paper request and returns the
// raw response bytes. Deadline expiry maps to ErrTimeout so callers
// can distinguish a retryable timeout from a malformed response.
func (e *Engine) fetch(ctx context.Context, req Request) ([]byte, error) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if e.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", e.cfg.UserAgent)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &RequestFailedError{Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}
