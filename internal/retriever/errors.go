// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retriever

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no extra data.
var (
	// ErrNoMatchingSource is returned by Classify when no registered
	// source pattern matches the input.
	ErrNoMatchingSource = errors.New("no matching source")

	// ErrTimeout is returned when the per-request deadline expires
	// during the network fetch. It is distinct from MalformedResponse
	// so callers can decide to retry.
	ErrTimeout = errors.New("request timed out")

	// ErrUnparseableDate is returned when a date value matches none of
	// the accepted layouts.
	ErrUnparseableDate = errors.New("unparseable date")
)

// ConfigError reports a malformed source configuration file.
type ConfigError struct {
	File   string
	Reason error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("source config %s: %v", e.File, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Reason }

// RequestFailedError reports a non-2xx HTTP response from a source API.
// The engine performs no retries; callers may.
type RequestFailedError struct {
	Status int
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed with HTTP %d", e.Status)
}

// MalformedResponseError reports response bytes that could not be
// parsed in the source's declared format.
type MalformedResponseError struct {
	Format string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %v", e.Format, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// MissingFieldError reports a required canonical field whose path
// resolved to nothing in the response document.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field %q missing from response", e.Field)
}

// TransformFailedError reports a field value that was present but
// could not be transformed or converted.
type TransformFailedError struct {
	Field string
	Err   error
}

func (e *TransformFailedError) Error() string {
	return fmt.Sprintf("transform failed for field %q: %v", e.Field, e.Err)
}

func (e *TransformFailedError) Unwrap() error { return e.Err }
