// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retriever

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSourceYAML = `
name: example
base_url: https://api.example.org
endpoint_template: "https://api.example.org/papers/{identifier}"
pattern: '^(?:https?://example\.org/)?(EX-\d+)$'
headers:
  Accept: application/json
response_format:
  type: json
  field_maps:
    title:
      path: work/title
    authors:
      path: work/authors/name
    publication_date:
      path: work/published
`

func TestParseSourceValid(t *testing.T) {
	src, err := ParseSource([]byte(validSourceYAML))
	require.NoError(t, err)

	assert.Equal(t, "example", src.Name)
	assert.Equal(t, "application/json", src.Headers["Accept"])
	assert.Equal(t, FormatJSON, src.ResponseFormat.Type)
	assert.Len(t, src.ResponseFormat.FieldMaps, 3)
}

func TestParseSourceInvalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			"missing name",
			func(s string) string { return strings.Replace(s, "name: example", "name: \"\"", 1) },
			"missing name",
		},
		{
			"bad regex",
			func(s string) string {
				return strings.Replace(s, "pattern: '^(?:https?://example\\.org/)?(EX-\\d+)$'", "pattern: '[unclosed'", 1)
			},
			"pattern",
		},
		{
			"no capture group",
			func(s string) string {
				return strings.Replace(s, "pattern: '^(?:https?://example\\.org/)?(EX-\\d+)$'", "pattern: '^EX-\\d+$'", 1)
			},
			"capture group",
		},
		{
			"missing placeholder",
			func(s string) string {
				return strings.Replace(s, "papers/{identifier}", "papers/fixed", 1)
			},
			"{identifier}",
		},
		{
			"unknown format type",
			func(s string) string { return strings.Replace(s, "type: json", "type: csv", 1) },
			"response_format type",
		},
		{
			"unknown canonical field",
			func(s string) string { return strings.Replace(s, "title:", "headline:", 1) },
			"unknown field",
		},
		{
			"empty path",
			func(s string) string { return strings.Replace(s, "path: work/title", "path: \"\"", 1) },
			"path",
		},
		{
			"empty path segment",
			func(s string) string { return strings.Replace(s, "path: work/title", "path: work//title", 1) },
			"empty segment",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSource([]byte(tt.mutate(validSourceYAML)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseSourceInvalidTransform(t *testing.T) {
	bad := validSourceYAML + `
    pdf_url:
      path: work/id
      transform:
        type: replace
        pattern: '[unclosed'
        replacement: x
`
	_, err := ParseSource([]byte(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transform")

	unknown := validSourceYAML + `
    pdf_url:
      path: work/id
      transform:
        type: rot13
`
	_, err = ParseSource([]byte(unknown))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown transform type")
}

func TestParseSourcePathAndPathsExclusive(t *testing.T) {
	bad := strings.Replace(validSourceYAML,
		"    authors:\n      path: work/authors/name",
		"    authors:\n      path: work/authors/name\n      paths: [work/a, work/b]", 1)
	_, err := ParseSource([]byte(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestBuildRequest(t *testing.T) {
	src, err := ParseSource([]byte(validSourceYAML))
	require.NoError(t, err)

	req := BuildRequest(src, "EX-42")
	assert.Equal(t, "https://api.example.org/papers/EX-42", req.URL)
	assert.Equal(t, "application/json", req.Headers["Accept"])

	// Headers are a copy, not an alias of the source config.
	req.Headers["Accept"] = "changed"
	assert.Equal(t, "application/json", src.Headers["Accept"])
}

func TestBuildRequestEscapesIdentifier(t *testing.T) {
	src, err := ParseSource([]byte(validSourceYAML))
	require.NoError(t, err)

	req := BuildRequest(src, "EX 1/2")
	assert.Equal(t, "https://api.example.org/papers/EX+1%2F2", req.URL)
}
