// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentPath(t *testing.T) {
	tests := []struct {
		source     string
		identifier string
		want       string
	}{
		{"arxiv", "2301.07041", "arxiv-2301.07041.pdf"},
		{"iacr", "2023/123", "iacr-2023-123.pdf"},
		{"doi", "10.1145/1327452.1327492", "doi-10.1145-1327452.1327492.pdf"},
	}
	for _, tt := range tests {
		got := DocumentPath("/data", tt.source, tt.identifier)
		assert.Equal(t, filepath.Join("/data", tt.want), got)
	}
}

func TestFetch(t *testing.T) {
	const body = "%PDF-1.5 fake document body"
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(body))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "papers", "arxiv-2301.07041.pdf")
	skipped, err := Fetch(context.Background(), http.DefaultClient, server.URL, dest, "paperbase-test/1.0")
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, "paperbase-test/1.0", gotAgent)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	// No stray temp files once the rename lands.
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFetchSkipsExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be contacted for an existing file")
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "existing.pdf")
	require.NoError(t, os.WriteFile(dest, []byte("already here"), 0o644))

	skipped, err := Fetch(context.Background(), http.DefaultClient, server.URL, dest, "")
	require.NoError(t, err)
	assert.True(t, skipped)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "already here", string(data))
}

func TestFetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such paper", http.StatusNotFound)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "missing.pdf")
	_, err := Fetch(context.Background(), http.DefaultClient, server.URL, dest, "")
	assert.ErrorContains(t, err, "HTTP 404")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}
