// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retriever

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperbase/pkg/types"
)

// testEngine builds an engine with a single XML source whose endpoint
// points at the given test server.
func testEngine(t *testing.T, serverURL string, cfg types.RetrieverConfig) *Engine {
	t.Helper()
	yaml := fmt.Sprintf(`
name: testfeed
base_url: %[1]s
endpoint_template: "%[1]s/papers?id={identifier}"
pattern: '^(\d{4}\.\d{4,5})$'
headers:
  Accept: application/atom+xml
response_format:
  type: xml
  strip_namespaces: true
  field_maps:
    title: {path: feed/entry/title}
    authors: {path: feed/entry/author/name}
    abstract: {path: feed/entry/summary}
    publication_date: {path: feed/entry/published}
    pdf_url:
      path: feed/entry/id
      transform:
        type: replace
        pattern: "/abs/"
        replacement: "/pdf/"
`, serverURL)
	return NewEngine(newTestRegistry(t, yaml), nil, cfg)
}

func feedFor(id string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/%[1]s</id>
    <title>Example Paper %[1]s</title>
    <summary>About things.</summary>
    <published>2023-01-17T00:00:00Z</published>
    <author><name>A. Researcher</name></author>
  </entry>
</feed>`, id)
}

func TestEngineGetPaper(t *testing.T) {
	var gotPath, gotAccept, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotAccept = r.Header.Get("Accept")
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, feedFor(r.URL.Query().Get("id")))
	}))
	defer server.Close()

	eng := testEngine(t, server.URL, types.RetrieverConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "paperbase-test/1.0"},
	})

	paper, err := eng.GetPaper(context.Background(), "2301.07041")
	require.NoError(t, err)

	assert.Equal(t, "/papers?id=2301.07041", gotPath)
	assert.Equal(t, "application/atom+xml", gotAccept)
	assert.Equal(t, "paperbase-test/1.0", gotAgent)

	assert.Equal(t, "testfeed", paper.Source)
	assert.Equal(t, "2301.07041", paper.Identifier)
	assert.Equal(t, "Example Paper 2301.07041", paper.Title)
	assert.Equal(t, []string{"A. Researcher"}, paper.Authors)
	assert.Equal(t, time.Date(2023, 1, 17, 0, 0, 0, 0, time.UTC), paper.PublicationDate)
	assert.Equal(t, "http://arxiv.org/pdf/2301.07041", paper.PDFURL)
}

func TestEngineGetPaperJSONSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message": {
			"title": ["JSON Paper"],
			"author": [{"given": "Ada", "family": "Lovelace"}],
			"created": {"date-time": "2023-01-17T00:00:00Z"},
			"DOI": "10.1000/xyz"
		}}`)
	}))
	defer server.Close()

	yaml := fmt.Sprintf(`
name: jsonworks
base_url: %[1]s
endpoint_template: "%[1]s/works/{identifier}"
pattern: '^(10\.\d{4,9}/\S+)$'
response_format:
  type: json
  field_maps:
    title: {path: message/title/0}
    publication_date: {path: message/created/date-time}
    doi: {path: message/DOI}
    authors:
      paths: [message/author/given, message/author/family]
      join_with: " "
`, server.URL)
	eng := NewEngine(newTestRegistry(t, yaml), nil, types.RetrieverConfig{})

	paper, err := eng.GetPaper(context.Background(), "10.1000/xyz")
	require.NoError(t, err)
	assert.Equal(t, "JSON Paper", paper.Title)
	assert.Equal(t, []string{"Ada Lovelace"}, paper.Authors)
	assert.Equal(t, "10.1000/xyz", paper.DOI)
}

func TestEngineGetPaperNoMatch(t *testing.T) {
	eng := testEngine(t, "http://unused.invalid", types.RetrieverConfig{})
	_, err := eng.GetPaper(context.Background(), "not-an-identifier")
	assert.ErrorIs(t, err, ErrNoMatchingSource)
}

func TestEngineGetPaperRequestFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	eng := testEngine(t, server.URL, types.RetrieverConfig{})
	_, err := eng.GetPaper(context.Background(), "2301.07041")

	var failed *RequestFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, http.StatusNotFound, failed.Status)
}

func TestEngineGetPaperMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<feed><entry>`)
	}))
	defer server.Close()

	eng := testEngine(t, server.URL, types.RetrieverConfig{})
	_, err := eng.GetPaper(context.Background(), "2301.07041")

	var malformed *MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}

func TestEngineGetPaperTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	eng := testEngine(t, server.URL, types.RetrieverConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 50 * time.Millisecond},
	})
	_, err := eng.GetPaper(context.Background(), "2301.07041")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestEngineConcurrentFetches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedFor(r.URL.Query().Get("id")))
	}))
	defer server.Close()

	eng := testEngine(t, server.URL, types.RetrieverConfig{})

	ids := []string{"2301.00001", "2301.00002", "2301.00003", "2301.00004"}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			paper, err := eng.GetPaper(context.Background(), id)
			if assert.NoError(t, err) {
				assert.Equal(t, id, paper.Identifier)
				assert.Equal(t, "Example Paper "+id, paper.Title)
			}
		}(id)
	}
	wg.Wait()
}
