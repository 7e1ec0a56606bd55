// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retriever

import (
	"net/url"
	"strings"
)

// Request is a rendered API request for one fetch: the endpoint URL
// with the identifier substituted and the source's headers.
type Request struct {
	URL     string
	Headers map[string]string
}

// BuildRequest renders the source's endpoint template with the
// URL-escaped identifier and copies the configured headers verbatim.
// Placeholder presence was already validated at load time.
func BuildRequest(src *Source, identifier string) Request {
	endpoint := strings.ReplaceAll(
		src.EndpointTemplate, identifierPlaceholder, url.QueryEscape(identifier))

	headers := make(map[string]string, len(src.Headers))
	for k, v := range src.Headers {
		headers[k] = v
	}

	return Request{URL: endpoint, Headers: headers}
}
