package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the per-request deadline.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with requests
	// (e.g. "paperbase/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetrieverConfig holds settings for the retriever engine.
type RetrieverConfig struct {
	HTTPConfig `yaml:",inline"`

	// SourcesDir is the directory of user-supplied source configuration
	// files, loaded after the bundled defaults. Empty means the default
	// under the XDG config home.
	SourcesDir string `json:"sources_dir" yaml:"sources_dir"`

	// RequestsPerSecond bounds the rate of outgoing fetches in batch
	// operations (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// LibraryConfig holds settings for the local paper library.
type LibraryConfig struct {
	// DataDir is the base directory holding the database and any
	// downloaded documents. Empty means the default under the XDG
	// data home.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of search results
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
