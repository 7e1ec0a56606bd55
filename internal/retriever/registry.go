// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retriever resolves paper identifiers to canonical metadata
// records. It is configuration-driven: each source is described by a
// YAML file declaring an identifier pattern, an endpoint template,
// and field maps from response paths to the canonical record, so new
// sources need no source-specific code.
package retriever

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

//go:embed sources/*.yaml
var bundledSources embed.FS

const bundledDir = "sources"

// Registry holds the loaded source configurations for one run. It is
// built once at startup and read-only afterwards, so concurrent
// fetches share it without locks. Registration order determines
// classification precedence: first match wins.
type Registry struct {
	sources []*Source
	byName  map[string]*Source
}

// LoadRegistry builds a Registry from the bundled default sources
// plus any YAML files in userDir. Bundled sources load first in
// lexical filename order, then user files in lexical filename order,
// so precedence is deterministic. A user file reusing a bundled
// source's name replaces that source in place.
//
// A malformed user file is skipped with a logged warning rather than
// failing the run; missing one custom source should not block the
// built-in ones. A malformed bundled file is a hard error.
func LoadRegistry(userDir string) (*Registry, error) {
	reg := &Registry{byName: make(map[string]*Source)}

	entries, err := bundledSources.ReadDir(bundledDir)
	if err != nil {
		return nil, fmt.Errorf("reading bundled sources: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		data, err := bundledSources.ReadFile(path.Join(bundledDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading bundled source %s: %w", entry.Name(), err)
		}
		src, err := ParseSource(data)
		if err != nil {
			return nil, &ConfigError{File: entry.Name(), Reason: err}
		}
		reg.register(src)
	}

	if userDir != "" {
		if err := reg.loadUserDir(userDir); err != nil {
			return nil, err
		}
	}

	if len(reg.sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	return reg, nil
}

func (r *Registry) loadUserDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading sources directory %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}

		file := filepath.Join(dir, name)
		data, err := os.ReadFile(file)
		if err != nil {
			logrus.Warnf("skipping source config %s: %v", file, err)
			continue
		}
		src, err := ParseSource(data)
		if err != nil {
			cfgErr := &ConfigError{File: file, Reason: err}
			logrus.Warnf("skipping %v", cfgErr)
			continue
		}
		r.register(src)
	}
	return nil
}

// register appends a source, or replaces an existing one with the
// same name while keeping its precedence slot.
func (r *Registry) register(src *Source) {
	if existing, ok := r.byName[src.Name]; ok {
		for i, s := range r.sources {
			if s == existing {
				r.sources[i] = src
				break
			}
		}
	} else {
		r.sources = append(r.sources, src)
	}
	r.byName[src.Name] = src
}

// Classify matches input against the registered sources in
// registration order and returns the first source whose pattern
// matches the whole input, along with the identifier captured by the
// pattern's first group. Patterns are anchored at load time, so a
// match here is always a full match. Whether a bare identifier, a
// URL, or both match is decided entirely by the configured patterns.
func (r *Registry) Classify(input string) (*Source, string, error) {
	input = strings.TrimSpace(input)
	for _, src := range r.sources {
		m := src.pattern.FindStringSubmatch(input)
		if m == nil || m[1] == "" {
			continue
		}
		return src, m[1], nil
	}
	return nil, "", fmt.Errorf("%w for %q", ErrNoMatchingSource, input)
}

// Get returns the source registered under name, if any.
func (r *Registry) Get(name string) (*Source, bool) {
	src, ok := r.byName[name]
	return src, ok
}

// Sources returns the registered sources in precedence order.
func (r *Registry) Sources() []*Source {
	out := make([]*Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Len returns the number of registered sources.
func (r *Registry) Len() int { return len(r.sources) }
