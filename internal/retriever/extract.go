// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retriever

import (
	"fmt"
	"strconv"
	"strings"
)

// splitPath breaks a field path into segments. Both "/" and "." are
// accepted as delimiters so configurations can use either style.
func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '.'
	})
}

// validatePath rejects empty paths and paths with empty segments,
// checking against the same delimiter set splitPath accepts. Called
// at configuration load time; extraction assumes valid syntax.
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty path")
	}
	for _, part := range strings.Split(strings.ReplaceAll(path, ".", "/"), "/") {
		if strings.TrimSpace(part) == "" {
			return fmt.Errorf("path %q has an empty segment", path)
		}
	}
	return nil
}

// Extract walks path against the document and returns every scalar
// value it addresses, flattened in document order. An empty result is
// a missing-value condition, not an error; the normalizer decides
// whether that matters for the field.
func (d *Document) Extract(path string) []string {
	return extractFrom(d.root, splitPath(path))
}

// extractFrom walks the given segments from node and scalarizes the
// addressed values.
func extractFrom(node any, segments []string) []string {
	nodes := walkSegments(node, segments)
	var values []string
	for _, n := range nodes {
		values = append(values, scalarize(n)...)
	}
	return values
}

func walkSegments(node any, segments []string) []any {
	nodes := []any{node}
	for _, seg := range segments {
		var next []any
		for _, n := range nodes {
			next = append(next, selectChild(n, seg)...)
		}
		nodes = next
		if len(nodes) == 0 {
			return nil
		}
	}
	return nodes
}

// elementsAt walks the segments from the root and returns the
// addressed nodes with arrays expanded, one entry per element. The
// multi-path join iterates these so it combines subfields within one
// record at a time.
func (d *Document) elementsAt(segments []string) []any {
	var out []any
	for _, n := range walkSegments(d.root, segments) {
		if arr, ok := n.([]any); ok {
			out = append(out, arr...)
		} else {
			out = append(out, n)
		}
	}
	return out
}

// splitJoinPaths factors a set of join paths into their shared parent
// segments and the per-path remainders below that parent.
func splitJoinPaths(paths []string) ([]string, [][]string) {
	split := make([][]string, len(paths))
	for i, p := range paths {
		split[i] = splitPath(p)
	}

	prefix := 0
	for prefix < len(split[0]) {
		seg := split[0][prefix]
		shared := true
		for _, s := range split[1:] {
			if prefix >= len(s) || s[prefix] != seg {
				shared = false
				break
			}
		}
		if !shared {
			break
		}
		prefix++
	}

	suffixes := make([][]string, len(split))
	for i, s := range split {
		suffixes[i] = s[prefix:]
	}
	return split[0][:prefix], suffixes
}

// selectChild applies one path segment to a node. A name segment on an
// array maps over the elements so that repeated XML elements and JSON
// arrays behave the same; a numeric segment indexes into an array.
func selectChild(node any, seg string) []any {
	switch n := node.(type) {
	case map[string]any:
		if child, ok := n[seg]; ok {
			return []any{child}
		}
		return nil
	case []any:
		if idx, err := strconv.Atoi(seg); err == nil {
			if idx >= 0 && idx < len(n) {
				return []any{n[idx]}
			}
			return nil
		}
		var out []any
		for _, el := range n {
			out = append(out, selectChild(el, seg)...)
		}
		return out
	default:
		return nil
	}
}

// scalarize converts a tree node into its scalar string values. Maps
// contribute their text content if any; arrays flatten in order;
// structured leaves with no text contribute nothing.
func scalarize(node any) []string {
	switch n := node.(type) {
	case string:
		return []string{n}
	case bool:
		return []string{strconv.FormatBool(n)}
	case float64:
		return []string{strconv.FormatFloat(n, 'f', -1, 64)}
	case int64:
		return []string{strconv.FormatInt(n, 10)}
	case []any:
		var out []string
		for _, el := range n {
			out = append(out, scalarize(el)...)
		}
		return out
	case map[string]any:
		if text, ok := n[textKey].(string); ok {
			return []string{text}
		}
		return nil
	default:
		return nil
	}
}
