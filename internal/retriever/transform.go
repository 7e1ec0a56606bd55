// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retriever

import (
	"fmt"
	"regexp"
	"time"

	"github.com/araddon/dateparse"
)

// Transform types accepted in a field map's transform block.
const (
	TransformReplace = "replace"
	TransformURL     = "url"
	TransformDate    = "date"
)

// dateLayouts are the layouts every date transform accepts after any
// configured hints: ISO-8601 date, ISO-8601 datetime, and RFC 2822.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

// Transform declares a value rewrite applied after extraction. The
// variant is selected by Type:
//
//   - replace: regex substitution with Pattern and Replacement,
//     applied once per string, not globally.
//   - url: produces Base + value + Suffix, e.g. deriving a PDF URL
//     from an identifier the source does not publish directly.
//   - date: parses the value using Formats hints then the standard
//     layouts, emitting an RFC 3339 string. Lenient additionally
//     tries a free-form parser before giving up.
type Transform struct {
	Type string `yaml:"type"`

	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`

	Base   string `yaml:"base"`
	Suffix string `yaml:"suffix"`

	Formats []string `yaml:"formats"`
	Lenient bool     `yaml:"lenient"`

	pattern *regexp.Regexp
}

// compile checks internal consistency at configuration load time.
func (t *Transform) compile() error {
	switch t.Type {
	case TransformReplace:
		re, err := regexp.Compile(t.Pattern)
		if err != nil {
			return fmt.Errorf("pattern: %w", err)
		}
		t.pattern = re
	case TransformURL:
		if t.Base == "" && t.Suffix == "" {
			return fmt.Errorf("url transform needs base or suffix")
		}
	case TransformDate:
		for _, layout := range t.Formats {
			if layout == "" {
				return fmt.Errorf("date transform has an empty format hint")
			}
		}
	default:
		return fmt.Errorf("unknown transform type %q", t.Type)
	}
	return nil
}

// apply rewrites a single extracted value. For multi-valued fields the
// normalizer calls apply once per collected value.
func (t *Transform) apply(value string) (string, error) {
	switch t.Type {
	case TransformReplace:
		return t.replaceFirst(value), nil
	case TransformURL:
		return t.Base + value + t.Suffix, nil
	case TransformDate:
		parsed, err := t.parseDate(value)
		if err != nil {
			return "", err
		}
		return parsed.UTC().Format(time.RFC3339), nil
	default:
		return "", fmt.Errorf("unknown transform type %q", t.Type)
	}
}

// replaceFirst substitutes the first match of the pattern, expanding
// $1-style references in the replacement. No match leaves the value
// unchanged.
func (t *Transform) replaceFirst(value string) string {
	m := t.pattern.FindStringSubmatchIndex(value)
	if m == nil {
		return value
	}
	out := []byte(value[:m[0]])
	out = t.pattern.ExpandString(out, t.Replacement, value, m)
	return string(out) + value[m[1]:]
}

// parseDate tries the configured hints, then the standard layouts, and
// finally a free-form parse when lenient.
func (t *Transform) parseDate(value string) (time.Time, error) {
	for _, layout := range t.Formats {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return parseDate(value, t.Lenient)
}

// parseDate parses value against the standard date layouts. With
// lenient set it falls back to dateparse for formats outside the
// standard set. Failure is ErrUnparseableDate.
func parseDate(value string, lenient bool) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	if lenient {
		if parsed, err := dateparse.ParseStrict(value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, value)
}
