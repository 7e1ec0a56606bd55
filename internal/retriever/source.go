// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retriever

import (
	"fmt"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

// identifierPlaceholder is substituted into endpoint templates.
const identifierPlaceholder = "{identifier}"

// Format names accepted in a source's response_format block.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

// Canonical field names a source may map. Title, authors, and
// publication_date are mandatory in every normalized record.
const (
	FieldTitle           = "title"
	FieldAuthors         = "authors"
	FieldAbstract        = "abstract"
	FieldPublicationDate = "publication_date"
	FieldPDFURL          = "pdf_url"
	FieldDOI             = "doi"
)

// canonicalFields lists the assignable fields in normalization order.
var canonicalFields = []string{
	FieldTitle, FieldAuthors, FieldAbstract,
	FieldPublicationDate, FieldPDFURL, FieldDOI,
}

// requiredFields are the fields whose absence fails normalization.
var requiredFields = map[string]bool{
	FieldTitle:           true,
	FieldAuthors:         true,
	FieldPublicationDate: true,
}

// multiValuedFields consume every extracted value; all other fields
// take the first match.
var multiValuedFields = map[string]bool{
	FieldAuthors: true,
}

// Source describes one external paper source: how to recognize its
// identifiers, how to build a request, and how to map the response
// into the canonical record. The YAML field names are the wire
// contract with user configuration files and must remain stable.
type Source struct {
	Name             string            `yaml:"name"`
	BaseURL          string            `yaml:"base_url"`
	EndpointTemplate string            `yaml:"endpoint_template"`
	Pattern          string            `yaml:"pattern"`
	Headers          map[string]string `yaml:"headers"`
	ResponseFormat   ResponseFormat    `yaml:"response_format"`

	pattern *regexp.Regexp
}

// ResponseFormat declares how to parse a source's responses and which
// document paths feed each canonical field.
type ResponseFormat struct {
	Type            string              `yaml:"type"`
	StripNamespaces bool                `yaml:"strip_namespaces"`
	FieldMaps       map[string]FieldMap `yaml:"field_maps"`
}

// FieldMap addresses one canonical field in the parsed document.
// Either Path or Paths is set. Paths names several subfields below a
// shared parent; the values found within each parent element are
// joined with JoinWith (e.g. CrossRef author given and family names).
type FieldMap struct {
	Path      string     `yaml:"path"`
	Paths     []string   `yaml:"paths"`
	JoinWith  string     `yaml:"join_with"`
	Transform *Transform `yaml:"transform"`
}

// ParseSource decodes and validates a single source configuration.
func ParseSource(data []byte) (*Source, error) {
	var src Source
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := src.compile(); err != nil {
		return nil, err
	}
	return &src, nil
}

// compile validates the source invariants and compiles its regexes.
// Path syntax and transform consistency are checked here so that
// extraction never sees an invalid configuration.
func (s *Source) compile() error {
	if s.Name == "" {
		return fmt.Errorf("missing name")
	}

	// Anchored at compile time so classification is a whole-string
	// match no matter how the configured pattern is written.
	re, err := regexp.Compile("^(?:" + s.Pattern + ")$")
	if err != nil {
		return fmt.Errorf("pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return fmt.Errorf("pattern must have a capture group for the identifier")
	}
	s.pattern = re

	if !strings.Contains(s.EndpointTemplate, identifierPlaceholder) {
		return fmt.Errorf("endpoint_template must contain %s", identifierPlaceholder)
	}

	switch s.ResponseFormat.Type {
	case FormatJSON, FormatXML:
	default:
		return fmt.Errorf("response_format type must be %q or %q, got %q",
			FormatJSON, FormatXML, s.ResponseFormat.Type)
	}

	if len(s.ResponseFormat.FieldMaps) == 0 {
		return fmt.Errorf("response_format declares no field_maps")
	}

	for field, fm := range s.ResponseFormat.FieldMaps {
		if !isCanonicalField(field) {
			return fmt.Errorf("field_maps: unknown field %q", field)
		}
		if err := fm.validate(); err != nil {
			return fmt.Errorf("field_maps.%s: %w", field, err)
		}
	}
	return nil
}

func isCanonicalField(name string) bool {
	for _, f := range canonicalFields {
		if f == name {
			return true
		}
	}
	return false
}

func (fm FieldMap) validate() error {
	switch {
	case fm.Path == "" && len(fm.Paths) == 0:
		return fmt.Errorf("missing path")
	case fm.Path != "" && len(fm.Paths) > 0:
		return fmt.Errorf("path and paths are mutually exclusive")
	}

	for _, p := range fm.Paths {
		if err := validatePath(p); err != nil {
			return err
		}
	}
	if fm.Path != "" {
		if err := validatePath(fm.Path); err != nil {
			return err
		}
	}

	if fm.Transform != nil {
		if err := fm.Transform.compile(); err != nil {
			return fmt.Errorf("transform: %w", err)
		}
	}
	return nil
}
