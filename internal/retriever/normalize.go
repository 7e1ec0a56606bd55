// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retriever

import (
	"strings"

	"github.com/pdiddy/paperbase/pkg/types"
)

// Normalize assembles a canonical Paper from a parsed response
// document using the source's field maps. Normalization is
// all-or-nothing: a missing required field or a failed transform
// returns an error and no Paper, never a partial record.
//
// An extracted empty string counts as missing. Sources can in
// principle return present-but-empty elements; treating them as
// absent keeps the required-field invariant meaningful.
func Normalize(doc *Document, src *Source, identifier string) (*types.Paper, error) {
	paper := &types.Paper{
		Source:     src.Name,
		Identifier: identifier,
	}

	for _, field := range canonicalFields {
		fm, declared := src.ResponseFormat.FieldMaps[field]
		if !declared {
			if requiredFields[field] {
				return nil, &MissingFieldError{Field: field}
			}
			continue
		}

		values, err := extractField(doc, fm, field)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			if requiredFields[field] {
				return nil, &MissingFieldError{Field: field}
			}
			continue
		}

		if err := assignField(paper, field, values); err != nil {
			return nil, err
		}
	}

	return paper, nil
}

// extractField resolves a field map against the document and applies
// its transform. Multi-valued fields keep every collected value with
// the transform applied independently to each; single-valued fields
// keep the first.
func extractField(doc *Document, fm FieldMap, field string) ([]string, error) {
	values := extractRaw(doc, fm)

	// Empty strings are missing values, not data.
	values = compact(values)
	if len(values) == 0 {
		return nil, nil
	}

	if !multiValuedFields[field] {
		values = values[:1]
	}

	if fm.Transform == nil {
		return values, nil
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		transformed, err := fm.Transform.apply(v)
		if err != nil {
			return nil, &TransformFailedError{Field: field, Err: err}
		}
		out = append(out, transformed)
	}
	return compact(out), nil
}

// extractRaw reads the field's path, or combines several subfields of
// a shared parent when the map declares a multi-path join. The join
// walks the parent once and joins the leaf values found within each
// element, so a record missing one subfield never shifts values onto
// its neighbours.
func extractRaw(doc *Document, fm FieldMap) []string {
	if len(fm.Paths) == 0 {
		return doc.Extract(fm.Path)
	}

	parent, suffixes := splitJoinPaths(fm.Paths)

	var values []string
	for _, element := range doc.elementsAt(parent) {
		var parts []string
		for _, suffix := range suffixes {
			for _, v := range extractFrom(element, suffix) {
				if v != "" {
					parts = append(parts, v)
				}
			}
		}
		if len(parts) > 0 {
			values = append(values, strings.Join(parts, fm.JoinWith))
		}
	}
	return values
}

// assignField places transformed values into the Paper under
// construction. The publication date is parsed here when no date
// transform already produced a canonical form.
func assignField(paper *types.Paper, field string, values []string) error {
	switch field {
	case FieldTitle:
		paper.Title = strings.TrimSpace(values[0])
	case FieldAuthors:
		for _, v := range values {
			paper.Authors = append(paper.Authors, strings.TrimSpace(v))
		}
	case FieldAbstract:
		paper.Abstract = strings.TrimSpace(values[0])
	case FieldPublicationDate:
		parsed, err := parseDate(values[0], false)
		if err != nil {
			return &TransformFailedError{Field: field, Err: err}
		}
		paper.PublicationDate = parsed
	case FieldPDFURL:
		paper.PDFURL = values[0]
	case FieldDOI:
		paper.DOI = values[0]
	}
	return nil
}

// compact drops empty and whitespace-only strings, preserving order.
func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
