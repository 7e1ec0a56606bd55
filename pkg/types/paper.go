// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the records and configuration shared across paperbase.
package types

import "time"

// Paper is the canonical normalized record produced by the retriever
// engine. Title, Authors, and PublicationDate are mandatory; a record
// missing any of them is never constructed.
type Paper struct {
	// Source is the name of the source configuration that produced
	// this record (e.g. "arxiv", "doi", "iacr").
	Source string `json:"source" yaml:"source"`

	// Identifier is the canonical source-specific identifier
	// (e.g. "2301.07041", "10.1145/1327452.1327492").
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in document order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract or summary text.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// PublicationDate is the publication or preprint date.
	PublicationDate time.Time `json:"publication_date" yaml:"publication_date"`

	// PDFURL is the document download URL, when the source publishes
	// one or a transform derives it.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// DOI is the Digital Object Identifier, when known.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// Key returns the (source, identifier) pair as a single string, the
// uniqueness key the library store upserts by.
func (p *Paper) Key() string {
	return p.Source + ":" + p.Identifier
}
