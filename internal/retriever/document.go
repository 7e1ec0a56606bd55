// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retriever

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/segmentio/encoding/json"
)

// Keys used for XML attribute and text content in the generic tree.
const (
	textKey   = "$text"
	attrKey   = "@"
	xmlnsName = "xmlns"
)

// Document is the generic tree built from a JSON or XML response.
// Nodes are map[string]any, []any, or scalars; both formats produce
// the same shape so one extractor serves both.
type Document struct {
	root any
}

// ParseResponse builds a Document from raw response bytes in the
// source's declared format. A parse error is a MalformedResponseError;
// it is reported to the caller, never retried.
func ParseResponse(data []byte, format ResponseFormat) (*Document, error) {
	switch format.Type {
	case FormatJSON:
		return parseJSON(data)
	case FormatXML:
		return parseXML(data, format.StripNamespaces)
	default:
		return nil, &MalformedResponseError{Format: format.Type,
			Err: io.ErrUnexpectedEOF}
	}
}

func parseJSON(data []byte) (*Document, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, &MalformedResponseError{Format: FormatJSON, Err: err}
	}
	return &Document{root: root}, nil
}

// parseXML converts well-formed XML into the generic tree. Each
// element becomes a map; repeated siblings with the same name collect
// into an array in document order; attributes live under "@name" and
// text content under "$text"; elements holding only text collapse to
// their string so paths read naturally.
//
// With stripNamespaces set, element and attribute names keep only
// their local part, so paths need no namespace qualification no
// matter which namespace the source actually uses. Without it, names
// are qualified as "namespace:local".
func parseXML(data []byte, stripNamespaces bool) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	root := map[string]any{}
	stack := []map[string]any{root}
	names := []string{""}
	sawElement := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedResponseError{Format: FormatXML, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawElement = true
			node := map[string]any{}
			for _, a := range t.Attr {
				if a.Name.Space == xmlnsName || a.Name.Local == xmlnsName {
					continue
				}
				node[attrKey+elementName(a.Name, stripNamespaces)] = a.Value
			}
			stack = append(stack, node)
			names = append(names, elementName(t.Name, stripNamespaces))

		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" {
				break
			}
			node := stack[len(stack)-1]
			if existing, ok := node[textKey].(string); ok {
				node[textKey] = existing + text
			} else {
				node[textKey] = text
			}

		case xml.EndElement:
			node := stack[len(stack)-1]
			name := names[len(names)-1]
			stack = stack[:len(stack)-1]
			names = names[:len(names)-1]

			parent := stack[len(stack)-1]
			insertChild(parent, name, collapseNode(node))
		}
	}

	if !sawElement {
		return nil, &MalformedResponseError{Format: FormatXML, Err: io.ErrUnexpectedEOF}
	}
	return &Document{root: root}, nil
}

func elementName(n xml.Name, strip bool) string {
	if strip || n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// collapseNode reduces a text-only element to its string value.
func collapseNode(node map[string]any) any {
	if len(node) == 1 {
		if text, ok := node[textKey].(string); ok {
			return text
		}
	}
	return node
}

// insertChild attaches a completed child element to its parent,
// converting repeated names into arrays in document order.
func insertChild(parent map[string]any, name string, value any) {
	existing, ok := parent[name]
	if !ok {
		parent[name] = value
		return
	}
	if arr, ok := existing.([]any); ok {
		parent[name] = append(arr, value)
		return
	}
	parent[name] = []any{existing, value}
}
