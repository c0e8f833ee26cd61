// Package convert decodes binary word-processor documents into
// intermediate semantic markup.
//
// The output is plain HTML carrying document semantics only — headings,
// paragraphs, lists, tables, inline styling — with no layout or
// pagination information. The transform package turns this markup into a
// structured document; keeping the two stages separate lets the
// transformer accept markup from any upstream source, not just the
// binary converter.
package convert

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/antchfx/xmlquery"
)

// ConversionError reports an unreadable or unsupported binary document.
// The wrapped cause carries low-level detail for diagnostics; Error()
// stays caller-safe.
type ConversionError struct {
	Reason string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("convert: %s: %v", e.Reason, e.Err)
	}
	return "convert: " + e.Reason
}

func (e *ConversionError) Unwrap() error { return e.Err }

func conversionErr(reason string, err error) error {
	return &ConversionError{Reason: reason, Err: err}
}

// Convert decodes a DOCX document into semantic HTML markup.
// All-or-nothing: a malformed archive or document body fails with a
// *ConversionError and no partial markup is returned.
func Convert(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", conversionErr("not a valid document archive", err)
	}

	doc, err := readArchiveXML(zr, "word/document.xml")
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", conversionErr("word/document.xml not found in archive", nil)
	}

	// Optional parts: hyperlink targets and list numbering definitions.
	// Their absence is normal for simple documents.
	rels := hyperlinkTargets(zr)
	numbering := numberingFormats(zr)

	body := findElement(doc, "body")
	if body == nil {
		return "", conversionErr("document has no body", nil)
	}

	w := &markupWriter{rels: rels, numbering: numbering}
	w.writeBody(body)
	return w.String(), nil
}

// readArchiveXML parses one XML part of the archive, or returns nil if
// the part does not exist.
func readArchiveXML(zr *zip.Reader, name string) (*xmlquery.Node, error) {
	var file *zip.File
	for _, f := range zr.File {
		if f.Name == name {
			file = f
			break
		}
	}
	if file == nil {
		return nil, nil
	}
	rc, err := file.Open()
	if err != nil {
		return nil, conversionErr("open "+name, err)
	}
	defer rc.Close()
	node, err := xmlquery.Parse(rc)
	if err != nil {
		return nil, conversionErr("parse "+name, err)
	}
	return node, nil
}

// hyperlinkTargets maps relationship IDs to their URL targets from
// word/_rels/document.xml.rels.
func hyperlinkTargets(zr *zip.Reader) map[string]string {
	rels, err := readArchiveXML(zr, "word/_rels/document.xml.rels")
	if err != nil || rels == nil {
		return nil
	}
	out := make(map[string]string)
	walkElements(rels, func(n *xmlquery.Node) {
		if n.Data != "Relationship" {
			return
		}
		id := attr(n, "Id")
		target := attr(n, "Target")
		if id != "" && target != "" {
			out[id] = target
		}
	})
	return out
}

// numberingFormats maps numId values to their level-0 number format
// ("bullet", "decimal", ...) from word/numbering.xml. Best effort — an
// unknown numId defaults to a bullet list downstream.
func numberingFormats(zr *zip.Reader) map[string]string {
	numbering, err := readArchiveXML(zr, "word/numbering.xml")
	if err != nil || numbering == nil {
		return nil
	}

	// abstractNumId → level-0 numFmt
	abstractFmt := make(map[string]string)
	walkElements(numbering, func(n *xmlquery.Node) {
		if n.Data != "abstractNum" {
			return
		}
		id := attr(n, "abstractNumId")
		for lvl := firstChildElement(n); lvl != nil; lvl = nextElement(lvl) {
			if lvl.Data != "lvl" || attr(lvl, "ilvl") != "0" {
				continue
			}
			if fmtEl := findElement(lvl, "numFmt"); fmtEl != nil {
				abstractFmt[id] = attr(fmtEl, "val")
			}
			break
		}
	})

	// numId → abstractNumId → numFmt
	out := make(map[string]string)
	walkElements(numbering, func(n *xmlquery.Node) {
		if n.Data != "num" {
			return
		}
		numID := attr(n, "numId")
		if ref := findElement(n, "abstractNumId"); ref != nil {
			if f, ok := abstractFmt[attr(ref, "val")]; ok {
				out[numID] = f
			}
		}
	})
	return out
}

// --- xmlquery traversal helpers ---
//
// DOCX elements are namespaced (w:p, w:r, ...); xmlquery stores the
// local name in Data and the prefix separately, so matching on Data is
// prefix-agnostic.

func attr(n *xmlquery.Node, name string) string {
	for _, a := range n.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func firstChildElement(n *xmlquery.Node) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}

func nextElement(n *xmlquery.Node) *xmlquery.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == xmlquery.ElementNode {
			return s
		}
	}
	return nil
}

// findElement returns the first descendant element with the given local
// name, depth-first.
func findElement(n *xmlquery.Node, local string) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			if c.Data == local {
				return c
			}
			if found := findElement(c, local); found != nil {
				return found
			}
		}
	}
	return nil
}

// walkElements visits every descendant element depth-first.
func walkElements(n *xmlquery.Node, fn func(*xmlquery.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			fn(c)
			walkElements(c, fn)
		}
	}
}

// innerText concatenates the text content of a subtree.
func innerText(n *xmlquery.Node) string {
	var sb bytes.Buffer
	collectText(n, &sb)
	return sb.String()
}

func collectText(n *xmlquery.Node, sb *bytes.Buffer) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			sb.WriteString(c.Data)
		case xmlquery.ElementNode:
			collectText(c, sb)
		}
	}
}
