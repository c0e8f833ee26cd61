// Package transform turns intermediate document markup into the
// structured node tree the editing surface loads. The set of understood
// elements is closed: anything outside the registry degrades to plain
// paragraph text instead of failing the whole document.
package transform

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/lexamplify/draftstudio/schema"
)

// Transformer carries the handler registry through a single document
// build. Inline mark state never crosses block boundaries: each block
// restarts with an empty mark stack, so unterminated styling cannot
// leak into the next paragraph.
type Transformer struct {
	reg *Registry
}

// Transform parses markup and builds a document node. A nil registry
// means DefaultRegistry. The result always validates against the
// closed node set, and an empty input yields a document with a single
// empty paragraph so the editor has a cursor target.
func Transform(markup string, reg *Registry) (*schema.Node, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("transform: parse markup: %w", err)
	}
	body := findBody(root)
	if body == nil {
		body = root
	}

	tr := &Transformer{reg: reg}
	doc := schema.NewDoc(tr.blocks(body)...)
	if len(doc.Content) == 0 {
		doc.Append(schema.NewParagraph())
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	return doc, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

// blocks builds the block-level children of parent. Unregistered
// elements are not dropped: containers recurse, leaf elements keep
// their text as a plain paragraph.
func (tr *Transformer) blocks(parent *html.Node) []*schema.Node {
	var out []*schema.Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if text := strings.TrimSpace(c.Data); text != "" {
				out = append(out, schema.NewParagraph(schema.NewText(text)))
			}
		case html.ElementNode:
			if h, ok := tr.reg.Find(c); ok {
				if node := h.Build(tr, c); node != nil {
					out = append(out, node)
				}
				continue
			}
			if containsBlock(c, tr.reg) {
				out = append(out, tr.blocks(c)...)
				continue
			}
			if inline := tr.inline(c, nil); len(inline) > 0 {
				out = append(out, schema.NewParagraph(inline...))
			}
		}
	}
	return out
}

// itemContent builds the content of a container that may hold either
// block children (nested lists, paragraphs) or bare inline text. Bare
// inline runs are wrapped in a paragraph.
func (tr *Transformer) itemContent(parent *html.Node) []*schema.Node {
	var out []*schema.Node
	var pending []*schema.Node
	flush := func() {
		if len(pending) > 0 {
			out = append(out, schema.NewParagraph(pending...))
			pending = nil
		}
	}
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if h, ok := tr.reg.Find(c); ok {
				flush()
				if node := h.Build(tr, c); node != nil {
					out = append(out, node)
				}
				continue
			}
		}
		pending = append(pending, tr.inlineNode(c, nil)...)
	}
	flush()
	return out
}

// inline builds the text runs of parent, threading the accumulated
// mark stack down through nested styling elements.
func (tr *Transformer) inline(parent *html.Node, marks []schema.Mark) []*schema.Node {
	var out []*schema.Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, tr.inlineNode(c, marks)...)
	}
	return out
}

func (tr *Transformer) inlineNode(n *html.Node, marks []schema.Mark) []*schema.Node {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			// A whitespace-only node still separates adjacent styled
			// runs; only drop it at the edges of the parent.
			if n.PrevSibling != nil && n.PrevSibling.Type == html.ElementNode &&
				n.NextSibling != nil && n.NextSibling.Type == html.ElementNode {
				return []*schema.Node{schema.NewText(" ", marks...)}
			}
			return nil
		}
		return []*schema.Node{schema.NewText(n.Data, marks...)}
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			return []*schema.Node{{Type: schema.HardBreak}}
		case atom.Img:
			if node := buildImage(tr, n); node != nil {
				return []*schema.Node{node}
			}
			return nil
		}
		if mark, ok := markFor(n); ok {
			return tr.inline(n, appendMark(marks, mark))
		}
		// Unknown inline element: keep the text, drop the tag.
		return tr.inline(n, marks)
	default:
		return nil
	}
}

func appendMark(marks []schema.Mark, mark schema.Mark) []schema.Mark {
	for _, m := range marks {
		if m.Type == mark.Type {
			return marks
		}
	}
	next := make([]schema.Mark, len(marks), len(marks)+1)
	copy(next, marks)
	return append(next, mark)
}

// markFor maps a styling element to its mark. Closed like the node
// registry: marks outside this set do not exist.
func markFor(n *html.Node) (schema.Mark, bool) {
	switch n.DataAtom {
	case atom.Strong, atom.B:
		return schema.Mark{Type: schema.Bold}, true
	case atom.Em, atom.I:
		return schema.Mark{Type: schema.Italic}, true
	case atom.U:
		return schema.Mark{Type: schema.Underline}, true
	case atom.S, atom.Del, atom.Strike:
		return schema.Mark{Type: schema.Strike}, true
	case atom.Code:
		return schema.Mark{Type: schema.Code}, true
	case atom.A:
		href := attrVal(n, "href")
		if href == "" {
			return schema.Mark{}, false
		}
		return schema.Mark{Type: schema.Link, Attrs: map[string]any{"href": href}}, true
	case atom.Mark:
		attrs := map[string]any{}
		if color, ok := parseStyle(attrVal(n, "style"))["background-color"]; ok {
			attrs["color"] = color
		}
		if len(attrs) == 0 {
			return schema.Mark{Type: schema.Highlight}, true
		}
		return schema.Mark{Type: schema.Highlight, Attrs: attrs}, true
	case atom.Span:
		attrs := textStyleAttrs(parseStyle(attrVal(n, "style")))
		if len(attrs) == 0 {
			return schema.Mark{}, false
		}
		return schema.Mark{Type: schema.TextStyle, Attrs: attrs}, true
	}
	return schema.Mark{}, false
}

func textStyleAttrs(style map[string]string) map[string]any {
	attrs := map[string]any{}
	if v, ok := style["color"]; ok {
		attrs["color"] = v
	}
	if v, ok := style["font-family"]; ok {
		attrs["fontFamily"] = v
	}
	if v, ok := style["font-size"]; ok {
		attrs["fontSize"] = v
	}
	if v, ok := style["line-height"]; ok {
		attrs["lineHeight"] = v
	}
	if v, ok := style["background-color"]; ok {
		attrs["backgroundColor"] = v
	}
	return attrs
}

func parseStyle(style string) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(style, ";") {
		key, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		if key != "" && val != "" {
			out[key] = val
		}
	}
	return out
}

// containsBlock reports whether any descendant of n is a registered
// block element, which makes n a wrapper worth recursing into rather
// than a leaf to flatten.
func containsBlock(n *html.Node, reg *Registry) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if _, ok := reg.Find(c); ok {
			return true
		}
		if containsBlock(c, reg) {
			return true
		}
	}
	return false
}
