package transform

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/lexamplify/draftstudio/schema"
)

// Handler maps one markup element to a structured node.
type Handler struct {
	Name  string
	Match func(n *html.Node) bool
	Build func(tr *Transformer, n *html.Node) *schema.Node
}

// Registry is the closed, ordered list of node handlers. Resolved once
// at startup; registry order only matters for conflict resolution
// between overlapping handlers — the first match wins.
type Registry struct {
	handlers []Handler
}

// Find returns the first handler matching n.
func (r *Registry) Find(n *html.Node) (Handler, bool) {
	for _, h := range r.handlers {
		if h.Match(n) {
			return h, true
		}
	}
	return Handler{}, false
}

func tagMatch(tags ...atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, t := range tags {
			if n.DataAtom == t {
				return true
			}
		}
		return false
	}
}

// DefaultRegistry returns the fixed extension set understood by the
// editing surface. taskList precedes bulletList: both match <ul>, and a
// task list is distinguished only by its data-type attribute.
func DefaultRegistry() *Registry {
	return &Registry{handlers: []Handler{
		{
			Name: "taskList",
			Match: func(n *html.Node) bool {
				return n.DataAtom == atom.Ul && attrVal(n, "data-type") == "taskList"
			},
			Build: buildTaskList,
		},
		{Name: "bulletList", Match: tagMatch(atom.Ul), Build: buildList(schema.BulletList)},
		{Name: "orderedList", Match: tagMatch(atom.Ol), Build: buildList(schema.OrderedList)},
		{
			Name:  "heading",
			Match: tagMatch(atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6),
			Build: buildHeading,
		},
		{Name: "paragraph", Match: tagMatch(atom.P), Build: buildParagraph},
		{Name: "table", Match: tagMatch(atom.Table), Build: buildTable},
		{Name: "blockquote", Match: tagMatch(atom.Blockquote), Build: buildBlockquote},
		{Name: "codeBlock", Match: tagMatch(atom.Pre), Build: buildCodeBlock},
		{
			Name:  "horizontalRule",
			Match: tagMatch(atom.Hr),
			Build: func(*Transformer, *html.Node) *schema.Node {
				return &schema.Node{Type: schema.HorizontalRule}
			},
		},
		{Name: "image", Match: tagMatch(atom.Img), Build: buildImage},
	}}
}

func buildHeading(tr *Transformer, n *html.Node) *schema.Node {
	level := int(n.Data[1] - '0') // h1..h6
	return schema.NewHeading(level, tr.inline(n, nil)...)
}

func buildParagraph(tr *Transformer, n *html.Node) *schema.Node {
	return schema.NewParagraph(tr.inline(n, nil)...)
}

func buildList(listType schema.NodeType) func(*Transformer, *html.Node) *schema.Node {
	return func(tr *Transformer, n *html.Node) *schema.Node {
		list := &schema.Node{Type: listType}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || c.DataAtom != atom.Li {
				continue
			}
			item := &schema.Node{Type: schema.ListItem}
			item.Append(tr.itemContent(c)...)
			list.Append(item)
		}
		if len(list.Content) == 0 {
			return nil
		}
		return list
	}
}

func buildTaskList(tr *Transformer, n *html.Node) *schema.Node {
	list := &schema.Node{Type: schema.TaskList}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		item := &schema.Node{
			Type:  schema.TaskItem,
			Attrs: map[string]any{"checked": attrVal(c, "data-checked") == "true"},
		}
		item.Append(tr.itemContent(c)...)
		list.Append(item)
	}
	if len(list.Content) == 0 {
		return nil
	}
	return list
}

func buildTable(tr *Transformer, n *html.Node) *schema.Node {
	table := &schema.Node{Type: schema.Table}
	var visitRows func(parent *html.Node)
	visitRows = func(parent *html.Node) {
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Thead, atom.Tbody, atom.Tfoot:
				visitRows(c)
			case atom.Tr:
				table.Append(buildTableRow(tr, c))
			}
		}
	}
	visitRows(n)
	if len(table.Content) == 0 {
		return nil
	}
	return table
}

func buildTableRow(tr *Transformer, n *html.Node) *schema.Node {
	row := &schema.Node{Type: schema.TableRow}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		var cellType schema.NodeType
		switch c.DataAtom {
		case atom.Td:
			cellType = schema.TableCell
		case atom.Th:
			cellType = schema.TableHeader
		default:
			continue
		}
		cell := &schema.Node{Type: cellType}
		cell.Append(tr.itemContent(c)...)
		if len(cell.Content) == 0 {
			cell.Append(schema.NewParagraph())
		}
		row.Append(cell)
	}
	return row
}

func buildBlockquote(tr *Transformer, n *html.Node) *schema.Node {
	bq := &schema.Node{Type: schema.Blockquote}
	bq.Append(tr.itemContent(n)...)
	if len(bq.Content) == 0 {
		return nil
	}
	return bq
}

func buildCodeBlock(tr *Transformer, n *html.Node) *schema.Node {
	text := collectText(n)
	block := &schema.Node{Type: schema.CodeBlock}
	if text != "" {
		block.Append(&schema.Node{Type: schema.Text, Text: text})
	}
	return block
}

func buildImage(_ *Transformer, n *html.Node) *schema.Node {
	src := attrVal(n, "src")
	if src == "" {
		return nil
	}
	attrs := map[string]any{"src": src}
	if alt := attrVal(n, "alt"); alt != "" {
		attrs["alt"] = alt
	}
	return &schema.Node{Type: schema.Image, Attrs: attrs}
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimRight(sb.String(), "\n")
}
