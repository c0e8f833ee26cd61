// Package schema defines the structured document model shared by the
// converter, the transformer and the editing surface.
//
// A document is an ordered tree of typed nodes. Text nodes carry marks
// (bold, italic, link, ...). Both node and mark types come from a closed
// registry: anything outside it fails Validate, which is how the pipeline
// guarantees no unknown node type escapes a conversion.
//
// The JSON shape matches the editor's content format:
//
//	{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hi"}]}]}
package schema

import (
	"fmt"
	"strings"
)

// NodeType identifies a node kind from the fixed registry.
type NodeType string

const (
	Doc            NodeType = "doc"
	Paragraph      NodeType = "paragraph"
	Heading        NodeType = "heading"
	Text           NodeType = "text"
	Table          NodeType = "table"
	TableRow       NodeType = "tableRow"
	TableCell      NodeType = "tableCell"
	TableHeader    NodeType = "tableHeader"
	BulletList     NodeType = "bulletList"
	OrderedList    NodeType = "orderedList"
	ListItem       NodeType = "listItem"
	TaskList       NodeType = "taskList"
	TaskItem       NodeType = "taskItem"
	Image          NodeType = "image"
	Blockquote     NodeType = "blockquote"
	CodeBlock      NodeType = "codeBlock"
	HorizontalRule NodeType = "horizontalRule"
	HardBreak      NodeType = "hardBreak"
)

// MarkType identifies an inline mark kind from the fixed registry.
type MarkType string

const (
	Bold      MarkType = "bold"
	Italic    MarkType = "italic"
	Underline MarkType = "underline"
	Strike    MarkType = "strike"
	Code      MarkType = "code"
	Link      MarkType = "link"
	TextStyle MarkType = "textStyle" // color, fontFamily, fontSize, lineHeight
	Highlight MarkType = "highlight"
)

// Mark is an inline formatting annotation on a text node.
type Mark struct {
	Type  MarkType       `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Node is one element of a structured document tree.
// Exactly one of Content (block/inline children) or Text (leaf text) is
// populated for most types; leaf nodes like horizontalRule carry neither.
type Node struct {
	Type    NodeType       `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// NewDoc returns a document root with the given block children.
func NewDoc(content ...*Node) *Node {
	return &Node{Type: Doc, Content: content}
}

// NewParagraph returns a paragraph with the given inline children.
func NewParagraph(content ...*Node) *Node {
	return &Node{Type: Paragraph, Content: content}
}

// NewHeading returns a heading of the given level (clamped to 1..6).
func NewHeading(level int, content ...*Node) *Node {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return &Node{Type: Heading, Attrs: map[string]any{"level": level}, Content: content}
}

// NewText returns a text leaf carrying the given marks.
// Duplicate marks are collapsed.
func NewText(text string, marks ...Mark) *Node {
	n := &Node{Type: Text, Text: text}
	for _, m := range marks {
		n.AddMark(m)
	}
	return n
}

// AddMark appends a mark unless a mark of the same type is already
// present. Marks are commutative, so insertion order carries no meaning
// beyond JSON stability.
func (n *Node) AddMark(m Mark) {
	for _, existing := range n.Marks {
		if existing.Type == m.Type {
			return
		}
	}
	n.Marks = append(n.Marks, m)
}

// HasMark reports whether the node carries a mark of the given type.
func (n *Node) HasMark(t MarkType) bool {
	for _, m := range n.Marks {
		if m.Type == t {
			return true
		}
	}
	return false
}

// Append adds children to the node.
func (n *Node) Append(children ...*Node) {
	n.Content = append(n.Content, children...)
}

// PlainText flattens the subtree into its concatenated text content.
// Block boundaries become newlines.
func (n *Node) PlainText() string {
	var sb strings.Builder
	n.writeText(&sb)
	return strings.TrimSpace(sb.String())
}

func (n *Node) writeText(sb *strings.Builder) {
	if n.Type == Text {
		sb.WriteString(n.Text)
		return
	}
	if n.Type == HardBreak {
		sb.WriteByte('\n')
		return
	}
	for _, c := range n.Content {
		c.writeText(sb)
	}
	if isBlock(n.Type) && sb.Len() > 0 {
		sb.WriteByte('\n')
	}
}

func isBlock(t NodeType) bool {
	switch t {
	case Paragraph, Heading, TableRow, ListItem, TaskItem, Blockquote, CodeBlock:
		return true
	}
	return false
}

// Walk visits every node of the subtree in depth-first order.
// Returning false from fn stops the descent into that node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Content {
		c.Walk(fn)
	}
}

// Validate checks the tree against the registry and its structural
// invariants. It is called on every transformer output before the tree
// is handed to a caller.
func Validate(root *Node) error {
	if root == nil {
		return fmt.Errorf("schema: nil document")
	}
	if root.Type != Doc {
		return fmt.Errorf("schema: root must be %q, got %q", Doc, root.Type)
	}
	return validateNode(root)
}

func validateNode(n *Node) error {
	if !KnownNodeType(n.Type) {
		return fmt.Errorf("schema: unknown node type %q", n.Type)
	}
	if n.Type == Text && len(n.Content) > 0 {
		return fmt.Errorf("schema: text node must not have children")
	}
	seen := make(map[MarkType]bool, len(n.Marks))
	for _, m := range n.Marks {
		if !KnownMarkType(m.Type) {
			return fmt.Errorf("schema: unknown mark type %q", m.Type)
		}
		if seen[m.Type] {
			return fmt.Errorf("schema: duplicate mark %q on text node", m.Type)
		}
		seen[m.Type] = true
	}
	for _, c := range n.Content {
		switch n.Type {
		case Table:
			if c.Type != TableRow {
				return fmt.Errorf("schema: table child must be %q, got %q", TableRow, c.Type)
			}
		case TableRow:
			if c.Type != TableCell && c.Type != TableHeader {
				return fmt.Errorf("schema: row child must be a cell, got %q", c.Type)
			}
		}
		if err := validateNode(c); err != nil {
			return err
		}
	}
	return nil
}
