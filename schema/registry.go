package schema

// nodeTypes is the closed node registry. Conversion output is rejected
// if it references anything outside this set.
var nodeTypes = map[NodeType]bool{
	Doc:            true,
	Paragraph:      true,
	Heading:        true,
	Text:           true,
	Table:          true,
	TableRow:       true,
	TableCell:      true,
	TableHeader:    true,
	BulletList:     true,
	OrderedList:    true,
	ListItem:       true,
	TaskList:       true,
	TaskItem:       true,
	Image:          true,
	Blockquote:     true,
	CodeBlock:      true,
	HorizontalRule: true,
	HardBreak:      true,
}

// markTypes is the closed mark registry.
var markTypes = map[MarkType]bool{
	Bold:      true,
	Italic:    true,
	Underline: true,
	Strike:    true,
	Code:      true,
	Link:      true,
	TextStyle: true,
	Highlight: true,
}

// KnownNodeType reports whether t belongs to the fixed node registry.
func KnownNodeType(t NodeType) bool { return nodeTypes[t] }

// KnownMarkType reports whether t belongs to the fixed mark registry.
func KnownMarkType(t MarkType) bool { return markTypes[t] }

// NodeTypes returns the registry contents. The slice is a copy.
func NodeTypes() []NodeType {
	out := make([]NodeType, 0, len(nodeTypes))
	for t := range nodeTypes {
		out = append(out, t)
	}
	return out
}

// MarkTypes returns the registry contents. The slice is a copy.
func MarkTypes() []MarkType {
	out := make([]MarkType, 0, len(markTypes))
	for t := range markTypes {
		out = append(out, t)
	}
	return out
}
