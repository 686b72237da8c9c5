// Package markdown converts the rich-text editor's document tree to Markdown and back.
//
// Only a restricted subset is supported: headings, emphasis, strikethrough, links, inline code,
// bullet/ordered/task lists, fenced code blocks, blockquotes, horizontal rules and hard breaks.
// Both directions are total: malformed input degrades to literal text and never panics.
package markdown

type NodeType string

const (
	Doc            NodeType = "doc"
	Paragraph      NodeType = "paragraph"
	Heading        NodeType = "heading"
	BulletList     NodeType = "bulletList"
	OrderedList    NodeType = "orderedList"
	ListItem       NodeType = "listItem"
	TaskList       NodeType = "taskList"
	TaskItem       NodeType = "taskItem"
	CodeBlock      NodeType = "codeBlock"
	Blockquote     NodeType = "blockquote"
	HardBreak      NodeType = "hardBreak"
	HorizontalRule NodeType = "horizontalRule"
	Text           NodeType = "text"
)

type MarkType string

const (
	Bold   MarkType = "bold"
	Italic MarkType = "italic"
	Strike MarkType = "strike"
	Link   MarkType = "link"
	Code   MarkType = "code"
)

// markOrder is the wrapping precedence, outermost first.
var markOrder = []MarkType{Bold, Italic, Strike, Link, Code}

type (
	// Node is one element of the editor document, in the editor's JSON shape.
	Node struct {
		Type    NodeType `json:"type"`
		Attrs   *Attrs   `json:"attrs,omitempty"`
		Content []Node   `json:"content,omitempty"`
		Text    string   `json:"text,omitempty"`
		Marks   []Mark   `json:"marks,omitempty"`
	}

	Attrs struct {
		Level   int  `json:"level,omitempty"`   // heading
		Checked bool `json:"checked,omitempty"` // taskItem
	}

	Mark struct {
		Type  MarkType   `json:"type"`
		Attrs *MarkAttrs `json:"attrs,omitempty"`
	}

	MarkAttrs struct {
		Href string `json:"href,omitempty"`
	}
)

// Empty returns the canonical empty document: a doc holding one empty paragraph.
func Empty() Node {
	return Node{Type: Doc, Content: []Node{{Type: Paragraph}}}
}

func (n Node) level() int {
	if n.Attrs == nil || n.Attrs.Level < 1 {
		return 1
	}
	if n.Attrs.Level > 6 {
		return 6
	}
	return n.Attrs.Level
}

func (n Node) checked() bool {
	return n.Attrs != nil && n.Attrs.Checked
}

func (n Node) hasMark(t MarkType) (Mark, bool) {
	for _, m := range n.Marks {
		if m.Type == t {
			return m, true
		}
	}
	return Mark{}, false
}

func (m Mark) href() string {
	if m.Attrs == nil {
		return ""
	}
	return m.Attrs.Href
}

func isList(t NodeType) bool {
	return t == BulletList || t == OrderedList || t == TaskList
}

// Builders used by the parser and by callers assembling documents by hand.

func NewText(text string, marks ...Mark) Node {
	return Node{Type: Text, Text: text, Marks: marks}
}

func NewParagraph(content ...Node) Node {
	return Node{Type: Paragraph, Content: content}
}

func NewHeading(level int, content ...Node) Node {
	return Node{Type: Heading, Attrs: &Attrs{Level: level}, Content: content}
}

func NewLinkMark(href string) Mark {
	return Mark{Type: Link, Attrs: &MarkAttrs{Href: href}}
}
