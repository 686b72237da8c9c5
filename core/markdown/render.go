package markdown

import (
	"strconv"
	"strings"
)

const hardBreak = "  \n"

// ToMarkdown renders an editor document as Markdown.
// Unknown node types are rendered like paragraphs, the concatenation of their children.
func ToMarkdown(doc Node) string {
	return render(doc, 0)
}

func render(n Node, level int) string {
	switch n.Type {
	case Doc:
		return joinBlocks(n.Content, level)
	case Heading:
		// a heading is a single line
		text := strings.ReplaceAll(renderInline(n.Content, level), hardBreak, " ")
		return strings.Repeat("#", n.level()) + " " + escapeBlockStarts(text)
	case Paragraph:
		return escapeBlockStarts(renderInline(n.Content, level))
	case BulletList, OrderedList, TaskList:
		return renderList(n, level)
	case CodeBlock:
		return "```\n" + plainText(n.Content) + "\n```"
	case Blockquote:
		lines := strings.Split(joinBlocks(n.Content, level), "\n")
		for i, line := range lines {
			if line == "" {
				lines[i] = ">"
			} else {
				lines[i] = "> " + line
			}
		}
		return strings.Join(lines, "\n")
	case HorizontalRule:
		return "---"
	case HardBreak:
		return hardBreak
	case Text:
		return renderText(n)
	default:
		return escapeBlockStarts(renderInline(n.Content, level))
	}
}

// escapeBlockStarts trims the indentation of each line of inline text and puts a backslash
// before a leading list, heading, quote, fence or rule marker so the line stays text.
func escapeBlockStarts(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if trimmed := strings.TrimLeft(line, " \t"); trimmed != "" {
			line = trimmed
		}
		if startsBlock(line) {
			line = `\` + line
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// joinBlocks separates blocks with a blank line, skipping blocks that render to nothing.
func joinBlocks(nodes []Node, level int) string {
	blocks := make([]string, 0, len(nodes))
	for _, child := range nodes {
		if s := render(child, level); s != "" {
			blocks = append(blocks, s)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// renderInline concatenates children. Leading and trailing hard breaks are dropped:
// they cannot survive a blank-line block split.
func renderInline(nodes []Node, level int) string {
	var sb strings.Builder
	for _, child := range nodes {
		sb.WriteString(render(child, level))
	}
	s := sb.String()
	for strings.HasSuffix(s, hardBreak) {
		s = strings.TrimSuffix(s, hardBreak)
	}
	for strings.HasPrefix(s, hardBreak) {
		s = strings.TrimPrefix(s, hardBreak)
	}
	return s
}

func renderList(list Node, level int) string {
	indent := strings.Repeat("  ", level)
	items := make([]string, 0, len(list.Content))
	for i, item := range list.Content {
		prefix := "- "
		switch list.Type {
		case OrderedList:
			prefix = strconv.Itoa(i+1) + ". "
		case TaskList:
			if item.checked() {
				prefix = "- [x] "
			} else {
				prefix = "- [ ] "
			}
		}
		items = append(items, renderItem(item, prefix, indent, level))
	}
	return strings.Join(items, "\n")
}

// renderItem writes the item's own text on the prefix line, continuation lines indented
// under it, then any nested list one level deeper.
func renderItem(item Node, prefix, indent string, level int) string {
	var body, nested []string
	for _, child := range item.Content {
		if isList(child.Type) {
			if s := renderList(child, level+1); s != "" {
				nested = append(nested, s)
			}
			continue
		}
		if s := render(child, level); s != "" {
			body = append(body, s)
		}
	}
	text := strings.Join(body, hardBreak)
	text = strings.ReplaceAll(text, "\n", "\n"+indent+"  ")

	var sb strings.Builder
	sb.WriteString(indent)
	sb.WriteString(prefix)
	sb.WriteString(text)
	for _, s := range nested {
		sb.WriteString("\n")
		sb.WriteString(s)
	}
	return sb.String()
}

// renderText wraps the text with its marks, code innermost and bold outermost.
func renderText(n Node) string {
	s := n.Text
	if s == "" {
		return ""
	}
	for i := len(markOrder) - 1; i >= 0; i-- {
		m, ok := n.hasMark(markOrder[i])
		if !ok {
			continue
		}
		switch m.Type {
		case Code:
			s = "`" + s + "`"
		case Link:
			s = "[" + s + "](" + m.href() + ")"
		case Strike:
			s = "~~" + s + "~~"
		case Italic:
			s = "*" + s + "*"
		case Bold:
			s = "**" + s + "**"
		}
	}
	return s
}

func plainText(nodes []Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case Text:
			sb.WriteString(n.Text)
		case HardBreak:
			sb.WriteString("\n")
		default:
			sb.WriteString(plainText(n.Content))
		}
	}
	return sb.String()
}
