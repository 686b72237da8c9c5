package markdown

import (
	"html"
	"strconv"
	"strings"
)

// emptyHTML is what the editor expects for a document without content.
const emptyHTML = "<p></p>"

// ToHTML renders a document as the HTML the editor loads its initial content from.
func ToHTML(doc Node) string {
	var sb strings.Builder
	writeHTML(&sb, doc)
	if sb.Len() == 0 {
		return emptyHTML
	}
	return sb.String()
}

// FromMarkdownHTML parses Markdown and renders it straight to HTML.
func FromMarkdownHTML(md string) string {
	return ToHTML(FromMarkdown(md))
}

func writeHTML(sb *strings.Builder, n Node) {
	wrap := func(open, close string) {
		sb.WriteString(open)
		for _, child := range n.Content {
			writeHTML(sb, child)
		}
		sb.WriteString(close)
	}
	switch n.Type {
	case Doc:
		for _, child := range n.Content {
			writeHTML(sb, child)
		}
	case Heading:
		tag := "h" + strconv.Itoa(n.level())
		wrap("<"+tag+">", "</"+tag+">")
	case BulletList:
		wrap("<ul>", "</ul>")
	case OrderedList:
		wrap("<ol>", "</ol>")
	case TaskList:
		wrap(`<ul data-type="taskList">`, "</ul>")
	case ListItem:
		wrap("<li>", "</li>")
	case TaskItem:
		wrap(`<li data-type="taskItem" data-checked="`+strconv.FormatBool(n.checked())+`">`, "</li>")
	case CodeBlock:
		sb.WriteString("<pre><code>")
		sb.WriteString(html.EscapeString(plainText(n.Content)))
		sb.WriteString("</code></pre>")
	case Blockquote:
		wrap("<blockquote>", "</blockquote>")
	case HorizontalRule:
		sb.WriteString("<hr>")
	case HardBreak:
		sb.WriteString("<br>")
	case Text:
		sb.WriteString(textHTML(n))
	default:
		wrap("<p>", "</p>")
	}
}

func textHTML(n Node) string {
	s := html.EscapeString(n.Text)
	for i := len(markOrder) - 1; i >= 0; i-- {
		m, ok := n.hasMark(markOrder[i])
		if !ok {
			continue
		}
		switch m.Type {
		case Code:
			s = "<code>" + s + "</code>"
		case Link:
			s = `<a href="` + html.EscapeString(m.href()) + `">` + s + "</a>"
		case Strike:
			s = "<s>" + s + "</s>"
		case Italic:
			s = "<em>" + s + "</em>"
		case Bold:
			s = "<strong>" + s + "</strong>"
		}
	}
	return s
}
