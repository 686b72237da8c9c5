package markdown

import "strings"

// parseInline splits s at hard breaks (two trailing spaces before a newline) and parses the
// marks of each segment. A backslash before a block marker at the start of a line is dropped. breakNewlines turns bare newlines into hard breaks too, as list items
// and headings cannot carry soft line breaks.
func parseInline(s string, breakNewlines bool) []Node {
	var (
		nodes []Node
		seg   strings.Builder
	)
	flush := func() {
		nodes = append(nodes, parseSpans(seg.String(), nil)...)
		seg.Reset()
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, `\`) && startsBlock(line[1:]) {
			line = line[1:]
		}
		if i == len(lines)-1 {
			seg.WriteString(line)
			break
		}
		switch {
		case strings.HasSuffix(line, "  "):
			seg.WriteString(line[:len(line)-2])
		case breakNewlines:
			seg.WriteString(line)
		default:
			seg.WriteString(line)
			seg.WriteString("\n")
			continue
		}
		flush()
		nodes = append(nodes, Node{Type: HardBreak})
	}
	flush()
	return nodes
}

// parseSpans scans s for links, bold, italic, strike and code spans, recursing into their
// content with the enclosing marks. An unclosed delimiter is kept as literal text.
func parseSpans(s string, marks []Mark) []Node {
	var (
		nodes []Node
		buf   strings.Builder
	)
	flush := func() {
		if buf.Len() > 0 {
			nodes = append(nodes, NewText(buf.String(), marks...))
			buf.Reset()
		}
	}
	for i := 0; i < len(s); {
		switch {
		case s[i] == '[':
			if text, href, end, ok := matchLink(s, i); ok {
				flush()
				nodes = append(nodes, parseSpans(text, withMark(marks, NewLinkMark(href)))...)
				i = end
				continue
			}
		case strings.HasPrefix(s[i:], "**"):
			if inner, end, ok := matchDelim(s, i, "**", true); ok {
				flush()
				nodes = append(nodes, parseSpans(inner, withMark(marks, Mark{Type: Bold}))...)
				i = end
				continue
			}
		case strings.HasPrefix(s[i:], "~~"):
			if inner, end, ok := matchDelim(s, i, "~~", true); ok {
				flush()
				nodes = append(nodes, parseSpans(inner, withMark(marks, Mark{Type: Strike}))...)
				i = end
				continue
			}
		case s[i] == '`':
			if inner, end, ok := matchDelim(s, i, "`", false); ok {
				flush()
				nodes = append(nodes, NewText(inner, withMark(marks, Mark{Type: Code})...))
				i = end
				continue
			}
		}
		// a lone '*' (including the first of an unmatched "**") may still open italic
		if s[i] == '*' {
			if inner, end, ok := matchDelim(s, i, "*", false); ok {
				flush()
				nodes = append(nodes, parseSpans(inner, withMark(marks, Mark{Type: Italic}))...)
				i = end
				continue
			}
		}
		buf.WriteByte(s[i])
		i++
	}
	flush()
	return nodes
}

// matchDelim finds the closing delimiter for the one opening at i. With greedy set, a closing
// run longer than the delimiter closes on its last characters, so "***x***" is bold around "*x*".
func matchDelim(s string, i int, delim string, greedy bool) (inner string, end int, ok bool) {
	start := i + len(delim)
	j := strings.Index(s[start:], delim)
	if j <= 0 {
		return "", 0, false
	}
	closeAt := start + j
	if greedy {
		for closeAt+len(delim) < len(s) && s[closeAt+len(delim)] == delim[0] {
			closeAt++
		}
	}
	return s[start:closeAt], closeAt + len(delim), true
}

func matchLink(s string, i int) (text, href string, end int, ok bool) {
	j := strings.Index(s[i+1:], "](")
	if j <= 0 {
		return "", "", 0, false
	}
	textEnd := i + 1 + j
	k := strings.IndexByte(s[textEnd+2:], ')')
	if k < 0 {
		return "", "", 0, false
	}
	hrefEnd := textEnd + 2 + k
	return s[i+1 : textEnd], s[textEnd+2 : hrefEnd], hrefEnd + 1, true
}

func withMark(marks []Mark, m Mark) []Mark {
	out := make([]Mark, 0, len(marks)+1)
	out = append(out, marks...)
	return append(out, m)
}
