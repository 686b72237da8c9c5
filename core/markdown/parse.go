package markdown

import (
	"regexp"
	"strings"
)

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s(.*)$`)
	taskRe    = regexp.MustCompile(`^- \[([ x])\] ?(.*)$`)
	bulletRe  = regexp.MustCompile(`^[-*]\s(.*)$`)
	orderedRe = regexp.MustCompile(`^\d+\.\s(.*)$`)
	fenceRe   = regexp.MustCompile("^```+")
	quoteRe   = regexp.MustCompile(`^>`)
	hrRe      = regexp.MustCompile(`^---$`)
)

// FromMarkdown parses Markdown into an editor document. Blank or whitespace-only input gives Empty().
//
// Blocks are separated by one or more empty lines, so runs of three or more newlines outside
// fenced code behave exactly like a single blank line.
func FromMarkdown(md string) Node {
	md = strings.ReplaceAll(md, "\r\n", "\n")
	if strings.TrimSpace(md) == "" {
		return Empty()
	}
	var content []Node
	for _, lines := range splitBlocks(md) {
		content = append(content, parseBlock(lines)...)
	}
	if len(content) == 0 {
		return Empty()
	}
	return Node{Type: Doc, Content: content}
}

// splitBlocks groups lines into blocks at empty lines. A fenced code block is kept whole even
// when it contains empty lines.
func splitBlocks(md string) [][]string {
	var (
		blocks  [][]string
		cur     []string
		inFence bool
	)
	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, cur)
			cur = nil
		}
	}
	for _, line := range strings.Split(md, "\n") {
		switch {
		case inFence:
			cur = append(cur, line)
			if fenceRe.MatchString(line) {
				inFence = false
				flush()
			}
		case line == "":
			flush()
		case len(cur) == 0 && fenceRe.MatchString(line):
			inFence = true
			cur = append(cur, line)
		default:
			cur = append(cur, line)
		}
	}
	flush()
	return blocks
}

func parseBlock(lines []string) []Node {
	if len(lines) == 0 {
		return nil
	}
	first := lines[0]
	switch {
	case fenceRe.MatchString(first):
		// splitBlocks ends a block opened by a fence at the closing fence
		return []Node{parseCodeBlock(lines)}
	case headingRe.MatchString(first):
		m := headingRe.FindStringSubmatch(first)
		nodes := []Node{NewHeading(len(m[1]), parseInline(m[2], true)...)}
		return append(nodes, parseBlock(lines[1:])...)
	case anyMatch(lines, taskRe):
		return parseList(lines, TaskList)
	case anyMatch(lines, bulletRe):
		return parseList(lines, BulletList)
	case anyMatch(lines, orderedRe):
		return parseList(lines, OrderedList)
	case anyMatch(lines, quoteRe):
		return parseBlockquote(lines)
	case hrRe.MatchString(first):
		return append([]Node{{Type: HorizontalRule}}, parseBlock(lines[1:])...)
	default:
		return []Node{parseParagraph(lines)}
	}
}

func anyMatch(lines []string, re *regexp.Regexp) bool {
	for _, l := range lines {
		if re.MatchString(l) {
			return true
		}
	}
	return false
}

func parseParagraph(lines []string) Node {
	return NewParagraph(parseInline(strings.Join(lines, "\n"), false)...)
}

// leadingUntil splits off the lines before the first one matching re.
func leadingUntil(lines []string, re ...*regexp.Regexp) (leading, rest []string) {
	for i, l := range lines {
		for _, r := range re {
			if r.MatchString(l) {
				return lines[:i], lines[i:]
			}
		}
	}
	return lines, nil
}

type pendingItem struct {
	text    []string
	nested  []string
	checked bool
}

func parseList(lines []string, typ NodeType) []Node {
	var itemRes []*regexp.Regexp
	switch typ {
	case TaskList:
		// plain bullets mixed into a task list become unchecked tasks
		itemRes = []*regexp.Regexp{taskRe, bulletRe}
	case BulletList:
		itemRes = []*regexp.Regexp{bulletRe}
	default:
		itemRes = []*regexp.Regexp{orderedRe}
	}

	var nodes []Node
	leading, rest := leadingUntil(lines, itemRes...)
	if len(leading) > 0 {
		nodes = append(nodes, parseParagraph(leading))
	}

	var items []*pendingItem
	for _, line := range rest {
		if item, ok := matchItem(line, itemRes); ok {
			items = append(items, item)
			continue
		}
		cur := items[len(items)-1]
		if strings.HasPrefix(line, "  ") {
			dedented := line[2:]
			if len(cur.nested) > 0 || isListLine(dedented) {
				cur.nested = append(cur.nested, dedented)
				continue
			}
		}
		cur.text = append(cur.text, strings.TrimLeft(line, " \t"))
	}

	list := Node{Type: typ}
	for _, item := range items {
		n := Node{Type: ListItem}
		if typ == TaskList {
			n = Node{Type: TaskItem, Attrs: &Attrs{Checked: item.checked}}
		}
		n.Content = []Node{NewParagraph(parseInline(strings.Join(item.text, "\n"), true)...)}
		n.Content = append(n.Content, parseBlock(item.nested)...)
		list.Content = append(list.Content, n)
	}
	return append(nodes, list)
}

func matchItem(line string, res []*regexp.Regexp) (*pendingItem, bool) {
	for _, re := range res {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if re == taskRe {
			return &pendingItem{text: []string{m[2]}, checked: m[1] == "x"}, true
		}
		return &pendingItem{text: []string{m[1]}}, true
	}
	return nil, false
}

// startsBlock reports whether line, at the start of a block, would open something other than
// a paragraph.
func startsBlock(line string) bool {
	return headingRe.MatchString(line) || bulletRe.MatchString(line) || orderedRe.MatchString(line) ||
		fenceRe.MatchString(line) || quoteRe.MatchString(line) || hrRe.MatchString(line)
}

func isListLine(s string) bool {
	return bulletRe.MatchString(s) || orderedRe.MatchString(s) || taskRe.MatchString(s)
}

func parseCodeBlock(lines []string) Node {
	body := lines[1:]
	if n := len(body); n > 0 && fenceRe.MatchString(body[n-1]) {
		body = body[:n-1]
	}
	n := Node{Type: CodeBlock}
	if code := strings.Join(body, "\n"); code != "" {
		n.Content = []Node{NewText(code)}
	}
	return n
}

func parseBlockquote(lines []string) []Node {
	var nodes []Node
	leading, rest := leadingUntil(lines, quoteRe)
	if len(leading) > 0 {
		nodes = append(nodes, parseParagraph(leading))
	}
	inner := make([]string, len(rest))
	for i, line := range rest {
		switch {
		case strings.HasPrefix(line, "> "):
			inner[i] = line[2:]
		case strings.HasPrefix(line, ">"):
			inner[i] = line[1:]
		default:
			inner[i] = line
		}
	}
	quote := Node{Type: Blockquote}
	for _, block := range splitBlocks(strings.Join(inner, "\n")) {
		quote.Content = append(quote.Content, parseBlock(block)...)
	}
	return append(nodes, quote)
}
