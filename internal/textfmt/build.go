package textfmt

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// policy strips scripts, styles and event handlers before the tree walk.
// Their text would otherwise leak into the rendition.
var policy = bluemonday.UGCPolicy()

// lineMark separates lines inside an inline run. The HTML parser never
// leaves NUL bytes in text nodes.
const lineMark = "\x00"

var inlineAtoms = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Bdi: true, atom.Bdo: true,
	atom.Cite: true, atom.Code: true, atom.Data: true, atom.Del: true, atom.Dfn: true,
	atom.Em: true, atom.I: true, atom.Ins: true, atom.Kbd: true, atom.Label: true,
	atom.Mark: true, atom.Q: true, atom.S: true, atom.Samp: true, atom.Small: true,
	atom.Span: true, atom.Strong: true, atom.Sub: true, atom.Sup: true, atom.Time: true,
	atom.U: true, atom.Var: true, atom.Img: true, atom.Font: true, atom.Strike: true,
}

var skippedAtoms = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
	atom.Head: true, atom.Title: true, atom.Meta: true, atom.Link: true,
}

// ParseHTML reads an HTML fragment and builds its document tree. The
// root is always a *Container.
func ParseHTML(r io.Reader) (*Container, error) {
	clean := policy.SanitizeReader(r)
	nodes, err := html.ParseFragment(clean, &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("textfmt: parsing html: %w", err)
	}
	return &Container{Children: children(nodes)}, nil
}

// ParseHTMLString is ParseHTML over a string.
func ParseHTMLString(s string) (*Container, error) {
	return ParseHTML(bytes.NewReader([]byte(s)))
}

func kids(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// children converts sibling nodes, merging adjacent inline content into a
// single TextRun.
func children(nodes []*html.Node) []Node {
	var out []Node
	var run strings.Builder
	flush := func() {
		if t := collapseLines(run.String()); t != "" {
			out = append(out, &TextRun{Text: t})
		}
		run.Reset()
	}
	for _, n := range nodes {
		switch {
		case n.Type == html.TextNode:
			run.WriteString(n.Data)
		case n.Type != html.ElementNode, skippedAtoms[n.DataAtom]:
		case inlineAtoms[n.DataAtom]:
			run.WriteString(textOf(n))
		case n.DataAtom == atom.Br && strings.TrimSpace(run.String()) != "":
			run.WriteString(lineMark)
		default:
			flush()
			if b := block(n); b != nil {
				out = append(out, b)
			}
		}
	}
	flush()
	return out
}

// block maps a block-level element to its node. It returns nil for
// elements that carry no content.
func block(n *html.Node) Node {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		text := collapse(textOf(n))
		if text == "" {
			return nil
		}
		return &Heading{Level: int(n.Data[1] - '0'), Text: text}
	case atom.P:
		text := collapse(textOf(n))
		if text == "" {
			return nil
		}
		return &Paragraph{Text: text}
	case atom.Ul:
		if items := listItems(n); len(items) > 0 {
			return &UnorderedList{Items: items}
		}
		return nil
	case atom.Ol:
		if items := listItems(n); len(items) > 0 {
			return &OrderedList{Items: items}
		}
		return nil
	case atom.Table:
		t := &Table{}
		collectRows(n, false, t)
		if len(t.Rows) == 0 {
			return nil
		}
		return t
	case atom.Blockquote:
		text := strings.Join(lines(n), "\n")
		if text == "" {
			return nil
		}
		return &Blockquote{Text: text}
	case atom.Pre:
		return &CodeBlock{Text: strings.TrimRight(strings.TrimPrefix(rawText(n), "\n"), "\n")}
	case atom.Hr:
		return &HorizontalRule{}
	case atom.Br:
		return &LineBreak{}
	}
	return &Container{Children: children(kids(n))}
}

func listItems(list *html.Node) []string {
	var items []string
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		if t := collapse(textOf(c)); t != "" {
			items = append(items, t)
		}
	}
	return items
}

// collectRows gathers the rows of a table, not descending into nested tables.
func collectRows(n *html.Node, inHead bool, t *Table) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Thead:
			collectRows(c, true, t)
		case atom.Tbody, atom.Tfoot:
			collectRows(c, false, t)
		case atom.Tr:
			t.Rows = append(t.Rows, row(c, inHead))
		}
	}
}

func row(tr *html.Node, inHead bool) TableRow {
	r := TableRow{}
	allTH := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		if c.DataAtom != atom.Th {
			allTH = false
		}
		r.Cells = append(r.Cells, collapse(textOf(c)))
	}
	r.Header = len(r.Cells) > 0 && (inHead || allTH)
	return r
}

// lines returns the collapsed lines of n, one per block child or run of
// inline content.
func lines(n *html.Node) []string {
	var out []string
	var run strings.Builder
	flush := func() {
		if t := collapse(run.String()); t != "" {
			out = append(out, t)
		}
		run.Reset()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			run.WriteString(c.Data)
		case c.Type != html.ElementNode, skippedAtoms[c.DataAtom]:
		case inlineAtoms[c.DataAtom]:
			run.WriteString(textOf(c))
		case c.DataAtom == atom.Br:
			flush()
		default:
			flush()
			out = append(out, lines(c)...)
		}
	}
	flush()
	return out
}

// textOf concatenates the text below n. Line breaks count as spaces.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
			return
		case n.Type == html.ElementNode && skippedAtoms[n.DataAtom]:
			return
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && !inlineAtoms[n.DataAtom] {
			b.WriteByte(' ')
		}
	}
	walk(n)
	return b.String()
}

// rawText concatenates the text below n without touching whitespace.
func rawText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Br {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(rawText(c))
	}
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func collapseLines(s string) string {
	parts := strings.Split(s, lineMark)
	out := parts[:0]
	for _, p := range parts {
		if t := collapse(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}
