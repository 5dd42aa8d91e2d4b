package textfmt

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Layout constants of the plain-text rendition.
const (
	LineWidth        = 80
	Bullet           = "•"
	minColumnWidth   = 10
	maxColumnWidth   = 30
	extraColumnWidth = 15
)

// Frame is the optional text around the body of a document.
type Frame struct {
	Title     string
	Generator string
	Date      string
	Footer    string
}

// Format renders the tree rooted at root.
func Format(root Node) string {
	f := newFormatter()
	root.Accept(f)
	return f.b.String()
}

// FormatDocument renders root inside a title block and footer.
func FormatDocument(root Node, fr Frame) string {
	f := newFormatter()
	if fr.Title != "" {
		title := f.upper.String(fr.Title)
		f.line(title)
		f.line(strings.Repeat("=", underline(title)))
		if fr.Generator != "" {
			f.line("Generated by: " + fr.Generator)
		}
		if fr.Date != "" {
			f.line("Date: " + fr.Date)
		}
		f.blank()
	}
	root.Accept(f)
	if fr.Footer != "" {
		f.line(strings.Repeat("-", LineWidth))
		f.line(fr.Footer)
	}
	return f.b.String()
}

type formatter struct {
	b     strings.Builder
	upper cases.Caser
}

func newFormatter() *formatter {
	return &formatter{upper: cases.Upper(language.Und)}
}

func (f *formatter) line(s string) {
	f.b.WriteString(s)
	f.b.WriteByte('\n')
}

func (f *formatter) blank() { f.b.WriteByte('\n') }

func underline(s string) int {
	return min(utf8.RuneCountInString(s), LineWidth)
}

func (f *formatter) VisitHeading(h *Heading) {
	switch h.Level {
	case 1, 2:
		text := f.upper.String(h.Text)
		rule := "="
		if h.Level == 2 {
			rule = "-"
		}
		f.line(text)
		f.line(strings.Repeat(rule, underline(text)))
	default:
		level := min(max(h.Level, 3), 6)
		f.line(strings.Repeat("#", level) + " " + h.Text)
	}
	f.blank()
}

func (f *formatter) VisitParagraph(p *Paragraph) {
	for _, l := range Wrap(p.Text, LineWidth) {
		f.line(l)
	}
	f.blank()
}

func (f *formatter) VisitUnorderedList(l *UnorderedList) {
	for _, item := range l.Items {
		f.line(Bullet + " " + item)
	}
	f.blank()
}

func (f *formatter) VisitOrderedList(l *OrderedList) {
	for i, item := range l.Items {
		f.line(strconv.Itoa(i+1) + ". " + item)
	}
	f.blank()
}

func (f *formatter) VisitTable(t *Table) {
	for _, l := range TableLines(t) {
		f.line(l)
	}
	f.blank()
}

func (f *formatter) VisitBlockquote(q *Blockquote) {
	for _, l := range strings.Split(q.Text, "\n") {
		f.line("> " + l)
	}
	f.blank()
}

func (f *formatter) VisitCodeBlock(c *CodeBlock) {
	f.line("```")
	if c.Text != "" {
		f.line(c.Text)
	}
	f.line("```")
	f.blank()
}

func (f *formatter) VisitHorizontalRule(*HorizontalRule) {
	f.line(strings.Repeat("-", LineWidth))
	f.blank()
}

func (f *formatter) VisitLineBreak(*LineBreak) { f.blank() }

func (f *formatter) VisitTextRun(t *TextRun) {
	if t.Text != "" {
		f.line(t.Text)
	}
}

func (f *formatter) VisitContainer(c *Container) {
	for _, child := range c.Children {
		child.Accept(f)
	}
}

// Wrap breaks text into lines of at most width runes, filling each line
// greedily. A word longer than width gets a line of its own.
func Wrap(text string, width int) []string {
	var out []string
	var cur strings.Builder
	curLen := 0
	for _, w := range strings.Fields(text) {
		n := utf8.RuneCountInString(w)
		if curLen > 0 && curLen+1+n > width {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += n
	}
	if curLen > 0 {
		out = append(out, cur.String())
	}
	return out
}

// ColumnWidth is the width given to a column from its header text.
func ColumnWidth(header string) int {
	return min(max(utf8.RuneCountInString(header)+2, minColumnWidth), maxColumnWidth)
}

// TableLines lays out a table: the header row, a dash separator, then
// every non-empty body row. Without a header row only body rows are
// emitted, each column extraColumnWidth wide.
func TableLines(t *Table) []string {
	var out []string
	var widths []int
	if header, ok := t.HeaderRow(); ok {
		widths = make([]int, len(header.Cells))
		for i, c := range header.Cells {
			widths[i] = ColumnWidth(c)
		}
		out = append(out, tableRow(header.Cells, widths))
		var sep strings.Builder
		sep.WriteString("|")
		for _, w := range widths {
			sep.WriteString(strings.Repeat("-", w+2))
			sep.WriteString("|")
		}
		out = append(out, sep.String())
	}
	for _, r := range t.Rows {
		if r.Header || emptyRow(r) {
			continue
		}
		out = append(out, tableRow(r.Cells, widths))
	}
	return out
}

func tableRow(cells []string, widths []int) string {
	var b strings.Builder
	b.WriteString("|")
	for i, c := range cells {
		w := extraColumnWidth
		if i < len(widths) {
			w = widths[i]
		}
		b.WriteString(" ")
		b.WriteString(pad(c, w))
		b.WriteString(" |")
	}
	return b.String()
}

func emptyRow(r TableRow) bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
