// Package textfmt reconstructs a formatted document as structured plain
// text.
//
// A document is a tree of [Node] values drawn from a closed set of
// variants. Renderers implement [Visitor]; adding a variant adds a method
// to Visitor, so every renderer stops compiling until it handles it.
package textfmt

// Node is one element of a document tree. The set of implementations is
// closed to this package.
type Node interface {
	Accept(v Visitor)
	node()
}

// Visitor has one method per node variant.
type Visitor interface {
	VisitHeading(*Heading)
	VisitParagraph(*Paragraph)
	VisitUnorderedList(*UnorderedList)
	VisitOrderedList(*OrderedList)
	VisitTable(*Table)
	VisitBlockquote(*Blockquote)
	VisitCodeBlock(*CodeBlock)
	VisitHorizontalRule(*HorizontalRule)
	VisitLineBreak(*LineBreak)
	VisitTextRun(*TextRun)
	VisitContainer(*Container)
}

// Heading is a section title of level 1 to 6.
type Heading struct {
	Level int
	Text  string
}

// Paragraph is a run of prose.
type Paragraph struct {
	Text string
}

// UnorderedList is a bulleted list.
type UnorderedList struct {
	Items []string
}

// OrderedList is a numbered list.
type OrderedList struct {
	Items []string
}

// TableRow is one row of a Table.
type TableRow struct {
	Cells []string

	// Header marks rows made of header cells.
	Header bool
}

// Table is a grid of text cells.
type Table struct {
	Rows []TableRow
}

// HeaderRow returns the first header row, if any.
func (t *Table) HeaderRow() (TableRow, bool) {
	for _, r := range t.Rows {
		if r.Header {
			return r, true
		}
	}
	return TableRow{}, false
}

// Blockquote is quoted text; newlines separate its lines.
type Blockquote struct {
	Text string
}

// CodeBlock is preformatted text, kept verbatim.
type CodeBlock struct {
	Text string
}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

// LineBreak is a forced line break.
type LineBreak struct{}

// TextRun is inline text found outside any block element.
type TextRun struct {
	Text string
}

// Container groups children without contributing any output of its own.
type Container struct {
	Children []Node
}

func (n *Heading) Accept(v Visitor)        { v.VisitHeading(n) }
func (n *Paragraph) Accept(v Visitor)      { v.VisitParagraph(n) }
func (n *UnorderedList) Accept(v Visitor)  { v.VisitUnorderedList(n) }
func (n *OrderedList) Accept(v Visitor)    { v.VisitOrderedList(n) }
func (n *Table) Accept(v Visitor)          { v.VisitTable(n) }
func (n *Blockquote) Accept(v Visitor)     { v.VisitBlockquote(n) }
func (n *CodeBlock) Accept(v Visitor)      { v.VisitCodeBlock(n) }
func (n *HorizontalRule) Accept(v Visitor) { v.VisitHorizontalRule(n) }
func (n *LineBreak) Accept(v Visitor)      { v.VisitLineBreak(n) }
func (n *TextRun) Accept(v Visitor)        { v.VisitTextRun(n) }
func (n *Container) Accept(v Visitor)      { v.VisitContainer(n) }

func (*Heading) node()        {}
func (*Paragraph) node()      {}
func (*UnorderedList) node()  {}
func (*OrderedList) node()    {}
func (*Table) node()          {}
func (*Blockquote) node()     {}
func (*CodeBlock) node()      {}
func (*HorizontalRule) node() {}
func (*LineBreak) node()      {}
func (*TextRun) node()        {}
func (*Container) node()      {}
