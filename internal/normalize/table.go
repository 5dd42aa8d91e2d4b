// Package normalize produces a theme-independent copy of a rendered
// element so it can be captured deterministically.
//
// The copy is styled from a [Table] of per-tag overrides. Font sizes for
// headings are absolute; every other element gets a size derived from its
// current one, with a floor that keeps text legible at capture resolution.
package normalize

import (
	"strconv"
	"strings"
)

// Declaration is one CSS property assignment.
type Declaration struct {
	Property string
	Value    string
}

// Style is an ordered list of declarations applied inline to one element.
type Style []Declaration

// CSS renders the style as inline CSS. Every declaration is marked
// !important so page stylesheets cannot win over it.
func (s Style) CSS() string {
	var b strings.Builder
	for _, d := range s {
		b.WriteString(d.Property)
		b.WriteString(":")
		b.WriteString(d.Value)
		b.WriteString(" !important;")
	}
	return b.String()
}

// Get returns the value of property, if set.
func (s Style) Get(property string) (string, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Property == property {
			return s[i].Value, true
		}
	}
	return "", false
}

// Rule is the override for one tag.
type Rule struct {
	// FontSize is an absolute size in CSS pixels. Zero derives the size
	// from the element's current font size.
	FontSize float64

	Declarations []Declaration
}

// Table maps tag names to overrides. A Table is immutable once built;
// use [NewTable] or [DefaultTable] to obtain one.
type Table struct {
	rules     map[string]Rule
	base      []Declaration
	textScale float64
	textMin   float64
}

// NewTable builds a Table. base is applied to every element before the
// tag rule; elements without an absolute size get
// max(current*textScale, textMin) pixels.
func NewTable(rules map[string]Rule, base []Declaration, textScale, textMin float64) Table {
	t := Table{
		rules:     make(map[string]Rule, len(rules)),
		base:      append([]Declaration(nil), base...),
		textScale: textScale,
		textMin:   textMin,
	}
	for tag, r := range rules {
		r.Declarations = append([]Declaration(nil), r.Declarations...)
		t.rules[strings.ToLower(tag)] = r
	}
	if t.textScale <= 0 {
		t.textScale = 1
	}
	return t
}

// DefaultTable returns the standard overrides: 32/28/24/20 px headings,
// 1.5x body text with a 16 px floor, black on white, bordered and padded
// table cells, spaced lists.
func DefaultTable() Table {
	cell := []Declaration{
		{"border", "1px solid #000000"},
		{"padding", "8px"},
	}
	list := []Declaration{
		{"margin", "8px 0"},
		{"padding-left", "24px"},
	}
	heading := []Declaration{
		{"font-weight", "bold"},
		{"margin", "16px 0 8px 0"},
	}
	return NewTable(map[string]Rule{
		"h1":    {FontSize: 32, Declarations: heading},
		"h2":    {FontSize: 28, Declarations: heading},
		"h3":    {FontSize: 24, Declarations: heading},
		"h4":    {FontSize: 20, Declarations: heading},
		"h5":    {FontSize: 20, Declarations: heading},
		"h6":    {FontSize: 20, Declarations: heading},
		"table": {Declarations: []Declaration{{"border-collapse", "collapse"}, {"margin", "8px 0"}}},
		"td":    {Declarations: cell},
		"th":    {Declarations: append(append([]Declaration(nil), cell...), Declaration{"font-weight", "bold"})},
		"ul":    {Declarations: list},
		"ol":    {Declarations: list},
		"li":    {Declarations: []Declaration{{"margin", "4px 0"}}},
		"pre":   {Declarations: []Declaration{{"white-space", "pre-wrap"}, {"border", "1px solid #000000"}, {"padding", "8px"}}},
		"blockquote": {Declarations: []Declaration{
			{"border-left", "4px solid #000000"},
			{"padding-left", "12px"},
			{"margin", "8px 0"},
		}},
	}, []Declaration{
		{"background-color", "#ffffff"},
		{"color", "#000000"},
		{"text-shadow", "none"},
		{"opacity", "1"},
	}, 1.5, 16)
}

// FontSize returns the size in pixels an element of tag is given when its
// current computed size is current.
func (t Table) FontSize(tag string, current float64) float64 {
	if r, ok := t.rules[strings.ToLower(tag)]; ok && r.FontSize > 0 {
		return r.FontSize
	}
	size := current * t.textScale
	if size < t.textMin {
		size = t.textMin
	}
	return size
}

// Resolve returns the full inline style for an element of tag whose
// current computed font size is current.
func (t Table) Resolve(tag string, current float64) Style {
	tag = strings.ToLower(tag)
	r := t.rules[tag]
	out := make(Style, 0, len(t.base)+len(r.Declarations)+1)
	out = append(out, t.base...)
	out = append(out, Declaration{"font-size", px(t.FontSize(tag, current))})
	out = append(out, r.Declarations...)
	return out
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
