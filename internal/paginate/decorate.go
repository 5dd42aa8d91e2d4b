package paginate

import "fmt"

// DecorationSpec lists the repeating elements requested for every page.
// Empty strings disable the corresponding element.
type DecorationSpec struct {
	HeaderText string
	Date       string
	FooterText string
	Watermark  string
}

// HasHeader reports whether a header band is needed.
func (s DecorationSpec) HasHeader() bool {
	return s.HeaderText != "" || s.Date != ""
}

// Decoration is what gets drawn around the content of one page.
type Decoration struct {
	Page  int
	Total int

	HeaderLeft  string
	HeaderRight string
	FooterLeft  string
	FooterRight string
	Watermark   string
}

// PageLabel formats the page number shown in the footer.
func PageLabel(page, total int) string {
	return fmt.Sprintf("Page %d of %d", page, total)
}

// Decorate derives the decorations of every page in plan. It needs the
// final page count, so it must only run once pagination has completed.
func Decorate(plan Plan, spec DecorationSpec) []Decoration {
	total := plan.Total()
	out := make([]Decoration, 0, total)
	for _, p := range plan.Pages {
		out = append(out, Decoration{
			Page:        p.Index,
			Total:       total,
			HeaderLeft:  spec.HeaderText,
			HeaderRight: spec.Date,
			FooterLeft:  spec.FooterText,
			FooterRight: PageLabel(p.Index, total),
			Watermark:   spec.Watermark,
		})
	}
	return out
}
