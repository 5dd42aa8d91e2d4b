package textfmt

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFormat_Summary(t *testing.T) {
	doc := &Container{Children: []Node{
		&Heading{Level: 1, Text: "Summary"},
		&Paragraph{Text: "A short note."},
		&UnorderedList{Items: []string{"alpha", "beta"}},
	}}
	want := "SUMMARY\n=======\n\nA short note.\n\n• alpha\n• beta\n\n"
	if got := Format(doc); got != want {
		t.Errorf("Format =\n%q\nwant\n%q", got, want)
	}
}

func TestFormat_Headings(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{&Heading{Level: 1, Text: "Über"}, "ÜBER\n====\n\n"},
		{&Heading{Level: 2, Text: "Details"}, "DETAILS\n-------\n\n"},
		{&Heading{Level: 3, Text: "Keep case"}, "### Keep case\n\n"},
		{&Heading{Level: 6, Text: "Deep"}, "###### Deep\n\n"},
		{&Heading{Level: 1, Text: strings.Repeat("x", 100)}, strings.Repeat("X", 100) + "\n" + strings.Repeat("=", 80) + "\n\n"},
	}
	for _, tt := range tests {
		if got := Format(tt.node); got != tt.want {
			t.Errorf("Format(%+v) = %q, want %q", tt.node, got, tt.want)
		}
	}
}

func TestFormat_Blocks(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"ordered", &OrderedList{Items: []string{"one", "two"}}, "1. one\n2. two\n\n"},
		{"quote", &Blockquote{Text: "first\nsecond"}, "> first\n> second\n\n"},
		{"code", &CodeBlock{Text: "  if x {\n\treturn\n  }"}, "```\n  if x {\n\treturn\n  }\n```\n\n"},
		{"rule", &HorizontalRule{}, strings.Repeat("-", 80) + "\n\n"},
		{"break", &LineBreak{}, "\n"},
		{"run", &TextRun{Text: "loose text"}, "loose text\n"},
		{"nested", &Container{Children: []Node{&Container{Children: []Node{&Paragraph{Text: "deep"}}}}}, "deep\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.node); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	words := strings.Repeat("word ", 17) // 17 words, 84 chars + trailing space
	text := strings.TrimSpace(words) + " a"
	if n := len(text); n < 85 {
		t.Fatalf("test text is %d chars, want at least 85", n)
	}
	lines := Wrap(text, 80)
	if len(lines) < 2 {
		t.Fatalf("got %d lines, want at least 2", len(lines))
	}
	for _, l := range lines {
		if utf8.RuneCountInString(l) > 80 {
			t.Errorf("line exceeds 80 chars: %q", l)
		}
	}
	if got := strings.Join(lines, " "); got != text {
		t.Errorf("rejoined text = %q, want %q", got, text)
	}
	// "word" x16 joined is 79 chars; the 17th word must start a new line.
	if lines[0] != strings.TrimSpace(strings.Repeat("word ", 16)) {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestWrap_LongWord(t *testing.T) {
	long := strings.Repeat("x", 90)
	lines := Wrap("a "+long+" b", 80)
	want := []string{"a", long, "b"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("Wrap = %q, want %q", lines, want)
	}
	if len(Wrap("   ", 80)) != 0 {
		t.Error("blank text produced lines")
	}
}

func TestTableLines_NameAge(t *testing.T) {
	tbl := &Table{Rows: []TableRow{
		{Cells: []string{"Name", "Age"}, Header: true},
		{Cells: []string{"Ana", "30"}},
	}}
	got := TableLines(tbl)
	want := []string{
		"| Name       | Age        |",
		"|------------|------------|",
		"| Ana        | 30         |",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("TableLines =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	if ColumnWidth("Name") != 10 || ColumnWidth("Age") != 10 {
		t.Error("short headers must be widened to 10")
	}
}

func TestTableLines_Widths(t *testing.T) {
	if got := ColumnWidth("A fairly long column header"); got != 29 {
		t.Errorf("ColumnWidth = %d, want 29", got)
	}
	if got := ColumnWidth(strings.Repeat("h", 40)); got != 30 {
		t.Errorf("ColumnWidth = %d, want 30 (clamped)", got)
	}

	tbl := &Table{Rows: []TableRow{
		{Cells: []string{"Key"}, Header: true},
		{Cells: []string{"", "  "}},
		{Cells: []string{"k", "extra"}},
		{Cells: []string{"Key"}, Header: true},
	}}
	got := TableLines(tbl)
	if len(got) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(got), got)
	}
	if want := "| k          | extra           |"; got[2] != want {
		t.Errorf("body row = %q, want %q", got[2], want)
	}
}

func TestTableLines_NoHeader(t *testing.T) {
	tbl := &Table{Rows: []TableRow{{Cells: []string{"a", "b"}}}}
	got := TableLines(tbl)
	want := "| a               | b               |"
	if len(got) != 1 || got[0] != want {
		t.Errorf("TableLines = %q, want [%q]", got, want)
	}
}

func TestFormatDocument_Frame(t *testing.T) {
	doc := &Container{Children: []Node{&Paragraph{Text: "Body."}}}
	got := FormatDocument(doc, Frame{
		Title:     "Monthly report",
		Generator: "htmlexport",
		Date:      "2026-10-19",
		Footer:    "Internal use only",
	})
	want := "MONTHLY REPORT\n==============\nGenerated by: htmlexport\nDate: 2026-10-19\n\n" +
		"Body.\n\n" +
		strings.Repeat("-", 80) + "\nInternal use only\n"
	if got != want {
		t.Errorf("FormatDocument =\n%q\nwant\n%q", got, want)
	}
	if got := FormatDocument(doc, Frame{}); got != "Body.\n\n" {
		t.Errorf("FormatDocument without frame = %q", got)
	}
}
