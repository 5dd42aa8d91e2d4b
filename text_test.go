package htmlexport

import (
	"strings"
	"testing"
)

func TestFormatHTML(t *testing.T) {
	off := false
	got, err := FormatHTML(`<h1>Summary</h1><p>A short note.</p><ul><li>alpha</li><li>beta</li></ul>`,
		&ExportOptions{IncludeDate: &off})
	if err != nil {
		t.Fatalf("FormatHTML: %v", err)
	}
	want := "SUMMARY\n=======\n\nA short note.\n\n• alpha\n• beta\n\n"
	if got != want {
		t.Errorf("FormatHTML =\n%q\nwant\n%q", got, want)
	}
}

func TestFormatText_Frame(t *testing.T) {
	o := (&ExportOptions{Title: "Report", FooterText: "Confidential"}).resolved()
	got, err := formatText(`<table><thead><tr><th>Name</th><th>Age</th></tr></thead><tbody><tr><td>Ana</td><td>30</td></tr></tbody></table>`, o, testNow)
	if err != nil {
		t.Fatal(err)
	}
	want := "REPORT\n======\nGenerated by: htmlexport\nDate: 2026-10-19\n\n" +
		"| Name       | Age        |\n" +
		"|------------|------------|\n" +
		"| Ana        | 30         |\n\n" +
		strings.Repeat("-", 80) + "\nConfidential\n"
	if got != want {
		t.Errorf("formatText =\n%q\nwant\n%q", got, want)
	}
}

func TestToMarkdown(t *testing.T) {
	o := (&ExportOptions{Title: "Notes", FooterText: "end"}).resolved()
	got, err := toMarkdown(`<div><h2>Setup</h2><p>Run <strong>make</strong>.</p><ul><li>one</li></ul></div>`, o)
	if err != nil {
		t.Fatalf("toMarkdown: %v", err)
	}
	for _, want := range []string{"# Notes\n\n", "## Setup", "**make**", "- one", "\n---\n\nend\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q:\n%s", want, got)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<h1>Title</h1>", "<table>", "<td>1</td>", "<body>"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q:\n%s", want, html)
		}
	}
}
