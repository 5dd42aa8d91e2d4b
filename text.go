package htmlexport

import (
	"fmt"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/porticus-lab/go-html-export/internal/textfmt"
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

func formatText(html string, o ExportOptions, now time.Time) (string, error) {
	root, err := textfmt.ParseHTMLString(html)
	if err != nil {
		return "", fmt.Errorf("htmlexport: parsing html: %w", err)
	}
	return textfmt.FormatDocument(root, textfmt.Frame{
		Title:     o.Title,
		Generator: Generator,
		Date:      o.date(now),
		Footer:    o.FooterText,
	}), nil
}

func toMarkdown(html string, o ExportOptions) (string, error) {
	md, err := mdConverter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("htmlexport: converting to markdown: %w", err)
	}
	md = strings.TrimSpace(md) + "\n"
	if o.Title != "" {
		md = "# " + o.Title + "\n\n" + md
	}
	if o.FooterText != "" {
		md += "\n---\n\n" + o.FooterText + "\n"
	}
	return md, nil
}

// FormatHTML renders an HTML fragment as plain text without a browser,
// using the same rules as [Exporter.ExportText]. Scripts, styles and
// unsafe markup are dropped before the tree is walked. If opts is nil,
// [DefaultExportOptions] values are used.
func FormatHTML(html string, opts *ExportOptions) (string, error) {
	o := opts.resolved()
	return formatText(html, o, time.Now())
}
