package htmlexport

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// DefaultSelector addresses the whole document body.
const DefaultSelector = "body"

// Source is the document an export reads from, and the element inside it
// that is exported. Exactly one of HTML, URL, File and Markdown must be set.
type Source struct {
	HTML     string
	URL      string
	File     string
	Markdown string

	// Selector is a CSS selector for the exported element. Defaults to
	// [DefaultSelector].
	Selector string
}

// HTML returns a Source for an HTML document given as a string. The
// document is loaded into a blank page, so relative and file:// URLs in
// it do not resolve.
func HTML(doc string) Source { return Source{HTML: doc} }

// URL returns a Source for the web page at rawURL. Only http and https
// URLs are accepted.
func URL(rawURL string) Source { return Source{URL: rawURL} }

// File returns a Source for a local HTML file.
func File(path string) Source { return Source{File: path} }

// Markdown returns a Source for a Markdown document, rendered to HTML
// with GitHub tables, strikethrough and autolinks.
func Markdown(md string) Source { return Source{Markdown: md} }

// Select returns a copy of s that exports the element matched by selector.
func (s Source) Select(selector string) Source {
	s.Selector = selector
	return s
}

func (s Source) selector() string {
	if s.Selector == "" {
		return DefaultSelector
	}
	return s.Selector
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderMarkdown converts Markdown to a standalone HTML document.
func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"></head><body>\n")
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("htmlexport: rendering markdown: %w", err)
	}
	buf.WriteString("</body></html>\n")
	return buf.String(), nil
}

// document returns the inline HTML of s, or ok=false when s points at a
// URL or file.
func (s Source) document() (doc string, ok bool, err error) {
	switch {
	case s.Markdown != "":
		doc, err = RenderMarkdown(s.Markdown)
		return doc, true, err
	case s.HTML != "":
		return s.HTML, true, nil
	}
	return "", false, nil
}

func (s Source) validate() error {
	n := 0
	for _, v := range []string{s.HTML, s.URL, s.File, s.Markdown} {
		if v != "" {
			n++
		}
	}
	switch n {
	case 0:
		return fmt.Errorf("%w: no content", ErrInvalidSource)
	case 1:
		return nil
	default:
		return fmt.Errorf("%w: %d kinds of content set", ErrInvalidSource, n)
	}
}

// blankPage is navigated to before inline content is loaded into it. The
// document keeps an opaque origin, so it cannot reach local files.
const blankPage = "about:blank"

// target returns the URL to navigate to. For inline content it returns
// [blankPage] and the document to load into it.
func (s Source) target() (target, doc string, err error) {
	if err := s.validate(); err != nil {
		return "", "", err
	}

	if s.URL != "" {
		if err := checkWebURL(s.URL); err != nil {
			return "", "", err
		}
		return s.URL, "", nil
	}

	if s.File != "" {
		abs, err := filepath.Abs(s.File)
		if err != nil {
			return "", "", fmt.Errorf("htmlexport: resolving path: %w", err)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrInvalidSource, err)
		}
		return "file://" + abs, "", nil
	}

	doc, _, err = s.document()
	if err != nil {
		return "", "", err
	}
	return blankPage, doc, nil
}

// checkWebURL accepts absolute http and https URLs with a host.
func checkWebURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: invalid URL %q: %v", ErrInvalidSource, rawURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("%w: URL %q must use http or https", ErrInvalidSource, rawURL)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: URL %q has no host", ErrInvalidSource, rawURL)
	}
	return nil
}
