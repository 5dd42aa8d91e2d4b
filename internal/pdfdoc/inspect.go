package pdfdoc

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Info summarizes a PDF document.
type Info struct {
	Pages   int
	Title   string
	Author  string
	Subject string
	Creator string
}

func read(r io.ReadSeeker) (*model.Context, error) {
	ctx, err := api.ReadValidateAndOptimize(r, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfdoc: reading pdf: %w", err)
	}
	return ctx, nil
}

// Inspect reads and validates a PDF.
func Inspect(r io.ReadSeeker) (Info, error) {
	ctx, err := read(r)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Pages:   ctx.PageCount,
		Title:   ctx.Title,
		Author:  ctx.Author,
		Subject: ctx.Subject,
		Creator: ctx.Creator,
	}, nil
}

// PageText returns, for every page, the strings the page draws, one per
// line in drawing order. Only literal strings shown with Tj are read,
// which covers everything this package writes.
func PageText(r io.ReadSeeker) ([]string, error) {
	ctx, err := read(r)
	if err != nil {
		return nil, err
	}
	pages := make([]string, ctx.PageCount)
	for i := range pages {
		rd, err := pdfcpu.ExtractPageContent(ctx, i+1)
		if err != nil {
			return nil, fmt.Errorf("pdfdoc: page %d content: %w", i+1, err)
		}
		content, err := io.ReadAll(rd)
		if err != nil {
			return nil, fmt.Errorf("pdfdoc: page %d content: %w", i+1, err)
		}
		pages[i] = strings.Join(shownStrings(content), "\n")
	}
	return pages, nil
}

// shownStrings returns the literal strings followed by a Tj operator in a
// content stream.
func shownStrings(content []byte) []string {
	var out []string
	for i := 0; i < len(content); i++ {
		if content[i] != '(' {
			continue
		}
		s, end := literal(content, i)
		if bytes.HasPrefix(bytes.TrimLeft(content[end:], " \t\r\n"), []byte("Tj")) {
			out = append(out, s)
		}
		i = end - 1
	}
	return out
}

// literal decodes the string literal starting at b[start], which must be
// '('. It returns the text and the offset just past the closing ')'.
func literal(b []byte, start int) (string, int) {
	var sb strings.Builder
	depth := 0
	for j := start; j < len(b); j++ {
		c := b[j]
		switch {
		case c == '\\' && j+1 < len(b):
			j++
			switch b[j] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(b[j])
			}
		case c == '(':
			if depth > 0 {
				sb.WriteByte(c)
			}
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return sb.String(), j + 1
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), len(b)
}
