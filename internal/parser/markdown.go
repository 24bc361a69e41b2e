package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// MarkdownToHTML renders a Markdown source into a full HTML page whose
// content sits inside <main>, ready for segmentation.
func MarkdownToHTML(r io.Reader, title string) (*html.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	var body bytes.Buffer
	if err := markdown.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>`)
	page.WriteString(html.EscapeString(title))
	page.WriteString(`</title></head><body><main>`)
	page.Write(body.Bytes())
	page.WriteString(`</main></body></html>`)

	return ParseHTML(&page)
}
