package ui

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var htmlRenderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// MarkdownHTML converts markdown (with pipe tables) to an HTML fragment.
func MarkdownHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
