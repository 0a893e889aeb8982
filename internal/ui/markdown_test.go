package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Customers\n\n- CustomerId\n- CompanyName\n", 0)
	require.NoError(t, err)
	assert.Contains(t, out, "CompanyName")
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"))
}

func TestMarkdownStyle(t *testing.T) {
	style := markdownStyle()

	require.NotNil(t, style.H1.Underline)
	assert.True(t, *style.H1.Underline)
	require.NotNil(t, style.H2.Underline)
	assert.True(t, *style.H2.Underline)
	require.NotNil(t, style.Code.Color)
	assert.Equal(t, "244", *style.Code.Color)
	assert.Nil(t, style.CodeBlock.Chroma)
	require.NotNil(t, style.Document.Margin)
	assert.Equal(t, uint(MarkdownRenderMargin), *style.Document.Margin)
}

func TestConfigureMarkdownCodeTheme(t *testing.T) {
	orig := markdownCodeTheme
	t.Cleanup(func() { markdownCodeTheme = orig })

	ConfigureMarkdownCodeTheme("DrAcUlA")
	assert.Equal(t, "dracula", markdownStyle().CodeBlock.Theme)

	ConfigureMarkdownCodeTheme("not-a-real-theme")
	assert.Equal(t, defaultCodeTheme, markdownCodeTheme)
}

func TestRenderMarkdownHighlightsCodeBlocks(t *testing.T) {
	orig := markdownCodeTheme
	t.Cleanup(func() { markdownCodeTheme = orig })

	doc := "## First row\n\n```json\n{\n  \"City\": \"Berlin\"\n}\n```\n"
	ConfigureMarkdownCodeTheme("monokai")
	monokai, err := RenderMarkdown(doc, 80)
	require.NoError(t, err)
	ConfigureMarkdownCodeTheme("github")
	github, err := RenderMarkdown(doc, 80)
	require.NoError(t, err)

	assert.Contains(t, monokai, "Berlin")
	assert.Contains(t, monokai, "\x1b[", "code block should carry theme colors")
	assert.NotEqual(t, monokai, github)
}

func TestMarkdownHTMLRendersTables(t *testing.T) {
	out, err := MarkdownHTML("# Customers\n\n| Column | Type |\n|---|---|\n| City | TEXT |\n")
	require.NoError(t, err)
	for _, want := range []string{"<h1>Customers</h1>", "<table>", "<th>Column</th>", "<td>City</td>"} {
		assert.Contains(t, out, want)
	}
}
