package ui

import (
	"strings"

	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

// MarkdownRenderMargin is the left margin of rendered markdown.
const MarkdownRenderMargin = 2

const defaultCodeTheme = "monokai"

var markdownCodeTheme = defaultCodeTheme

// ConfigureMarkdownCodeTheme picks the chroma theme for fenced code blocks.
// Names are matched case-insensitively; unknown names select monokai.
func ConfigureMarkdownCodeTheme(theme string) {
	name := strings.ToLower(strings.TrimSpace(theme))
	if _, ok := chromastyles.Registry[name]; !ok {
		name = defaultCodeTheme
	}
	markdownCodeTheme = name
}

// RenderMarkdown renders a schema description for the terminal, wrapped at
// width (DefaultTermWidth when width is not positive).
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultTermWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(markdownStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}

// markdownStyle is glamour's dark style with headings in the accent color,
// muted inline code, and the configured code theme.
func markdownStyle() ansi.StyleConfig {
	style := glamourstyles.DarkStyleConfig

	margin := uint(MarkdownRenderMargin)
	style.Document.Margin = &margin
	style.Document.Color = nil

	var accent *string
	if color, ok := AccentColor(); ok {
		accent = &color
	}
	style.Heading.Color = accent
	style.H1 = heading("# ", true)
	style.H2 = heading("## ", true)
	style.H3 = heading("### ", false)

	code := "244"
	style.Code = ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "`", Suffix: "`", Color: &code}}
	style.CodeBlock.Margin = &margin
	style.CodeBlock.Theme = markdownCodeTheme
	style.CodeBlock.Chroma = nil

	bar, rule := "│", "─"
	style.Table.CenterSeparator = &bar
	style.Table.ColumnSeparator = &bar
	style.Table.RowSeparator = &rule
	style.Item.BlockPrefix = "• "
	return style
}

func heading(prefix string, underline bool) ansi.StyleBlock {
	return ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: prefix, Underline: &underline}}
}
