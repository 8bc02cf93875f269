package docgen

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// HtmlConverter Markdown到HTML的转换器，用于在线预览
type HtmlConverter struct {
	markdown goldmark.Markdown
}

// NewHtmlConverter 创建HTML转换器，启用GFM扩展以支持表格
func NewHtmlConverter() *HtmlConverter {
	return &HtmlConverter{
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Linkify,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
			),
		),
	}
}

// ConvertMarkdownToHTML 将Markdown转换为HTML片段
func (c *HtmlConverter) ConvertMarkdownToHTML(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.markdown.Convert(source, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
