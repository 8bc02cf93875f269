package docgen

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yockii/office_tools/pkg/markdown"
)

// readDocxPart 从DOCX字节数据中读取指定部件
func readDocxPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			content, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(content)
		}
	}
	t.Fatalf("部件不存在: %s", name)
	return ""
}

func TestRenderEmptyInput(t *testing.T) {
	result, err := NewDocGenerator().RenderString("")
	require.NoError(t, err)
	doc := readDocxPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, "<w:body>")
	assert.Contains(t, doc, "<w:sectPr>")
}

func TestRenderHeadingStyles(t *testing.T) {
	result, err := NewDocGenerator().RenderString("# 一级\n\n###### 六级")
	require.NoError(t, err)
	doc := readDocxPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, `<w:pStyle w:val="Heading1"/>`)
	assert.Contains(t, doc, `<w:pStyle w:val="Heading6"/>`)
	assert.Empty(t, result.UnresolvedStyles)
}

func TestRenderContentOrderPreserved(t *testing.T) {
	src := "# 报告\n\n第一段。\n\n- 要点一\n- 要点二\n\n> 附注"
	result, err := NewDocGenerator().RenderString(src)
	require.NoError(t, err)
	doc := readDocxPart(t, result.Docx, "word/document.xml")

	order := []string{"报告", "第一段。", "要点一", "要点二", "附注"}
	last := -1
	for _, text := range order {
		idx := strings.Index(doc, text)
		require.GreaterOrEqual(t, idx, 0, text)
		assert.Greater(t, idx, last, "内容顺序应与源一致: %s", text)
		last = idx
	}
}

func TestRenderBoldItalicNesting(t *testing.T) {
	result, err := NewDocGenerator().RenderString("**加粗 *且斜体***")
	require.NoError(t, err)
	doc := readDocxPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, `<w:rPr><w:b/></w:rPr><w:t xml:space="preserve">加粗 </w:t>`)
	assert.Contains(t, doc, `<w:rPr><w:b/><w:i/></w:rPr><w:t xml:space="preserve">且斜体</w:t>`)
}

func TestRenderCodeUsesMonoFont(t *testing.T) {
	result, err := NewDocGenerator().RenderString("行内 `code` 片段")
	require.NoError(t, err)
	doc := readDocxPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, `<w:rFonts w:ascii="Courier New" w:hAnsi="Courier New"/>`)
}

func TestRenderListStylesByDepth(t *testing.T) {
	src := "- 顶层\n   - 二层\n      - 三层\n\n1. 有序"
	result, err := NewDocGenerator().RenderString(src)
	require.NoError(t, err)
	doc := readDocxPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, `<w:pStyle w:val="ListBullet"/>`)
	assert.Contains(t, doc, `<w:pStyle w:val="ListBullet2"/>`)
	assert.Contains(t, doc, `<w:pStyle w:val="ListBullet3"/>`)
	assert.Contains(t, doc, `<w:pStyle w:val="ListNumber"/>`)
}

func TestRenderTableHeaderBold(t *testing.T) {
	src := "| 名称 | 数量 |\n| --- | --- |\n| 苹果 | 3 |"
	result, err := NewDocGenerator().RenderString(src)
	require.NoError(t, err)
	doc := readDocxPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, `<w:tblStyle w:val="TableGrid"/>`)

	// 表头单元格加粗，数据单元格不加粗
	assert.Contains(t, doc, `<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">名称</w:t></w:r>`)
	assert.Contains(t, doc, `<w:r><w:t xml:space="preserve">苹果</w:t></w:r>`)
}

func TestRenderHyperlink(t *testing.T) {
	result, err := NewDocGenerator().RenderString("见[官网](https://example.com/a?x=1&y=2)")
	require.NoError(t, err)
	doc := readDocxPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, `<w:hyperlink r:id="rId3">`)
	assert.Contains(t, doc, `<w:rStyle w:val="Hyperlink"/>`)

	rels := readDocxPart(t, result.Docx, "word/_rels/document.xml.rels")
	assert.Contains(t, rels, `Id="rId3"`)
	assert.Contains(t, rels, `Target="https://example.com/a?x=1&amp;y=2"`)
	assert.Contains(t, rels, `TargetMode="External"`)
}

func TestRenderXMLEscaping(t *testing.T) {
	result, err := NewDocGenerator().RenderString("a <b> & \"c\"")
	require.NoError(t, err)
	doc := readDocxPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, "a &lt;b&gt; &amp; &quot;c&quot;")
}

func TestStyleFallbackChain(t *testing.T) {
	styles := DefaultStyleTable()
	styles.Heading[4] = "Fancy Heading"
	result, err := NewDocGeneratorWithStyles(styles).RenderString("##### 五级标题")
	require.NoError(t, err)

	// 目标样式缺失时回退到上一级标题样式，并记录缺失
	doc := readDocxPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, `<w:pStyle w:val="Heading4"/>`)
	assert.Equal(t, []string{"Fancy Heading"}, result.UnresolvedStyles)
}

func TestStyleFallbackToNormal(t *testing.T) {
	styles := DefaultStyleTable()
	for i := range styles.Heading {
		styles.Heading[i] = "Custom " + string(rune('A'+i))
	}
	result, err := NewDocGeneratorWithStyles(styles).RenderString("### 标题")
	require.NoError(t, err)
	doc := readDocxPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, `<w:pStyle w:val="Normal"/>`)
	assert.Len(t, result.UnresolvedStyles, 3)
}

func TestRenderParseNoticesSurfaced(t *testing.T) {
	result, err := NewDocGenerator().RenderString("####### 太深了")
	require.NoError(t, err)
	assert.NotEmpty(t, result.ParseNotices)
	doc := readDocxPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, `<w:pStyle w:val="Heading6"/>`)
}

func TestRenderFragmentInheritsBaseFormat(t *testing.T) {
	tree := markdown.Parse("普通 **加粗**")
	base := RunFormat{Font: "Calibri", Size: 22}
	xml, unresolved := RenderFragment(tree, DefaultStyleTable(), map[string]bool{"Normal": true}, base)
	assert.Empty(t, unresolved)
	assert.Contains(t, xml, `<w:rFonts w:ascii="Calibri" w:hAnsi="Calibri"/>`)
	assert.Contains(t, xml, `<w:sz w:val="22"/>`)
	assert.Contains(t, xml, `<w:b/>`)
}

func TestRenderFragmentLinkDegrades(t *testing.T) {
	tree := markdown.Parse("[链接](https://example.com)")
	xml, _ := RenderFragment(tree, DefaultStyleTable(), map[string]bool{"Normal": true}, RunFormat{})
	// 片段不能新增关系项，链接降级为带下划线文本
	assert.NotContains(t, xml, "<w:hyperlink")
	assert.Contains(t, xml, `<w:u w:val="single"/>`)
	assert.Contains(t, xml, "链接")
}

func TestRenderInlineRunsNoParagraph(t *testing.T) {
	tree := markdown.Parse("# 标题文本")
	h := tree.Blocks[0].(*markdown.Heading)
	xml := RenderInlineRuns(h.Spans, RunFormat{Bold: true})
	assert.NotContains(t, xml, "<w:p>")
	assert.Contains(t, xml, "<w:b/>")
	assert.Contains(t, xml, "标题文本")
}

func TestConvertMarkdownToHTML(t *testing.T) {
	html, err := NewHtmlConverter().ConvertMarkdownToHTML([]byte("# 标题\n\n| a | b |\n| --- | --- |\n| 1 | 2 |"))
	require.NoError(t, err)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<table>")
}
