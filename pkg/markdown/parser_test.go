package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyInput(t *testing.T) {
	assert.Empty(t, Parse("").Blocks)
	assert.Empty(t, Parse("   \n\n\t\n").Blocks)
}

func TestParseHeading(t *testing.T) {
	doc := Parse("## 季度报告")
	require.Len(t, doc.Blocks, 1)
	h, ok := doc.Blocks[0].(*Heading)
	require.True(t, ok)
	assert.Equal(t, 2, h.Level)
	assert.Equal(t, "季度报告", PlainText(h.Spans))
}

func TestParseHeadingLevelClamp(t *testing.T) {
	doc := Parse("####### deep")
	require.Len(t, doc.Blocks, 1)
	h := doc.Blocks[0].(*Heading)
	assert.Equal(t, 6, h.Level)
	assert.NotEmpty(t, doc.Notices)
}

func TestHeadingWithoutSpaceIsParagraph(t *testing.T) {
	doc := Parse("#nospace")
	require.Len(t, doc.Blocks, 1)
	_, ok := doc.Blocks[0].(*Paragraph)
	assert.True(t, ok)
}

func TestParagraphMergesLines(t *testing.T) {
	doc := Parse("first line\nsecond line\n\nnext paragraph")
	require.Len(t, doc.Blocks, 2)
	p1 := doc.Blocks[0].(*Paragraph)
	assert.Equal(t, "first line second line", PlainText(p1.Spans))
	p2 := doc.Blocks[1].(*Paragraph)
	assert.Equal(t, "next paragraph", PlainText(p2.Spans))
}

func TestParseBlockQuote(t *testing.T) {
	doc := Parse("> 引用一\n> 引用二")
	require.Len(t, doc.Blocks, 1)
	q := doc.Blocks[0].(*BlockQuote)
	assert.Equal(t, "引用一 引用二", PlainText(q.Spans))
}

func TestParseListNesting(t *testing.T) {
	src := "- top\n   - child\n      - grandchild\n- second"
	doc := Parse(src)
	require.Len(t, doc.Blocks, 2)

	first := doc.Blocks[0].(*ListItem)
	assert.Equal(t, "top", PlainText(first.Spans))
	assert.Equal(t, 0, first.Depth)
	require.Len(t, first.Children, 1)

	child := first.Children[0]
	assert.Equal(t, 1, child.Depth)
	assert.Equal(t, "child", PlainText(child.Spans))
	require.Len(t, child.Children, 1)
	assert.Equal(t, 2, child.Children[0].Depth)

	second := doc.Blocks[1].(*ListItem)
	assert.Equal(t, "second", PlainText(second.Spans))
}

func TestParseOrderedList(t *testing.T) {
	doc := Parse("1. one\n2. two")
	require.Len(t, doc.Blocks, 2)
	for _, b := range doc.Blocks {
		item := b.(*ListItem)
		assert.True(t, item.Ordered)
	}
}

func TestEmptyListItemRetained(t *testing.T) {
	doc := Parse("- first\n- \n- third")
	require.Len(t, doc.Blocks, 3)
	mid := doc.Blocks[1].(*ListItem)
	assert.Empty(t, mid.Spans)
}

func TestParseTable(t *testing.T) {
	src := "| 名称 | 数量 |\n| --- | --- |\n| 苹果 | 3 |\n| 香蕉 | 5 |"
	doc := Parse(src)
	require.Len(t, doc.Blocks, 1)
	tbl := doc.Blocks[0].(*Table)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, "名称", tbl.Rows[0][0].Raw)
	assert.Equal(t, "5", tbl.Rows[2][1].Raw)
}

func TestTableWithoutSeparatorRevertsToParagraph(t *testing.T) {
	doc := Parse("| a | b |\n| c | d |")
	require.Len(t, doc.Blocks, 1)
	_, ok := doc.Blocks[0].(*Paragraph)
	assert.True(t, ok)
	assert.NotEmpty(t, doc.Notices)
}

func TestTableShortRowPadded(t *testing.T) {
	src := "| a | b | c |\n| --- | --- | --- |\n| 1 | 2 |"
	doc := Parse(src)
	tbl := doc.Blocks[0].(*Table)
	require.Len(t, tbl.Rows, 2)
	require.Len(t, tbl.Rows[1], 3)
	assert.Equal(t, "", tbl.Rows[1][2].Raw)
	assert.Empty(t, tbl.Rows[1][2].Spans)
	assert.NotEmpty(t, doc.Notices)
}

func TestTableEscapedPipe(t *testing.T) {
	src := "| a | b |\n| --- | --- |\n| x \\| y | z |"
	doc := Parse(src)
	tbl := doc.Blocks[0].(*Table)
	require.Len(t, tbl.Rows[1], 2)
	assert.Equal(t, "x | y", tbl.Rows[1][0].Raw)
}

func TestTableCellKeepsRawFormula(t *testing.T) {
	src := "| a | b |\n| --- | --- |\n| =B[0]*C[0] | =T1.SUM(B[0]:E[0]) |"
	doc := Parse(src)
	tbl := doc.Blocks[0].(*Table)
	assert.Equal(t, "=B[0]*C[0]", tbl.Rows[1][0].Raw)
	assert.Equal(t, "=T1.SUM(B[0]:E[0])", tbl.Rows[1][1].Raw)
}

func TestInlineBoldItalicCode(t *testing.T) {
	doc := Parse("a **bold** and *ital* and `code` end")
	p := doc.Blocks[0].(*Paragraph)
	require.Len(t, p.Spans, 7)
	b := p.Spans[1].(*Bold)
	assert.Equal(t, "bold", PlainText(b.Children))
	it := p.Spans[3].(*Italic)
	assert.Equal(t, "ital", PlainText(it.Children))
	c := p.Spans[5].(*Code)
	assert.Equal(t, "code", c.Text)
}

func TestInlineNestedFormatting(t *testing.T) {
	doc := Parse("**bold *and italic* tail**")
	p := doc.Blocks[0].(*Paragraph)
	require.Len(t, p.Spans, 1)
	b := p.Spans[0].(*Bold)
	require.Len(t, b.Children, 3)
	_, ok := b.Children[1].(*Italic)
	assert.True(t, ok)
	assert.Equal(t, "bold and italic tail", PlainText(b.Children))
}

func TestInlineItalicClosingWithBold(t *testing.T) {
	// 斜体紧贴加粗闭合，三个星号收尾
	doc := Parse("**bold *italic***")
	p := doc.Blocks[0].(*Paragraph)
	require.Len(t, p.Spans, 1)
	b := p.Spans[0].(*Bold)
	require.Len(t, b.Children, 2)
	assert.Equal(t, "bold ", b.Children[0].(*Text).Text)
	it, ok := b.Children[1].(*Italic)
	require.True(t, ok)
	assert.Equal(t, "italic", PlainText(it.Children))
	assert.Empty(t, doc.Notices)
}

func TestInlineLink(t *testing.T) {
	doc := Parse("see [the docs](https://example.com/x) here")
	p := doc.Blocks[0].(*Paragraph)
	require.Len(t, p.Spans, 3)
	l := p.Spans[1].(*Link)
	assert.Equal(t, "the docs", PlainText(l.Children))
	assert.Equal(t, "https://example.com/x", l.URL)
}

func TestInlineUnmatchedDelimiterDegrades(t *testing.T) {
	doc := Parse("a *b and `c")
	p := doc.Blocks[0].(*Paragraph)
	assert.Equal(t, "a *b and `c", PlainText(p.Spans))
	assert.NotEmpty(t, doc.Notices)
}

func TestInlineEscapes(t *testing.T) {
	doc := Parse(`not \*italic\* here`)
	p := doc.Blocks[0].(*Paragraph)
	require.Len(t, p.Spans, 1)
	assert.Equal(t, "not *italic* here", PlainText(p.Spans))
}

func TestInlineCodeHasNoNestedFormatting(t *testing.T) {
	doc := Parse("`a **b** c`")
	p := doc.Blocks[0].(*Paragraph)
	require.Len(t, p.Spans, 1)
	c := p.Spans[0].(*Code)
	assert.Equal(t, "a **b** c", c.Text)
}

func TestLargeInputTerminates(t *testing.T) {
	// 大量未配对定界符不允许出现回溯爆炸
	var src string
	for i := 0; i < 5000; i++ {
		src += "*a"
	}
	doc := Parse(src)
	assert.NotEmpty(t, doc.Blocks)
}
