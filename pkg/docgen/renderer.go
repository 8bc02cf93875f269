package docgen

import (
	"fmt"
	"strings"

	"github.com/yockii/office_tools/pkg/markdown"
)

// hyperlinkRel 文档级超链接关系项
type hyperlinkRel struct {
	ID  string
	URL string
}

// renderer 把文档树逐块写成WordprocessingML。
// allowRels为false时（模板片段场景）不产生新的关系项，
// 链接降级为带下划线的普通文本
type renderer struct {
	body      strings.Builder
	styles    *styleResolver
	base      RunFormat
	rels      []hyperlinkRel
	allowRels bool
}

func newRenderer(table StyleTable, available map[string]bool, base RunFormat, allowRels bool) *renderer {
	return &renderer{
		styles:    newStyleResolver(table, available),
		base:      base,
		allowRels: allowRels,
	}
}

func (r *renderer) renderBlocks(blocks []markdown.Block) {
	for _, b := range blocks {
		r.renderBlock(b)
	}
}

func (r *renderer) renderBlock(b markdown.Block) {
	switch v := b.(type) {
	case *markdown.Heading:
		r.body.WriteString(paragraphXML(r.styles.heading(v.Level), r.renderSpans(v.Spans, r.base)))
	case *markdown.Paragraph:
		r.body.WriteString(paragraphXML(r.styles.normal(), r.renderSpans(v.Spans, r.base)))
	case *markdown.BlockQuote:
		r.body.WriteString(paragraphXML(r.styles.quote(), r.renderSpans(v.Spans, r.base)))
	case *markdown.ListItem:
		r.renderListItem(v)
	case *markdown.Table:
		r.renderTable(v)
	}
}

// renderListItem 先序遍历：先渲染项本身，再渲染子项
func (r *renderer) renderListItem(item *markdown.ListItem) {
	style := r.styles.listItem(item.Ordered, item.Depth)
	r.body.WriteString(paragraphXML(style, r.renderSpans(item.Spans, r.base)))
	for _, child := range item.Children {
		r.renderListItem(child)
	}
}

// renderTable 首行视为表头，加粗渲染
func (r *renderer) renderTable(t *markdown.Table) {
	if len(t.Rows) == 0 {
		return
	}
	var rows strings.Builder
	for ri, row := range t.Rows {
		var cells strings.Builder
		for _, cell := range row {
			f := r.base
			if ri == 0 {
				f.Bold = true
			}
			para := paragraphXML("", r.renderSpans(cell.Spans, f))
			cells.WriteString(tableCellXML(para))
		}
		rows.WriteString(tableRowXML(cells.String()))
	}
	r.body.WriteString(tableXML(r.styles.tableStyle(), len(t.Rows[0]), rows.String()))
}

// renderSpans 渲染行内节点序列。格式沿祖先链叠加：
// 加粗内的斜体同时携带两种属性
func (r *renderer) renderSpans(spans []markdown.Span, f RunFormat) string {
	var b strings.Builder
	for _, s := range spans {
		switch v := s.(type) {
		case *markdown.Text:
			b.WriteString(runXML(v.Text, f))
		case *markdown.Bold:
			inner := f
			inner.Bold = true
			b.WriteString(r.renderSpans(v.Children, inner))
		case *markdown.Italic:
			inner := f
			inner.Italic = true
			b.WriteString(r.renderSpans(v.Children, inner))
		case *markdown.Code:
			inner := f
			inner.Mono = true
			b.WriteString(runXML(v.Text, inner))
		case *markdown.Link:
			b.WriteString(r.renderLink(v, f))
		}
	}
	return b.String()
}

func (r *renderer) renderLink(link *markdown.Link, f RunFormat) string {
	if !r.allowRels {
		inner := f
		inner.Underline = true
		return r.renderSpans(link.Children, inner)
	}
	relID := fmt.Sprintf("rId%d", hyperlinkRelBase+len(r.rels))
	r.rels = append(r.rels, hyperlinkRel{ID: relID, URL: link.URL})
	inner := f
	inner.Hyperlink = true
	return hyperlinkXML(relID, r.renderSpans(link.Children, inner))
}

// rId1/rId2 固定给styles和numbering，超链接关系从rId3起
const hyperlinkRelBase = 3

// RenderFragment 将文档树渲染为段落级XML片段，可直接嵌入已有
// 文档的body中。片段不引入新的关系项，链接降级为带下划线文本。
// base为片段继承的字体基线，available限定可引用的styleId集合。
// 返回片段XML和按出现顺序去重的缺失样式名
func RenderFragment(doc *markdown.Document, table StyleTable, available map[string]bool, base RunFormat) (string, []string) {
	r := newRenderer(table, available, base, false)
	r.renderBlocks(doc.Blocks)
	return r.body.String(), r.styles.unresolved
}

// RenderInlineRuns 将行内节点渲染为run序列，不产生段落边界。
// 页眉页脚和表格单元格内的占位符替换只能做行内替换
func RenderInlineRuns(spans []markdown.Span, base RunFormat) string {
	r := newRenderer(DefaultStyleTable(), nil, base, false)
	return r.renderSpans(spans, base)
}
