package doctpl

import (
	"strings"

	"github.com/yockii/office_tools/pkg/docgen"
	"github.com/yockii/office_tools/pkg/markdown"
)

// spliceState 一次拼接的累计状态
type spliceState struct {
	values           map[string]string
	styles           docgen.StyleTable
	available        map[string]bool
	unresolvedKeys   []string
	seenKeys         map[string]bool
	unresolvedStyles []string
}

func (st *spliceState) markUnresolved(key string) {
	if !st.seenKeys[key] {
		st.seenKeys[key] = true
		st.unresolvedKeys = append(st.unresolvedKeys, key)
	}
}

// paragraphRegion 部件XML中的一个<w:p>区域
type paragraphRegion struct {
	start, end int
	inCell     bool
}

// processPart 处理一个部件。段落不嵌套，从左到右扫描即可定位；
// 编辑按从后往前进行，前面区域的偏移保持有效
func (st *spliceState) processPart(xml string, inlineOnly bool) string {
	regions := scanParagraphs(xml)
	for i := len(regions) - 1; i >= 0; i-- {
		r := regions[i]
		replaced := st.processParagraph(xml[r.start:r.end], inlineOnly || r.inCell)
		if replaced != xml[r.start:r.end] {
			xml = xml[:r.start] + replaced + xml[r.end:]
		}
	}
	return xml
}

// scanParagraphs 定位所有段落并记录是否位于表格单元格内
func scanParagraphs(xml string) []paragraphRegion {
	var regions []paragraphRegion
	tcDepth := 0
	pos := 0
	for pos < len(xml) {
		idx := strings.IndexByte(xml[pos:], '<')
		if idx < 0 {
			break
		}
		pos += idx
		switch {
		case hasTagPrefix(xml[pos:], "<w:tc"):
			tcDepth++
			pos += 5
		case strings.HasPrefix(xml[pos:], "</w:tc>"):
			tcDepth--
			pos += 7
		case hasTagPrefix(xml[pos:], "<w:p"):
			end := strings.Index(xml[pos:], "</w:p>")
			if end < 0 {
				return regions
			}
			end += pos + len("</w:p>")
			regions = append(regions, paragraphRegion{start: pos, end: end, inCell: tcDepth > 0})
			pos = end
		default:
			pos++
		}
	}
	return regions
}

// hasTagPrefix 匹配标签名本身，排除同前缀的其他标签
// （如<w:p匹配<w:p>和<w:p ...>，不匹配<w:pPr>）
func hasTagPrefix(s, tag string) bool {
	if !strings.HasPrefix(s, tag) {
		return false
	}
	if len(s) <= len(tag) {
		return false
	}
	c := s[len(tag)]
	return c == '>' || c == ' '
}

// tokenEdit 一个占位符的替换计划
type tokenEdit struct {
	a, b      int    // 压平文本中的区间
	inlineXML string // 行内替换的run序列
	fragment  string // 块级替换时追加在段落之后的片段
}

// processParagraph 替换段落内的占位符。
// run按原始偏移一次性定位，重建时只改写被占位符波及的
// 区域，其余XML原样保留，因此值里出现的{{}}不会被再次扫描
func (st *spliceState) processParagraph(p string, inlineOnly bool) string {
	elements, flat := extractElements(p)
	if len(elements) == 0 {
		return p
	}

	matches := placeholderPattern.FindAllStringSubmatchIndex(flat, -1)
	if len(matches) == 0 {
		return p
	}

	var edits []tokenEdit
	for _, m := range matches {
		key := flat[m[2]:m[3]]
		value, ok := st.values[key]
		if !ok {
			st.markUnresolved(key)
			continue
		}

		tree := markdown.Parse(value)
		base := snapshotAt(elements, m[0])

		if !inlineOnly && isBlockValue(tree) {
			frag, unres := docgen.RenderFragment(tree, st.styles, st.available, base)
			st.unresolvedStyles = append(st.unresolvedStyles, unres...)
			// 占位符独占整段时整个段落被片段取代
			if m[0] == 0 && m[1] == len(flat) && len(matches) == 1 {
				return frag
			}
			edits = append(edits, tokenEdit{a: m[0], b: m[1], fragment: frag})
			continue
		}

		runs := docgen.RenderInlineRuns(flattenSpans(tree), base)
		edits = append(edits, tokenEdit{a: m[0], b: m[1], inlineXML: runs})
	}
	if len(edits) == 0 {
		return p
	}

	return rebuildParagraph(p, elements, flat, edits)
}

// rebuildParagraph 单遍重建：逐元素拷贝，被编辑波及的元素
// 按run粒度切开，占位符区间换成替换内容
func rebuildParagraph(p string, elements []element, flat string, edits []tokenEdit) string {
	var out strings.Builder
	var fragments strings.Builder
	xpos := 0

	for _, e := range elements {
		out.WriteString(p[xpos:e.xmlStart])
		xpos = e.xmlEnd

		if !anyEditIntersects(edits, e.flatStart, e.flatEnd) {
			out.WriteString(p[e.xmlStart:e.xmlEnd])
			continue
		}

		// 波及超链接时整个包装被展开，内部run改写后裸露输出
		for _, r := range e.runs {
			pos := r.textStart
			for _, ed := range edits {
				if ed.b <= r.textStart || ed.a >= r.textEnd {
					continue
				}
				if ed.a > pos {
					out.WriteString(rawRunXML(r.rPr, flat[pos:ed.a]))
				}
				if ed.a >= r.textStart {
					// 替换内容在占位符起始run处输出一次
					out.WriteString(ed.inlineXML)
					if ed.fragment != "" {
						fragments.WriteString(ed.fragment)
					}
				}
				pos = ed.b
				if pos > r.textEnd {
					pos = r.textEnd
				}
			}
			if pos < r.textEnd {
				out.WriteString(rawRunXML(r.rPr, flat[pos:r.textEnd]))
			}
		}
	}
	out.WriteString(p[xpos:])
	out.WriteString(fragments.String())
	return out.String()
}

func anyEditIntersects(edits []tokenEdit, start, end int) bool {
	for _, ed := range edits {
		if ed.a < end && ed.b > start {
			return true
		}
	}
	return false
}

// rawRunXML 用原始rPr字符串重建run
func rawRunXML(rPr, text string) string {
	return `<w:r>` + rPr + `<w:t xml:space="preserve">` + escapeText(text) + `</w:t></w:r>`
}

// isBlockValue 值包含块级结构时走块级替换
func isBlockValue(tree *markdown.Document) bool {
	if len(tree.Blocks) > 1 {
		return true
	}
	if len(tree.Blocks) == 0 {
		return false
	}
	_, isParagraph := tree.Blocks[0].(*markdown.Paragraph)
	return !isParagraph
}

// flattenSpans 把块级结构压平为行内节点序列，块之间以空格分隔
func flattenSpans(tree *markdown.Document) []markdown.Span {
	var spans []markdown.Span
	appendSpans := func(s []markdown.Span) {
		if len(spans) > 0 && len(s) > 0 {
			spans = append(spans, &markdown.Text{Text: " "})
		}
		spans = append(spans, s...)
	}

	var fromItem func(item *markdown.ListItem)
	fromItem = func(item *markdown.ListItem) {
		appendSpans(item.Spans)
		for _, c := range item.Children {
			fromItem(c)
		}
	}

	for _, b := range tree.Blocks {
		switch v := b.(type) {
		case *markdown.Heading:
			appendSpans(v.Spans)
		case *markdown.Paragraph:
			appendSpans(v.Spans)
		case *markdown.BlockQuote:
			appendSpans(v.Spans)
		case *markdown.ListItem:
			fromItem(v)
		case *markdown.Table:
			for _, row := range v.Rows {
				for _, cell := range row {
					appendSpans(cell.Spans)
				}
			}
		}
	}
	return spans
}
