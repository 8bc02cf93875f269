package docgen

import (
	"fmt"
	"strings"
)

// RunFormat 一个文本run的有效格式。
// Font/Size 为继承基线（模板拼接时取自占位符处的格式快照），
// 其余开关由行内节点的祖先链叠加得到
type RunFormat struct {
	Font      string // rFonts ascii/hAnsi，空表示继承文档默认
	Size      int    // 半磅值，0表示继承文档默认
	Bold      bool
	Italic    bool
	Underline bool
	Mono      bool // 行内代码按等宽字体渲染，优先于Font
	Hyperlink bool // 带Hyperlink字符样式
}

const monoFont = "Courier New"

// escapeXML 转义XML文本内容
func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}

// runPropsXML 生成run属性，无任何属性时返回空串
func runPropsXML(f RunFormat) string {
	var b strings.Builder
	if f.Hyperlink {
		b.WriteString(`<w:rStyle w:val="Hyperlink"/>`)
	}
	font := f.Font
	if f.Mono {
		font = monoFont
	}
	if font != "" {
		fmt.Fprintf(&b, `<w:rFonts w:ascii="%s" w:hAnsi="%s"/>`, escapeXML(font), escapeXML(font))
	}
	if f.Bold {
		b.WriteString(`<w:b/>`)
	}
	if f.Italic {
		b.WriteString(`<w:i/>`)
	}
	if f.Underline {
		b.WriteString(`<w:u w:val="single"/>`)
	}
	if f.Size > 0 {
		fmt.Fprintf(&b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, f.Size, f.Size)
	}
	if b.Len() == 0 {
		return ""
	}
	return "<w:rPr>" + b.String() + "</w:rPr>"
}

// runXML 生成单个文本run
func runXML(text string, f RunFormat) string {
	return `<w:r>` + runPropsXML(f) +
		`<w:t xml:space="preserve">` + escapeXML(text) + `</w:t></w:r>`
}

// paragraphXML 生成段落，styleID为空时不带段落样式
func paragraphXML(styleID, runs string) string {
	var props string
	if styleID != "" {
		props = `<w:pPr><w:pStyle w:val="` + styleID + `"/></w:pPr>`
	}
	return `<w:p>` + props + runs + `</w:p>`
}

// hyperlinkXML 生成超链接元素，内部run应带Hyperlink字符样式
func hyperlinkXML(relID, runs string) string {
	return `<w:hyperlink r:id="` + relID + `">` + runs + `</w:hyperlink>`
}

// tableXML 生成表格元素
func tableXML(styleID string, cols int, rows string) string {
	var b strings.Builder
	b.WriteString(`<w:tbl><w:tblPr>`)
	if styleID != "" {
		b.WriteString(`<w:tblStyle w:val="` + styleID + `"/>`)
	}
	b.WriteString(`<w:tblW w:w="0" w:type="auto"/></w:tblPr><w:tblGrid>`)
	for i := 0; i < cols; i++ {
		b.WriteString(`<w:gridCol/>`)
	}
	b.WriteString(`</w:tblGrid>`)
	b.WriteString(rows)
	b.WriteString(`</w:tbl>`)
	return b.String()
}

// tableRowXML 生成表格行
func tableRowXML(cells string) string {
	return `<w:tr>` + cells + `</w:tr>`
}

// tableCellXML 生成单元格，内容为单个段落
func tableCellXML(paragraph string) string {
	return `<w:tc><w:tcPr><w:tcW w:w="0" w:type="auto"/></w:tcPr>` + paragraph + `</w:tc>`
}
