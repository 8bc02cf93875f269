package doctpl

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
  <w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>
  <w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/></w:style>
  <w:style w:type="paragraph" w:styleId="ListBullet"><w:name w:val="List Bullet"/></w:style>
  <w:style w:type="character" w:styleId="Hyperlink"><w:name w:val="Hyperlink"/></w:style>
  <w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/></w:style>
</w:styles>`

// buildTemplate 在内存中构造最小模板包
func buildTemplate(t *testing.T, body string, extra map[string]string) []byte {
	t.Helper()
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>` +
		body + `</w:body></w:document>`

	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`,
		"word/document.xml": documentXML,
		"word/styles.xml":   testStylesXML,
	}
	for name, content := range extra {
		parts[name] = content
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readPart(t *testing.T, docx []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(data)
		}
	}
	t.Fatalf("部件不存在: %s", name)
	return ""
}

func TestSpliceWithoutPlaceholdersIsIdentity(t *testing.T) {
	body := `<w:p><w:r><w:t>固定内容</w:t></w:r></w:p>`
	tpl := buildTemplate(t, body, nil)
	result, err := NewSplicer().Splice(tpl, map[string]string{"unused": "x"})
	require.NoError(t, err)
	assert.Equal(t, readPart(t, tpl, "word/document.xml"), readPart(t, result.Docx, "word/document.xml"))
	assert.Empty(t, result.UnresolvedKeys)
}

func TestSpliceInlineValueInheritsSnapshot(t *testing.T) {
	body := `<w:p><w:r><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri"/><w:sz w:val="22"/></w:rPr><w:t>Hello {{name}}!</w:t></w:r></w:p>`
	tpl := buildTemplate(t, body, nil)
	result, err := NewSplicer().Splice(tpl, map[string]string{"name": "World"})
	require.NoError(t, err)

	doc := readPart(t, result.Docx, "word/document.xml")
	assert.NotContains(t, doc, "{{name}}")
	// 替换值继承占位符处的字体快照，前后文本原样保留
	assert.Contains(t, doc, `<w:t xml:space="preserve">Hello </w:t>`)
	assert.Contains(t, doc, `<w:rFonts w:ascii="Calibri" w:hAnsi="Calibri"/>`)
	assert.Contains(t, doc, `<w:sz w:val="22"/>`)
	assert.Contains(t, doc, `<w:t xml:space="preserve">World</w:t>`)
	assert.Contains(t, doc, `<w:t xml:space="preserve">!</w:t>`)
}

func TestSpliceFormattedValue(t *testing.T) {
	body := `<w:p><w:r><w:t>状态：{{status}}</w:t></w:r></w:p>`
	tpl := buildTemplate(t, body, nil)
	result, err := NewSplicer().Splice(tpl, map[string]string{"status": "**重要** 事项"})
	require.NoError(t, err)

	doc := readPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, `<w:rPr><w:b/></w:rPr><w:t xml:space="preserve">重要</w:t>`)
	assert.Contains(t, doc, `<w:t xml:space="preserve"> 事项</w:t>`)
}

func TestSpliceTokenStraddlesRuns(t *testing.T) {
	// 编辑器常把占位符拆进多个run
	body := `<w:p><w:r><w:t>{{na</w:t></w:r><w:r><w:t>me}}</w:t></w:r></w:p>`
	tpl := buildTemplate(t, body, nil)
	result, err := NewSplicer().Splice(tpl, map[string]string{"name": "甲方"})
	require.NoError(t, err)

	doc := readPart(t, result.Docx, "word/document.xml")
	assert.NotContains(t, doc, "{{na")
	assert.NotContains(t, doc, "me}}")
	assert.Contains(t, doc, "甲方")
}

func TestSpliceBlockValueReplacesWholeParagraph(t *testing.T) {
	body := `<w:p><w:r><w:t>{{body}}</w:t></w:r></w:p>`
	tpl := buildTemplate(t, body, nil)
	result, err := NewSplicer().Splice(tpl, map[string]string{"body": "# 章节标题\n\n正文段落。"})
	require.NoError(t, err)

	doc := readPart(t, result.Docx, "word/document.xml")
	assert.NotContains(t, doc, "{{body}}")
	assert.Contains(t, doc, `<w:pStyle w:val="Heading1"/>`)
	assert.Contains(t, doc, "章节标题")
	assert.Contains(t, doc, `<w:pStyle w:val="Normal"/>`)
	assert.Contains(t, doc, "正文段落。")
	assert.Empty(t, result.UnresolvedStyles)
}

func TestSpliceBlockValueAfterInlineText(t *testing.T) {
	body := `<w:p><w:r><w:t>详情：{{body}}</w:t></w:r></w:p>`
	tpl := buildTemplate(t, body, nil)
	result, err := NewSplicer().Splice(tpl, map[string]string{"body": "## 小节\n\n内容"})
	require.NoError(t, err)

	doc := readPart(t, result.Docx, "word/document.xml")
	// 宿主段落保留前置文本，块级内容追加在段落之后
	prefixIdx := strings.Index(doc, "详情：")
	headingIdx := strings.Index(doc, `<w:pStyle w:val="Heading2"/>`)
	require.GreaterOrEqual(t, prefixIdx, 0)
	require.GreaterOrEqual(t, headingIdx, 0)
	assert.Greater(t, headingIdx, prefixIdx)
}

func TestSpliceUnresolvedKeyPassesThrough(t *testing.T) {
	body := `<w:p><w:r><w:t>{{known}} 与 {{missing}}</w:t></w:r></w:p>`
	tpl := buildTemplate(t, body, nil)
	result, err := NewSplicer().Splice(tpl, map[string]string{"known": "已知"})
	require.NoError(t, err)

	doc := readPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, "已知")
	assert.Contains(t, doc, "{{missing}}")
	assert.Equal(t, []string{"missing"}, result.UnresolvedKeys)
}

func TestSpliceValueContainingPlaceholderNotRescanned(t *testing.T) {
	body := `<w:p><w:r><w:t>{{outer}}</w:t></w:r></w:p>`
	tpl := buildTemplate(t, body, nil)
	result, err := NewSplicer().Splice(tpl, map[string]string{
		"outer": "字面量 {{inner}}",
		"inner": "不应出现",
	})
	require.NoError(t, err)

	doc := readPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, "{{inner}}")
	assert.NotContains(t, doc, "不应出现")
}

func TestSpliceDecodesNumericCharacterReferences(t *testing.T) {
	// 编辑器常把弯引号存成数字字符引用，重建run时不能再转义成字面的&amp;#8217;
	body := `<w:p><w:r><w:t>&#8216;{{word}}&#x2019; &amp; 符号</w:t></w:r></w:p>`
	tpl := buildTemplate(t, body, nil)
	result, err := NewSplicer().Splice(tpl, map[string]string{"word": "引用"})
	require.NoError(t, err)

	doc := readPart(t, result.Docx, "word/document.xml")
	assert.NotContains(t, doc, "&amp;#")
	assert.Contains(t, doc, "‘")
	assert.Contains(t, doc, "’ &amp; 符号")
}

func TestSpliceHeaderIsInlineOnly(t *testing.T) {
	headerXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:p><w:r><w:t>{{title}}</w:t></w:r></w:p></w:hdr>`
	tpl := buildTemplate(t, `<w:p><w:r><w:t>正文</w:t></w:r></w:p>`,
		map[string]string{"word/header1.xml": headerXML})

	result, err := NewSplicer().Splice(tpl, map[string]string{"title": "# 大标题\n\n附言"})
	require.NoError(t, err)

	header := readPart(t, result.Docx, "word/header1.xml")
	// 页眉只做行内替换：块级结构压平，不产生新段落和段落样式
	assert.Contains(t, header, "大标题")
	assert.Contains(t, header, "附言")
	assert.NotContains(t, header, "Heading1")
	assert.Equal(t, 1, strings.Count(header, "<w:p>"))
}

func TestSpliceTableCellIsInlineOnly(t *testing.T) {
	body := `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>{{v}}</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`
	tpl := buildTemplate(t, body, nil)
	result, err := NewSplicer().Splice(tpl, map[string]string{"v": "- 第一项\n- 第二项"})
	require.NoError(t, err)

	doc := readPart(t, result.Docx, "word/document.xml")
	assert.Contains(t, doc, "第一项")
	assert.Contains(t, doc, "第二项")
	assert.NotContains(t, doc, "ListBullet")
	// 单元格内仍是单个段落
	assert.Equal(t, 1, strings.Count(doc, "<w:p>"))
}

func TestSpliceHyperlinkUnwrappedWhenReplaced(t *testing.T) {
	body := `<w:p><w:hyperlink r:id="rId5"><w:r><w:rPr><w:rStyle w:val="Hyperlink"/></w:rPr><w:t>{{link}}</w:t></w:r></w:hyperlink></w:p>`
	tpl := buildTemplate(t, body, nil)
	result, err := NewSplicer().Splice(tpl, map[string]string{"link": "新文本"})
	require.NoError(t, err)

	doc := readPart(t, result.Docx, "word/document.xml")
	assert.NotContains(t, doc, "<w:hyperlink")
	assert.Contains(t, doc, "新文本")
	// 快照保留超链接字符样式
	assert.Contains(t, doc, `<w:rStyle w:val="Hyperlink"/>`)
}

func TestSpliceUntouchedPartsCopiedVerbatim(t *testing.T) {
	tpl := buildTemplate(t, `<w:p><w:r><w:t>{{x}}</w:t></w:r></w:p>`, nil)
	result, err := NewSplicer().Splice(tpl, map[string]string{"x": "y"})
	require.NoError(t, err)
	assert.Equal(t, testStylesXML, readPart(t, result.Docx, "word/styles.xml"))
}

func TestSpliceMalformedTemplate(t *testing.T) {
	_, err := NewSplicer().Splice([]byte("不是zip数据"), nil)
	assert.ErrorIs(t, err, ErrMalformedTemplate)

	// 合法zip但缺少document.xml
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/styles.xml")
	w.Write([]byte("<w:styles/>"))
	zw.Close()
	_, err = NewSplicer().Splice(buf.Bytes(), nil)
	assert.ErrorIs(t, err, ErrMalformedTemplate)
}

func TestSnapshotFormat(t *testing.T) {
	f := snapshotFormat(`<w:rPr><w:rFonts w:ascii="宋体" w:hAnsi="宋体"/><w:b/><w:sz w:val="28"/><w:u w:val="single"/></w:rPr>`, false)
	assert.Equal(t, "宋体", f.Font)
	assert.Equal(t, 28, f.Size)
	assert.True(t, f.Bold)
	assert.False(t, f.Italic)
	assert.True(t, f.Underline)

	// bCs不是加粗，u val=none不是下划线
	f = snapshotFormat(`<w:rPr><w:bCs/><w:u w:val="none"/></w:rPr>`, false)
	assert.False(t, f.Bold)
	assert.False(t, f.Underline)
}

func TestExtractKeys(t *testing.T) {
	body := `<w:p><w:r><w:t>甲方：{{party_a}}，乙方：{{party_b}}</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>{{party</w:t></w:r><w:r><w:t>_a}} 再次出现</w:t></w:r></w:p>`
	tpl := buildTemplate(t, body, map[string]string{
		"word/header1.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:p><w:r><w:t>{{title}}</w:t></w:r></w:p></w:hdr>`,
	})

	keys, err := ExtractKeys(tpl)
	require.NoError(t, err)
	// 跨run拆散的占位符可识别，重复键去重，页眉参与扫描
	assert.ElementsMatch(t, []string{"party_a", "party_b", "title"}, keys)
}

func TestExtractKeysMalformed(t *testing.T) {
	_, err := ExtractKeys([]byte("不是zip数据"))
	assert.ErrorIs(t, err, ErrMalformedTemplate)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/styles.xml")
	w.Write([]byte("<w:styles/>"))
	zw.Close()
	_, err = ExtractKeys(buf.Bytes())
	assert.ErrorIs(t, err, ErrMalformedTemplate)
}
