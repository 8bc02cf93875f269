package docgen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// buildDocx 在内存中组装DOCX包：固定的包结构文件 + 渲染好的body
func buildDocx(bodyXML string, rels []hyperlinkRel) ([]byte, error) {
	outputBuffer := new(bytes.Buffer)
	zipWriter := zip.NewWriter(outputBuffer)

	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>` +
		bodyXML +
		`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1440" w:right="1800" w:bottom="1440" w:left="1800"/></w:sectPr></w:body></w:document>`

	files := map[string]string{
		"[Content_Types].xml":          getContentTypesXML(),
		"_rels/.rels":                  getRelsXML(),
		"word/_rels/document.xml.rels": getWordRelsXML(rels),
		"word/styles.xml":              getStylesXML(),
		"word/numbering.xml":           getNumberingXML(),
		"word/document.xml":            documentXML,
	}

	for path, content := range files {
		entry, err := zipWriter.Create(path)
		if err != nil {
			return nil, err
		}
		if _, err = entry.Write([]byte(content)); err != nil {
			return nil, err
		}
	}

	if err := zipWriter.Close(); err != nil {
		return nil, err
	}
	return outputBuffer.Bytes(), nil
}

// builtinStyleIDs 默认样式表包含的styleId集合
func builtinStyleIDs() map[string]bool {
	ids := map[string]bool{
		"Normal":    true,
		"Quote":     true,
		"TableGrid": true,
		"Hyperlink": true,
	}
	for i := 1; i <= 6; i++ {
		ids[fmt.Sprintf("Heading%d", i)] = true
	}
	ids["ListBullet"] = true
	ids["ListBullet2"] = true
	ids["ListBullet3"] = true
	ids["ListNumber"] = true
	ids["ListNumber2"] = true
	ids["ListNumber3"] = true
	return ids
}

// XML模板函数
func getContentTypesXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
  <Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>
</Types>`
}

func getRelsXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`
}

// getWordRelsXML rId1/rId2固定给styles和numbering，超链接关系追加在后
func getWordRelsXML(rels []hyperlinkRel) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>
`)
	for _, rel := range rels {
		fmt.Fprintf(&b, `  <Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="%s" TargetMode="External"/>
`, rel.ID, escapeXML(rel.URL))
	}
	b.WriteString("</Relationships>")
	return b.String()
}

func getStylesXML() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:styleId="Normal">
    <w:name w:val="Normal"/>
    <w:qFormat/>
    <w:pPr>
      <w:spacing w:after="120" w:line="240" w:lineRule="auto"/>
    </w:pPr>
  </w:style>
`)

	// 六级标题，字号逐级递减（半磅值）
	headingSizes := [6]int{36, 32, 28, 26, 24, 22}
	for i, sz := range headingSizes {
		fmt.Fprintf(&b, `  <w:style w:type="paragraph" w:styleId="Heading%d">
    <w:name w:val="heading %d"/>
    <w:basedOn w:val="Normal"/>
    <w:next w:val="Normal"/>
    <w:qFormat/>
    <w:pPr>
      <w:keepNext/>
      <w:spacing w:before="%d" w:after="0"/>
      <w:outlineLvl w:val="%d"/>
    </w:pPr>
    <w:rPr>
      <w:b/>
      <w:sz w:val="%d"/>
      <w:szCs w:val="%d"/>
    </w:rPr>
  </w:style>
`, i+1, i+1, 480-i*40, i, sz, sz)
	}

	// 列表样式：样式自身携带numPr，段落只需引用pStyle
	listStyles := []struct {
		id    string
		name  string
		numID int
		ilvl  int
	}{
		{"ListBullet", "List Bullet", 1, 0},
		{"ListBullet2", "List Bullet 2", 1, 1},
		{"ListBullet3", "List Bullet 3", 1, 2},
		{"ListNumber", "List Number", 2, 0},
		{"ListNumber2", "List Number 2", 2, 1},
		{"ListNumber3", "List Number 3", 2, 2},
	}
	for _, ls := range listStyles {
		fmt.Fprintf(&b, `  <w:style w:type="paragraph" w:styleId="%s">
    <w:name w:val="%s"/>
    <w:basedOn w:val="Normal"/>
    <w:qFormat/>
    <w:pPr>
      <w:numPr>
        <w:ilvl w:val="%d"/>
        <w:numId w:val="%d"/>
      </w:numPr>
      <w:contextualSpacing/>
    </w:pPr>
  </w:style>
`, ls.id, ls.name, ls.ilvl, ls.numID)
	}

	b.WriteString(`  <w:style w:type="paragraph" w:styleId="Quote">
    <w:name w:val="Quote"/>
    <w:basedOn w:val="Normal"/>
    <w:qFormat/>
    <w:pPr>
      <w:ind w:left="720" w:right="720"/>
      <w:spacing w:before="120" w:after="120"/>
    </w:pPr>
    <w:rPr>
      <w:i/>
      <w:color w:val="666666"/>
    </w:rPr>
  </w:style>
  <w:style w:type="character" w:styleId="Hyperlink">
    <w:name w:val="Hyperlink"/>
    <w:rPr>
      <w:color w:val="0563C1"/>
      <w:u w:val="single"/>
    </w:rPr>
  </w:style>
  <w:style w:type="table" w:styleId="TableGrid">
    <w:name w:val="Table Grid"/>
    <w:uiPriority w:val="59"/>
    <w:pPr>
      <w:spacing w:after="0" w:line="240" w:lineRule="auto"/>
    </w:pPr>
    <w:tblPr>
      <w:tblBorders>
        <w:top w:val="single" w:sz="4" w:space="0" w:color="auto"/>
        <w:left w:val="single" w:sz="4" w:space="0" w:color="auto"/>
        <w:bottom w:val="single" w:sz="4" w:space="0" w:color="auto"/>
        <w:right w:val="single" w:sz="4" w:space="0" w:color="auto"/>
        <w:insideH w:val="single" w:sz="4" w:space="0" w:color="auto"/>
        <w:insideV w:val="single" w:sz="4" w:space="0" w:color="auto"/>
      </w:tblBorders>
    </w:tblPr>
  </w:style>
</w:styles>`)
	return b.String()
}

func getNumberingXML() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:abstractNum w:abstractNumId="0">
    <w:nsid w:val="10000001"/>
    <w:multiLevelType w:val="hybridMultilevel"/>
`)
	// 无序列表三级项目符号
	bullets := [3]string{"•", "○", "▪"}
	for ilvl, mark := range bullets {
		fmt.Fprintf(&b, `    <w:lvl w:ilvl="%d">
      <w:start w:val="1"/>
      <w:numFmt w:val="bullet"/>
      <w:lvlText w:val="%s"/>
      <w:lvlJc w:val="left"/>
      <w:pPr>
        <w:ind w:left="%d" w:hanging="360"/>
      </w:pPr>
      <w:rPr>
        <w:rFonts w:ascii="Symbol" w:hAnsi="Symbol" w:hint="default"/>
      </w:rPr>
    </w:lvl>
`, ilvl, mark, 720+ilvl*720)
	}
	b.WriteString(`  </w:abstractNum>
  <w:abstractNum w:abstractNumId="1">
    <w:nsid w:val="10000002"/>
    <w:multiLevelType w:val="hybridMultilevel"/>
`)
	// 有序列表三级十进制编号
	for ilvl := 0; ilvl < 3; ilvl++ {
		fmt.Fprintf(&b, `    <w:lvl w:ilvl="%d">
      <w:start w:val="1"/>
      <w:numFmt w:val="decimal"/>
      <w:lvlText w:val="%%%d."/>
      <w:lvlJc w:val="left"/>
      <w:pPr>
        <w:ind w:left="%d" w:hanging="360"/>
      </w:pPr>
    </w:lvl>
`, ilvl, ilvl+1, 720+ilvl*720)
	}
	b.WriteString(`  </w:abstractNum>
  <w:num w:numId="1">
    <w:abstractNumId w:val="0"/>
  </w:num>
  <w:num w:numId="2">
    <w:abstractNumId w:val="1"/>
  </w:num>
</w:numbering>`)
	return b.String()
}
