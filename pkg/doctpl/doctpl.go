// Package doctpl 在已有DOCX模板上做占位符拼接。
// 模板以 {{键名}} 标记插入点，替换值为Markdown文本。
// 拼接直接在部件XML上做文本手术，不经过完整的XML解析，
// 模板中未触碰的部分原样保留。
package doctpl

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/yockii/office_tools/pkg/docgen"
)

// ErrMalformedTemplate 模板字节数据不是可读的DOCX包
var ErrMalformedTemplate = errors.New("模板不是合法的DOCX文档")

var (
	placeholderPattern  = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)
	headerFooterPattern = regexp.MustCompile(`^word/(?:header|footer)\d+\.xml$`)
	styleIDPattern      = regexp.MustCompile(`w:styleId="([^"]+)"`)
)

const documentPart = "word/document.xml"

// Result 拼接结果。未提供值的占位符原样保留，键名随结果返回
type Result struct {
	Docx             []byte
	UnresolvedKeys   []string
	UnresolvedStyles []string
}

// Splicer 模板拼接器
type Splicer struct {
	styles docgen.StyleTable
}

// NewSplicer 创建使用默认样式表的拼接器
func NewSplicer() *Splicer {
	return &Splicer{styles: docgen.DefaultStyleTable()}
}

// Splice 用values替换模板中的占位符。同一模板对同一组值
// 的拼接是幂等的：替换进去的内容不会被再次扫描
func (s *Splicer) Splice(template []byte, values map[string]string) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}

	hasDocument := false
	for _, f := range zr.File {
		if f.Name == documentPart {
			hasDocument = true
			break
		}
	}
	if !hasDocument {
		return nil, fmt.Errorf("%w: 缺少%s", ErrMalformedTemplate, documentPart)
	}

	st := &spliceState{
		values:    values,
		styles:    s.styles,
		available: readAvailableStyles(zr),
		seenKeys:  map[string]bool{},
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, f := range zr.File {
		data, err := readZipEntry(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
		}

		// 正文允许块级替换，页眉页脚只做行内替换；
		// 其余部件逐字节拷贝
		switch {
		case f.Name == documentPart:
			data = []byte(st.processPart(string(data), false))
		case headerFooterPattern.MatchString(f.Name):
			data = []byte(st.processPart(string(data), true))
		}

		entry, err := zw.Create(f.Name)
		if err != nil {
			return nil, err
		}
		if _, err = entry.Write(data); err != nil {
			return nil, err
		}
	}
	if err = zw.Close(); err != nil {
		return nil, err
	}

	return &Result{
		Docx:             out.Bytes(),
		UnresolvedKeys:   st.unresolvedKeys,
		UnresolvedStyles: st.unresolvedStyles,
	}, nil
}

// ExtractKeys 列出模板中出现的占位符键名，按首次出现顺序去重。
// 跨run拆散的占位符也能识别
func ExtractKeys(template []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}

	hasDocument := false
	for _, f := range zr.File {
		if f.Name == documentPart {
			hasDocument = true
			break
		}
	}
	if !hasDocument {
		return nil, fmt.Errorf("%w: 缺少%s", ErrMalformedTemplate, documentPart)
	}

	var keys []string
	seen := map[string]bool{}
	for _, f := range zr.File {
		if f.Name != documentPart && !headerFooterPattern.MatchString(f.Name) {
			continue
		}
		data, err := readZipEntry(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
		}
		part := string(data)
		for _, region := range scanParagraphs(part) {
			_, flat := extractElements(part[region.start:region.end])
			for _, m := range placeholderPattern.FindAllStringSubmatch(flat, -1) {
				if !seen[m[1]] {
					seen[m[1]] = true
					keys = append(keys, m[1])
				}
			}
		}
	}
	return keys, nil
}

// readAvailableStyles 读取模板自带的styleId集合，
// 块级替换产生的段落只引用模板里存在的样式。
// styles部件缺失时返回空集，替换内容按无样式渲染
func readAvailableStyles(zr *zip.Reader) map[string]bool {
	available := map[string]bool{}
	for _, f := range zr.File {
		if f.Name != "word/styles.xml" {
			continue
		}
		data, err := readZipEntry(f)
		if err != nil {
			return available
		}
		for _, m := range styleIDPattern.FindAllStringSubmatch(string(data), -1) {
			available[m[1]] = true
		}
	}
	return available
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
