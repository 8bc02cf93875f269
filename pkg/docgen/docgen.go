package docgen

import (
	"bytes"
	"io"

	"github.com/yockii/office_tools/pkg/markdown"
)

// Result Word渲染结果。解析过程中的宽容降级和样式缺失
// 不阻止文档产出，仅随结果返回供调用方观测
type Result struct {
	Docx             []byte
	ParseNotices     []markdown.Notice
	UnresolvedStyles []string
}

// DocGenerator Markdown到Word文档的生成器
type DocGenerator struct {
	styles StyleTable
}

// NewDocGenerator 创建使用默认样式表的生成器
func NewDocGenerator() *DocGenerator {
	return &DocGenerator{styles: DefaultStyleTable()}
}

// NewDocGeneratorWithStyles 创建使用自定义样式表的生成器。
// 自定义表中缺失的样式按降级链回退
func NewDocGeneratorWithStyles(styles StyleTable) *DocGenerator {
	return &DocGenerator{styles: styles}
}

// RenderString 从Markdown字符串生成Word文档
func (g *DocGenerator) RenderString(source string) (*Result, error) {
	return g.RenderBytes([]byte(source))
}

// RenderBytes 从Markdown字节数据生成Word文档。
// 空白输入产出合法的空文档
func (g *DocGenerator) RenderBytes(source []byte) (*Result, error) {
	doc := markdown.Parse(string(source))

	r := newRenderer(g.styles, builtinStyleIDs(), RunFormat{}, true)
	r.renderBlocks(doc.Blocks)

	docx, err := buildDocx(r.body.String(), r.rels)
	if err != nil {
		return nil, err
	}
	return &Result{
		Docx:             docx,
		ParseNotices:     doc.Notices,
		UnresolvedStyles: r.styles.unresolved,
	}, nil
}

// RenderReader 从Reader读取Markdown并生成Word文档
func (g *DocGenerator) RenderReader(reader io.Reader) (*Result, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, reader); err != nil {
		return nil, err
	}
	return g.RenderBytes(buf.Bytes())
}
