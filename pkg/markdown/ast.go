package markdown

// Block 块级节点，闭合变体集合：Heading/Paragraph/ListItem/Table/BlockQuote
type Block interface {
	block()
}

// Span 行内节点，闭合变体集合：Text/Bold/Italic/Code/Link
type Span interface {
	span()
}

// Document 解析结果：有序块节点树 + 宽容降级记录
type Document struct {
	Blocks  []Block
	Notices []Notice
}

// Notice 宽容降级记录（不是错误，仅用于观测）
type Notice struct {
	Line   int    // 1-based 源行号，0表示与具体行无关
	Detail string
}

// Heading 标题，Level 取值 1-6
type Heading struct {
	Level int
	Spans []Span
}

// Paragraph 普通段落，连续非空行合并
type Paragraph struct {
	Spans []Span
}

// ListItem 列表项，Depth 取值 0-2，Children 为更深层级的子项
type ListItem struct {
	Ordered  bool
	Depth    int
	Spans    []Span
	Children []*ListItem
}

// Table 表格。不变式：每行单元格数量一致（解析时短行补空）
type Table struct {
	Rows []TableRow
}

// TableRow 表格行
type TableRow []Cell

// Cell 单元格。Raw 保留未经行内解析的原始文本，
// 电子表格渲染需要它来识别公式与数值
type Cell struct {
	Raw   string
	Spans []Span
}

// BlockQuote 引用块
type BlockQuote struct {
	Spans []Span
}

func (*Heading) block()    {}
func (*Paragraph) block()  {}
func (*ListItem) block()   {}
func (*Table) block()      {}
func (*BlockQuote) block() {}

// Text 纯文本
type Text struct {
	Text string
}

// Bold 加粗，子节点可继续嵌套
type Bold struct {
	Children []Span
}

// Italic 斜体
type Italic struct {
	Children []Span
}

// Code 行内代码，内部不再解析格式
type Code struct {
	Text string
}

// Link 链接
type Link struct {
	Children []Span
	URL      string
}

func (*Text) span()   {}
func (*Bold) span()   {}
func (*Italic) span() {}
func (*Code) span()   {}
func (*Link) span()   {}

// PlainText 拼接节点树的纯文本内容（去除格式标记）
func PlainText(spans []Span) string {
	var b []byte
	for _, s := range spans {
		switch v := s.(type) {
		case *Text:
			b = append(b, v.Text...)
		case *Bold:
			b = append(b, PlainText(v.Children)...)
		case *Italic:
			b = append(b, PlainText(v.Children)...)
		case *Code:
			b = append(b, v.Text...)
		case *Link:
			b = append(b, PlainText(v.Children)...)
		}
	}
	return string(b)
}
