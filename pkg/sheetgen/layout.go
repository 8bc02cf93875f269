package sheetgen

// TableLayout 表格在工作表上的落位信息。
// 渲染前先整体排版一遍，公式因此可以前向引用后面的表
type TableLayout struct {
	ID        int // 表序号，按出现顺序从1开始
	AnchorRow int // 表头所在行（1-based）
	AnchorCol int // 首列（1-based）
	Rows      int // 总行数，含表头
	Cols      int
}

// span 表格占据的行区间 [AnchorRow, AnchorRow+Rows-1]
func (t TableLayout) contains(row int) bool {
	return row >= t.AnchorRow && row <= t.AnchorRow+t.Rows-1
}

// Context 公式求值上下文
type Context struct {
	Layouts      []TableLayout
	CurrentTable int // 公式所在表的ID
	CurrentRow   int // 公式所在的工作表行（1-based）
}

func (c Context) layout(id int) (TableLayout, bool) {
	for _, t := range c.Layouts {
		if t.ID == id {
			return t, true
		}
	}
	return TableLayout{}, false
}
