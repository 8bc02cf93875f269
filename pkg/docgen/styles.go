package docgen

import "strings"

// StyleTable 文档树节点到Word样式名的映射。
// 样式名使用Word内建英文名（如 "Heading 1"、"List Bullet 2"），
// styleId由名称去空格得到
type StyleTable struct {
	Heading [6]string // 下标0对应一级标题
	Normal  string
	Quote   string
	Bullet  [3]string // 下标对应列表嵌套层级
	Number  [3]string
	Table   string
}

// DefaultStyleTable 默认样式表，覆盖内建样式集
func DefaultStyleTable() StyleTable {
	return StyleTable{
		Heading: [6]string{"Heading 1", "Heading 2", "Heading 3", "Heading 4", "Heading 5", "Heading 6"},
		Normal:  "Normal",
		Quote:   "Quote",
		Bullet:  [3]string{"List Bullet", "List Bullet 2", "List Bullet 3"},
		Number:  [3]string{"List Number", "List Number 2", "List Number 3"},
		Table:   "Table Grid",
	}
}

// StyleID Word样式名到styleId的约定换算：去掉空格
func StyleID(name string) string {
	return strings.ReplaceAll(name, " ", "")
}

// styleResolver 按降级链解析样式。目标样式缺失时逐级回退，
// 每个缺失的样式名只记录一次
type styleResolver struct {
	table      StyleTable
	available  map[string]bool // 可用styleId集合，nil表示全部可用
	unresolved []string
	seen       map[string]bool
}

func newStyleResolver(table StyleTable, available map[string]bool) *styleResolver {
	return &styleResolver{table: table, available: available, seen: map[string]bool{}}
}

// resolve 依次尝试候选样式名，返回第一个可用的styleId。
// 全部缺失时返回空串（无样式渲染）
func (r *styleResolver) resolve(candidates ...string) string {
	for _, name := range candidates {
		if name == "" {
			continue
		}
		id := StyleID(name)
		if r.available == nil || r.available[id] {
			return id
		}
		if !r.seen[name] {
			r.seen[name] = true
			r.unresolved = append(r.unresolved, name)
		}
	}
	return ""
}

// heading N级标题降级链：Heading N → … → Heading 1 → Normal
func (r *styleResolver) heading(level int) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	candidates := make([]string, 0, 7)
	for l := level; l >= 1; l-- {
		candidates = append(candidates, r.table.Heading[l-1])
	}
	candidates = append(candidates, r.table.Normal)
	return r.resolve(candidates...)
}

// listItem 列表项降级链：本层级样式 → 浅层级样式 → Normal
func (r *styleResolver) listItem(ordered bool, depth int) string {
	if depth < 0 {
		depth = 0
	}
	if depth > 2 {
		depth = 2
	}
	names := r.table.Bullet
	if ordered {
		names = r.table.Number
	}
	candidates := make([]string, 0, 4)
	for d := depth; d >= 0; d-- {
		candidates = append(candidates, names[d])
	}
	candidates = append(candidates, r.table.Normal)
	return r.resolve(candidates...)
}

func (r *styleResolver) normal() string {
	return r.resolve(r.table.Normal)
}

func (r *styleResolver) quote() string {
	return r.resolve(r.table.Quote, r.table.Normal)
}

// tableStyle 表格样式缺失时返回空串，表格按无样式渲染
func (r *styleResolver) tableStyle() string {
	return r.resolve(r.table.Table)
}
