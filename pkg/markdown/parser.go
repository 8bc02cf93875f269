package markdown

import (
	"regexp"
	"strings"
)

// 受限Markdown方言的两遍解析器。
// 第一遍按行切块，第二遍对每个块的文本做行内扫描。
// 解析永不失败：无法识别的语法一律降级为字面文本并记录Notice。

var (
	headingPattern   = regexp.MustCompile(`^(#{1,7})\s+(.*)$`)
	orderedPattern   = regexp.MustCompile(`^\d+\.\s(.*)$`)
	unorderedPattern = regexp.MustCompile(`^[-*+]\s(.*)$`)
	separatorPattern = regexp.MustCompile(`^\|?[\s:|-]+\|?$`)
	rulePattern      = regexp.MustCompile(`^(-{3,}|\*{3,})$`)
)

// Parse 解析Markdown文本为文档树。空白输入返回空树
func Parse(source string) *Document {
	doc := &Document{}
	if strings.TrimSpace(source) == "" {
		return doc
	}

	lines := strings.Split(source, "\n")
	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		// 空行终止段落，自身不产生节点
		if trimmed == "" {
			i++
			continue
		}

		switch {
		case headingPattern.MatchString(trimmed):
			m := headingPattern.FindStringSubmatch(trimmed)
			level := len(m[1])
			if level > 6 {
				doc.notice(i+1, "标题层级超过6，按6级处理")
				level = 6
			}
			doc.Blocks = append(doc.Blocks, &Heading{
				Level: level,
				Spans: doc.parseInline(m[2], i+1),
			})
			i++

		case strings.HasPrefix(trimmed, "|"):
			i = doc.parseTable(lines, i)

		case isListLine(trimmed):
			i = doc.parseList(lines, i)

		case rulePattern.MatchString(trimmed):
			// 水平线按空段落处理
			doc.Blocks = append(doc.Blocks, &Paragraph{})
			i++

		case strings.HasPrefix(trimmed, ">"):
			i = doc.parseBlockQuote(lines, i)

		default:
			i = doc.parseParagraph(lines, i)
		}
	}
	return doc
}

func (d *Document) notice(line int, detail string) {
	d.Notices = append(d.Notices, Notice{Line: line, Detail: detail})
}

// parseParagraph 合并连续的普通行为一个段落
func (d *Document) parseParagraph(lines []string, start int) int {
	i := start
	var parts []string
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || d.isBlockStart(trimmed) {
			break
		}
		parts = append(parts, trimmed)
		i++
	}
	text := strings.Join(parts, " ")
	d.Blocks = append(d.Blocks, &Paragraph{Spans: d.parseInline(text, start+1)})
	return i
}

// isBlockStart 判断一行是否开启新的块级结构
func (d *Document) isBlockStart(trimmed string) bool {
	return headingPattern.MatchString(trimmed) ||
		strings.HasPrefix(trimmed, "|") ||
		strings.HasPrefix(trimmed, ">") ||
		isListLine(trimmed) ||
		rulePattern.MatchString(trimmed)
}

// isListLine 判断一行是否为列表项（含内容为空的裸标记）
func isListLine(trimmed string) bool {
	return orderedPattern.MatchString(trimmed) ||
		unorderedPattern.MatchString(trimmed) ||
		trimmed == "-" || trimmed == "*" || trimmed == "+"
}

// parseBlockQuote 合并连续的引用行
func (d *Document) parseBlockQuote(lines []string, start int) int {
	i := start
	var parts []string
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, ">") {
			break
		}
		parts = append(parts, strings.TrimSpace(strings.TrimPrefix(trimmed, ">")))
		i++
	}
	text := strings.Join(parts, " ")
	d.Blocks = append(d.Blocks, &BlockQuote{Spans: d.parseInline(text, start+1)})
	return i
}

// parseList 解析连续的列表行。缩进每3个空格对应一个嵌套层级，最深2级
func (d *Document) parseList(lines []string, start int) int {
	i := start
	// 各层级最近一个列表项，用于挂接子项
	var last [3]*ListItem

	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			break
		}

		ordered := false
		var content string
		if m := orderedPattern.FindStringSubmatch(trimmed); m != nil {
			ordered = true
			content = m[1]
		} else if m := unorderedPattern.FindStringSubmatch(trimmed); m != nil {
			content = m[1]
		} else if trimmed == "-" || trimmed == "*" || trimmed == "+" {
			// 空列表项保留为空节点
			content = ""
		} else {
			break
		}

		indent := len(line) - len(strings.TrimLeft(line, " "))
		depth := indent / 3
		if depth > 2 {
			d.notice(i+1, "列表嵌套超过2级，按2级处理")
			depth = 2
		}

		item := &ListItem{Ordered: ordered, Depth: depth, Spans: d.parseInline(strings.TrimSpace(content), i+1)}
		if depth == 0 || last[depth-1] == nil {
			if depth != 0 {
				d.notice(i+1, "列表项缺少父级，按顶层处理")
				item.Depth = 0
				depth = 0
			}
			d.Blocks = append(d.Blocks, item)
		} else {
			parent := last[depth-1]
			parent.Children = append(parent.Children, item)
		}
		last[depth] = item
		for j := depth + 1; j < len(last); j++ {
			last[j] = nil
		}
		i++
	}
	return i
}

// parseTable 解析表格。候选块第二行必须是分隔行，否则整体回退为段落
func (d *Document) parseTable(lines []string, start int) int {
	i := start
	var tableLines []string
	var lineNos []int
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, "|") {
			break
		}
		tableLines = append(tableLines, trimmed)
		lineNos = append(lineNos, i+1)
		i++
	}

	if len(tableLines) < 2 || !isSeparatorRow(tableLines[1]) {
		// 回退：整块按段落处理
		d.notice(start+1, "表格缺少分隔行，按段落处理")
		text := strings.Join(tableLines, " ")
		d.Blocks = append(d.Blocks, &Paragraph{Spans: d.parseInline(text, start+1)})
		return i
	}

	table := &Table{}
	maxCols := 0
	for idx, tl := range tableLines {
		if isSeparatorRow(tl) {
			continue
		}
		cells := splitCells(tl)
		row := make(TableRow, 0, len(cells))
		for _, c := range cells {
			raw := strings.TrimSpace(c)
			row = append(row, Cell{
				Raw:   unescape(raw),
				Spans: d.parseInline(raw, lineNos[idx]),
			})
		}
		if len(row) > maxCols {
			maxCols = len(row)
		}
		table.Rows = append(table.Rows, row)
	}

	// 短行补空单元格，保持列数一致
	for ri, row := range table.Rows {
		if len(row) < maxCols {
			d.notice(lineNos[0], "表格行列数不一致，短行补空")
			for len(row) < maxCols {
				row = append(row, Cell{})
			}
			table.Rows[ri] = row
		}
	}
	d.Blocks = append(d.Blocks, table)
	return i
}

// isSeparatorRow 判断是否为表头分隔行（仅含 - : | 和空白，且至少一个 -）
func isSeparatorRow(line string) bool {
	return separatorPattern.MatchString(line) && strings.Contains(line, "-")
}

// splitCells 按未转义的 | 切分单元格，去掉首尾边界产生的空字段
func splitCells(line string) []string {
	var cells []string
	var cur []byte
	escaped := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if escaped {
			cur = append(cur, '\\', c)
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '|':
			cells = append(cells, string(cur))
			cur = cur[:0]
		default:
			cur = append(cur, c)
		}
	}
	if escaped {
		cur = append(cur, '\\')
	}
	cells = append(cells, string(cur))

	// 以 | 开头/结尾时去掉空边界
	if len(cells) > 0 && strings.TrimSpace(cells[0]) == "" {
		cells = cells[1:]
	}
	if len(cells) > 0 && strings.TrimSpace(cells[len(cells)-1]) == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

// unescape 去掉反斜杠转义，保留被转义的字符本身
func unescape(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	if escaped {
		b.WriteByte('\\')
	}
	return b.String()
}
