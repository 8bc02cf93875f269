package sheetgen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/yockii/office_tools/pkg/markdown"
)

// 工作表排版常数
const (
	defaultSheetName = "Data Report"
	headingGap       = 2 // 标题行之后空一行
	tableGap         = 2 // 表格之后空两行
	minColWidth      = 12
	maxColWidth      = 25
)

// Result 电子表格渲染结果。公式错误不阻止文档产出，
// 出错的单元格保留原始文本
type Result struct {
	Xlsx       []byte
	CellErrors []CellError
	Notices    []markdown.Notice
}

// CellError 单元格级公式错误
type CellError struct {
	Cell   string // A1形式的单元格引用
	Detail error
}

// Generator Markdown到电子表格的生成器
type Generator struct {
	sheet string
}

// NewGenerator 创建电子表格生成器
func NewGenerator() *Generator {
	return &Generator{sheet: defaultSheetName}
}

// RenderString 从Markdown字符串生成电子表格
func (g *Generator) RenderString(source string) (*Result, error) {
	return g.RenderBytes([]byte(source))
}

// RenderBytes 从Markdown字节数据生成电子表格
func (g *Generator) RenderBytes(source []byte) (*Result, error) {
	doc := markdown.Parse(string(source))

	// 先整体排版得到所有表的锚点，公式才能前向引用
	layouts := planLayouts(doc.Blocks)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), g.sheet); err != nil {
		return nil, err
	}

	w := &sheetWriter{file: f, sheet: g.sheet, layouts: layouts, colWidths: map[int]int{}}
	if err := w.initStyles(); err != nil {
		return nil, err
	}

	row := 1
	tableIdx := 0
	for _, b := range doc.Blocks {
		switch v := b.(type) {
		case *markdown.Heading:
			if err := w.writeHeading(row, v); err != nil {
				return nil, err
			}
		case *markdown.Paragraph:
			if err := w.writeText(row, markdown.PlainText(v.Spans)); err != nil {
				return nil, err
			}
		case *markdown.BlockQuote:
			if err := w.writeText(row, markdown.PlainText(v.Spans)); err != nil {
				return nil, err
			}
		case *markdown.ListItem:
			if err := w.writeListItem(row, v, 0); err != nil {
				return nil, err
			}
		case *markdown.Table:
			// 只有分隔行没有数据行的表不参与排版，与planLayouts保持一致
			if len(v.Rows) == 0 {
				break
			}
			if err := w.writeTable(layouts[tableIdx], v); err != nil {
				return nil, err
			}
			tableIdx++
		}
		row += blockAdvance(b)
	}

	if err := w.applyColWidths(); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return &Result{Xlsx: buf.Bytes(), CellErrors: w.cellErrors, Notices: doc.Notices}, nil
}

// planLayouts 预排版：计算每个表的锚点和尺寸
func planLayouts(blocks []markdown.Block) []TableLayout {
	var layouts []TableLayout
	row := 1
	for _, b := range blocks {
		if t, ok := b.(*markdown.Table); ok && len(t.Rows) > 0 {
			layouts = append(layouts, TableLayout{
				ID:        len(layouts) + 1,
				AnchorRow: row,
				AnchorCol: 1,
				Rows:      len(t.Rows),
				Cols:      len(t.Rows[0]),
			})
		}
		row += blockAdvance(b)
	}
	return layouts
}

// blockAdvance 块占用的行数，含与后续内容的间隔
func blockAdvance(b markdown.Block) int {
	switch v := b.(type) {
	case *markdown.Heading:
		return headingGap
	case *markdown.Table:
		return len(v.Rows) + tableGap
	case *markdown.ListItem:
		return countListItems(v)
	default:
		return 1
	}
}

func countListItems(item *markdown.ListItem) int {
	n := 1
	for _, c := range item.Children {
		n += countListItems(c)
	}
	return n
}

// sheetWriter 持有excelize句柄和预创建的样式
type sheetWriter struct {
	file       *excelize.File
	sheet      string
	layouts    []TableLayout
	cellErrors []CellError
	colWidths  map[int]int // 列号→内容最大字符数

	headerStyle    int
	formulaStyle   int
	dataStyle      int
	percentStyle   int
	thousandsStyle int
	titleStyles    [3]int // 一级/二级/三级及更深标题
}

func (w *sheetWriter) initStyles() error {
	border := []excelize.Border{
		{Type: "top", Color: "D9D9D9", Style: 1},
		{Type: "bottom", Color: "D9D9D9", Style: 1},
		{Type: "left", Color: "D9D9D9", Style: 1},
		{Type: "right", Color: "D9D9D9", Style: 1},
	}

	var err error
	w.headerStyle, err = w.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}
	w.formulaStyle, err = w.file.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E7F3FF"}},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return err
	}
	w.dataStyle, err = w.file.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		return err
	}
	// 内置格式：10=0.00%，3=#,##0
	w.percentStyle, err = w.file.NewStyle(&excelize.Style{NumFmt: 10, Border: border})
	if err != nil {
		return err
	}
	w.thousandsStyle, err = w.file.NewStyle(&excelize.Style{NumFmt: 3, Border: border})
	if err != nil {
		return err
	}

	titles := []excelize.Font{
		{Bold: true, Size: 16, Color: "2F5597"},
		{Bold: true, Size: 14, Color: "4472C4"},
		{Bold: true, Size: 12},
	}
	for i := range titles {
		w.titleStyles[i], err = w.file.NewStyle(&excelize.Style{Font: &titles[i]})
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *sheetWriter) writeHeading(row int, h *markdown.Heading) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	text := markdown.PlainText(h.Spans)
	if err = w.file.SetCellValue(w.sheet, cell, text); err != nil {
		return err
	}
	level := h.Level
	if level > 3 {
		level = 3
	}
	return w.file.SetCellStyle(w.sheet, cell, cell, w.titleStyles[level-1])
}

func (w *sheetWriter) writeText(row int, text string) error {
	if text == "" {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return w.file.SetCellValue(w.sheet, cell, text)
}

func (w *sheetWriter) writeListItem(row int, item *markdown.ListItem, offset int) error {
	text := strings.Repeat("  ", item.Depth) + "• " + markdown.PlainText(item.Spans)
	if err := w.writeText(row+offset, text); err != nil {
		return err
	}
	offset++
	for _, c := range item.Children {
		if err := w.writeListItem(row, c, offset); err != nil {
			return err
		}
		offset += countListItems(c)
	}
	return nil
}

func (w *sheetWriter) writeTable(layout TableLayout, t *markdown.Table) error {
	for ri, tr := range t.Rows {
		sheetRow := layout.AnchorRow + ri
		for ci, cell := range tr {
			col := layout.AnchorCol + ci
			name, err := excelize.CoordinatesToCellName(col, sheetRow)
			if err != nil {
				return err
			}
			if err = w.writeCell(name, layout, sheetRow, ri == 0, cell.Raw); err != nil {
				return err
			}
			w.trackWidth(col, cell.Raw)
		}
	}
	return nil
}

// writeCell 按内容类型写入：表头、公式、百分比、数值、文本
func (w *sheetWriter) writeCell(name string, layout TableLayout, sheetRow int, header bool, raw string) error {
	if header {
		if err := w.file.SetCellValue(w.sheet, name, raw); err != nil {
			return err
		}
		return w.file.SetCellStyle(w.sheet, name, name, w.headerStyle)
	}

	if IsFormula(raw) {
		resolved, err := Resolve(raw, Context{
			Layouts:      w.layouts,
			CurrentTable: layout.ID,
			CurrentRow:   sheetRow,
		})
		if err != nil {
			// 出错的公式保留原始文本，错误随结果返回
			w.cellErrors = append(w.cellErrors, CellError{Cell: name, Detail: err})
			if err := w.file.SetCellValue(w.sheet, name, raw); err != nil {
				return err
			}
			return w.file.SetCellStyle(w.sheet, name, name, w.dataStyle)
		}
		if err := w.file.SetCellFormula(w.sheet, name, resolved); err != nil {
			return err
		}
		return w.file.SetCellStyle(w.sheet, name, name, w.formulaStyle)
	}

	if pct, ok := parsePercent(raw); ok {
		if err := w.file.SetCellValue(w.sheet, name, pct); err != nil {
			return err
		}
		return w.file.SetCellStyle(w.sheet, name, name, w.percentStyle)
	}

	if num, err := strconv.ParseFloat(raw, 64); err == nil {
		if err := w.file.SetCellValue(w.sheet, name, num); err != nil {
			return err
		}
		style := w.dataStyle
		if num >= 1000 || num <= -1000 {
			style = w.thousandsStyle
		}
		return w.file.SetCellStyle(w.sheet, name, name, style)
	}

	if err := w.file.SetCellValue(w.sheet, name, raw); err != nil {
		return err
	}
	return w.file.SetCellStyle(w.sheet, name, name, w.dataStyle)
}

// parsePercent 识别 N% 形式，转换为小数
func parsePercent(raw string) (float64, bool) {
	if !strings.HasSuffix(raw, "%") {
		return 0, false
	}
	num, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if err != nil {
		return 0, false
	}
	return num / 100, true
}

func (w *sheetWriter) trackWidth(col int, content string) {
	n := utf8.RuneCountInString(content)
	if n > w.colWidths[col] {
		w.colWidths[col] = n
	}
}

// applyColWidths 列宽 = 内容最大长度+2，限制在[12,25]
func (w *sheetWriter) applyColWidths() error {
	for col, maxLen := range w.colWidths {
		width := float64(maxLen + 2)
		if width < minColWidth {
			width = minColWidth
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err = w.file.SetColWidth(w.sheet, name, name, width); err != nil {
			return err
		}
	}
	return nil
}

// CellName 列号行号到A1形式的换算，供调用方构造错误信息
func CellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Sprintf("R%dC%d", row, col)
	}
	return name
}
