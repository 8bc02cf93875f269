package sheetgen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openResult(t *testing.T, result *Result) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(result.Xlsx))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestRenderHeadingAndTablePlacement(t *testing.T) {
	src := "# 销售报告\n\n| 产品 | 单价 | 数量 | 小计 |\n| --- | --- | --- | --- |\n| 苹果 | 5 | 3 | =B[0]*C[0] |\n| 香蕉 | 2000 | 2 | =B[0]*C[0] |\n| 合计 |  |  | =SUM(D[-2]:D[-1]) |"
	result, err := NewGenerator().RenderString(src)
	require.NoError(t, err)
	assert.Empty(t, result.CellErrors)

	f := openResult(t, result)

	// 标题在第1行，表头空一行后从第3行开始
	title, err := f.GetCellValue(defaultSheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "销售报告", title)

	header, err := f.GetCellValue(defaultSheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "产品", header)

	formula, err := f.GetCellFormula(defaultSheetName, "D4")
	require.NoError(t, err)
	assert.Equal(t, "B4*C4", formula)

	total, err := f.GetCellFormula(defaultSheetName, "D6")
	require.NoError(t, err)
	assert.Equal(t, "SUM(D4:D5)", total)
}

func TestRenderSecondTableAnchor(t *testing.T) {
	src := "| a | b |\n| --- | --- |\n| 1 | 2 |\n\n| c | d |\n| --- | --- |\n| =T1.SUM(A[0]:B[0]) | 4 |"
	result, err := NewGenerator().RenderString(src)
	require.NoError(t, err)
	assert.Empty(t, result.CellErrors)

	f := openResult(t, result)

	// 第一个表占1-2行，空两行后第二个表从第5行开始
	header, err := f.GetCellValue(defaultSheetName, "A5")
	require.NoError(t, err)
	assert.Equal(t, "c", header)

	// 跨表引用：当前行距本表锚点1行，映射到T1的数据行
	formula, err := f.GetCellFormula(defaultSheetName, "A6")
	require.NoError(t, err)
	assert.Equal(t, "SUM(A2:B2)", formula)
}

func TestRenderNumericCoercion(t *testing.T) {
	src := "| 指标 | 值 |\n| --- | --- |\n| 增长率 | 15% |\n| 营收 | 12000 |\n| 备注 | 正常 |"
	result, err := NewGenerator().RenderString(src)
	require.NoError(t, err)

	f := openResult(t, result)

	pct, err := f.GetCellValue(defaultSheetName, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "0.15", pct)

	rev, err := f.GetCellValue(defaultSheetName, "B3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "12000", rev)

	note, err := f.GetCellValue(defaultSheetName, "B4")
	require.NoError(t, err)
	assert.Equal(t, "正常", note)
}

func TestRenderUnknownTableKeepsRawText(t *testing.T) {
	src := "| a | b |\n| --- | --- |\n| =T9.SUM(A[0]:A[0]) | 1 |"
	result, err := NewGenerator().RenderString(src)
	require.NoError(t, err)

	require.Len(t, result.CellErrors, 1)
	assert.Equal(t, "A2", result.CellErrors[0].Cell)
	assert.ErrorIs(t, result.CellErrors[0].Detail, ErrUnknownTableReference)

	// 出错的单元格保留原始公式文本
	f := openResult(t, result)
	raw, err := f.GetCellValue(defaultSheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "=T9.SUM(A[0]:A[0])", raw)
}

func TestRenderOffsetOutOfRangeCollected(t *testing.T) {
	src := "| a | b |\n| --- | --- |\n| =A[-5] | =B[3] |"
	result, err := NewGenerator().RenderString(src)
	require.NoError(t, err)

	require.Len(t, result.CellErrors, 2)
	for _, ce := range result.CellErrors {
		assert.ErrorIs(t, ce.Detail, ErrRowOffsetOutOfRange)
	}
}

func TestRenderColumnWidthClamped(t *testing.T) {
	src := "| 短 | 很长很长很长很长很长很长很长很长很长很长很长很长很长的列 |\n| --- | --- |\n| 1 | 2 |"
	result, err := NewGenerator().RenderString(src)
	require.NoError(t, err)

	f := openResult(t, result)
	narrow, err := f.GetColWidth(defaultSheetName, "A")
	require.NoError(t, err)
	assert.Equal(t, float64(minColWidth), narrow)

	wide, err := f.GetColWidth(defaultSheetName, "B")
	require.NoError(t, err)
	assert.Equal(t, float64(maxColWidth), wide)
}

func TestRenderTextBlocks(t *testing.T) {
	src := "说明文字\n\n- 第一项\n   - 子项"
	result, err := NewGenerator().RenderString(src)
	require.NoError(t, err)

	f := openResult(t, result)
	text, err := f.GetCellValue(defaultSheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "说明文字", text)

	item, err := f.GetCellValue(defaultSheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "• 第一项", item)

	child, err := f.GetCellValue(defaultSheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "  • 子项", child)
}

func TestRenderSeparatorOnlyTable(t *testing.T) {
	// 只有分隔行的表没有数据行，不产生内容也不影响后续表的编号
	result, err := NewGenerator().RenderString("|---|\n|---|\n")
	require.NoError(t, err)
	f := openResult(t, result)
	assert.Equal(t, defaultSheetName, f.GetSheetName(0))

	src := "|---|\n|---|\n\n| a | b |\n| --- | --- |\n| 1 | =T1.SUM(A[0]:A[0]) |"
	result, err = NewGenerator().RenderString(src)
	require.NoError(t, err)
	assert.Empty(t, result.CellErrors)

	f = openResult(t, result)
	header, err := f.GetCellValue(defaultSheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "a", header)

	// 空表不占表编号，T1即为这张表自身
	formula, err := f.GetCellFormula(defaultSheetName, "B4")
	require.NoError(t, err)
	assert.Equal(t, "SUM(A4:A4)", formula)
}

func TestRenderEmptyInputProducesWorkbook(t *testing.T) {
	result, err := NewGenerator().RenderString("")
	require.NoError(t, err)
	f := openResult(t, result)
	assert.Equal(t, defaultSheetName, f.GetSheetName(0))
}
