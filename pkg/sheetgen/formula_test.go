package sheetgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleTableCtx(currentRow int) Context {
	return Context{
		Layouts:      []TableLayout{{ID: 1, AnchorRow: 3, AnchorCol: 1, Rows: 3, Cols: 5}},
		CurrentTable: 1,
		CurrentRow:   currentRow,
	}
}

func TestResolveBareReference(t *testing.T) {
	resolved, err := Resolve("=B[0]*C[0]", singleTableCtx(5))
	require.NoError(t, err)
	assert.Equal(t, "B5*C5", resolved)
}

func TestResolveNegativeOffsetReachesHeader(t *testing.T) {
	// 表头行属于表区间，首个数据行偏移-1合法
	resolved, err := Resolve("=B[-1]", singleTableCtx(4))
	require.NoError(t, err)
	assert.Equal(t, "B3", resolved)
}

func TestResolveBareReferenceOutOfRange(t *testing.T) {
	_, err := Resolve("=B[-2]", singleTableCtx(4))
	assert.ErrorIs(t, err, ErrRowOffsetOutOfRange)

	_, err = Resolve("=B[1]", singleTableCtx(5))
	assert.ErrorIs(t, err, ErrRowOffsetOutOfRange)
}

func TestResolveTableFunctionSameTable(t *testing.T) {
	resolved, err := Resolve("=T1.SUM(B[0]:E[0])", singleTableCtx(5))
	require.NoError(t, err)
	assert.Equal(t, "SUM(B5:E5)", resolved)
}

func TestResolveTableFunctionCrossTable(t *testing.T) {
	ctx := Context{
		Layouts: []TableLayout{
			{ID: 1, AnchorRow: 3, AnchorCol: 1, Rows: 4, Cols: 5},
			{ID: 2, AnchorRow: 10, AnchorCol: 1, Rows: 3, Cols: 5},
		},
		CurrentTable: 2,
		CurrentRow:   12,
	}
	// 当前行距本表锚点2行，映射到T1锚点后同一行距
	resolved, err := Resolve("=T1.AVERAGE(B[0]:B[0])", ctx)
	require.NoError(t, err)
	assert.Equal(t, "AVERAGE(B5:B5)", resolved)
}

func TestResolveUnknownTable(t *testing.T) {
	_, err := Resolve("=T9.SUM(B[0]:B[0])", singleTableCtx(5))
	assert.ErrorIs(t, err, ErrUnknownTableReference)
}

func TestResolveCrossTableOutOfRange(t *testing.T) {
	ctx := Context{
		Layouts: []TableLayout{
			{ID: 1, AnchorRow: 3, AnchorCol: 1, Rows: 4, Cols: 5},
			{ID: 2, AnchorRow: 10, AnchorCol: 1, Rows: 3, Cols: 5},
		},
		CurrentTable: 2,
		CurrentRow:   12,
	}
	_, err := Resolve("=T1.SUM(B[3]:B[3])", ctx)
	assert.ErrorIs(t, err, ErrRowOffsetOutOfRange)
}

func TestResolveMixedReferences(t *testing.T) {
	resolved, err := Resolve("=T1.SUM(B[0]:E[0])/F[0]", singleTableCtx(5))
	require.NoError(t, err)
	assert.Equal(t, "SUM(B5:E5)/F5", resolved)
}

func TestResolveRangeWithinSameColumn(t *testing.T) {
	resolved, err := Resolve("=SUM(D[-2]:D[-1])", singleTableCtx(6))
	require.NoError(t, err)
	assert.Equal(t, "SUM(D4:D5)", resolved)
}

func TestIsFormula(t *testing.T) {
	assert.True(t, IsFormula("=B[0]"))
	assert.False(t, IsFormula("普通文本"))
	assert.False(t, IsFormula("100"))
}
