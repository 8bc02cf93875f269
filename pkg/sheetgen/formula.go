package sheetgen

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// 公式改写：把行偏移记法换算成真实单元格引用。
// 两种形式：
//   B[0]                当前表内的相对引用，行 = 当前行 + 偏移
//   T1.SUM(B[0]:E[0])   跨表聚合，行 = 目标表锚点 + 当前表内行距 + 偏移
// 换算后的行必须落在被引用表的区间内（表头行合法，偏移-1
// 可以从首个数据行指向表头）

var (
	ErrUnknownTableReference = errors.New("公式引用了不存在的表")
	ErrRowOffsetOutOfRange   = errors.New("公式行偏移超出表范围")
)

var (
	tableFuncPattern = regexp.MustCompile(`T(\d+)\.([A-Z]+)\(([A-Z]{1,3})\[(-?\d+)\]:([A-Z]{1,3})\[(-?\d+)\]\)`)
	bareRefPattern   = regexp.MustCompile(`([A-Z]{1,3})\[(-?\d+)\]`)
)

// Resolve 改写公式中的全部引用，返回不带前导=的公式体。
// 任一引用无法换算时整条公式失败，返回第一个错误
func Resolve(formula string, ctx Context) (string, error) {
	body := strings.TrimPrefix(formula, "=")

	cur, ok := ctx.layout(ctx.CurrentTable)
	if !ok {
		return "", fmt.Errorf("%w: T%d", ErrUnknownTableReference, ctx.CurrentTable)
	}

	var firstErr error
	fail := func(err error) string {
		if firstErr == nil {
			firstErr = err
		}
		return ""
	}

	// 先处理跨表聚合，剩余的方括号引用都是表内引用
	body = tableFuncPattern.ReplaceAllStringFunc(body, func(match string) string {
		m := tableFuncPattern.FindStringSubmatch(match)
		tableID, _ := strconv.Atoi(m[1])
		ref, ok := ctx.layout(tableID)
		if !ok {
			return fail(fmt.Errorf("%w: T%d", ErrUnknownTableReference, tableID))
		}

		// 当前行相对本表锚点的行距，映射到目标表的同一行距
		rowInTable := ctx.CurrentRow - cur.AnchorRow
		startRow := ref.AnchorRow + rowInTable + atoi(m[4])
		endRow := ref.AnchorRow + rowInTable + atoi(m[6])
		if startRow < 1 || endRow < 1 || !ref.contains(startRow) || !ref.contains(endRow) {
			return fail(fmt.Errorf("%w: T%d.%s(%s[%s]:%s[%s])", ErrRowOffsetOutOfRange,
				tableID, m[2], m[3], m[4], m[5], m[6]))
		}
		return fmt.Sprintf("%s(%s%d:%s%d)", m[2], m[3], startRow, m[5], endRow)
	})
	if firstErr != nil {
		return "", firstErr
	}

	body = bareRefPattern.ReplaceAllStringFunc(body, func(match string) string {
		m := bareRefPattern.FindStringSubmatch(match)
		row := ctx.CurrentRow + atoi(m[2])
		if row < 1 || !cur.contains(row) {
			return fail(fmt.Errorf("%w: %s[%s]", ErrRowOffsetOutOfRange, m[1], m[2]))
		}
		return fmt.Sprintf("%s%d", m[1], row)
	})
	if firstErr != nil {
		return "", firstErr
	}
	return body, nil
}

// IsFormula 判断单元格文本是否为公式
func IsFormula(raw string) bool {
	return strings.HasPrefix(raw, "=")
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
