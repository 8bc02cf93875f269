package markdown

import "strings"

// 行内扫描：从左到右单遍扫描，定界符非贪婪配对。
// 未配对的定界符降级为字面文本，整体时间与输入长度线性相关。

// parseInline 解析一段文本的行内格式
func (d *Document) parseInline(text string, line int) []Span {
	if text == "" {
		return nil
	}
	p := &inlineParser{doc: d, line: line}
	return p.parse(text)
}

type inlineParser struct {
	doc  *Document
	line int
}

func (p *inlineParser) parse(text string) []Span {
	var spans []Span
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			spans = append(spans, &Text{Text: literal.String()})
			literal.Reset()
		}
	}

	i := 0
	for i < len(text) {
		c := text[i]
		switch c {
		case '\\':
			// 转义：下一个字符按字面输出
			if i+1 < len(text) {
				literal.WriteByte(text[i+1])
				i += 2
			} else {
				literal.WriteByte('\\')
				i++
			}

		case '`':
			end := strings.IndexByte(text[i+1:], '`')
			if end < 0 {
				p.doc.notice(p.line, "未配对的反引号，按字面文本处理")
				literal.WriteByte('`')
				i++
				break
			}
			flush()
			spans = append(spans, &Code{Text: text[i+1 : i+1+end]})
			i += end + 2

		case '*':
			// ** 优先按加粗定界符处理，单个 * 按斜体
			if i+1 < len(text) && text[i+1] == '*' {
				rest := text[i+2:]
				end := indexUnescaped(rest, "**")
				if end < 0 {
					p.doc.notice(p.line, "未配对的加粗标记，按字面文本处理")
					literal.WriteString("**")
					i += 2
					break
				}
				// 闭合候选落在更长的星号串内且内容里还有未配对的单星号时，
				// 右移一位让内层斜体先配对（**加粗 *斜体*** 的情形）
				if end+2 < len(rest) && rest[end+2] == '*' && countUnescapedStars(rest[:end])%2 == 1 {
					end++
				}
				flush()
				spans = append(spans, &Bold{Children: p.parse(text[i+2 : i+2+end])})
				i += end + 4
				break
			}
			end := indexUnescaped(text[i+1:], "*")
			if end < 0 {
				p.doc.notice(p.line, "未配对的斜体标记，按字面文本处理")
				literal.WriteByte('*')
				i++
				break
			}
			flush()
			spans = append(spans, &Italic{Children: p.parse(text[i+1 : i+1+end])})
			i += end + 2

		case '[':
			label, url, next, ok := matchLink(text, i)
			if !ok {
				literal.WriteByte('[')
				i++
				break
			}
			flush()
			spans = append(spans, &Link{Children: p.parse(label), URL: url})
			i = next

		default:
			literal.WriteByte(c)
			i++
		}
	}
	flush()
	return spans
}

// countUnescapedStars 统计未被转义的星号个数
func countUnescapedStars(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '*':
			n++
		}
	}
	return n
}

// indexUnescaped 查找未被反斜杠转义的定界符位置
func indexUnescaped(s, delim string) int {
	from := 0
	for {
		idx := strings.Index(s[from:], delim)
		if idx < 0 {
			return -1
		}
		abs := from + idx
		if abs > 0 && s[abs-1] == '\\' {
			from = abs + 1
			continue
		}
		return abs
	}
}

// matchLink 尝试匹配 [label](url)，返回标签、地址和下一个扫描位置
func matchLink(text string, start int) (label, url string, next int, ok bool) {
	closeBracket := indexUnescaped(text[start+1:], "]")
	if closeBracket < 0 {
		return "", "", 0, false
	}
	labelEnd := start + 1 + closeBracket
	if labelEnd+1 >= len(text) || text[labelEnd+1] != '(' {
		return "", "", 0, false
	}
	closeParen := strings.IndexByte(text[labelEnd+2:], ')')
	if closeParen < 0 {
		return "", "", 0, false
	}
	label = text[start+1 : labelEnd]
	url = text[labelEnd+2 : labelEnd+2+closeParen]
	return label, url, labelEnd + 2 + closeParen + 1, true
}
