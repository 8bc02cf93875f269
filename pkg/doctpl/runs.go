package doctpl

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yockii/office_tools/pkg/docgen"
)

// runRecord 段落内的一个<w:r>，偏移相对段落XML起点。
// textStart/textEnd是run文本在压平文本中的区间
type runRecord struct {
	xmlStart, xmlEnd   int
	rPr                string
	textStart, textEnd int
}

// element 段落顶层的一个可替换单元：单个run，
// 或一组被<w:hyperlink>包裹的run
type element struct {
	xmlStart, xmlEnd   int
	flatStart, flatEnd int
	runs               []runRecord
	hyperlink          bool
}

type interval struct {
	start, end int
}

// extractElements 抽取段落的run序列并压平文本。
// 占位符可以横跨多个run（编辑器常把一段文字拆成碎run），
// 压平后统一定位
func extractElements(p string) ([]element, string) {
	hyperlinks := findHyperlinks(p)

	var flat strings.Builder
	var runs []runRecord
	pos := 0
	for {
		idx := findTag(p, pos, "<w:r")
		if idx < 0 {
			break
		}
		if strings.HasPrefix(p[idx:], "<w:r/>") {
			pos = idx + len("<w:r/>")
			continue
		}
		end := strings.Index(p[idx:], "</w:r>")
		if end < 0 {
			break
		}
		end += idx + len("</w:r>")

		runXML := p[idx:end]
		text := extractRunText(runXML)
		start := flat.Len()
		flat.WriteString(text)
		runs = append(runs, runRecord{
			xmlStart:  idx,
			xmlEnd:    end,
			rPr:       extractRPr(runXML),
			textStart: start,
			textEnd:   flat.Len(),
		})
		pos = end
	}

	// 同一超链接内的run合并为一个元素，替换波及时整体展开
	var elements []element
	for i := 0; i < len(runs); i++ {
		r := runs[i]
		hl, inHyperlink := enclosingHyperlink(hyperlinks, r.xmlStart)
		if !inHyperlink {
			elements = append(elements, element{
				xmlStart: r.xmlStart, xmlEnd: r.xmlEnd,
				flatStart: r.textStart, flatEnd: r.textEnd,
				runs: []runRecord{r},
			})
			continue
		}
		group := []runRecord{r}
		for i+1 < len(runs) && runs[i+1].xmlStart < hl.end {
			i++
			group = append(group, runs[i])
		}
		elements = append(elements, element{
			xmlStart: hl.start, xmlEnd: hl.end,
			flatStart: group[0].textStart, flatEnd: group[len(group)-1].textEnd,
			runs:      group,
			hyperlink: true,
		})
	}
	return elements, flat.String()
}

func findHyperlinks(p string) []interval {
	var links []interval
	pos := 0
	for {
		idx := findTag(p, pos, "<w:hyperlink")
		if idx < 0 {
			return links
		}
		end := strings.Index(p[idx:], "</w:hyperlink>")
		if end < 0 {
			return links
		}
		end += idx + len("</w:hyperlink>")
		links = append(links, interval{start: idx, end: end})
		pos = end
	}
}

func enclosingHyperlink(links []interval, xmlPos int) (interval, bool) {
	for _, hl := range links {
		if xmlPos >= hl.start && xmlPos < hl.end {
			return hl, true
		}
	}
	return interval{}, false
}

// findTag 从pos起查找标签起点，要求标签名完整
func findTag(p string, pos int, tag string) int {
	for {
		idx := strings.Index(p[pos:], tag)
		if idx < 0 {
			return -1
		}
		abs := pos + idx
		if len(p) > abs+len(tag) {
			c := p[abs+len(tag)]
			if c == '>' || c == ' ' || c == '/' {
				return abs
			}
		}
		pos = abs + 1
	}
}

// extractRunText 取run内全部<w:t>的文本
func extractRunText(runXML string) string {
	var b strings.Builder
	pos := 0
	for {
		idx := findTag(runXML, pos, "<w:t")
		if idx < 0 {
			break
		}
		gt := strings.IndexByte(runXML[idx:], '>')
		if gt < 0 {
			break
		}
		gt += idx
		if runXML[gt-1] == '/' { // <w:t/>
			pos = gt + 1
			continue
		}
		end := strings.Index(runXML[gt:], "</w:t>")
		if end < 0 {
			break
		}
		b.WriteString(unescapeText(runXML[gt+1 : gt+end]))
		pos = gt + end + len("</w:t>")
	}
	return b.String()
}

func extractRPr(runXML string) string {
	start := strings.Index(runXML, "<w:rPr>")
	if start < 0 {
		return ""
	}
	end := strings.Index(runXML[start:], "</w:rPr>")
	if end < 0 {
		return ""
	}
	return runXML[start : start+end+len("</w:rPr>")]
}

var (
	fontPattern      = regexp.MustCompile(`w:ascii="([^"]+)"`)
	sizePattern      = regexp.MustCompile(`<w:sz w:val="(\d+)"`)
	boldPattern      = regexp.MustCompile(`<w:b(?:\s+w:val="(?:1|true|on)")?\s*/>`)
	italicPattern    = regexp.MustCompile(`<w:i(?:\s+w:val="(?:1|true|on)")?\s*/>`)
	underlinePattern = regexp.MustCompile(`<w:u w:val="([^"]+)"`)
)

// snapshotAt 取占位符起始位置所在run的格式快照，
// 替换内容以它为继承基线
func snapshotAt(elements []element, flatPos int) docgen.RunFormat {
	for _, e := range elements {
		for _, r := range e.runs {
			if flatPos >= r.textStart && flatPos < r.textEnd {
				return snapshotFormat(r.rPr, e.hyperlink)
			}
		}
	}
	return docgen.RunFormat{}
}

func snapshotFormat(rPr string, hyperlink bool) docgen.RunFormat {
	f := docgen.RunFormat{Hyperlink: hyperlink}
	if m := fontPattern.FindStringSubmatch(rPr); m != nil {
		f.Font = m[1]
	}
	if m := sizePattern.FindStringSubmatch(rPr); m != nil {
		f.Size, _ = strconv.Atoi(m[1])
	}
	f.Bold = boldPattern.MatchString(rPr)
	f.Italic = italicPattern.MatchString(rPr)
	if m := underlinePattern.FindStringSubmatch(rPr); m != nil && m[1] != "none" {
		f.Underline = true
	}
	return f
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

var textUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// numericRefPattern 数字字符引用，如 &#8217; 和 &#x2019;
var numericRefPattern = regexp.MustCompile(`&#(?:x[0-9a-fA-F]+|[0-9]+);`)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// unescapeText 还原XML转义。数字字符引用解码为字符本身，
// 否则重建run时会被再次转义成字面的&amp;#NNNN;
func unescapeText(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	s = numericRefPattern.ReplaceAllStringFunc(s, func(m string) string {
		body := m[2 : len(m)-1]
		base := 10
		if body[0] == 'x' {
			base = 16
			body = body[1:]
		}
		n, err := strconv.ParseInt(body, base, 32)
		if err != nil || n <= 0 || !utf8.ValidRune(rune(n)) {
			return m
		}
		return string(rune(n))
	})
	return textUnescaper.Replace(s)
}
