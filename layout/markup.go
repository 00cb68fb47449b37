package layout

import (
	"regexp"
	"strings"
)

// 支持的标记只有两种：换行（\n、<br>、<br/>）与加粗（<b>…</b>），其余标签按原文输出。
var (
	breakPattern = regexp.MustCompile(`(?i)<br\s*/?>`)
	boldPattern  = regexp.MustCompile(`(?i)</?b>`)
)

// Run 是一段单一样式的文本。
type Run struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// RichLine 是一行由若干 Run 组成的文本。
type RichLine []Run

// Plain 返回去掉样式后的文本。
func (l RichLine) Plain() string {
	var b strings.Builder
	for _, r := range l {
		b.WriteString(r.Text)
	}
	return b.String()
}

// SplitLines 只按显式换行标记拆分文本：末尾的单个换行不产生空行，空文本返回 nil。
// 控制字符原样保留。
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = breakPattern.ReplaceAllString(text, "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// ParseMarkup 拆分行并解析 <b> 标记，加粗状态可以跨行延续。
func ParseMarkup(text string) []RichLine {
	lines := SplitLines(text)
	if len(lines) == 0 {
		return nil
	}
	out := make([]RichLine, 0, len(lines))
	bold := false
	for _, line := range lines {
		var rl RichLine
		rl, bold = parseBoldRuns(line, bold)
		out = append(out, rl)
	}
	return out
}

func parseBoldRuns(line string, bold bool) (RichLine, bool) {
	var out RichLine
	last := 0
	for _, loc := range boldPattern.FindAllStringIndex(line, -1) {
		if loc[0] > last {
			out = appendRun(out, Run{Text: line[last:loc[0]], Bold: bold})
		}
		bold = !strings.HasPrefix(line[loc[0]:loc[1]], "</")
		last = loc[1]
	}
	if last < len(line) {
		out = appendRun(out, Run{Text: line[last:], Bold: bold})
	}
	if out == nil {
		out = RichLine{}
	}
	return out, bold
}

// appendRun 合并相邻同样式的片段。
func appendRun(line RichLine, r Run) RichLine {
	if r.Text == "" {
		return line
	}
	if n := len(line); n > 0 && line[n-1].Bold == r.Bold {
		line[n-1].Text += r.Text
		return line
	}
	return append(line, r)
}
