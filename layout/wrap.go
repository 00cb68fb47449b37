package layout

import (
	"math"
	"strings"
	"unicode"
)

type styledToken struct {
	text  string
	bold  bool
	space bool
}

// WrapLines 对每一行做贪心折行：优先在空白处断开，单词超宽时按字符拆分。
// limit <= 0 时不折行。
func WrapLines(ts Typesetter, lines []RichLine, font Font, limit float64) []RichLine {
	var out []RichLine
	for _, l := range lines {
		out = append(out, wrapLine(ts, l, font, limit)...)
	}
	return out
}

func wrapLine(ts Typesetter, line RichLine, font Font, limit float64) []RichLine {
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	if lineWidth(ts, line, font) <= limit {
		return []RichLine{line}
	}

	var (
		lines   []RichLine
		current RichLine
		width   float64
	)
	emit := func() {
		lines = append(lines, trimTrailingSpace(current))
		current = nil
		width = 0
	}
	appendToken := func(tok styledToken, w float64) {
		current = appendRun(current, Run{Text: tok.text, Bold: tok.bold})
		width += w
	}

	for _, tok := range tokenizeRuns(line) {
		f := font.WithBold(font.Bold || tok.bold)
		w := ts.TextWidth(tok.text, f)
		if tok.space {
			// 行首空白丢弃，行尾空白在 emit 时裁掉
			if len(current) == 0 {
				continue
			}
			appendToken(tok, w)
			continue
		}
		if width > 0 && width+w > limit {
			emit()
		}
		if w <= limit {
			appendToken(tok, w)
			continue
		}
		for _, chunk := range splitTokenByWidth(ts, tok.text, limit, f) {
			cw := ts.TextWidth(chunk, f)
			if width > 0 && width+cw > limit {
				emit()
			}
			appendToken(styledToken{text: chunk, bold: tok.bold}, cw)
		}
	}
	if len(current) > 0 || len(lines) == 0 {
		emit()
	}
	return lines
}

func tokenizeRuns(line RichLine) []styledToken {
	var tokens []styledToken
	for _, run := range line {
		var b strings.Builder
		lastWasSpace := false
		flush := func() {
			if b.Len() == 0 {
				return
			}
			tokens = append(tokens, styledToken{text: b.String(), bold: run.Bold, space: lastWasSpace})
			b.Reset()
		}
		for _, r := range run.Text {
			isSpace := unicode.IsSpace(r)
			if b.Len() > 0 && lastWasSpace != isSpace {
				flush()
			}
			lastWasSpace = isSpace
			b.WriteRune(r)
		}
		flush()
	}
	return tokens
}

func splitTokenByWidth(ts Typesetter, token string, limit float64, font Font) []string {
	var parts []string
	var b strings.Builder
	for _, r := range token {
		b.WriteRune(r)
		if ts.TextWidth(b.String(), font) > limit && b.Len() > len(string(r)) {
			runes := []rune(b.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			b.Reset()
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		parts = append(parts, b.String())
	}
	return parts
}

func trimTrailingSpace(line RichLine) RichLine {
	for len(line) > 0 {
		last := &line[len(line)-1]
		last.Text = strings.TrimRightFunc(last.Text, unicode.IsSpace)
		if last.Text != "" {
			break
		}
		line = line[:len(line)-1]
	}
	if line == nil {
		return RichLine{}
	}
	return line
}

func lineWidth(ts Typesetter, line RichLine, font Font) float64 {
	w := 0.0
	for _, r := range line {
		w += ts.TextWidth(r.Text, font.WithBold(font.Bold || r.Bold))
	}
	return w
}
