package layout

// TextBlock 描述一个标签加多行内容的文本块。
type TextBlock struct {
	Name  string
	Kind  BlockKind // 为空时记为 BlockText
	X     float64
	Label string
	// LabelWidth 为内容相对 X 的缩进；为 0 且有标签时按标签实际宽度加一个空格计算。
	LabelWidth float64
	Text       string
	Font       Font
	LabelFont  Font // Size 为 0 时使用 Font 的加粗版本
	Color      Color
	Pitch      float64
	// WrapWidth 为整个块（含标签缩进）的宽度，0 表示只按显式换行拆分。
	WrapWidth float64
	// Align 为 center/right 时 X 分别是中心点与右边缘，标签不参与对齐。
	Align Align
	// Baseline 为 true 时游标 Y 即首行基线（固定坐标），否则为首行顶部。
	Baseline bool
}

// DrawBlock 绘制文本块并返回推进后的游标。标签与首行同一行；
// 推进量为 max(1, 行数) × Pitch，空内容只画标签并推进一行。
func DrawBlock(t Target, c Cursor, b TextBlock) Cursor {
	lines, contentX := b.layoutLines(t)
	return b.drawSegment(t, c, lines, contentX, true)
}

// DrawBlockSplit 从游标处逐行绘制文本块，当前页放不下的行续排到新页。
// 每个页段记录一个 LayoutBlock，标签只出现在第一段。页首连一行都放不下时照常输出。
func DrawBlockSplit(t Target, c Cursor, b TextBlock) Cursor {
	lines, contentX := b.layoutLines(t)
	if b.Pitch <= 0 || len(lines) <= 1 || c.Fits(b.advance(len(lines))) {
		if !c.Fits(b.Pitch) && !atTop(c) {
			t.NewPage()
			c = NewPage(c)
		}
		return b.drawSegment(t, c, lines, contentX, true)
	}
	first := true
	for len(lines) > 0 {
		n := int((c.Remaining + epsilon) / b.Pitch)
		if n < 1 {
			if !atTop(c) {
				t.NewPage()
				c = NewPage(c)
				continue
			}
			n = 1
		}
		n = min(n, len(lines))
		c = b.drawSegment(t, c, lines[:n], contentX, first)
		lines = lines[n:]
		first = false
		if len(lines) > 0 {
			t.NewPage()
			c = NewPage(c)
		}
	}
	return c
}

func (b TextBlock) drawSegment(t Target, c Cursor, lines []RichLine, contentX float64, withLabel bool) Cursor {
	font := b.Font
	baseline := c.Y
	if !b.Baseline {
		baseline -= t.Ascent(font)
	}
	if withLabel && b.Label != "" {
		labelFont := b.labelFont()
		t.DrawText(TextBox{Content: b.Label, X: b.X, Y: baseline, Width: t.TextWidth(b.Label, labelFont), Font: labelFont, Color: b.Color})
	}
	for i, line := range lines {
		drawRichLine(t, line, b.Align, contentX, baseline-float64(i)*b.Pitch, font, b.Color)
	}

	h := b.advance(len(lines))
	kind := b.Kind
	if kind == "" {
		kind = BlockText
	}
	anchor := AnchorFlow
	if b.Baseline {
		anchor = AnchorAbsolute
	}
	t.AddBlock(LayoutBlock{Kind: kind, Name: b.Name, Anchor: anchor, X: b.X, Top: c.Y, Height: h})
	return Advance(c, h)
}

// MeasureBlock 返回 DrawBlock 将要消耗的高度。
func MeasureBlock(ts Typesetter, b TextBlock) float64 {
	lines, _ := b.layoutLines(ts)
	return b.advance(len(lines))
}

func (b TextBlock) advance(lines int) float64 {
	return float64(max(1, lines)) * b.Pitch
}

func (b TextBlock) labelFont() Font {
	if b.LabelFont.Size == 0 {
		return b.Font.WithBold(true)
	}
	return b.LabelFont
}

// layoutLines 拆分并按需折行内容，返回内容行与内容起点。
func (b TextBlock) layoutLines(ts Typesetter) ([]RichLine, float64) {
	contentX := b.X + b.LabelWidth
	if b.Label != "" && b.LabelWidth == 0 {
		contentX += ts.TextWidth(b.Label, b.labelFont()) + ts.TextWidth(" ", b.Font)
	}
	lines := ParseMarkup(b.Text)
	if b.WrapWidth > 0 {
		lines = WrapLines(ts, lines, b.Font, b.WrapWidth-(contentX-b.X))
	}
	return lines, contentX
}

// drawRichLine 逐段输出一行文本；align 为 center/right 时 x 为中心点或右边缘。
func drawRichLine(t Target, line RichLine, align Align, x, y float64, font Font, color Color) {
	if len(line) == 0 {
		return
	}
	x = alignX(align, x, 0, lineWidth(t, line, font))
	for _, r := range line {
		f := font.WithBold(font.Bold || r.Bold)
		w := t.TextWidth(r.Text, f)
		t.DrawText(TextBox{Content: r.Text, X: x, Y: y, Width: w, Font: f, Color: color})
		x += w
	}
}
