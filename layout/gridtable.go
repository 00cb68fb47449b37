package layout

// gridDescent 是基线到单元格下边框的距离。
const gridDescent = 4.0

// GridColumn 为固定网格中的一列，X 为数据行文本起点。
type GridColumn struct {
	X     float64
	Width float64 // 只有最后一列的宽度有意义，用于确定右边框
}

// Grid 是按绝对坐标绘制的固定行高表格。
type Grid struct {
	Name       string
	Headers    []string
	HeaderX    []float64 // 表头文本起点，为空时与列 X 相同
	Rows       [][]string
	Columns    []GridColumn
	RowHeight  float64
	Font       Font
	HeaderFont Font
	Borders    bool
	LineWidth  float64
	LineColor  Color
}

// DrawGrid 在 topY（表头基线）处绘制表头，第 i 行基线为 topY - RowHeight*(i+1)，
// 返回最后一行单元格底边的 y。不做页面底部检查，越界由 Target 计数。
func DrawGrid(t Target, topY float64, g Grid) float64 {
	for i, h := range g.Headers {
		if i >= len(g.Columns) {
			break
		}
		x := g.Columns[i].X
		if i < len(g.HeaderX) {
			x = g.HeaderX[i]
		}
		if h != "" {
			t.DrawText(TextBox{Content: h, X: x, Y: topY, Width: t.TextWidth(h, g.HeaderFont), Font: g.HeaderFont})
		}
	}

	rows := make([]RowBox, 0, len(g.Rows)+1)
	rows = append(rows, RowBox{Index: -1, Top: topY - gridDescent + g.RowHeight, Height: g.RowHeight, IsHeader: true})
	for i, row := range g.Rows {
		y := topY - g.RowHeight*float64(i+1)
		for j, cell := range row {
			if j >= len(g.Columns) || cell == "" {
				continue
			}
			t.DrawText(TextBox{Content: cell, X: g.Columns[j].X, Y: y, Width: t.TextWidth(cell, g.Font), Font: g.Font})
		}
		rows = append(rows, RowBox{Index: i, Top: y - gridDescent + g.RowHeight, Height: g.RowHeight})
	}

	top := topY - gridDescent + g.RowHeight
	bottom := topY - g.RowHeight*float64(len(g.Rows)) - gridDescent
	if g.Borders && len(g.Columns) > 0 {
		drawGridBorders(t, g, top, bottom)
	}
	t.AddBlock(LayoutBlock{
		Kind:   BlockGrid,
		Name:   g.Name,
		Anchor: AnchorAbsolute,
		X:      g.Left(),
		Top:    top,
		Height: top - bottom,
		Rows:   rows,
	})
	return bottom
}

// Left 返回网格左边缘。
func (g Grid) Left() float64 {
	if len(g.Columns) == 0 {
		return 0
	}
	return g.Columns[0].X
}

func (g Grid) right() float64 {
	last := g.Columns[len(g.Columns)-1]
	return last.X + last.Width
}

// drawGridBorders 只围住表头与实际输出的数据行。
func drawGridBorders(t Target, g Grid, top, bottom float64) {
	left, right := g.Left(), g.right()
	line := func(x1, y1, x2, y2 float64) {
		t.DrawLine(Line{X1: x1, Y1: y1, X2: x2, Y2: y2, Color: g.LineColor, Width: g.LineWidth})
	}
	for k := 0; k <= len(g.Rows)+1; k++ {
		y := top - g.RowHeight*float64(k)
		line(left, y, right, y)
	}
	for _, col := range g.Columns {
		line(col.X, top, col.X, bottom)
	}
	line(right, top, right, bottom)
}
