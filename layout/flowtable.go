package layout

// FlowTable 是按内容计算行高、随游标自动分页的表格。
type FlowTable struct {
	Name    string
	X       float64
	Width   float64
	Columns []ColumnDef
	Header  []string // 为空表示无表头
	Rows    [][]string
	// Rules 中行号 0 为表头，数据行从 1 开始。
	Rules        []StyleRule
	Font         Font
	Padding      Padding
	Leading      LineHeightSpec
	GridWidth    float64
	BoxWidth     float64
	BorderColor  Color
	RepeatHeader bool
}

// TableStats 汇总一次表格输出。
type TableStats struct {
	DataRows   int       `json:"dataRows"`
	HeaderRows int       `json:"headerRows"` // 表头实际输出次数
	Pages      int       `json:"pages"`      // 表格占用的页段数
	Oversized  int       `json:"oversized"`  // 高于整页可用高度的行
	RowHeights []float64 `json:"rowHeights"` // 数据行高度
	Total      float64   `json:"total"`      // 全部输出行（含表头）的高度之和
}

type cellLayout struct {
	lines []RichLine
	style CellStyle
}

type rowLayout struct {
	cells  []cellLayout
	height float64
}

// DrawFlowTable 逐行输出表格：每行先测量，放不下就结束当前页段并换页，行不会被拆分。
// 比整页还高的行单独放在新页上，越界部分由 Target 计入溢出。
func DrawFlowTable(t Target, c Cursor, ft FlowTable) (Cursor, TableStats) {
	var stats TableStats
	hasHeader := len(ft.Header) > 0
	if !hasHeader && len(ft.Rows) == 0 {
		return c, stats
	}

	if len(ft.Columns) == 0 {
		n := len(ft.Header)
		if n == 0 {
			n = len(ft.Rows[0])
		}
		ft.Columns = make([]ColumnDef, n)
	}
	widths := ResolveColumns(ft.Columns, ft.Width)
	totalRows := len(ft.Rows) + 1
	var header rowLayout
	if hasHeader {
		header = measureRow(t, ft, widths, ft.Header, 0, totalRows)
	}
	rows := make([]rowLayout, len(ft.Rows))
	for i, r := range ft.Rows {
		rows[i] = measureRow(t, ft, widths, r, i+1, totalRows)
		stats.RowHeights = append(stats.RowHeights, rows[i].height)
	}

	seg := segment{top: c.Y}
	emit := func(r rowLayout, index int, isHeader bool) {
		drawRow(t, ft, widths, r, c.Y)
		seg.rows = append(seg.rows, RowBox{Index: index, Top: c.Y, Height: r.height, IsHeader: isHeader})
		c = Advance(c, r.height)
		stats.Total += r.height
		if isHeader {
			stats.HeaderRows++
		}
	}
	closeSegment := func() {
		if len(seg.rows) == 0 {
			return
		}
		closeTableSegment(t, ft, widths, seg, c.Y)
		stats.Pages++
	}
	breakPage := func() {
		closeSegment()
		t.NewPage()
		c = NewPage(c)
		seg = segment{top: c.Y}
	}

	if hasHeader {
		// 表头不单独留在页尾
		need := header.height
		if len(rows) > 0 {
			need += rows[0].height
		}
		if !c.Fits(need) && !atTop(c) {
			breakPage()
		}
		emit(header, -1, true)
	}

	for i, r := range rows {
		// 只有表头的页段遇到超高行时不换页，表头与该行一起越界
		headerOnly := len(seg.rows) > 0 && seg.rows[len(seg.rows)-1].IsHeader
		if !c.Fits(r.height) && (len(seg.rows) > 0 || !atTop(c)) && !(headerOnly && r.height > c.Drawable()) {
			breakPage()
			if hasHeader && ft.RepeatHeader && c.Fits(header.height+r.height) {
				emit(header, -1, true)
			}
		}
		if !c.Fits(r.height) {
			stats.Oversized++
		}
		emit(r, i, false)
		stats.DataRows++
	}
	closeSegment()
	return c, stats
}

func atTop(c Cursor) bool { return c.Y >= c.Top-epsilon }

type segment struct {
	top  float64
	rows []RowBox
}

func measureRow(t Target, ft FlowTable, widths []float64, cells []string, row, totalRows int) rowLayout {
	base := CellStyle{Font: ft.Font, Border: ft.GridWidth}
	out := rowLayout{cells: make([]cellLayout, len(widths))}
	for col := range widths {
		st := resolveStyle(base, ft.Rules, row, col, totalRows, len(widths))
		if st.Align == "" {
			st.Align = ft.Columns[col].Align
		}
		text := ""
		if col < len(cells) {
			text = cells[col]
		}
		lines := WrapLines(t, ParseMarkup(text), st.Font, widths[col]-ft.Padding.Horizontal())
		n := max(1, len(lines))
		h := float64(n)*ft.Leading.Resolve(st.Font.Size) + ft.Padding.Vertical()
		out.cells[col] = cellLayout{lines: lines, style: st}
		if h > out.height {
			out.height = h
		}
	}
	return out
}

func drawRow(t Target, ft FlowTable, widths []float64, r rowLayout, top float64) {
	x := ft.X
	bottom := top - r.height
	for col, cell := range r.cells {
		w := widths[col]
		st := cell.style
		if st.Fill != nil || st.Border > 0 {
			t.DrawRect(Rect{X: x, Y: bottom, Width: w, Height: r.height, StrokeColor: ft.BorderColor, StrokeWidth: st.Border, FillColor: st.Fill})
		}
		leading := ft.Leading.Resolve(st.Font.Size)
		baseline := top - ft.Padding.Top - t.Ascent(st.Font)
		inner := w - ft.Padding.Horizontal()
		for i, line := range cell.lines {
			lx := alignX(st.Align, x+ft.Padding.Left, inner, lineWidth(t, line, st.Font))
			drawRichLine(t, line, AlignLeft, lx, baseline-float64(i)*leading, st.Font, st.TextColor)
		}
		x += w
	}
}

// closeTableSegment 为当前页段画外框并记录布局块。
func closeTableSegment(t Target, ft FlowTable, widths []float64, seg segment, bottom float64) {
	height := seg.top - bottom
	if ft.BoxWidth > 0 {
		t.DrawRect(Rect{X: ft.X, Y: bottom, Width: sum(widths), Height: height, StrokeColor: ft.BorderColor, StrokeWidth: ft.BoxWidth})
	}
	t.AddBlock(LayoutBlock{
		Kind:   BlockTable,
		Name:   ft.Name,
		Anchor: AnchorFlow,
		X:      ft.X,
		Top:    seg.top,
		Height: height,
		Rows:   seg.rows,
	})
}
