package layout

// Target 是渲染函数面对的绘制目标：在 (x, y) 画文本、画线、画矩形、放图片、开新页。
// 度量委托给后端的 Typesetter。
type Target interface {
	Typesetter
	DrawText(tb TextBox)
	DrawLine(l Line)
	DrawRect(r Rect)
	DrawImage(img ImageBox)
	AddBlock(b LayoutBlock)
	NewPage()
	PageIndex() int
}

type pageAccumulator struct {
	texts  []TextBox
	images []ImageBox
	rects  []Rect
	lines  []Line
	blocks []LayoutBlock
}

// Collector 按页收集图元，是 Target 的唯一实现。
// 它只在一次构建内存活，由装配器独占。
type Collector struct {
	ts       Typesetter
	width    float64
	height   float64
	margin   Margin
	accs     []*pageAccumulator
	current  int
	overflow Overflow
	warnings []string
	onPage   func(index int)
}

var _ Target = (*Collector)(nil)

// NewCollector 创建一个已包含第一页的收集器。
func NewCollector(ts Typesetter, width, height float64, margin Margin) *Collector {
	pc := &Collector{
		ts:     ts,
		width:  width,
		height: height,
		margin: margin,
	}
	pc.newPage()
	return pc
}

func (pc *Collector) TextWidth(text string, font Font) float64 { return pc.ts.TextWidth(text, font) }
func (pc *Collector) Ascent(font Font) float64                 { return pc.ts.Ascent(font) }

// DrawText 记录一段正文文本，并统计落在可打印区域之外的基线。
func (pc *Collector) DrawText(tb TextBox) {
	switch {
	case tb.Y < 0:
		pc.overflow.OffCanvas++
	case tb.Y < pc.margin.Bottom-epsilon:
		pc.overflow.BelowMargin++
	}
	pc.DrawMarginText(tb)
}

// DrawMarginText 记录页边区域内的文本（页脚品牌行、页码），不计入溢出。
func (pc *Collector) DrawMarginText(tb TextBox) {
	if tb.Width == 0 && tb.Content != "" {
		tb.Width = pc.ts.TextWidth(tb.Content, tb.Font)
	}
	pc.curr().texts = append(pc.curr().texts, tb)
}

func (pc *Collector) DrawLine(l Line)        { pc.curr().lines = append(pc.curr().lines, l) }
func (pc *Collector) DrawRect(r Rect)        { pc.curr().rects = append(pc.curr().rects, r) }
func (pc *Collector) DrawImage(img ImageBox) { pc.curr().images = append(pc.curr().images, img) }
func (pc *Collector) AddBlock(b LayoutBlock) { pc.curr().blocks = append(pc.curr().blocks, b) }
func (pc *Collector) NewPage()               { pc.newPage() }
func (pc *Collector) PageIndex() int         { return pc.current }
func (pc *Collector) PageCount() int         { return len(pc.accs) }
func (pc *Collector) Overflow() Overflow     { return pc.overflow }
func (pc *Collector) Warn(msg string)        { pc.warnings = append(pc.warnings, msg) }

// OnNewPage 注册新页回调（例如绘制背景）；注册时对已有页面立即补调一次。
func (pc *Collector) OnNewPage(fn func(index int)) {
	pc.onPage = fn
	if fn == nil {
		return
	}
	cur := pc.current
	for i := range pc.accs {
		pc.current = i
		fn(i)
	}
	pc.current = cur
}

// EachPage 依次切换到每一页执行 fn，用于页码等需要总页数的页面装饰。
func (pc *Collector) EachPage(fn func(index, total int)) {
	cur := pc.current
	for i := range pc.accs {
		pc.current = i
		fn(i, len(pc.accs))
	}
	pc.current = cur
}

func (pc *Collector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	if pc.onPage != nil {
		pc.onPage(pc.current)
	}
	return acc
}

func (pc *Collector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		return pc.newPage()
	}
	return pc.accs[pc.current]
}

// Result 汇总全部页面。
func (pc *Collector) Result(meta DocumentMeta, strategy Strategy) *Result {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Width:  pc.width,
			Height: pc.height,
			Margin: pc.margin,
			Images: acc.images,
			Rects:  acc.rects,
			Lines:  acc.lines,
			Texts:  acc.texts,
			Blocks: acc.blocks,
		}
	}
	return &Result{
		Pages:    out,
		Meta:     meta,
		Strategy: strategy,
		Overflow: pc.overflow,
		Warnings: append([]string(nil), pc.warnings...),
	}
}
