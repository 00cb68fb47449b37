package layout

import "fmt"

// flowLayout 以一个游标贯穿全部区块：每个区块先测量，放不下就换页，
// 每页都绘制背景、品牌行与页码。
type flowLayout struct{}

func (flowLayout) begin(a *assembler) {
	a.col.OnNewPage(func(int) {
		a.drawBackground()
		a.drawBranding(a.width/2, a.tpl.Margin.Bottom/2)
	})
}

func (flowLayout) header(a *assembler) {
	tpl := a.tpl
	top := a.cur.Y
	logoBottom := top
	if a.logo != nil {
		w, h := fitHeight(a.logoCfg, tpl.LogoHeight)
		logo := *a.logo
		logo.X, logo.Y, logo.Width, logo.Height = tpl.Margin.Left, top-h, w, h
		a.col.DrawImage(logo)
		a.col.AddBlock(LayoutBlock{Kind: BlockImage, Name: "logo", Anchor: AnchorFlow, X: logo.X, Top: top, Height: h})
		logoBottom = top - h
	}
	a.cur = DrawBlock(a.col, a.cur, TextBlock{
		Name:  "heading",
		Kind:  BlockHeading,
		X:     a.width / 2,
		Text:  a.text(tpl.Heading),
		Font:  tpl.font(tpl.HeadingSize).WithBold(true),
		Pitch: tpl.HeadingPitch,
		Align: AlignCenter,
	})
	if logoBottom < a.cur.Y {
		a.cur = Advance(a.cur, a.cur.Y-logoBottom)
	}
	a.gap()
}

func (flowLayout) parties(a *assembler) {
	tpl := a.tpl
	for _, p := range a.doc.Parties() {
		a.place(TextBlock{
			Name:       string(p.Role),
			X:          tpl.Margin.Left,
			Label:      p.Label + ":",
			LabelWidth: tpl.PartyLabelWidth,
			Text:       p.Text,
			Font:       a.body(),
			Pitch:      tpl.PartyPitch,
			WrapWidth:  a.contentWidth(),
		})
		a.gap()
	}
}

// shipmentMeta 以四列 label/value 表格输出全部运输字段。
func (flowLayout) shipmentMeta(a *assembler) {
	tpl := a.tpl
	pairs := a.doc.Header().Pairs()
	rows := make([][]string, 0, (len(pairs)+1)/2)
	for i := 0; i < len(pairs); i += 2 {
		row := []string{pairs[i].Label, pairs[i].Value, "", ""}
		if i+1 < len(pairs) {
			row[2], row[3] = pairs[i+1].Label, pairs[i+1].Value
		}
		rows = append(rows, row)
	}
	a.cur, _ = DrawFlowTable(a.col, a.cur, FlowTable{
		Name:        "shipment",
		X:           tpl.Margin.Left,
		Width:       a.contentWidth(),
		Columns:     tpl.MetaColumns,
		Rows:        rows,
		Rules:       tpl.MetaRules,
		Font:        a.body(),
		Padding:     tpl.TablePadding,
		Leading:     tpl.TableLeading,
		GridWidth:   tpl.GridWidth,
		BoxWidth:    tpl.BoxWidth,
		BorderColor: BorderGray,
	})
	a.gap()
}

func (flowLayout) goods(a *assembler) {
	tpl := a.tpl
	var stats TableStats
	a.cur, stats = DrawFlowTable(a.col, a.cur, FlowTable{
		Name:         "goods",
		X:            tpl.Margin.Left,
		Width:        a.contentWidth(),
		Columns:      tpl.GoodsColumns,
		Header:       tpl.GoodsHeaders,
		Rows:         a.goodsRows(),
		Rules:        tpl.GoodsRules,
		Font:         tpl.font(tpl.TableSize),
		Padding:      tpl.TablePadding,
		Leading:      tpl.TableLeading,
		GridWidth:    tpl.GridWidth,
		BoxWidth:     tpl.BoxWidth,
		BorderColor:  BorderGray,
		RepeatHeader: tpl.RepeatHeader,
	})
	a.log.Debug("layout: goods table", "rows", stats.DataRows, "pages", stats.Pages, "oversized", stats.Oversized)
	if stats.Oversized > 0 {
		a.col.Warn(fmt.Sprintf("goods table: %d row(s) taller than a page", stats.Oversized))
	}
	a.gap()
}

func (flowLayout) footer(a *assembler) {
	tpl := a.tpl
	drawn := false
	for _, f := range a.doc.Footer() {
		if !f.Present() {
			continue
		}
		a.place(TextBlock{
			Name:       f.Key,
			Kind:       BlockFooter,
			X:          tpl.Margin.Left,
			Label:      f.Label + ":",
			LabelWidth: tpl.FooterLabelWidth,
			Text:       f.Value,
			Font:       a.body(),
			Pitch:      tpl.FooterPitch,
			WrapWidth:  a.contentWidth(),
		})
		drawn = true
	}
	if drawn {
		a.gap()
	}
}

// declaration 保证标题与至少第一行声明文字在同一页，正文放不下时逐行续排。
func (flowLayout) declaration(a *assembler) {
	tpl := a.tpl
	title := TextBlock{
		Name:  "declaration-title",
		Kind:  BlockDeclaration,
		X:     a.width / 2,
		Text:  a.text(tpl.DeclarationTitle),
		Font:  a.body().WithBold(true),
		Pitch: tpl.DeclarationPitch,
		Align: AlignCenter,
	}
	body := TextBlock{
		Name:      "declaration",
		Kind:      BlockDeclaration,
		X:         tpl.Margin.Left,
		Text:      a.doc.Declaration(),
		Font:      tpl.font(tpl.DeclarationSize),
		Pitch:     tpl.DeclarationPitch,
		WrapWidth: a.contentWidth(),
	}
	need := MeasureBlock(a.col, title) + MeasureBlock(a.col, body)
	if need > a.cur.Drawable() {
		need = MeasureBlock(a.col, title) + tpl.DeclarationPitch
	}
	a.ensure(need)
	a.cur = DrawBlock(a.col, a.cur, title)
	if body.Text != "" {
		a.cur = DrawBlockSplit(a.col, a.cur, body)
	}
	a.gap()
}

func (flowLayout) signature(a *assembler) {
	tpl := a.tpl
	need := tpl.FooterPitch*3 + tpl.BlockGap
	a.ensure(need)
	caption := a.cur.Y - tpl.BlockGap - a.col.Ascent(a.body())
	right := a.width - tpl.Margin.Right
	drawSignature(a, right, caption, caption-tpl.FooterPitch, caption-2*tpl.FooterPitch, fixedRuleLength)
	a.cur = Advance(a.cur, need)
}

func (flowLayout) finish(a *assembler) {
	format := a.tpl.PageNumbers
	if format == "" {
		return
	}
	font := a.tpl.font(a.tpl.BrandingSize)
	right := a.width - a.tpl.Margin.Right
	y := a.tpl.Margin.Bottom / 2
	a.col.EachPage(func(index, total int) {
		text := fmt.Sprintf(format, index+1, total)
		w := a.col.TextWidth(text, font)
		a.col.DrawMarginText(TextBox{Content: text, X: right - w, Y: y, Width: w, Font: font})
	})
}

// ensure 在剩余空间放不下 h 时换页；页首仍放不下时照常输出，由 Collector 计入溢出。
func (a *assembler) ensure(h float64) {
	if a.cur.Fits(h) || atTop(a.cur) {
		return
	}
	a.log.Debug("layout: page break", "page", a.cur.Page, "need", h, "remaining", a.cur.Remaining)
	a.col.NewPage()
	a.cur = NewPage(a.cur)
}

// place 测量文本块：新页能整块放下时换页后整块绘制，否则从当前位置逐行续排。
func (a *assembler) place(b TextBlock) {
	h := MeasureBlock(a.col, b)
	if h <= a.cur.Drawable()+epsilon {
		a.ensure(h)
		a.cur = DrawBlock(a.col, a.cur, b)
		return
	}
	a.log.Debug("layout: splitting block across pages", "block", b.Name, "height", h)
	a.cur = DrawBlockSplit(a.col, a.cur, b)
}

func (a *assembler) gap() {
	if atTop(a.cur) {
		return
	}
	a.cur = Advance(a.cur, a.tpl.BlockGap)
}
