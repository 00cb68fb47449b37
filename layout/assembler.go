package layout

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ByLCY/packlist/binding"
	"github.com/ByLCY/packlist/invoice"
)

// State 是装配器的状态，严格按声明顺序推进。
type State int

const (
	StateHeader State = iota
	StatePartyBlocks
	StateShipmentMeta
	StateGoods
	StateFooter
	StateDeclaration
	StateSignature
	StateDone
)

var stateNames = [...]string{"Header", "PartyBlocks", "ShipmentMeta", "Goods", "Footer", "Declaration", "Signature", "Done"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) next() State {
	if s >= StateDone {
		return StateDone
	}
	return s + 1
}

// strategy 为每个状态提供一种绘制方式。固定布局与流式布局各实现一份。
type strategy interface {
	begin(a *assembler)
	header(a *assembler)
	parties(a *assembler)
	shipmentMeta(a *assembler)
	goods(a *assembler)
	footer(a *assembler)
	declaration(a *assembler)
	signature(a *assembler)
	finish(a *assembler)
}

// assembler 只在一次 Build 内存活，持有该次构建的全部可变状态。
type assembler struct {
	doc    *invoice.Document
	tpl    *Template
	col    *Collector
	cur    Cursor
	log    *slog.Logger
	data   map[string]any
	width  float64
	height float64

	background *ImageBox
	logo       *ImageBox
	logoCfg    image.Config
	trace      []State
}

// Build 把文档排版为按页组织的图元。相同输入总是得到相同结果。
func Build(doc *invoice.Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if opts.Typesetter == nil {
		return nil, ErrNoTypesetter
	}
	name := opts.Strategy
	if name == "" {
		name = StrategyFlow
	}
	var st strategy
	switch name {
	case StrategyFixed:
		st = fixedLayout{}
	case StrategyFlow:
		st = flowLayout{}
	default:
		return nil, fmt.Errorf("layout: unknown strategy %q", name)
	}

	a := newAssembler(doc, opts)
	a.checkPlaceholders()
	a.loadAssets(opts.Background, opts.Logo)
	a.run(st)

	res := a.col.Result(a.meta(), name)
	if name == StrategyFixed && res.Overflow.Any() {
		a.log.Warn("layout: content overflows the fixed template",
			"below_margin", res.Overflow.BelowMargin,
			"off_canvas", res.Overflow.OffCanvas,
			"items", len(doc.Items()))
	}
	return res, nil
}

func newAssembler(doc *invoice.Document, opts Options) *assembler {
	tpl := opts.Template.Clone()
	data := doc.Fields()
	if _, ok := data["company"]; !ok {
		data["company"] = tpl.Company
	}
	width, height := A4Width, A4Height
	col := NewCollector(opts.Typesetter, width, height, tpl.Margin)
	return &assembler{
		doc:    doc,
		tpl:    tpl,
		col:    col,
		cur:    NewCursor(height-tpl.Margin.Top, tpl.Margin.Bottom),
		log:    opts.logger(),
		data:   data,
		width:  width,
		height: height,
	}
}

func (a *assembler) run(st strategy) {
	st.begin(a)
	for s := StateHeader; s != StateDone; s = s.next() {
		a.trace = append(a.trace, s)
		a.log.Debug("layout: state", "state", s.String(), "page", a.cur.Page, "y", a.cur.Y)
		switch s {
		case StateHeader:
			st.header(a)
		case StatePartyBlocks:
			st.parties(a)
		case StateShipmentMeta:
			st.shipmentMeta(a)
		case StateGoods:
			st.goods(a)
		case StateFooter:
			st.footer(a)
		case StateDeclaration:
			st.declaration(a)
		case StateSignature:
			st.signature(a)
		}
	}
	a.trace = append(a.trace, StateDone)
	st.finish(a)
}

// loadAssets 加载可选图片；失败时记录警告并省略对应元素。
func (a *assembler) loadAssets(background, logo string) {
	if background != "" {
		if box, _, err := loadAsset("background", background); err != nil {
			a.assetWarning(err)
		} else {
			a.background = &box
		}
	}
	if logo != "" {
		if box, cfg, err := loadAsset("logo", logo); err != nil {
			a.assetWarning(err)
		} else {
			a.logo = &box
			a.logoCfg = cfg
		}
	}
}

func (a *assembler) assetWarning(err error) {
	var ae *AssetError
	if errors.As(err, &ae) {
		a.log.Warn("layout: asset skipped", "kind", ae.Kind, "path", ae.Path, "error", ae.Err)
	}
	a.col.Warn(err.Error())
}

// checkPlaceholders 对模板中无法解析的 ${field} 记录警告；占位符原样输出。
func (a *assembler) checkPlaceholders() {
	tpl := a.tpl
	for _, s := range []string{tpl.Heading, tpl.Signature, tpl.Signatory, tpl.Branding, tpl.DeclarationTitle,
		tpl.Meta.Title, tpl.Meta.Author, tpl.Meta.Subject, tpl.Meta.Creator} {
		for _, field := range binding.Missing(s, a.data) {
			a.log.Warn("layout: unresolved template field", "field", field)
			a.col.Warn(fmt.Sprintf("layout: unresolved template field %q", field))
		}
	}
}

// text 对模板字符串做字段插值。
func (a *assembler) text(s string) string {
	return binding.Interpolate(s, a.data)
}

func (a *assembler) meta() DocumentMeta {
	m := a.tpl.Meta
	return DocumentMeta{
		Title:   a.text(m.Title),
		Author:  a.text(m.Author),
		Subject: a.text(m.Subject),
		Creator: a.text(m.Creator),
	}
}

// drawBackground 把背景图铺满当前页。
func (a *assembler) drawBackground() {
	if a.background == nil {
		return
	}
	bg := *a.background
	bg.X, bg.Y, bg.Width, bg.Height = 0, 0, a.width, a.height
	a.col.DrawImage(bg)
}

// drawBranding 在页脚居中绘制品牌行，cx 为中心点。
func (a *assembler) drawBranding(cx, y float64) {
	text := a.text(a.tpl.Branding)
	if text == "" {
		return
	}
	font := a.tpl.font(a.tpl.BrandingSize).WithBold(true)
	w := a.col.TextWidth(text, font)
	a.col.DrawMarginText(TextBox{Content: text, X: cx - w/2, Y: y, Width: w, Font: font})
}

func (a *assembler) body() Font { return a.tpl.font(a.tpl.BodySize) }

func (a *assembler) contentWidth() float64 {
	return a.width - a.tpl.Margin.Left - a.tpl.Margin.Right
}

func (a *assembler) goodsRows() [][]string {
	items := a.doc.Items()
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = it.Cells()
	}
	return rows
}
