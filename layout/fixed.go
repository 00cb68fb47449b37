package layout

import "github.com/ByLCY/packlist/invoice"

// 既有单页模板的绝对坐标（pt，左下角原点）。背景图上已经印好了各栏目的标签，
// 这里只负责把值落到对应位置。
const (
	fixedHeadingY     = 810
	fixedGoodsHeaderY = 465
	fixedGoodsRowY    = 450
	fixedDeclTitleY   = 130
	fixedDeclY        = 115
	fixedDeclX        = 60
	fixedCaptionY     = 70
	fixedRuleY        = 60
	fixedSignatoryY   = 50
	fixedSignInset    = 40
	fixedRuleLength   = 110
	fixedBrandingY    = 25
	fixedBrandingLeft = 50 // 品牌行中心相对页面中线左移的距离
	fixedFooterX      = 50
)

type fixedPoint struct {
	key  string
	x, y float64
}

var (
	fixedHeaderFields = []fixedPoint{
		{"invoice_no", 420, 725},
		{"invoice_date", 420, 660},
		{"ie_code", 200, 550},
		{"buyer_order", 420, 600},
		{"port_of_loading", 420, 550},
		{"vessel_no", 420, 570},
	}
	fixedPartyAnchors = map[invoice.Role]fixedPoint{
		invoice.RoleExporter:  {string(invoice.RoleExporter), 50, 700},
		invoice.RoleConsignee: {string(invoice.RoleConsignee), 50, 600},
		invoice.RoleNotify:    {string(invoice.RoleNotify), 50, 550},
	}
	fixedMetaLine = []struct {
		label string
		fixedPoint
	}{
		{"Pre-Carriage By:", fixedPoint{"pre_carriage_by", 50, 530}},
		{"Place of Receipt:", fixedPoint{"place_of_receipt", 190, 530}},
		{"Country of Final Destination:", fixedPoint{"country_of_final_destination", 310, 515}},
		{"Port of Discharge:", fixedPoint{"port_of_discharge", 190, 500}},
		{"Terms of Payment:", fixedPoint{"terms_of_payment", 50, 500}},
	}
	fixedGoodsHeaderX = []float64{45, 200, 370, 425, 510}
	fixedGoodsColumns = []GridColumn{{X: 45}, {X: 85}, {X: 300}, {X: 370}, {X: 440, Width: 100}}
)

// fixedLayout 复现既有单页模板：全部元素使用绝对坐标，从不换页，
// 超出页面的内容照常输出并由 Collector 计入 Overflow。
type fixedLayout struct{}

func (fixedLayout) begin(a *assembler) {
	a.drawBackground()
}

func (fixedLayout) header(a *assembler) {
	tpl := a.tpl
	if a.logo != nil {
		w, h := fitHeight(a.logoCfg, tpl.LogoHeight)
		logo := *a.logo
		logo.X, logo.Y, logo.Width, logo.Height = tpl.Margin.Left, a.height-tpl.Margin.Top-h, w, h
		a.col.DrawImage(logo)
	}
	a.cur = DrawBlock(a.col, At(a.cur, fixedHeadingY), TextBlock{
		Name:     "heading",
		Kind:     BlockHeading,
		X:        a.width / 2,
		Text:     a.text(tpl.Heading),
		Font:     tpl.font(tpl.HeadingSize).WithBold(true),
		Pitch:    tpl.HeadingPitch,
		Align:    AlignCenter,
		Baseline: true,
	})
	for _, f := range fixedHeaderFields {
		a.cur = a.absolute(f, "", a.fieldValue(f.key), tpl.MetaPitch)
	}
}

func (fixedLayout) parties(a *assembler) {
	for _, p := range a.doc.Parties() {
		anchor, ok := fixedPartyAnchors[p.Role]
		if !ok {
			continue
		}
		a.cur = a.absolute(anchor, "", p.Text, a.tpl.PartyPitch)
	}
}

func (fixedLayout) shipmentMeta(a *assembler) {
	for _, m := range fixedMetaLine {
		a.cur = a.absolute(m.fixedPoint, m.label, a.fieldValue(m.key), a.tpl.MetaPitch)
	}
}

func (fixedLayout) goods(a *assembler) {
	tpl := a.tpl
	bottom := DrawGrid(a.col, fixedGoodsHeaderY, Grid{
		Name:       "goods",
		Headers:    tpl.GoodsHeaders,
		HeaderX:    fixedGoodsHeaderX,
		Rows:       a.goodsRows(),
		Columns:    fixedGoodsColumns,
		RowHeight:  tpl.GoodsPitch,
		Font:       tpl.font(tpl.TableSize),
		HeaderFont: a.body().WithBold(true),
	})
	a.cur = At(a.cur, bottom)
}

// footer 从货物表下方开始逐行输出非空的页脚字段。
func (fixedLayout) footer(a *assembler) {
	tpl := a.tpl
	y := a.cur.Y - tpl.FooterPitch
	for _, f := range a.doc.Footer() {
		if !f.Present() {
			continue
		}
		c := DrawBlock(a.col, At(a.cur, y), TextBlock{
			Name:       f.Key,
			Kind:       BlockFooter,
			X:          fixedFooterX,
			Label:      f.Label + ":",
			LabelWidth: tpl.FooterLabelWidth,
			Text:       f.Value,
			Font:       a.body(),
			Pitch:      tpl.FooterPitch,
			Baseline:   true,
		})
		y = c.Y
		a.cur = c
	}
}

func (fixedLayout) declaration(a *assembler) {
	tpl := a.tpl
	a.cur = DrawBlock(a.col, At(a.cur, fixedDeclTitleY), TextBlock{
		Name:     "declaration-title",
		Kind:     BlockDeclaration,
		X:        a.width / 2,
		Text:     a.text(tpl.DeclarationTitle),
		Font:     a.body().WithBold(true),
		Pitch:    tpl.DeclarationPitch,
		Align:    AlignCenter,
		Baseline: true,
	})
	if a.doc.Declaration() == "" {
		return
	}
	a.cur = DrawBlock(a.col, At(a.cur, fixedDeclY), TextBlock{
		Name:     "declaration",
		Kind:     BlockDeclaration,
		X:        fixedDeclX,
		Text:     a.doc.Declaration(),
		Font:     tpl.font(tpl.DeclarationSize),
		Pitch:    tpl.DeclarationPitch,
		Baseline: true,
	})
}

func (fixedLayout) signature(a *assembler) {
	right := a.width - fixedSignInset
	drawSignature(a, right, fixedCaptionY, fixedRuleY, fixedSignatoryY, fixedRuleLength)
	a.cur = At(a.cur, fixedSignatoryY)
}

func (fixedLayout) finish(a *assembler) {
	a.drawBranding(a.width/2-fixedBrandingLeft, fixedBrandingY)
}

// absolute 在固定坐标输出一个单行或多行字段。
func (a *assembler) absolute(p fixedPoint, label, text string, pitch float64) Cursor {
	body := a.body()
	return DrawBlock(a.col, At(a.cur, p.y), TextBlock{
		Name:      p.key,
		X:         p.x,
		Label:     label,
		LabelFont: body,
		Text:      text,
		Font:      body,
		Pitch:     pitch,
		Baseline:  true,
	})
}

func (a *assembler) fieldValue(key string) string {
	for _, f := range a.doc.Header().Pairs() {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// drawSignature 右对齐输出 "For <公司>"、签名线与签字人说明。
func drawSignature(a *assembler, right, captionY, ruleY, signatoryY, ruleLength float64) {
	body := a.body()
	caption := a.text(a.tpl.Signature)
	signatory := a.text(a.tpl.Signatory)
	c := DrawBlock(a.col, At(a.cur, captionY), TextBlock{
		Name: "signature", Kind: BlockSignature, X: right, Text: caption,
		Font: body, Pitch: captionY - ruleY, Align: AlignRight, Baseline: true,
	})
	a.col.DrawLine(Line{X1: right - ruleLength, Y1: ruleY, X2: right, Y2: ruleY, Color: Black, Width: 0.5})
	DrawBlock(a.col, At(c, signatoryY), TextBlock{
		Name: "signatory", Kind: BlockSignature, X: right, Text: signatory,
		Font: body, Pitch: a.tpl.FooterPitch, Align: AlignRight, Baseline: true,
	})
}
