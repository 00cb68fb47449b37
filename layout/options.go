package layout

import (
	"fmt"
	"log/slog"
	"strings"
)

// Strategy 选择布局策略。
type Strategy string

const (
	// StrategyFixed 按既有模板的绝对坐标逐字段绘制，内容超出页面时静默溢出（仅计数）。
	StrategyFixed Strategy = "fixed"
	// StrategyFlow 按内容计算高度，游标驱动并自动分页。
	StrategyFlow Strategy = "flow"
)

// ParseStrategy 解析策略名称，空字符串视为 flow。
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(StrategyFlow):
		return StrategyFlow, nil
	case string(StrategyFixed):
		return StrategyFixed, nil
	default:
		return "", fmt.Errorf("layout: unknown strategy %q", s)
	}
}

// Typesetter 提供文本度量，由渲染后端实现，保证布局与绘制使用同一套字体数据。
type Typesetter interface {
	// TextWidth 返回文本在给定字体下的宽度（pt）。
	TextWidth(text string, font Font) float64
	// Ascent 返回字体基线以上的高度（pt）。
	Ascent(font Font) float64
}

// Options 配置一次文档构建。
type Options struct {
	Strategy   Strategy
	Template   *Template // nil 时使用 DefaultTemplate()
	Typesetter Typesetter
	Background string // 可选背景图路径
	Logo       string // 可选 logo 路径
	Logger     *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Template 汇总文档模板的文字、字号、行距、边距与表格定义。
// 每次构建都使用自己的副本，不存在跨文档共享的可变状态。
type Template struct {
	Meta DocumentMeta

	Heading          string
	Company          string
	Signature        string // 支持 ${company} 等插值
	Signatory        string
	Branding         string
	DeclarationTitle string
	PageNumbers      string // 例如 "Page %d of %d"，为空则不输出页码

	FontFamily      string
	HeadingSize     float64
	BodySize        float64
	TableSize       float64
	DeclarationSize float64
	BrandingSize    float64

	HeadingPitch     float64
	PartyPitch       float64
	MetaPitch        float64
	GoodsPitch       float64
	DeclarationPitch float64
	FooterPitch      float64
	BlockGap         float64 // 流式布局中相邻区块的间距
	PartyLabelWidth  float64
	FooterLabelWidth float64
	LogoHeight       float64

	Margin Margin

	GoodsHeaders []string
	GoodsColumns []ColumnDef
	GoodsRules   []StyleRule
	MetaColumns  []ColumnDef
	MetaRules    []StyleRule
	TablePadding Padding
	TableLeading LineHeightSpec
	RepeatHeader bool
	GridWidth    float64 // 单元格网格线宽
	BoxWidth     float64 // 表格外框线宽
}

// DefaultTemplate 返回与既有发票模板一致的默认设置。
func DefaultTemplate() *Template {
	bold := true
	fill := LightGray
	return &Template{
		Meta: DocumentMeta{
			Title:   "Invoice cum Packing List",
			Subject: "Invoice cum Packing List",
			Creator: "packlist",
		},
		Heading:          "INVOICE CUM PACKING LIST",
		Company:          "CODEX AUTOMATION KEY",
		Signature:        "For ${company}",
		Signatory:        "Authorised Signatory",
		Branding:         "CODEX AUTOMATION KEY • docwise.codexautomationkey.com",
		DeclarationTitle: "DECLARATION",
		PageNumbers:      "Page %d of %d",

		FontFamily:      "Helvetica",
		HeadingSize:     14,
		BodySize:        8,
		TableSize:       7.5,
		DeclarationSize: 7,
		BrandingSize:    6,

		HeadingPitch:     20,
		PartyPitch:       10,
		MetaPitch:        12,
		GoodsPitch:       15,
		DeclarationPitch: 10,
		FooterPitch:      12,
		BlockGap:         6,
		PartyLabelWidth:  70,
		FooterLabelWidth: 110,
		LogoHeight:       40,

		Margin: Margin{Top: 36, Right: 36, Bottom: 42, Left: 36},

		GoodsHeaders: []string{"Sr No.", "Description of Goods", "No. of Units", "Rate per", "Amount (USD)"},
		GoodsColumns: []ColumnDef{
			{Width: 40, Align: AlignCenter},
			{MinWidth: 160},
			{Width: 70, Align: AlignRight},
			{Width: 70, Align: AlignRight},
			{Width: 80, Align: AlignRight},
		},
		GoodsRules: []StyleRule{
			{Rows: Span{0, 0}, Cols: Span{0, -1}, Bold: &bold, Fill: &fill, Align: AlignCenter},
		},
		MetaColumns: []ColumnDef{
			{Width: 110}, {}, {Width: 110}, {},
		},
		MetaRules: []StyleRule{
			{Rows: Span{0, -1}, Cols: Span{0, 0}, Bold: &bold},
			{Rows: Span{0, -1}, Cols: Span{2, 2}, Bold: &bold},
		},
		TablePadding: UniformPadding(3),
		TableLeading: LineHeightSpec{Kind: LineHeightFactor, Factor: 1.25},
		GridWidth:    0.4,
		BoxWidth:     0.8,
	}
}

// Clone 深拷贝模板中的切片与指针字段。
func (t *Template) Clone() *Template {
	if t == nil {
		return DefaultTemplate()
	}
	c := *t
	c.GoodsHeaders = append([]string(nil), t.GoodsHeaders...)
	c.GoodsColumns = append([]ColumnDef(nil), t.GoodsColumns...)
	c.GoodsRules = cloneRules(t.GoodsRules)
	c.MetaColumns = append([]ColumnDef(nil), t.MetaColumns...)
	c.MetaRules = cloneRules(t.MetaRules)
	return &c
}

func (t *Template) font(size float64) Font {
	family := t.FontFamily
	if family == "" {
		family = "Helvetica"
	}
	return Font{Family: family, Size: size}
}
