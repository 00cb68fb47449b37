package layout

// 该文件定义布局结果，供渲染后端、调试 JSON 与测试共用。
// 所有坐标单位为 pt，原点位于页面左下角，y 轴向上。

// Result 保存一次文档构建的全部页面与诊断信息。
type Result struct {
	Pages    []Page       `json:"pages"`
	Meta     DocumentMeta `json:"meta"`
	Strategy Strategy     `json:"strategy"`
	Overflow Overflow     `json:"overflow"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Overflow 统计落在可打印区域之外的文本行，固定布局不截断但必须可观测。
type Overflow struct {
	BelowMargin int `json:"belowMargin"` // 基线低于下边距
	OffCanvas   int `json:"offCanvas"`   // 基线低于 y=0，已在画布之外
}

// Any 报告是否发生过溢出。
func (o Overflow) Any() bool { return o.BelowMargin > 0 || o.OffCanvas > 0 }

// Margin 以 pt 为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Page 记录页面尺寸、边距与最终可以直接渲染的图元。
type Page struct {
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Margin Margin        `json:"margin"`
	Images []ImageBox    `json:"images,omitempty"`
	Rects  []Rect        `json:"rects,omitempty"`
	Lines  []Line        `json:"lines,omitempty"`
	Texts  []TextBox     `json:"texts"`
	Blocks []LayoutBlock `json:"blocks"`
}

// Font 描述文本字体；Family 由后端映射到具体字体文件或内置字体。
type Font struct {
	Family string  `json:"family"`
	Bold   bool    `json:"bold,omitempty"`
	Size   float64 `json:"size"`
}

// WithBold 返回加粗与否的副本。
func (f Font) WithBold(bold bool) Font {
	f.Bold = bold
	return f
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	Black      = Color{}
	LightGray  = Color{R: 238, G: 238, B: 238}
	BorderGray = Color{R: 120, G: 120, B: 120}
)

// TextBox 表示一段已经排好坐标的单一样式文本，(X, Y) 为基线起点。
type TextBox struct {
	Content string  `json:"content"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Font    Font    `json:"font"`
	Color   Color   `json:"color"`
}

// ImageBox 描述图片位置与尺寸，(X, Y) 为左下角；Data 为已读取的原始字节。
type ImageBox struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	Format string  `json:"format"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Data   []byte  `json:"-"`
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // <=0 时由渲染器给默认值
}

// Rect 表示一个矩形，(X, Y) 为左下角。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`         // 0 表示不描边
	FillColor   *Color  `json:"fillColor,omitempty"` // 为空表示不填充
}

// BlockKind 标识布局块类型。
type BlockKind string

const (
	BlockHeading     BlockKind = "heading"
	BlockText        BlockKind = "text"
	BlockTable       BlockKind = "table"
	BlockGrid        BlockKind = "grid"
	BlockFooter      BlockKind = "footer"
	BlockDeclaration BlockKind = "declaration"
	BlockSignature   BlockKind = "signature"
	BlockImage       BlockKind = "image"
)

// Anchor 描述布局块的定位策略。
type Anchor string

const (
	AnchorAbsolute Anchor = "absolute"
	AnchorFlow     Anchor = "flow"
)

// LayoutBlock 记录一个已输出的渲染单元（文本块或表格分段），Top 与 Height 为 pt。
// 表格跨页时每页记录一个分段。
type LayoutBlock struct {
	Kind   BlockKind `json:"kind"`
	Name   string    `json:"name"`
	Anchor Anchor    `json:"anchor"`
	X      float64   `json:"x"`
	Top    float64   `json:"top"`
	Height float64   `json:"height"`
	Rows   []RowBox  `json:"rows,omitempty"`
}

// Bottom 返回块底边的 y 坐标。
func (b LayoutBlock) Bottom() float64 { return b.Top - b.Height }

// RowBox 记录表格中一行的位置与高度。
type RowBox struct {
	Index    int     `json:"index"` // 数据行序号，表头为 -1
	Top      float64 `json:"top"`
	Height   float64 `json:"height"`
	IsHeader bool    `json:"isHeader"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Subject string `json:"subject"`
	Creator string `json:"creator"`
}
