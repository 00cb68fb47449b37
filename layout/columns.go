package layout

// Align 是单元格内的水平对齐方式，空值表示左对齐（在样式规则中表示不覆盖）。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// ParseAlign 接受 left/center/right 以及单字母 L/C/R。
func ParseAlign(s string) (Align, bool) {
	switch s {
	case "left", "L", "l":
		return AlignLeft, true
	case "center", "C", "c":
		return AlignCenter, true
	case "right", "R", "r":
		return AlignRight, true
	}
	return "", false
}

// ColumnDef 定义表格的一列。Width 为 0 表示自动列，平分剩余宽度后再按 Min/Max 钳制。
type ColumnDef struct {
	Width    float64 `json:"width,omitempty"`
	MinWidth float64 `json:"minWidth,omitempty"`
	MaxWidth float64 `json:"maxWidth,omitempty"` // 0 表示不限
	Align    Align   `json:"align,omitempty"`
}

// Padding 为单元格内边距（pt）。
type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// UniformPadding 返回四边相同的内边距。
func UniformPadding(v float64) Padding {
	return Padding{Top: v, Right: v, Bottom: v, Left: v}
}

// Vertical 返回上下内边距之和。
func (p Padding) Vertical() float64 { return p.Top + p.Bottom }

// Horizontal 返回左右内边距之和。
func (p Padding) Horizontal() float64 { return p.Left + p.Right }

// ResolveColumns 根据列定义和可用总宽度计算每列最终宽度。
func ResolveColumns(defs []ColumnDef, total float64) []float64 {
	if len(defs) == 0 {
		return nil
	}
	widths := make([]float64, len(defs))
	fixed := 0.0
	auto := 0
	for i, col := range defs {
		if col.Width > 0 {
			widths[i] = col.Width
			fixed += col.Width
		} else {
			auto++
		}
	}
	if auto == 0 {
		return widths
	}
	share := clampZero(total-fixed) / float64(auto)
	for i, col := range defs {
		if col.Width > 0 {
			continue
		}
		w := share
		if col.MinWidth > 0 && w < col.MinWidth {
			w = col.MinWidth
		}
		if col.MaxWidth > 0 && w > col.MaxWidth {
			w = col.MaxWidth
		}
		widths[i] = w
	}
	return widths
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// alignX 返回宽度为 textW 的文本在 [x, x+w] 内按 align 放置时的起点。
func alignX(align Align, x, w, textW float64) float64 {
	switch align {
	case AlignCenter:
		return x + (w-textW)/2
	case AlignRight:
		return x + w - textW
	default:
		return x
	}
}
