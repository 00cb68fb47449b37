package layout

// Span 是闭区间 [From, To] 的行或列范围。负数从末尾倒数：-1 表示最后一个。
type Span struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// All 覆盖全部行或列。
var All = Span{From: 0, To: -1}

// resolve 把区间换算到长度为 n 的序列上，区间为空时 ok 为 false。
func (s Span) resolve(n int) (from, to int, ok bool) {
	from, to = s.From, s.To
	if from < 0 {
		from += n
	}
	if to < 0 {
		to += n
	}
	if from < 0 {
		from = 0
	}
	if to >= n {
		to = n - 1
	}
	return from, to, n > 0 && from <= to
}

// Contains 报告序号 i 是否落在长度为 n 的序列的区间内。
func (s Span) Contains(i, n int) bool {
	from, to, ok := s.resolve(n)
	return ok && i >= from && i <= to
}

// StyleRule 给一片单元格覆盖样式。行号 0 为表头行，数据行从 1 开始；
// 后出现的规则覆盖先出现的规则，未设置的字段不覆盖。
type StyleRule struct {
	Rows      Span     `json:"rows"`
	Cols      Span     `json:"cols"`
	Bold      *bool    `json:"bold,omitempty"`
	FontSize  float64  `json:"fontSize,omitempty"`
	Align     Align    `json:"align,omitempty"`
	Fill      *Color   `json:"fill,omitempty"`
	TextColor *Color   `json:"textColor,omitempty"`
	Border    *float64 `json:"border,omitempty"` // 单元格边框线宽，0 表示不画
}

// CellStyle 是某个单元格最终生效的样式。
type CellStyle struct {
	Font      Font
	Align     Align
	Fill      *Color
	TextColor Color
	Border    float64
}

// resolveStyle 计算 (row, col) 单元格的样式；rows/cols 为包含表头在内的总行数与列数。
func resolveStyle(base CellStyle, rules []StyleRule, row, col, rows, cols int) CellStyle {
	st := base
	for _, r := range rules {
		if !r.Rows.Contains(row, rows) || !r.Cols.Contains(col, cols) {
			continue
		}
		if r.Bold != nil {
			st.Font.Bold = *r.Bold
		}
		if r.FontSize > 0 {
			st.Font.Size = r.FontSize
		}
		if r.Align != "" {
			st.Align = r.Align
		}
		if r.Fill != nil {
			fill := *r.Fill
			st.Fill = &fill
		}
		if r.TextColor != nil {
			st.TextColor = *r.TextColor
		}
		if r.Border != nil {
			st.Border = *r.Border
		}
	}
	return st
}

func cloneRules(rules []StyleRule) []StyleRule {
	if rules == nil {
		return nil
	}
	out := make([]StyleRule, len(rules))
	for i, r := range rules {
		if r.Bold != nil {
			v := *r.Bold
			r.Bold = &v
		}
		if r.Fill != nil {
			v := *r.Fill
			r.Fill = &v
		}
		if r.TextColor != nil {
			v := *r.TextColor
			r.TextColor = &v
		}
		if r.Border != nil {
			v := *r.Border
			r.Border = &v
		}
		out[i] = r
	}
	return out
}
