package layout

// Cursor 是当前页的纵向书写位置，按值传递：渲染函数接收一个游标并返回新的游标，
// 不共享、不原地修改。Y 为下一可用区域的顶部。
type Cursor struct {
	Y         float64 `json:"y"`
	Page      int     `json:"page"`      // 从 0 开始
	Remaining float64 `json:"remaining"` // 距离可打印区域底部的剩余高度，最小为 0
	Top       float64 `json:"top"`       // 新页面的起始 Y
	Bottom    float64 `json:"bottom"`    // 可打印区域底部
}

// NewCursor 创建位于第 0 页顶部的游标。
func NewCursor(top, bottom float64) Cursor {
	return Cursor{
		Y:         top,
		Remaining: clampZero(top - bottom),
		Top:       top,
		Bottom:    bottom,
	}
}

// Drawable 返回整页的可绘制高度。
func (c Cursor) Drawable() float64 { return clampZero(c.Top - c.Bottom) }

// Fits 报告高度 h 是否能放入当前页剩余空间。
func (c Cursor) Fits(h float64) bool { return c.Remaining-h >= -epsilon }

// Overflowed 报告消耗 h 之后是否越过可打印区域底部。
func (c Cursor) Overflowed(h float64) bool { return !c.Fits(h) }

// Advance 消耗 h 的纵向空间。Y 持续下移（固定布局会继续画到页面之外），
// Remaining 被钳制为 0，不会报错。
func Advance(c Cursor, h float64) Cursor {
	c.Y -= h
	c.Remaining = clampZero(c.Remaining - h)
	return c
}

// NewPage 返回下一页顶部的游标。
func NewPage(c Cursor) Cursor {
	c.Page++
	c.Y = c.Top
	c.Remaining = c.Drawable()
	return c
}

// At 把游标移动到同一页上的绝对位置 y，用于固定坐标锚点。
func At(c Cursor, y float64) Cursor {
	c.Y = y
	c.Remaining = clampZero(y - c.Bottom)
	return c
}

const epsilon = 1e-9

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
