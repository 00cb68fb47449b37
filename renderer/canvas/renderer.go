package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	xdraw "golang.org/x/image/draw"

	"github.com/ByLCY/packlist/fonts"
	"github.com/ByLCY/packlist/layout"
	"github.com/ByLCY/packlist/renderer"
)

// 布局使用 pt，canvas 使用 mm；所有坐标在绘制时统一换算。
const defaultStrokeWidth = 0.2 // pt

// Renderer draws layout results via github.com/tdewolff/canvas.
type Renderer struct {
	fontData fonts.Family

	fontMu   sync.Mutex
	family   *canvas.FontFamily
	faces    map[faceKey]*canvas.FontFace
	fontErr  error
	fallback *canvas.FontFamily
}

var (
	_ renderer.Backend  = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type faceKey struct {
	bold  bool
	size  float64
	color layout.Color
}

// Options configures the canvas renderer.
type Options struct {
	// Fonts 为空时使用 Go Regular / Go Bold。
	Fonts fonts.Family
}

// NewRenderer creates a canvas-based renderer using the built-in Go fonts.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected font data.
func NewRendererWithOptions(opts Options) *Renderer {
	fam := opts.Fonts
	def := fonts.Default()
	if fam.Name == "" {
		fam.Name = def.Name
	}
	if len(fam.Regular) == 0 {
		fam.Regular = def.Regular
	}
	if len(fam.Bold) == 0 {
		fam.Bold = def.Bold
	}
	return &Renderer{
		fontData: fam,
		faces:    map[faceKey]*canvas.FontFace{},
	}
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		c := canvas.New(toMm(page.Width), toMm(page.Height))
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianI) // 与布局一致：左下角为原点，y 轴向上

		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("渲染第 %d 页失败: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: 写入 PDF 失败: %v", layout.ErrOutputWrite, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	writer.SetInfo(meta.Title, meta.Subject, "", meta.Author, meta.Creator)
}

// TextWidth 实现 layout.Typesetter，返回 pt。
func (r *Renderer) TextWidth(text string, font layout.Font) float64 {
	face, err := r.fontFace(font, layout.Black)
	if err != nil {
		return 0
	}
	return toPt(face.TextWidth(text))
}

// Ascent 实现 layout.Typesetter，返回 pt。
func (r *Renderer) Ascent(font layout.Font) float64 {
	face, err := r.fontFace(font, layout.Black)
	if err != nil {
		return font.Size * 0.8
	}
	return toPt(face.Metrics().Ascent)
}

// drawPage 的绘制顺序：图片（背景）→ 矩形 → 线 → 文本。
func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	if err := r.drawImages(ctx, page.Images); err != nil {
		return err
	}
	r.drawRects(ctx, page.Rects)
	r.drawLines(ctx, page.Lines)
	for _, tb := range page.Texts {
		if err := r.drawTextBox(ctx, tb); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox) error {
	if tb.Content == "" {
		return nil
	}
	face, err := r.fontFace(tb.Font, tb.Color)
	if err != nil {
		return err
	}
	// TextBox 的 (X, Y) 即基线起点
	ctx.DrawText(toMm(tb.X), toMm(tb.Y), canvas.NewTextLine(face, tb.Content, canvas.Left))
	return nil
}

func (r *Renderer) drawImages(ctx *canvas.Context, images []layout.ImageBox) error {
	for _, box := range images {
		if len(box.Data) == 0 || box.Width <= 0 || box.Height <= 0 {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(box.Data))
		if err != nil {
			return fmt.Errorf("解码图片 %s 失败: %w", box.Path, err)
		}
		img = fitAspect(img, box.Width/box.Height)
		dpmm := float64(img.Bounds().Dx()) / toMm(box.Width)
		if dpmm <= 0 {
			dpmm = 1
		}
		ctx.DrawImage(toMm(box.X), toMm(box.Y), img, canvas.DPMM(dpmm))
	}
	return nil
}

// fitAspect 在宽高比与目标不一致时重新采样，使图片按目标框拉伸（例如铺满整页的背景）。
func fitAspect(img image.Image, aspect float64) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || aspect <= 0 {
		return img
	}
	current := float64(b.Dx()) / float64(b.Dy())
	if math.Abs(current-aspect)/aspect < 0.005 {
		return img
	}
	h := int(math.Round(float64(b.Dx()) / aspect))
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// drawLines 绘制直线列表。
func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.Line) {
	for _, ln := range lines {
		w := ln.Width
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetFillColor(canvas.Transparent)
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(toMm(w))
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(toMm(ln.X2-ln.X1), toMm(ln.Y2-ln.Y1))
		ctx.DrawPath(toMm(ln.X1), toMm(ln.Y1), p)
	}
}

// drawRects 绘制矩形；StrokeWidth 为 0 时只填充。
func (r *Renderer) drawRects(ctx *canvas.Context, rects []layout.Rect) {
	for _, rc := range rects {
		if rc.FillColor != nil {
			ctx.SetFillColor(colorFromLayout(*rc.FillColor))
		} else {
			ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		}
		if rc.StrokeWidth > 0 {
			ctx.SetStrokeColor(colorFromLayout(rc.StrokeColor))
			ctx.SetStrokeWidth(toMm(rc.StrokeWidth))
		} else {
			ctx.SetStrokeColor(canvas.Transparent)
		}
		ctx.DrawPath(toMm(rc.X), toMm(rc.Y), canvas.Rectangle(toMm(rc.Width), toMm(rc.Height)))
	}
}

func (r *Renderer) fontFace(font layout.Font, col layout.Color) (*canvas.FontFace, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	key := faceKey{bold: font.Bold, size: font.Size, color: col}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	family, err := r.ensureFamily()
	if err != nil {
		return nil, err
	}
	style := canvas.FontRegular
	if font.Bold {
		style = canvas.FontBold
	}
	face := family.Face(font.Size, colorFromLayout(col), style, canvas.FontNormal)
	r.faces[key] = face
	return face, nil
}

// ensureFamily 加载字体家族；注入的字体无法解析时退回内置 Go 字体。调用方持有 fontMu。
func (r *Renderer) ensureFamily() (*canvas.FontFamily, error) {
	if r.family != nil {
		return r.family, nil
	}
	if r.fontErr != nil {
		return r.fallbackFamily()
	}
	family := canvas.NewFontFamily(r.fontData.Name)
	if err := family.LoadFont(r.fontData.Regular, 0, canvas.FontRegular); err != nil {
		r.fontErr = err
		return r.fallbackFamily()
	}
	if err := family.LoadFont(r.fontData.Bold, 0, canvas.FontBold); err != nil {
		r.fontErr = err
		return r.fallbackFamily()
	}
	r.family = family
	return family, nil
}

func (r *Renderer) fallbackFamily() (*canvas.FontFamily, error) {
	if r.fallback != nil {
		return r.fallback, nil
	}
	def := fonts.Default()
	family := canvas.NewFontFamily("packlist-fallback")
	if err := family.LoadFont(def.Regular, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	if err := family.LoadFont(def.Bold, 0, canvas.FontBold); err != nil {
		return nil, err
	}
	r.fallback = family
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
