// Package fpdfrenderer 使用 codeberg.org/go-pdf/fpdf 的核心字体输出 PDF。
// 输出不依赖外部字体文件，且对同一输入逐字节稳定。
package fpdfrenderer

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"
	"sync"
	"time"

	"codeberg.org/go-pdf/fpdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/packlist/layout"
	"github.com/ByLCY/packlist/renderer"
)

const (
	defaultFamily      = "Helvetica"
	defaultStrokeWidth = 0.2 // pt
	// 核心字体缺少描述信息时使用 Helvetica 的 ascent（1/1000 em）。
	fallbackAscent = 718
)

var coreFamilies = map[string]string{
	"helvetica": "Helvetica",
	"arial":     "Helvetica",
	"times":     "Times",
	"courier":   "Courier",
}

// Options 配置 fpdf 后端。
type Options struct {
	// Date 写入 PDF 的创建与修改时间；零值时使用 Unix 纪元，保证输出稳定。
	Date time.Time
}

// Renderer draws layout results with fpdf core fonts.
type Renderer struct {
	date time.Time

	mu      sync.Mutex
	measure *fpdf.Fpdf
	tr      func(string) string
}

var (
	_ renderer.Backend  = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// NewRenderer 创建使用默认选项的后端。
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions 创建后端；度量使用独立的 fpdf 实例并由互斥锁保护。
func NewRendererWithOptions(opts Options) *Renderer {
	date := opts.Date
	if date.IsZero() {
		date = time.Unix(0, 0).UTC()
	}
	m := newDocument()
	m.AddPage()
	return &Renderer{
		date:    date,
		measure: m,
		tr:      m.UnicodeTranslatorFromDescriptor(""),
	}
}

func newDocument() *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	return pdf
}

// TextWidth 实现 layout.Typesetter，返回 pt。
func (r *Renderer) TextWidth(text string, font layout.Font) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	setFont(r.measure, font)
	return r.measure.GetStringWidth(r.tr(text))
}

// Ascent 实现 layout.Typesetter，返回 pt。
func (r *Renderer) Ascent(font layout.Font) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	setFont(r.measure, font)
	desc := r.measure.GetFontDesc(family(font), style(font))
	ascent := desc.Ascent
	if ascent <= 0 {
		ascent = fallbackAscent
	}
	return font.Size * float64(ascent) / 1000
}

// Render 渲染整份结果；任何错误都不返回部分数据。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	pdf := newDocument()
	pdf.SetCreationDate(r.date)
	pdf.SetModificationDate(r.date)
	pdf.SetCatalogSort(true)
	applyMeta(pdf, result.Meta)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	images := map[string]string{}
	for i, page := range result.Pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
		d := drawer{pdf: pdf, tr: tr, height: page.Height, images: images}
		if err := d.page(page); err != nil {
			return nil, fmt.Errorf("渲染第 %d 页失败: %w", i+1, err)
		}
		if pdf.Err() {
			return nil, fmt.Errorf("渲染第 %d 页失败: %w", i+1, pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: 写入 PDF 失败: %v", layout.ErrOutputWrite, err)
	}
	return buf.Bytes(), nil
}

func applyMeta(pdf *fpdf.Fpdf, meta layout.DocumentMeta) {
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetCreator(meta.Creator, true)
}

// drawer 负责单页绘制；布局坐标原点在左下角，fpdf 在左上角。
type drawer struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	height float64
	images map[string]string // 图片内容哈希 -> 注册名
}

func (d drawer) y(v float64) float64 { return d.height - v }

// page 的绘制顺序：图片（背景）→ 矩形 → 线 → 文本。
func (d drawer) page(page layout.Page) error {
	for _, img := range page.Images {
		if err := d.image(img); err != nil {
			return err
		}
	}
	for _, rc := range page.Rects {
		d.rect(rc)
	}
	for _, ln := range page.Lines {
		d.line(ln)
	}
	for _, tb := range page.Texts {
		d.text(tb)
	}
	return nil
}

func (d drawer) text(tb layout.TextBox) {
	if tb.Content == "" {
		return
	}
	setFont(d.pdf, tb.Font)
	d.pdf.SetTextColor(tb.Color.R, tb.Color.G, tb.Color.B)
	d.pdf.Text(tb.X, d.y(tb.Y), d.tr(tb.Content))
}

func (d drawer) line(ln layout.Line) {
	w := ln.Width
	if w <= 0 {
		w = defaultStrokeWidth
	}
	d.pdf.SetDrawColor(ln.Color.R, ln.Color.G, ln.Color.B)
	d.pdf.SetLineWidth(w)
	d.pdf.Line(ln.X1, d.y(ln.Y1), ln.X2, d.y(ln.Y2))
}

func (d drawer) rect(rc layout.Rect) {
	var op strings.Builder
	if rc.FillColor != nil {
		d.pdf.SetFillColor(rc.FillColor.R, rc.FillColor.G, rc.FillColor.B)
		op.WriteString("F")
	}
	if rc.StrokeWidth > 0 {
		d.pdf.SetDrawColor(rc.StrokeColor.R, rc.StrokeColor.G, rc.StrokeColor.B)
		d.pdf.SetLineWidth(rc.StrokeWidth)
		op.WriteString("D")
	}
	if op.Len() == 0 {
		return
	}
	d.pdf.Rect(rc.X, d.y(rc.Y+rc.Height), rc.Width, rc.Height, op.String())
}

func (d drawer) image(box layout.ImageBox) error {
	if len(box.Data) == 0 || box.Width <= 0 || box.Height <= 0 {
		return nil
	}
	name, err := d.register(box)
	if err != nil {
		return err
	}
	d.pdf.ImageOptions(name, box.X, d.y(box.Y+box.Height), box.Width, box.Height, false,
		fpdf.ImageOptions{AllowNegativePosition: true}, 0, "")
	return nil
}

// register 按内容注册一次图片；fpdf 不支持的格式先转成 PNG。
func (d drawer) register(box layout.ImageBox) (string, error) {
	h := fnv.New64a()
	h.Write(box.Data)
	key := fmt.Sprintf("img-%x", h.Sum64())
	if name, ok := d.images[key]; ok {
		return name, nil
	}

	data, kind := box.Data, imageType(box.Format)
	if kind == "" {
		img, _, err := image.Decode(bytes.NewReader(box.Data))
		if err != nil {
			return "", fmt.Errorf("解码图片 %s 失败: %w", box.Path, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("转换图片 %s 失败: %w", box.Path, err)
		}
		data, kind = buf.Bytes(), "PNG"
	}
	d.pdf.RegisterImageOptionsReader(key, fpdf.ImageOptions{ImageType: kind}, bytes.NewReader(data))
	if d.pdf.Err() {
		return "", fmt.Errorf("注册图片 %s 失败: %w", box.Path, d.pdf.Error())
	}
	d.images[key] = key
	return key, nil
}

func imageType(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "JPG"
	case "png":
		return "PNG"
	case "gif":
		return "GIF"
	default:
		return ""
	}
}

func setFont(pdf *fpdf.Fpdf, font layout.Font) {
	pdf.SetFont(family(font), style(font), font.Size)
}

func family(font layout.Font) string {
	if name, ok := coreFamilies[strings.ToLower(font.Family)]; ok {
		return name
	}
	return defaultFamily
}

func style(font layout.Font) string {
	if font.Bold {
		return "B"
	}
	return ""
}
