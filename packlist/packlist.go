// Package packlist 是文档引擎的入口：选择后端、应用主题、构建布局并输出 PDF 字节。
package packlist

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ByLCY/packlist/fonts"
	"github.com/ByLCY/packlist/invoice"
	"github.com/ByLCY/packlist/layout"
	"github.com/ByLCY/packlist/renderer"
	canvasrenderer "github.com/ByLCY/packlist/renderer/canvas"
	fpdfrenderer "github.com/ByLCY/packlist/renderer/fpdf"
	"github.com/ByLCY/packlist/theme"
)

// Backend 选择渲染后端。
type Backend string

const (
	BackendCanvas Backend = "canvas"
	BackendFPDF   Backend = "fpdf"
)

// ParseBackend 解析后端名称，空字符串视为 canvas。
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(BackendCanvas):
		return BackendCanvas, nil
	case string(BackendFPDF):
		return BackendFPDF, nil
	default:
		return "", fmt.Errorf("packlist: unknown backend %q", s)
	}
}

// Options 配置一次渲染。零值可用：flow 策略、canvas 后端、内置主题。
type Options struct {
	Strategy layout.Strategy
	Backend  Backend
	// Theme 在默认模板上覆盖取值；Template 非空时优先于 Theme。
	Theme    *theme.Theme
	Template *layout.Template
	// Fonts 仅用于 canvas 后端，为空时使用内置 Go 字体。
	Fonts      fonts.Family
	Background string
	Logo       string
	Logger     *slog.Logger
}

// NewBackend 创建指定名称的渲染后端。
func NewBackend(b Backend, fam fonts.Family) (renderer.Backend, error) {
	switch b {
	case "", BackendCanvas:
		return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Fonts: fam}), nil
	case BackendFPDF:
		return fpdfrenderer.NewRenderer(), nil
	default:
		return nil, fmt.Errorf("packlist: unknown backend %q", b)
	}
}

// Layout 只计算布局，返回可供调试或测试检查的结果。
func Layout(doc *invoice.Document, opts Options) (*layout.Result, error) {
	res, _, err := build(doc, opts)
	return res, err
}

// Render 构建布局并渲染为 PDF 字节。出错时不返回任何数据。
func Render(doc *invoice.Document, opts Options) ([]byte, error) {
	data, _, err := RenderLayout(doc, opts)
	return data, err
}

// RenderLayout 与 Render 相同，另外返回生成这份 PDF 的布局结果。
func RenderLayout(doc *invoice.Document, opts Options) ([]byte, *layout.Result, error) {
	res, backend, err := build(doc, opts)
	if err != nil {
		return nil, nil, err
	}
	data, err := backend.Render(res)
	if err != nil {
		return nil, nil, fmt.Errorf("packlist: render: %w", err)
	}
	opts.logger().Debug("rendered document",
		slog.String("backend", string(opts.backend())),
		slog.Int("pages", len(res.Pages)),
		slog.Int("bytes", len(data)))
	return data, res, nil
}

// Write 渲染后一次性写入 w；写入失败包装为 layout.ErrOutputWrite。
func Write(w io.Writer, doc *invoice.Document, opts Options) error {
	res, backend, err := build(doc, opts)
	if err != nil {
		return err
	}
	if _, err := renderer.WriteTo(w, backend, res); err != nil {
		return fmt.Errorf("packlist: %w", err)
	}
	return nil
}

func build(doc *invoice.Document, opts Options) (*layout.Result, renderer.Backend, error) {
	backend, err := NewBackend(opts.backend(), opts.Fonts)
	if err != nil {
		return nil, nil, err
	}
	tpl, err := opts.template()
	if err != nil {
		return nil, nil, err
	}
	res, err := layout.Build(doc, layout.Options{
		Strategy:   opts.Strategy,
		Template:   tpl,
		Typesetter: backend,
		Background: opts.Background,
		Logo:       opts.Logo,
		Logger:     opts.logger(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("packlist: layout: %w", err)
	}
	return res, backend, nil
}

func (o Options) backend() Backend {
	if o.Backend == "" {
		return BackendCanvas
	}
	return o.Backend
}

func (o Options) template() (*layout.Template, error) {
	if o.Template != nil {
		return o.Template, nil
	}
	th := o.Theme
	if th == nil {
		th = theme.Default()
	}
	tpl, err := th.Template()
	if err != nil {
		return nil, fmt.Errorf("packlist: theme: %w", err)
	}
	return tpl, nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
