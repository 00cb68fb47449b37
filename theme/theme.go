// Package theme 解析主题 DSL，并把其中的文字、字号、行距、边距与表格定义编译到 layout.Template。
package theme

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/ByLCY/packlist/layout"
)

//go:embed default.theme
var defaultSource string

var defaultTheme = sync.OnceValue(func() *Theme {
	t, err := ParseString("default.theme", defaultSource)
	if err != nil {
		panic(fmt.Sprintf("内置主题无法解析: %v", err))
	}
	return t
})

// Theme 是解析后的主题。
type Theme struct {
	Name    string
	Version string
	file    *File
}

// Default 返回内置主题，与 layout.DefaultTemplate 的取值一致。
func Default() *Theme { return defaultTheme() }

// Parse 从 r 解析主题；name 出现在错误位置信息中。
func Parse(name string, r io.Reader) (*Theme, error) {
	f, err := ParseFile(name, r)
	if err != nil {
		return nil, fmt.Errorf("解析主题 %s 失败: %w", name, err)
	}
	return &Theme{Name: f.Name, Version: f.Version, file: f}, nil
}

// ParseString 从字符串解析主题。
func ParseString(name, input string) (*Theme, error) {
	return Parse(name, strings.NewReader(input))
}

// Load 读取并解析主题文件。
func Load(path string) (*Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取主题 %s 失败: %w", path, err)
	}
	defer f.Close()
	return Parse(path, f)
}

// Template 返回在默认模板上应用本主题后的结果。
func (t *Theme) Template() (*layout.Template, error) {
	tpl := layout.DefaultTemplate()
	if err := t.Apply(tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Apply 把主题写入 tpl；主题中未出现的字段保持原值。
// 出错时返回所有问题，tpl 可能已被部分修改。
func (t *Theme) Apply(tpl *layout.Template) error {
	if t == nil || t.file == nil {
		return errors.New("theme: 主题为空")
	}
	if tpl == nil {
		return errors.New("theme: 模板为空")
	}
	var errs []error
	for _, sec := range t.file.Sections {
		switch {
		case sec.Settings != nil:
			errs = append(errs, applySettings(tpl, sec.Settings)...)
		case sec.Table != nil:
			errs = append(errs, applyTable(tpl, sec.Table)...)
		}
	}
	return errors.Join(errs...)
}

type setter func(tpl *layout.Template, e *Entry) error

var settings = map[string]map[string]setter{
	"meta": {
		"title":   stringField(func(t *layout.Template) *string { return &t.Meta.Title }),
		"author":  stringField(func(t *layout.Template) *string { return &t.Meta.Author }),
		"subject": stringField(func(t *layout.Template) *string { return &t.Meta.Subject }),
		"creator": stringField(func(t *layout.Template) *string { return &t.Meta.Creator }),
	},
	"captions": {
		"heading":      stringField(func(t *layout.Template) *string { return &t.Heading }),
		"company":      stringField(func(t *layout.Template) *string { return &t.Company }),
		"signature":    stringField(func(t *layout.Template) *string { return &t.Signature }),
		"signatory":    stringField(func(t *layout.Template) *string { return &t.Signatory }),
		"branding":     stringField(func(t *layout.Template) *string { return &t.Branding }),
		"declaration":  stringField(func(t *layout.Template) *string { return &t.DeclarationTitle }),
		"page-numbers": stringField(func(t *layout.Template) *string { return &t.PageNumbers }),
	},
	"fonts": {
		"family":      stringField(func(t *layout.Template) *string { return &t.FontFamily }),
		"heading":     lengthField(func(t *layout.Template) *float64 { return &t.HeadingSize }),
		"body":        lengthField(func(t *layout.Template) *float64 { return &t.BodySize }),
		"table":       lengthField(func(t *layout.Template) *float64 { return &t.TableSize }),
		"declaration": lengthField(func(t *layout.Template) *float64 { return &t.DeclarationSize }),
		"branding":    lengthField(func(t *layout.Template) *float64 { return &t.BrandingSize }),
	},
	"metrics": {
		"heading-pitch":      lengthField(func(t *layout.Template) *float64 { return &t.HeadingPitch }),
		"party-pitch":        lengthField(func(t *layout.Template) *float64 { return &t.PartyPitch }),
		"meta-pitch":         lengthField(func(t *layout.Template) *float64 { return &t.MetaPitch }),
		"goods-pitch":        lengthField(func(t *layout.Template) *float64 { return &t.GoodsPitch }),
		"declaration-pitch":  lengthField(func(t *layout.Template) *float64 { return &t.DeclarationPitch }),
		"footer-pitch":       lengthField(func(t *layout.Template) *float64 { return &t.FooterPitch }),
		"block-gap":          lengthField(func(t *layout.Template) *float64 { return &t.BlockGap }),
		"party-label-width":  lengthField(func(t *layout.Template) *float64 { return &t.PartyLabelWidth }),
		"footer-label-width": lengthField(func(t *layout.Template) *float64 { return &t.FooterLabelWidth }),
		"logo-height":        lengthField(func(t *layout.Template) *float64 { return &t.LogoHeight }),
		"grid-width":         lengthField(func(t *layout.Template) *float64 { return &t.GridWidth }),
		"box-width":          lengthField(func(t *layout.Template) *float64 { return &t.BoxWidth }),
		"margin":             setMargin,
		"padding":            setPadding,
		"leading":            setLeading,
		"repeat-header":      setRepeatHeader,
	},
}

func applySettings(tpl *layout.Template, s *Settings) []error {
	keys := settings[s.Kind]
	var errs []error
	for _, e := range s.Entries {
		set, ok := keys[e.Key]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: %s 中未知的键 %q", e.Pos, s.Kind, e.Key))
			continue
		}
		if err := set(tpl, e); err != nil {
			errs = append(errs, fmt.Errorf("%s: %s.%s: %w", e.Pos, s.Kind, e.Key, err))
		}
	}
	return errs
}

func stringField(field func(*layout.Template) *string) setter {
	return func(tpl *layout.Template, e *Entry) error {
		v, err := single(e)
		if err != nil {
			return err
		}
		if v.String == nil {
			return fmt.Errorf("需要字符串，得到 %q", v.raw())
		}
		*field(tpl) = string(*v.String)
		return nil
	}
}

func lengthField(field func(*layout.Template) *float64) setter {
	return func(tpl *layout.Template, e *Entry) error {
		v, err := single(e)
		if err != nil {
			return err
		}
		n, err := length(v)
		if err != nil {
			return err
		}
		*field(tpl) = n
		return nil
	}
}

// setMargin 按 CSS 顺序接受 1、2 或 4 个值：上 右 下 左。
func setMargin(tpl *layout.Template, e *Entry) error {
	v, err := box(e)
	if err != nil {
		return err
	}
	tpl.Margin = layout.Margin{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}
	return nil
}

func setPadding(tpl *layout.Template, e *Entry) error {
	v, err := box(e)
	if err != nil {
		return err
	}
	tpl.TablePadding = layout.Padding{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}
	return nil
}

func setLeading(tpl *layout.Template, e *Entry) error {
	v, err := single(e)
	if err != nil {
		return err
	}
	spec, ok := layout.ParseLineHeight(v.raw())
	if !ok {
		return fmt.Errorf("无效的行距 %q", v.raw())
	}
	tpl.TableLeading = spec
	return nil
}

func setRepeatHeader(tpl *layout.Template, e *Entry) error {
	v, err := single(e)
	if err != nil {
		return err
	}
	b, err := boolean(v)
	if err != nil {
		return err
	}
	tpl.RepeatHeader = b
	return nil
}

func applyTable(tpl *layout.Template, tb *Table) []error {
	var (
		errs    []error
		headers []string
		columns []layout.ColumnDef
		rules   []layout.StyleRule
	)
	for _, item := range tb.Items {
		switch {
		case item.Column != nil:
			col, err := column(item.Column)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			headers = append(headers, string(item.Column.Header))
			columns = append(columns, col)
		case item.Style != nil:
			rule, err := styleRule(item.Style)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			rules = append(rules, rule)
		}
	}

	switch tb.Name {
	case "goods":
		if len(columns) > 0 {
			tpl.GoodsHeaders = headers
			tpl.GoodsColumns = columns
		}
		if len(rules) > 0 {
			tpl.GoodsRules = rules
		}
	case "shipment":
		if len(columns) > 0 {
			tpl.MetaColumns = columns
		}
		if len(rules) > 0 {
			tpl.MetaRules = rules
		}
	default:
		errs = append(errs, fmt.Errorf("%s: 未知的表格 %q（可选 goods、shipment）", tb.Pos, tb.Name))
	}
	return errs
}

func column(c *Column) (layout.ColumnDef, error) {
	var col layout.ColumnDef
	for _, opt := range c.Options {
		var err error
		switch opt.Key {
		case "width":
			col.Width, err = length(opt.Value)
		case "min":
			col.MinWidth, err = length(opt.Value)
		case "max":
			col.MaxWidth, err = length(opt.Value)
		case "align":
			col.Align, err = align(opt.Value)
		}
		if err != nil {
			return layout.ColumnDef{}, fmt.Errorf("%s: column %s %s: %w", opt.Pos, c.Key, opt.Key, err)
		}
	}
	return col, nil
}

func styleRule(s *Style) (layout.StyleRule, error) {
	rule := layout.StyleRule{Rows: layout.All, Cols: layout.All}
	var err error
	if s.Rows != nil {
		if rule.Rows, err = span(s.Rows); err != nil {
			return rule, fmt.Errorf("%s: rows: %w", s.Pos, err)
		}
	}
	if s.Cols != nil {
		if rule.Cols, err = span(s.Cols); err != nil {
			return rule, fmt.Errorf("%s: cols: %w", s.Pos, err)
		}
	}
	for _, e := range s.Entries {
		if err := styleEntry(&rule, e); err != nil {
			return rule, fmt.Errorf("%s: style.%s: %w", e.Pos, e.Key, err)
		}
	}
	return rule, nil
}

func styleEntry(rule *layout.StyleRule, e *Entry) error {
	v, err := single(e)
	if err != nil {
		return err
	}
	switch e.Key {
	case "bold":
		b, err := boolean(v)
		if err != nil {
			return err
		}
		rule.Bold = &b
	case "size":
		if rule.FontSize, err = length(v); err != nil {
			return err
		}
	case "align":
		if rule.Align, err = align(v); err != nil {
			return err
		}
	case "fill":
		c, err := color(v)
		if err != nil {
			return err
		}
		rule.Fill = &c
	case "color":
		c, err := color(v)
		if err != nil {
			return err
		}
		rule.TextColor = &c
	case "border":
		w, err := length(v)
		if err != nil {
			return err
		}
		rule.Border = &w
	default:
		return errors.New("未知的样式键")
	}
	return nil
}

func span(s *Span) (layout.Span, error) {
	from, err := s.From.int()
	if err != nil {
		return layout.Span{}, err
	}
	to := from
	if s.To != nil {
		if to, err = s.To.int(); err != nil {
			return layout.Span{}, err
		}
	}
	return layout.Span{From: from, To: to}, nil
}

func single(e *Entry) (*Value, error) {
	if len(e.Values) != 1 {
		return nil, fmt.Errorf("需要 1 个值，得到 %d 个", len(e.Values))
	}
	return e.Values[0], nil
}

// box 展开 1、2 或 4 个长度为上右下左。
func box(e *Entry) ([4]float64, error) {
	var out [4]float64
	vals := make([]float64, len(e.Values))
	for i, v := range e.Values {
		n, err := length(v)
		if err != nil {
			return out, err
		}
		vals[i] = n
	}
	switch len(vals) {
	case 1:
		out = [4]float64{vals[0], vals[0], vals[0], vals[0]}
	case 2:
		out = [4]float64{vals[0], vals[1], vals[0], vals[1]}
	case 4:
		copy(out[:], vals)
	default:
		return out, fmt.Errorf("需要 1、2 或 4 个值，得到 %d 个", len(vals))
	}
	return out, nil
}

// length 解析带单位的长度并换算为 pt；无单位数值按 pt 处理。
func length(v *Value) (float64, error) {
	if v == nil || v.Number == nil || strings.HasSuffix(*v.Number, "x") {
		return 0, fmt.Errorf("需要长度，得到 %q", v.raw())
	}
	return layout.ParseRawLengthStr(*v.Number).ToPT(), nil
}

func boolean(v *Value) (bool, error) {
	b, err := strconv.ParseBool(v.raw())
	if err != nil {
		return false, fmt.Errorf("需要 true 或 false，得到 %q", v.raw())
	}
	return b, nil
}

func align(v *Value) (layout.Align, error) {
	a, ok := layout.ParseAlign(v.raw())
	if !ok {
		return "", fmt.Errorf("无效的对齐方式 %q", v.raw())
	}
	return a, nil
}

func color(v *Value) (layout.Color, error) {
	if v == nil || v.Color == nil {
		return layout.Color{}, fmt.Errorf("需要颜色，得到 %q", v.raw())
	}
	hex := strings.TrimPrefix(*v.Color, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return layout.Color{}, fmt.Errorf("无效的颜色 %q", *v.Color)
	}
	return layout.Color{R: int(n >> 16 & 0xFF), G: int(n >> 8 & 0xFF), B: int(n & 0xFF)}, nil
}
