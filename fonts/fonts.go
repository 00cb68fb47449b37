// Package fonts 提供 canvas 后端使用的内置字体数据（Go 字体家族）。
package fonts

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

var builtin = map[string][]byte{
	"Go-Regular":    goregular.TTF,
	"Go-Bold":       gobold.TTF,
	"Go-Italic":     goitalic.TTF,
	"Go-BoldItalic": gobolditalic.TTF,
	"Go-Mono":       gomono.TTF,
	"Go-Mono-Bold":  gomonobold.TTF,
}

// Family 是一组常规与加粗字体数据。
type Family struct {
	Name    string
	Regular []byte
	Bold    []byte
}

// Default 返回 Go Regular / Go Bold。
func Default() Family {
	return Family{Name: "Go", Regular: goregular.TTF, Bold: gobold.TTF}
}

// Load 返回内置字体的字节数据，name 可写为 "embed:Go-Bold" 或直接 "Go-Bold"。
func Load(name string) ([]byte, error) {
	name = strings.TrimPrefix(name, "embed:")
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 可选值 %s", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 返回全部内置字体名称（已排序）。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve 按 "embed:<name>" 或文件路径读取字体。
func Resolve(src string) ([]byte, error) {
	if strings.HasPrefix(src, "embed:") {
		return Load(src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

// LoadFamily 读取一组字体；任一参数为空时使用默认家族中对应的字重。
func LoadFamily(name, regular, bold string) (Family, error) {
	fam := Default()
	if name != "" {
		fam.Name = name
	}
	if regular != "" {
		data, err := Resolve(regular)
		if err != nil {
			return Family{}, err
		}
		fam.Regular = data
	}
	if bold != "" {
		data, err := Resolve(bold)
		if err != nil {
			return Family{}, err
		}
		fam.Bold = data
	}
	return fam, nil
}
