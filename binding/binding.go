// Package binding 实现模板字符串中 ${field} 占位符的插值。
package binding

import (
	"fmt"
	"regexp"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 支持 ${path|默认值}：路径不存在或值为空字符串时使用默认值。
// 若 data 为空或路径不存在且没有默认值，则保留原占位符。
func Interpolate(text string, data any) string {
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path, fallback, hasFallback := splitExpr(match)
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok {
			if s := fmt.Sprint(val); s != "" || !hasFallback {
				return s
			}
		}
		if hasFallback {
			return fallback
		}
		return match
	})
}

// Missing 按出现顺序返回文本中在 data 里无法解析且没有默认值的字段路径（去重）。
func Missing(text string, data any) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range exprPattern.FindAllString(text, -1) {
		path, _, hasFallback := splitExpr(m)
		if path == "" || hasFallback || seen[path] {
			continue
		}
		seen[path] = true
		if _, ok := resolvePath(data, path); !ok {
			out = append(out, path)
		}
	}
	return out
}

func splitExpr(match string) (path, fallback string, hasFallback bool) {
	groups := exprPattern.FindStringSubmatch(match)
	if len(groups) < 2 {
		return "", "", false
	}
	expr := groups[1]
	if i := strings.IndexByte(expr, '|'); i >= 0 {
		return strings.TrimSpace(expr[:i]), strings.TrimSpace(expr[i+1:]), true
	}
	return strings.TrimSpace(expr), "", false
}

// resolvePath 按 "a.b.c" 逐级查找嵌套 map。
func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, key := range strings.Split(path, ".") {
		switch m := current.(type) {
		case map[string]any:
			v, ok := m[key]
			if !ok {
				return nil, false
			}
			current = v
		case map[string]string:
			v, ok := m[key]
			if !ok {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}
	return current, true
}
