package layout

import (
	"errors"
	"fmt"
)

var (
	ErrNilDocument  = errors.New("layout: document is nil")
	ErrNoTypesetter = errors.New("layout: typesetter is required")
	// ErrAssetMissing 表示可选图片资源不可用；构建过程中会被局部恢复（省略该元素）。
	ErrAssetMissing = errors.New("layout: asset missing")
	// ErrOutputWrite 表示输出流无法完成写入，属于致命错误。
	ErrOutputWrite = errors.New("layout: output write failure")
)

// AssetError 记录某个可选资源加载失败的原因。
type AssetError struct {
	Kind string // background / logo
	Path string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("layout: %s asset %q: %v", e.Kind, e.Path, e.Err)
}

// Unwrap 同时暴露 ErrAssetMissing 与底层错误。
func (e *AssetError) Unwrap() []error {
	return []error{ErrAssetMissing, e.Err}
}
