package renderer

import (
	"fmt"
	"io"

	"github.com/ByLCY/packlist/layout"
)

// Renderer 将布局结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误；出错时不返回任何部分数据。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时提供度量与输出，布局与绘制必须使用同一套字体数据。
type Backend interface {
	Renderer
	layout.Typesetter
}

// WriteTo 先完整渲染，再一次性写入 w；写入失败包装为 layout.ErrOutputWrite。
func WriteTo(w io.Writer, r Renderer, result *layout.Result) (int64, error) {
	data, err := r.Render(result)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("%w: %v", layout.ErrOutputWrite, err)
	}
	return int64(n), nil
}
