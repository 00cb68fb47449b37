package layout

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// loadAsset 读取并校验一张可选图片。任何失败都返回包装了 ErrAssetMissing 的 *AssetError，
// 调用方记录警告后省略该元素，不重试。
func loadAsset(kind, path string) (ImageBox, image.Config, error) {
	fail := func(err error) (ImageBox, image.Config, error) {
		return ImageBox{}, image.Config{}, &AssetError{Kind: kind, Path: path, Err: err}
	}
	info, err := os.Stat(path)
	if err != nil {
		return fail(err)
	}
	if info.IsDir() {
		return fail(errors.New("is a directory"))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fail(err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fail(fmt.Errorf("decode: %w", err))
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fail(errors.New("empty image"))
	}
	return ImageBox{Name: kind, Path: path, Format: format, Data: data}, cfg, nil
}

// fitHeight 按高度等比缩放图片。
func fitHeight(cfg image.Config, height float64) (float64, float64) {
	return float64(cfg.Width) * height / float64(cfg.Height), height
}
