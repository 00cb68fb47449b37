package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteDebugJSON 将布局结果输出为缩进 JSON，便于调试或可视化。
func WriteDebugJSON(w io.Writer, res *Result) error {
	if res == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}
	return nil
}

// SaveDebugJSON 将布局结果写入文件；写入失败时不保留残缺文件。
func SaveDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}
	return nil
}
