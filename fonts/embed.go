package fonts

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体名称，可在配置中写作 "builtin:gobold"。
const (
	BuiltinBold    = "gobold"
	BuiltinRegular = "goregular"
)

var builtin = map[string][]byte{
	BuiltinBold:    gobold.TTF,
	BuiltinRegular: goregular.TTF,
}

// Load 返回字体的字节数据，src 可写为 "builtin:gobold"、"embed:goregular" 或字体文件路径。
func Load(src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("字体来源为空")
	}
	for _, prefix := range []string{"builtin:", "embed:"} {
		if name, ok := strings.CutPrefix(src, prefix); ok {
			data, found := builtin[name]
			if !found {
				return nil, fmt.Errorf("内置字体 %s 不存在", name)
			}
			return data, nil
		}
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

// IsBuiltin 判断 src 是否指向内置字体。
func IsBuiltin(src string) bool {
	return strings.HasPrefix(src, "builtin:") || strings.HasPrefix(src, "embed:")
}
