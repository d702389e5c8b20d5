package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Render 将文本中的 ${path.to.value} 或 ${path|filter} 替换为 data 中的值。
// 任何占位符无法解析时返回错误，避免把未替换的模板发给生成服务。
func Render(text string, data map[string]any) (string, error) {
	var firstErr error
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		if firstErr != nil {
			return match
		}
		val, err := evaluate(match, data)
		if err != nil {
			firstErr = err
			return match
		}
		return val
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// Interpolate 与 Render 相同，但无法解析的占位符保持原样。
func Interpolate(text string, data map[string]any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		val, err := evaluate(match, data)
		if err != nil {
			return match
		}
		return val
	})
}

// Placeholders 返回模板中出现的占位符路径（去掉过滤器），按出现顺序且不去重。
func Placeholders(text string) []string {
	var out []string
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		path, _, _ := strings.Cut(groups[1], "|")
		out = append(out, strings.TrimSpace(path))
	}
	return out
}

func evaluate(match string, data map[string]any) (string, error) {
	groups := exprPattern.FindStringSubmatch(match)
	if len(groups) < 2 {
		return "", fmt.Errorf("占位符 %s 无法解析", match)
	}
	parts := strings.Split(groups[1], "|")
	path := strings.TrimSpace(parts[0])
	if path == "" {
		return "", fmt.Errorf("占位符 %s 缺少路径", match)
	}
	val, ok := resolvePath(data, path)
	if !ok {
		return "", fmt.Errorf("占位符 %s 在数据中不存在", match)
	}
	s := fmt.Sprint(val)
	for _, name := range parts[1:] {
		f, ok := filters[strings.TrimSpace(name)]
		if !ok {
			return "", fmt.Errorf("占位符 %s 使用了未知过滤器 %q", match, strings.TrimSpace(name))
		}
		s = f(s)
	}
	return s, nil
}

var filters = map[string]func(string) string{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"trim":  strings.TrimSpace,
	"quote": strconv.Quote,
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
