package layout

import "strings"

// Span 是单词被目标字母切分后的一段文本。
type Span struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// SplitHighlight 按字母（不区分大小写）切分单词，命中的片段 Match 为 true，用于把字母标红。
func SplitHighlight(word, letter string) []Span {
	if word == "" {
		return nil
	}
	if letter == "" {
		return []Span{{Text: word}}
	}
	lowerWord := strings.ToLower(word)
	lowerLetter := strings.ToLower(letter)
	if len(lowerWord) != len(word) || len(lowerLetter) != len(letter) {
		// 大小写转换改变了字节长度时无法按下标切分
		return []Span{{Text: word}}
	}

	var spans []Span
	start := 0
	for start < len(word) {
		idx := strings.Index(lowerWord[start:], lowerLetter)
		if idx < 0 {
			spans = append(spans, Span{Text: word[start:]})
			break
		}
		if idx > 0 {
			spans = append(spans, Span{Text: word[start : start+idx]})
		}
		end := start + idx + len(lowerLetter)
		spans = append(spans, Span{Text: word[start+idx : end], Match: true})
		start = end
	}
	return mergeSpans(spans)
}

// mergeSpans 合并相邻且状态相同的片段，例如 "ll" 中的两个 l。
func mergeSpans(spans []Span) []Span {
	out := spans[:0]
	for _, sp := range spans {
		if sp.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Match == sp.Match {
			out[n-1].Text += sp.Text
			continue
		}
		out = append(out, sp)
	}
	return out
}
