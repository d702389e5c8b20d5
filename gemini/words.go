package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Word is one example word with its Arabic translation.
type Word struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
}

var wordListSchema = &schema{
	Type: "ARRAY",
	Items: &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"word":        {Type: "STRING", Description: "The English word."},
			"translation": {Type: "STRING", Description: "The Arabic translation of the word."},
		},
		Required: []string{"word", "translation"},
	},
}

// Words asks for example words for letter. The order of the answer is kept.
func (c *Client) Words(ctx context.Context, letter string) ([]Word, error) {
	prompt, err := render(c.prompts.Words, "letter", letter)
	if err != nil {
		return nil, err
	}
	resp, err := c.generate(ctx, c.models.Words, generateRequest{
		Contents: userText(prompt),
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   wordListSchema,
		},
	})
	if err != nil {
		return nil, err
	}
	return parseWords(resp.text())
}

func parseWords(text string) ([]Word, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "[]"
	}
	// 有时模型会把 JSON 包在代码块中
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	var raw []Word
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("gemini: decode word list: %w", err)
	}
	words := raw[:0]
	for _, w := range raw {
		w.Word = strings.TrimSpace(w.Word)
		w.Translation = strings.TrimSpace(w.Translation)
		if w.Word == "" {
			continue
		}
		words = append(words, w)
	}
	return words, nil
}
