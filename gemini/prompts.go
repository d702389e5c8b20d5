package gemini

import (
	"fmt"

	"github.com/ByLCY/tracepad/binding"
)

// Prompts holds the prompt templates. Placeholders are ${letter}, ${text}
// and ${word}; see binding.Render.
type Prompts struct {
	Words  string `toml:"words"`
	Speech string `toml:"speech"`
	Image  string `toml:"image"`
}

// DefaultPrompts returns the built-in templates.
func DefaultPrompts() Prompts {
	return Prompts{
		Words: `For the English letter "${letter}", generate an array of 5 simple English words suitable for a 5-year-old Arabic-speaking child. ` +
			`Ensure the words demonstrate the letter's position at the beginning, middle, and end. ` +
			`For each word, provide its Arabic translation. ` +
			`Return ONLY a valid JSON array of objects, where each object has "word" and "translation" keys.`,
		Speech: `Say: ${text}`,
		Image:  `A simple, cute, child-friendly cartoon illustration of a "${word}", with a plain white background. No text.`,
	}
}

func (p Prompts) merge(o Prompts) Prompts {
	if o.Words != "" {
		p.Words = o.Words
	}
	if o.Speech != "" {
		p.Speech = o.Speech
	}
	if o.Image != "" {
		p.Image = o.Image
	}
	return p
}

func render(tmpl, key, value string) (string, error) {
	return binding.Render(tmpl, map[string]any{key: value})
}

// Validate reports templates that reference a placeholder other than the
// one their call provides.
func (p Prompts) Validate() error {
	for _, t := range []struct{ name, tmpl, key string }{
		{"words", p.Words, "letter"},
		{"speech", p.Speech, "text"},
		{"image", p.Image, "word"},
	} {
		for _, ph := range binding.Placeholders(t.tmpl) {
			if ph != t.key {
				return fmt.Errorf("gemini: %s prompt uses ${%s}, only ${%s} is available", t.name, ph, t.key)
			}
		}
	}
	return nil
}
