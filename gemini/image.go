package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Image is a generated illustration.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURL returns the image as a data: URL.
func (im Image) DataURL() string {
	return "data:" + im.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(im.Data)
}

// Image generates a square cartoon illustration of word. The first inline
// data part of the answer is returned.
func (c *Client) Image(ctx context.Context, word string) (Image, error) {
	prompt, err := render(c.prompts.Image, "word", word)
	if err != nil {
		return Image{}, err
	}
	resp, err := c.generate(ctx, c.models.Image, generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ImageConfig: &imageConfig{AspectRatio: "1:1"}},
	})
	if err != nil {
		return Image{}, fmt.Errorf("gemini: image for %q: %w", word, err)
	}
	for _, p := range resp.parts() {
		if p.InlineData != nil && len(p.InlineData.Data) > 0 {
			return Image{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data}, nil
		}
	}
	return Image{}, fmt.Errorf("gemini: image for %q: %w", word, ErrNoImage)
}
