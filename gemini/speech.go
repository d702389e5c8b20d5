package gemini

import "context"

// Speech synthesizes text and returns raw 16-bit little-endian mono PCM at
// 24 kHz, as delivered by the TTS model.
func (c *Client) Speech(ctx context.Context, text string) ([]byte, error) {
	prompt, err := render(c.prompts.Speech, "text", text)
	if err != nil {
		return nil, err
	}
	resp, err := c.generate(ctx, c.models.Speech, generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: c.voice}},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	parts := resp.parts()
	if len(parts) == 0 || parts[0].InlineData == nil || len(parts[0].InlineData.Data) == 0 {
		return nil, ErrNoAudio
	}
	return parts[0].InlineData.Data, nil
}
