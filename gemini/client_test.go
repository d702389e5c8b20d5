package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	path string
	key  string
	body map[string]any
}

func fakeServer(t *testing.T, status int, reply string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.key = r.Header.Get("x-goog-api-key")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func textReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
		}},
	})
	return string(b)
}

func inlineReply(mime string, data []byte) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"parts": []any{
				map[string]any{"text": "here you go"},
				map[string]any{"inlineData": map[string]any{
					"mimeType": mime,
					"data":     base64.StdEncoding.EncodeToString(data),
				}},
			}},
		}},
	})
	return string(b)
}

func firstPrompt(t *testing.T, body map[string]any) string {
	t.Helper()
	contents := body["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	return parts[0].(map[string]any)["text"].(string)
}

func TestWords(t *testing.T) {
	srv, got := fakeServer(t, http.StatusOK, textReply(
		`[{"word":"Ball","translation":"كرة"},{"word":" Rabbit ","translation":"أرنب"},{"word":"","translation":"x"},{"word":"Cab","translation":"سيارة أجرة"}]`))
	c := New("secret", WithBaseURL(srv.URL+"/"))

	words, err := c.Words(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, []Word{
		{Word: "Ball", Translation: "كرة"},
		{Word: "Rabbit", Translation: "أرنب"},
		{Word: "Cab", Translation: "سيارة أجرة"},
	}, words)

	assert.Equal(t, "/v1beta/models/"+DefaultWordsModel+":generateContent", got.path)
	assert.Equal(t, "secret", got.key)
	assert.Contains(t, firstPrompt(t, got.body), `For the English letter "B"`)
	cfg := got.body["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", cfg["responseMimeType"])
	schema := cfg["responseSchema"].(map[string]any)
	assert.Equal(t, "ARRAY", schema["type"])
	assert.ElementsMatch(t, []any{"word", "translation"}, schema["items"].(map[string]any)["required"])
}

func TestWordsEmptyAndFenced(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusOK, textReply(""))
	words, err := New("k", WithBaseURL(srv.URL)).Words(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, words)

	fenced, _ := fakeServer(t, http.StatusOK, textReply("```json\n[{\"word\":\"Apple\",\"translation\":\"تفاحة\"}]\n```"))
	words, err = New("k", WithBaseURL(fenced.URL)).Words(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, "Apple", words[0].Word)

	bad, _ := fakeServer(t, http.StatusOK, textReply("not json"))
	_, err = New("k", WithBaseURL(bad.URL)).Words(context.Background(), "a")
	assert.Error(t, err)
}

func TestSpeech(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xff, 0x7f}
	srv, got := fakeServer(t, http.StatusOK, inlineReply("audio/L16;codec=pcm;rate=24000", pcm))
	c := New("k", WithBaseURL(srv.URL), WithVoice("Puck"), WithModels(Models{Speech: "tts-test"}))

	// 第一个 part 是文本，音频应从第一个 part 读取，因此这里返回 ErrNoAudio
	_, err := c.Speech(context.Background(), "Ball")
	assert.ErrorIs(t, err, ErrNoAudio)
	assert.Equal(t, "/v1beta/models/tts-test:generateContent", got.path)
	assert.Equal(t, "Say: Ball", firstPrompt(t, got.body))
	cfg := got.body["generationConfig"].(map[string]any)
	assert.Equal(t, []any{"AUDIO"}, cfg["responseModalities"])
	voice := cfg["speechConfig"].(map[string]any)["voiceConfig"].(map[string]any)["prebuiltVoiceConfig"].(map[string]any)
	assert.Equal(t, "Puck", voice["voiceName"])
}

func TestSpeechAudioPart(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xff, 0x7f}
	reply, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"parts": []any{map[string]any{"inlineData": map[string]any{
				"mimeType": "audio/L16",
				"data":     base64.StdEncoding.EncodeToString(pcm),
			}}}},
		}},
	})
	srv, _ := fakeServer(t, http.StatusOK, string(reply))
	data, err := New("k", WithBaseURL(srv.URL)).Speech(context.Background(), "Letter B")
	require.NoError(t, err)
	assert.Equal(t, pcm, data)
}

func TestImage(t *testing.T) {
	png := []byte("\x89PNG fake")
	srv, got := fakeServer(t, http.StatusOK, inlineReply("image/png", png))
	img, err := New("k", WithBaseURL(srv.URL)).Image(context.Background(), "Ball")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, png, img.Data)
	assert.True(t, strings.HasPrefix(img.DataURL(), "data:image/png;base64,"))
	assert.Contains(t, firstPrompt(t, got.body), `cartoon illustration of a "Ball"`)
	cfg := got.body["generationConfig"].(map[string]any)
	assert.Equal(t, "1:1", cfg["imageConfig"].(map[string]any)["aspectRatio"])

	empty, _ := fakeServer(t, http.StatusOK, textReply("sorry"))
	_, err = New("k", WithBaseURL(empty.URL)).Image(context.Background(), "Ball")
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestAPIError(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusTooManyRequests, `{"error":"quota"}`)
	_, err := New("k", WithBaseURL(srv.URL)).Words(context.Background(), "c")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "quota")
}

func TestMissingKeyAndPrompts(t *testing.T) {
	_, err := New("").Words(context.Background(), "a")
	assert.ErrorIs(t, err, ErrMissingKey)

	srv, got := fakeServer(t, http.StatusOK, textReply("[]"))
	c := New("k", WithBaseURL(srv.URL), WithPrompts(Prompts{Words: "words for ${letter|lower}"}))
	_, err = c.Words(context.Background(), "Q")
	require.NoError(t, err)
	assert.Equal(t, "words for q", firstPrompt(t, got.body))

	bad := New("k", WithBaseURL(srv.URL), WithPrompts(Prompts{Image: "draw ${thing}"}))
	_, err = bad.Image(context.Background(), "Ball")
	assert.Error(t, err)
}

func TestContextCancel(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusOK, textReply("[]"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New("k", WithBaseURL(srv.URL)).Words(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPromptsValidate(t *testing.T) {
	assert.NoError(t, DefaultPrompts().Validate())
	assert.NoError(t, Prompts{Words: "${letter|upper} words"}.Validate())
	assert.Error(t, Prompts{Speech: "Say ${word}"}.Validate())
}

func TestHTTPClientOptions(t *testing.T) {
	shared := &http.Client{}
	c := New("k", WithHTTPClient(shared), WithTimeout(3*time.Second))
	assert.Equal(t, 3*time.Second, c.http.Timeout)
	assert.Zero(t, shared.Timeout, "the caller's client is not modified")

	require.NotPanics(t, func() {
		c = New("k", WithHTTPClient(nil), WithTimeout(time.Second))
	})
	require.NotNil(t, c.http)
	assert.Equal(t, time.Second, c.http.Timeout)

	c = New("k", WithHTTPClient(nil))
	require.NotNil(t, c.http)
	assert.Equal(t, defaultTimeout, c.http.Timeout)
}
