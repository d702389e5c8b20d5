// Package gemini is a small REST client for the three generative calls the
// lesson host makes: example words, spoken audio and word illustrations.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL     = "https://generativelanguage.googleapis.com"
	DefaultWordsModel  = "gemini-3-flash-preview"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultImageModel  = "gemini-2.5-flash-image"
	DefaultVoice       = "Kore"
	defaultTimeout     = 60 * time.Second
)

var (
	ErrNoAudio     = errors.New("gemini: no audio data in response")
	ErrNoImage     = errors.New("gemini: no image data in response")
	ErrMissingKey  = errors.New("gemini: api key is empty")
	ErrEmptyResult = errors.New("gemini: empty response")
)

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: API error %d: %s", e.StatusCode, e.Body)
}

// Models names the model used for each call.
type Models struct {
	Words  string `toml:"words"`
	Speech string `toml:"speech"`
	Image  string `toml:"image"`
}

// DefaultModels returns the models the lesson was tuned with.
func DefaultModels() Models {
	return Models{Words: DefaultWordsModel, Speech: DefaultSpeechModel, Image: DefaultImageModel}
}

// Client talks to the generateContent endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	models  Models
	voice   string
	prompts Prompts
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") } }

// WithHTTPClient replaces the HTTP client. nil restores a default client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h == nil {
			h = &http.Client{Timeout: defaultTimeout}
		}
		c.http = h
	}
}

// WithTimeout sets the request timeout on a copy of the current HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		var h http.Client
		if c.http != nil {
			h = *c.http
		}
		h.Timeout = d
		c.http = &h
	}
}

// WithModels overrides models; empty fields keep their defaults.
func WithModels(m Models) Option {
	return func(c *Client) {
		if m.Words != "" {
			c.models.Words = m.Words
		}
		if m.Speech != "" {
			c.models.Speech = m.Speech
		}
		if m.Image != "" {
			c.models.Image = m.Image
		}
	}
}

func WithVoice(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.voice = v
		}
	}
}

// WithPrompts overrides prompt templates; empty fields keep their defaults.
func WithPrompts(p Prompts) Option {
	return func(c *Client) { c.prompts = c.prompts.merge(p) }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		c.logger = l
	}
}

// New creates a client authenticating with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		models:  DefaultModels(),
		voice:   DefaultVoice,
		prompts: DefaultPrompts(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) generate(ctx context.Context, model string, body generateRequest) (*generateResponse, error) {
	if c.apiKey == "" {
		return nil, ErrMissingKey
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: request %s: %w", model, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}
	c.logger.Debug("generateContent",
		slog.String("model", model),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(respBody)),
		slog.Duration("elapsed", time.Since(start)))
	if resp.StatusCode/100 != 2 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}
	return &out, nil
}
