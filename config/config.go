// Package config loads tracepad settings from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ByLCY/tracepad/gemini"
	"github.com/ByLCY/tracepad/layout"
	"github.com/pelletier/go-toml/v2"
)

// DefaultAPIKeyEnv names the environment variable holding the API key.
const DefaultAPIKeyEnv = "API_KEY"

type Config struct {
	Gemini  Gemini  `toml:"gemini"`
	Surface Surface `toml:"surface"`
	Sheet   Sheet   `toml:"sheet"`
	Lesson  Lesson  `toml:"lesson"`

	// Fonts names font files that sheet fonts can reference as "font:<name>".
	Fonts map[string]string `toml:"fonts"`
}

type Gemini struct {
	BaseURL   string         `toml:"base_url"`
	APIKeyEnv string         `toml:"api_key_env"`
	Timeout   string         `toml:"timeout"`
	Voice     string         `toml:"voice"`
	Models    gemini.Models  `toml:"models"`
	Prompts   gemini.Prompts `toml:"prompts"`
}

type Surface struct {
	Width     float64             `toml:"width"`
	Height    float64             `toml:"height"`
	Ratio     float64             `toml:"ratio"`
	Font      string              `toml:"font"`
	Margin    layout.MarginPolicy `toml:"margin"`
	Descender *bool               `toml:"descender"`
}

// Sheet lengths accept unit suffixes such as "210mm" or "8.5in".
type Sheet struct {
	PageWidth       string `toml:"page_width"`
	PageHeight      string `toml:"page_height"`
	Margin          string `toml:"margin"`
	BandHeight      string `toml:"band_height"`
	RowHeight       string `toml:"row_height"`
	Bands           int    `toml:"bands"`
	WordFont        string `toml:"word_font"`
	TranslationFont string `toml:"translation_font"`
	Author          string `toml:"author"`
}

type Lesson struct {
	Concurrency int    `toml:"concurrency"`
	SpeechDir   string `toml:"speech_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Gemini: Gemini{
			BaseURL:   gemini.DefaultBaseURL,
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   "60s",
			Voice:     gemini.DefaultVoice,
			Models:    gemini.DefaultModels(),
			Prompts:   gemini.DefaultPrompts(),
		},
		Surface: Surface{
			Width:  400,
			Height: 200,
			Ratio:  1,
			Font:   "builtin:gobold",
			Margin: layout.MarginPolicy{Top: 0.2, Bottom: 0.2},
		},
		Sheet: Sheet{
			PageWidth:  "210mm",
			PageHeight: "297mm",
			Margin:     "15mm",
			BandHeight: "45mm",
			RowHeight:  "18mm",
			Bands:      2,
			WordFont:   "builtin:gobold",
		},
		Lesson: Lesson{Concurrency: 3},
	}
}

// Load reads path over the defaults. A missing file yields the defaults when
// optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("读取配置 %s 失败: %w", path, err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("解析配置 %s 失败: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML into cfg and validates the result. Keys absent from
// data keep the values already in cfg; unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("第 %d 行第 %d 列: %s", row, col, derr.Error())
		}
		return err
	}
	return cfg.Validate()
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if c.Surface.Width < 0 || c.Surface.Height < 0 {
		return fmt.Errorf("surface 尺寸不能为负数")
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if err := c.Gemini.Prompts.Validate(); err != nil {
		return err
	}
	for name, path := range c.Fonts {
		if name == "" || path == "" {
			return fmt.Errorf("fonts 中的条目 %q = %q 无效", name, path)
		}
	}
	if c.Lesson.Concurrency < 0 {
		return fmt.Errorf("lesson.concurrency 不能为负数")
	}
	for _, f := range []struct{ key, value string }{
		{"page_width", c.Sheet.PageWidth},
		{"page_height", c.Sheet.PageHeight},
		{"margin", c.Sheet.Margin},
		{"band_height", c.Sheet.BandHeight},
		{"row_height", c.Sheet.RowHeight},
	} {
		if f.value == "" {
			continue
		}
		if l, ok := layout.ParseLength(f.value); !ok || l.Value < 0 {
			return fmt.Errorf("sheet.%s 的长度 %q 无效", f.key, f.value)
		}
	}
	return nil
}

// Timeout parses the gemini request timeout.
func (c Config) Timeout() (time.Duration, error) {
	if c.Gemini.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("gemini.timeout %q 无效", c.Gemini.Timeout)
	}
	return d, nil
}

// APIKey reads the key from the configured environment variable.
func (c Config) APIKey() string {
	env := c.Gemini.APIKeyEnv
	if env == "" {
		env = DefaultAPIKeyEnv
	}
	return os.Getenv(env)
}

// Marshal encodes the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
