package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ByLCY/tracepad/gemini"
	"github.com/ByLCY/tracepad/layout"
	canvasrenderer "github.com/ByLCY/tracepad/renderer/canvas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, gemini.DefaultModels(), cfg.Gemini.Models)
	assert.Equal(t, "Kore", cfg.Gemini.Voice)
	d, err := cfg.Timeout()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracepad.toml")
	data := `
[gemini]
api_key_env = "TRACEPAD_TEST_KEY"
voice = "Puck"
timeout = "5s"

[gemini.models]
image = "image-test"

[gemini.prompts]
speech = "Please say ${text}"

[surface]
width = 640
descender = false

[surface.margin]
top = 0.25
bottom = 0.15

[sheet]
page_width = "8.5in"
margin = "2cm"
translation_font = "font:arabic"

[fonts]
arabic = "fonts/arabic.ttf"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	cfg, err := Load(path, false)
	require.NoError(t, err)

	assert.Equal(t, "Puck", cfg.Gemini.Voice)
	assert.Equal(t, "image-test", cfg.Gemini.Models.Image)
	assert.Equal(t, gemini.DefaultWordsModel, cfg.Gemini.Models.Words)
	assert.Equal(t, "Please say ${text}", cfg.Gemini.Prompts.Speech)
	assert.Equal(t, gemini.DefaultPrompts().Words, cfg.Gemini.Prompts.Words)
	assert.Equal(t, 640.0, cfg.Surface.Width)
	assert.Equal(t, 200.0, cfg.Surface.Height)

	t.Setenv("TRACEPAD_TEST_KEY", "abc")
	assert.Equal(t, "abc", cfg.APIKey())

	opts := cfg.BuildOptions(nil)
	assert.False(t, opts.Descender)
	assert.Equal(t, layout.MarginPolicy{Top: 0.25, Bottom: 0.15}, opts.Margin)

	sheet := cfg.SheetOptions(nil, nil)
	assert.InDelta(t, 215.9, sheet.PageWidth, 1e-9)
	assert.InDelta(t, 297.0, sheet.PageHeight, 1e-9)
	assert.InDelta(t, 20.0, sheet.Margin, 1e-9)
	assert.Equal(t, "font:arabic", sheet.TranslationFont.Src)

	ropts := cfg.RendererOptions("/srv/lesson")
	assert.Equal(t, "/srv/lesson", ropts.BaseDir)
	assert.Equal(t, canvasrenderer.Resource{Path: "fonts/arabic.ttf"}, ropts.Fonts["arabic"])
	assert.Nil(t, Default().RendererOptions("").Fonts)
	assert.Equal(t, layout.PxToMm, sheet.Guides.LineScale)
	assert.Len(t, cfg.GeminiOptions(nil), 6)
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.toml")
	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(path, false)
	assert.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "[surface]\ncolour = 1\n",
		"bad length":    "[sheet]\nmargin = \"wide\"\n",
		"bad timeout":   "[gemini]\ntimeout = \"soon\"\n",
		"negative size": "[surface]\nwidth = -1\n",
		"syntax":        "[surface\n",
		"empty font":    "[fonts]\narabic = \"\"\n",
		"bad prompt":    "[gemini.prompts]\nimage = \"draw ${letter}\"\n",
	}
	for name, data := range cases {
		cfg := Default()
		assert.Error(t, Parse([]byte(data), &cfg), name)
	}
}

func TestDefaultAPIKeyEnv(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "from-env")
	cfg := Default()
	cfg.Gemini.APIKeyEnv = ""
	assert.Equal(t, "from-env", cfg.APIKey())
}
