package config

import (
	"log/slog"

	"github.com/ByLCY/tracepad/gemini"
	"github.com/ByLCY/tracepad/layout"
	canvasrenderer "github.com/ByLCY/tracepad/renderer/canvas"
)

// BuildOptions returns the guide options for the live surface.
func (c Config) BuildOptions(glyphs layout.GlyphSource) layout.BuildOptions {
	opts := layout.DefaultOptions()
	opts.Glyphs = glyphs
	opts.Margin = c.Surface.Margin
	if c.Surface.Descender != nil {
		opts.Descender = *c.Surface.Descender
	}
	return opts
}

// SheetOptions converts the sheet section to millimetre layout options.
func (c Config) SheetOptions(ts layout.Typesetter, glyphs layout.GlyphSource) layout.SheetOptions {
	opts := layout.SheetOptions{
		Typesetter: ts,
		PageWidth:  mm(c.Sheet.PageWidth),
		PageHeight: mm(c.Sheet.PageHeight),
		Margin:     mm(c.Sheet.Margin),
		BandHeight: mm(c.Sheet.BandHeight),
		RowHeight:  mm(c.Sheet.RowHeight),
		Bands:      c.Sheet.Bands,
		Meta:       layout.DocumentMeta{Author: c.Sheet.Author, Creator: "tracepad"},
	}
	opts.Guides = c.BuildOptions(glyphs)
	opts.Guides.LineScale = layout.PxToMm
	if c.Sheet.WordFont != "" {
		opts.WordFont = layout.FontResource{Src: c.Sheet.WordFont}
	}
	if c.Sheet.TranslationFont != "" {
		opts.TranslationFont = layout.FontResource{Src: c.Sheet.TranslationFont}
	}
	return opts
}

// GeminiOptions returns client options for the gemini section.
func (c Config) GeminiOptions(logger *slog.Logger) []gemini.Option {
	opts := []gemini.Option{
		gemini.WithModels(c.Gemini.Models),
		gemini.WithVoice(c.Gemini.Voice),
		gemini.WithPrompts(c.Gemini.Prompts),
		gemini.WithLogger(logger),
	}
	if c.Gemini.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(c.Gemini.BaseURL))
	}
	if d, err := c.Timeout(); err == nil && d > 0 {
		opts = append(opts, gemini.WithTimeout(d))
	}
	return opts
}

func mm(value string) float64 {
	l, ok := layout.ParseLength(value)
	if !ok {
		return 0
	}
	return l.ToMM()
}

// RendererOptions returns PDF renderer options with the [fonts] table
// registered; relative font paths resolve against baseDir.
func (c Config) RendererOptions(baseDir string) canvasrenderer.Options {
	opts := canvasrenderer.Options{BaseDir: baseDir}
	if len(c.Fonts) > 0 {
		opts.Fonts = make(map[string]canvasrenderer.Resource, len(c.Fonts))
		for name, path := range c.Fonts {
			opts.Fonts[name] = canvasrenderer.Resource{Path: path}
		}
	}
	return opts
}
