package canvasrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/tracepad/fonts"
	"github.com/ByLCY/tracepad/layout"
)

var bodyFont = layout.FontResource{Name: "word", Src: "builtin:gobold"}

func TestTextWidthScalesWithFontSize(t *testing.T) {
	r := NewRenderer(".")
	// 这里的字号均为 mm
	small, err := r.TextWidth("Ball", bodyFont, 3.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	large, err := r.TextWidth("Ball", bodyFont, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if small <= 0 {
		t.Fatalf("invalid width: %g", small)
	}
	if diff := math.Abs(large - 2*small); diff > 1e-3*large {
		t.Fatalf("width should scale linearly: small=%g large=%g", small, large)
	}
	empty, _ := r.TextWidth("", bodyFont, 7)
	if empty != 0 {
		t.Fatalf("empty text should have zero width, got %g", empty)
	}
}

// TestTextWidthRunsAddUp 验证：高亮拆分后的各段宽度之和与整词宽度接近（无字距调整时应相等）。
func TestTextWidthRunsAddUp(t *testing.T) {
	r := NewRenderer(".")
	whole, err := r.TextWidth("mom", bodyFont, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := 0.0
	for _, sp := range layout.SplitHighlight("mom", "m") {
		w, err := r.TextWidth(sp.Text, bodyFont, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sum += w
	}
	if diff := math.Abs(whole - sum); diff > 0.5 {
		t.Fatalf("run widths diverge from whole word: whole=%g sum=%g", whole, sum)
	}
}

func TestMissingFontFallsBack(t *testing.T) {
	r := NewRenderer("")
	w, err := r.TextWidth("abc", layout.FontResource{Name: "missing", Src: "does/not/exist.ttf"}, 5)
	if err != nil {
		t.Fatalf("fallback font expected, got error: %v", err)
	}
	if w <= 0 {
		t.Fatalf("invalid fallback width: %g", w)
	}
}

func TestInjectedFontResource(t *testing.T) {
	data, err := fonts.Load("builtin:goregular")
	if err != nil {
		t.Fatalf("load font: %v", err)
	}
	r := NewRendererWithOptions(Options{Fonts: map[string]Resource{"custom": {Bytes: data}}})
	blob, err := r.loadFontBytes(layout.FontResource{Src: "font:custom"})
	if err != nil || len(blob) != len(data) {
		t.Fatalf("injected font not resolved: %v", err)
	}
	if _, err := r.loadFontBytes(layout.FontResource{Src: "font:other"}); err == nil {
		t.Fatalf("unknown injected font should fail")
	}
}

func TestNamedFontPathRelativeToBaseDir(t *testing.T) {
	dir := t.TempDir()
	data, err := fonts.Load("builtin:goregular")
	if err != nil {
		t.Fatalf("load font: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "arabic.ttf"), data, 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}
	r := NewRendererWithOptions(Options{BaseDir: dir, Fonts: map[string]Resource{"arabic": {Path: "arabic.ttf"}}})
	blob, err := r.loadFontBytes(layout.FontResource{Src: "font:arabic"})
	if err != nil || len(blob) != len(data) {
		t.Fatalf("named font path not resolved against base dir: %v", err)
	}
}

func TestUnknownFontNameUsesWordFont(t *testing.T) {
	word := layout.FontResource{Name: layout.FontWord, Src: "builtin:gobold"}
	fontSet := map[string]layout.FontResource{
		layout.FontWord:        word,
		layout.FontTranslation: {Name: layout.FontTranslation, Src: "builtin:goregular"},
		"extra":                {Name: "extra", Src: "builtin:goregular"},
	}
	for i := 0; i < 20; i++ {
		if got := resolveFontResource("missing", fontSet); got != word {
			t.Fatalf("第 %d 次解析未知字体得到 %+v，期望单词字体", i, got)
		}
	}
	if got := resolveFontResource("extra", fontSet); got.Src != "builtin:goregular" {
		t.Fatalf("已登记字体解析错误: %+v", got)
	}
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 0xf5, G: 0x9e, B: 0x0b, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestRenderSheetToPDF(t *testing.T) {
	r := NewRenderer(".")
	letter, _ := layout.NewLetterGlyph("b")
	opts := layout.SheetOptions{
		Typesetter: r,
		WordFont:   bodyFont,
		Meta:       layout.DocumentMeta{Title: "Letter B", Keywords: []string{"b", "tracing"}},
	}
	opts.Guides.Glyphs = fonts.Default()
	words := []layout.SheetWord{
		{Word: "Ball", Image: tinyPNG(t)},
		{Word: "Robot"},
		{Word: "Crab", Image: []byte("not an image")},
	}
	sheet, err := layout.BuildSheet(letter, words, opts)
	if err != nil {
		t.Fatalf("build sheet: %v", err)
	}
	out, err := r.Render(sheet)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 8)])
	}
}

func TestRenderMultiPage(t *testing.T) {
	r := NewRenderer(".")
	letter, _ := layout.NewLetterGlyph("z")
	words := make([]layout.SheetWord, 25)
	for i := range words {
		words[i] = layout.SheetWord{Word: "Zebra"}
	}
	sheet, err := layout.BuildSheet(letter, words, layout.SheetOptions{Typesetter: r, WordFont: bodyFont})
	if err != nil {
		t.Fatalf("build sheet: %v", err)
	}
	if len(sheet.Pages) < 2 {
		t.Fatalf("expected several pages, got %d", len(sheet.Pages))
	}
	if _, err := r.Render(sheet); err != nil {
		t.Fatalf("render: %v", err)
	}
}

func TestRenderRejectsEmptySheet(t *testing.T) {
	r := NewRenderer(".")
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("nil sheet should fail")
	}
	if _, err := r.Render(&layout.Sheet{}); err == nil {
		t.Fatalf("sheet without pages should fail")
	}
}
