package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

const (
	lineInset      = 10.0
	topLineWidth   = 2.0
	baseLineWidth  = 3.0
	descLineWidth  = 1.0
	glyphLineWidth = 2.0
	inkWidth       = 12.0
)

var (
	midDash       = []float64{10, 10}
	descenderDash = []float64{4, 8}
	glyphDash     = []float64{8, 8}
)

// ErrDegenerateGeometry 表示绘制面尚未测量或尺寸非正，此时不应绘制任何内容。
var ErrDegenerateGeometry = errors.New("layout: 绘制面尺寸无效")

// descenders 列出小写形式带有下伸部的字母。
const descenders = "gjpqy"

// NewLetterGlyph 将所选字母转换为大小写字形对，只接受单个英文字母。
func NewLetterGlyph(letter string) (LetterGlyph, error) {
	s := strings.TrimSpace(letter)
	runes := []rune(s)
	if len(runes) != 1 {
		return LetterGlyph{}, fmt.Errorf("字母 %q 必须是单个字符", letter)
	}
	r := runes[0]
	if r > unicode.MaxASCII || !unicode.IsLetter(r) {
		return LetterGlyph{}, fmt.Errorf("字母 %q 不是英文字母", letter)
	}
	return LetterGlyph{Upper: unicode.ToUpper(r), Lower: unicode.ToLower(r)}, nil
}

// String 返回大写形式，例如 "B"。
func (l LetterGlyph) String() string { return string(l.Upper) }

// HasDescender 判断小写形式是否向基线下方延伸。
func (l LetterGlyph) HasDescender() bool {
	return strings.ContainsRune(descenders, l.Lower)
}

// Build 根据逻辑宽高与字母计算引导线与两个描红字形的布局。
// 宽或高非正（包括尚未测量的绘制面）时返回 ErrDegenerateGeometry。
func Build(letter LetterGlyph, width, height float64, opts BuildOptions) (*GuideLayout, error) {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return nil, ErrDegenerateGeometry
	}
	opts = opts.withDefaults()
	pal := opts.Palette
	scale := opts.LineScale

	topY := height * opts.Margin.Top
	baseY := height - height*opts.Margin.Bottom
	midY := (topY + baseY) / 2

	inset := math.Min(lineInset*scale, width/4)
	x1, x2 := inset, width-inset

	lines := []Line{
		{Kind: GuideTop, X1: x1, Y1: topY, X2: x2, Y2: topY, Color: pal.TopLine, Width: topLineWidth * scale},
		{Kind: GuideMid, X1: x1, Y1: midY, X2: x2, Y2: midY, Color: pal.TopLine, Width: topLineWidth * scale, Dash: scaleDash(midDash, scale)},
		{Kind: GuideBase, X1: x1, Y1: baseY, X2: x2, Y2: baseY, Color: pal.BaseLine, Width: baseLineWidth * scale},
	}
	if opts.Descender && letter.HasDescender() {
		descY := baseY + height*opts.Margin.Bottom/2
		lines = append(lines, Line{
			Kind: GuideDescender, X1: x1, Y1: descY, X2: x2, Y2: descY,
			Color: pal.Descender, Width: descLineWidth * scale, Dash: scaleDash(descenderDash, scale),
		})
	}

	fontSize := (baseY - topY) * opts.FontScale
	glyphs := make([]Glyph, 0, 2)
	for _, g := range []struct {
		char rune
		x    float64
	}{
		{letter.Upper, width * opts.UpperX},
		{letter.Lower, width * opts.LowerX},
	} {
		glyph, err := placeGlyph(g.char, g.x, baseY, fontSize, opts)
		if err != nil {
			return nil, err
		}
		glyphs = append(glyphs, glyph)
	}

	return &GuideLayout{
		Width:      width,
		Height:     height,
		Letter:     letter,
		Background: pal.Background,
		Lines:      lines,
		Glyphs:     glyphs,
		Ink: InkStyle{
			Color: pal.Ink,
			Width: inkWidth * scale,
			Cap:   CapRound,
			Join:  JoinRound,
		},
	}, nil
}

// placeGlyph 以 (x, baseline) 为水平中心与基线放置字形。
// 未注入 GlyphSource 时仅记录位置，不生成轮廓。
func placeGlyph(char rune, x, baseline, size float64, opts BuildOptions) (Glyph, error) {
	glyph := Glyph{
		Char:        char,
		X:           x,
		Baseline:    baseline,
		FontSize:    size,
		Fill:        opts.Palette.GlyphFill,
		Stroke:      opts.Palette.GlyphOutline,
		StrokeWidth: glyphLineWidth * opts.LineScale,
		Dash:        scaleDash(glyphDash, opts.LineScale),
	}
	if opts.Glyphs == nil {
		return glyph, nil
	}
	outline, advance, err := opts.Glyphs.Glyph(char, size)
	if err != nil {
		return Glyph{}, fmt.Errorf("生成字形 %q 轮廓失败: %w", char, err)
	}
	glyph.Advance = advance
	glyph.Outline = outline.Translate(x-advance/2, baseline)
	return glyph, nil
}

// Translate 返回平移后的轮廓副本。
func (o Outline) Translate(dx, dy float64) Outline {
	if len(o.Segments) == 0 {
		return Outline{}
	}
	out := make([]Segment, len(o.Segments))
	for i, seg := range o.Segments {
		out[i].Op = seg.Op
		for j := range seg.Args {
			out[i].Args[j] = Point{X: seg.Args[j].X + dx, Y: seg.Args[j].Y + dy}
		}
	}
	return Outline{Segments: out}
}

func scaleDash(dash []float64, scale float64) []float64 {
	out := make([]float64, len(dash))
	for i, d := range dash {
		out[i] = d * scale
	}
	return out
}
