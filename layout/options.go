package layout

// BuildOptions 配置几何计算所需的依赖与比例参数。
type BuildOptions struct {
	Glyphs    GlyphSource
	Margin    MarginPolicy
	UpperX    float64 // 大写字形中心，W 的比例
	LowerX    float64 // 小写字形中心，W 的比例
	FontScale float64 // 字号 = FontScale × 书写带高度
	Descender bool    // 是否为有下伸部的字母绘制下伸线
	LineScale float64 // 线宽与虚线长度的缩放（像素为 1，毫米约 0.26）
	Palette   Palette
}

// MarginPolicy 以高度比例描述顶线与基线到边缘的距离。
type MarginPolicy struct {
	Top    float64 `json:"top" toml:"top"`
	Bottom float64 `json:"bottom" toml:"bottom"`
}

// Palette 汇总引导层与笔迹的配色。
type Palette struct {
	Background   Color
	TopLine      Color
	BaseLine     Color
	Descender    Color
	GlyphFill    Color
	GlyphOutline Color
	Ink          Color
}

// GlyphSource 负责把字符转换为指定字号的轮廓，原点位于基线起点。
type GlyphSource interface {
	Glyph(r rune, size float64) (Outline, float64, error)
}

// DefaultPalette 返回参考界面使用的配色。
func DefaultPalette() Palette {
	return Palette{
		Background:   MustHex("#ffffff"),
		TopLine:      MustHex("#bae6fd"),
		BaseLine:     MustHex("#fca5a5"),
		Descender:    MustHex("#bae6fd"),
		GlyphFill:    MustHex("#f8fafc"),
		GlyphOutline: MustHex("#cbd5e1"),
		Ink:          MustHex("#0ea5e9"),
	}
}

// DefaultOptions 返回默认的边距、字形位置与配色；Glyphs 需要调用方注入。
func DefaultOptions() BuildOptions {
	return BuildOptions{
		Margin:    MarginPolicy{Top: 0.2, Bottom: 0.2},
		UpperX:    0.3,
		LowerX:    0.7,
		FontScale: 1.2,
		Descender: true,
		LineScale: 1,
		Palette:   DefaultPalette(),
	}
}

func (o BuildOptions) withDefaults() BuildOptions {
	def := DefaultOptions()
	if o.Margin.Top <= 0 || o.Margin.Bottom <= 0 || o.Margin.Top+o.Margin.Bottom >= 1 {
		o.Margin = def.Margin
	}
	if o.UpperX <= 0 || o.UpperX >= 1 {
		o.UpperX = def.UpperX
	}
	if o.LowerX <= 0 || o.LowerX >= 1 {
		o.LowerX = def.LowerX
	}
	if o.FontScale <= 0 {
		o.FontScale = def.FontScale
	}
	if o.LineScale <= 0 {
		o.LineScale = def.LineScale
	}
	if o.Palette == (Palette{}) {
		o.Palette = def.Palette
	}
	return o
}
