package layout

// 该文件定义引导布局、字形与练习单的结果类型，供几何计算、渲染与调试 JSON 共用。

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Point 是逻辑坐标系中的一个点（左上角为原点，y 向下）。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LetterGlyph 保存同一字母的大写与小写形式。
type LetterGlyph struct {
	Upper rune `json:"upper"`
	Lower rune `json:"lower"`
}

// SurfaceDimensions 记录绘制面的逻辑尺寸与设备像素比。
// 物理尺寸恒等于逻辑尺寸乘以 Ratio，见 Physical。
type SurfaceDimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Ratio  float64 `json:"ratio"`
}

// GuideKind 标识一条引导线的用途。
type GuideKind int

const (
	GuideTop GuideKind = iota
	GuideMid
	GuideBase
	GuideDescender
)

func (k GuideKind) String() string {
	switch k {
	case GuideTop:
		return "top"
	case GuideMid:
		return "mid"
	case GuideBase:
		return "base"
	case GuideDescender:
		return "descender"
	default:
		return "unknown"
	}
}

// LineCap 对应画布的 lineCap。
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin 对应画布的 lineJoin。
type LineJoin int

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// Line 表示一条水平引导线段。
type Line struct {
	Kind  GuideKind `json:"kind"`
	X1    float64   `json:"x1"`
	Y1    float64   `json:"y1"`
	X2    float64   `json:"x2"`
	Y2    float64   `json:"y2"`
	Color Color     `json:"color"`
	Width float64   `json:"width"`
	Dash  []float64 `json:"dash,omitempty"` // 为空表示实线
}

// SegmentOp 是轮廓路径的绘制指令。
type SegmentOp int

const (
	OpMoveTo SegmentOp = iota
	OpLineTo
	OpQuadTo
	OpCubeTo
	OpClose
)

// Segment 是一条轮廓指令；Args 中有效点的个数由 Op 决定（MoveTo/LineTo 1 个，QuadTo 2 个，CubeTo 3 个）。
type Segment struct {
	Op   SegmentOp `json:"op"`
	Args [3]Point  `json:"args"`
}

// Outline 是已经定位到逻辑坐标的字形轮廓，所有子路径均已闭合。
type Outline struct {
	Segments []Segment `json:"segments,omitempty"`
}

// IsEmpty 判断轮廓是否没有任何绘制指令（例如空格）。
func (o Outline) IsEmpty() bool { return len(o.Segments) == 0 }

// Glyph 描述一个描红字形的位置与样式：先以淡色填充，再以虚线描边。
type Glyph struct {
	Char        rune      `json:"char"`
	X           float64   `json:"x"` // 水平中心
	Baseline    float64   `json:"baseline"`
	FontSize    float64   `json:"fontSize"`
	Advance     float64   `json:"advance"`
	Fill        Color     `json:"fill"`
	Stroke      Color     `json:"stroke"`
	StrokeWidth float64   `json:"strokeWidth"`
	Dash        []float64 `json:"dash,omitempty"`
	Outline     Outline   `json:"outline"`
}

// InkStyle 是引导层绘制完成后恢复的笔迹样式。
type InkStyle struct {
	Color Color    `json:"color"`
	Width float64  `json:"width"`
	Cap   LineCap  `json:"cap"`
	Join  LineJoin `json:"join"`
}

// GuideLayout 是一次 (字母, 宽, 高) 计算得到的只读引导布局。
type GuideLayout struct {
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Letter     LetterGlyph `json:"letter"`
	Background Color       `json:"background"`
	Lines      []Line      `json:"lines"`
	Glyphs     []Glyph     `json:"glyphs"`
	Ink        InkStyle    `json:"ink"`
}

// Guide 返回指定类型的引导线；描述线可能不存在。
func (g *GuideLayout) Guide(kind GuideKind) (Line, bool) {
	if g == nil {
		return Line{}, false
	}
	for _, ln := range g.Lines {
		if ln.Kind == kind {
			return ln, true
		}
	}
	return Line{}, false
}

// BandHeight 返回书写带（顶线到基线）的高度。
func (g *GuideLayout) BandHeight() float64 {
	top, ok1 := g.Guide(GuideTop)
	base, ok2 := g.Guide(GuideBase)
	if !ok1 || !ok2 {
		return 0
	}
	return base.Y1 - top.Y1
}
