package fonts

import (
	"fmt"
	"sync"

	"github.com/ByLCY/tracepad/layout"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Face 把 sfnt 字体转换为 layout.GlyphSource，输出以基线起点为原点、y 向下的轮廓。
type Face struct {
	mu  sync.Mutex
	fnt *sfnt.Font
	buf sfnt.Buffer
}

// NewFace 解析 TrueType/OpenType 字体数据。
func NewFace(data []byte) (*Face, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体失败: %w", err)
	}
	return &Face{fnt: f}, nil
}

// LoadFace 等价于 Load 后调用 NewFace。
func LoadFace(src string) (*Face, error) {
	data, err := Load(src)
	if err != nil {
		return nil, err
	}
	return NewFace(data)
}

// Default 返回内置的 Go Bold 字形源。
func Default() *Face {
	f, err := NewFace(builtin[BuiltinBold])
	if err != nil {
		panic(err)
	}
	return f
}

var _ layout.GlyphSource = (*Face)(nil)

// Glyph 返回字符 r 在字号 size 下的轮廓与前进宽度。每个子路径都以 OpClose 结束。
func (f *Face) Glyph(r rune, size float64) (layout.Outline, float64, error) {
	if !(size > 0) {
		return layout.Outline{}, 0, fmt.Errorf("字号 %g 无效", size)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	idx, err := f.fnt.GlyphIndex(&f.buf, r)
	if err != nil {
		return layout.Outline{}, 0, fmt.Errorf("查找字形 %q 失败: %w", r, err)
	}
	if idx == 0 {
		return layout.Outline{}, 0, fmt.Errorf("字体中没有字形 %q", r)
	}
	ppem := fixed.Int26_6(size * 64)
	segs, err := f.fnt.LoadGlyph(&f.buf, idx, ppem, nil)
	if err != nil {
		return layout.Outline{}, 0, fmt.Errorf("加载字形 %q 失败: %w", r, err)
	}
	adv, err := f.fnt.GlyphAdvance(&f.buf, idx, ppem, font.HintingNone)
	if err != nil {
		return layout.Outline{}, 0, fmt.Errorf("读取字形 %q 宽度失败: %w", r, err)
	}
	return convert(segs), fromFixed(adv), nil
}

func convert(segs sfnt.Segments) layout.Outline {
	out := make([]layout.Segment, 0, len(segs)+4)
	open := false
	for _, s := range segs {
		var seg layout.Segment
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				out = append(out, layout.Segment{Op: layout.OpClose})
			}
			open = true
			seg.Op = layout.OpMoveTo
		case sfnt.SegmentOpLineTo:
			seg.Op = layout.OpLineTo
		case sfnt.SegmentOpQuadTo:
			seg.Op = layout.OpQuadTo
		case sfnt.SegmentOpCubeTo:
			seg.Op = layout.OpCubeTo
		default:
			continue
		}
		for i, p := range s.Args {
			seg.Args[i] = layout.Point{X: fromFixed(p.X), Y: fromFixed(p.Y)}
		}
		out = append(out, seg)
	}
	if open {
		out = append(out, layout.Segment{Op: layout.OpClose})
	}
	return layout.Outline{Segments: out}
}

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }
