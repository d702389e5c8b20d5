package surface

import (
	"fmt"

	"github.com/ByLCY/tracepad/layout"
)

// paintGuides wipes the backing store and draws the guide layer, then leaves
// the context configured with the ink style.
func paintGuides(ctx Context, g *layout.GuideLayout) error {
	ctx.Clear(g.Background)
	ctx.SetLineCap(layout.CapButt)
	ctx.SetLineJoin(layout.JoinMiter)

	for _, ln := range g.Lines {
		ctx.BeginPath()
		ctx.SetStrokeColor(ln.Color)
		ctx.SetLineWidth(ln.Width)
		ctx.SetLineDash(ln.Dash)
		ctx.MoveTo(ln.X1, ln.Y1)
		ctx.LineTo(ln.X2, ln.Y2)
		if err := ctx.Stroke(); err != nil {
			return fmt.Errorf("surface: stroke %s guide: %w", ln.Kind, err)
		}
	}

	for _, gl := range g.Glyphs {
		if gl.Outline.IsEmpty() {
			continue
		}
		ctx.SetLineDash(nil)
		ctx.SetFillColor(gl.Fill)
		tracePath(ctx, gl.Outline)
		if err := ctx.Fill(); err != nil {
			return fmt.Errorf("surface: fill glyph %q: %w", gl.Char, err)
		}
		ctx.SetStrokeColor(gl.Stroke)
		ctx.SetLineWidth(gl.StrokeWidth)
		ctx.SetLineDash(gl.Dash)
		tracePath(ctx, gl.Outline)
		if err := ctx.Stroke(); err != nil {
			return fmt.Errorf("surface: outline glyph %q: %w", gl.Char, err)
		}
	}

	applyInk(ctx, g.Ink)
	return nil
}

func applyInk(ctx Context, ink layout.InkStyle) {
	ctx.SetLineDash(nil)
	ctx.SetStrokeColor(ink.Color)
	ctx.SetLineWidth(ink.Width)
	ctx.SetLineCap(ink.Cap)
	ctx.SetLineJoin(ink.Join)
}

func tracePath(ctx Context, o layout.Outline) {
	ctx.BeginPath()
	for _, seg := range o.Segments {
		a := seg.Args
		switch seg.Op {
		case layout.OpMoveTo:
			ctx.MoveTo(a[0].X, a[0].Y)
		case layout.OpLineTo:
			ctx.LineTo(a[0].X, a[0].Y)
		case layout.OpQuadTo:
			ctx.QuadTo(a[0].X, a[0].Y, a[1].X, a[1].Y)
		case layout.OpCubeTo:
			ctx.CubeTo(a[0].X, a[0].Y, a[1].X, a[1].Y, a[2].X, a[2].Y)
		case layout.OpClose:
			ctx.ClosePath()
		}
	}
}
