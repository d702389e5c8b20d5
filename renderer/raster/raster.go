// Package raster backs the tracing surface with the gg software rasterizer.
package raster

import (
	"image"
	"image/color"
	"io"
	"os"

	"github.com/ByLCY/tracepad/layout"
	"github.com/gogpu/gg"
)

// Context adapts a gg.Context to the canvas-like drawing calls the surface
// issues. gg has a single brush and keeps stroke width, cap, join and dash
// together, so fill/stroke colours and the stroke style are tracked here and
// applied right before each Fill or Stroke.
type Context struct {
	dc     *gg.Context
	fill   layout.Color
	stroke layout.Color
	style  gg.Stroke
}

// New creates a context with a width×height backing store. Non-positive
// sizes are clamped to one pixel until the surface resizes it.
func New(width, height int) *Context {
	return &Context{
		dc:    gg.NewContext(max(width, 1), max(height, 1)),
		style: gg.DefaultStroke(),
	}
}

func (c *Context) SetSize(width, height int) error {
	if err := c.dc.Resize(width, height); err != nil {
		return err
	}
	// gg keeps the matrix across Resize; a resized canvas starts untransformed.
	c.dc.Identity()
	return nil
}

func (c *Context) Scale(sx, sy float64) { c.dc.Scale(sx, sy) }

func (c *Context) Clear(bg layout.Color) { c.dc.ClearWithColor(gg.FromColor(toRGBA(bg))) }

func (c *Context) SetFillColor(col layout.Color)   { c.fill = col }
func (c *Context) SetStrokeColor(col layout.Color) { c.stroke = col }
func (c *Context) SetLineWidth(w float64)          { c.style = c.style.WithWidth(w) }

func (c *Context) SetLineDash(dash []float64) {
	if len(dash) == 0 {
		c.style = c.style.WithDash(nil)
		return
	}
	c.style = c.style.WithDashPattern(dash...)
}

func (c *Context) SetLineCap(lc layout.LineCap) {
	switch lc {
	case layout.CapRound:
		c.style = c.style.WithCap(gg.LineCapRound)
	case layout.CapSquare:
		c.style = c.style.WithCap(gg.LineCapSquare)
	default:
		c.style = c.style.WithCap(gg.LineCapButt)
	}
}

func (c *Context) SetLineJoin(lj layout.LineJoin) {
	switch lj {
	case layout.JoinRound:
		c.style = c.style.WithJoin(gg.LineJoinRound)
	case layout.JoinBevel:
		c.style = c.style.WithJoin(gg.LineJoinBevel)
	default:
		c.style = c.style.WithJoin(gg.LineJoinMiter)
	}
}

func (c *Context) BeginPath()          { c.dc.ClearPath() }
func (c *Context) MoveTo(x, y float64) { c.dc.MoveTo(x, y) }
func (c *Context) LineTo(x, y float64) { c.dc.LineTo(x, y) }
func (c *Context) ClosePath()          { c.dc.ClosePath() }

func (c *Context) QuadTo(cx, cy, x, y float64) { c.dc.QuadraticTo(cx, cy, x, y) }

func (c *Context) CubeTo(c1x, c1y, c2x, c2y, x, y float64) {
	c.dc.CubicTo(c1x, c1y, c2x, c2y, x, y)
}

func (c *Context) Fill() error {
	c.dc.SetColor(toRGBA(c.fill))
	return c.dc.Fill()
}

func (c *Context) Stroke() error {
	c.dc.SetColor(toRGBA(c.stroke))
	c.dc.SetStroke(c.style)
	return c.dc.Stroke()
}

// Size returns the backing-store size in device pixels.
func (c *Context) Size() (int, int) { return c.dc.Width(), c.dc.Height() }

// Image returns the current backing store.
func (c *Context) Image() image.Image { return c.dc.Image() }

// EncodePNG writes the backing store as PNG.
func (c *Context) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

// SavePNG writes the backing store to a PNG file.
func (c *Context) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.dc.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Close releases the underlying gg context.
func (c *Context) Close() error { return c.dc.Close() }

func toRGBA(col layout.Color) color.RGBA {
	return color.RGBA{R: uint8(col.R), G: uint8(col.G), B: uint8(col.B), A: 0xff}
}
