package surface

import (
	"github.com/ByLCY/tracepad/layout"
	"github.com/ByLCY/tracepad/pointer"
)

// Context is the render target the surface owns. It mirrors the subset of a
// canvas 2D context the surface needs; coordinates passed to path methods are
// in user space and go through the current transform.
type Context interface {
	// SetSize resizes the backing store to width×height device pixels and
	// resets the transform to identity, like assigning a canvas width.
	SetSize(width, height int) error
	Scale(sx, sy float64)
	// Clear fills the whole backing store with bg, ignoring the transform.
	Clear(bg layout.Color)

	SetFillColor(c layout.Color)
	SetStrokeColor(c layout.Color)
	SetLineWidth(w float64)
	// SetLineDash sets the dash pattern; an empty pattern means solid.
	SetLineDash(dash []float64)
	SetLineCap(c layout.LineCap)
	SetLineJoin(j layout.LineJoin)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadTo(cx, cy, x, y float64)
	CubeTo(c1x, c1y, c2x, c2y, x, y float64)
	ClosePath()
	Fill() error
	Stroke() error
}

// Host supplies the environment values the surface reads: its on-screen
// bounding box and the device pixel ratio. Both are queried, never cached.
type Host interface {
	BoundingBox() pointer.Rect
	DevicePixelRatio() float64
}

// StaticHost is a Host with fixed values. Fields may be changed between
// calls to simulate scrolling or container resizes.
type StaticHost struct {
	Box   pointer.Rect
	Ratio float64
}

func (h *StaticHost) BoundingBox() pointer.Rect  { return h.Box }
func (h *StaticHost) DevicePixelRatio() float64 { return h.Ratio }
