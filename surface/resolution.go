package surface

import (
	"fmt"

	"github.com/ByLCY/tracepad/layout"
	"github.com/ByLCY/tracepad/pointer"
)

// Resolve derives the surface dimensions from the measured bounding box and
// device pixel ratio. A missing or invalid ratio is treated as 1.
func Resolve(box pointer.Rect, ratio float64) layout.SurfaceDimensions {
	return layout.SurfaceDimensions{
		Width:  box.Width,
		Height: box.Height,
		Ratio:  layout.NormalizeRatio(ratio),
	}
}

// applyResolution sizes the backing store to the physical dimensions and
// scales the context so later drawing uses logical coordinates.
func applyResolution(ctx Context, dims layout.SurfaceDimensions) error {
	if dims.IsDegenerate() {
		return layout.ErrDegenerateGeometry
	}
	w, h := dims.Physical()
	if err := ctx.SetSize(w, h); err != nil {
		return fmt.Errorf("surface: resize backing store to %dx%d: %w", w, h, err)
	}
	ctx.Scale(dims.Ratio, dims.Ratio)
	return nil
}
