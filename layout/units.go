package layout

import (
	"math"
	"strconv"
	"strings"
)

// This file defines unit-safe helpers for logical pixels, device pixels and print lengths.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitPX               // logical (CSS) pixels
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt, px and mm (96 logical pixels per inch).
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PxToMm = 25.4 / 96
	MmToPx = 96 / 25.4
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToMM converts the length to millimeters. Unit-less values are taken as millimeters.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitPX:
		return l.Value * PxToMm
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// ToPX converts the length to logical pixels.
func (l Length) ToPX() float64 {
	if l.Unit == UnitPX || l.Unit == UnitNone {
		return l.Value
	}
	return l.ToMM() * MmToPx
}

// ParseLength parses a length string such as "180mm", "2cm" or "400px", preserving its unit.
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// NormalizeRatio returns the device pixel ratio to use; missing or invalid ratios fall back to 1.
func NormalizeRatio(ratio float64) float64 {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return 1
	}
	return ratio
}

// Physical returns the backing-store size in device pixels: round(W·r) × round(H·r).
func (d SurfaceDimensions) Physical() (int, int) {
	r := NormalizeRatio(d.Ratio)
	return int(math.Round(d.Width * r)), int(math.Round(d.Height * r))
}

// IsDegenerate reports whether the surface has no drawable area yet.
func (d SurfaceDimensions) IsDegenerate() bool {
	w, h := d.Physical()
	return !(d.Width > 0) || !(d.Height > 0) || w <= 0 || h <= 0
}

// ToPhysical maps a logical point to device pixels.
func (d SurfaceDimensions) ToPhysical(p Point) Point {
	r := NormalizeRatio(d.Ratio)
	return Point{X: p.X * r, Y: p.Y * r}
}

// ToLogical maps a device-pixel point back to logical pixels.
func (d SurfaceDimensions) ToLogical(p Point) Point {
	r := NormalizeRatio(d.Ratio)
	return Point{X: p.X / r, Y: p.Y / r}
}
