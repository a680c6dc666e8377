package raster

import "math"

// Bilinear samples channel c at continuous pixel coordinates (x, y), where
// integer coordinates address pixel centers. ok is false when (x, y) lies
// outside the image, in which case the caller supplies its own border value.
func (m *Image) Bilinear(x, y float64, c int) (v float64, ok bool) {
	if x < -0.5 || y < -0.5 || x > float64(m.width)-0.5 || y > float64(m.height)-0.5 {
		return 0, false
	}

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	x1 := clamp(x0+1, 0, m.width-1)
	y1 := clamp(y0+1, 0, m.height-1)
	x0 = clamp(x0, 0, m.width-1)
	y0 = clamp(y0, 0, m.height-1)

	p00 := float64(m.At(x0, y0, c))
	p10 := float64(m.At(x1, y0, c))
	p01 := float64(m.At(x0, y1, c))
	p11 := float64(m.At(x1, y1, c))

	top := p00 + (p10-p00)*fx
	bottom := p01 + (p11-p01)*fx
	return top + (bottom-top)*fy, true
}

// ClampUint8 rounds v to the nearest integer in [0, 255].
func ClampUint8(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// clamp clamps an integer to [minVal, maxVal].
func clamp(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
