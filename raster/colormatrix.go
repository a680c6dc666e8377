package raster

// ColorMatrix is a 3x4 color transformation in row-major order:
//
//	[R']   [m0 m1  m2  m3 ]   [R]
//	[G'] = [m4 m5  m6  m7 ] * [G]
//	[B']   [m8 m9  m10 m11]   [B]
//	                          [1]
//
// The fourth column is an offset. Values are in [0, 255] during the
// transformation and clamped afterwards. A Gray8 sample v is read as
// (v, v, v) and takes the R' row.
type ColorMatrix [12]float64

// IdentityMatrix passes colors through unchanged.
func IdentityMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}
}

// LinearMatrix maps every channel through v*gain + offset. A gain above 1
// raises contrast; the offset shifts brightness.
func LinearMatrix(gain, offset float64) ColorMatrix {
	return ColorMatrix{
		gain, 0, 0, offset,
		0, gain, 0, offset,
		0, 0, gain, offset,
	}
}

// InvertMatrix maps every channel v to 255 - v.
func InvertMatrix() ColorMatrix {
	return LinearMatrix(-1, 255)
}

// GrayscaleMatrix replaces every channel with the BT.601 luma.
func GrayscaleMatrix() ColorMatrix {
	const lumR, lumG, lumB = 0.299, 0.587, 0.114
	return ColorMatrix{
		lumR, lumG, lumB, 0,
		lumR, lumG, lumB, 0,
		lumR, lumG, lumB, 0,
	}
}

// Then returns the matrix applying m first and next second.
func (m ColorMatrix) Then(next ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for row := range 3 {
		for col := range 3 {
			var sum float64
			for k := range 3 {
				sum += next[row*4+k] * m[k*4+col]
			}
			out[row*4+col] = sum
		}
		out[row*4+3] = next[row*4]*m[3] + next[row*4+1]*m[7] + next[row*4+2]*m[11] + next[row*4+3]
	}
	return out
}

// separable reports whether every output channel depends only on the same
// input channel.
func (m ColorMatrix) separable() bool {
	return m[1] == 0 && m[2] == 0 && m[4] == 0 && m[6] == 0 && m[8] == 0 && m[9] == 0
}

// Apply returns a copy of img transformed by m, clamped to [0, 255].
func (m ColorMatrix) Apply(img *Image) *Image {
	return m.ApplyClamped(img, 0, 255)
}

// ApplyClamped returns a copy of img transformed by m with every result
// clamped to [lo, hi]. The format is kept.
func (m ColorMatrix) ApplyClamped(img *Image, lo, hi uint8) *Image {
	dst := img.Clone()
	limit := func(v float64) uint8 {
		return min(max(ClampUint8(v), lo), hi)
	}

	if img.format == Gray8 {
		gain := m[0] + m[1] + m[2]
		var lut [256]uint8
		for v := range lut {
			lut[v] = limit(float64(v)*gain + m[3])
		}
		for i, v := range dst.pix {
			dst.pix[i] = lut[v]
		}
		return dst
	}

	if m.separable() {
		var luts [3][256]uint8
		for c := range 3 {
			for v := range 256 {
				luts[c][v] = limit(float64(v)*m[c*5] + m[c*4+3])
			}
		}
		for i, v := range dst.pix {
			dst.pix[i] = luts[i%3][v]
		}
		return dst
	}

	for i := 0; i < len(dst.pix); i += 3 {
		r, g, b := float64(img.pix[i]), float64(img.pix[i+1]), float64(img.pix[i+2])
		for c := range 3 {
			row := m[c*4 : c*4+4]
			dst.pix[i+c] = limit(row[0]*r + row[1]*g + row[2]*b + row[3])
		}
	}
	return dst
}

// ToGray returns a Gray8 image holding the R' row of m for every pixel.
func (m ColorMatrix) ToGray(img *Image) *Image {
	if img.format == Gray8 {
		return m.Apply(img)
	}
	dst, _ := New(img.width, img.height, Gray8)
	for i, j := 0, 0; j < len(dst.pix); i, j = i+3, j+1 {
		v := m[0]*float64(img.pix[i]) + m[1]*float64(img.pix[i+1]) + m[2]*float64(img.pix[i+2]) + m[3]
		dst.pix[j] = ClampUint8(v)
	}
	return dst
}
