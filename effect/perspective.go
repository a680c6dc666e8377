package effect

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/image/math/f64"

	"github.com/gogpu/textsynth/internal/errkind"
	"github.com/gogpu/textsynth/raster"
)

// fovY is the vertical field of view, in degrees, of the virtual camera
// looking at the rotated text plane.
const fovY = 50.0

var errSingular = errors.New("effect: singular perspective system")

// Perspective rotates img in 3D by the given angles (degrees, about the x,
// y and z axes), projects it back through a pinhole camera and crops the
// projected quad. The result has img's height, or its width when keeping
// the aspect ratio would make it wider than img. Uncovered corners take
// the image's mean color.
func Perspective(img *raster.Image, ax, ay, az float64) (*raster.Image, error) {
	w, h := float64(img.Width()), float64(img.Height())
	hm, side, quad := warpMatrix(w, h, ax, ay, az)
	inv, ok := invert3(hm)
	if !ok {
		return nil, fmt.Errorf("effect: perspective %v/%v/%v: %w: %w", ax, ay, az, errSingular, errkind.InvalidArgument)
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range quad {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	sideN := int(math.Ceil(side))
	x0 := clampInt(int(math.Floor(minX)), 0, sideN-1)
	y0 := clampInt(int(math.Floor(minY)), 0, sideN-1)
	x1 := clampInt(int(math.Ceil(maxX)), x0, sideN-1)
	y1 := clampInt(int(math.Ceil(maxY)), y0, sideN-1)

	// Only the cropped window of the side x side canvas is ever kept, so
	// only it is warped.
	crop, _ := raster.New(x1-x0+1, y1-y0+1, img.Format())
	bg := meanColor(img)
	ch := img.Channels()
	for y := range crop.Height() {
		row := crop.Row(y)
		for x := range crop.Width() {
			// Pixel centers sit at half-integer canvas coordinates.
			sx, sy, ok := apply3(inv, float64(x+x0)+0.5, float64(y+y0)+0.5)
			for c := range ch {
				v, in := 0.0, false
				if ok {
					v, in = img.Bilinear(sx-0.5, sy-0.5, c)
				}
				if in {
					row[x*ch+c] = raster.ClampUint8(v)
				} else {
					row[x*ch+c] = bg[c]
				}
			}
		}
	}

	cw, cht := float64(crop.Width()), float64(crop.Height())
	rw, rh := int(math.Ceil(cw*h/cht)), int(h)
	if rw > int(w) {
		rw, rh = int(w), min(int(math.Ceil(cht*w/cw)), int(h))
	}
	return resize(crop, max(rw, 1), max(rh, 1)), nil
}

// warpMatrix returns the homography taking image pixels to the warped
// canvas, the canvas side length and the warped image corners.
func warpMatrix(w, h, ax, ay, az float64) (f64.Mat3, float64, [4][2]float64) {
	half := fovY / 2 * math.Pi / 180
	d := math.Hypot(w, h)
	side := d / math.Cos(half)
	hyp := d / (2 * math.Sin(half))
	near := hyp - d/2
	far := hyp + d/2

	translate := identity4()
	translate[11] = -hyp

	proj := identity4()
	proj[0] = 1 / math.Tan(half)
	proj[5] = proj[0]
	proj[10] = -(far + near) / (far - near)
	proj[11] = -(2 * far * near) / (far - near)
	proj[14] = -1

	m := mul4(mul4(proj, translate), rotation(ax, ay, az))

	corners := [4][2]float64{{-w / 2, h / 2}, {w / 2, h / 2}, {w / 2, -h / 2}, {-w / 2, -h / 2}}
	var src, dst [4][2]float64
	for i, p := range corners {
		v := mulVec4(m, f64.Vec4{p[0], p[1], 0, 1})
		src[i] = [2]float64{p[0] + w/2, p[1] + h/2}
		dst[i] = [2]float64{(v[0]/v[3] + 1) * side / 2, (v[1]/v[3] + 1) * side / 2}
	}
	hm, _ := homography(src, dst)
	return hm, side, dst
}

func rotation(ax, ay, az float64) f64.Mat4 {
	sx, cx := math.Sincos(ax * math.Pi / 180)
	sy, cy := math.Sincos(ay * math.Pi / 180)
	sz, cz := math.Sincos(az * math.Pi / 180)
	rx := f64.Mat4{
		1, 0, 0, 0,
		0, cx, -sx, 0,
		0, sx, cx, 0,
		0, 0, 0, 1,
	}
	ry := f64.Mat4{
		cy, 0, sy, 0,
		0, 1, 0, 0,
		-sy, 0, cy, 0,
		0, 0, 0, 1,
	}
	rz := f64.Mat4{
		cz, -sz, 0, 0,
		sz, cz, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	return mul4(mul4(rx, ry), rz)
}

func identity4() f64.Mat4 {
	return f64.Mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

// mul4 multiplies row-major 4x4 matrices.
func mul4(a, b f64.Mat4) f64.Mat4 {
	var out f64.Mat4
	for r := range 4 {
		for c := range 4 {
			var s float64
			for k := range 4 {
				s += a[r*4+k] * b[k*4+c]
			}
			out[r*4+c] = s
		}
	}
	return out
}

func mulVec4(m f64.Mat4, v f64.Vec4) f64.Vec4 {
	var out f64.Vec4
	for r := range 4 {
		out[r] = m[r*4]*v[0] + m[r*4+1]*v[1] + m[r*4+2]*v[2] + m[r*4+3]*v[3]
	}
	return out
}

// homography solves for the projective map taking each src point to the
// matching dst point, normalized so that its last entry is 1.
func homography(src, dst [4][2]float64) (f64.Mat3, bool) {
	var a [8][9]float64
	for i := range 4 {
		x, y := src[i][0], src[i][1]
		u, v := dst[i][0], dst[i][1]
		a[i] = [9]float64{x, y, 1, 0, 0, 0, -x * u, -y * u, u}
		a[i+4] = [9]float64{0, 0, 0, x, y, 1, -x * v, -y * v, v}
	}
	sol, ok := solve8(a)
	if !ok {
		return f64.Mat3{}, false
	}
	return f64.Mat3{sol[0], sol[1], sol[2], sol[3], sol[4], sol[5], sol[6], sol[7], 1}, true
}

// solve8 runs Gaussian elimination with partial pivoting on the augmented
// 8x9 system.
func solve8(a [8][9]float64) ([8]float64, bool) {
	const n = 8
	for col := range n {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return [8]float64{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c <= n; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	var x [8]float64
	for r := n - 1; r >= 0; r-- {
		s := a[r][n]
		for c := r + 1; c < n; c++ {
			s -= a[r][c] * x[c]
		}
		x[r] = s / a[r][r]
	}
	return x, true
}

// invert3 inverts a 3x3 matrix through its adjugate.
func invert3(m f64.Mat3) (f64.Mat3, bool) {
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[3], m[4], m[5]
	g, h, i := m[6], m[7], m[8]

	c0 := e*i - f*h
	c1 := -(d*i - f*g)
	c2 := d*h - e*g
	det := a*c0 + b*c1 + c*c2
	if math.Abs(det) < 1e-12 || math.IsNaN(det) {
		return f64.Mat3{}, false
	}
	inv := 1 / det
	return f64.Mat3{
		c0 * inv, -(b*i - c*h) * inv, (b*f - c*e) * inv,
		c1 * inv, (a*i - c*g) * inv, -(a*f - c*d) * inv,
		c2 * inv, -(a*h - b*g) * inv, (a*e - b*d) * inv,
	}, true
}

// apply3 maps (x, y) through the homography m. ok is false for points at
// infinity.
func apply3(m f64.Mat3, x, y float64) (px, py float64, ok bool) {
	wz := m[6]*x + m[7]*y + m[8]
	if math.Abs(wz) < 1e-12 {
		return 0, 0, false
	}
	return (m[0]*x + m[1]*y + m[2]) / wz, (m[3]*x + m[4]*y + m[5]) / wz, true
}
