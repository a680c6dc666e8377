package effect

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/gogpu/textsynth/internal/errkind"
	"github.com/gogpu/textsynth/internal/randx"
	"github.com/gogpu/textsynth/raster"
)

// DrawBox places img at a random offset on a canvas zoom times larger,
// draws a hollow rectangle enclosing it at a random gray level in
// [50, 255] with thickness 1 or 2, and scales the result back to the
// original size. zoom must be at least 1.
func DrawBox(img *raster.Image, zoom float64, rng *rand.Rand) (*raster.Image, error) {
	if zoom < 1 || math.IsNaN(zoom) {
		return nil, fmt.Errorf("effect: box zoom %v below 1: %w", zoom, errkind.InvalidArgument)
	}
	w, h := img.Width(), img.Height()
	pw := max(int(math.Ceil(float64(w)*zoom)), w+1)
	ph := max(int(math.Ceil(float64(h)*zoom)), h+1)

	pad, _ := raster.New(pw, ph, img.Format())
	fill(pad, meanColor(img))

	left := randx.IntRange(rng, 1, pw-w)
	top := randx.IntRange(rng, 1, ph-h)
	if err := pad.Paste(img, left, top); err != nil {
		return nil, err
	}

	// The box starts left of and above the text and ends at or past its
	// far edges, so it always encloses it.
	bx := randx.IntRange(rng, 1, left)
	by := randx.IntRange(rng, 1, top)
	bw := randx.IntRange(rng, w+left-bx, pw-bx)
	bh := randx.IntRange(rng, h+top-by, ph-by)
	gray := uint8(randx.IntRange(rng, 50, 255))
	thickness := 1 + rng.IntN(2)

	c := raster.RGB{R: gray, G: gray, B: gray}
	right, bottom := bx+bw-1, by+bh-1
	fillRect(pad, bx, by, right, by+thickness-1, c)
	fillRect(pad, bx, bottom, right, bottom+thickness-1, c)
	fillRect(pad, bx, by, bx+thickness-1, bottom, c)
	fillRect(pad, right, by, right+thickness-1, bottom, c)

	return resize(pad, w, h), nil
}

// fillRect paints the inclusive rectangle [x0, x1] x [y0, y1], clipped to
// the image.
func fillRect(img *raster.Image, x0, y0, x1, y1 int, c raster.RGB) {
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, img.Width()-1), min(y1, img.Height()-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetColor(x, y, c)
		}
	}
}
