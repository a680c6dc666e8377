package merge

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/textsynth/internal/errkind"
	"github.com/gogpu/textsynth/raster"
)

// blend solves, for every channel, the discrete Poisson equation
//
//	4*f(p) - sum f(q) = sum g(p, q)    for p in the mask
//	f(q) = bg(q)                       for q outside it
//
// where q ranges over the four neighbours of p and g is the guidance
// gradient. Jacobi iteration starts from the background and stops after
// Iterations sweeps or once no pixel moves more than Tolerance.
func (e *Engine) blend(text, bg *raster.Image, gain float64) (*raster.Image, error) {
	if !text.SameShape(bg) {
		return nil, fmt.Errorf("merge: text %dx%d %v and background %dx%d %v differ: %w",
			text.Width(), text.Height(), text.Format(), bg.Width(), bg.Height(), bg.Format(), errkind.InvalidArgument)
	}

	mask, box := e.mask(text)
	out := bg.Clone()
	if box.Empty() {
		return out, nil
	}

	// The solve runs on the mask bounding box grown by one pixel, which
	// holds every Dirichlet neighbour.
	box = box.Inset(-1).Intersect(bg.Bounds())
	w, h := box.Dx(), box.Dy()
	n := w * h
	src := make([]float64, n)
	tgt := make([]float64, n)
	guide := make([]float64, n)
	cur := make([]float64, n)
	next := make([]float64, n)
	inMask := make([]bool, n)
	for y := range h {
		for x := range w {
			inMask[y*w+x] = mask[(box.Min.Y+y)*text.Width()+box.Min.X+x]
		}
	}

	iterations := 0
	for c := range bg.Channels() {
		for y := range h {
			for x := range w {
				i := y*w + x
				src[i] = float64(text.At(box.Min.X+x, box.Min.Y+y, c)) * gain
				tgt[i] = float64(bg.At(box.Min.X+x, box.Min.Y+y, c))
			}
		}
		e.guidance(guide, src, tgt, inMask, w, h)
		copy(cur, tgt)
		copy(next, tgt)
		iterations = max(iterations, jacobi(cur, next, guide, inMask, w, h, e.cfg.Iterations, e.cfg.Tolerance))

		for y := range h {
			for x := range w {
				i := y*w + x
				if inMask[i] {
					out.Set(box.Min.X+x, box.Min.Y+y, c, raster.ClampUint8(cur[i]))
				}
			}
		}
	}

	e.logger.Debug("merge: poisson solved", "box", box, "iterations", iterations)
	return out, nil
}

// mask marks text pixels that depart from the fill by more than the
// threshold in some channel. The image border is never part of the mask
// so every masked pixel has four neighbours.
func (e *Engine) mask(text *raster.Image) ([]bool, image.Rectangle) {
	w, h, ch := text.Width(), text.Height(), text.Channels()
	fill := [3]uint8{}
	for c := range ch {
		fill[c] = e.fill.Channel(text.Format(), c)
	}

	mask := make([]bool, w*h)
	box := image.Rectangle{}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			for c := range ch {
				d := int(text.At(x, y, c)) - int(fill[c])
				if d > int(e.cfg.Threshold) || -d > int(e.cfg.Threshold) {
					mask[y*w+x] = true
					box = box.Union(image.Rect(x, y, x+1, y+1))
					break
				}
			}
		}
	}
	return mask, box
}

// guidance stores, for every masked pixel, the sum of its four guidance
// gradients.
func (e *Engine) guidance(guide, src, tgt []float64, inMask []bool, w, h int) {
	for y := range h {
		for x := range w {
			i := y*w + x
			guide[i] = 0
			if !inMask[i] {
				continue
			}
			for _, j := range [4]int{i - 1, i + 1, i - w, i + w} {
				gs := src[i] - src[j]
				if e.cfg.Gradient == Mixed {
					if gt := tgt[i] - tgt[j]; math.Abs(gt) > math.Abs(gs) {
						gs = gt
					}
				}
				guide[i] += gs
			}
		}
	}
}

// jacobi iterates until convergence and leaves the solution in cur.
// Masked pixels never touch the box edge, so their neighbour indices are
// always valid. It returns the number of sweeps run.
func jacobi(cur, next, guide []float64, inMask []bool, w, h, iterations int, tol float64) int {
	for it := 1; it <= iterations; it++ {
		delta := 0.0
		for y := 1; y < h-1; y++ {
			for x := 1; x < w-1; x++ {
				i := y*w + x
				if !inMask[i] {
					continue
				}
				v := (guide[i] + cur[i-1] + cur[i+1] + cur[i-w] + cur[i+w]) / 4
				delta = math.Max(delta, math.Abs(v-cur[i]))
				next[i] = v
			}
		}
		copy(cur, next)
		if delta <= tol {
			return it
		}
	}
	return iterations
}
