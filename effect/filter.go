package effect

import (
	"github.com/disintegration/imaging"

	"github.com/gogpu/textsynth/raster"
)

var (
	// embossKernel highlights edges along the main diagonal.
	embossKernel = [9]float64{
		-2, -1, 0,
		-1, 1, 1,
		0, 1, 2,
	}

	sharpenKernel = [9]float64{
		-1, -1, -1,
		-1, 9, -1,
		-1, -1, -1,
	}
)

// Emboss applies the 3x3 emboss convolution.
func Emboss(img *raster.Image) *raster.Image {
	return convolve(img, embossKernel)
}

// Sharpen applies the 3x3 sharpening convolution.
func Sharpen(img *raster.Image) *raster.Image {
	return convolve(img, sharpenKernel)
}

func convolve(img *raster.Image, kernel [9]float64) *raster.Image {
	out := imaging.Convolve3x3(img.ToNRGBA(), kernel, nil)
	return raster.FromImage(out, img.Format())
}

// DownUp shrinks img by scale and enlarges it back to its original size,
// losing detail the way an upscaled low resolution scan does. A scale of
// 1 or less returns a copy.
func DownUp(img *raster.Image, scale float64) *raster.Image {
	if scale <= 1 {
		return img.Clone()
	}
	w, h := img.Width(), img.Height()
	sw := max(1, int(float64(w)/scale))
	sh := max(1, int(float64(h)/scale))

	small := imaging.Resize(img.ToNRGBA(), sw, sh, imaging.Linear)
	return raster.FromImage(imaging.Resize(small, w, h, imaging.Linear), img.Format())
}

// resize scales img with the linear (triangle) filter.
func resize(img *raster.Image, w, h int) *raster.Image {
	if w == img.Width() && h == img.Height() {
		return img.Clone()
	}
	return raster.FromImage(imaging.Resize(img.ToNRGBA(), w, h, imaging.Linear), img.Format())
}

// meanColor returns the average color of img, used to fill the areas a
// geometric transform uncovers.
func meanColor(img *raster.Image) []uint8 {
	ch := img.Channels()
	sums := make([]uint64, ch)
	pix := img.Pix()
	for i, v := range pix {
		sums[i%ch] += uint64(v)
	}
	n := uint64(img.Width() * img.Height())
	out := make([]uint8, ch)
	for c := range out {
		out[c] = uint8((sums[c] + n/2) / n)
	}
	return out
}

func fill(img *raster.Image, color []uint8) {
	ch := len(color)
	pix := img.Pix()
	for i := range pix {
		pix[i] = color[i%ch]
	}
}
