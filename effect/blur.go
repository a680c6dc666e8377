package effect

import (
	"math"
	"sync"

	"github.com/gogpu/textsynth/raster"
)

// GaussianKernel generates a normalized 1D Gaussian kernel for sigma.
//
// The kernel size is 2*ceil(3*sigma)+1, covering three standard
// deviations. For sigma <= 0 it returns the identity kernel [1].
func GaussianKernel(sigma float64) []float32 {
	if sigma <= 0 {
		return []float32{1.0}
	}

	half := int(math.Ceil(sigma * 3))
	size := half*2 + 1
	kernel := make([]float32, size)

	twoSigmaSq := 2 * sigma * sigma
	sum := float64(0)
	for i := range size {
		x := float64(i - half)
		val := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = float32(val)
		sum += val
	}

	invSum := float32(1.0 / sum)
	for i := range kernel {
		kernel[i] *= invSum
	}
	return kernel
}

// kernelCache memoizes kernels by sigma quantized to 0.01.
type kernelCache struct {
	mu     sync.RWMutex
	cache  map[int][]float32
	maxLen int
}

var defaultKernelCache = &kernelCache{cache: make(map[int][]float32), maxLen: 64}

func (c *kernelCache) get(sigma float64) []float32 {
	key := int(math.Round(sigma * 100))

	c.mu.RLock()
	if k, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return k
	}
	c.mu.RUnlock()

	k := GaussianKernel(float64(key) / 100)

	c.mu.Lock()
	if len(c.cache) >= c.maxLen {
		clear(c.cache)
	}
	c.cache[key] = k
	c.mu.Unlock()
	return k
}

// GaussianBlur returns img blurred with a separable Gaussian of the given
// sigma. Edges are extended by clamping. A non-positive sigma returns a
// copy.
func GaussianBlur(img *raster.Image, sigma float64) *raster.Image {
	if sigma <= 0 {
		return img.Clone()
	}
	kernel := defaultKernelCache.get(sigma)
	if len(kernel) == 1 {
		return img.Clone()
	}

	w, h, ch := img.Width(), img.Height(), img.Channels()
	temp := getTempBuffer(w * h * ch)
	defer putTempBuffer(temp)

	blurHorizontal(img, temp, kernel)
	dst, _ := raster.New(w, h, img.Format())
	blurVertical(temp, dst, kernel)
	return dst
}

// blurHorizontal convolves every row of src into temp.
func blurHorizontal(src *raster.Image, temp []float32, kernel []float32) {
	w, h, ch := src.Width(), src.Height(), src.Channels()
	half := len(kernel) / 2
	for y := range h {
		row := src.Row(y)
		for x := range w {
			for c := range ch {
				var acc float32
				for k, weight := range kernel {
					kx := clampInt(x+k-half, 0, w-1)
					acc += float32(row[kx*ch+c]) * weight
				}
				temp[(y*w+x)*ch+c] = acc
			}
		}
	}
}

// blurVertical convolves every column of temp into dst.
func blurVertical(temp []float32, dst *raster.Image, kernel []float32) {
	w, h, ch := dst.Width(), dst.Height(), dst.Channels()
	half := len(kernel) / 2
	for y := range h {
		row := dst.Row(y)
		for x := range w {
			for c := range ch {
				var acc float32
				for k, weight := range kernel {
					ky := clampInt(y+k-half, 0, h-1)
					acc += temp[(ky*w+x)*ch+c] * weight
				}
				row[x*ch+c] = clampUint8(acc)
			}
		}
	}
}

// floatBuffer wraps a slice for sync.Pool to avoid allocation warnings.
type floatBuffer struct {
	data []float32
}

var tempBufferPool = sync.Pool{
	New: func() any {
		return &floatBuffer{data: make([]float32, 64*1024*3)}
	},
}

// getTempBuffer returns a buffer of exactly size elements. Every element
// is overwritten by blurHorizontal, so the buffer is not cleared.
func getTempBuffer(size int) []float32 {
	wrapper := tempBufferPool.Get().(*floatBuffer)
	if len(wrapper.data) < size {
		tempBufferPool.Put(wrapper)
		return make([]float32, size)
	}
	return wrapper.data[:size]
}

func putTempBuffer(buf []float32) {
	if cap(buf) <= 16*1024*1024 {
		tempBufferPool.Put(&floatBuffer{data: buf[:cap(buf)]})
	}
}

// clampInt clamps v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampUint8 rounds v to the nearest value in [0, 255].
func clampUint8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
