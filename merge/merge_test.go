package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/textsynth/internal/errkind"
	"github.com/gogpu/textsynth/internal/randx"
	"github.com/gogpu/textsynth/raster"
)

var (
	white = raster.RGB{R: 255, G: 255, B: 255}
	black = raster.RGB{}
)

func newEngine(t *testing.T, mutate func(*Config), opts ...Option) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := New(cfg, opts...)
	require.NoError(t, err)
	return e
}

// square returns a fill-colored image with an ink square in the middle.
func square(t *testing.T, w, h int, f raster.Format, fill, ink raster.RGB) *raster.Image {
	t.Helper()
	img, err := raster.NewFilled(w, h, f, fill)
	require.NoError(t, err)
	for y := h / 4; y < 3*h/4; y++ {
		for x := w / 4; x < 3*w/4; x++ {
			img.SetColor(x, y, ink)
		}
	}
	return img
}

// gradientBG returns a horizontal ramp.
func gradientBG(t *testing.T, w, h int, f raster.Format) *raster.Image {
	t.Helper()
	img, err := raster.New(w, h, f)
	require.NoError(t, err)
	for y := range h {
		for x := range w {
			v := uint8(60 + 150*x/max(w-1, 1))
			img.SetColor(x, y, raster.RGB{R: v, G: v / 2, B: 255 - v})
		}
	}
	return img
}

func TestRandomPad(t *testing.T) {
	e := newEngine(t, nil, WithFill(white))
	text := square(t, 200, 64, raster.RGB8, white, black)
	rng := randx.New(1)

	for range 30 {
		out, err := e.RandomPad(text, 48, 600, rng)
		require.NoError(t, err)
		assert.Equal(t, 48, out.Height())
		assert.Equal(t, 600, out.Width())
		assert.Equal(t, raster.RGB8, out.Format())

		// Rows 0 and the right margin stay fill colored.
		for x := range out.Width() {
			assert.Equal(t, uint8(255), out.At(x, 0, 0))
		}
		for y := range out.Height() {
			assert.Equal(t, uint8(255), out.At(599, y, 0))
		}
	}
}

func TestRandomPadKeepsAspect(t *testing.T) {
	e := newEngine(t, func(c *Config) { c.HeightDiff = randx.Fixed(4) }, WithFill(white))
	text := square(t, 300, 30, raster.Gray8, white, black)

	// Too wide for the target: scaled to the full width and shorter than
	// the height allows.
	out, err := e.RandomPad(text, 40, 100, randx.New(2))
	require.NoError(t, err)
	assert.Equal(t, 100, out.Width())
	inkRows := 0
	for y := range out.Height() {
		for x := range out.Width() {
			if out.At(x, y, 0) < 128 {
				inkRows++
				break
			}
		}
	}
	assert.InDelta(t, 5, inkRows, 2, "10:1 text at width 100 has a 5 row ink band")
}

func TestRandomPadRejects(t *testing.T) {
	e := newEngine(t, nil)
	text := square(t, 10, 10, raster.Gray8, black, white)
	for _, s := range [][2]int{{0, 10}, {10, 0}, {-1, -1}} {
		_, err := e.RandomPad(text, s[0], s[1], randx.New(1))
		assert.ErrorIs(t, err, errkind.InvalidArgument)
	}
}

func TestRandomChangeBackground(t *testing.T) {
	e := newEngine(t, func(c *Config) {
		c.BgAlpha = randx.Fixed(1)
		c.BgBeta = randx.Fixed(-100)
	})
	bg, err := raster.FromPix([]uint8{200, 120, 10, 255}, 2, 2, raster.Gray8)
	require.NoError(t, err)

	out := e.RandomChangeBackground(bg, randx.New(1))
	assert.Equal(t, []uint8{100, 50, 50, 155}, out.Pix())
	assert.Equal(t, uint8(200), bg.At(0, 0, 0), "input untouched")

	rng := randx.New(5)
	def := newEngine(t, nil)
	for range 20 {
		out := def.RandomChangeBackground(gradientBG(t, 30, 10, raster.RGB8), rng)
		require.Equal(t, 30, out.Width())
		require.Equal(t, 10, out.Height())
		require.Equal(t, raster.RGB8, out.Format())
		for _, v := range out.Pix() {
			require.GreaterOrEqual(t, v, uint8(50))
		}
	}
}

func TestPoissonEditBlending(t *testing.T) {
	for _, f := range []raster.Format{raster.Gray8, raster.RGB8} {
		e := newEngine(t, nil, WithFill(black))
		bg := gradientBG(t, 80, 40, f)
		text := square(t, 80, 40, f, black, white)

		out, err := e.PoissonEdit(text, bg)
		require.NoError(t, err)
		require.True(t, out.SameShape(bg))

		mask, _ := e.mask(text)
		changed := false
		for y := range 40 {
			for x := range 80 {
				for c := range bg.Channels() {
					if !mask[y*80+x] {
						require.Equal(t, bg.At(x, y, c), out.At(x, y, c), "unmasked (%d,%d) must keep the background", x, y)
					} else if out.At(x, y, c) != bg.At(x, y, c) {
						changed = true
					}
				}
			}
		}
		assert.True(t, changed, "%v: masked region must change", f)
	}
}

func TestPoissonEditReconstructsOnFlatBackground(t *testing.T) {
	e := newEngine(t, func(c *Config) {
		c.Gradient = Source
		c.Iterations = 5000
		c.Tolerance = 1e-4
	}, WithFill(white))
	bg, err := raster.NewFilled(40, 20, raster.RGB8, white)
	require.NoError(t, err)
	text := square(t, 40, 20, raster.RGB8, white, raster.RGB{R: 200, G: 10, B: 40})

	out, err := e.PoissonEdit(text, bg)
	require.NoError(t, err)
	for i, v := range out.Pix() {
		assert.InDelta(t, text.Pix()[i], v, 2, "sample %d", i)
	}
}

func TestPoissonEditEdgeCases(t *testing.T) {
	e := newEngine(t, nil)
	bg := gradientBG(t, 20, 10, raster.Gray8)

	_, err := e.PoissonEdit(square(t, 21, 10, raster.Gray8, black, white), bg)
	assert.ErrorIs(t, err, errkind.InvalidArgument)
	_, err = e.PoissonEdit(square(t, 20, 10, raster.RGB8, black, white), bg)
	assert.ErrorIs(t, err, errkind.InvalidArgument)

	empty, _ := raster.New(20, 10, raster.Gray8)
	out, err := e.PoissonEdit(empty, bg)
	require.NoError(t, err)
	assert.True(t, out.Equal(bg))
	assert.NotSame(t, bg, out)
}

func TestComposeTwoColors(t *testing.T) {
	ink := raster.RGB{R: 20, G: 40, B: 200}
	paper := raster.RGB{R: 250, G: 240, B: 90}
	e := newEngine(t, nil, WithFill(paper))
	bg, err := raster.NewFilled(300, 48, raster.RGB8, paper)
	require.NoError(t, err)
	text := square(t, 120, 64, raster.RGB8, paper, ink)

	out, err := e.Compose(text, bg, randx.New(3), false)
	require.NoError(t, err)
	require.True(t, out.SameShape(bg))

	near := func(x, y int, c raster.RGB) bool {
		d := 0
		for ch, want := range []uint8{c.R, c.G, c.B} {
			d = max(d, absDiff(out.At(x, y, ch), want))
		}
		return d <= 8
	}
	other := 0
	for y := range out.Height() {
		for x := range out.Width() {
			if !near(x, y, ink) && !near(x, y, paper) {
				other++
			}
		}
	}
	assert.Less(t, float64(other)/float64(300*48), 0.05)
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestComposeReverse(t *testing.T) {
	bg := gradientBG(t, 100, 32, raster.Gray8)
	text := square(t, 60, 40, raster.Gray8, black, white)

	plain := newEngine(t, func(c *Config) { c.ReverseProb = 0 })
	inverted := newEngine(t, func(c *Config) { c.ReverseProb = 1 })

	a, err := plain.Compose(text, bg, randx.New(8), true)
	require.NoError(t, err)
	b, err := inverted.Compose(text, bg, randx.New(8), true)
	require.NoError(t, err)
	for i, v := range a.Pix() {
		require.Equal(t, 255-v, b.Pix()[i])
	}
}

func TestEngineWithFill(t *testing.T) {
	e := newEngine(t, nil)
	f := e.WithFill(white)
	assert.Equal(t, black, e.Fill())
	assert.Equal(t, white, f.Fill())
	assert.Equal(t, e.Config(), f.Config())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"reverse prob", func(c *Config) { c.ReverseProb = 2 }},
		{"bg color prob", func(c *Config) { c.BgColorProb = -1 }},
		{"iterations", func(c *Config) { c.Iterations = 0 }},
		{"tolerance", func(c *Config) { c.Tolerance = -1 }},
		{"gradient", func(c *Config) { c.Gradient = 9 }},
		{"height diff", func(c *Config) { c.HeightDiff = randx.U(-3, 2) }},
		{"reversed range", func(c *Config) { c.BgAlpha = randx.U(2, 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			_, err := New(c)
			assert.ErrorIs(t, err, errkind.InvalidArgument)
		})
	}
}
