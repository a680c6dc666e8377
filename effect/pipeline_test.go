package effect

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/textsynth/internal/errkind"
	"github.com/gogpu/textsynth/internal/randx"
	"github.com/gogpu/textsynth/raster"
)

// textLike returns a light image with a dark horizontal bar.
func textLike(t *testing.T, w, h int, f raster.Format) *raster.Image {
	t.Helper()
	img, err := raster.NewFilled(w, h, f, raster.RGB{R: 230, G: 220, B: 210})
	require.NoError(t, err)
	for y := h / 3; y < 2*h/3; y++ {
		for x := w / 5; x < 4*w/5; x++ {
			img.SetColor(x, y, raster.RGB{R: 20, G: 30, B: 40})
		}
	}
	return img
}

func TestApplyIdentity(t *testing.T) {
	p, err := New(Disabled())
	require.NoError(t, err)

	for _, f := range []raster.Format{raster.Gray8, raster.RGB8} {
		src := textLike(t, 120, 32, f)
		got, err := p.Apply(src, randx.New(1))
		require.NoError(t, err)
		assert.True(t, got.Equal(src))
		assert.NotSame(t, src, got)
	}
}

func TestApplyDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BoxProb, cfg.PerspectiveProb, cfg.BlurProb = 0.5, 0.5, 0.5
	cfg.EmbossProb, cfg.SharpenProb, cfg.DownUpProb = 0.3, 0.3, 0.5
	p, err := New(cfg)
	require.NoError(t, err)

	src := textLike(t, 90, 24, raster.Gray8)
	for seed := range uint64(20) {
		a, err := p.Apply(src, randx.New(seed))
		require.NoError(t, err)
		b, err := p.Apply(src, randx.New(seed))
		require.NoError(t, err)
		assert.True(t, a.Equal(b), "seed %d", seed)
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BoxProb, cfg.PerspectiveProb, cfg.BlurProb = 1, 1, 1
	cfg.EmbossProb, cfg.SharpenProb, cfg.DownUpProb = 1, 1, 1
	p, err := New(cfg)
	require.NoError(t, err)

	src := textLike(t, 90, 24, raster.RGB8)
	orig := src.Clone()
	_, err = p.Apply(src, randx.New(3))
	require.NoError(t, err)
	assert.True(t, src.Equal(orig))
}

func TestGatesAreDrawnUpFront(t *testing.T) {
	var order []string
	record := func(name string) Transform {
		return func(img *raster.Image, rng *rand.Rand) (*raster.Image, error) {
			order = append(order, name)
			rng.Float64() // parameter draw
			return img.Clone(), nil
		}
	}
	p := NewPipeline(
		Stage{"a", 1, record("a")},
		Stage{"b", 0, record("b")},
		Stage{"c", 1, record("c")},
	)

	_, err := p.Apply(textLike(t, 10, 10, raster.Gray8), randx.New(4))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, order)

	// Gate decisions match a bare draw of three gates from the same seed.
	ref := randx.New(4)
	want := []bool{ref.Float64() < 1, ref.Float64() < 0, ref.Float64() < 1}
	assert.Equal(t, want, p.Gates(randx.New(4)))
}

func TestApplyStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	p := NewPipeline(
		Stage{"fail", 1, func(*raster.Image, *rand.Rand) (*raster.Image, error) { return nil, boom }},
		Stage{"after", 1, func(img *raster.Image, _ *rand.Rand) (*raster.Image, error) {
			ran = true
			return img, nil
		}},
	)
	_, err := p.Apply(textLike(t, 10, 10, raster.Gray8), randx.New(1))
	assert.ErrorIs(t, err, boom)
	assert.False(t, ran)
}

func TestStageOrder(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)
	var names []string
	for _, s := range p.Stages() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"box", "perspective", "emboss", "sharpen", "down_up", "blur"}, names)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative prob", func(c *Config) { c.BlurProb = -0.1 }},
		{"prob above one", func(c *Config) { c.BoxProb = 1.5 }},
		{"small zoom", func(c *Config) { c.BoxZoom = 0.9 }},
		{"reversed range", func(c *Config) { c.PerspectiveX = randx.U(5, -5) }},
		{"shrinking down-up", func(c *Config) { c.DownUpScale = randx.U(0.5, 2) }},
		{"negative sigma", func(c *Config) { c.BlurSigma = randx.U(-1, 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), errkind.InvalidArgument)
			_, err := New(c)
			assert.ErrorIs(t, err, errkind.InvalidArgument)
		})
	}
}

func TestPerspectiveShape(t *testing.T) {
	src := textLike(t, 200, 40, raster.Gray8)

	flat, err := Perspective(src, 0, 0, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, flat.Width(), 200)
	assert.LessOrEqual(t, flat.Height(), 40)
	assert.True(t, flat.Height() == 40 || flat.Width() == 200)
	assert.InDelta(t, 200, flat.Width(), 12)

	for _, a := range [][3]float64{{15, 0, 0}, {0, 15, 0}, {0, 0, 3}, {-12, 10, -2}} {
		got, err := Perspective(src, a[0], a[1], a[2])
		require.NoError(t, err, "angles %v", a)
		assert.LessOrEqual(t, got.Width(), 200, "angles %v", a)
		assert.LessOrEqual(t, got.Height(), 40, "angles %v", a)
		assert.True(t, got.Height() == 40 || got.Width() == 200, "angles %v", a)
	}
}

func TestHomographyMapsCorners(t *testing.T) {
	src := [4][2]float64{{0, 0}, {10, 0}, {10, 5}, {0, 5}}
	dst := [4][2]float64{{1, 2}, {12, 1}, {11, 8}, {0, 7}}
	hm, ok := homography(src, dst)
	require.True(t, ok)
	for i := range src {
		x, y, ok := apply3(hm, src[i][0], src[i][1])
		require.True(t, ok)
		assert.InDelta(t, dst[i][0], x, 1e-9)
		assert.InDelta(t, dst[i][1], y, 1e-9)
	}

	inv, ok := invert3(hm)
	require.True(t, ok)
	x, y, _ := apply3(inv, dst[2][0], dst[2][1])
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 5, y, 1e-9)

	_, ok = homography([4][2]float64{}, dst)
	assert.False(t, ok)
}

func TestDrawBox(t *testing.T) {
	src := textLike(t, 100, 30, raster.RGB8)
	got, err := DrawBox(src, 1.3, randx.New(2))
	require.NoError(t, err)
	assert.Equal(t, 100, got.Width())
	assert.Equal(t, 30, got.Height())
	assert.False(t, got.Equal(src))

	_, err = DrawBox(src, 0.5, randx.New(2))
	assert.ErrorIs(t, err, errkind.InvalidArgument)
}

func TestFiltersKeepShape(t *testing.T) {
	src := textLike(t, 64, 20, raster.Gray8)
	uniform, _ := raster.NewFilled(16, 16, raster.Gray8, raster.RGB{R: 99, G: 99, B: 99})

	for name, fn := range map[string]func(*raster.Image) *raster.Image{
		"emboss":  Emboss,
		"sharpen": Sharpen,
		"down_up": func(img *raster.Image) *raster.Image { return DownUp(img, 1.7) },
	} {
		got := fn(src)
		assert.True(t, got.SameShape(src), name)
		assert.Equal(t, raster.Gray8, got.Format(), name)
		assert.True(t, fn(uniform).Equal(uniform), "%s on a flat image", name)
	}
	assert.False(t, Sharpen(src).Equal(src))
	assert.True(t, DownUp(src, 1).Equal(src))
}
