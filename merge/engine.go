package merge

import (
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"

	"golang.org/x/image/draw"

	"github.com/gogpu/textsynth/internal/errkind"
	"github.com/gogpu/textsynth/internal/randx"
	"github.com/gogpu/textsynth/raster"
)

// Option configures an Engine.
type Option func(*Engine)

// WithFill sets the color RandomPad fills margins with and PoissonEdit
// treats as "no text". The default is black.
func WithFill(c raster.RGB) Option {
	return func(e *Engine) {
		e.fill = c
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// Engine pads and blends text images. It holds no mutable state and is
// safe for concurrent use as long as every caller passes its own rng.
type Engine struct {
	cfg    Config
	fill   raster.RGB
	logger *slog.Logger
}

// New returns an engine for cfg.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Fill returns the margin color.
func (e *Engine) Fill() raster.RGB { return e.fill }

// WithFill returns a copy of the engine using fill c.
func (e *Engine) WithFill(c raster.RGB) *Engine {
	cp := *e
	cp.fill = c
	return &cp
}

// RandomPad scales text so it is between HeightDiff.Min and HeightDiff.Max
// pixels shorter than height, keeping its aspect ratio (and shrinking
// further if it would be wider than width), then places it at a random
// offset on a height x width canvas of the fill color.
func (e *Engine) RandomPad(text *raster.Image, height, width int, rng *rand.Rand) (*raster.Image, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("merge: pad target %dx%d must be positive: %w", width, height, errkind.InvalidArgument)
	}

	rh := max(1, int(float64(height)-e.cfg.HeightDiff.Sample(rng)))
	rw := int(float64(text.Width()) * float64(rh) / float64(text.Height()))
	if rw > width {
		rw = width
		rh = max(1, min(rh, int(float64(text.Height())*float64(width)/float64(text.Width()))))
	}
	rw = max(rw, 1)

	scaled := scale(text, rw, rh)

	top := 0
	if height-rh >= 1 {
		top = randx.IntRange(rng, 1, height-rh)
	}
	left := randx.IntRange(rng, 0, width-rw)

	canvas, err := raster.NewFilled(width, height, text.Format(), e.fill)
	if err != nil {
		return nil, err
	}
	if err := canvas.Paste(scaled, left, top); err != nil {
		return nil, err
	}
	return canvas, nil
}

// scale resamples img to w x h with the Catmull-Rom filter.
func scale(img *raster.Image, w, h int) *raster.Image {
	if img.Width() == w && img.Height() == h {
		return img.Clone()
	}
	src := img.ToImage()
	var dst draw.Image
	if img.Format() == raster.Gray8 {
		dst = image.NewGray(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return raster.FromImage(dst, img.Format())
}

// minBackground keeps recolored backgrounds from turning as dark as text.
const minBackground = 50

// RandomChangeBackground returns bg with every value mapped through
// v*alpha + beta, alpha and beta drawn once per call, and clamped to
// [50, 255].
func (e *Engine) RandomChangeBackground(bg *raster.Image, rng *rand.Rand) *raster.Image {
	alpha := e.cfg.BgAlpha.Sample(rng)
	beta := e.cfg.BgBeta.Sample(rng)
	return raster.LinearMatrix(alpha, beta).ApplyClamped(bg, minBackground, 255)
}

// PoissonEdit blends text into a copy of bg. Both must have the same
// dimensions and format.
func (e *Engine) PoissonEdit(text, bg *raster.Image) (*raster.Image, error) {
	return e.blend(text, bg, 1)
}

// Compose pads text to the size of bg and blends it in. With degrade set
// the background may first be perturbed, the text contrast is scaled by a
// FontAlpha draw and the result may be inverted. text is converted to
// bg's format.
func (e *Engine) Compose(text, bg *raster.Image, rng *rand.Rand, degrade bool) (*raster.Image, error) {
	text = text.Convert(bg.Format())
	if degrade && randx.Bernoulli(rng, e.cfg.BgColorProb) {
		bg = e.RandomChangeBackground(bg, rng)
	}
	padded, err := e.RandomPad(text, bg.Height(), bg.Width(), rng)
	if err != nil {
		return nil, err
	}

	gain := 1.0
	if degrade {
		gain = e.cfg.FontAlpha.Sample(rng)
	}
	out, err := e.blend(padded, bg, gain)
	if err != nil {
		return nil, err
	}
	if degrade && randx.Bernoulli(rng, e.cfg.ReverseProb) {
		out = raster.InvertMatrix().Apply(out)
	}
	return out, nil
}
