package glyph

import (
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/textsynth/fontindex"
	"github.com/gogpu/textsynth/internal/cache"
	"github.com/gogpu/textsynth/internal/errkind"
	"github.com/gogpu/textsynth/raster"
)

// FaceSource provides parsed fonts and exact coverage checks.
// *fontindex.Index implements it.
type FaceSource interface {
	Face(id fontindex.FontID) (*opentype.Font, bool)
	Covers(id fontindex.FontID, ch string) bool
}

// RasterConfig controls the text line geometry.
type RasterConfig struct {
	// FontSize is the em size in pixels.
	FontSize float64

	// LineHeight is the canvas height in pixels.
	LineHeight int

	// Baseline is the baseline row. Zero centers the tallest face used on
	// the line vertically.
	Baseline int

	// Hinting selects outline hinting.
	Hinting font.Hinting

	// FaceCache bounds the number of sized faces kept between lines.
	// Zero keeps every face.
	FaceCache int
}

// DefaultRasterConfig returns a 50px font on a 64px line.
func DefaultRasterConfig() RasterConfig {
	return RasterConfig{
		FontSize:   50,
		LineHeight: 64,
		Hinting:    font.HintingFull,
		FaceCache:  256,
	}
}

// Validate reports geometry that cannot produce an image.
func (c RasterConfig) Validate() error {
	if c.FontSize <= 0 || c.LineHeight <= 0 {
		return fmt.Errorf("glyph: font size %v and line height %d must be positive: %w", c.FontSize, c.LineHeight, errkind.InvalidArgument)
	}
	if c.FaceCache < 0 {
		return fmt.Errorf("glyph: face cache size %d is negative: %w", c.FaceCache, errkind.InvalidArgument)
	}
	if c.Baseline < 0 || c.Baseline > c.LineHeight {
		return fmt.Errorf("glyph: baseline %d outside the line: %w", c.Baseline, errkind.InvalidArgument)
	}
	return nil
}

// Rasterizer draws bound text onto a single line.
// It caches font faces and is not safe for concurrent use.
type Rasterizer struct {
	src      FaceSource
	cfg      RasterConfig
	selector Selector
	faces    *cache.Cache[fontindex.FontID, font.Face]
}

// NewRasterizer returns a rasterizer drawing fonts from src.
func NewRasterizer(src FaceSource, cfg RasterConfig, sel Selector) (*Rasterizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Rasterizer{
		src:      src,
		cfg:      cfg,
		selector: sel,
		faces: cache.New(cfg.FaceCache, func(_ fontindex.FontID, f font.Face) {
			_ = f.Close()
		}),
	}, nil
}

// Config returns the line geometry.
func (r *Rasterizer) Config() RasterConfig { return r.cfg }

// run is a maximal stretch of consecutive characters drawn with one font.
type run struct {
	font fontindex.FontID
	text string
	face font.Face
}

// Draw renders segs in textColor on a bgColor line, one font per
// character, and crops the line after the right-most inked column. The
// result is RGB8 with height LineHeight.
func (r *Rasterizer) Draw(segs []fontindex.Binding, textColor, bgColor raster.RGB, rng *rand.Rand) (*raster.Image, error) {
	if len(segs) == 0 {
		return nil, fmt.Errorf("glyph: nothing to draw: %w", errkind.InvalidArgument)
	}
	runs, err := r.runs(segs, rng)
	if err != nil {
		return nil, err
	}

	var ascent, descent, advance fixed.Int26_6
	for i := range runs {
		face, err := r.face(runs[i].font)
		if err != nil {
			return nil, err
		}
		runs[i].face = face
		m := face.Metrics()
		ascent = max(ascent, m.Ascent)
		descent = max(descent, m.Descent)
		advance += font.MeasureString(face, runs[i].text)
	}

	baseline := fixed.I(r.cfg.Baseline)
	if r.cfg.Baseline == 0 {
		baseline = (fixed.I(r.cfg.LineHeight)-ascent-descent)/2 + ascent
	}

	// Overhang of the last glyph may reach past its advance.
	width := advance.Ceil() + int(r.cfg.FontSize)/2 + 1
	canvas := image.NewNRGBA(image.Rect(0, 0, width, r.cfg.LineHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(toColor(bgColor)), image.Point{}, draw.Src)

	dot := fixed.Point26_6{Y: baseline}
	ink := image.NewUniform(toColor(textColor))
	for _, rn := range runs {
		d := &font.Drawer{
			Dst:  canvas,
			Src:  ink,
			Face: rn.face,
			Dot:  dot,
		}
		d.DrawString(rn.text)
		dot = d.Dot
	}

	img := raster.FromImage(canvas, raster.RGB8)
	return img.Crop(image.Rect(0, 0, rightBorder(img, bgColor)+1, img.Height()))
}

// runs picks a font for every segment and merges neighbours that landed
// on the same font.
func (r *Rasterizer) runs(segs []fontindex.Binding, rng *rand.Rand) ([]run, error) {
	var out []run
	for i, seg := range segs {
		rec, ok := r.selector.Pick(seg.Fonts, rng)
		if !ok || !r.src.Covers(rec.ID, seg.Char) {
			return nil, &MissingCoverageError{Char: seg.Char, Position: i}
		}
		if n := len(out); n > 0 && out[n-1].font == rec.ID {
			out[n-1].text += seg.Char
			continue
		}
		out = append(out, run{font: rec.ID, text: seg.Char})
	}
	return out, nil
}

// face returns the sized face of font id. Evicted opentype faces stay
// usable, so a line may hold more fonts than the cache.
func (r *Rasterizer) face(id fontindex.FontID) (font.Face, error) {
	return r.faces.GetOrCreate(id, func() (font.Face, error) {
		parsed, ok := r.src.Face(id)
		if !ok {
			return nil, fmt.Errorf("glyph: unknown font id %d: %w", id, errkind.InvalidArgument)
		}
		f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    r.cfg.FontSize,
			DPI:     72,
			Hinting: r.cfg.Hinting,
		})
		if err != nil {
			return nil, fmt.Errorf("glyph: font id %d: %w", id, err)
		}
		return f, nil
	})
}

// CacheStats reports face cache usage.
func (r *Rasterizer) CacheStats() cache.Stats { return r.faces.Stats() }

// Close releases the cached faces.
func (r *Rasterizer) Close() error {
	r.faces.Clear()
	return nil
}

// rightBorder returns the last column holding a pixel that differs from
// bg, or 0 when nothing was inked.
func rightBorder(img *raster.Image, bg raster.RGB) int {
	for x := img.Width() - 1; x > 0; x-- {
		for y := range img.Height() {
			if img.At(x, y, 0) != bg.R || img.At(x, y, 1) != bg.G || img.At(x, y, 2) != bg.B {
				return x
			}
		}
	}
	return 0
}

func toColor(c raster.RGB) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
