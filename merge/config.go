package merge

import (
	"fmt"

	"github.com/gogpu/textsynth/internal/errkind"
	"github.com/gogpu/textsynth/internal/randx"
)

// Gradient selects the guidance field of the Poisson blend.
type Gradient uint8

const (
	// Mixed keeps, per pixel pair, whichever of the text and background
	// gradients is steeper, so background texture survives inside glyphs.
	Mixed Gradient = iota

	// Source uses the text gradient alone.
	Source
)

// String returns the gradient mode name.
func (g Gradient) String() string {
	switch g {
	case Mixed:
		return "mixed"
	case Source:
		return "source"
	default:
		return "unknown"
	}
}

// Config holds the random ranges and solver settings of an Engine.
type Config struct {
	// HeightDiff is how many pixels shorter than the target the text is
	// scaled to.
	HeightDiff randx.Dist

	// BgAlpha and BgBeta are the gain and offset of background
	// perturbation.
	BgAlpha randx.Dist
	BgBeta  randx.Dist

	// FontAlpha scales the text gradients when composing degraded output.
	FontAlpha randx.Dist

	// ReverseProb is the chance a degraded composite is inverted, and
	// BgColorProb the chance its background is perturbed first.
	ReverseProb float64
	BgColorProb float64

	// Threshold is how far, in any channel, a text pixel must depart from
	// the fill to belong to the blend mask.
	Threshold uint8

	Gradient   Gradient
	Iterations int
	Tolerance  float64
}

// DefaultConfig returns the stock merge settings.
func DefaultConfig() Config {
	return Config{
		HeightDiff:  randx.U(2, 10),
		BgAlpha:     randx.G(0.5, 1.5),
		BgBeta:      randx.G(-50, 50),
		FontAlpha:   randx.U(0.2, 1.0),
		ReverseProb: 0.5,
		BgColorProb: 1,
		Threshold:   16,
		Gradient:    Mixed,
		Iterations:  500,
		Tolerance:   0.01,
	}
}

// Validate checks ranges and solver limits.
func (c Config) Validate() error {
	for _, d := range []randx.Dist{c.HeightDiff, c.BgAlpha, c.BgBeta, c.FontAlpha} {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("merge: %w: %w", err, errkind.InvalidArgument)
		}
	}
	if c.HeightDiff.Min < 0 {
		return fmt.Errorf("merge: negative height_diff: %w", errkind.InvalidArgument)
	}
	if c.FontAlpha.Min < 0 {
		return fmt.Errorf("merge: negative font_alpha: %w", errkind.InvalidArgument)
	}
	for _, p := range []float64{c.ReverseProb, c.BgColorProb} {
		if !(p >= 0 && p <= 1) {
			return fmt.Errorf("merge: probability %v outside [0, 1]: %w", p, errkind.InvalidArgument)
		}
	}
	if c.Gradient > Source {
		return fmt.Errorf("merge: unknown gradient mode %d: %w", c.Gradient, errkind.InvalidArgument)
	}
	if c.Iterations <= 0 || c.Tolerance < 0 {
		return fmt.Errorf("merge: solver needs positive iterations and non-negative tolerance: %w", errkind.InvalidArgument)
	}
	return nil
}
