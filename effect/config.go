package effect

import (
	"fmt"

	"github.com/gogpu/textsynth/internal/errkind"
	"github.com/gogpu/textsynth/internal/randx"
)

// Config holds the probability and parameter ranges of every stage.
type Config struct {
	BoxProb float64
	BoxZoom float64

	PerspectiveProb float64
	PerspectiveX    randx.Dist
	PerspectiveY    randx.Dist
	PerspectiveZ    randx.Dist

	EmbossProb  float64
	SharpenProb float64

	DownUpProb  float64
	DownUpScale randx.Dist

	BlurProb  float64
	BlurSigma randx.Dist
}

// DefaultConfig returns the stock degradation settings. Emboss and
// sharpen share a 1% filter budget split 40/60.
func DefaultConfig() Config {
	return Config{
		BoxProb:         0.1,
		BoxZoom:         1.3,
		PerspectiveProb: 0.2,
		PerspectiveX:    randx.G(-15, 15),
		PerspectiveY:    randx.G(-15, 15),
		PerspectiveZ:    randx.G(-3, 3),
		EmbossProb:      0.01 * 0.4,
		SharpenProb:     0.01 * 0.6,
		DownUpProb:      0,
		DownUpScale:     randx.U(1, 2),
		BlurProb:        0.1,
		BlurSigma:       randx.U(0, 1.5),
	}
}

// Disabled returns a configuration under which no stage ever fires.
func Disabled() Config {
	c := DefaultConfig()
	c.BoxProb, c.PerspectiveProb, c.EmbossProb = 0, 0, 0
	c.SharpenProb, c.DownUpProb, c.BlurProb = 0, 0, 0
	return c
}

// Validate checks probabilities and parameter ranges.
func (c Config) Validate() error {
	probs := []struct {
		name string
		p    float64
	}{
		{"box_prob", c.BoxProb},
		{"perspective_prob", c.PerspectiveProb},
		{"emboss_prob", c.EmbossProb},
		{"sharp_prob", c.SharpenProb},
		{"down_up_prob", c.DownUpProb},
		{"blur_prob", c.BlurProb},
	}
	for _, p := range probs {
		if !(p.p >= 0 && p.p <= 1) {
			return fmt.Errorf("effect: %s %v outside [0, 1]: %w", p.name, p.p, errkind.InvalidArgument)
		}
	}
	if !(c.BoxZoom >= 1) {
		return fmt.Errorf("effect: box_zoom %v below 1: %w", c.BoxZoom, errkind.InvalidArgument)
	}
	for _, d := range []randx.Dist{c.PerspectiveX, c.PerspectiveY, c.PerspectiveZ, c.DownUpScale, c.BlurSigma} {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("effect: %w: %w", err, errkind.InvalidArgument)
		}
	}
	if c.DownUpScale.Min < 1 {
		return fmt.Errorf("effect: down_up_scale below 1: %w", errkind.InvalidArgument)
	}
	if c.BlurSigma.Min < 0 {
		return fmt.Errorf("effect: negative blur_sigma: %w", errkind.InvalidArgument)
	}
	return nil
}
