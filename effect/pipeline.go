package effect

import (
	"math/rand/v2"

	"github.com/gogpu/textsynth/raster"
)

// Transform produces a new image from img. It must not modify img.
type Transform func(img *raster.Image, rng *rand.Rand) (*raster.Image, error)

// Stage is one gated transform.
type Stage struct {
	Name      string
	Prob      float64
	Transform Transform
}

// Pipeline applies its stages in order. It is immutable and safe for
// concurrent use as long as every caller passes its own rng.
type Pipeline struct {
	stages []Stage
}

// New builds the standard pipeline from cfg: box, perspective, emboss,
// sharpen, down-up and blur.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewPipeline(
		Stage{"box", cfg.BoxProb, func(img *raster.Image, rng *rand.Rand) (*raster.Image, error) {
			return DrawBox(img, cfg.BoxZoom, rng)
		}},
		Stage{"perspective", cfg.PerspectiveProb, func(img *raster.Image, rng *rand.Rand) (*raster.Image, error) {
			ax := cfg.PerspectiveX.Sample(rng)
			ay := cfg.PerspectiveY.Sample(rng)
			az := cfg.PerspectiveZ.Sample(rng)
			return Perspective(img, ax, ay, az)
		}},
		Stage{"emboss", cfg.EmbossProb, func(img *raster.Image, _ *rand.Rand) (*raster.Image, error) {
			return Emboss(img), nil
		}},
		Stage{"sharpen", cfg.SharpenProb, func(img *raster.Image, _ *rand.Rand) (*raster.Image, error) {
			return Sharpen(img), nil
		}},
		Stage{"down_up", cfg.DownUpProb, func(img *raster.Image, rng *rand.Rand) (*raster.Image, error) {
			return DownUp(img, cfg.DownUpScale.Sample(rng)), nil
		}},
		Stage{"blur", cfg.BlurProb, func(img *raster.Image, rng *rand.Rand) (*raster.Image, error) {
			return GaussianBlur(img, cfg.BlurSigma.Sample(rng)), nil
		}},
	), nil
}

// NewPipeline returns a pipeline running stages in the given order.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: append([]Stage(nil), stages...)}
}

// Stages returns a copy of the stage list.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Apply runs the pipeline on img and returns a new image; img is never
// modified. One gate is drawn per stage up front, then the stages that
// fired run in order and draw their own parameters.
func (p *Pipeline) Apply(img *raster.Image, rng *rand.Rand) (*raster.Image, error) {
	fired := p.Gates(rng)
	out := img.Clone()
	for i, s := range p.stages {
		if !fired[i] {
			continue
		}
		next, err := s.Transform(out, rng)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// Gates draws one decision per stage.
func (p *Pipeline) Gates(rng *rand.Rand) []bool {
	fired := make([]bool, len(p.stages))
	for i, s := range p.stages {
		fired[i] = rng.Float64() < s.Prob
	}
	return fired
}
