package corpus

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/gogpu/textsynth/fontindex"
	"github.com/gogpu/textsynth/internal/errkind"
	"github.com/gogpu/textsynth/internal/randx"
)

// SamplerOption configures a Sampler.
type SamplerOption func(*samplerOptions)

type samplerOptions struct {
	rng        *rand.Rand
	symbolProb float64
	latinText  string
	logger     *slog.Logger
}

// WithSeed seeds the sampler's private random source.
func WithSeed(seed uint64) SamplerOption {
	return func(o *samplerOptions) {
		o.rng = randx.New(seed)
	}
}

// WithRand makes the sampler draw from rng. The sampler must then be the
// only user of rng for its draws to be reproducible.
func WithRand(rng *rand.Rand) SamplerOption {
	return func(o *samplerOptions) {
		o.rng = rng
	}
}

// WithSymbolProb sets the probability that Sample inserts a symbol when
// asked to. The default is 1.
func WithSymbolProb(p float64) SamplerOption {
	return func(o *samplerOptions) {
		o.symbolProb = p
	}
}

// WithLatinCorpus supplies the free text SampleLatin draws windows from.
func WithLatinCorpus(text string) SamplerOption {
	return func(o *samplerOptions) {
		o.latinText = text
	}
}

// WithLogger sets the sampler's logger.
func WithLogger(l *slog.Logger) SamplerOption {
	return func(o *samplerOptions) {
		o.logger = l
	}
}

// Sampler draws random character sequences from the frequency tables.
// A Sampler owns its random source and is not safe for concurrent use.
type Sampler struct {
	tables     *Tables
	rng        *rand.Rand
	symbolProb float64
	latin      []fontindex.Binding
}

// NewSampler returns a sampler over tables. Without WithSeed or WithRand the
// sampler is seeded randomly.
func NewSampler(tables *Tables, opts ...SamplerOption) (*Sampler, error) {
	o := samplerOptions{symbolProb: 1, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = randx.New(rand.Uint64())
	}
	if o.symbolProb < 0 || o.symbolProb > 1 {
		return nil, fmt.Errorf("corpus: symbol probability %v outside [0, 1]: %w", o.symbolProb, errkind.InvalidArgument)
	}

	s := &Sampler{tables: tables, rng: o.rng, symbolProb: o.symbolProb}
	if o.latinText != "" {
		s.latin = s.bindText(o.latinText, o.logger)
	}
	return s, nil
}

// bindText resolves the corpus once. Control characters become spaces and
// clusters no table can render are removed, so windows drawn later never
// need a lookup that could fail.
func (s *Sampler) bindText(text string, logger *slog.Logger) []fontindex.Binding {
	var out []fontindex.Binding
	skipped := 0
	for _, g := range Graphemes(text) {
		if isControl(g) {
			g = " "
		}
		fonts, ok := s.tables.Resolve(g)
		if !ok {
			skipped++
			continue
		}
		out = append(out, fontindex.Binding{Char: g, Fonts: fonts})
	}
	if skipped > 0 {
		logger.Warn("corpus: latin corpus clusters without coverage removed", "count", skipped)
	}
	return out
}

// Fork returns a sampler over the same tables and corpus drawing from rng.
func (s *Sampler) Fork(rng *rand.Rand) *Sampler {
	cp := *s
	cp.rng = rng
	return &cp
}

// Sample returns between minLen and maxLen ideographs, each drawn
// independently by weight. With addExtraSymbol, a symbol is inserted with
// the configured probability at a random position after the first
// character. Bounds that are negative or reversed are an InvalidArgument
// error, as is asking for a symbol when no symbol table exists.
func (s *Sampler) Sample(minLen, maxLen int, addExtraSymbol bool) ([]fontindex.Binding, error) {
	n, err := s.length(minLen, maxLen)
	if err != nil {
		return nil, err
	}
	symbols := s.tables.For(Symbol)
	if addExtraSymbol && symbols == nil {
		return nil, fmt.Errorf("corpus: extra symbol requested without a symbol table: %w", errkind.InvalidArgument)
	}

	ideographs := s.tables.For(Ideograph)
	out := make([]fontindex.Binding, 0, n+1)
	for range n {
		out = append(out, ideographs.Sample(s.rng))
	}

	if addExtraSymbol && randx.Bernoulli(s.rng, s.symbolProb) {
		pos := 0
		if n > 0 {
			pos = 1 + s.rng.IntN(n)
		}
		sym := symbols.Sample(s.rng)
		out = append(out[:pos], append([]fontindex.Binding{sym}, out[pos:]...)...)
	}
	return out, nil
}

// SampleLatin returns a contiguous window of minLen to maxLen clusters from
// the Latin corpus, wrapping around its end when needed.
func (s *Sampler) SampleLatin(minLen, maxLen int) ([]fontindex.Binding, error) {
	n, err := s.length(minLen, maxLen)
	if err != nil {
		return nil, err
	}
	if len(s.latin) == 0 {
		return nil, fmt.Errorf("corpus: no latin corpus configured: %w", errkind.InvalidArgument)
	}
	start := s.rng.IntN(len(s.latin))
	out := make([]fontindex.Binding, n)
	for i := range out {
		out[i] = s.latin[(start+i)%len(s.latin)]
	}
	return out, nil
}

func (s *Sampler) length(minLen, maxLen int) (int, error) {
	if minLen < 0 || maxLen < 0 || minLen > maxLen {
		return 0, fmt.Errorf("corpus: invalid length bounds [%d, %d]: %w", minLen, maxLen, errkind.InvalidArgument)
	}
	return minLen + s.rng.IntN(maxLen-minLen+1), nil
}

// Text joins the characters of a binding sequence.
func Text(bs []fontindex.Binding) string {
	var sb strings.Builder
	for _, b := range bs {
		sb.WriteString(b.Char)
	}
	return sb.String()
}
