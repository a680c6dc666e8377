package textsynth

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/gogpu/textsynth/background"
	"github.com/gogpu/textsynth/corpus"
	"github.com/gogpu/textsynth/effect"
	"github.com/gogpu/textsynth/fontindex"
	"github.com/gogpu/textsynth/glyph"
	"github.com/gogpu/textsynth/internal/randx"
	"github.com/gogpu/textsynth/merge"
	"github.com/gogpu/textsynth/raster"
)

// Common colors for GenImageFromTextWithFontList.
var (
	Black = raster.RGB{}
	White = raster.RGB{R: 255, G: 255, B: 255}
)

// Generator produces text-line images.
type Generator struct {
	cfg    Config
	seed   uint64
	logger *slog.Logger
	rng    *rand.Rand

	index       *fontindex.Index
	tables      *corpus.Tables
	sampler     *corpus.Sampler
	resolver    *glyph.Resolver
	selector    glyph.Selector
	rasterizer  *glyph.Rasterizer
	backgrounds *background.Factory
	merger      *merge.Engine
	effects     *effect.Pipeline
}

// NewGenerator builds every component eagerly. Any failure aborts
// construction; no partially initialized Generator is returned.
func NewGenerator(cfg Config, opts ...Option) (*Generator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.mainBias != nil {
		cfg.Font.MainFontBias = *o.mainBias
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if o.seedSet {
		seed = o.seed
	}
	if seed == 0 {
		seed = rand.Uint64()
	}
	baseDir := cfg.baseDir
	if baseDir == "" {
		baseDir = "."
	}
	logger := o.logger

	mainFonts, err := readNames(&o, cfg.Font.MainFontListFilePath, baseDir)
	if err != nil {
		return nil, err
	}
	fallbackFonts, err := readNames(&o, cfg.Font.FallbackFontListFilePath, baseDir)
	if err != nil {
		return nil, err
	}

	fontFS, fontDir := o.locate(cfg.Font.FontDir, baseDir)
	index, err := fontindex.Build(fontFS, fontDir,
		fontindex.WithMainFonts(mainFonts...),
		fontindex.WithFallbackFonts(fallbackFonts...),
		fontindex.WithSkipInvalid(cfg.Font.SkipInvalidFonts),
		fontindex.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	tables, latinText, err := buildTables(&o, cfg, baseDir, index, logger)
	if err != nil {
		return nil, err
	}
	sampler, err := corpus.NewSampler(tables,
		corpus.WithRand(randx.New(randx.DeriveSeed(seed, 1))),
		corpus.WithSymbolProb(cfg.Font.SymbolProb),
		corpus.WithLatinCorpus(latinText),
		corpus.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	selector, err := glyph.NewSelector(cfg.Font.MainFontBias)
	if err != nil {
		return nil, err
	}
	rasterizer, err := glyph.NewRasterizer(index, cfg.line(), selector)
	if err != nil {
		return nil, err
	}

	bgFS, bgDir := o.locate(cfg.Merge.BgDir, baseDir)
	backgrounds, err := background.New(bgFS, bgDir, cfg.Merge.BgHeight, cfg.Merge.BgWidth, background.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	mc, err := cfg.merge()
	if err != nil {
		return nil, err
	}
	merger, err := merge.New(mc, merge.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	effects, err := effect.New(cfg.effects())
	if err != nil {
		return nil, err
	}

	logger.Info("textsynth: generator ready",
		"fonts", index.Len(),
		"ideographs", tables.For(corpus.Ideograph).Len(),
		"backgrounds", backgrounds.Len(),
		"seed", seed,
	)

	return &Generator{
		cfg:         cfg,
		seed:        seed,
		logger:      logger,
		rng:         randx.New(seed),
		index:       index,
		tables:      tables,
		sampler:     sampler,
		resolver:    glyph.NewResolver(tables),
		selector:    selector,
		rasterizer:  rasterizer,
		backgrounds: backgrounds,
		merger:      merger,
		effects:     effects,
	}, nil
}

// readNames reads a font family list, one name per line. An empty path
// yields no names.
func readNames(o *options, p, baseDir string) ([]string, error) {
	if p == "" {
		return nil, nil
	}
	data, err := readFile(o, p, baseDir)
	if err != nil {
		return nil, err
	}
	var names []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func readFile(o *options, p, baseDir string) ([]byte, error) {
	fsys, name := o.locate(p, baseDir)
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("textsynth: read %s: %w: %w", p, ErrConfiguration, err)
	}
	return data, nil
}

// buildTables loads the ideograph frequency table and the optional Latin
// corpus and symbol list. It also returns the Latin corpus text.
func buildTables(o *options, cfg Config, baseDir string, index *fontindex.Index, logger *slog.Logger) (*corpus.Tables, string, error) {
	data, err := readFile(o, cfg.Font.ChineseChFilePath, baseDir)
	if err != nil {
		return nil, "", err
	}
	entries, err := corpus.ParseFrequencies(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("textsynth: %s: %w", cfg.Font.ChineseChFilePath, err)
	}
	ideographs, err := corpus.NewTable(corpus.Ideograph, entries, index, logger)
	if err != nil {
		return nil, "", err
	}
	all := []*corpus.Table{ideographs}

	var latinText string
	if p := cfg.Font.LatinCorpusFilePath; p != "" {
		data, err := readFile(o, p, baseDir)
		if err != nil {
			return nil, "", err
		}
		latinText = string(data)
		latin, err := corpus.NewTable(corpus.Latin, corpus.LatinEntries(latinText), index, logger)
		if err != nil {
			return nil, "", err
		}
		all = append(all, latin)
	}

	if p := cfg.Font.SymbolFilePath; p != "" {
		data, err := readFile(o, p, baseDir)
		if err != nil {
			return nil, "", err
		}
		entries, err := corpus.ParseSymbols(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("textsynth: %s: %w", p, err)
		}
		symbols, err := corpus.NewTable(corpus.Symbol, entries, index, logger)
		if err != nil {
			return nil, "", err
		}
		all = append(all, symbols)
	}

	tables, err := corpus.NewTables(all...)
	if err != nil {
		return nil, "", err
	}
	return tables, latinText, nil
}

// Fork returns a Generator sharing this one's immutable state with its own
// random source seeded by seed, its own font face cache and its own
// background size.
func (g *Generator) Fork(seed uint64) (*Generator, error) {
	rasterizer, err := glyph.NewRasterizer(g.index, g.rasterizer.Config(), g.selector)
	if err != nil {
		return nil, fmt.Errorf("textsynth: fork: %w", err)
	}
	cp := *g
	cp.seed = seed
	cp.rng = randx.New(seed)
	cp.sampler = g.sampler.Fork(randx.New(randx.DeriveSeed(seed, 1)))
	cp.rasterizer = rasterizer
	cp.backgrounds = g.backgrounds.Clone()
	return &cp, nil
}

// Close releases cached font faces.
func (g *Generator) Close() error {
	return g.rasterizer.Close()
}

// Config returns the configuration the generator was built from.
func (g *Generator) Config() Config { return g.cfg }

// Seed returns the seed of the generator's random source.
func (g *Generator) Seed() uint64 { return g.seed }

// Fonts returns the indexed fonts in preference order.
func (g *Generator) Fonts() []fontindex.Record { return g.index.Records() }

// WrapTextWithFontList binds every grapheme of text to the fonts able to
// render it. A grapheme without coverage fails the whole call with
// ErrMissingGlyphCoverage. With FONT.fold_width set, text is width folded
// first and the bindings carry the folded characters.
func (g *Generator) WrapTextWithFontList(text string) ([]fontindex.Binding, error) {
	if g.cfg.Font.FoldWidth {
		text = corpus.Fold(text)
	}
	return g.resolver.Resolve(text)
}

// RandomChinese samples between minLen and maxLen ideographs by frequency,
// optionally with one extra symbol, already bound to their fonts.
func (g *Generator) RandomChinese(minLen, maxLen int, addExtraSymbol bool) ([]fontindex.Binding, error) {
	return g.sampler.Sample(minLen, maxLen, addExtraSymbol)
}

// RandomLatin returns a window of the Latin corpus between minLen and
// maxLen clusters long.
func (g *Generator) RandomLatin(minLen, maxLen int) ([]fontindex.Binding, error) {
	return g.sampler.SampleLatin(minLen, maxLen)
}

// SetBackgroundSize changes the size of subsequent images.
func (g *Generator) SetBackgroundSize(height, width int) error {
	return g.backgrounds.SetSize(height, width)
}

// BackgroundSize returns the current output height and width.
func (g *Generator) BackgroundSize() (height, width int) {
	return g.backgrounds.Size()
}

// GenImageFromTextWithFontList renders segs in textColor and composites
// the line onto a background.
//
// Without applyEffect the background is a solid backgroundColor canvas of
// the background size (or a background image when MERGE.textured_color_bg
// is set) and the RGB composite is returned as is. With applyEffect the
// background is a random background image, possibly recolored, the text
// contrast is randomized, the composite may be inverted and the effect
// pipeline runs on it; the result is single channel when
// CV.force_grayscale is set.
func (g *Generator) GenImageFromTextWithFontList(segs []fontindex.Binding, textColor, backgroundColor raster.RGB, applyEffect bool) (*raster.Image, error) {
	line, err := g.rasterizer.Draw(segs, textColor, backgroundColor, g.rng)
	if err != nil {
		return nil, err
	}

	var bg *raster.Image
	if applyEffect || g.cfg.Merge.TexturedColorBg {
		bg, err = g.backgrounds.Random(g.rng)
	} else {
		h, w := g.backgrounds.Size()
		bg, err = raster.NewFilled(w, h, raster.RGB8, backgroundColor)
	}
	if err != nil {
		return nil, err
	}

	out, err := g.merger.WithFill(backgroundColor).Compose(line, bg, g.rng, applyEffect)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("textsynth: composed",
		"text", corpus.Text(segs),
		"line", line.Bounds().Size(),
		"effects", applyEffect,
	)
	if !applyEffect {
		return out, nil
	}

	if g.cfg.CV.ForceGrayscale {
		out = out.Gray()
	}
	return g.effects.Apply(out, g.rng)
}

// Generate wraps text and renders it black on white.
func (g *Generator) Generate(text string, applyEffect bool) (*raster.Image, error) {
	segs, err := g.WrapTextWithFontList(text)
	if err != nil {
		return nil, err
	}
	return g.GenImageFromTextWithFontList(segs, Black, White, applyEffect)
}
