package textsynth

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/textsynth/effect"
	"github.com/gogpu/textsynth/glyph"
	"github.com/gogpu/textsynth/internal/randx"
	"github.com/gogpu/textsynth/merge"
)

// Config is the generator configuration. Its YAML form has three
// upper-case sections:
//
//	FONT:
//	  font_dir: ./font
//	  chinese_ch_file_path: ./ch.txt
//	  main_font_list_file_path: ./main_fonts.txt
//	  font_size: 50
//	  line_height: 64
//	CV:
//	  box_prob: 0.1
//	  perspective_x: [-15, 15, g]
//	MERGE:
//	  bg_dir: ./background
//	  bg_height: 64
//	  bg_width: 1000
//	  height_diff: 10
//
// Random parameters are written [min, max, kind], kind being "g" for a
// clamped gaussian or "u" (the default) for uniform. Unknown keys are
// ignored. Relative paths are resolved against the directory of the
// configuration file.
type Config struct {
	Font  FontConfig  `yaml:"FONT"`
	CV    CVConfig    `yaml:"CV"`
	Merge MergeConfig `yaml:"MERGE"`

	// Seed seeds every random draw. Zero picks a random seed.
	Seed uint64 `yaml:"seed"`

	// baseDir anchors relative paths; set by LoadConfig.
	baseDir string
}

// FontConfig covers the font tree, the corpora and the text line.
type FontConfig struct {
	FontDir                  string  `yaml:"font_dir"`
	ChineseChFilePath        string  `yaml:"chinese_ch_file_path"`
	MainFontListFilePath     string  `yaml:"main_font_list_file_path"`
	FallbackFontListFilePath string  `yaml:"fallback_font_list_file_path"`
	LatinCorpusFilePath      string  `yaml:"latin_corpus_file_path"`
	SymbolFilePath           string  `yaml:"symbol_file_path"`
	FontSize                 float64 `yaml:"font_size"`
	LineHeight               int     `yaml:"line_height"`

	// MainFontBias is the probability mass main fonts receive when a
	// character is also covered by other fonts.
	MainFontBias float64 `yaml:"main_font_bias"`

	// SymbolProb is the chance a requested extra symbol is inserted.
	SymbolProb float64 `yaml:"symbol_prob"`

	// SkipInvalidFonts logs and skips corrupt or variable fonts instead of
	// failing construction.
	SkipInvalidFonts bool `yaml:"skip_invalid_fonts"`

	// FaceCache bounds the sized faces each generator keeps; 0 keeps all.
	FaceCache int `yaml:"face_cache"`

	// FoldWidth rewrites fullwidth and halfwidth forms in wrapped text to
	// their canonical width before binding, so "ｈｉ" is drawn and labeled
	// as "hi".
	FoldWidth bool `yaml:"fold_width"`
}

// CVConfig covers the degradation effects.
type CVConfig struct {
	BoxProb         float64    `yaml:"box_prob"`
	BoxZoom         float64    `yaml:"box_zoom"`
	PerspectiveProb float64    `yaml:"perspective_prob"`
	PerspectiveX    randx.Dist `yaml:"perspective_x"`
	PerspectiveY    randx.Dist `yaml:"perspective_y"`
	PerspectiveZ    randx.Dist `yaml:"perspective_z"`
	BlurProb        float64    `yaml:"blur_prob"`
	BlurSigma       randx.Dist `yaml:"blur_sigma"`
	DownUpProb      float64    `yaml:"down_up_prob"`
	DownUpScale     randx.Dist `yaml:"down_up_scale"`

	// FilterProb is the chance a convolution filter fires; EmbossProb and
	// SharpProb split it between emboss and sharpen and must sum to 1.
	FilterProb float64 `yaml:"filter_prob"`
	EmbossProb float64 `yaml:"emboss_prob"`
	SharpProb  float64 `yaml:"sharp_prob"`

	// ForceGrayscale converts degraded output to a single channel.
	ForceGrayscale bool `yaml:"force_grayscale"`
}

// MergeConfig covers backgrounds and compositing.
type MergeConfig struct {
	BgDir    string `yaml:"bg_dir"`
	BgHeight int    `yaml:"bg_height"`
	BgWidth  int    `yaml:"bg_width"`

	// HeightDiff is the upper bound of how many pixels shorter than the
	// background the text is scaled to; the lower bound is 2.
	HeightDiff  float64    `yaml:"height_diff"`
	BgAlpha     randx.Dist `yaml:"bg_alpha"`
	BgBeta      randx.Dist `yaml:"bg_beta"`
	FontAlpha   randx.Dist `yaml:"font_alpha"`
	ReverseProb float64    `yaml:"reverse_prob"`
	BgColorProb float64    `yaml:"bg_color_prob"`

	// TexturedColorBg composites undegraded output onto background images
	// instead of a solid background_color canvas.
	TexturedColorBg bool `yaml:"textured_color_bg"`

	TextThreshold    int     `yaml:"text_threshold"`
	SolverIterations int     `yaml:"solver_iterations"`
	SolverTolerance  float64 `yaml:"solver_tolerance"`
	Gradient         string  `yaml:"gradient"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	ec := effect.DefaultConfig()
	mc := merge.DefaultConfig()
	return Config{
		Font: FontConfig{
			FontDir:           "./font",
			ChineseChFilePath: "./ch.txt",
			FontSize:          50,
			LineHeight:        64,
			MainFontBias:      0.8,
			SymbolProb:        1,
			FaceCache:         256,
		},
		CV: CVConfig{
			BoxProb:         ec.BoxProb,
			BoxZoom:         ec.BoxZoom,
			PerspectiveProb: ec.PerspectiveProb,
			PerspectiveX:    ec.PerspectiveX,
			PerspectiveY:    ec.PerspectiveY,
			PerspectiveZ:    ec.PerspectiveZ,
			BlurProb:        ec.BlurProb,
			BlurSigma:       ec.BlurSigma,
			DownUpProb:      ec.DownUpProb,
			DownUpScale:     ec.DownUpScale,
			FilterProb:      0.01,
			EmbossProb:      0.4,
			SharpProb:       0.6,
			ForceGrayscale:  true,
		},
		Merge: MergeConfig{
			BgDir:            "./synth_text/background",
			BgHeight:         64,
			BgWidth:          1000,
			HeightDiff:       mc.HeightDiff.Max,
			BgAlpha:          mc.BgAlpha,
			BgBeta:           mc.BgBeta,
			FontAlpha:        mc.FontAlpha,
			ReverseProb:      mc.ReverseProb,
			BgColorProb:      mc.BgColorProb,
			TextThreshold:    int(mc.Threshold),
			SolverIterations: mc.Iterations,
			SolverTolerance:  mc.Tolerance,
			Gradient:         mc.Gradient.String(),
		},
	}
}

// LoadConfig reads a YAML configuration file. Keys missing from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("textsynth: %w: %w", ErrConfiguration, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("textsynth: %s: %w", path, err)
	}
	cfg.baseDir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig decodes a YAML configuration over DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("textsynth: parse config: %w: %w", ErrConfiguration, err)
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate reports out-of-range settings as ErrConfiguration.
func (c Config) Validate() error {
	if c.Font.FontDir == "" || c.Font.ChineseChFilePath == "" || c.Merge.BgDir == "" {
		return fmt.Errorf("textsynth: font_dir, chinese_ch_file_path and bg_dir are required: %w", ErrConfiguration)
	}
	if c.Font.MainFontBias < 0 || c.Font.MainFontBias > 1 {
		return fmt.Errorf("textsynth: main_font_bias %v outside [0, 1]: %w", c.Font.MainFontBias, ErrConfiguration)
	}
	if c.Font.SymbolProb < 0 || c.Font.SymbolProb > 1 {
		return fmt.Errorf("textsynth: symbol_prob %v outside [0, 1]: %w", c.Font.SymbolProb, ErrConfiguration)
	}
	if c.Merge.BgHeight <= 0 || c.Merge.BgWidth <= 0 {
		return fmt.Errorf("textsynth: background size %dx%d: %w", c.Merge.BgWidth, c.Merge.BgHeight, ErrConfiguration)
	}
	if c.Merge.TextThreshold < 0 || c.Merge.TextThreshold > 255 {
		return fmt.Errorf("textsynth: text_threshold %d outside [0, 255]: %w", c.Merge.TextThreshold, ErrConfiguration)
	}
	if c.CV.FilterProb > 0 && !near(c.CV.EmbossProb+c.CV.SharpProb, 1) {
		return fmt.Errorf("textsynth: emboss_prob + sharp_prob must be 1: %w", ErrConfiguration)
	}
	if err := c.line().Validate(); err != nil {
		return fmt.Errorf("textsynth: %w: %w", ErrConfiguration, err)
	}
	if err := c.effects().Validate(); err != nil {
		return fmt.Errorf("textsynth: CV: %w: %w", ErrConfiguration, err)
	}
	mc, err := c.merge()
	if err != nil {
		return err
	}
	if err := mc.Validate(); err != nil {
		return fmt.Errorf("textsynth: MERGE: %w: %w", ErrConfiguration, err)
	}
	return nil
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

// effects maps the CV section onto the effect pipeline. The filter budget
// is split between the emboss and sharpen stages.
func (c Config) effects() effect.Config {
	return effect.Config{
		BoxProb:         c.CV.BoxProb,
		BoxZoom:         c.CV.BoxZoom,
		PerspectiveProb: c.CV.PerspectiveProb,
		PerspectiveX:    c.CV.PerspectiveX,
		PerspectiveY:    c.CV.PerspectiveY,
		PerspectiveZ:    c.CV.PerspectiveZ,
		EmbossProb:      c.CV.FilterProb * c.CV.EmbossProb,
		SharpenProb:     c.CV.FilterProb * c.CV.SharpProb,
		DownUpProb:      c.CV.DownUpProb,
		DownUpScale:     c.CV.DownUpScale,
		BlurProb:        c.CV.BlurProb,
		BlurSigma:       c.CV.BlurSigma,
	}
}

func (c Config) merge() (merge.Config, error) {
	var g merge.Gradient
	switch c.Merge.Gradient {
	case "", "mixed":
		g = merge.Mixed
	case "source":
		g = merge.Source
	default:
		return merge.Config{}, fmt.Errorf("textsynth: unknown gradient %q: %w", c.Merge.Gradient, ErrConfiguration)
	}
	return merge.Config{
		HeightDiff:  randx.U(min(2, c.Merge.HeightDiff), c.Merge.HeightDiff),
		BgAlpha:     c.Merge.BgAlpha,
		BgBeta:      c.Merge.BgBeta,
		FontAlpha:   c.Merge.FontAlpha,
		ReverseProb: c.Merge.ReverseProb,
		BgColorProb: c.Merge.BgColorProb,
		Threshold:   uint8(min(max(c.Merge.TextThreshold, 0), 255)),
		Gradient:    g,
		Iterations:  c.Merge.SolverIterations,
		Tolerance:   c.Merge.SolverTolerance,
	}, nil
}

// line returns the text line geometry.
func (c Config) line() glyph.RasterConfig {
	cfg := glyph.DefaultRasterConfig()
	cfg.FontSize = c.Font.FontSize
	cfg.LineHeight = c.Font.LineHeight
	cfg.FaceCache = c.Font.FaceCache
	return cfg
}
