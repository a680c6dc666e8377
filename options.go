package textsynth

import (
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Option configures a Generator during construction.
//
// Example:
//
//	g, err := textsynth.NewGenerator(cfg,
//	    textsynth.WithSeed(42),
//	    textsynth.WithLogger(slog.Default()),
//	)
type Option func(*options)

type options struct {
	seed     uint64
	seedSet  bool
	logger   *slog.Logger
	fsys     fs.FS
	mainBias *float64
}

func defaultOptions() options {
	return options{logger: Logger()}
}

// WithSeed overrides the configured seed.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seedSet = true
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFS resolves every configured path inside fsys instead of the host
// file system. Paths are cleaned and a leading "./" or "/" is dropped.
func WithFS(fsys fs.FS) Option {
	return func(o *options) {
		o.fsys = fsys
	}
}

// WithMainFontBias overrides FONT.main_font_bias.
func WithMainFontBias(bias float64) Option {
	return func(o *options) {
		o.mainBias = &bias
	}
}

// locate splits a configured path into a file system and a name valid
// inside it.
func (o *options) locate(p, baseDir string) (fs.FS, string) {
	if o.fsys != nil {
		p = path.Clean(filepath.ToSlash(p))
		p = strings.TrimPrefix(p, "/")
		if p == "" {
			p = "."
		}
		return o.fsys, p
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}
	return os.DirFS(filepath.Dir(p)), filepath.Base(p)
}
