package background

import (
	"bytes"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"math"
	"math/rand/v2"
	"path"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/gogpu/textsynth/internal/errkind"
	"github.com/gogpu/textsynth/raster"
)

// Option configures a Factory.
type Option func(*options)

type options struct {
	format raster.Format
	logger *slog.Logger
}

// WithFormat selects the pixel format of generated backgrounds.
// The default is RGB8.
func WithFormat(f raster.Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithLogger sets the factory's logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// source is one usable background file.
type source struct {
	name string
	data []byte
}

// Factory produces background images of a fixed size.
// Random may be called concurrently; SetSize must not race with it.
type Factory struct {
	sources []source
	height  int
	width   int
	format  raster.Format
	logger  *slog.Logger
}

// New loads the backgrounds found directly in dir. Files that fail to
// decode are skipped with a warning; a directory without any usable image
// is a configuration error.
func New(fsys fs.FS, dir string, height, width int, opts ...Option) (*Factory, error) {
	o := options{format: raster.RGB8, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	if err := checkSize(height, width); err != nil {
		return nil, err
	}
	if !o.format.IsValid() {
		return nil, fmt.Errorf("background: %w", raster.ErrInvalidFormat)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("background: read %s: %w: %w", dir, errkind.Configuration, err)
	}

	f := &Factory{height: height, width: width, format: o.format, logger: o.logger}
	for _, e := range entries {
		if e.IsDir() || !isImage(e.Name()) {
			continue
		}
		name := path.Join(dir, e.Name())
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			o.logger.Warn("background: unreadable image skipped", "path", name, "err", err)
			continue
		}
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			o.logger.Warn("background: undecodable image skipped", "path", name, "err", err)
			continue
		}
		f.sources = append(f.sources, source{name: name, data: data})
	}
	if len(f.sources) == 0 {
		return nil, fmt.Errorf("background: no usable image in %s: %w", dir, errkind.Configuration)
	}

	o.logger.Info("background: factory ready", "dir", dir, "images", len(f.sources), "height", height, "width", width)
	return f, nil
}

func isImage(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

func checkSize(height, width int) error {
	if height <= 0 || width <= 0 {
		return fmt.Errorf("background: size %dx%d must be positive: %w", width, height, errkind.InvalidArgument)
	}
	return nil
}

// Clone returns a factory sharing the loaded images whose size can be
// changed independently.
func (f *Factory) Clone() *Factory {
	cp := *f
	return &cp
}

// Len returns the number of usable background images.
func (f *Factory) Len() int { return len(f.sources) }

// Size returns the target height and width.
func (f *Factory) Size() (height, width int) { return f.height, f.width }

// Format returns the pixel format of generated backgrounds.
func (f *Factory) Format() raster.Format { return f.format }

// SetSize changes the target size of subsequent backgrounds. The loaded
// images are kept.
func (f *Factory) SetSize(height, width int) error {
	if err := checkSize(height, width); err != nil {
		return err
	}
	f.height, f.width = height, width
	return nil
}

// Random returns a background of exactly the target size cut from a
// uniformly chosen image.
func (f *Factory) Random(rng *rand.Rand) (*raster.Image, error) {
	src := f.sources[rng.IntN(len(f.sources))]
	img, err := imaging.Decode(bytes.NewReader(src.data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("background: decode %s: %w", src.name, err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < f.width || h < f.height {
		scale := math.Max(float64(f.width)/float64(w), float64(f.height)/float64(h))
		w = max(f.width, int(math.Ceil(float64(w)*scale)))
		h = max(f.height, int(math.Ceil(float64(h)*scale)))
		img = imaging.Resize(img, w, h, imaging.CatmullRom)
	}

	x := rng.IntN(w - f.width + 1)
	y := rng.IntN(h - f.height + 1)
	origin := img.Bounds().Min
	crop := imaging.Crop(img, image.Rect(origin.X+x, origin.Y+y, origin.X+x+f.width, origin.Y+y+f.height))
	return raster.FromImage(crop, f.format), nil
}
