package raster

import (
	"errors"
	"fmt"
	"image"
)

// Common errors for raster operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("raster: invalid dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("raster: invalid format")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("raster: data buffer too small")

	// ErrOutOfBounds is returned when a rectangle lies outside the image.
	ErrOutOfBounds = errors.New("raster: rectangle out of bounds")
)

// Image is an 8-bit raster buffer in Gray8 or RGB8 format.
//
// Image is not safe for concurrent writes. Every pipeline stage returns a
// fresh Image, so buffers are never shared between requests.
type Image struct {
	pix    []uint8
	width  int
	height int
	format Format
}

// New creates a zeroed image with the given dimensions and format.
func New(width, height int, format Format) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	return &Image{
		pix:    make([]uint8, format.RowBytes(width)*height),
		width:  width,
		height: height,
		format: format,
	}, nil
}

// NewFilled creates an image with every pixel set to c.
func NewFilled(width, height int, format Format, c RGB) (*Image, error) {
	img, err := New(width, height, format)
	if err != nil {
		return nil, err
	}
	img.Fill(c)
	return img, nil
}

// FromPix wraps pix without copying. pix must hold at least
// width*height*channels bytes.
func FromPix(pix []uint8, width, height int, format Format) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	n := format.RowBytes(width) * height
	if len(pix) < n {
		return nil, ErrDataTooSmall
	}
	return &Image{pix: pix[:n], width: width, height: height, format: format}, nil
}

// Clone creates a deep copy of the image.
func (m *Image) Clone() *Image {
	pix := make([]uint8, len(m.pix))
	copy(pix, m.pix)
	return &Image{pix: pix, width: m.width, height: m.height, format: m.format}
}

// Width returns the image width in pixels.
func (m *Image) Width() int { return m.width }

// Height returns the image height in pixels.
func (m *Image) Height() int { return m.height }

// Format returns the pixel format.
func (m *Image) Format() Format { return m.format }

// Channels returns the number of channels per pixel.
func (m *Image) Channels() int { return m.format.Channels() }

// Bounds returns the image rectangle anchored at the origin.
func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.width, m.height) }

// Pix returns the underlying row-major sample slice.
func (m *Image) Pix() []uint8 { return m.pix }

// Row returns the samples of row y.
func (m *Image) Row(y int) []uint8 {
	rb := m.format.RowBytes(m.width)
	return m.pix[y*rb : (y+1)*rb]
}

// offset returns the index of channel c of pixel (x, y).
func (m *Image) offset(x, y, c int) int {
	return (y*m.width+x)*m.format.Channels() + c
}

// At returns channel c of pixel (x, y). Coordinates are not checked.
func (m *Image) At(x, y, c int) uint8 {
	return m.pix[m.offset(x, y, c)]
}

// Set writes channel c of pixel (x, y). Coordinates are not checked.
func (m *Image) Set(x, y, c int, v uint8) {
	m.pix[m.offset(x, y, c)] = v
}

// SetColor writes every channel of pixel (x, y) from c.
func (m *Image) SetColor(x, y int, c RGB) {
	n := m.format.Channels()
	i := m.offset(x, y, 0)
	for ch := range n {
		m.pix[i+ch] = c.Channel(m.format, ch)
	}
}

// Fill sets every pixel to c.
func (m *Image) Fill(c RGB) {
	n := m.format.Channels()
	var px [3]uint8
	for ch := range n {
		px[ch] = c.Channel(m.format, ch)
	}
	for i := 0; i < len(m.pix); i += n {
		copy(m.pix[i:i+n], px[:n])
	}
}

// Crop returns a copy of the pixels inside r.
func (m *Image) Crop(r image.Rectangle) (*Image, error) {
	if r.Empty() || !r.In(m.Bounds()) {
		return nil, fmt.Errorf("%w: %v not in %v", ErrOutOfBounds, r, m.Bounds())
	}
	dst, err := New(r.Dx(), r.Dy(), m.format)
	if err != nil {
		return nil, err
	}
	n := m.format.Channels()
	for y := 0; y < r.Dy(); y++ {
		src := m.Row(r.Min.Y + y)[r.Min.X*n : r.Max.X*n]
		copy(dst.Row(y), src)
	}
	return dst, nil
}

// Paste copies src into m with its top-left corner at (x, y).
// Pixels falling outside m are clipped. Formats must match.
func (m *Image) Paste(src *Image, x, y int) error {
	if src.format != m.format {
		return fmt.Errorf("%w: paste %v into %v", ErrInvalidFormat, src.format, m.format)
	}
	r := src.Bounds().Add(image.Pt(x, y)).Intersect(m.Bounds())
	if r.Empty() {
		return nil
	}
	n := m.format.Channels()
	for dy := r.Min.Y; dy < r.Max.Y; dy++ {
		sy := dy - y
		srow := src.Row(sy)[(r.Min.X-x)*n : (r.Max.X-x)*n]
		copy(m.Row(dy)[r.Min.X*n:r.Max.X*n], srow)
	}
	return nil
}

// Gray returns a Gray8 copy of the image.
// A Gray8 image is cloned; an RGB8 image goes through GrayscaleMatrix.
func (m *Image) Gray() *Image {
	if m.format == Gray8 {
		return m.Clone()
	}
	return GrayscaleMatrix().ToGray(m)
}

// RGB returns an RGB8 copy of the image.
// A Gray8 image is expanded by replicating the gray value into each channel.
func (m *Image) RGB() *Image {
	if m.format == RGB8 {
		return m.Clone()
	}
	dst, _ := New(m.width, m.height, RGB8)
	for i, v := range m.pix {
		dst.pix[i*3] = v
		dst.pix[i*3+1] = v
		dst.pix[i*3+2] = v
	}
	return dst
}

// Convert returns a copy of the image in format f.
func (m *Image) Convert(f Format) *Image {
	if f == Gray8 {
		return m.Gray()
	}
	return m.RGB()
}

// SameShape reports whether m and o have identical dimensions and format.
func (m *Image) SameShape(o *Image) bool {
	return m.width == o.width && m.height == o.height && m.format == o.format
}

// Equal reports whether m and o have the same shape and samples.
func (m *Image) Equal(o *Image) bool {
	if !m.SameShape(o) {
		return false
	}
	for i := range m.pix {
		if m.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}
