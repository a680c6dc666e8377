package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// ErrEmptyData is returned when image data is empty.
var ErrEmptyData = errors.New("raster: empty data")

// Decode decodes a PNG, JPEG, GIF, BMP or TIFF stream into an image of
// format f.
func Decode(r io.Reader, f Format) (*Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("raster: decode: %w", err)
	}
	return FromImage(img, f), nil
}

// DecodeBytes decodes an encoded image held in memory.
func DecodeBytes(data []byte, f Format) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data), f)
}

// EncodePNG encodes the image as PNG to the given writer.
func (m *Image) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, m.ToImage()); err != nil {
		return fmt.Errorf("raster: encode PNG: %w", err)
	}
	return nil
}

// SavePNG saves the image as a PNG file.
func (m *Image) SavePNG(path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("raster: create file: %w", err)
	}

	if err := m.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// FromImage converts a standard library image into format f.
// Alpha is discarded; semi-transparent pixels keep their straight color.
func FromImage(img image.Image, f Format) *Image {
	b := img.Bounds()
	dst, _ := New(max(b.Dx(), 1), max(b.Dy(), 1), RGB8)

	switch src := img.(type) {
	case *image.Gray:
		if f == Gray8 {
			g, _ := New(dst.width, dst.height, Gray8)
			for y := range b.Dy() {
				off := (y+b.Min.Y-src.Rect.Min.Y)*src.Stride + (b.Min.X - src.Rect.Min.X)
				copy(g.Row(y), src.Pix[off:off+b.Dx()])
			}
			return g
		}
	case *image.NRGBA:
		for y := range b.Dy() {
			off := (y+b.Min.Y-src.Rect.Min.Y)*src.Stride + (b.Min.X-src.Rect.Min.X)*4
			row := dst.Row(y)
			for x := range b.Dx() {
				copy(row[x*3:x*3+3], src.Pix[off+x*4:off+x*4+3])
			}
		}
		return dst.Convert(f)
	}

	for y := range b.Dy() {
		for x := range b.Dx() {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			dst.SetColor(x, y, RGB{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8)})
		}
	}
	return dst.Convert(f)
}

// ToImage converts the image to a standard library image:
// *image.Gray for Gray8 and opaque *image.NRGBA for RGB8.
func (m *Image) ToImage() image.Image {
	if m.format == Gray8 {
		g := image.NewGray(m.Bounds())
		copy(g.Pix, m.pix)
		return g
	}
	return m.ToNRGBA()
}

// ToNRGBA returns an opaque NRGBA copy of the image, the working type of
// the imaging package. Gray8 samples are replicated into R, G and B.
func (m *Image) ToNRGBA() *image.NRGBA {
	dst := image.NewNRGBA(m.Bounds())
	n := m.format.Channels()
	for i, j := 0, 0; i < len(m.pix); i, j = i+n, j+4 {
		if n == 1 {
			dst.Pix[j], dst.Pix[j+1], dst.Pix[j+2] = m.pix[i], m.pix[i], m.pix[i]
		} else {
			dst.Pix[j], dst.Pix[j+1], dst.Pix[j+2] = m.pix[i], m.pix[i+1], m.pix[i+2]
		}
		dst.Pix[j+3] = 255
	}
	return dst
}
