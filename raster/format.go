package raster

// Format represents a pixel storage format.
type Format uint8

const (
	// Gray8 is 8-bit grayscale (1 byte per pixel).
	Gray8 Format = iota

	// RGB8 is 24-bit RGB, channel order R, G, B (3 bytes per pixel).
	RGB8

	formatCount
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// Channels is the number of color channels, which for 8-bit formats
	// is also the number of bytes per pixel.
	Channels int

	// IsGrayscale indicates if this is a grayscale format.
	IsGrayscale bool
}

var formatInfoTable = [formatCount]FormatInfo{
	Gray8: {Channels: 1, IsGrayscale: true},
	RGB8:  {Channels: 3},
}

// IsValid reports whether the format is known.
func (f Format) IsValid() bool {
	return f < formatCount
}

// Info returns metadata for the format.
// Returns a zero FormatInfo for invalid formats.
func (f Format) Info() FormatInfo {
	if !f.IsValid() {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// Channels returns the number of channels per pixel.
func (f Format) Channels() int {
	return f.Info().Channels
}

// RowBytes returns the number of bytes needed for one row of the given width.
func (f Format) RowBytes(width int) int {
	return width * f.Channels()
}

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case Gray8:
		return "Gray8"
	case RGB8:
		return "RGB8"
	default:
		return "Unknown"
	}
}

// RGB is an opaque 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Luma returns the ITU-R BT.601 luminance of the color, the same weighting
// used when an RGB8 image is converted to Gray8.
func (c RGB) Luma() uint8 {
	return luma(c.R, c.G, c.B)
}

// Channel returns the value of the color in the given channel of format f.
// For Gray8 the single channel is the luminance.
func (c RGB) Channel(f Format, ch int) uint8 {
	if f == Gray8 {
		return c.Luma()
	}
	switch ch {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

// luma is the R' row of GrayscaleMatrix applied to one color.
func luma(r, g, b uint8) uint8 {
	m := GrayscaleMatrix()
	return ClampUint8(m[0]*float64(r) + m[1]*float64(g) + m[2]*float64(b))
}
