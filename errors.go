package textsynth

import "github.com/gogpu/textsynth/internal/errkind"

// Error categories. Every error returned by this module wraps exactly one
// of them, whichever component raised it, so callers can classify failures
// with errors.Is.
var (
	// ErrConfiguration marks missing or empty font and background
	// directories, malformed tables and out-of-range settings. It is fatal
	// at construction.
	ErrConfiguration = errkind.Configuration

	// ErrLoad marks an unusable font file: corrupt, or a variable font.
	ErrLoad = errkind.Load

	// ErrMissingGlyphCoverage marks a character no font can render. The
	// whole request fails; no character is skipped.
	ErrMissingGlyphCoverage = errkind.MissingCoverage

	// ErrInvalidArgument marks parameters rejected before any work begins.
	ErrInvalidArgument = errkind.InvalidArgument
)
