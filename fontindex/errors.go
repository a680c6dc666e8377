package fontindex

import (
	"errors"
	"fmt"

	"github.com/gogpu/textsynth/internal/errkind"
)

// Sentinel errors for the fontindex package.
var (
	// ErrNoFonts is returned when the font tree holds no usable font.
	ErrNoFonts = fmt.Errorf("fontindex: no usable fonts: %w", errkind.Configuration)

	// ErrVariableFont is the reason attached to a LoadError for fonts
	// carrying an fvar table.
	ErrVariableFont = errors.New("fontindex: variable fonts are not supported")
)

// LoadError reports a font file, or one face of a collection, that could
// not be indexed. It matches errkind.Load through errors.Is.
type LoadError struct {
	Path  string
	Face  int
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("fontindex: load %s (face %d): %v", e.Path, e.Face, e.Cause)
}

// Unwrap exposes both the load category and the underlying cause.
func (e *LoadError) Unwrap() []error {
	return []error{errkind.Load, e.Cause}
}

// CoverageError is returned by Lookup when no indexed font renders a
// character. It matches errkind.MissingCoverage through errors.Is.
type CoverageError struct {
	Char string
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("fontindex: no font covers %q (%U)", e.Char, []rune(e.Char))
}

func (e *CoverageError) Unwrap() error { return errkind.MissingCoverage }

// UnknownFontError is returned by Build when a main or fallback family is
// not present in the font tree.
type UnknownFontError struct {
	Family   string
	Category Category
}

func (e *UnknownFontError) Error() string {
	return fmt.Sprintf("fontindex: %s font %q not found", e.Category, e.Family)
}

func (e *UnknownFontError) Unwrap() error { return errkind.Configuration }
