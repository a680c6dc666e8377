package glyph

import (
	"fmt"

	"github.com/gogpu/textsynth/internal/errkind"
)

// MissingCoverageError reports a character that cannot be rendered, either
// because no table resolves it or because the font picked for it lacks
// the glyph. Position is the character's index in the sequence.
type MissingCoverageError struct {
	Char     string
	Position int
}

func (e *MissingCoverageError) Error() string {
	return fmt.Sprintf("glyph: no coverage for %q at position %d", e.Char, e.Position)
}

func (e *MissingCoverageError) Unwrap() error { return errkind.MissingCoverage }
