package glyph

import (
	"fmt"
	"math/rand/v2"

	"github.com/gogpu/textsynth/fontindex"
	"github.com/gogpu/textsynth/internal/errkind"
)

// DefaultMainBias is the probability mass given to main fonts when a
// character has both main and other candidates.
const DefaultMainBias = 0.8

// Selector picks one font out of a character's candidates.
type Selector struct {
	mainBias float64
}

// NewSelector returns a selector that gives main fonts mainBias of the
// probability mass whenever both main and other candidates exist.
func NewSelector(mainBias float64) (Selector, error) {
	if mainBias < 0 || mainBias > 1 {
		return Selector{}, fmt.Errorf("glyph: main font bias %v outside [0, 1]: %w", mainBias, errkind.InvalidArgument)
	}
	return Selector{mainBias: mainBias}, nil
}

// MainBias returns the configured bias.
func (s Selector) MainBias() float64 { return s.mainBias }

// Pick draws a candidate. Main fonts share the bias evenly and the other
// fonts share the remainder; when only one group is present the choice is
// uniform. An empty candidate list yields false.
func (s Selector) Pick(fonts []fontindex.Record, rng *rand.Rand) (fontindex.Record, bool) {
	if len(fonts) == 0 {
		return fontindex.Record{}, false
	}

	main := 0
	for _, f := range fonts {
		if f.Category == fontindex.Main {
			main++
		}
	}
	if main == 0 || main == len(fonts) {
		return fonts[rng.IntN(len(fonts))], true
	}

	wantMain := rng.Float64() < s.mainBias
	n := len(fonts) - main
	if wantMain {
		n = main
	}
	k := rng.IntN(n)
	for _, f := range fonts {
		if (f.Category == fontindex.Main) != wantMain {
			continue
		}
		if k == 0 {
			return f, true
		}
		k--
	}
	return fontindex.Record{}, false
}
