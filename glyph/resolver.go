package glyph

import (
	"github.com/gogpu/textsynth/corpus"
	"github.com/gogpu/textsynth/fontindex"
)

// Resolver binds arbitrary text to candidate fonts through the frequency
// tables. It is read-only and safe for concurrent use.
type Resolver struct {
	tables *corpus.Tables
}

// NewResolver returns a resolver backed by tables.
func NewResolver(tables *corpus.Tables) *Resolver {
	return &Resolver{tables: tables}
}

// Resolve splits text into graphemes and binds each one. Nothing is
// skipped: the first grapheme no table covers fails the whole call with a
// *MissingCoverageError.
func (r *Resolver) Resolve(text string) ([]fontindex.Binding, error) {
	gs := corpus.Graphemes(text)
	out := make([]fontindex.Binding, 0, len(gs))
	for i, g := range gs {
		fonts, ok := r.tables.Resolve(g)
		if !ok {
			return nil, &MissingCoverageError{Char: g, Position: i}
		}
		out = append(out, fontindex.Binding{Char: g, Fonts: fonts})
	}
	return out, nil
}
