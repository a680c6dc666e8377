package corpus

import (
	"unicode"

	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/segmenter"
	"golang.org/x/text/unicode/norm"
)

// Class is the closed set of character classes. Each class owns one
// WeightedCharacterTable.
type Class uint8

const (
	// Ideograph covers Han characters and the East Asian scripts set with them.
	Ideograph Class = iota

	// Latin covers Latin-script letters.
	Latin

	// Symbol covers everything else: digits, punctuation, signs.
	Symbol

	classCount
)

// Classes lists every class in table order.
var Classes = [...]Class{Ideograph, Latin, Symbol}

// String returns the class name.
func (c Class) String() string {
	switch c {
	case Ideograph:
		return "ideograph"
	case Latin:
		return "latin"
	case Symbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// Classify returns the class of a grapheme cluster from the script of its
// first non-mark rune.
func Classify(ch string) Class {
	for _, r := range ch {
		if unicode.Is(unicode.M, r) {
			continue
		}
		switch language.LookupScript(r) {
		case language.Han, language.Hiragana, language.Katakana, language.Hangul, language.Bopomofo:
			return Ideograph
		case language.Latin:
			return Latin
		default:
			return Symbol
		}
	}
	return Symbol
}

// Graphemes returns the NFC-normalized grapheme clusters of s in order.
func Graphemes(s string) []string {
	s = norm.NFC.String(s)
	if s == "" {
		return nil
	}
	var seg segmenter.Segmenter
	seg.InitWithString(s)
	it := seg.GraphemeIterator()
	var out []string
	for it.Next() {
		out = append(out, string(it.Grapheme().Text))
	}
	return out
}
