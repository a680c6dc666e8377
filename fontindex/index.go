package fontindex

import (
	"fmt"
	"slices"
	"unicode"

	"golang.org/x/image/font/opentype"
	"golang.org/x/text/unicode/norm"
)

// Category ranks a font in lookup results.
type Category uint8

const (
	// Main fonts are preferred, in the order they were listed.
	Main Category = iota

	// Fallback fonts are consulted after main fonts.
	Fallback

	// Discovered fonts were found in the tree but not listed.
	Discovered
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Main:
		return "main"
	case Fallback:
		return "fallback"
	case Discovered:
		return "discovered"
	default:
		return "unknown"
	}
}

// FontID addresses a font in the Index arena.
type FontID int

// Record describes one indexed font face.
type Record struct {
	ID       FontID
	Family   string
	Style    uint16
	Weight   uint16
	Stretch  uint16
	Category Category

	// Path is the font file inside the indexed file system, and FaceIndex
	// the face number within a collection.
	Path      string
	FaceIndex int
}

// Tuple returns the (family, style, weight, stretch) form used to hand a
// binding across process boundaries.
func (r Record) Tuple() (family string, style, weight, stretch uint16) {
	return r.Family, r.Style, r.Weight, r.Stretch
}

// String returns a compact description of the record.
func (r Record) String() string {
	return fmt.Sprintf("%s[%d %s w%d]", r.Family, r.ID, r.Category, r.Weight)
}

// Index is the immutable character to font coverage index.
type Index struct {
	records  []Record
	faces    []*opentype.Font
	coverage map[rune][]FontID
}

// Len returns the number of indexed faces.
func (ix *Index) Len() int { return len(ix.records) }

// Records returns every indexed face in rank order.
func (ix *Index) Records() []Record {
	return slices.Clone(ix.records)
}

// Record returns the record for id.
func (ix *Index) Record(id FontID) (Record, bool) {
	if id < 0 || int(id) >= len(ix.records) {
		return Record{}, false
	}
	return ix.records[id], true
}

// Face returns the rasterizable font for id.
func (ix *Index) Face(id FontID) (*opentype.Font, bool) {
	if id < 0 || int(id) >= len(ix.faces) {
		return nil, false
	}
	return ix.faces[id], true
}

// ByCategory returns the records of category c in rank order.
func (ix *Index) ByCategory(c Category) []Record {
	var out []Record
	for _, r := range ix.records {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out
}

// Lookup returns the fonts able to render ch, a single grapheme cluster,
// ordered main > fallback > discovered. A font covers a cluster only when it
// has a glyph for every rune in it; variation selectors and joiners are not
// required. An empty result is reported as a *CoverageError.
func (ix *Index) Lookup(ch string) ([]Record, error) {
	ids := ix.lookupIDs(ch)
	if len(ids) == 0 {
		return nil, &CoverageError{Char: ch}
	}
	out := make([]Record, len(ids))
	for i, id := range ids {
		out[i] = ix.records[id]
	}
	return out, nil
}

// Covers reports whether font id renders every rune of ch.
func (ix *Index) Covers(id FontID, ch string) bool {
	_, found := slices.BinarySearch(ix.lookupIDs(ch), id)
	return found
}

func (ix *Index) lookupIDs(ch string) []FontID {
	var ids []FontID
	first := true
	for _, r := range norm.NFC.String(ch) {
		if ignorable(r) {
			continue
		}
		posting := ix.coverage[r]
		if first {
			ids = slices.Clone(posting)
			first = false
			continue
		}
		ids = slices.DeleteFunc(ids, func(id FontID) bool {
			_, found := slices.BinarySearch(posting, id)
			return !found
		})
	}
	return ids
}

// ignorable reports runes that shape a cluster without needing their own
// glyph in the selected font.
func ignorable(r rune) bool {
	return r == '\u200c' || r == '\u200d' || unicode.Is(unicode.Variation_Selector, r)
}

// Binding pairs one character (a grapheme cluster) with the fonts able to
// render it, in rank order.
type Binding struct {
	Char  string
	Fonts []Record
}
