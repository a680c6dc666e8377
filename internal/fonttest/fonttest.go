// Package fonttest builds small synthetic TrueType fonts for tests.
//
// Every font reuses the outlines of Go Regular but carries its own family
// name and cmap, so a test can declare exactly which characters a font
// covers. Ideographs are drawn with borrowed Latin glyphs: U+4E00 can be
// mapped to the hyphen outline, which is enough to exercise coverage and
// rasterization without shipping CJK fonts.
package fonttest

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"fmt"
	"slices"
	"unicode/utf16"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/font/gofont/goregular"
)

// Font describes a synthetic font.
type Font struct {
	// Family is written to the name table.
	Family string

	// Glyphs maps each covered character to the Go Regular character whose
	// outline it borrows. Only BMP runes are supported.
	Glyphs map[rune]rune

	// Variable adds an empty fvar table so the font reads as a variable font.
	Variable bool
}

// Ideographs maps a few CJK characters to distinct Latin outlines.
var Ideographs = map[rune]rune{
	'一': '-',
	'二': '=',
	'三': 'E',
	'人': 'A',
	'口': 'O',
}

// Latin maps ASCII letters and digits to themselves.
func Latin() map[rune]rune {
	m := make(map[rune]rune)
	for r := rune(0x20); r < 0x7f; r++ {
		m[r] = r
	}
	return m
}

// Merge returns the union of glyph maps; later maps win.
func Merge(maps ...map[rune]rune) map[rune]rune {
	out := make(map[rune]rune)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Build returns the encoded font. It panics on failure because the input
// is fixed test data.
func Build(f Font) []byte {
	ld, err := ot.NewLoader(bytes.NewReader(goregular.TTF))
	if err != nil {
		panic(fmt.Sprintf("fonttest: load Go Regular: %v", err))
	}
	base, err := font.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		panic(fmt.Sprintf("fonttest: parse Go Regular: %v", err))
	}

	mapping := make(map[rune]uint16, len(f.Glyphs))
	for r, src := range f.Glyphs {
		gid, ok := base.NominalGlyph(src)
		if !ok {
			panic(fmt.Sprintf("fonttest: Go Regular has no glyph for %q", src))
		}
		mapping[r] = uint16(gid)
	}

	cmapTag, nameTag := ot.MustNewTag("cmap"), ot.MustNewTag("name")
	var out []ot.Table
	for _, tag := range ld.Tables() {
		var content []byte
		switch tag {
		case cmapTag:
			content = cmapFormat4(mapping)
		case nameTag:
			content = nameTable(f.Family)
		default:
			content, err = ld.RawTable(tag)
			if err != nil {
				panic(fmt.Sprintf("fonttest: read %s: %v", tag, err))
			}
		}
		out = append(out, ot.Table{Tag: tag, Content: content})
	}
	if f.Variable {
		out = append(out, ot.Table{Tag: ot.MustNewTag("fvar"), Content: fvarTable()})
	}
	slices.SortFunc(out, func(a, b ot.Table) int {
		return cmp.Compare(a.Tag, b.Tag)
	})
	return writeSFNT(out)
}

// writeSFNT lays out a TrueType file with every table starting on a
// 4-byte boundary. Directory lengths are the unpadded table sizes, which
// fixed-size tables such as head require.
func writeSFNT(tables []ot.Table) []byte {
	be := binary.BigEndian
	n := len(tables)
	entrySelector := 0
	for 1<<(entrySelector+1) <= n {
		entrySelector++
	}
	searchRange := (1 << entrySelector) * 16

	out := make([]byte, 0, 12+16*n)
	out = be.AppendUint32(out, 0x00010000)
	out = be.AppendUint16(out, uint16(n))
	out = be.AppendUint16(out, uint16(searchRange))
	out = be.AppendUint16(out, uint16(entrySelector))
	out = be.AppendUint16(out, uint16(n*16-searchRange))

	offset := uint32(12 + 16*n)
	for _, t := range tables {
		out = be.AppendUint32(out, uint32(t.Tag))
		out = be.AppendUint32(out, checksum(t.Content))
		out = be.AppendUint32(out, offset)
		out = be.AppendUint32(out, uint32(len(t.Content)))
		offset += uint32(pad4(len(t.Content)))
	}
	for _, t := range tables {
		out = append(out, t.Content...)
		out = append(out, make([]byte, pad4(len(t.Content))-len(t.Content))...)
	}
	return out
}

func pad4(n int) int { return (n + 3) &^ 3 }

func checksum(b []byte) uint32 {
	var sum uint32
	for i := 0; i < len(b); i += 4 {
		var word [4]byte
		copy(word[:], b[i:])
		sum += binary.BigEndian.Uint32(word[:])
	}
	return sum
}

// Corrupt returns bytes that carry a TrueType signature but no valid tables.
func Corrupt() []byte {
	return []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x05, 0xde, 0xad, 0xbe, 0xef}
}

// cmapFormat4 encodes a single Windows Unicode BMP subtable with one segment
// per character plus the mandatory 0xFFFF terminator.
func cmapFormat4(mapping map[rune]uint16) []byte {
	runes := make([]rune, 0, len(mapping))
	for r := range mapping {
		if r >= 0xFFFF {
			panic(fmt.Sprintf("fonttest: %U outside the BMP", r))
		}
		runes = append(runes, r)
	}
	slices.Sort(runes)

	segCount := len(runes) + 1
	entrySelector := 0
	for 1<<(entrySelector+1) <= segCount {
		entrySelector++
	}
	searchRange := 2 << entrySelector

	be := binary.BigEndian
	var sub []byte
	u16 := func(v uint16) { sub = be.AppendUint16(sub, v) }

	u16(4)
	u16(uint16(16 + 8*segCount))
	u16(0)
	u16(uint16(2 * segCount))
	u16(uint16(searchRange))
	u16(uint16(entrySelector))
	u16(uint16(2*segCount - searchRange))
	for _, r := range runes {
		u16(uint16(r))
	}
	u16(0xFFFF)
	u16(0)
	for _, r := range runes {
		u16(uint16(r))
	}
	u16(0xFFFF)
	for _, r := range runes {
		u16(mapping[r] - uint16(r))
	}
	u16(1)
	for range segCount {
		u16(0)
	}

	var out []byte
	out = be.AppendUint16(out, 0)
	out = be.AppendUint16(out, 1)
	out = be.AppendUint16(out, 3)
	out = be.AppendUint16(out, 1)
	out = be.AppendUint32(out, 12)
	return append(out, sub...)
}

// nameTable encodes a format 0 name table with Windows English records for
// family, subfamily, full name and PostScript name.
func nameTable(family string) []byte {
	type record struct {
		id    uint16
		value string
	}
	records := []record{
		{1, family},
		{2, "Regular"},
		{4, family + " Regular"},
		{6, family + "-Regular"},
	}

	be := binary.BigEndian
	var storage []byte
	var out []byte
	out = be.AppendUint16(out, 0)
	out = be.AppendUint16(out, uint16(len(records)))
	out = be.AppendUint16(out, uint16(6+12*len(records)))
	for _, rec := range records {
		var enc []byte
		for _, u := range utf16.Encode([]rune(rec.value)) {
			enc = be.AppendUint16(enc, u)
		}
		out = be.AppendUint16(out, 3)
		out = be.AppendUint16(out, 1)
		out = be.AppendUint16(out, 0x409)
		out = be.AppendUint16(out, rec.id)
		out = be.AppendUint16(out, uint16(len(enc)))
		out = be.AppendUint16(out, uint16(len(storage)))
		storage = append(storage, enc...)
	}
	return append(out, storage...)
}

// fvarTable encodes an fvar header with no axes and no instances.
func fvarTable() []byte {
	be := binary.BigEndian
	var out []byte
	out = be.AppendUint16(out, 1)
	out = be.AppendUint16(out, 0)
	out = be.AppendUint16(out, 16)
	out = be.AppendUint16(out, 2)
	out = be.AppendUint16(out, 0)
	out = be.AppendUint16(out, 20)
	out = be.AppendUint16(out, 0)
	out = be.AppendUint16(out, 8)
	return out
}
