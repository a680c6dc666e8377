package fontindex

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"unicode"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/font/opentype"

	"github.com/gogpu/textsynth/internal/errkind"
)

var fvarTag = ot.MustNewTag("fvar")

// candidate is a parsed face waiting for its rank.
type candidate struct {
	rec   Record
	runes []rune
	face  *opentype.Font
	rank  int
}

// Build scans root inside fsys recursively and indexes every .ttf, .otf,
// .ttc and .otc file.
//
// A corrupt or variable font fails the build with a *LoadError unless
// WithSkipInvalid is set. A tree without any usable font, or a main or
// fallback family that is not found, is a configuration error.
func Build(fsys fs.FS, root string, opts ...Option) (*Index, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	paths, err := fontPaths(fsys, root)
	if err != nil {
		return nil, err
	}

	var cands []candidate
	for _, p := range paths {
		faces, err := parseFile(fsys, p)
		if err != nil {
			if o.skipInvalid && errors.Is(err, errkind.Load) {
				o.logger.Warn("fontindex: skipping font", "path", p, "err", err)
				continue
			}
			return nil, err
		}
		cands = append(cands, faces...)
	}
	if len(cands) == 0 {
		return nil, fmt.Errorf("%w under %q", ErrNoFonts, root)
	}

	if err := rank(cands, o.main, o.fallback); err != nil {
		return nil, err
	}

	ix := &Index{
		records:  make([]Record, len(cands)),
		faces:    make([]*opentype.Font, len(cands)),
		coverage: make(map[rune][]FontID),
	}
	for i, c := range cands {
		id := FontID(i)
		c.rec.ID = id
		ix.records[i] = c.rec
		ix.faces[i] = c.face
		for _, r := range c.runes {
			ix.coverage[r] = append(ix.coverage[r], id)
		}
	}

	o.logger.Info("fontindex: built",
		"fonts", len(ix.records),
		"main", len(ix.ByCategory(Main)),
		"fallback", len(ix.ByCategory(Fallback)),
		"runes", len(ix.coverage))
	return ix, nil
}

// fontPaths walks root and returns font files in lexical order.
func fontPaths(fsys fs.FS, root string) ([]string, error) {
	var paths []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isFontFile(p) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fontindex: scan %q: %w: %w", root, errkind.Configuration, err)
	}
	return paths, nil
}

func isFontFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".ttf", ".otf", ".ttc", ".otc":
		return true
	}
	return false
}

// parseFile loads every face of a font file. Coverage comes from go-text;
// the x/image font is kept for rasterization.
func parseFile(fsys fs.FS, p string) ([]candidate, error) {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("fontindex: read %q: %w: %w", p, errkind.Configuration, err)
	}

	loaders, err := ot.NewLoaders(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Path: p, Cause: err}
	}

	var faces []*opentype.Font
	if len(loaders) > 1 {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, &LoadError{Path: p, Cause: err}
		}
		for i := range coll.NumFonts() {
			f, err := coll.Font(i)
			if err != nil {
				return nil, &LoadError{Path: p, Face: i, Cause: err}
			}
			faces = append(faces, f)
		}
	} else {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, &LoadError{Path: p, Cause: err}
		}
		faces = append(faces, f)
	}
	if len(faces) != len(loaders) {
		return nil, &LoadError{Path: p, Cause: fmt.Errorf("%d faces parsed, %d expected", len(faces), len(loaders))}
	}

	out := make([]candidate, 0, len(loaders))
	for i, ld := range loaders {
		if ld.HasTable(fvarTag) {
			return nil, &LoadError{Path: p, Face: i, Cause: ErrVariableFont}
		}
		ft, err := font.NewFont(ld)
		if err != nil {
			return nil, &LoadError{Path: p, Face: i, Cause: err}
		}

		desc := ft.Describe()
		family := desc.Family
		if family == "" {
			family = strings.TrimSuffix(path.Base(p), path.Ext(p))
		}
		out = append(out, candidate{
			rec: Record{
				Family:    family,
				Style:     uint16(desc.Aspect.Style),
				Weight:    uint16(desc.Aspect.Weight),
				Stretch:   uint16(desc.Aspect.Stretch * 100),
				Category:  Discovered,
				Path:      p,
				FaceIndex: i,
			},
			runes: coveredRunes(ft),
			face:  faces[i],
		})
	}
	return out, nil
}

// coveredRunes lists the runes the font maps to a real glyph. A glyph counts
// when it has a non-empty outline, or when it is a space with an advance.
func coveredRunes(ft *font.Font) []rune {
	face := font.NewFace(ft)
	var runes []rune
	it := ft.Cmap.Iter()
	for it.Next() {
		r, gid := it.Char()
		if gid == 0 {
			continue
		}
		if ext, ok := face.GlyphExtents(gid); ok && (ext.Width != 0 || ext.Height != 0) {
			runes = append(runes, r)
			continue
		}
		if unicode.IsSpace(r) && face.HorizontalAdvance(gid) > 0 {
			runes = append(runes, r)
		}
	}
	slices.Sort(runes)
	return slices.Compact(runes)
}

// rank assigns categories and sorts candidates into their final ID order.
func rank(cands []candidate, main, fallback []string) error {
	const discoveredRank = 1 << 30

	position := func(list []string, family string) int {
		return slices.IndexFunc(list, func(s string) bool {
			return strings.EqualFold(s, family)
		})
	}

	for i := range cands {
		c := &cands[i]
		c.rank = discoveredRank + i
		if p := position(main, c.rec.Family); p >= 0 {
			c.rec.Category = Main
			c.rank = p
		} else if p := position(fallback, c.rec.Family); p >= 0 {
			c.rec.Category = Fallback
			c.rank = len(main) + p
		}
	}

	for _, list := range []struct {
		names []string
		cat   Category
	}{{main, Main}, {fallback, Fallback}} {
		for _, name := range list.names {
			found := slices.ContainsFunc(cands, func(c candidate) bool {
				return strings.EqualFold(c.rec.Family, name)
			})
			if !found {
				return &UnknownFontError{Family: name, Category: list.cat}
			}
		}
	}

	slices.SortStableFunc(cands, func(a, b candidate) int {
		return cmp.Compare(a.rank, b.rank)
	})
	return nil
}
