package fontindex

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/textsynth/internal/errkind"
	"github.com/gogpu/textsynth/internal/fonttest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"fonts/a-discovered.ttf": {Data: fonttest.Build(fonttest.Font{
			Family: "Discovered Sans",
			Glyphs: fonttest.Merge(fonttest.Latin(), map[rune]rune{'一': '-', '二': '='}),
		})},
		"fonts/cjk/main.ttf": {Data: fonttest.Build(fonttest.Font{
			Family: "Main Serif",
			Glyphs: map[rune]rune{'一': '-', '人': 'A', ' ': ' '},
		})},
		"fonts/cjk/fallback.TTF": {Data: fonttest.Build(fonttest.Font{
			Family: "Fallback Song",
			Glyphs: map[rune]rune{'一': '-', '口': 'O'},
		})},
		"fonts/readme.txt": {Data: []byte("not a font")},
	}
}

func build(t *testing.T, fsys fstest.MapFS, opts ...Option) *Index {
	t.Helper()
	ix, err := Build(fsys, "fonts", opts...)
	require.NoError(t, err)
	return ix
}

func families(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Family
	}
	return out
}

func TestBuildRanksMainFallbackDiscovered(t *testing.T) {
	ix := build(t, testFS(), WithMainFonts("Main Serif"), WithFallbackFonts("fallback song"))
	require.Equal(t, 3, ix.Len())

	recs, err := ix.Lookup("一")
	require.NoError(t, err)
	assert.Equal(t, []string{"Main Serif", "Fallback Song", "Discovered Sans"}, families(recs))
	assert.Equal(t, []Category{Main, Fallback, Discovered},
		[]Category{recs[0].Category, recs[1].Category, recs[2].Category})

	for i, r := range ix.Records() {
		assert.Equal(t, FontID(i), r.ID)
		face, ok := ix.Face(r.ID)
		assert.True(t, ok)
		assert.NotNil(t, face)
	}
}

func TestBuildWithoutListsKeepsDiscoveryOrder(t *testing.T) {
	ix := build(t, testFS())
	recs, err := ix.Lookup("一")
	require.NoError(t, err)
	assert.Equal(t, []string{"Discovered Sans", "Fallback Song", "Main Serif"}, families(recs))
}

func TestLookup(t *testing.T) {
	ix := build(t, testFS(), WithMainFonts("Main Serif"))

	tests := []struct {
		name string
		char string
		want []string
	}{
		{"single main", "人", []string{"Main Serif"}},
		{"fallback only", "口", []string{"Fallback Song"}},
		{"latin", "A", []string{"Discovered Sans"}},
		{"space has advance", " ", []string{"Main Serif", "Discovered Sans"}},
		{"every rune must be covered", "一口", []string{"Fallback Song"}},
		{"variation selector ignored", "一\ufe00", []string{"Main Serif", "Discovered Sans", "Fallback Song"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := ix.Lookup(tt.char)
			require.NoError(t, err)
			assert.Equal(t, tt.want, families(recs))
		})
	}
}

func TestLookupMissing(t *testing.T) {
	ix := build(t, testFS())
	for _, ch := range []string{"龘", "", "Á"} {
		_, err := ix.Lookup(ch)
		var cerr *CoverageError
		require.ErrorAs(t, err, &cerr, ch)
		assert.True(t, errors.Is(err, errkind.MissingCoverage))
	}
}

func TestCovers(t *testing.T) {
	ix := build(t, testFS(), WithMainFonts("Main Serif"))
	assert.True(t, ix.Covers(0, "人"))
	assert.False(t, ix.Covers(0, "口"))
	assert.False(t, ix.Covers(99, "人"))
}

func TestBuildErrors(t *testing.T) {
	variable := testFS()
	variable["fonts/var.ttf"] = &fstest.MapFile{Data: fonttest.Build(fonttest.Font{
		Family:   "Flex",
		Glyphs:   map[rune]rune{'一': '-'},
		Variable: true,
	})}

	corrupt := testFS()
	corrupt["fonts/broken.otf"] = &fstest.MapFile{Data: fonttest.Corrupt()}

	tests := []struct {
		name    string
		fsys    fstest.MapFS
		opts    []Option
		wantErr error
	}{
		{"variable font", variable, nil, errkind.Load},
		{"corrupt font", corrupt, nil, errkind.Load},
		{"empty tree", fstest.MapFS{"fonts/x.txt": {}}, nil, errkind.Configuration},
		{"missing root", fstest.MapFS{}, nil, errkind.Configuration},
		{"unknown main font", testFS(), []Option{WithMainFonts("Nope")}, errkind.Configuration},
		{"unknown fallback font", testFS(), []Option{WithFallbackFonts("Nope")}, errkind.Configuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.fsys, "fonts", tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := Build(variable, "fonts")
	assert.ErrorIs(t, err, ErrVariableFont)
	var lerr *LoadError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "fonts/var.ttf", lerr.Path)
}

func TestBuildSkipInvalid(t *testing.T) {
	fsys := testFS()
	fsys["fonts/broken.ttf"] = &fstest.MapFile{Data: fonttest.Corrupt()}
	ix := build(t, fsys, WithSkipInvalid(true))
	assert.Equal(t, 3, ix.Len())
}

func TestRecordTuple(t *testing.T) {
	ix := build(t, testFS(), WithMainFonts("Main Serif"))
	rec, ok := ix.Record(0)
	require.True(t, ok)
	family, style, weight, stretch := rec.Tuple()
	assert.Equal(t, "Main Serif", family)
	assert.Equal(t, uint16(1), style)
	assert.Equal(t, uint16(400), weight)
	assert.Equal(t, uint16(100), stretch)
}
