package glyph

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/textsynth/corpus"
	"github.com/gogpu/textsynth/fontindex"
	"github.com/gogpu/textsynth/internal/errkind"
	"github.com/gogpu/textsynth/internal/fonttest"
	"github.com/gogpu/textsynth/internal/randx"
	"github.com/gogpu/textsynth/raster"
)

var (
	black = raster.RGB{}
	white = raster.RGB{R: 255, G: 255, B: 255}
)

func fixture(t *testing.T) (*fontindex.Index, *corpus.Tables) {
	t.Helper()
	fsys := fstest.MapFS{
		"fonts/han.ttf": {Data: fonttest.Build(fonttest.Font{
			Family: "Han",
			Glyphs: map[rune]rune{'一': '-', '二': '=', '人': 'A'},
		})},
		"fonts/latin.ttf": {Data: fonttest.Build(fonttest.Font{
			Family: "Latin",
			Glyphs: fonttest.Merge(fonttest.Latin(), map[rune]rune{'人': 'A'}),
		})},
	}
	ix, err := fontindex.Build(fsys, "fonts", fontindex.WithMainFonts("Han"))
	require.NoError(t, err)

	ideo, err := corpus.NewTable(corpus.Ideograph, []corpus.Entry{{Char: "一", Weight: 1}, {Char: "二", Weight: 1}, {Char: "人", Weight: 1}}, ix, nil)
	require.NoError(t, err)
	latin, err := corpus.NewTable(corpus.Latin, corpus.LatinEntries("ab c"), ix, nil)
	require.NoError(t, err)
	tables, err := corpus.NewTables(ideo, latin)
	require.NoError(t, err)
	return ix, tables
}

func TestResolve(t *testing.T) {
	_, tables := fixture(t)
	r := NewResolver(tables)

	segs, err := r.Resolve("一a 二")
	require.NoError(t, err)
	require.Len(t, segs, 4)
	assert.Equal(t, "一a 二", corpus.Text(segs))
	assert.Equal(t, "Han", segs[0].Fonts[0].Family)
	assert.Equal(t, "Latin", segs[1].Fonts[0].Family)

	segs, err = r.Resolve("")
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestResolveMissing(t *testing.T) {
	_, tables := fixture(t)
	_, err := NewResolver(tables).Resolve("一口")
	require.Error(t, err)
	assert.ErrorIs(t, err, errkind.MissingCoverage)

	var mc *MissingCoverageError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, "口", mc.Char)
	assert.Equal(t, 1, mc.Position)
}

func TestNewSelectorBounds(t *testing.T) {
	for _, bias := range []float64{-0.1, 1.5} {
		_, err := NewSelector(bias)
		assert.ErrorIs(t, err, errkind.InvalidArgument, "bias %v", bias)
	}
	s, err := NewSelector(0.3)
	require.NoError(t, err)
	assert.Equal(t, 0.3, s.MainBias())
}

func TestSelectorPick(t *testing.T) {
	main := fontindex.Record{ID: 0, Family: "M", Category: fontindex.Main}
	other1 := fontindex.Record{ID: 1, Family: "F", Category: fontindex.Fallback}
	other2 := fontindex.Record{ID: 2, Family: "D", Category: fontindex.Discovered}
	mixed := []fontindex.Record{main, other1, other2}
	rng := randx.New(7)

	_, ok := Selector{}.Pick(nil, rng)
	assert.False(t, ok)

	always, _ := NewSelector(1)
	never, _ := NewSelector(0)
	for range 200 {
		got, ok := always.Pick(mixed, rng)
		require.True(t, ok)
		assert.Equal(t, fontindex.Main, got.Category)

		got, ok = never.Pick(mixed, rng)
		require.True(t, ok)
		assert.NotEqual(t, fontindex.Main, got.Category)
	}

	// Without a main candidate the bias is irrelevant.
	seen := map[fontindex.FontID]int{}
	for range 1000 {
		got, _ := always.Pick([]fontindex.Record{other1, other2}, rng)
		seen[got.ID]++
	}
	assert.InDelta(t, 500, seen[1], 80)
	assert.InDelta(t, 500, seen[2], 80)
}

func TestSelectorBias(t *testing.T) {
	mixed := []fontindex.Record{
		{ID: 0, Category: fontindex.Main},
		{ID: 1, Category: fontindex.Discovered},
	}
	s, _ := NewSelector(DefaultMainBias)
	rng := randx.New(11)
	mainHits := 0
	const n = 5000
	for range n {
		if got, _ := s.Pick(mixed, rng); got.Category == fontindex.Main {
			mainHits++
		}
	}
	assert.InDelta(t, DefaultMainBias, float64(mainHits)/n, 0.03)
}

func newRasterizer(t *testing.T, ix *fontindex.Index) *Rasterizer {
	t.Helper()
	sel, err := NewSelector(DefaultMainBias)
	require.NoError(t, err)
	r, err := NewRasterizer(ix, DefaultRasterConfig(), sel)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRasterizerDraw(t *testing.T) {
	ix, tables := fixture(t)
	r := newRasterizer(t, ix)

	segs, err := NewResolver(tables).Resolve("一二ab")
	require.NoError(t, err)

	img, err := r.Draw(segs, black, white, randx.New(1))
	require.NoError(t, err)
	assert.Equal(t, raster.RGB8, img.Format())
	assert.Equal(t, 64, img.Height())
	assert.Greater(t, img.Width(), 1)

	darkest := uint8(255)
	for _, v := range img.Pix() {
		darkest = min(darkest, v)
	}
	assert.Less(t, darkest, uint8(64), "text must be inked")

	// The last column is inked, the one after it would not be.
	last := img.Width() - 1
	inked := false
	for y := range img.Height() {
		if img.At(last, y, 0) != 255 {
			inked = true
		}
	}
	assert.True(t, inked)

	again, err := r.Draw(segs, black, white, randx.New(1))
	require.NoError(t, err)
	assert.True(t, img.Equal(again), "same seed must render identically")

	short, err := r.Draw(segs[:1], black, white, randx.New(1))
	require.NoError(t, err)
	assert.Less(t, short.Width(), img.Width())
}

func TestRasterizerErrors(t *testing.T) {
	ix, _ := fixture(t)
	r := newRasterizer(t, ix)

	_, err := r.Draw(nil, black, white, randx.New(1))
	assert.ErrorIs(t, err, errkind.InvalidArgument)

	// Latin does not carry U+4E00 even though the binding claims it.
	latin := ix.ByCategory(fontindex.Discovered)
	require.Len(t, latin, 1)
	bad := []fontindex.Binding{{Char: "a", Fonts: latin}, {Char: "一", Fonts: latin}}
	_, err = r.Draw(bad, black, white, randx.New(1))
	var mc *MissingCoverageError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, 1, mc.Position)
	assert.ErrorIs(t, err, errkind.MissingCoverage)

	_, err = r.Draw([]fontindex.Binding{{Char: "a"}}, black, white, randx.New(1))
	assert.ErrorIs(t, err, errkind.MissingCoverage)
}

func TestRasterConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultRasterConfig().Validate())
	bad := DefaultRasterConfig()
	bad.LineHeight = 0
	assert.ErrorIs(t, bad.Validate(), errkind.InvalidArgument)
	bad = DefaultRasterConfig()
	bad.Baseline = 100
	assert.ErrorIs(t, bad.Validate(), errkind.InvalidArgument)
	bad = DefaultRasterConfig()
	bad.FaceCache = -1
	assert.ErrorIs(t, bad.Validate(), errkind.InvalidArgument)
}

func TestRasterizerFaceCache(t *testing.T) {
	ix, tables := fixture(t)
	sel, err := NewSelector(DefaultMainBias)
	require.NoError(t, err)
	cfg := DefaultRasterConfig()
	cfg.FaceCache = 1
	r, err := NewRasterizer(ix, cfg, sel)
	require.NoError(t, err)
	defer r.Close()

	// Han and Latin on one line: the first face is evicted mid-draw.
	segs, err := NewResolver(tables).Resolve("一ab")
	require.NoError(t, err)
	img, err := r.Draw(segs, black, white, randx.New(1))
	require.NoError(t, err)
	assert.Greater(t, img.Width(), 1)

	stats := r.CacheStats()
	assert.Equal(t, 1, stats.Len)
	assert.Equal(t, uint64(1), stats.Evictions)

	again, err := r.Draw(segs, black, white, randx.New(1))
	require.NoError(t, err)
	assert.True(t, img.Equal(again))
}
