package background

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/textsynth/internal/errkind"
	"github.com/gogpu/textsynth/internal/randx"
	"github.com/gogpu/textsynth/raster"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testFS(t *testing.T) fstest.MapFS {
	return fstest.MapFS{
		"bg/large.png":       {Data: pngBytes(t, 300, 120, color.Gray{Y: 200})},
		"bg/small.PNG":       {Data: pngBytes(t, 20, 10, color.Gray{Y: 90})},
		"bg/broken.jpg":      {Data: []byte("not a jpeg")},
		"bg/notes.txt":       {Data: []byte("ignored")},
		"bg/nested/deep.png": {Data: pngBytes(t, 50, 50, color.Black)},
	}
}

func TestNew(t *testing.T) {
	f, err := New(testFS(t), "bg", 64, 128)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len(), "broken, non-image and nested files are skipped")
	h, w := f.Size()
	assert.Equal(t, 64, h)
	assert.Equal(t, 128, w)
	assert.Equal(t, raster.RGB8, f.Format())
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		h, w int
		want error
	}{
		{"missing dir", fstest.MapFS{}, 10, 10, errkind.Configuration},
		{"no images", fstest.MapFS{"bg/a.txt": {Data: []byte("x")}}, 10, 10, errkind.Configuration},
		{"only broken", fstest.MapFS{"bg/a.png": {Data: []byte("x")}}, 10, 10, errkind.Configuration},
		{"zero height", testFS(t), 0, 10, errkind.InvalidArgument},
		{"negative width", testFS(t), 10, -1, errkind.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.fsys, "bg", tt.h, tt.w)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRandomSize(t *testing.T) {
	f, err := New(testFS(t), "bg", 64, 128)
	require.NoError(t, err)
	rng := randx.New(3)

	sizes := [][2]int{{64, 128}, {32, 1000}, {200, 16}, {1, 1}}
	for _, s := range sizes {
		require.NoError(t, f.SetSize(s[0], s[1]))
		for range 10 {
			img, err := f.Random(rng)
			require.NoError(t, err)
			assert.Equal(t, s[0], img.Height())
			assert.Equal(t, s[1], img.Width())
			assert.Equal(t, raster.RGB8, img.Format())
		}
	}
}

func TestRandomUsesEveryImage(t *testing.T) {
	f, err := New(testFS(t), "bg", 8, 8, WithFormat(raster.Gray8))
	require.NoError(t, err)
	rng := randx.New(5)

	seen := map[uint8]bool{}
	for range 50 {
		img, err := f.Random(rng)
		require.NoError(t, err)
		assert.Equal(t, raster.Gray8, img.Format())
		seen[img.At(4, 4, 0)] = true
	}
	assert.True(t, seen[200])
	assert.True(t, seen[90])
}

func TestSetSizeRejects(t *testing.T) {
	f, err := New(testFS(t), "bg", 64, 128)
	require.NoError(t, err)
	assert.ErrorIs(t, f.SetSize(0, 5), errkind.InvalidArgument)
	h, w := f.Size()
	assert.Equal(t, 64, h)
	assert.Equal(t, 128, w)
}

func TestRandomDeterministic(t *testing.T) {
	f, err := New(testFS(t), "bg", 16, 16)
	require.NoError(t, err)
	a, err := f.Random(randx.New(9))
	require.NoError(t, err)
	b, err := f.Random(randx.New(9))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}
