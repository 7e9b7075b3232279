package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDecodeImageFormats(t *testing.T) {
	img := solid(3, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	var pngBuf, bmpBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))
	require.NoError(t, bmp.Encode(&bmpBuf, img))

	for name, encoded := range map[string][]byte{"png": pngBuf.Bytes(), "bmp": bmpBuf.Bytes()} {
		t.Run(name, func(t *testing.T) {
			tex, err := DecodeImage(encoded)
			require.NoError(t, err)
			assert.Equal(t, uint32(3), tex.Width)
			assert.Equal(t, uint32(2), tex.Height)
			require.Len(t, tex.Pixels, 3*2*4)
			assert.Equal(t, []byte{10, 20, 30, 255}, tex.Pixels[:4])
		})
	}

	_, err := DecodeImage([]byte("not an image"))
	assert.Error(t, err)
}

func TestDecodeImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tex.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(2, 2, color.RGBA{A: 255})))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	tex, err := DecodeImageFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), tex.Width)

	_, err = DecodeImageFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFitTexture(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	tex := toRGBA(solid(8, 4, red))

	fitted := FitTexture(tex, 4)
	assert.Equal(t, uint32(4), fitted.Width)
	assert.Equal(t, uint32(2), fitted.Height)
	require.Len(t, fitted.Pixels, 4*2*4)
	assert.Equal(t, []byte{255, 0, 0, 255}, fitted.Pixels[:4])

	assert.Equal(t, tex, FitTexture(tex, 8), "textures within bounds are unchanged")
	assert.Equal(t, tex, FitTexture(tex, 0))

	thin := FitTexture(toRGBA(solid(64, 1, red)), 16)
	assert.Equal(t, uint32(16), thin.Width)
	assert.Equal(t, uint32(1), thin.Height)
}
