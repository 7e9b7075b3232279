// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// DecodeImage decodes PNG, JPEG, BMP, TIFF or WebP bytes into RGBA staging data.
// Reference: https://pkg.go.dev/image
//
// Parameters:
//   - data: the encoded image bytes
//
// Returns:
//   - TextureStagingData: the decoded pixels and dimensions
//   - error: error if decoding fails
func DecodeImage(data []byte) (TextureStagingData, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return toRGBA(img), nil
}

// DecodeImageFile opens and decodes the image at path.
//
// Parameters:
//   - path: the file path of a PNG, JPEG, BMP, TIFF or WebP image
//
// Returns:
//   - TextureStagingData: the decoded pixels and dimensions
//   - error: error if the file cannot be opened or decoded
func DecodeImageFile(path string) (TextureStagingData, error) {
	file, err := os.Open(path)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode texture file %s: %w", path, err)
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) TextureStagingData {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
}

// FitTexture scales staging data down so neither side exceeds maxSize, keeping the aspect
// ratio. Data already within bounds, or a non-positive maxSize, is returned unchanged.
//
// Parameters:
//   - t: the decoded texture
//   - maxSize: the largest allowed width or height in pixels
//
// Returns:
//   - TextureStagingData: the scaled texture
func FitTexture(t TextureStagingData, maxSize int) TextureStagingData {
	w, h := int(t.Width), int(t.Height)
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return t
	}
	scale := float64(maxSize) / float64(max(w, h))
	nw, nh := max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))

	src := &image.RGBA{Pix: t.Pixels, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return TextureStagingData{Pixels: dst.Pix, Width: uint32(nw), Height: uint32(nh)}
}
