package gpu

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// Texture is an RGBA8 2D texture.
type Texture struct {
	refCount
	staging    common.TextureStagingData
	mipMapping bool
}

var _ Resource = &Texture{}

// NewTexture wraps decoded pixels. Panics when the dimensions do not match the pixel count.
//
// Parameters:
//   - staging: the RGBA pixels and dimensions
//   - mipMapping: true to request a full mip chain from the backend
//
// Returns:
//   - *Texture: the texture, not yet uploaded
func NewTexture(staging common.TextureStagingData, mipMapping bool) *Texture {
	if int(staging.Width*staging.Height*4) != len(staging.Pixels) {
		panic(fmt.Sprintf("gpu: texture %dx%d needs %d bytes, got %d",
			staging.Width, staging.Height, staging.Width*staging.Height*4, len(staging.Pixels)))
	}
	return &Texture{refCount: newRefCount(), staging: staging, mipMapping: mipMapping}
}

// Width returns the width in texels.
func (t *Texture) Width() int {
	return int(t.staging.Width)
}

// Height returns the height in texels.
func (t *Texture) Height() int {
	return int(t.staging.Height)
}

// Acquire creates and uploads the texture on the first reference.
func (t *Texture) Acquire(ctx Context) error {
	return t.acquire(ctx, func(ctx Context) (Handle, error) {
		w, h := int(t.staging.Width), int(t.staging.Height)
		handle, err := ctx.CreateTexture(w, h, t.mipMapping)
		if err != nil {
			return InvalidHandle, fmt.Errorf("create texture: %w", err)
		}
		if err := ctx.UploadTextureData(handle, w, h, 0, t.staging.Pixels); err != nil {
			_ = ctx.DeleteTexture(handle)
			return InvalidHandle, fmt.Errorf("upload texture: %w", err)
		}
		return handle, nil
	})
}

// Release deletes the texture with the last reference.
func (t *Texture) Release() error {
	return t.release(func(ctx Context, h Handle) error {
		return ctx.DeleteTexture(h)
	})
}
