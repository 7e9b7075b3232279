package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/render"
)

// loaderBackend decodes one kind of asset. Load runs on a worker goroutine and must not
// touch the scene or the GPU.
type loaderBackend interface {
	// Load reads and decodes the asset at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - any: the decoded asset
	//   - error: error if reading or decoding fails
	Load(path string) (any, error)
}

// fileBackend returns the raw bytes.
type fileBackend struct{}

func (fileBackend) Load(path string) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// effectBackend parses a YAML effect. Shader files resolve next to the effect.
type effectBackend struct{}

func (effectBackend) Load(path string) (any, error) {
	return render.LoadEffectFile(path)
}

// textureBackend decodes an image into a texture that is acquired on the GPU by its first
// draw call.
type textureBackend struct {
	maxSize    int
	mipMapping bool
}

func (b textureBackend) Load(path string) (any, error) {
	staging, err := common.DecodeImageFile(path)
	if err != nil {
		return nil, err
	}
	return gpu.NewTexture(common.FitTexture(staging, b.maxSize), b.mipMapping), nil
}

var (
	effectExtensions  = map[string]bool{".yaml": true, ".yml": true}
	textureExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".tif": true, ".tiff": true, ".webp": true}
)

// resolveBackend selects the backend from the file extension and the requested kind.
func (l *Loader) resolveBackend(path string, kind assetKind) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch kind {
	case kindEffect:
		if !effectExtensions[ext] {
			return nil, fmt.Errorf("unsupported effect format: %q", ext)
		}
		return effectBackend{}, nil
	case kindTexture:
		if !textureExtensions[ext] {
			return nil, fmt.Errorf("unsupported texture format: %q", ext)
		}
		return textureBackend{maxSize: l.maxTextureSize, mipMapping: l.mipMapping}, nil
	default:
		return fileBackend{}, nil
	}
}
