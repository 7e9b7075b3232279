// Package backend implements gpu.Context on WebGPU.
//
// The context owns the instance, adapter, device and surface. Resources are tracked in
// handle tables; render pipelines are created lazily per program, render state and vertex
// layout. Uniform blocks are written to a per-frame ring buffer bound with dynamic offsets.
package backend

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

// PresentMode controls how frames are delivered to the display.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4; higher values are adapter-dependent.
type MSAASampleCount uint32

const (
	MSAAOff MSAASampleCount = 1
	MSAA4x  MSAASampleCount = 4
	MSAA8x  MSAASampleCount = 8
	MSAA16x MSAASampleCount = 16
)

// DefaultUniformRingSize is the per-frame uniform budget in bytes.
const DefaultUniformRingSize = 4 << 20

const depthFormat = wgpu.TextureFormatDepth24PlusStencil8

// SurfaceSource is the window a context presents to.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// Context is the WebGPU gpu.Context. Every method must be called from the goroutine that
// created it, which is locked to its OS thread.
type Context struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount
	width, height int

	msaaTexture  *wgpu.Texture
	msaaView     *wgpu.TextureView
	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView
	emptyLayout  *wgpu.BindGroupLayout
	emptyGroup   *wgpu.BindGroup

	forceFallbackAdapter bool
	ringSize             uint64

	handles  handleTable
	ring     *uniformRing
	draw     drawState
	frame    *frame
	viewport [4]int

	logger *slog.Logger
}

var _ gpu.Context = &Context{}

// NewContext creates the device for the given window surface and configures the swap chain
// at the window size. The calling goroutine is locked to its OS thread.
//
// Parameters:
//   - source: the window providing the surface descriptor and size
//   - options: functional options applied before the adapter is requested
//
// Returns:
//   - *Context: the ready context
//   - error: an error if no adapter or device is available
func NewContext(source SurfaceSource, options ...ContextBuilderOption) (*Context, error) {
	if source == nil {
		panic("backend: NewContext requires a non-nil surface source")
	}
	runtime.LockOSThread()

	c := &Context{
		presentMode: wgpu.PresentModeFifo,
		sampleCount: MSAA4x,
		ringSize:    DefaultUniformRingSize,
		handles:     newHandleTable(),
		logger:      common.Logger("WGPU"),
	}
	for _, option := range options {
		option(c)
	}
	c.draw.reset()

	c.instance = wgpu.CreateInstance(nil)
	c.surface = c.instance.CreateSurface(source.SurfaceDescriptor())

	adapter, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: c.forceFallbackAdapter,
		CompatibleSurface:    c.surface,
	})
	if err != nil {
		c.Dispose()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	c.adapter = adapter

	limits := wgpu.DefaultLimits()
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "oxy-scene device",
		RequiredLimits: &wgpu.RequiredLimits{Limits: limits},
	})
	if err != nil {
		c.Dispose()
		return nil, fmt.Errorf("request device: %w", err)
	}
	c.device = device
	c.queue = device.GetQueue()

	if c.ring, err = newUniformRing(device, c.ringSize); err != nil {
		c.Dispose()
		return nil, err
	}
	if c.emptyLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{Label: "empty"}); err != nil {
		c.Dispose()
		return nil, fmt.Errorf("create empty bind group layout: %w", err)
	}
	if c.emptyGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{Label: "empty", Layout: c.emptyLayout}); err != nil {
		c.Dispose()
		return nil, fmt.Errorf("create empty bind group: %w", err)
	}

	if err := c.Resize(source.Width(), source.Height()); err != nil {
		c.Dispose()
		return nil, err
	}
	c.logger.Info("context ready", "format", c.surfaceFormat, "msaa", c.sampleCount, "width", c.width, "height", c.height)
	return c, nil
}

// Resize reconfigures the swap chain and recreates the MSAA and depth targets. Zero sizes
// are ignored, which happens while a window is minimized.
//
// Parameters:
//   - width: the new width of the surface in pixels
//   - height: the new height of the surface in pixels
//
// Returns:
//   - error: an error if a render target cannot be created
func (c *Context) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	c.width, c.height = width, height

	capabilities := c.surface.GetCapabilities(c.adapter)
	c.surfaceFormat = capabilities.Formats[0]
	c.alphaMode = capabilities.AlphaModes[0]
	c.configureSurface()

	c.releaseTargets()
	count := uint32(c.sampleCount)
	if count > 1 {
		tex, view, err := c.createTarget("MSAA Texture", c.surfaceFormat, count)
		if err != nil {
			return err
		}
		c.msaaTexture, c.msaaView = tex, view
	}
	tex, view, err := c.createTarget("Depth Texture", depthFormat, count)
	if err != nil {
		return err
	}
	c.depthTexture, c.depthView = tex, view
	return nil
}

func (c *Context) configureSurface() {
	c.surface.Configure(c.adapter, c.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      c.surfaceFormat,
		Width:       uint32(c.width),
		Height:      uint32(c.height),
		PresentMode: c.presentMode,
		AlphaMode:   c.alphaMode,
	})
}

func (c *Context) createTarget(label string, format wgpu.TextureFormat, samples uint32) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(c.width),
			Height:             uint32(c.height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return tex, view, nil
}

func (c *Context) releaseTargets() {
	if c.msaaView != nil {
		c.msaaView.Release()
		c.msaaTexture.Release()
		c.msaaView, c.msaaTexture = nil, nil
	}
	if c.depthView != nil {
		c.depthView.Release()
		c.depthTexture.Release()
		c.depthView, c.depthTexture = nil, nil
	}
}

// SetPresentMode switches between vsync and uncapped presentation.
//
// Parameters:
//   - mode: the PresentMode to use
func (c *Context) SetPresentMode(mode PresentMode) {
	c.presentMode = wgpuPresentMode(mode)
	if c.device != nil && c.width > 0 {
		c.configureSurface()
	}
}

// Size returns the swap chain size in pixels.
func (c *Context) Size() (width, height int) {
	return c.width, c.height
}

func (c *Context) Dispose() {
	if c.frame != nil {
		c.frame.release()
		c.frame = nil
	}
	c.handles.releaseAll()
	if c.ring != nil {
		c.ring.release()
		c.ring = nil
	}
	if c.emptyGroup != nil {
		c.emptyGroup.Release()
		c.emptyGroup = nil
	}
	if c.emptyLayout != nil {
		c.emptyLayout.Release()
		c.emptyLayout = nil
	}
	c.releaseTargets()
	if c.queue != nil {
		c.queue.Release()
		c.queue = nil
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}

func wgpuPresentMode(mode PresentMode) wgpu.PresentMode {
	switch mode {
	case PresentModeUncapped:
		return wgpu.PresentModeImmediate
	default:
		return wgpu.PresentModeFifo
	}
}
