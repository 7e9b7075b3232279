// Command viewer opens a window with a lit opaque cube behind two transparent quads.
//
// Usage:
//
//	viewer [-config engine.toml] [-effect effects/basic.yaml]
//
// Arrow keys and WASD orbit the camera. Q, E and the scroll wheel zoom, and dragging with
// the left mouse button rotates. Space pauses the cube. Escape quits.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/geometry"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu/backend"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/loader"
	"github.com/Carmen-Shannon/oxy-scene/engine/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/render"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/surface"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
)

func main() {
	configPath := flag.String("config", "", "TOML configuration file")
	effectPath := flag.String("effect", "effects/basic.yaml", "effect used by every surface")
	flag.Parse()

	if err := run(*configPath, *effectPath); err != nil {
		fmt.Fprintln(os.Stderr, "viewer:", err)
		os.Exit(1)
	}
}

func run(configPath, effectPath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if err := cfg.Apply(os.Stderr); err != nil {
		return err
	}
	logger := common.Logger("Viewer")

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	presentMode := backend.PresentModeVSync
	if !cfg.Window.VSync {
		presentMode = backend.PresentModeUncapped
	}
	ctx, err := backend.NewContext(win,
		backend.WithPresentMode(presentMode),
		backend.WithMSAA(backend.MSAASampleCount(cfg.Window.MSAA)),
	)
	if err != nil {
		return err
	}
	defer ctx.Dispose()

	assets, err := loader.NewLoader(
		loader.WithWorkers(cfg.LoaderWorkers),
		loader.WithHotReload(cfg.HotReload),
	)
	if err != nil {
		return err
	}
	defer assets.Close()

	rendererOptions, err := cfg.RendererOptions()
	if err != nil {
		return err
	}
	v := newViewer(scene.NewSceneManager(ctx), float32(win.Width())/float32(win.Height()), rendererOptions)

	assets.Error().Connect(func(err error) {
		logger.Error("asset failed", "error", err)
	})
	assets.LoadEffect(effectPath, func(effect *render.Effect) {
		logger.Info("effect ready", "effect", effect.Name())
		for _, s := range v.surfaces {
			s.SetEffect(effect)
		}
	})

	v.bindInput(win)

	e := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithResizer(ctx),
		engine.WithLoader(assets),
		engine.WithProfiling(cfg.LogLevel == "debug", time.Second),
	)
	e.SetTickCallback(v.tick)
	if err := e.AddScene(0, v.root); err != nil {
		return err
	}

	logger.Info("running", "effect", effectPath, "width", win.Width(), "height", win.Height())
	e.Run()
	slog.Info("viewer stopped")
	return nil
}

type viewer struct {
	root     scene.Node
	cube     *transform.Transform
	orbit    *camera.OrbitController
	surfaces []*surface.Surface

	angle    float32
	paused   bool
	dragging bool
	lastX    float32
	lastY    float32
}

// newViewer builds the scene. Surfaces start without an effect and become drawable once
// the loader delivers one.
func newViewer(manager *scene.SceneManager, aspect float32, rendererOptions []renderer.RendererBuilderOption) *viewer {
	v := &viewer{
		root:  scene.NewNode("root", scene.WithComponents(manager, light.NewLight(light.LightTypeAmbient, light.WithIntensity(0.25)))),
		cube:  transform.NewTransform(),
		orbit: camera.NewOrbitController(camera.WithRadius(8), camera.WithElevation(0.35)),
	}

	eye := scene.NewNode("camera", scene.WithComponents(
		transform.NewTransform(),
		v.orbit,
		camera.NewCamera(camera.WithAspect(aspect)),
		renderer.NewRenderer(rendererOptions...),
	))
	sun := scene.NewNode("sun", scene.WithComponents(
		light.NewLight(light.LightTypeDirectional,
			light.WithDirection(-0.4, -1, -0.6),
			light.WithColor(1, 0.95, 0.9),
			light.WithIntensity(0.9),
		),
	))

	cube := v.addSurface("cube", geometry.Cube(), v.cube, material.NewMaterial(
		material.WithDiffuseColor(mgl32.Vec4{0.8, 0.25, 0.2, 1}),
	))
	front := v.addSurface("front", geometry.Quad(), transform.NewTransform(transform.WithPosition(0, 0, 2)), material.NewMaterial(
		material.WithDiffuseColor(mgl32.Vec4{0.2, 0.5, 1, 0.5}),
		material.WithTransparent(),
		material.WithTriangleCulling("none"),
	))
	back := v.addSurface("back", geometry.Quad(), transform.NewTransform(transform.WithPosition(0.5, 0.5, -2)), material.NewMaterial(
		material.WithDiffuseColor(mgl32.Vec4{0.3, 1, 0.4, 0.5}),
		material.WithTransparent(),
		material.WithTriangleCulling("none"),
	))

	for _, n := range []scene.Node{eye, sun, cube, front, back} {
		if err := v.root.AddChild(n); err != nil {
			panic(fmt.Sprintf("viewer: %v", err))
		}
	}
	return v
}

func (v *viewer) addSurface(name string, geom geometry.Geometry, t *transform.Transform, mat material.Material) scene.Node {
	s := surface.NewSurface(name, geom, mat, nil)
	v.surfaces = append(v.surfaces, s)
	return scene.NewNode(name, scene.WithComponents(t, s))
}

func (v *viewer) tick(dt float32) {
	if v.paused {
		return
	}
	v.angle = math32.Mod(v.angle+dt*0.8, 2*math32.Pi)
	v.cube.SetMatrix(mgl32.HomogRotate3DY(v.angle).Mul4(mgl32.HomogRotate3DX(v.angle * 0.5)))
}

func (v *viewer) bindInput(win window.Window) {
	win.SetKeyCallback(func(key uint32, down bool) {
		if !down {
			return
		}
		switch key {
		case common.KeyLeft, common.KeyA:
			v.orbit.OrbitLeft()
		case common.KeyRight, common.KeyD:
			v.orbit.OrbitRight()
		case common.KeyUp, common.KeyW:
			v.orbit.OrbitUp()
		case common.KeyDown, common.KeyS:
			v.orbit.OrbitDown()
		case common.KeyQ:
			v.orbit.Zoom(1)
		case common.KeyE:
			v.orbit.Zoom(-1)
		case common.KeySpace:
			v.paused = !v.paused
		}
	})
	win.SetScrollCallback(func(delta float32) {
		v.orbit.Zoom(delta)
	})
	win.SetMouseButtonCallback(func(button window.MouseButton, down bool, x, y float32) {
		if button == window.MouseLeft {
			v.dragging, v.lastX, v.lastY = down, x, y
		}
	})
	win.SetMouseMoveCallback(func(x, y float32) {
		if v.dragging {
			v.orbit.Rotate(x-v.lastX, y-v.lastY)
		}
		v.lastX, v.lastY = x, y
	})
}
