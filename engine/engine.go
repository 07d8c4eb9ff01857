package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/spaghettifunk/preview/engine/assets"
	"github.com/spaghettifunk/preview/engine/config"
	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/math"
	"github.com/spaghettifunk/preview/engine/renderer"
	"github.com/spaghettifunk/preview/engine/renderer/components"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
	"github.com/spaghettifunk/preview/engine/renderer/shaders"
	"github.com/spaghettifunk/preview/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const (
	QuadGeometryName = "preview_quad"

	// The quad is QuadHeight units tall, its width follows the texture.
	QuadHeight float32 = 1.0

	// Largest texture edge decoded for the aspect ratio.
	maxTextureDimension = 4096
)

// ProgramBuilder renders and compiles the shader for a pair of layouts.
type ProgramBuilder func(layout metadata.VertexLayout, uniform metadata.UniformLayout) (*shaders.Program, error)

// Engine builds the preview quad and draws it, one Matrix per frame, through
// a renderer backend.
type Engine struct {
	currentStage Stage
	config       *config.Config
	buildProgram ProgramBuilder

	assetManager   *assets.AssetManager
	geometrySystem *systems.GeometrySystem
	renderer       *renderer.Renderer

	camera    *components.Camera
	transform *math.Transform
	quad      *metadata.GeometryConfig
	geometry  *systems.Geometry
	aspect    float32

	clock    *core.Clock
	metrics  *core.Metrics
	lastTime float64
	watching bool
}

func New(cfg *config.Config, backend renderer.RendererBackend) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("engine needs a configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !core.EventInitialize() {
		return nil, fmt.Errorf("failed to initialize the event system")
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}

	gs, err := systems.NewGeometrySystem(&systems.GeometrySystemConfig{MaxGeometryCount: 4})
	if err != nil {
		_ = am.Shutdown()
		return nil, err
	}

	return &Engine{
		currentStage:   EngineStageUninitialized,
		config:         cfg,
		buildProgram:   shaders.Build,
		assetManager:   am,
		geometrySystem: gs,
		renderer:       renderer.New(backend),
		transform:      math.TransformCreate(),
		clock:          core.NewClock(),
		metrics:        core.NewMetrics(),
	}, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing

	if err := e.apply(e.config, true); err != nil {
		core.LogError("engine failed to initialize: %s", err.Error())
		return err
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("preview ready: stride %d, %d vertices, %d indices",
		e.geometry.Layout.Stride, e.geometry.VertexCount, e.geometry.IndexCount)
	return nil
}

// apply brings the engine in line with cfg. The pipeline is rebuilt only
// when the layouts change or rebuild is set.
func (e *Engine) apply(cfg *config.Config, rebuild bool) error {
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		return err
	}

	layout, err := cfg.VertexLayout()
	if err != nil {
		return err
	}
	uniform := cfg.UniformLayout()

	var pipeline *renderer.Pipeline
	if current := e.renderer.Pipeline(); rebuild || current == nil || !sameLayouts(current, layout, uniform) {
		program, err := e.buildProgram(layout, uniform)
		if err != nil {
			return err
		}
		if pipeline, err = renderer.NewPipeline(program, layout, uniform); err != nil {
			return err
		}
	}

	aspect, err := e.textureAspect(cfg)
	if err != nil {
		return err
	}
	quad, err := metadata.GenerateQuadConfig(QuadHeight*aspect, QuadHeight, QuadGeometryName)
	if err != nil {
		return err
	}

	if pipeline != nil {
		if err := e.renderer.Initialize(pipeline); err != nil {
			return err
		}
	}
	g, err := e.geometrySystem.AcquireFromConfig(quad, layout, false)
	if err != nil {
		return err
	}
	// The quad is updated in place, drop the reference the previous apply took.
	if e.geometry != nil {
		if err := e.geometrySystem.Release(e.geometry); err != nil {
			core.LogWarn("%s", err)
		}
	}

	e.config = cfg
	e.quad = quad
	e.geometry = g
	e.aspect = aspect
	e.camera = components.NewCamera(cfg.CameraPosition(), cfg.CameraTarget(),
		math.DegToRad(cfg.Camera.FovDegrees), cfg.Camera.Near, cfg.Camera.Far)
	return nil
}

func sameLayouts(p *renderer.Pipeline, layout metadata.VertexLayout, uniform metadata.UniformLayout) bool {
	if p.UniformLayout != uniform || p.VertexLayout.Binding != layout.Binding || p.VertexLayout.Stride != layout.Stride {
		return false
	}
	if len(p.VertexLayout.Attributes) != len(layout.Attributes) {
		return false
	}
	for i, a := range layout.Attributes {
		if p.VertexLayout.Attributes[i] != a {
			return false
		}
	}
	return true
}

// textureAspect is width over height of the configured texture, 1 when
// there is none.
func (e *Engine) textureAspect(cfg *config.Config) (float32, error) {
	path := cfg.TexturePath()
	if path == "" {
		return 1, nil
	}
	res, err := e.assetManager.LoadAsset(path, &metadata.ImageResourceParams{MaxDimension: maxTextureDimension})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := e.assetManager.UnloadAsset(res); err != nil {
			core.LogWarn("%s", err)
		}
	}()
	data, ok := res.Data.(*metadata.ImageResourceData)
	if !ok {
		return 0, fmt.Errorf("%s is not an image", path)
	}
	return data.AspectRatio(), nil
}

// Watch reloads the engine whenever the configuration file or the texture
// changes while Run is active.
func (e *Engine) Watch() error {
	if err := e.assetManager.Watch(e.config.Path(), e.config.TexturePath()); err != nil {
		return err
	}
	e.watching = true
	return nil
}

// Reload reads the configuration file again and rebuilds what changed. On
// failure the engine keeps drawing with its previous state.
func (e *Engine) Reload() error {
	cfg := e.config
	if path := cfg.Path(); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			core.LogError("reload: %s", err.Error())
			return err
		}
		cfg = loaded
	}

	previousTexture := e.config.TexturePath()
	if err := e.apply(cfg, false); err != nil {
		core.LogError("reload: %s", err.Error())
		return err
	}
	if e.watching && cfg.TexturePath() != previousTexture {
		if err := e.assetManager.Unwatch(previousTexture); err != nil {
			core.LogWarn("%s", err)
		}
		if err := e.assetManager.Watch(cfg.TexturePath()); err != nil {
			core.LogWarn("%s", err)
		}
	}
	core.LogInfo("preview reloaded, geometry generation %d", e.geometry.Generation)

	var data core.EventContext
	data.Data.U16[0] = e.geometry.Generation
	data.Data.U32[0] = e.geometry.Layout.Stride
	core.EventFire(core.EVENT_CODE_PREVIEW_RELOADED, e, data)
	return nil
}

/**
 * @brief Runs the frame loop until ctx is cancelled or the configured
 * number of frames has been drawn.
 */
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine run: %w", core.ErrNotInitialized)
	}
	e.currentStage = EngineStageRunning
	defer func() { e.currentStage = EngineStageInitialized }()

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		stop()
		return true
	})
	defer core.EventUnregister(core.EVENT_CODE_APPLICATION_QUIT, e)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var changes <-chan string
	if e.watching {
		changes = e.assetManager.Changes()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// Apply at most one reload per frame, a burst of writes to the
		// same file collapses into it.
		if changes != nil {
			reload := false
		drain:
			for {
				select {
				case path, ok := <-changes:
					if !ok {
						changes = nil
						break drain
					}
					core.LogDebug("%s changed", path)
					var data core.EventContext
					data.Data.C[0] = path
					core.EventFire(core.EVENT_CODE_ASSET_CHANGED, e, data)
					reload = true
				default:
					break drain
				}
			}
			if reload {
				_ = e.Reload()
			}
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := time.Now()

		e.update(delta)
		if err := e.render(delta); err != nil {
			core.LogError("render failed, stopping: %s", err.Error())
			return err
		}

		frameElapsedTime := time.Since(frameStartTime).Seconds()
		e.metrics.Update(frameElapsedTime)
		e.lastTime = currentTime

		if frames := e.config.Preview.Frames; frames > 0 && e.metrics.TotalFrames() >= frames {
			core.LogInfo("drew %d frames, %.3f ms average", e.metrics.TotalFrames(), e.metrics.FrameTime())
			return nil
		}

		// If there is time left, give it back to the OS.
		targetFrameSeconds := 1.0 / e.config.Preview.FrameRate
		if remaining := targetFrameSeconds - frameElapsedTime; remaining > 0 {
			timer := time.NewTimer(time.Duration(remaining * float64(time.Second)))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}
	}
}

// update spins the quad about Y.
func (e *Engine) update(delta float64) {
	angle := math.DegToRad(e.config.Preview.SpinDegreesPerSecond) * float32(delta)
	if angle == 0 {
		return
	}
	e.transform.Rotate(math.NewQuatFromAxisAngle(math.NewVec3Up(), angle, false))
}

func (e *Engine) render(delta float64) error {
	mvp := e.MVP()
	return e.renderer.DrawFrame(e.geometry, mvp, delta)
}

// MVP is the uniform the next frame is drawn with.
func (e *Engine) MVP() metadata.Matrix {
	return components.NewMVP(e.transform.GetLocal(), e.camera.View(), e.camera.Projection(e.aspect))
}

// Geometry is the quad currently drawn.
func (e *Engine) Geometry() *systems.Geometry {
	return e.geometry
}

// QuadConfig is the vertex and index data the quad was built from.
func (e *Engine) QuadConfig() *metadata.GeometryConfig {
	return e.quad
}

func (e *Engine) Config() *config.Config {
	return e.config
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	if e.geometry != nil {
		if err := e.renderer.ReleaseGeometry(e.geometry); err != nil {
			core.LogWarn("%s", err)
		}
	}
	e.geometrySystem.Shutdown()
	if err := core.EventShutdown(); err != nil {
		return err
	}
	return e.renderer.Shutdown()
}
