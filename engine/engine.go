package engine

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/d3d11"
	"github.com/spaghettifunk/prism/engine/renderer/direct3d11"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/renderer/opengl"
	"github.com/spaghettifunk/prism/engine/renderer/opengl/glcore"
	"github.com/spaghettifunk/prism/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
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
	// Seconds between two frame metric log lines.
	metricsInterval  = 1.0
	suspendedSleepMS = 16
	jobBacklog       = 64
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig
	driver       metadata.Driver
	isRunning    atomic.Bool
	isSuspended  bool
	platform     *platform.Platform
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
	jobs         *systems.JobSystem
	events       *core.EventDispatcher
	width        int
	height       int
	clock        *core.Clock
	metrics      *core.Metrics
	lastTime     float64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, errors.New("game has no application config")
	}
	config := g.ApplicationConfig
	if err := config.Validate(); err != nil {
		return nil, err
	}
	driver, err := config.Driver()
	if err != nil {
		return nil, err
	}
	if driver == metadata.DriverNone {
		return nil, core.ErrNoDriver
	}
	level, err := core.ParseLogLevel(config.LogLevel)
	if err != nil {
		return nil, err
	}
	core.SetLogLevel(level)

	jobs, err := systems.NewJobSystem(max(1, runtime.NumCPU()/2), jobBacklog)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageBooting,
		gameInstance: g,
		config:       config,
		driver:       driver,
		platform:     platform.New(),
		assetManager: assets.NewAssetManager(config.Assets.ResourcePaths...),
		jobs:         jobs,
		events:       core.NewEventDispatcher(),
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		width:        config.StartWidth,
		height:       config.StartHeight,
	}
	e.currentStage = EngineStageBootComplete
	return e, nil
}

// newBackend binds the backend for driver to the window.
func newBackend(driver metadata.Driver, surface renderer.Surface) (renderer.Backend, error) {
	switch driver {
	case metadata.DriverOpenGL:
		return opengl.New(glcore.New(), surface), nil
	case metadata.DriverDirect3D11:
		return direct3d11.New(d3d11.CreateDevice, surface), nil
	}
	return nil, core.ErrNoDriver
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	e.events.Register(core.EventQuit, e.onEvent)
	e.events.Register(core.EventKeyDown, e.onKey)
	e.events.Register(core.EventResize, e.onResized)

	if err := e.platform.Startup(platform.WindowConfig{
		Title:      e.config.Name,
		X:          e.config.StartPosX,
		Y:          e.config.StartPosY,
		Width:      e.config.StartWidth,
		Height:     e.config.StartHeight,
		Fullscreen: e.config.Fullscreen,
		Resizable:  e.config.Resizable,
		Driver:     e.driver,
		VSync:      e.config.Renderer.VSync,
	}); err != nil {
		return err
	}
	// the framebuffer can be larger than the window on high density displays
	if w, h := e.platform.FramebufferSize(); w > 0 && h > 0 {
		e.width, e.height = w, h
	}

	backend, err := newBackend(e.driver, e.platform)
	if err != nil {
		return err
	}
	policy, err := e.config.DeviceErrorPolicy()
	if err != nil {
		return err
	}
	e.renderer = renderer.New(backend, renderer.RendererConfig{
		Title:       e.config.Name,
		Size:        math.NewSize2(float32(e.width), float32(e.height)),
		Fullscreen:  e.config.Fullscreen,
		ClearColor:  e.config.ClearColor(),
		VSync:       e.config.Renderer.VSync,
		Debug:       e.config.Renderer.Debug,
		ShaderDir:   e.config.Renderer.ShaderDir,
		ReadFile:    e.assetManager.ReadFile,
		DecodeImage: e.assetManager.DecodeImage,
		Faults:      core.FaultPolicy{Mode: policy},
	})
	if err := e.renderer.Initialize(); err != nil {
		return err
	}
	e.platform.SetLocator(e.renderer.AbsoluteToWorldLocation)

	if e.config.Assets.HotReload {
		if err := e.assetManager.Watch(e.config.Assets.ResourcePaths...); err != nil {
			core.LogWarn("hot reload disabled: %s", err)
		}
	}
	e.renderer.Begin()

	e.gameInstance.Renderer = e.renderer
	e.gameInstance.Assets = e.assetManager
	e.gameInstance.Events = e.events
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(uint32(e.width), uint32(e.height)); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine is not initialized")
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var runningTime float64 = 0.0

	for e.isRunning.Load() {
		if !e.platform.PumpMessages() {
			e.isRunning.Store(false)
		}
		e.dispatchEvents()
		if !e.isRunning.Load() {
			break
		}

		if e.isSuspended {
			platform.Sleep(suspendedSleepMS)
			continue
		}
		e.clock.Update()

		var currentTime float64 = e.clock.Elapsed()
		var delta float64 = (currentTime - e.lastTime)
		var frameStartTime float64 = platform.GetAbsoluteTime()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("Game update failed, shutting down: %s", err)
				e.isRunning.Store(false)
				break
			}
		}

		e.renderer.Clear()
		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(delta); err != nil {
				core.LogError("Game render failed, shutting down: %s", err)
				e.isRunning.Store(false)
				break
			}
		}
		if err := e.renderer.Flush(); err != nil {
			core.LogError("present failed, shutting down: %s", err)
			e.isRunning.Store(false)
			break
		}

		e.assetManager.DrainChanges(e.onAssetChanged)
		e.jobs.Update()

		var frameElapsedTime float64 = platform.GetAbsoluteTime() - frameStartTime
		e.metrics.Update(frameElapsedTime)
		runningTime += frameElapsedTime
		if runningTime >= metricsInterval {
			fps, frameTime := e.metrics.Frame()
			core.LogDebug("%.0f fps, %.2f ms/frame", fps, frameTime)
			runningTime = 0
		}

		e.lastTime = currentTime
	}
	return nil
}

// Stop ends the loop after the current frame. It is safe to call from any
// goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

// Shutdown tears everything down in the reverse order of Initialize. It must
// run on the thread that ran the loop.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	errs = append(errs, e.jobs.Shutdown())
	if e.renderer != nil {
		errs = append(errs, e.renderer.Shutdown())
	}
	errs = append(errs, e.assetManager.Close())
	errs = append(errs, e.platform.Shutdown())
	e.events.Unregister(core.EventQuit)
	e.events.Unregister(core.EventKeyDown)
	e.events.Unregister(core.EventResize)
	return errors.Join(errs...)
}

func (e *Engine) GetFramebufferSize() (int, int) {
	return e.width, e.height
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) dispatchEvents() {
	for {
		event, ok := e.platform.PollEvent()
		if !ok {
			return
		}
		e.events.Fire(event)
	}
}

// onAssetChanged decodes a changed texture on a worker; the upload happens on
// this thread once the job system reports back.
func (e *Engine) onAssetChanged(name string) {
	if e.renderer == nil || !e.renderer.HasTexture(name) {
		return
	}
	err := e.jobs.Submit(systems.JobTask{
		Name: "reload " + name,
		Run: func() (interface{}, error) {
			return e.assetManager.DecodeImage(name)
		},
		OnComplete: func(result interface{}) {
			if err := e.renderer.ReplaceTexture(name, result.(*metadata.Image)); err != nil {
				core.LogWarn("keeping previous version of %s", name)
			}
		},
		OnFailure: func(err error) {
			core.LogWarn("keeping previous version of %s", name)
		},
	})
	if err != nil {
		core.LogWarn("could not schedule reload of %s: %s", name, err)
	}
}

func (e *Engine) onEvent(event core.Event) bool {
	switch event.Type {
	case core.EventQuit:
		core.LogInfo("quit requested, shutting down.")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onKey(event core.Event) bool {
	if event.Key == core.KEY_ESCAPE {
		return e.events.Fire(core.Event{Type: core.EventQuit})
	}
	return false
}

// onResized never consumes the event so games can listen to it too.
func (e *Engine) onResized(event core.Event) bool {
	width, height := event.Size[0], event.Size[1]
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return false
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.renderer != nil {
		e.renderer.Resize(math.NewSize2(float32(width), float32(height)))
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(uint32(width), uint32(height)); err != nil {
			core.LogError("%s", err)
		}
	}
	return false
}
